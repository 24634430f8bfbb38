package clean

import (
	"github.com/nao1215/tabclean/internal/frame"
)

// DefaultPooledName is the name of the column holding pooled subsets.
const DefaultPooledName = "pooled_vars"

// PoolOptions configures PoolDuplicateSubsets.
type PoolOptions struct {
	// ColDuplThresh is the smallest duplicate ratio a column needs to take
	// part in the subset search.
	ColDuplThresh float64 `json:"col_dupl_thresh" validate:"gte=0,lte=1"`

	// SubsetThresh must be exceeded by the row duplicate ratio of a subset
	// before it is pooled.
	SubsetThresh float64 `json:"subset_thresh" validate:"gte=0,lte=1"`

	// MinColPool is the smallest number of columns pooled together.
	MinColPool int `json:"min_col_pool" validate:"gte=0"`

	// Exclude lists columns that are never pooled.
	Exclude []frame.ColumnRef `json:"-"`

	// PooledName names the column that replaces the pooled subset.
	PooledName string `json:"pooled_name"`
}

// DefaultPoolOptions returns the pooler defaults.
func DefaultPoolOptions() PoolOptions {
	return PoolOptions{
		ColDuplThresh: 0.2,
		SubsetThresh:  0.2,
		MinColPool:    3,
		PooledName:    DefaultPooledName,
	}
}

// PoolResult describes the outcome of PoolDuplicateSubsets.
type PoolResult struct {
	// Table is the resulting table.
	Table *frame.Table

	// SubsetColumns names the pooled columns in input order.
	// It is empty when nothing was pooled.
	SubsetColumns []string

	// SubsetRatio is the row duplicate ratio of the pooled subset.
	SubsetRatio float64

	// Groups maps the first row of each group of rows sharing the pooled
	// values to the rows repeating them.
	Groups DuplicateGroups
}

// Pooled reports whether a subset was pooled.
func (r *PoolResult) Pooled() bool { return len(r.SubsetColumns) > 0 }

// PoolDuplicateSubsets looks for a subset of columns whose combined values
// repeat across many rows and folds it into a single list-valued column.
//
// Columns that are not excluded and whose duplicate ratio is at least
// ColDuplThresh are candidates. Subsets are searched from the largest size
// down to MinColPool; for each size the first subset, in lexicographic order
// of column positions, with the highest row duplicate ratio wins. The search
// stops at the first size whose winner exceeds SubsetThresh, which is then
// pooled. The pooled column is appended after the remaining columns and the
// number of rows never changes.
func PoolDuplicateSubsets(t *frame.Table, opts PoolOptions) (*frame.Table, error) {
	res, err := PoolDuplicateSubsetsDetails(t, opts)
	if err != nil {
		return nil, err
	}
	return res.Table, nil
}

// PoolDuplicateSubsetsDetails is PoolDuplicateSubsets returning the chosen
// subset and its row groups as well.
func PoolDuplicateSubsetsDetails(t *frame.Table, opts PoolOptions) (*PoolResult, error) {
	if err := requireTable(t); err != nil {
		return nil, err
	}
	if err := ValidateOptions(opts); err != nil {
		return nil, err
	}
	if err := ValidateRange(float64(opts.MinColPool), "min_col_pool", 0, float64(t.NumCols())); err != nil {
		return nil, err
	}
	if opts.PooledName == "" {
		opts.PooledName = DefaultPooledName
	}

	excluded := frame.ResolveAll(t, opts.Exclude)
	nonExcluded := t.NumCols() - len(excluded)

	var candidates []int
	for j := range t.NumCols() {
		if excluded[j] {
			continue
		}
		if DuplicateRatio(t, []int{j}) >= opts.ColDuplThresh {
			candidates = append(candidates, j)
		}
	}

	res := &PoolResult{Table: t.Clone(), Groups: DuplicateGroups{}}
	minSize := max(opts.MinColPool, 1)
	for i := 0; i <= nonExcluded-opts.MinColPool; i++ {
		size := len(candidates) - i
		if size < minSize {
			break
		}
		best, bestRatio := bestSubset(t, candidates, size)
		if bestRatio <= opts.SubsetThresh {
			continue
		}
		pooled, err := poolColumns(t, best, opts.PooledName)
		if err != nil {
			return nil, err
		}
		res.Table = pooled
		res.SubsetRatio = bestRatio
		for _, j := range best {
			res.SubsetColumns = append(res.SubsetColumns, t.Column(j).Name)
		}
		for _, g := range groupRows(t, best) {
			if len(g) < 2 {
				continue
			}
			labels := make([]int, 0, len(g)-1)
			for _, pos := range g[1:] {
				labels = append(labels, t.Label(pos))
			}
			res.Groups[t.Label(g[0])] = labels
		}
		break
	}
	return res, nil
}

// bestSubset returns the first combination of size columns out of
// candidates with the highest row duplicate ratio.
func bestSubset(t *frame.Table, candidates []int, size int) ([]int, float64) {
	var best []int
	bestRatio := -1.0
	combinations(candidates, size, func(subset []int) {
		if r := DuplicateRatio(t, subset); r > bestRatio {
			bestRatio = r
			best = append(best[:0], subset...)
		}
	})
	return best, bestRatio
}

// combinations calls fn with every size-element combination of items in
// lexicographic order. The slice passed to fn is reused between calls.
func combinations(items []int, size int, fn func([]int)) {
	if size <= 0 || size > len(items) {
		return
	}
	idx := make([]int, size)
	for i := range idx {
		idx[i] = i
	}
	subset := make([]int, size)
	for {
		for i, k := range idx {
			subset[i] = items[k]
		}
		fn(subset)

		i := size - 1
		for i >= 0 && idx[i] == len(items)-size+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for k := i + 1; k < size; k++ {
			idx[k] = idx[k-1] + 1
		}
	}
}

// poolColumns replaces the columns at positions subset by one list-valued
// column appended at the end.
func poolColumns(t *frame.Table, subset []int, name string) (*frame.Table, error) {
	inSubset := make(map[int]bool, len(subset))
	for _, j := range subset {
		inSubset[j] = true
	}
	keep := make([]int, 0, t.NumCols()-len(subset))
	for j := range t.NumCols() {
		if !inSubset[j] {
			keep = append(keep, j)
		}
	}

	values := make([]any, t.NumRows())
	for r := range values {
		values[r] = t.RowSubset(r, subset)
	}
	return t.SelectColumns(keep).AppendColumn(frame.NewTypedColumn(name, frame.Object(), values))
}
