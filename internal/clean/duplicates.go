package clean

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/nao1215/tabclean/internal/frame"
)

// DuplicateGroups maps the label of the first row of a group of identical
// rows to the labels of the rows repeating it, in input order. Only groups
// with at least two members are present.
type DuplicateGroups map[int][]int

// Labels returns the labels of every repeating row in ascending order.
func (g DuplicateGroups) Labels() []int {
	var out []int
	for _, labels := range g {
		out = append(out, labels...)
	}
	slices.Sort(out)
	return out
}

// DetectDuplicates removes rows that repeat an earlier row in every column.
// Missing cells compare equal to each other. The returned table keeps the
// first occurrence of every row in input order.
func DetectDuplicates(t *frame.Table) (*frame.Table, DuplicateGroups, error) {
	if err := requireTable(t); err != nil {
		return nil, nil, err
	}

	all := make([]int, t.NumCols())
	for i := range all {
		all[i] = i
	}
	groups := groupRows(t, all)

	keep := roaring.New()
	dupes := make(DuplicateGroups)
	for _, g := range groups {
		keep.Add(uint32(g[0]))
		if len(g) < 2 {
			continue
		}
		labels := make([]int, 0, len(g)-1)
		for _, pos := range g[1:] {
			labels = append(labels, t.Label(pos))
		}
		dupes[t.Label(g[0])] = labels
	}

	return t.TakeRows(keep), dupes, nil
}

// DuplicatedRows marks every row that repeats an earlier row over the given
// column positions. An empty column list compares rows over no columns, so
// every row after the first is a duplicate.
func DuplicatedRows(t *frame.Table, cols []int) []bool {
	marks := make([]bool, t.NumRows())
	for _, g := range groupRows(t, cols) {
		for _, pos := range g[1:] {
			marks[pos] = true
		}
	}
	return marks
}

// DuplicateRatio returns the share of rows that repeat an earlier row over
// the given column positions. For a single column this equals
// 1 - distinct/rows.
func DuplicateRatio(t *frame.Table, cols []int) float64 {
	n := 0
	for _, dup := range DuplicatedRows(t, cols) {
		if dup {
			n++
		}
	}
	return ratio(n, t.NumRows())
}

// groupRows groups row positions by their key over cols. Groups are ordered
// by first occurrence and list positions in input order.
func groupRows(t *frame.Table, cols []int) [][]int {
	seen := make(map[string]int, t.NumRows())
	var groups [][]int
	for r := 0; r < t.NumRows(); r++ {
		key := frame.RowKey(t.RowSubset(r, cols))
		if g, ok := seen[key]; ok {
			groups[g] = append(groups[g], r)
			continue
		}
		seen[key] = len(groups)
		groups = append(groups, []int{r})
	}
	return groups
}

// distinctCount counts the distinct values of a column, NA counted as one value.
func distinctCount(c *frame.Column) int {
	seen := make(map[string]struct{}, len(c.Values))
	for _, v := range c.Values {
		seen[frame.Key(v)] = struct{}{}
	}
	return len(seen)
}
