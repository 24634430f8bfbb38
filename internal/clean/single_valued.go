package clean

import "github.com/nao1215/tabclean/internal/frame"

// SingleValuedColumns returns the names of columns holding exactly one
// distinct value. Missing cells count as a value of their own, so an entirely
// missing column is single valued while a constant column with gaps is not.
func SingleValuedColumns(t *frame.Table) []string {
	var names []string
	for _, c := range t.Columns() {
		if distinctCount(c) == 1 {
			names = append(names, c.Name)
		}
	}
	return names
}

// DropSingleValued removes every single-valued column and returns their names.
// No exclusion list applies here.
func DropSingleValued(t *frame.Table) (*frame.Table, []string, error) {
	if err := requireTable(t); err != nil {
		return nil, nil, err
	}
	names := SingleValuedColumns(t)
	if len(names) == 0 {
		return t.Clone(), nil, nil
	}
	return t.DropColumns(names...), names, nil
}
