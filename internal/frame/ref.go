package frame

import (
	"strconv"
	"strings"
)

// ColumnRef refers to a column either by name or by position.
type ColumnRef struct {
	name  string
	pos   int
	byPos bool
}

// Name refers to the column with the given name.
func Name(name string) ColumnRef { return ColumnRef{name: name, pos: -1} }

// Pos refers to the column at the given zero-based position.
func Pos(pos int) ColumnRef { return ColumnRef{pos: pos, byPos: true} }

// ParseRef turns user input into a reference. "#3" always means position 3;
// any other text is a name, and a bare integer that matches no column name
// falls back to a position when resolved.
func ParseRef(s string) ColumnRef {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "#"); ok {
		if p, err := strconv.Atoi(rest); err == nil {
			return Pos(p)
		}
	}
	ref := Name(s)
	if p, err := strconv.Atoi(s); err == nil {
		ref.pos = p
	} else {
		ref.pos = -1
	}
	return ref
}

// ParseRefs parses a list of references.
func ParseRefs(ss []string) []ColumnRef {
	refs := make([]ColumnRef, 0, len(ss))
	for _, s := range ss {
		if strings.TrimSpace(s) == "" {
			continue
		}
		refs = append(refs, ParseRef(s))
	}
	return refs
}

// String renders the reference for logs and errors.
func (r ColumnRef) String() string {
	if r.byPos {
		return "#" + strconv.Itoa(r.pos)
	}
	return r.name
}

// Resolve returns the position of the referenced column in t.
func (r ColumnRef) Resolve(t *Table) (int, bool) {
	if r.byPos {
		if r.pos >= 0 && r.pos < t.NumCols() {
			return r.pos, true
		}
		return -1, false
	}
	if _, i, ok := t.ColumnByName(r.name); ok {
		return i, true
	}
	if r.pos >= 0 && r.pos < t.NumCols() && r.name == strconv.Itoa(r.pos) {
		return r.pos, true
	}
	return -1, false
}

// ResolveAll returns the set of column positions matched by refs.
// References that match no column are ignored.
func ResolveAll(t *Table, refs []ColumnRef) map[int]bool {
	out := make(map[int]bool, len(refs))
	for _, r := range refs {
		if i, ok := r.Resolve(t); ok {
			out[i] = true
		}
	}
	return out
}
