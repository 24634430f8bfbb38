package frame

import (
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// MemoryUsage estimates the bytes needed to hold the table.
// The shallow estimate counts fixed-size cells and one pointer per text or
// object cell plus 8 bytes per row label. The deep estimate also counts the
// bytes of string payloads and the category dictionary.
func MemoryUsage(t *Table, deep bool) int64 {
	total := int64(8 * t.NumRows())
	for _, c := range t.Columns() {
		total += int64(c.DType.CellSize() * c.Len())
		if !deep {
			continue
		}
		switch c.DType.Kind {
		case KindCategory:
			for _, cat := range c.DType.Categories {
				total += int64(len(cat)) + 16
			}
		case KindString, KindObject:
			for _, v := range c.Values {
				total += deepSize(v)
			}
		}
	}
	return total
}

func deepSize(v any) int64 {
	switch x := v.(type) {
	case string:
		return int64(len(x)) + 16
	case []any:
		n := int64(24)
		for _, e := range x {
			n += 16 + deepSize(e)
		}
		return n
	case na:
		return 0
	}
	return 16
}

// Fingerprint returns a SHA3-256 digest over the column names, dtypes, row
// labels and cell keys. Equal tables always have equal fingerprints.
func Fingerprint(t *Table) string {
	h := sha3.New256()
	var buf [8]byte
	write := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		_, _ = h.Write(buf[:])
		_, _ = h.Write([]byte(s))
	}

	rows, cols := t.Shape()
	binary.LittleEndian.PutUint64(buf[:], uint64(rows))
	_, _ = h.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], uint64(cols))
	_, _ = h.Write(buf[:])

	for _, label := range t.index {
		binary.LittleEndian.PutUint64(buf[:], uint64(label))
		_, _ = h.Write(buf[:])
	}
	for _, c := range t.Columns() {
		write(c.Name)
		write(c.DType.Name())
		for _, v := range c.Values {
			write(Key(v))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
