package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// na is the type of the missing marker.
type na struct{}

// String renders the marker the way tables print it.
func (na) String() string { return "<NA>" }

// NA is the single missing-value marker stored in cells.
var NA any = na{}

// IsNA reports whether v is the missing marker.
// Values that have not been normalized (nil, NaN, zero time) also count as
// missing so that callers holding raw values get consistent answers.
func IsNA(v any) bool {
	switch x := v.(type) {
	case na, nil:
		return true
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	case time.Time:
		return x.IsZero()
	}
	return false
}

// Normalize converts a raw value into its canonical cell form.
func Normalize(v any) any {
	if IsNA(v) {
		return NA
	}
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint:
		if uint64(x) <= math.MaxInt64 {
			return int64(x)
		}
		return float64(x)
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x)
		}
		return float64(x)
	case float32:
		return float64(x)
	case []byte:
		return string(x)
	case *time.Time:
		if x == nil || x.IsZero() {
			return NA
		}
		return *x
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	}
	return v
}

// Key returns an equality key for a normalized cell.
// Two cells are considered equal when their keys are equal: NA equals NA,
// and an integral float equals the integer with the same value. Text is
// quoted, so a key never contains the separators used by RowKey.
func Key(v any) string {
	switch x := v.(type) {
	case na:
		return "\x00na"
	case bool:
		if x {
			return "b:1"
		}
		return "b:0"
	case int64:
		return "n:" + strconv.FormatInt(x, 10)
	case float64:
		if x == math.Trunc(x) && math.Abs(x) < 1<<53 {
			return "n:" + strconv.FormatInt(int64(x), 10)
		}
		return "n:" + strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return "s:" + strconv.Quote(x)
	case time.Time:
		return "t:" + x.UTC().Format(time.RFC3339Nano)
	case []any:
		var sb strings.Builder
		sb.WriteString("l:[")
		for i, e := range x {
			if i > 0 {
				sb.WriteByte(0x1f)
			}
			sb.WriteString(Key(e))
		}
		sb.WriteByte(']')
		return sb.String()
	}
	return "o:" + strconv.Quote(fmt.Sprintf("%T:%v", v, v))
}

// RowKey joins the keys of the given cells into a single key.
func RowKey(cells []any) string {
	var sb strings.Builder
	for i, c := range cells {
		if i > 0 {
			sb.WriteByte(0x1e)
		}
		sb.WriteString(Key(c))
	}
	return sb.String()
}

// Format renders a cell for text output.
func Format(v any) string {
	switch x := v.(type) {
	case na:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return x.Format(time.RFC3339)
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = Format(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(v)
}
