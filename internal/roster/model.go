package roster

import (
	"fmt"
	"strconv"
	"strings"
)

// Row maps a column header to its cell value. A missing key or a nil value
// is the null marker.
type Row map[string]any

// Table is a loaded roster. It is read-only once loaded.
type Table struct {
	Headers []string
	Rows    []Row
	// Lines holds the 1-based source row (spreadsheet row or CSV line) of
	// each entry in Rows. Blank records are skipped, so it can have gaps.
	Lines []int
}

// Line returns the source row of Rows[i]. Tables built without Lines
// assume a header on row 1 and no skipped records.
func (t *Table) Line(i int) int {
	if i < len(t.Lines) {
		return t.Lines[i]
	}
	return i + 2
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Text returns the cell under header as a trimmed string. Null cells and
// unknown headers yield "".
func (r Row) Text(header string) string {
	v, ok := r[header]
	if !ok {
		return ""
	}
	return Stringify(v)
}

// Stringify coerces a scalar cell value to a trimmed string. Integral floats
// drop their fractional part so that 42.0 reads as "42".
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return Stringify(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return strings.TrimSpace(x.String())
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
