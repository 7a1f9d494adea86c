// Conversion helpers shared by the evaluator and the export boundary. These
// implement the engine's coercion rules: numeric coercion for arithmetic
// operands and display stringification for concatenation and export.
package eval

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// isoDate is the calendar-date layout dates use at the engine boundary.
const isoDate = "2006-01-02"

// ToFloat64 converts a value of various numeric types to a float64. It
// returns the converted float64 and a boolean indicating whether the
// conversion was successful.
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// DisplayString renders a cell value the way the table view and exporters
// show it: nil becomes the empty string, dates format as YYYY-MM-DD, and
// floats print without a trailing exponent.
func DisplayString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format(isoDate)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// parseDate accepts the boundary's ISO calendar-date strings, full RFC 3339
// timestamps, and time.Time values. Anything else fails the parse, which the
// evaluator turns into a nil cell.
func parseDate(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return time.Time{}, false
		}
		if t, err := time.Parse(isoDate, s); err == nil {
			return t, true
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, true
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
