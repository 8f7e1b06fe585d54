// Package quoting renders Go values as SQL literals for interpolation
// into catalog query templates. Redshift's system views are queried over
// the simple protocol where identifier filters arrive as inline
// literals rather than bind parameters, so the rendering has to be
// injection-safe on its own: strings are single-quoted with embedded
// quotes doubled, and values that have no safe literal form are refused
// with an error instead of being passed through.
package quoting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// timestampLayout renders timestamps with microsecond precision and a
// UTC offset, which Redshift accepts for both TIMESTAMP and TIMESTAMPTZ
// contexts.
const timestampLayout = "2006-01-02 15:04:05.999999-07:00"

// Quote renders v as a SQL literal. Supported inputs are nil, string,
// bool, the integer and unsigned integer types, float32/float64, and
// time.Time. Anything else, a string containing a NUL byte, or a
// non-finite float returns an error.
func Quote(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return quoteString(val)
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	case int:
		return strconv.FormatInt(int64(val), 10), nil
	case int8:
		return strconv.FormatInt(int64(val), 10), nil
	case int16:
		return strconv.FormatInt(int64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float32:
		return quoteFloat(float64(val), 32)
	case float64:
		return quoteFloat(val, 64)
	case time.Time:
		return "'" + val.Format(timestampLayout) + "'", nil
	default:
		return "", fmt.Errorf("cannot quote value of type %T as a SQL literal", v)
	}
}

func quoteString(s string) (string, error) {
	if strings.ContainsRune(s, 0) {
		return "", fmt.Errorf("cannot quote string containing a NUL byte")
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil
}

func quoteFloat(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("cannot quote non-finite float %v as a SQL literal", f)
	}
	return strconv.FormatFloat(f, 'g', -1, bits), nil
}
