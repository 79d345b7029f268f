package transform

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Text renders a column value as a string. NULL becomes "".
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case sql.RawBytes:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Int converts a column value to int64. NULL and empty text become 0;
// decimal values truncate toward zero.
func Int(v any) (int64, error) {
	switch t := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows int64", ErrMalformedRecord, t)
		}
		return int64(t), nil
	case uint:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint8:
		return int64(t), nil
	case float64:
		return truncate(t)
	case float32:
		return truncate(float64(t))
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return parseInt(string(t))
	case sql.RawBytes:
		return parseInt(string(t))
	case string:
		return parseInt(t)
	default:
		return 0, fmt.Errorf("%w: cannot convert %T to integer", ErrMalformedRecord, v)
	}
}

// RequiredInt is Int for columns that must not be NULL.
func RequiredInt(v any) (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: required integer is NULL", ErrMalformedRecord)
	}
	return Int(v)
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrMalformedRecord, s)
	}
	return truncate(f)
}

func truncate(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("%w: %v out of integer range", ErrMalformedRecord, f)
	}
	return int64(math.Trunc(f)), nil
}
