package coerce

import (
	"encoding/json"
	"math"
	"strconv"
)

// Result classifies a conversion.
type Result uint8

const (
	OK       Result = iota
	Mismatch        // not a number of the requested kind
	Overflow        // a number, but outside the target range
)

// Int converts value into a signed integer within [min, max].
func Int(value any, min, max int64) (int64, Result) {
	neg, mag, r := integer(value)
	if r != OK {
		return 0, r
	}
	if neg {
		// -min without overflowing for math.MinInt64
		if min >= 0 || mag > uint64(-(min+1))+1 {
			return 0, Overflow
		}
		return -int64(mag-1) - 1, OK
	}
	if max < 0 || mag > uint64(max) {
		return 0, Overflow
	}
	return int64(mag), OK
}

// Uint converts value into an unsigned integer not above max.
func Uint(value any, max uint64) (uint64, Result) {
	neg, mag, r := integer(value)
	if r != OK {
		return 0, r
	}
	if neg || mag > max {
		return 0, Overflow
	}
	return mag, OK
}

// Float converts any Go number into a float64.
func Float(value any) (float64, Result) {
	switch v := value.(type) {
	case float64:
		return v, OK
	case float32:
		return float64(v), OK
	case int:
		return float64(v), OK
	case int8:
		return float64(v), OK
	case int16:
		return float64(v), OK
	case int32:
		return float64(v), OK
	case int64:
		return float64(v), OK
	case uint:
		return float64(v), OK
	case uint8:
		return float64(v), OK
	case uint16:
		return float64(v), OK
	case uint32:
		return float64(v), OK
	case uint64:
		return float64(v), OK
	case json.Number:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
				return 0, Overflow
			}
			return 0, Mismatch
		}
		return f, OK
	}
	return 0, Mismatch
}

// Float32 converts value into the float32 range. NaN and infinities pass
// through; finite values beyond math.MaxFloat32 overflow.
func Float32(value any) (float32, Result) {
	f, r := Float(value)
	if r != OK {
		return 0, r
	}
	if !math.IsInf(f, 0) && !math.IsNaN(f) && math.Abs(f) > math.MaxFloat32 {
		return 0, Overflow
	}
	return float32(f), OK
}

// integer splits value into sign and magnitude.
func integer(value any) (neg bool, mag uint64, r Result) {
	switch v := value.(type) {
	case int:
		return signed(int64(v))
	case int8:
		return signed(int64(v))
	case int16:
		return signed(int64(v))
	case int32:
		return signed(int64(v))
	case int64:
		return signed(v)
	case uint:
		return false, uint64(v), OK
	case uint8:
		return false, uint64(v), OK
	case uint16:
		return false, uint64(v), OK
	case uint32:
		return false, uint64(v), OK
	case uint64:
		return false, v, OK
	case float64:
		return integral(v)
	case float32:
		return integral(float64(v))
	case json.Number:
		if n, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			return signed(n)
		}
		if n, err := strconv.ParseUint(string(v), 10, 64); err == nil {
			return false, n, OK
		}
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil {
			return false, 0, Mismatch
		}
		return integral(f)
	}
	return false, 0, Mismatch
}

func signed(v int64) (bool, uint64, Result) {
	if v < 0 {
		return true, uint64(-(v + 1)) + 1, OK
	}
	return false, uint64(v), OK
}

func integral(f float64) (bool, uint64, Result) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return false, 0, Mismatch
	}
	if f >= 0x1p64 || f <= -0x1p64 {
		return false, 0, Overflow
	}
	if f < 0 {
		return true, uint64(-f), OK
	}
	return false, uint64(f), OK
}
