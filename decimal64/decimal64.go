package decimal64

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

const (
	Size           = 8
	MinExponent    = -398
	MaxExponent    = 369
	MaxCoefficient = 9_999_999_999_999_999
	MaxDigits      = 16
)

const (
	signBit       = uint64(1) << 63
	combShift     = 58
	combMask      = 0b11111
	combInfinity  = 0b11110
	combNaN       = 0b11111
	compactMarker = 0b11
	exponentBits  = 10
	exponentMask  = uint64(1)<<exponentBits - 1
	normalBits    = 53
	compactBits   = 51
	implicitBits  = uint64(0b100)
)

// Special bit patterns.
const (
	Infinity    = uint64(combInfinity) << combShift
	NegInfinity = signBit | Infinity
	NaN         = uint64(combNaN) << combShift
)

// Encode packs d. A nil d encodes as zero.
func Encode(d *apd.Decimal) uint64 {
	if d == nil {
		return Pack(false, 0, 0)
	}
	switch d.Form {
	case apd.NaN, apd.NaNSignaling:
		return NaN
	case apd.Infinite:
		return signedInfinity(d.Negative)
	}

	digits := strings.TrimLeft(d.Coeff.String(), "-0")
	exp := int(d.Exponent)

	for len(digits) > 0 && digits[len(digits)-1] == '0' && exp < MaxExponent {
		digits = digits[:len(digits)-1]
		exp++
	}

	// below the minimum exponent the coefficient is rounded at MinExponent
	if k := MinExponent - exp; k > 0 {
		digits = shed(digits, k)
		exp = MinExponent
		if digits == "" {
			return signedZero(d.Negative)
		}
	}

	for exp > MaxExponent && len(digits) > 0 && len(digits) < MaxDigits {
		digits += "0"
		exp--
	}

	if len(digits) > MaxDigits || (exp > MaxExponent && len(digits) > 0) {
		return signedInfinity(d.Negative)
	}
	if exp > MaxExponent {
		// only a zero coefficient gets here
		exp = MaxExponent
	}

	var coeff uint64
	if digits != "" {
		var err error
		coeff, err = strconv.ParseUint(digits, 10, 64)
		if err != nil || coeff > MaxCoefficient {
			return signedInfinity(d.Negative)
		}
	}
	return Pack(d.Negative, coeff, exp)
}

func signedInfinity(negative bool) uint64 {
	if negative {
		return NegInfinity
	}
	return Infinity
}

func signedZero(negative bool) uint64 {
	if negative {
		return signBit
	}
	return 0
}

// Pack assembles a finite value from its parts. The caller guarantees
// coeff <= MaxCoefficient and MinExponent <= exp <= MaxExponent.
func Pack(negative bool, coeff uint64, exp int) uint64 {
	var bits uint64
	if negative {
		bits = 1
	}

	coeffBits := normalBits
	if coeff > uint64(1)<<normalBits-1 {
		coeffBits = compactBits
		bits = bits<<2 | compactMarker
	}

	bits = bits<<exponentBits | uint64(exp-MinExponent)&exponentMask
	bits = bits<<coeffBits | coeff&(uint64(1)<<coeffBits-1)
	return bits
}

// Decode unpacks bits into a decimal.
func Decode(bits uint64) *apd.Decimal {
	if bits == 0 {
		return apd.New(0, 0)
	}

	negative := bits&signBit != 0
	comb := (bits >> combShift) & combMask

	if comb >= combInfinity {
		d := new(apd.Decimal)
		if comb == combInfinity {
			d.Form = apd.Infinite
			d.Negative = negative
		} else {
			d.Form = apd.NaN
		}
		return d
	}

	coeff, exp := unpackFinite(bits, comb)
	d := apd.New(int64(coeff), int32(exp))
	d.Negative = negative
	return d
}

// Parts returns the sign, coefficient and exponent of a finite pattern.
// ok is false for infinities and NaN.
func Parts(bits uint64) (negative bool, coeff uint64, exp int, ok bool) {
	comb := (bits >> combShift) & combMask
	if comb >= combInfinity {
		return false, 0, 0, false
	}
	if bits == 0 {
		return false, 0, 0, true
	}
	coeff, exp = unpackFinite(bits, comb)
	return bits&signBit != 0, coeff, exp, true
}

func unpackFinite(bits, comb uint64) (uint64, int) {
	coeffBits := normalBits
	var prefix uint64
	if comb>>3 == compactMarker {
		coeffBits = compactBits
		prefix = implicitBits
	}
	exp := int((bits>>coeffBits)&exponentMask) + MinExponent
	coeff := prefix<<coeffBits | bits&(uint64(1)<<coeffBits-1)
	return coeff, exp
}

// shed drops the k least significant digits of a decimal digit string,
// rounding half to even. The result has no leading zeros; "" is zero.
func shed(digits string, k int) string {
	if k <= 0 {
		return digits
	}
	if k > len(digits) {
		return ""
	}

	keep, drop := digits[:len(digits)-k], digits[len(digits)-k:]
	up := false
	switch {
	case drop[0] > '5':
		up = true
	case drop[0] == '5':
		if strings.Trim(drop[1:], "0") != "" {
			up = true
		} else {
			last := byte('0')
			if keep != "" {
				last = keep[len(keep)-1]
			}
			up = (last-'0')%2 == 1
		}
	}

	if up {
		keep = increment(keep)
	}
	return strings.TrimLeft(keep, "0")
}

func increment(digits string) string {
	b := []byte(digits)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < '9' {
			b[i]++
			return string(b)
		}
		b[i] = '0'
	}
	return "1" + string(b)
}

// FromString parses a decimal literal, including "NaN" and "Infinity".
func FromString(s string) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	return d, nil
}
