package confarg

import (
	"math"
	"strings"
)

// Scalar parsers. All integer types are 32-bit with saturating overflow:
// the saturated value comes back alongside ErrOverflow so callers may clamp
// and continue. Inputs must be consumed completely; trailing junk is
// ErrFormat.

// ParseBool parses exactly 0, 1, false, true, no or yes.
func ParseBool(s string) (bool, error) {
	switch s {
	case "1", "true", "yes":
		return true, nil
	case "0", "false", "no":
		return false, nil
	}
	return false, ErrFormat
}

// intPartCap bounds numeric accumulation so pathological digit runs cannot
// wrap; anything at the cap already fails every range check downstream.
const intPartCap = 1 << 40

// ParseUnsigned parses an unsigned 32-bit integer. base 0 autodetects: an
// 0x/0X prefix selects 16, a leading 0 selects 8, otherwise 10; an explicit
// base (2..36) overrides detection. On overflow the result saturates to
// math.MaxUint32 and the error is ErrOverflow.
func ParseUnsigned(s string, base int) (uint32, error) {
	i := 0
	if i < len(s) && s[i] == '+' {
		i++
	}

	if (base <= 0 || base == 16) && i < len(s)-1 && s[i] == '0' && (s[i+1] == 'x' || s[i+1] == 'X') {
		i += 2
		base = 16
	} else if base <= 0 && i < len(s) && s[i] == '0' {
		base = 8
	} else if base <= 0 {
		base = 10
	}

	if i == len(s) { // no digits
		return 0, ErrFormat
	}

	val := uint64(0)
	overflow := false
	for ; i < len(s); i++ {
		var d int
		switch ch := s[i]; {
		case ch >= '0' && ch <= '9':
			d = int(ch - '0')
		case ch >= 'A' && ch <= 'Z':
			d = int(ch-'A') + 10
		case ch >= 'a' && ch <= 'z':
			d = int(ch-'a') + 10
		default:
			d = base // force the break below
		}
		if d >= base {
			break
		}
		val = val*uint64(base) + uint64(d)
		if val > math.MaxUint32 {
			overflow = true
			val &= math.MaxUint32
		}
	}

	if i != len(s) { // bad characters
		return 0, ErrFormat
	}
	if overflow {
		return math.MaxUint32, ErrOverflow
	}
	return uint32(val), nil
}

// ParseInt parses a signed 32-bit integer with the same base rules as
// ParseUnsigned. Overflow saturates to the extremum on the matching side;
// note the asymmetry (the minimum's magnitude is one larger than the
// maximum's).
func ParseInt(s string, base int) (int32, error) {
	if len(s) == 0 {
		return 0, ErrFormat
	}
	negative := s[0] == '-'
	if negative {
		s = s[1:]
	}

	u, err := ParseUnsigned(s, base)
	if err != nil && !IsOverflow(err) {
		return 0, err
	}

	switch {
	case IsOverflow(err):
		if negative {
			return math.MinInt32, ErrOverflow
		}
		return math.MaxInt32, ErrOverflow
	case !negative && u > math.MaxInt32:
		return math.MaxInt32, ErrOverflow
	case negative && u > 1<<31:
		return math.MinInt32, ErrOverflow
	case negative:
		return int32(-int64(u)), nil
	default:
		return int32(u), nil
	}
}

// parseReal10Parts decodes a decimal fixed-point literal with optional sign,
// fractional part and e/E exponent, returning the integer part and the
// fractional part scaled to fracDigits decimal digits. The exponent shifts
// digits between the two parts rather than producing a float.
func parseReal10Parts(s string, fracDigits int) (intPart, fracPart int, err error) {
	if len(s) == 0 {
		return 0, 0, ErrFormat
	}
	if fracDigits < 0 || fracDigits > 9 {
		return 0, 0, ErrInvalid
	}

	i := 0
	negative := s[i] == '-'
	if s[i] == '-' || s[i] == '+' {
		i++
	}

	intS := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	intE := i

	fracS, fracE := i, i
	if i < len(s) && s[i] == '.' {
		i++
		fracS = i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		fracE = i
	}

	// no integer or fraction digits at all
	if intS == intE && fracS == fracE {
		return 0, 0, ErrFormat
	}

	exponent := 0
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i == len(s) {
			return 0, 0, ErrFormat
		}
		negexp := s[i] == '-'
		if s[i] == '-' || s[i] == '+' {
			i++
		}
		if i >= len(s) || !isDigit(s[i]) {
			return 0, 0, ErrFormat
		}
		for ; i < len(s) && isDigit(s[i]); i++ {
			exponent = 10*exponent + int(s[i]-'0')
			if exponent > len(s)+9 {
				exponent = len(s) + 9 // digit shifts beyond the input all behave alike
			}
		}
		if negexp {
			exponent = -exponent
		}
	}

	if i != len(s) {
		return 0, 0, ErrFormat
	}

	// integer part: integer digits up to the exponent shift, then fraction
	// digits promoted by a positive exponent, then implied trailing zeros
	for c := intS; c < intE && c < intE+exponent; c++ {
		intPart = 10*intPart + int(s[c]-'0')
		if intPart > intPartCap {
			intPart = intPartCap
		}
	}
	for c := fracS; c < fracE && c < fracS+exponent; c++ {
		intPart = 10*intPart + int(s[c]-'0')
		if intPart > intPartCap {
			intPart = intPartCap
		}
	}
	for c := fracE; c < fracS+exponent; c++ {
		intPart = 10 * intPart
		if intPart > intPartCap {
			intPart = intPartCap
		}
	}
	if negative {
		intPart = -intPart
	}

	// fractional part: integer digits demoted by a negative exponent, then
	// the fraction digits, padded to exactly fracDigits digits
	fd := fracDigits
	c := intE + exponent
	for ; c < intS && fd > 0; c, fd = c+1, fd-1 {
	}
	for ; c < intE && fd > 0; c, fd = c+1, fd-1 {
		fracPart = 10*fracPart + int(s[c]-'0')
	}
	c = fracS
	if exponent > 0 {
		c += exponent
	}
	for ; c < fracE && fd > 0; c, fd = c+1, fd-1 {
		fracPart = 10*fracPart + int(s[c]-'0')
	}
	for ; fd > 0; fd-- {
		fracPart = 10 * fracPart
	}
	if negative {
		fracPart = -fracPart
	}

	return intPart, fracPart, nil
}

// ParseReal10 parses a decimal fixed-point real and returns it scaled by
// 10^fracDigits (fracDigits in [0,9]). Values whose integer part does not
// fit the scaled 32-bit range yield ErrOverflow.
func ParseReal10(s string, fracDigits int) (int32, error) {
	intPart, fracPart, err := parseReal10Parts(s, fracDigits)
	if err != nil {
		return 0, err
	}

	one := 1
	for i := 0; i < fracDigits; i++ {
		one *= 10
	}
	max := math.MaxInt32 / one
	if intPart >= max || -intPart >= max {
		return 0, ErrOverflow
	}
	return int32(intPart*one + fracPart), nil
}

// ParseUnsignedReal2 parses a nonnegative decimal real into a binary
// fixed-point value with fracBits fractional bits (fracBits < 29). The
// decimal fraction is folded digit by digit with round-to-nearest, matching
// UnparseReal2 exactly.
func ParseUnsignedReal2(s string, fracBits int) (uint32, error) {
	if fracBits < 0 || fracBits >= 29 {
		return 0, ErrInvalid
	}

	intPart, fracPart, err := parseReal10Parts(s, 9)
	if err != nil {
		return 0, ErrFormat
	}
	if intPart < 0 || fracPart < 0 {
		return 0, ErrNegative
	}
	if intPart > (1<<(32-fracBits))-1 {
		return 0, ErrOverflow
	}

	// rounding accumulation from Knuth's round_decimals; exact inverse of
	// UnparseReal2
	fraction := 0
	two := 2 << fracBits
	for i := 0; i < 9; i++ {
		digit := fracPart % 10
		fraction = (fraction + digit*two) / 10
		fracPart /= 10
	}
	fraction = (fraction + 1) / 2

	return uint32(intPart)<<fracBits + uint32(fraction), nil
}

// ParseReal2 is the signed form of ParseUnsignedReal2. The representable
// range is asymmetric like ParseInt's.
func ParseReal2(s string, fracBits int) (int32, error) {
	negative := false
	if len(s) > 0 && s[0] == '-' {
		negative = true
		s = s[1:]
	}

	u, err := ParseUnsignedReal2(s, fracBits)
	if err != nil {
		return 0, err
	}
	if u > 1<<31 || (u == 1<<31 && !negative) {
		return 0, ErrOverflow
	}
	if negative {
		return int32(-int64(u)), nil
	}
	return int32(u), nil
}

// ParseMilliseconds parses a duration in seconds into whole milliseconds.
// Negative durations are rejected.
func ParseMilliseconds(s string) (int32, error) {
	v, err := ParseReal10(s, 3)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, ErrNegative
	}
	return v, nil
}

// Timeval is a second/microsecond pair, the resolution element timers use.
type Timeval struct {
	Sec  uint32
	Usec int32
}

// ParseTimeval parses seconds-since-epoch with an optional fractional part,
// e.g. "1000.5" or ".25".
func ParseTimeval(s string) (Timeval, error) {
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		dot = len(s)
	}

	var tv Timeval
	if dot > 0 {
		sec, err := ParseUnsigned(s[:dot], 0)
		if err != nil {
			return Timeval{}, err
		}
		tv.Sec = sec
	}
	if dot < len(s)-1 {
		usec, err := ParseReal10(s[dot:], 6)
		if err != nil {
			return Timeval{}, err
		}
		tv.Usec = usec
	}
	return tv, nil
}
