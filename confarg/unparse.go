package confarg

import (
	"fmt"
	"strconv"
	"strings"
)

// UnparseBool formats b as "true" or "false".
func UnparseBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// UnparseUnsigned formats q in the given base (8, 10 or 16), optionally with
// uppercase digits.
func UnparseUnsigned(q uint64, base int, uppercase bool) string {
	s := strconv.FormatUint(q, base)
	if uppercase {
		s = strings.ToUpper(s)
	}
	return s
}

// UnparseReal2 formats a binary fixed-point value with fracBits fractional
// bits as its exact decimal expansion. A fraction over 2^fracBits terminates
// in at most fracBits decimal digits, so the expansion is finite and carries
// no trailing zeros. Invariant: ParseUnsignedReal2(UnparseReal2(v, b), b) == v
// for every v and b < 29.
func UnparseReal2(real uint32, fracBits int) string {
	var sb strings.Builder

	intPart := real >> fracBits
	sb.WriteString(strconv.FormatUint(uint64(intPart), 10))

	one := uint64(1) << fracBits
	r := uint64(real) & (one - 1)
	if r == 0 {
		return sb.String()
	}

	sb.WriteByte('.')
	for r != 0 {
		r *= 10
		sb.WriteByte(byte('0' + (r >> fracBits)))
		r &= one - 1
	}

	return sb.String()
}

// UnparseSignedReal2 is UnparseReal2 for signed values.
func UnparseSignedReal2(real int32, fracBits int) string {
	if real < 0 {
		return "-" + UnparseReal2(uint32(-int64(real)), fracBits)
	}
	return UnparseReal2(uint32(real), fracBits)
}

// UnparseReal10 formats a decimal fixed-point value scaled by 10^fracDigits,
// dropping trailing fractional zeros.
func UnparseReal10(real uint32, fracDigits int) string {
	one := uint32(1)
	for i := 0; i < fracDigits; i++ {
		one *= 10
	}

	intPart := real / one
	fracPart := real - intPart*one

	if fracPart == 0 {
		return strconv.FormatUint(uint64(intPart), 10)
	}

	s := fmt.Sprintf("%d.%0*d", intPart, fracDigits, fracPart)
	return strings.TrimRight(s, "0")
}

// UnparseSignedReal10 is UnparseReal10 for signed values.
func UnparseSignedReal10(real int32, fracDigits int) string {
	if real < 0 {
		return "-" + UnparseReal10(uint32(-int64(real)), fracDigits)
	}
	return UnparseReal10(uint32(real), fracDigits)
}

// UnparseMilliseconds formats a millisecond count as seconds.
func UnparseMilliseconds(ms int32) string {
	return UnparseSignedReal10(ms, 3)
}
