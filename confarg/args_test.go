package confarg

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// fakeElements resolves element names out of a fixed table.
type fakeElements struct {
	elements map[string]any
}

func (f *fakeElements) FindElement(name string) (any, error) {
	if el, ok := f.elements[name]; ok {
		return el, nil
	}
	return nil, errors.Errorf("no element named %q", name)
}

// ============================================================
// Positional Matching Tests
// ============================================================

func TestParseRequired(t *testing.T) {
	var a int32
	n, err := Parse(nil, nil, "5", Arg(TypeInt, "count", &a))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, int32(5), a)
}

func TestParseOptionalSupplied(t *testing.T) {
	var a, b int32
	n, err := Parse(nil, nil, "5, 6",
		Arg(TypeInt, "first", &a),
		Optional(),
		Arg(TypeInt, "second", &b))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, int32(5), a)
	require.Equal(t, int32(6), b)
}

func TestParseOptionalOmitted(t *testing.T) {
	var a int32
	b := int32(99)
	n, err := Parse(nil, nil, "5",
		Arg(TypeInt, "first", &a),
		Optional(),
		Arg(TypeInt, "second", &b))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, int32(99), b) // untouched
}

func TestParseMixedTypes(t *testing.T) {
	var name string
	var count int32
	var enabled bool
	n, err := Parse(nil, nil, `"round robin", 3, true`,
		Arg(TypeString, "policy name", &name),
		Arg(TypeInt, "queue count", &count),
		Arg(TypeBool, "enabled", &enabled))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, "round robin", name)
	require.Equal(t, int32(3), count)
	require.True(t, enabled)
}

// ============================================================
// Arity Tests
// ============================================================

func TestParseTooFew(t *testing.T) {
	errh := &CollectingHandler{}
	var a int32
	_, err := Parse(nil, errh, "", Arg(TypeInt, "count", &a))
	require.Equal(t, ErrArity, errors.Cause(err))
	require.Equal(t, []string{"too few arguments; expected `int'"}, errh.Errors())
}

func TestParseTooMany(t *testing.T) {
	errh := &CollectingHandler{}
	var a int32
	_, err := Parse(nil, errh, "1, 2", Arg(TypeInt, "count", &a))
	require.Equal(t, ErrArity, errors.Cause(err))
	require.Equal(t, []string{"too many arguments; expected `int'"}, errh.Errors())
}

func TestParseSignatureWithOptional(t *testing.T) {
	errh := &CollectingHandler{}
	var a int32
	var s string
	_, err := Parse(nil, errh, "",
		Arg(TypeInt, "count", &a),
		Optional(),
		Arg(TypeString, "name", &s))
	require.Equal(t, ErrArity, errors.Cause(err))
	require.Equal(t, []string{"too few arguments; expected `int [, string]'"}, errh.Errors())
}

func TestParseSignatureWithKeywords(t *testing.T) {
	errh := &CollectingHandler{}
	var a, k int32
	_, err := Parse(nil, errh, "",
		Arg(TypeInt, "count", &a),
		Keyword("LIMIT", TypeInt, "limit", &k))
	require.Equal(t, ErrArity, errors.Cause(err))
	require.Equal(t, []string{"too few arguments; expected `int, [keywords]'"}, errh.Errors())
}

func TestParseExpectedEmpty(t *testing.T) {
	errh := &CollectingHandler{}
	_, err := Parse(nil, errh, "5")
	require.Equal(t, ErrArity, errors.Cause(err))
	require.Equal(t, []string{"expected empty argument list"}, errh.Errors())
}

// ============================================================
// All-or-Nothing Tests
// ============================================================

func TestParseErrorStoresNothing(t *testing.T) {
	errh := &CollectingHandler{}
	a, b := int32(-1), int32(-1)
	_, err := Parse(nil, errh, "5, junk",
		Arg(TypeInt, "first", &a),
		Arg(TypeInt, "second", &b))
	require.Error(t, err)
	require.Equal(t, int32(-1), a)
	require.Equal(t, int32(-1), b)
	require.Equal(t, []string{"argument 2 takes int (second)"}, errh.Errors())
}

func TestParseArityStoresNothing(t *testing.T) {
	a := int32(-1)
	_, err := Parse(nil, nil, "5, 6", Arg(TypeInt, "count", &a))
	require.Error(t, err)
	require.Equal(t, int32(-1), a)
}

// ============================================================
// Keyword Tests
// ============================================================

func TestParseKeywordSupplied(t *testing.T) {
	var a, k int32
	n, err := Parse(nil, nil, "5, LIMIT 7",
		Arg(TypeInt, "count", &a),
		Keyword("LIMIT", TypeInt, "limit", &k))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, int32(5), a)
	require.Equal(t, int32(7), k)
}

func TestParseKeywordOmitted(t *testing.T) {
	var a int32
	k := int32(99)
	n, err := Parse(nil, nil, "5",
		Arg(TypeInt, "count", &a),
		Keyword("LIMIT", TypeInt, "limit", &k))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, int32(99), k)
}

func TestParseUnknownKeyword(t *testing.T) {
	errh := &CollectingHandler{}
	var a, k int32
	_, err := Parse(nil, errh, "5, BOGUS 7",
		Arg(TypeInt, "count", &a),
		Keyword("LIMIT", TypeInt, "limit", &k))
	require.Equal(t, ErrUnknownKeyword, errors.Cause(err))
	require.Equal(t, []string{"bad keyword(s) BOGUS\n(valid keywords are LIMIT)"}, errh.Errors())
	require.Equal(t, int32(0), a) // nothing stored
}

func TestParseDuplicateKeyword(t *testing.T) {
	errh := &CollectingHandler{}
	var a, k int32
	_, err := Parse(nil, errh, "5, LIMIT 7, LIMIT 8",
		Arg(TypeInt, "count", &a),
		Keyword("LIMIT", TypeInt, "limit", &k))
	require.Equal(t, ErrDuplicateKeyword, errors.Cause(err))
	require.Equal(t, int32(0), k)
}

func TestParseDeclaringKeywordTwice(t *testing.T) {
	var k, k2 int32
	_, err := Parse(nil, nil, "LIMIT 7",
		Keyword("LIMIT", TypeInt, "limit", &k),
		Keyword("LIMIT", TypeInt, "limit again", &k2))
	require.Error(t, err)
}

func TestParsePositionalAfterKeyword(t *testing.T) {
	var a, k int32
	_, err := Parse(nil, nil, "5",
		Keyword("LIMIT", TypeInt, "limit", &k),
		Arg(TypeInt, "count", &a))
	require.Error(t, err)
}

func TestParseMixedKeywords(t *testing.T) {
	var a, k int32
	n, err := Parse(nil, nil, "LIMIT 7, 5",
		Arg(TypeInt, "count", &a),
		MixedKeywords(),
		Keyword("LIMIT", TypeInt, "limit", &k))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, int32(5), a)
	require.Equal(t, int32(7), k)
}

// Under an explicit unmixed marker, keywords bind only after every positional
// slot is used up, so a keyword-shaped token still lands in an open optional
// slot.
func TestParseUnmixedKeywordEatenByOptional(t *testing.T) {
	var a, b, k int32
	_, err := Parse(nil, nil, "5, LIMIT 7",
		Arg(TypeInt, "first", &a),
		Optional(),
		Arg(TypeInt, "second", &b),
		UnmixedKeywords(),
		Keyword("LIMIT", TypeInt, "limit", &k))
	require.Error(t, err) // "LIMIT 7" fails to parse as int
}

// Keyword slots declared without a marker open a mixed section: a keyword
// pair binds by name even while optional positional slots remain open, and
// a missing required positional is then an arity error rather than a type
// error on the keyword token.
func TestParseImplicitKeywordSectionIsMixed(t *testing.T) {
	var a, b, k int32
	n, err := Parse(nil, nil, "5, K 7",
		Arg(TypeInt, "first", &a),
		Optional(),
		Arg(TypeInt, "second", &b),
		Keyword("K", TypeInt, "limit", &k))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, int32(5), a)
	require.Equal(t, int32(7), k)

	errh := &CollectingHandler{}
	_, err = Parse(nil, errh, "K 7",
		Arg(TypeInt, "first", &a),
		Optional(),
		Arg(TypeInt, "second", &b),
		Keyword("K", TypeInt, "limit", &k))
	require.Equal(t, ErrArity, errors.Cause(err))
	require.Equal(t, []string{"too few arguments; expected `int [, int], [keywords]'"}, errh.Errors())
}

// A bare token that exactly names a declared keyword takes the following
// token as its value.
func TestParseKeywordPairsAcrossTokens(t *testing.T) {
	var a, b, k int32
	n, err := ParseArgs(nil, nil, []string{"5", "6", "K", "7"},
		Arg(TypeInt, "first", &a),
		Optional(),
		Arg(TypeInt, "second", &b),
		Keyword("K", TypeInt, "limit", &k))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, int32(5), a)
	require.Equal(t, int32(6), b)
	require.Equal(t, int32(7), k)

	_, err = ParseArgs(nil, nil, []string{"K", "7"},
		Arg(TypeInt, "first", &a),
		Optional(),
		Arg(TypeInt, "second", &b),
		Keyword("K", TypeInt, "limit", &k))
	require.Equal(t, ErrArity, errors.Cause(err))
}

func TestParseKeywordOnly(t *testing.T) {
	cx := NewContext()
	var k int32
	n, err := ParseKeyword(cx, nil, "LIMIT 7",
		Keyword("LIMIT", TypeInt, "limit", &k))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, int32(7), k)

	// unknown keywords pass silently in keyword-only mode
	n, err = ParseKeyword(cx, nil, "OTHER 9",
		Keyword("LIMIT", TypeInt, "limit", &k))
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

// ============================================================
// Ignore and Slot Error Tests
// ============================================================

func TestParseIgnore(t *testing.T) {
	var a int32
	n, err := ParseArgs(nil, nil, []string{"5", "anything at all"},
		Arg(TypeInt, "count", &a),
		Ignore())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, int32(5), a)
}

func TestParseIgnoreRest(t *testing.T) {
	var a int32
	n, err := ParseArgs(nil, nil, []string{"5", "x", "y", "z"},
		Arg(TypeInt, "count", &a),
		IgnoreRest())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, int32(5), a)
}

func TestParseUnknownSlotType(t *testing.T) {
	var a int32
	_, err := Parse(nil, nil, "5", Arg("no_such_type", "x", &a))
	require.Equal(t, ErrUnknownType, errors.Cause(err))
}

func TestParseTooManySlots(t *testing.T) {
	slots := make([]Slot, 0, 81)
	stores := make([]int32, 81)
	for i := range stores {
		slots = append(slots, Arg(TypeInt, "n", &stores[i]))
	}
	_, err := ParseArgs(nil, nil, nil, slots...)
	require.Equal(t, ErrTooManyArgs, errors.Cause(err))
}

// ============================================================
// Type Coverage Tests
// ============================================================

func TestParseSpacedWords(t *testing.T) {
	var proto string
	var port int32
	n, err := ParseSpaced(nil, nil, "udp 53",
		Arg(TypeWord, "protocol", &proto),
		Arg(TypeInt, "port", &port))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, "udp", proto)
	require.Equal(t, int32(53), port)
}

func TestParseAddressTypes(t *testing.T) {
	var src IP4Addr
	var net, mask IP4Addr
	var hw EtherAddr
	n, err := Parse(nil, nil, "10.0.0.1, 18.0.0.0/8, 0:1:2:3:4:5",
		Arg(TypeIP4, "source", &src),
		Arg(TypeIP4Prefix, "network", &net, &mask),
		Arg(TypeEther, "hardware", &hw))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, IP4Addr{10, 0, 0, 1}, src)
	require.Equal(t, IP4Addr{18, 0, 0, 0}, net)
	require.Equal(t, IP4Addr{255, 0, 0, 0}, mask)
	require.Equal(t, EtherAddr{0, 1, 2, 3, 4, 5}, hw)
}

func TestParseIP6PrefixSlot(t *testing.T) {
	var addr, mask IP6Addr
	n, err := Parse(nil, nil, "2001:db8::/32",
		Arg(TypeIP6Prefix, "block", &addr, &mask))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, IP6Addr{0x20, 0x01, 0x0d, 0xb8}, addr)
	require.Equal(t, MakeIP6Prefix(32), mask)
}

func TestParseBoundedWidths(t *testing.T) {
	var b uint8
	var sh int16
	var us uint16
	n, err := Parse(nil, nil, "200, -30000, 60000",
		Arg(TypeByte, "ttl", &b),
		Arg(TypeShort, "offset", &sh),
		Arg(TypeUShort, "port", &us))
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, uint8(200), b)
	require.Equal(t, int16(-30000), sh)
	require.Equal(t, uint16(60000), us)
}

func TestParseBoundedWidthRange(t *testing.T) {
	errh := &CollectingHandler{}
	var b uint8
	_, err := Parse(nil, errh, "300", Arg(TypeByte, "ttl", &b))
	require.Error(t, err)
	require.Equal(t, []string{"argument 1 (ttl) must be <= 255"}, errh.Errors())
}

func TestParseRealSlots(t *testing.T) {
	var rate int32
	var weight uint32
	n, err := Parse(nil, nil, "1.5, 0.5",
		ArgExtra(TypeReal10, "rate", 3, &rate),
		ArgExtra(TypeUReal2, "weight", 16, &weight))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, int32(1500), rate)
	require.Equal(t, uint32(32768), weight)
}

func TestParseRealInvalidDigits(t *testing.T) {
	errh := &CollectingHandler{}
	var rate int32
	_, err := Parse(nil, errh, "1.5", ArgExtra(TypeReal10, "rate", 10, &rate))
	require.Error(t, err)
	require.Equal(t, []string{"argument 1 (rate) is an invalid real"}, errh.Errors())
}

func TestParseMillisecondsSlot(t *testing.T) {
	var msec int32
	var tv Timeval
	n, err := Parse(nil, nil, "0.25, 1000.5",
		Arg(TypeMilliseconds, "interval", &msec),
		Arg(TypeTimeval, "deadline", &tv))
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, int32(250), msec)
	require.Equal(t, Timeval{1000, 500000}, tv)
}

func TestParseIPSetSlot(t *testing.T) {
	var set IPSet
	n, err := Parse(nil, nil, "1.0.0.1 2.0.0.2",
		Arg(TypeIPSet, "peers", &set))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Len(t, set, 2)
	require.True(t, set.Contains(IP4Addr{1, 0, 0, 1}))
}

func TestParseElementSlot(t *testing.T) {
	cx := NewContext()
	cx.Elements = &fakeElements{elements: map[string]any{"q0": "queue-zero"}}

	var el any
	n, err := Parse(cx, nil, "q0", Arg(TypeElement, "queue", &el))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, "queue-zero", el)

	_, err = Parse(cx, nil, "missing", Arg(TypeElement, "queue", &el))
	require.Error(t, err)
}

func TestParseArgumentVerbatim(t *testing.T) {
	var raw string
	n, err := Parse(nil, nil, `"a, b" /c`, Arg(TypeArgument, "anything", &raw))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, `"a, b" /c`, raw)
}

func TestParseResolverOnContext(t *testing.T) {
	cx := NewContext()
	cx.Resolver = &fakeResolver{ip4: map[string]IP4Addr{"gateway": {10, 0, 0, 1}}}

	var a IP4Addr
	n, err := Parse(cx, nil, "gateway", Arg(TypeIP4, "next hop", &a))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, IP4Addr{10, 0, 0, 1}, a)
}

// A Context survives repeated matches; the scratch slot buffer is reused.
func TestParseContextReuse(t *testing.T) {
	cx := NewContext()
	var a int32
	for i := 0; i < 5; i++ {
		n, err := Parse(cx, nil, "7", Arg(TypeInt, "count", &a))
		require.NoError(t, err)
		require.Equal(t, 1, n)
		require.Equal(t, int32(7), a)
	}
}
