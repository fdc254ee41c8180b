package confarg

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// SlotKind discriminates slot-list entries: genuine value slots and the
// structural markers that shape the signature.
type SlotKind uint8

const (
	// SlotValue is an argument to parse and store.
	SlotValue SlotKind = iota
	// SlotOptionalMarker makes every following slot optional.
	SlotOptionalMarker
	// SlotKeywordsMarker ends the positional section; Mixed controls
	// whether keyword tokens may be interleaved with positional ones.
	SlotKeywordsMarker
	// SlotIgnore occupies a position but parses and stores nothing.
	SlotIgnore
	// SlotIgnoreRest accepts any number of trailing tokens unexamined.
	SlotIgnoreRest
)

// Slot is one entry of a declared argument signature.
type Slot struct {
	Kind    SlotKind
	Type    string // registered type name, for SlotValue
	Desc    string
	Keyword string // nonempty makes this a keyword slot
	Extra   int    // fractional digits/bits for types with FlagExtraInt
	Mixed   bool   // for SlotKeywordsMarker
	Store   any
	Store2  any // second destination for types with FlagStore2
}

// Arg declares a positional slot of the named type. store is the
// destination pointer; prefix types take a second destination for the mask.
func Arg(typ, desc string, store ...any) Slot {
	s := Slot{Kind: SlotValue, Type: typ, Desc: desc}
	s.setStores(store)
	return s
}

// ArgExtra is Arg for types that take an integer parameter (real10/real2
// fractional digits or bits).
func ArgExtra(typ, desc string, extra int, store ...any) Slot {
	s := Arg(typ, desc, store...)
	s.Extra = extra
	return s
}

// Keyword declares a keyword slot bound by name rather than position.
func Keyword(name, typ, desc string, store ...any) Slot {
	s := Arg(typ, desc, store...)
	s.Keyword = name
	return s
}

// KeywordExtra is Keyword with an integer type parameter.
func KeywordExtra(name, typ, desc string, extra int, store ...any) Slot {
	s := Keyword(name, typ, desc, store...)
	s.Extra = extra
	return s
}

// Optional marks every following slot optional.
func Optional() Slot { return Slot{Kind: SlotOptionalMarker} }

// UnmixedKeywords ends the positional section; keyword tokens must follow
// all positional tokens.
func UnmixedKeywords() Slot { return Slot{Kind: SlotKeywordsMarker} }

// MixedKeywords ends the positional section but lets keyword tokens mix
// with positional ones.
func MixedKeywords() Slot { return Slot{Kind: SlotKeywordsMarker, Mixed: true} }

// Ignore declares a positional slot whose token is accepted and discarded.
func Ignore() Slot { return Slot{Kind: SlotIgnore} }

// IgnoreRest accepts any trailing tokens beyond the declared slots.
func IgnoreRest() Slot { return Slot{Kind: SlotIgnoreRest} }

func (s *Slot) setStores(store []any) {
	if len(store) > 0 {
		s.Store = store[0]
	}
	if len(store) > 1 {
		s.Store2 = store[1]
	}
}

// Value is a slot bound to a raw token plus its parsed-but-uncommitted
// intermediate value.
type Value struct {
	Type    *ArgType
	Desc    string
	Keyword string
	Extra   int
	Store   any
	Store2  any

	raw    string
	filled bool
	active bool
	ignore bool

	B       bool
	I       int32
	U       uint32
	TV      Timeval
	S       string
	IP4     IP4Addr
	IP4Mask IP4Addr
	IP6     IP6Addr
	IP6Mask IP6Addr
	Ether   EtherAddr
	Elem    any
}

// ElementResolver finds named processing elements for "element" arguments.
type ElementResolver interface {
	FindElement(name string) (any, error)
}

// maxValues bounds the reusable slot scratch buffer.
const maxValues = 80

// Context carries everything a match needs: the type registry, the optional
// address resolver and element resolver, and the slot scratch buffer. Not
// safe for concurrent use.
type Context struct {
	Registry *Registry
	Resolver Resolver
	Elements ElementResolver

	values []Value
}

// NewContext returns a Context with a freshly populated registry and no
// resolvers.
func NewContext() *Context {
	return &Context{Registry: NewRegistry()}
}

func (cx *Context) scratch() []Value {
	if cx.values == nil {
		cx.values = make([]Value, 0, maxValues)
	}
	return cx.values[:0]
}

// Parse splits conf on top-level commas and matches the arguments against
// the slot list. On success every requested destination has been written and
// the count of stored slots is returned; on failure nothing was stored,
// diagnostics went to errh, and the error summarizes them. A nil errh uses
// an internal collector; a nil cx uses a fresh default Context.
func Parse(cx *Context, errh ErrorHandler, conf string, slots ...Slot) (int, error) {
	return ParseArgs(cx, errh, SplitCommas(conf), slots...)
}

// ParseArgs matches pre-split arguments against the slot list.
func ParseArgs(cx *Context, errh ErrorHandler, args []string, slots ...Slot) (int, error) {
	return matchArgs(cx, errh, args, "argument", ", ", false, slots)
}

// ParseSpaced splits conf on whitespace and matches the words against the
// slot list.
func ParseSpaced(cx *Context, errh ErrorHandler, conf string, slots ...Slot) (int, error) {
	return matchArgs(cx, errh, SplitSpaces(conf), "word", " ", false, slots)
}

// ParseKeyword matches a single argument in keyword-only mode: no positional
// slots, and tokens matching no declared keyword are silently ignored.
func ParseKeyword(cx *Context, errh ErrorHandler, arg string, slots ...Slot) (int, error) {
	return matchArgs(cx, errh, []string{arg}, "argument", ", ", true, slots)
}

// keyword assignment results
const (
	kwSuccess = iota
	kwNoKeyword
	kwUnkKeyword
	kwDupKeyword
)

func matchArgs(cx *Context, errh ErrorHandler, args []string, argName, separator string, keywordsOnly bool, slots []Slot) (int, error) {
	if cx == nil {
		cx = NewContext()
	}
	var collect *CollectingHandler
	if errh == nil {
		collect = &CollectingHandler{}
		errh = collect
	}
	nerrorsIn := errh.NErrors()

	nrequired, npositional := -1, -1
	mixed, ignoreRest := false, false
	if keywordsOnly {
		nrequired, npositional = 0, 0
		ignoreRest = true
	}

	// derive the runtime value list from the declared slots
	values := cx.scratch()
build:
	for si := range slots {
		slot := &slots[si]
		switch slot.Kind {

		case SlotOptionalMarker:
			if nrequired < 0 {
				nrequired = len(values)
			}

		case SlotKeywordsMarker:
			if nrequired < 0 {
				nrequired = len(values)
			}
			if npositional < 0 {
				npositional = len(values)
			}
			mixed = slot.Mixed

		case SlotIgnore:
			if len(values) == maxValues {
				errh.Errorf("too many argument slots")
				return 0, ErrTooManyArgs
			}
			values = append(values, Value{ignore: true})

		case SlotIgnoreRest:
			if nrequired < 0 {
				nrequired = len(values)
			}
			ignoreRest = true
			break build

		case SlotValue:
			if slot.Keyword != "" && npositional < 0 {
				// keyword slots open the keyword section implicitly,
				// in mixed mode
				if nrequired < 0 {
					nrequired = len(values)
				}
				npositional = len(values)
				mixed = true
			}
			if slot.Keyword == "" && npositional >= 0 {
				errh.Errorf("positional slot after keyword slots")
				return 0, errors.New("positional slot after keyword slots")
			}
			for i := 0; i < len(values); i++ {
				if slot.Keyword != "" && values[i].Keyword == slot.Keyword {
					errh.Errorf("keyword %s declared twice", slot.Keyword)
					return 0, errors.Errorf("keyword %s declared twice", slot.Keyword)
				}
			}
			t, err := cx.Registry.Lookup(slot.Type)
			if err != nil {
				errh.Errorf("unknown argument type %q", slot.Type)
				return 0, err
			}
			if len(values) == maxValues {
				errh.Errorf("too many argument slots")
				return 0, ErrTooManyArgs
			}
			values = append(values, Value{
				Type:    t,
				Desc:    slot.Desc,
				Keyword: slot.Keyword,
				Extra:   slot.Extra,
				Store:   slot.Store,
				Store2:  slot.Store2,
			})
		}
	}
	cx.values = values

	if nrequired < 0 {
		nrequired = len(values)
	}
	if npositional < 0 {
		npositional = len(values)
	}

	keywordSlot := func(name string) int {
		for i := npositional; i < len(values); i++ {
			if values[i].Keyword == name {
				return i
			}
		}
		return -1
	}

	// assignKeyword binds arg as a keyword pair if it has one. A bare token
	// exactly matching a declared keyword takes the following token as its
	// value; usedNext reports that consumption.
	assignKeyword := func(arg, next string, haveNext bool) (result int, usedNext bool) {
		keyword, rest, ok := keywordToken(arg)
		if !ok {
			return kwNoKeyword, false
		}
		if rest == "" {
			if !haveNext || keywordSlot(keyword) < 0 {
				return kwNoKeyword, false
			}
			rest, usedNext = next, true
		}
		i := keywordSlot(keyword)
		if i < 0 {
			return kwUnkKeyword, false
		}
		if values[i].filled {
			return kwDupKeyword, usedNext
		}
		values[i].filled = true
		values[i].raw = rest
		return kwSuccess, usedNext
	}

	keywordError := func(result int, arg string) string {
		keyword, _, _ := keywordToken(arg)
		if result == kwDupKeyword {
			return keyword + " (duplicate keyword)"
		}
		return keyword
	}

	// assign tokens to positions, left to right
	npositionalSupplied := 0
	var kwErrors []string
	sawDup := false
	for ai := 0; ai < len(args); ai++ {
		arg := args[ai]
		next, haveNext := "", false
		if ai+1 < len(args) {
			next, haveNext = args[ai+1], true
		}
		if npositionalSupplied >= npositional {
			result, usedNext := assignKeyword(arg, next, haveNext)
			if usedNext {
				ai++
			}
			switch {
			case result == kwDupKeyword:
				kwErrors = append(kwErrors, keywordError(result, arg))
				sawDup = true
			case result == kwSuccess || ignoreRest:
				// fine
			case result == kwNoKeyword:
				npositionalSupplied++ // arity error reported below
			default:
				kwErrors = append(kwErrors, keywordError(result, arg))
			}
			continue
		}

		if mixed {
			result, usedNext := assignKeyword(arg, next, haveNext)
			if usedNext {
				ai++
			}
			if result == kwSuccess {
				continue
			}
			if result == kwDupKeyword {
				kwErrors = append(kwErrors, keywordError(result, arg))
				sawDup = true
				continue
			}
			// near-keywords fall through to positional binding
		}

		values[npositionalSupplied].raw = arg
		values[npositionalSupplied].filled = true
		npositionalSupplied++
	}

	// keyword errors fail the call before any type-specific parsing
	if len(kwErrors) > 0 && !keywordsOnly {
		var valid []string
		for i := npositional; i < len(values); i++ {
			valid = append(valid, values[i].Keyword)
		}
		errh.Errorf("bad keyword(s) %s\n(valid keywords are %s)",
			strings.Join(kwErrors, ", "), strings.Join(valid, ", "))
		kind := ErrUnknownKeyword
		if sawDup && len(kwErrors) == countDups(kwErrors) {
			kind = ErrDuplicateKeyword
		}
		return 0, errors.Wrapf(kind, "bad keyword(s) %s", strings.Join(kwErrors, ", "))
	}

	// arity: reconstruct and report the declared signature
	if npositionalSupplied < nrequired || npositionalSupplied > npositional {
		var sig strings.Builder
		for i := 0; i < npositional; i++ {
			if i == nrequired {
				if nrequired > 0 {
					sig.WriteString(" [")
				} else {
					sig.WriteString("[")
				}
			}
			if i > 0 {
				sig.WriteString(separator)
			}
			switch {
			case values[i].ignore:
				sig.WriteString("<ignored argument>")
			case values[i].Type != nil:
				sig.WriteString(values[i].Type.Description)
			default:
				sig.WriteString("??")
			}
		}
		if ignoreRest {
			sig.WriteString("...")
		}
		if nrequired < npositional {
			sig.WriteString("]")
		}
		if npositional < len(values) {
			if npositional > 0 {
				sig.WriteString(separator)
			}
			sig.WriteString("[keywords]")
		}

		whoops := "too few"
		if npositionalSupplied > npositional {
			whoops = "too many"
		}
		if sig.Len() > 0 {
			errh.Errorf("%s %ss; expected `%s'", whoops, argName, sig.String())
		} else {
			errh.Errorf("expected empty %s list", argName)
		}
		return 0, errors.Wrapf(ErrArity, "%s %ss", whoops, argName)
	}

	// mark active slots: supplied positionals plus filled keywords
	for i := 0; i < npositionalSupplied; i++ {
		values[i].active = true
	}
	for i := npositional; i < len(values); i++ {
		values[i].active = values[i].filled
	}

	// parse every active slot, aggregating diagnostics
	for i := 0; i < npositional; i++ {
		v := &values[i]
		if v.active && !v.ignore {
			v.Type.Parse(v, v.raw, fmt.Sprintf("%s %d", argName, i+1), cx, errh)
		}
	}
	for i := npositional; i < len(values); i++ {
		v := &values[i]
		if v.active && !v.ignore {
			v.Type.Parse(v, v.raw, "keyword "+v.Keyword, cx, errh)
		}
	}

	// all-or-nothing: any parse diagnostic means nothing is stored
	if n := errh.NErrors() - nerrorsIn; n > 0 {
		if collect != nil {
			return 0, collect.Err()
		}
		return 0, errors.Errorf("%d configuration error(s)", n)
	}

	// commit
	nset := 0
	for i := range values {
		v := &values[i]
		if !v.active {
			continue
		}
		if !v.ignore {
			v.Type.Store(v, cx)
		}
		nset++
	}
	return nset, nil
}

func countDups(kwErrors []string) int {
	n := 0
	for _, e := range kwErrors {
		if strings.HasSuffix(e, "(duplicate keyword)") {
			n++
		}
	}
	return n
}
