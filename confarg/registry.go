package confarg

import (
	"math"
	"reflect"

	"github.com/pkg/errors"
)

// TypeFlags describe what extra slot parameters an argument type consumes.
type TypeFlags uint8

const (
	// FlagExtraInt marks types taking an integer parameter (fractional
	// digits or bits).
	FlagExtraInt TypeFlags = 1 << iota
	// FlagStore2 marks types writing a second destination (prefix masks).
	FlagStore2
)

// builtinKind is the dispatch tag for the built-in parse/store functions.
type builtinKind uint8

const (
	kindCustom builtinKind = iota
	kindArgument
	kindString
	kindWord
	kindBool
	kindByte
	kindShort
	kindUShort
	kindInt
	kindUnsigned
	kindReal2
	kindUReal2
	kindReal10
	kindUReal10
	kindMsec
	kindTimeval
	kindIP4
	kindIP4Prefix
	kindIP4OrPrefix
	kindIPSet
	kindEther
	kindElement
	kindIP6
	kindIP6Prefix
	kindIP6OrPrefix
)

// Built-in argument type names.
const (
	TypeArgument     = "arg"
	TypeString       = "string"
	TypeWord         = "word"
	TypeBool         = "bool"
	TypeByte         = "byte"
	TypeShort        = "short"
	TypeUShort       = "u_short"
	TypeInt          = "int"
	TypeUnsigned     = "u_int"
	TypeReal2        = "real2"
	TypeUReal2       = "u_real2"
	TypeReal10       = "real10"
	TypeUReal10      = "u_real10"
	TypeMilliseconds = "msec"
	TypeTimeval      = "timeval"
	TypeIP4          = "ip_addr"
	TypeIP4Prefix    = "ip_prefix"
	TypeIP4OrPrefix  = "ip_addr_or_prefix"
	TypeIPSet        = "ip_addr_set"
	TypeEther        = "ether_addr"
	TypeElement      = "element"
	TypeIP6          = "ip6_addr"
	TypeIP6Prefix    = "ip6_prefix"
	TypeIP6OrPrefix  = "ip6_addr_or_prefix"
)

// ParseFunc converts a raw argument into v's intermediate value, reporting
// problems through errh under the given argument name.
type ParseFunc func(v *Value, arg, argName string, cx *Context, errh ErrorHandler)

// StoreFunc commits v's intermediate value into its destination.
type StoreFunc func(v *Value, cx *Context)

// ArgType is one registered argument type.
type ArgType struct {
	Name        string
	Description string
	Flags       TypeFlags
	Parse       ParseFunc
	Store       StoreFunc

	kind     builtinKind
	useCount int
}

// Registry maps type names to argument types. It is not safe for concurrent
// mutation; serialize Register/Unregister against Lookup externally.
type Registry struct {
	types map[string]*ArgType
}

// NewRegistry returns a registry populated with the built-in types.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]*ArgType)}

	r.registerBuiltin(TypeArgument, "??", 0, kindArgument)
	r.registerBuiltin(TypeString, "string", 0, kindString)
	r.registerBuiltin(TypeWord, "word", 0, kindWord)
	r.registerBuiltin(TypeBool, "bool", 0, kindBool)
	r.registerBuiltin(TypeByte, "byte", 0, kindByte)
	r.registerBuiltin(TypeShort, "short", 0, kindShort)
	r.registerBuiltin(TypeUShort, "unsigned short", 0, kindUShort)
	r.registerBuiltin(TypeInt, "int", 0, kindInt)
	r.registerBuiltin(TypeUnsigned, "unsigned", 0, kindUnsigned)
	r.registerBuiltin(TypeReal2, "real", FlagExtraInt, kindReal2)
	r.registerBuiltin(TypeUReal2, "unsigned real", FlagExtraInt, kindUReal2)
	r.registerBuiltin(TypeReal10, "real", FlagExtraInt, kindReal10)
	r.registerBuiltin(TypeUReal10, "unsigned real", FlagExtraInt, kindUReal10)
	r.registerBuiltin(TypeMilliseconds, "time in seconds", 0, kindMsec)
	r.registerBuiltin(TypeTimeval, "seconds since the epoch", 0, kindTimeval)
	r.registerBuiltin(TypeIP4, "IP address", 0, kindIP4)
	r.registerBuiltin(TypeIP4Prefix, "IP address prefix", FlagStore2, kindIP4Prefix)
	r.registerBuiltin(TypeIP4OrPrefix, "IP address or prefix", FlagStore2, kindIP4OrPrefix)
	r.registerBuiltin(TypeIPSet, "set of IP addresses", 0, kindIPSet)
	r.registerBuiltin(TypeEther, "Ethernet address", 0, kindEther)
	r.registerBuiltin(TypeElement, "element name", 0, kindElement)
	r.registerBuiltin(TypeIP6, "IPv6 address", 0, kindIP6)
	r.registerBuiltin(TypeIP6Prefix, "IPv6 address prefix", FlagStore2, kindIP6Prefix)
	r.registerBuiltin(TypeIP6OrPrefix, "IPv6 address or prefix", FlagStore2, kindIP6OrPrefix)

	return r
}

func (r *Registry) registerBuiltin(name, desc string, flags TypeFlags, kind builtinKind) {
	r.types[name] = &ArgType{
		Name:        name,
		Description: desc,
		Flags:       flags,
		Parse:       defaultParse,
		Store:       defaultStore,
		kind:        kind,
		useCount:    1,
	}
}

// Register installs a caller-defined argument type. Registering an already
// installed name with identical behavior is an idempotent use-count bump;
// different behavior is ErrConflict.
func (r *Registry) Register(name, desc string, flags TypeFlags, parse ParseFunc, store StoreFunc) error {
	if t, ok := r.types[name]; ok {
		t.useCount++
		if t.kind != kindCustom || t.Description != desc || t.Flags != flags ||
			!sameFunc(t.Parse, parse) || !sameFunc(t.Store, store) {
			return errors.Wrapf(ErrConflict, "argument type %q", name)
		}
		return nil
	}

	r.types[name] = &ArgType{
		Name:        name,
		Description: desc,
		Flags:       flags,
		Parse:       parse,
		Store:       store,
		kind:        kindCustom,
		useCount:    1,
	}
	return nil
}

// Unregister drops one use of name, removing the type when its use count
// reaches zero. Unregistering an unknown name is a no-op.
func (r *Registry) Unregister(name string) {
	t, ok := r.types[name]
	if !ok {
		return
	}
	t.useCount--
	if t.useCount <= 0 {
		delete(r.types, name)
	}
}

// Lookup returns the argument type registered under name.
func (r *Registry) Lookup(name string) (*ArgType, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "%q", name)
	}
	return t, nil
}

func sameFunc(a, b any) bool {
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// defaultParse dispatches on the built-in kind. Diagnostics name the
// argument position or keyword and the slot's description.
func defaultParse(v *Value, arg, argName string, cx *Context, errh ErrorHandler) {
	desc := v.Desc
	res := cx.Resolver

	switch v.Type.kind {

	case kindArgument:
		v.S = arg

	case kindString:
		s, ok := ParseString(arg)
		if !ok {
			errh.Errorf("%s takes string (%s)", argName, desc)
			return
		}
		v.S = s

	case kindWord:
		w, ok := ParseWord(arg)
		if !ok {
			errh.Errorf("%s takes word (%s)", argName, desc)
			return
		}
		v.S = w

	case kindBool:
		b, err := ParseBool(arg)
		if err != nil {
			errh.Errorf("%s takes bool (%s)", argName, desc)
			return
		}
		v.B = b

	case kindByte:
		parseBoundedUnsigned(v, arg, argName, errh, 255)

	case kindShort:
		parseBoundedInt(v, arg, argName, errh, -0x8000, 0x7FFF)

	case kindUShort:
		parseBoundedUnsigned(v, arg, argName, errh, 0xFFFF)

	case kindInt:
		parseBoundedInt(v, arg, argName, errh, math.MinInt32, math.MaxInt32)

	case kindUnsigned:
		parseBoundedUnsigned(v, arg, argName, errh, math.MaxUint32)

	case kindReal10, kindUReal10:
		i, err := ParseReal10(arg, v.Extra)
		switch {
		case IsOverflow(err):
			errh.Errorf("overflow on %s (%s)", argName, desc)
		case errors.Cause(err) == ErrInvalid:
			errh.Errorf("%s (%s) is an invalid real", argName, desc)
		case err != nil:
			errh.Errorf("%s takes real (%s)", argName, desc)
		case v.Type.kind == kindUReal10 && i < 0:
			errh.Errorf("%s (%s) must be >= 0", argName, desc)
		default:
			v.I = i
		}

	case kindMsec:
		i, err := ParseMilliseconds(arg)
		switch {
		case IsOverflow(err):
			errh.Errorf("overflow on %s (%s)", argName, desc)
		case IsNegative(err):
			errh.Errorf("%s (%s) must be >= 0", argName, desc)
		case err != nil:
			errh.Errorf("%s takes time in seconds (%s)", argName, desc)
		default:
			v.I = i
		}

	case kindTimeval:
		tv, err := ParseTimeval(arg)
		switch {
		case IsOverflow(err):
			errh.Errorf("overflow on %s (%s)", argName, desc)
		case IsNegative(err):
			errh.Errorf("%s (%s) must be >= 0", argName, desc)
		case err != nil:
			errh.Errorf("%s takes seconds since the epoch (%s)", argName, desc)
		default:
			v.TV = tv
		}

	case kindReal2:
		i, err := ParseReal2(arg, v.Extra)
		switch {
		case IsOverflow(err):
			errh.Errorf("overflow on %s (%s)", argName, desc)
		case errors.Cause(err) == ErrInvalid:
			errh.Errorf("%s (%s) is an invalid real", argName, desc)
		case err != nil:
			errh.Errorf("%s takes real (%s)", argName, desc)
		default:
			v.I = i
		}

	case kindUReal2:
		u, err := ParseUnsignedReal2(arg, v.Extra)
		switch {
		case IsNegative(err):
			errh.Errorf("%s (%s) must be >= 0", argName, desc)
		case IsOverflow(err):
			errh.Errorf("overflow on %s (%s)", argName, desc)
		case errors.Cause(err) == ErrInvalid:
			errh.Errorf("%s (%s) is an invalid real", argName, desc)
		case err != nil:
			errh.Errorf("%s takes real (%s)", argName, desc)
		default:
			v.U = u
		}

	case kindIP4:
		a, err := ParseIP4(arg, res)
		if err != nil {
			errh.Errorf("%s takes IP address (%s)", argName, desc)
			return
		}
		v.IP4 = a

	case kindIP4Prefix, kindIP4OrPrefix:
		maskOptional := v.Type.kind == kindIP4OrPrefix
		a, m, err := ParseIP4Prefix(arg, res, maskOptional)
		if err != nil {
			errh.Errorf("%s takes IP address prefix (%s)", argName, desc)
			return
		}
		v.IP4, v.IP4Mask = a, m

	case kindIPSet:
		// validate now, commit into the destination set only at store time
		if err := ParseIPSet(arg, res, make(IPSet)); err != nil {
			errh.Errorf("%s takes set of IP addresses (%s)", argName, desc)
			return
		}
		v.S = arg

	case kindEther:
		a, err := ParseEther(arg, res)
		if err != nil {
			errh.Errorf("%s takes Ethernet address (%s)", argName, desc)
			return
		}
		v.Ether = a

	case kindElement:
		if arg == "" {
			v.Elem = nil
			return
		}
		if cx.Elements == nil {
			errh.Errorf("%s requires an element resolver (%s)", argName, desc)
			return
		}
		el, err := cx.Elements.FindElement(arg)
		if err != nil {
			errh.Errorf("%s: %v (%s)", argName, err, desc)
			return
		}
		v.Elem = el

	case kindIP6:
		a, err := ParseIP6(arg, res)
		if err != nil {
			errh.Errorf("%s takes IPv6 address (%s)", argName, desc)
			return
		}
		v.IP6 = a

	case kindIP6Prefix, kindIP6OrPrefix:
		maskOptional := v.Type.kind == kindIP6OrPrefix
		a, bits, err := ParseIP6Prefix(arg, res, maskOptional)
		if err != nil {
			errh.Errorf("%s takes IPv6 address prefix (%s)", argName, desc)
			return
		}
		v.IP6, v.IP6Mask = a, MakeIP6Prefix(bits)
	}
}

func parseBoundedInt(v *Value, arg, argName string, errh ErrorHandler, lo, hi int32) {
	i, err := ParseInt(arg, 0)
	switch {
	case err != nil && !IsOverflow(err):
		errh.Errorf("%s takes %s (%s)", argName, v.Type.Description, v.Desc)
	case IsOverflow(err):
		errh.Errorf("integer overflow on %s (%s)", argName, v.Desc)
	case i < lo:
		errh.Errorf("%s (%s) must be >= %d", argName, v.Desc, lo)
	case i > hi:
		errh.Errorf("%s (%s) must be <= %d", argName, v.Desc, hi)
	default:
		v.I = i
	}
}

func parseBoundedUnsigned(v *Value, arg, argName string, errh ErrorHandler, hi uint32) {
	u, err := ParseUnsigned(arg, 0)
	switch {
	case err != nil && !IsOverflow(err):
		errh.Errorf("%s takes %s (%s)", argName, v.Type.Description, v.Desc)
	case IsOverflow(err):
		errh.Errorf("integer overflow on %s (%s)", argName, v.Desc)
	case u > hi:
		errh.Errorf("%s (%s) must be <= %d", argName, v.Desc, hi)
	default:
		v.U = u
	}
}

// defaultStore commits through a typed destination pointer. A destination of
// the wrong type is a caller bug and panics.
func defaultStore(v *Value, cx *Context) {
	switch v.Type.kind {

	case kindBool:
		*v.Store.(*bool) = v.B

	case kindByte:
		*v.Store.(*uint8) = uint8(v.U)

	case kindShort:
		*v.Store.(*int16) = int16(v.I)

	case kindUShort:
		*v.Store.(*uint16) = uint16(v.U)

	case kindInt, kindReal2, kindReal10, kindUReal10, kindMsec:
		*v.Store.(*int32) = v.I

	case kindUnsigned, kindUReal2:
		*v.Store.(*uint32) = v.U

	case kindTimeval:
		*v.Store.(*Timeval) = v.TV

	case kindString, kindWord, kindArgument:
		*v.Store.(*string) = v.S

	case kindIP4:
		*v.Store.(*IP4Addr) = v.IP4

	case kindIP4Prefix, kindIP4OrPrefix:
		*v.Store.(*IP4Addr) = v.IP4
		*v.Store2.(*IP4Addr) = v.IP4Mask

	case kindIP6:
		*v.Store.(*IP6Addr) = v.IP6

	case kindIP6Prefix, kindIP6OrPrefix:
		*v.Store.(*IP6Addr) = v.IP6
		*v.Store2.(*IP6Addr) = v.IP6Mask

	case kindEther:
		*v.Store.(*EtherAddr) = v.Ether

	case kindIPSet:
		// validated at parse time; re-parse into the caller's set now that
		// the whole match is known error-free
		p := v.Store.(*IPSet)
		if *p == nil {
			*p = make(IPSet)
		}
		_ = ParseIPSet(v.S, cx.Resolver, *p)

	case kindElement:
		*v.Store.(*any) = v.Elem
	}
}
