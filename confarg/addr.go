package confarg

import (
	"fmt"
	"strings"
)

// IP4Addr is an IPv4 address in network byte order.
type IP4Addr [4]byte

// IP6Addr is an IPv6 address in network byte order.
type IP6Addr [16]byte

// EtherAddr is a 48-bit Ethernet MAC address.
type EtherAddr [6]byte

// String formats the address in dotted-quad form.
func (a IP4Addr) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", a[0], a[1], a[2], a[3])
}

// String formats the address in canonical compressed form.
func (a IP6Addr) String() string {
	var groups [8]uint16
	for i := 0; i < 8; i++ {
		groups[i] = uint16(a[2*i])<<8 | uint16(a[2*i+1])
	}

	// longest zero run of length >= 2 becomes ::
	runStart, runLen := -1, 0
	for i := 0; i < 8; {
		if groups[i] != 0 {
			i++
			continue
		}
		j := i
		for j < 8 && groups[j] == 0 {
			j++
		}
		if j-i > runLen {
			runStart, runLen = i, j-i
		}
		i = j
	}
	if runLen < 2 {
		runStart = -1
	}

	var sb strings.Builder
	for i := 0; i < 8; i++ {
		if i == runStart {
			sb.WriteString("::")
			i += runLen - 1
			continue
		}
		if i > 0 && !(runStart >= 0 && i == runStart+runLen) {
			sb.WriteByte(':')
		}
		fmt.Fprintf(&sb, "%x", groups[i])
	}
	if sb.Len() == 0 {
		return "::"
	}
	return sb.String()
}

// String formats the address as six colon-separated hex pairs.
func (a EtherAddr) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", a[0], a[1], a[2], a[3], a[4], a[5])
}

// Resolver translates symbolic names to addresses. Address parsers consult
// it only after strict syntactic parsing fails; a nil Resolver means
// symbolic names never resolve.
type Resolver interface {
	ResolveIP4(name string) (IP4Addr, bool)
	ResolveIP4Prefix(name string) (IP4Addr, IP4Addr, bool)
	ResolveIP6(name string) (IP6Addr, bool)
	ResolveIP6Prefix(name string) (IP6Addr, int, bool)
	ResolveEther(name string) (EtherAddr, bool)
}

// ParseIP4 parses exactly four dot-separated decimal octets. Anything else
// falls back to the resolver.
func ParseIP4(s string, res Resolver) (IP4Addr, error) {
	var value IP4Addr
	pos := 0

	for d := 0; d < 4; d++ {
		if d > 0 && pos < len(s) && s[pos] == '.' {
			pos++
		}
		if pos >= len(s) || !isDigit(s[pos]) {
			return badIP4(s, res)
		}
		part := 0
		for ; pos < len(s) && isDigit(s[pos]) && part <= 255; pos++ {
			part = part*10 + int(s[pos]-'0')
		}
		if part > 255 {
			return badIP4(s, res)
		}
		value[d] = byte(part)
	}

	if pos != len(s) {
		return badIP4(s, res)
	}
	return value, nil
}

func badIP4(s string, res Resolver) (IP4Addr, error) {
	if res != nil {
		if a, ok := res.ResolveIP4(s); ok {
			return a, nil
		}
	}
	return IP4Addr{}, ErrFormat
}

// ParseIP4Prefix parses "addr/mask", "addr/len" or, when allowBare is set,
// a bare address with an implied all-ones mask.
func ParseIP4Prefix(s string, res Resolver, allowBare bool) (IP4Addr, IP4Addr, error) {
	var ipPart, maskPart string
	hadSlash := false
	if slash := strings.LastIndexByte(s, '/'); slash >= 0 {
		ipPart, maskPart = s[:slash], s[slash+1:]
		hadSlash = true
	} else if !allowBare {
		return badIP4Prefix(s, res, allowBare)
	} else {
		ipPart = s
	}

	value, err := ParseIP4(ipPart, res)
	if err != nil {
		return badIP4Prefix(s, res, allowBare)
	}

	// only a slash-less form takes the implied mask; "a.b.c.d/" does not
	if allowBare && !hadSlash {
		return value, IP4Addr{255, 255, 255, 255}, nil
	}

	var mask IP4Addr
	if m, merr := ParseIP4(maskPart, res); merr == nil {
		mask = m
	} else if bits, berr := ParseInt(maskPart, 0); berr == nil && bits >= 0 && bits <= 32 {
		umask := uint32(0)
		if bits > 0 {
			umask = ^uint32(0) << (32 - bits)
		}
		mask = IP4Addr{byte(umask >> 24), byte(umask >> 16), byte(umask >> 8), byte(umask)}
	} else {
		return badIP4Prefix(s, res, allowBare)
	}

	return value, mask, nil
}

func badIP4Prefix(s string, res Resolver, allowBare bool) (IP4Addr, IP4Addr, error) {
	if res != nil {
		if a, m, ok := res.ResolveIP4Prefix(s); ok {
			return a, m, nil
		}
		if allowBare {
			if a, ok := res.ResolveIP4(s); ok {
				return a, IP4Addr{255, 255, 255, 255}, nil
			}
		}
	}
	return IP4Addr{}, IP4Addr{}, ErrFormat
}

// ParseIP6 parses the full IPv6 grammar: up to 8 hex groups, at most one ::
// zero run, and an optional embedded dotted-quad replacing the last two
// groups. Syntactic failures fall back to the resolver.
func ParseIP6(s string, res Resolver) (IP6Addr, error) {
	var parts [8]int
	coloncolon := -1
	pos, d := 0, 0
	lastPartPos := 0

	for d = 0; d < 8; d++ {
		if coloncolon < 0 && pos < len(s)-1 && s[pos] == ':' && s[pos+1] == ':' {
			coloncolon = d
			pos += 2
		} else if d > 0 && pos < len(s)-1 && s[pos] == ':' && isHexDigit(s[pos+1]) {
			pos++
		}
		if pos >= len(s) || !isHexDigit(s[pos]) {
			break
		}
		part := 0
		lastPartPos = pos
		for ; pos < len(s) && isHexDigit(s[pos]) && part <= 0xFFFF; pos++ {
			part = part<<4 + xvalue(s[pos])
		}
		if part > 0xFFFF {
			return badIP6(s, res)
		}
		parts[d] = part
	}

	// embedded IPv4 tail replaces the last group parsed and the next one
	if pos < len(s) && d > 0 && d <= 7 && s[pos] == '.' {
		if ip4, err := ParseIP4(s[lastPartPos:], res); err == nil {
			parts[d-1] = int(ip4[0])<<8 + int(ip4[1])
			parts[d] = int(ip4[2])<<8 + int(ip4[3])
			d++
			pos = len(s)
		}
	}

	// exactly 8 groups after expanding the :: zero run
	if (d < 8 && coloncolon < 0) || (d == 8 && coloncolon >= 0) {
		return badIP6(s, res)
	}
	if d < 8 {
		numZeros := 8 - d
		for x := d - 1; x >= coloncolon; x-- {
			parts[x+numZeros] = parts[x]
		}
		for x := coloncolon; x < coloncolon+numZeros; x++ {
			parts[x] = 0
		}
	}

	if pos < len(s) {
		return badIP6(s, res)
	}
	var value IP6Addr
	for i := 0; i < 8; i++ {
		value[2*i] = byte(parts[i] >> 8)
		value[2*i+1] = byte(parts[i])
	}
	return value, nil
}

func badIP6(s string, res Resolver) (IP6Addr, error) {
	if res != nil {
		if a, ok := res.ResolveIP6(s); ok {
			return a, nil
		}
	}
	return IP6Addr{}, ErrFormat
}

// MakeIP6Prefix returns the netmask with the top bits set.
func MakeIP6Prefix(bits int) IP6Addr {
	var m IP6Addr
	for i := 0; i < 16 && bits > 0; i++ {
		if bits >= 8 {
			m[i] = 0xFF
			bits -= 8
		} else {
			m[i] = byte(0xFF << (8 - bits))
			bits = 0
		}
	}
	return m
}

// ParseIP6Prefix parses "addr/mask-addr", "addr/len" or, when allowBare is
// set, a bare address with an implied /64. A mask given as an address must
// decode to a contiguous run of one-bits; a non-contiguous mask is rejected
// outright without resolver fallback.
func ParseIP6Prefix(s string, res Resolver, allowBare bool) (IP6Addr, int, error) {
	var ipPart, maskPart string
	hadSlash := false
	if slash := strings.LastIndexByte(s, '/'); slash >= 0 {
		ipPart, maskPart = s[:slash], s[slash+1:]
		hadSlash = true
	} else if !allowBare {
		return badIP6Prefix(s, res, allowBare)
	} else {
		ipPart = s
	}

	value, err := ParseIP6(ipPart, res)
	if err != nil {
		return badIP6Prefix(s, res, allowBare)
	}

	// only a slash-less form takes the implied prefix length; "a::b/" does not
	if allowBare && !hadSlash {
		return value, 64, nil
	}

	bits := 0
	if mask, merr := ParseIP6(maskPart, res); merr == nil {
		pos := 0
		for ; pos < 16 && mask[pos] == 255; pos++ {
			bits += 8
		}
		if pos < 16 {
			compPlus1 := (int(^mask[pos]) & 255) + 1
			for i := 0; i < 8; i++ {
				if compPlus1 == 1<<(8-i) {
					bits += i
					pos++
					break
				}
			}
		}
		for ; pos < 16 && mask[pos] == 0; pos++ {
		}
		if pos < 16 {
			return IP6Addr{}, 0, ErrFormat
		}
	} else if b, berr := ParseInt(maskPart, 0); berr == nil && b >= 0 && b <= 128 {
		bits = int(b)
	} else {
		return badIP6Prefix(s, res, allowBare)
	}

	return value, bits, nil
}

func badIP6Prefix(s string, res Resolver, allowBare bool) (IP6Addr, int, error) {
	if res != nil {
		if a, bits, ok := res.ResolveIP6Prefix(s); ok {
			return a, bits, nil
		}
		if allowBare {
			if a, ok := res.ResolveIP6(s); ok {
				return a, 64, nil
			}
		}
	}
	return IP6Addr{}, 0, ErrFormat
}

// ParseEther parses six colon-separated groups of one or two hex digits.
// Other shapes (dashes, missing groups) fall back to the resolver.
func ParseEther(s string, res Resolver) (EtherAddr, error) {
	var value EtherAddr
	i := 0

	for d := 0; d < 6; d++ {
		if i < len(s)-1 && isHexDigit(s[i]) && isHexDigit(s[i+1]) {
			value[d] = byte(xvalue(s[i])*16 + xvalue(s[i+1]))
			i += 2
		} else if i < len(s) && isHexDigit(s[i]) {
			value[d] = byte(xvalue(s[i]))
			i++
		} else {
			return badEther(s, res)
		}
		if d == 5 {
			break
		}
		if i >= len(s)-1 || s[i] != ':' {
			return badEther(s, res)
		}
		i++
	}

	if i != len(s) {
		return badEther(s, res)
	}
	return value, nil
}

func badEther(s string, res Resolver) (EtherAddr, error) {
	if res != nil {
		if a, ok := res.ResolveEther(s); ok {
			return a, nil
		}
	}
	return EtherAddr{}, ErrFormat
}

// IPSet is a set of IPv4 addresses, the destination type for "ip_addr_set"
// arguments.
type IPSet map[IP4Addr]struct{}

// Insert adds a to the set.
func (set IPSet) Insert(a IP4Addr) { set[a] = struct{}{} }

// Contains reports whether a is in the set.
func (set IPSet) Contains(a IP4Addr) bool {
	_, ok := set[a]
	return ok
}

// ParseIPSet parses a whitespace-separated list of IPv4 addresses and
// inserts them into set. Nothing is inserted unless every word parses.
func ParseIPSet(conf string, res Resolver, set IPSet) error {
	words := SplitSpaces(conf)
	additions := make([]IP4Addr, 0, len(words))
	for _, w := range words {
		a, err := ParseIP4(w, res)
		if err != nil {
			return err
		}
		additions = append(additions, a)
	}
	for _, a := range additions {
		set.Insert(a)
	}
	return nil
}
