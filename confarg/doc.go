// Package confarg parses the textual configuration arguments that attach to
// processing elements in a packet pipeline.
//
// A configuration string is a short comma-separated argument list such as
//
//	192.168.1.1/24, TTL 64
//
// The package splits it into arguments (comment- and quote-aware), converts
// each argument with a strict typed parser, and commits the converted values
// into caller-owned destinations through a declared slot list:
//
//	var addr, mask confarg.IP4Addr
//	var ttl int32
//	cx := confarg.NewContext()
//	n, err := confarg.Parse(cx, nil, conf,
//	        confarg.Arg("ip_prefix", "address block", &addr, &mask),
//	        confarg.UnmixedKeywords(),
//	        confarg.Keyword("TTL", "int", "time to live", &ttl),
//	)
//
// Commit is all-or-nothing: destinations are written only when every
// requested argument parsed cleanly. Diagnostics go to an ErrorHandler sink;
// the returned error aggregates them.
//
// The scanner, the escape codec, and the scalar and address parsers are also
// exported on their own (Uncomment, SplitCommas, Quote, Unquote, ParseBool,
// ParseUnsigned, ParseIP4, ...). Numeric parsing is 32-bit with saturating
// overflow; ParseReal2 and UnparseReal2 are exact inverses.
//
// Nothing in the package keeps references to arguments or destinations past
// a call. A Context and its Registry are not safe for concurrent use; guard
// whole Parse calls externally if elements configure in parallel.
package confarg
