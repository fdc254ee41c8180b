package confarg

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Sentinel error kinds. Parsers return these (possibly wrapped with context
// via github.com/pkg/errors); discriminate with errors.Cause.
var (
	// ErrFormat means the input does not match the type's grammar.
	ErrFormat = errors.New("bad format")
	// ErrOverflow means the value did not fit; the returned value is
	// saturated to the type's extremum.
	ErrOverflow = errors.New("overflow")
	// ErrNegative means a negative value where only nonnegative is allowed.
	ErrNegative = errors.New("negative value")
	// ErrInvalid means a parse parameter (fractional digit/bit count) is out
	// of range.
	ErrInvalid = errors.New("invalid parameter")
	// ErrUnknownType means a slot referenced an unregistered type name.
	ErrUnknownType = errors.New("unknown argument type")
	// ErrConflict means a type name was re-registered with different
	// behavior.
	ErrConflict = errors.New("argument type conflict")
	// ErrArity means too few or too many positional arguments.
	ErrArity = errors.New("wrong number of arguments")
	// ErrUnknownKeyword means a keyword matched no declared keyword slot.
	ErrUnknownKeyword = errors.New("unknown keyword")
	// ErrDuplicateKeyword means a keyword slot was supplied twice.
	ErrDuplicateKeyword = errors.New("duplicate keyword")
	// ErrTooManyArgs means the declared slot list exceeds the Context
	// scratch capacity.
	ErrTooManyArgs = errors.New("too many argument slots")
)

// IsOverflow reports whether err's cause is ErrOverflow.
func IsOverflow(err error) bool { return errors.Cause(err) == ErrOverflow }

// IsFormat reports whether err's cause is ErrFormat.
func IsFormat(err error) bool { return errors.Cause(err) == ErrFormat }

// IsNegative reports whether err's cause is ErrNegative.
func IsNegative(err error) bool { return errors.Cause(err) == ErrNegative }

// ErrorHandler is the diagnostic sink the matcher reports through. A match
// fails exactly when the sink's error count increased during the call.
type ErrorHandler interface {
	Errorf(format string, args ...any)
	NErrors() int
}

// CollectingHandler accumulates diagnostics in memory.
type CollectingHandler struct {
	errs []string
}

// Errorf records one formatted diagnostic.
func (h *CollectingHandler) Errorf(format string, args ...any) {
	h.errs = append(h.errs, fmt.Sprintf(format, args...))
}

// NErrors returns the running diagnostic count.
func (h *CollectingHandler) NErrors() int { return len(h.errs) }

// Errors returns the recorded diagnostics.
func (h *CollectingHandler) Errors() []string { return h.errs }

// Reset discards recorded diagnostics.
func (h *CollectingHandler) Reset() { h.errs = nil }

// Err returns the diagnostics joined as a single error, or nil if none.
func (h *CollectingHandler) Err() error {
	if len(h.errs) == 0 {
		return nil
	}
	return errors.New(strings.Join(h.errs, "; "))
}
