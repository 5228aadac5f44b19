package ir

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrInvariant is returned when building or optimizing a program hits a
// structural inconsistency: an unknown symbol, a stale node index, a malformed
// opcode range or a stack summary that does not add up.
var ErrInvariant = errors.New("ir invariant violated")

// InvariantError is the panic value raised for structural errors inside the
// package. It is turned into an ErrInvariant at the NewProgram and Optimize
// boundaries.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return e.Msg }

func invariant(format string, args ...interface{}) {
	panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
}

// recoverInvariant converts a panic raised while building or optimizing into
// an error. It must be deferred directly.
func recoverInvariant(err *error, what string) {
	r := recover()
	if r == nil {
		return
	}
	var msg string
	switch v := r.(type) {
	case *InvariantError:
		msg = v.Msg
	case error:
		msg = v.Error()
	default:
		msg = fmt.Sprint(v)
	}
	debugError("IR invariant violated", "stage", what, "err", msg)
	*err = errors.Wrapf(ErrInvariant, "%s: %s", what, msg)
}
