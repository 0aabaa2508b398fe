package schemaerr

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// enableDebugErrorPrinting makes errors include the frame that created them when printed
const enableDebugErrorPrinting bool = false

type ErrCode int

const (
	None ErrCode = iota
	UnresolvedReference
	UnsupportedShape
	NoConvergence
	OutputCollision
	InvalidSnapshot
)

// SchemaError is either recoverable, in which case only the affected item is
// skipped, or fatal for the whole run
type SchemaError interface {
	Error() string
	Code() ErrCode
	Fatal() bool

	withStack([]byte) SchemaError
	getStack() []byte
}

func FormatWithCode(e SchemaError) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		lines := strings.Split(string(e.getStack()), "\n")
		if len(lines) > 6 {
			return fmt.Sprintf("%s:(E%03d) %s", strings.TrimSpace(lines[6]), e.Code(), e.Error())
		}
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E SchemaError](err E) SchemaError {
	return err.withStack(debug.Stack())
}

// IsFatal reports whether err wraps a SchemaError that must abort the run
func IsFatal(err error) bool {
	se, ok := As(err)
	return ok && se.Fatal()
}

func As(err error) (SchemaError, bool) {
	var se SchemaError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

type NewUnresolvedReference struct {
	// Owner is the node or module whose reference could not be resolved
	Owner string
	ID    uint32
	stack []byte
}

func (e NewUnresolvedReference) Error() string {
	return fmt.Sprintf("%s references type %d, which is not known to the resolver", e.Owner, e.ID)
}
func (e NewUnresolvedReference) Code() ErrCode    { return UnresolvedReference }
func (e NewUnresolvedReference) Fatal() bool      { return false }
func (e NewUnresolvedReference) getStack() []byte { return e.stack }
func (e NewUnresolvedReference) withStack(stack []byte) SchemaError {
	e.stack = stack
	return e
}

type NewUnsupportedShape struct {
	ID     uint32
	Shape  string
	Reason string
	stack  []byte
}

func (e NewUnsupportedShape) Error() string {
	return fmt.Sprintf("type %d has unsupported shape '%s': %s", e.ID, e.Shape, e.Reason)
}
func (e NewUnsupportedShape) Code() ErrCode    { return UnsupportedShape }
func (e NewUnsupportedShape) Fatal() bool      { return true }
func (e NewUnsupportedShape) getStack() []byte { return e.stack }
func (e NewUnsupportedShape) withStack(stack []byte) SchemaError {
	e.stack = stack
	return e
}

type NewNoConvergence struct {
	Pass       string
	Iterations int
	stack      []byte
}

func (e NewNoConvergence) Error() string {
	return fmt.Sprintf("%s did not reach a fixpoint after %d iterations, the graph likely contains a reference cycle", e.Pass, e.Iterations)
}
func (e NewNoConvergence) Code() ErrCode    { return NoConvergence }
func (e NewNoConvergence) Fatal() bool      { return true }
func (e NewNoConvergence) getStack() []byte { return e.stack }
func (e NewNoConvergence) withStack(stack []byte) SchemaError {
	e.stack = stack
	return e
}

type NewOutputCollision struct {
	Path  string
	ID    uint32
	stack []byte
}

func (e NewOutputCollision) Error() string {
	return fmt.Sprintf("type %d would overwrite already planned output '%s'", e.ID, e.Path)
}
func (e NewOutputCollision) Code() ErrCode    { return OutputCollision }
func (e NewOutputCollision) Fatal() bool      { return false }
func (e NewOutputCollision) getStack() []byte { return e.stack }
func (e NewOutputCollision) withStack(stack []byte) SchemaError {
	e.stack = stack
	return e
}

type NewInvalidSnapshot struct {
	Source string
	Reason string
	stack  []byte
}

func (e NewInvalidSnapshot) Error() string {
	return fmt.Sprintf("invalid snapshot %s: %s", e.Source, e.Reason)
}
func (e NewInvalidSnapshot) Code() ErrCode    { return InvalidSnapshot }
func (e NewInvalidSnapshot) Fatal() bool      { return true }
func (e NewInvalidSnapshot) getStack() []byte { return e.stack }
func (e NewInvalidSnapshot) withStack(stack []byte) SchemaError {
	e.stack = stack
	return e
}
