package lisp

import "fmt"

type FaultKind uint8

const (
	BuildInvalidInput FaultKind = iota + 1
	BuildInvalidToken
	EvalNotFoundInContext
	EvalIsNotAFunctionDataType
	EvalInvalidDotExprArity
	EvalNotExportedMethod
	EvalInvalidArity
	EvalInvalidArgument
	EvalInvalidSyntax
	EvalSpecViolation
	EvalNativeFault
)

var faultKindNames = [...]string{
	BuildInvalidInput:          "BuildInvalidInput",
	BuildInvalidToken:          "BuildInvalidToken",
	EvalNotFoundInContext:      "EvalNotFoundInContext",
	EvalIsNotAFunctionDataType: "EvalIsNotAFunctionDataType",
	EvalInvalidDotExprArity:    "EvalInvalidDotExprArity",
	EvalNotExportedMethod:      "EvalNotExportedMethod",
	EvalInvalidArity:           "EvalInvalidArity",
	EvalInvalidArgument:        "EvalInvalidArgument",
	EvalInvalidSyntax:          "EvalInvalidSyntax",
	EvalSpecViolation:          "EvalSpecViolation",
	EvalNativeFault:            "EvalNativeFault",
}

func (k FaultKind) String() string {
	if int(k) < len(faultKindNames) && faultKindNames[k] != "" {
		return faultKindNames[k]
	}
	return fmt.Sprintf("FaultKind(%d)", k)
}

// Error is both a Value and a Go error. Once produced it is only ever
// passed along, never evaluated again.
type Error struct {
	Kind FaultKind
	Msg  string
	Pos  Pos
}

func (*Error) value() {}

func (e *Error) Error() string {
	if e.Pos.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
}

func (e *Error) String() string { return e.Error() }

// Errorf creates an Error without a position; the evaluator fills in the
// position of the form that produced it.
func Errorf(kind FaultKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func errorAt(kind FaultKind, pos Pos, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Pos: pos}
}

func IsError(v Value) bool {
	_, ok := v.(*Error)
	return ok
}

// positioned returns v, with pos attached if v is an Error lacking one.
func positioned(v Value, pos Pos) Value {
	err, ok := v.(*Error)
	if !ok || !err.Pos.IsZero() || pos.IsZero() {
		return v
	}
	e := *err
	e.Pos = pos
	return &e
}

// fault converts whatever was recovered from a panic into an Error.
// The first non-zero position wins: the fault's own, then the fallbacks
// in order.
func fault(r any, kind FaultKind, fallbacks ...Pos) *Error {
	var err *Error
	switch x := r.(type) {
	case *Error:
		e := *x
		err = &e
	case error:
		err = &Error{Kind: kind, Msg: x.Error()}
	default:
		err = &Error{Kind: kind, Msg: fmt.Sprint(x)}
	}
	for _, p := range fallbacks {
		if !err.Pos.IsZero() {
			break
		}
		err.Pos = p
	}
	return err
}
