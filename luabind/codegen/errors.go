package codegen

import (
	"fmt"
	"go/token"
)

// ParseError reports a malformed directive: a bad visibility token, a
// specifier of the wrong kind, or a malformed call expression.
type ParseError struct {
	Pos token.Position
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	return positioned(e.Pos, "parse error: "+e.Msg, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// GenerationError reports a declaration that cannot be bound.
type GenerationError struct {
	Pos token.Position
	Msg string
	Err error
}

func (e *GenerationError) Error() string {
	return positioned(e.Pos, e.Msg, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func positioned(pos token.Position, msg string, err error) string {
	if pos.IsValid() {
		msg = pos.String() + ": " + msg
	}
	if err != nil {
		msg += ": " + err.Error()
	}
	return msg
}

func parseErrorf(pos token.Position, format string, args ...any) error {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func genErrorf(pos token.Position, format string, args ...any) error {
	return &GenerationError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
