package tomldoc

import (
	"errors"
	"fmt"
)

var (
	ErrParse          = errors.New("parse error")
	ErrSyntax         = fmt.Errorf("%w: syntax", ErrParse)
	ErrBadValue       = fmt.Errorf("%w: invalid value", ErrParse)
	ErrDuplicateKey   = fmt.Errorf("%w: duplicate key", ErrParse)
	ErrDuplicateTable = fmt.Errorf("%w: duplicate table", ErrParse)
)

// ParseError reports where in the source a document failed to parse.
// Line and Col are 1-based.
type ParseError struct {
	Line, Col int
	Msg       string
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("TOML parse error at line %d, column %d: %s", e.Line, e.Col, e.Msg)
}

func (e *ParseError) Unwrap() error {
	if e.Err == nil {
		return ErrParse
	}
	return e.Err
}
