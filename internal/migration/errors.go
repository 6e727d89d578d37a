package migration

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration       = errors.New("invalid configuration")
	ErrNoInput             = errors.New("no migration source files")
	ErrSourceRead          = errors.New("could not read source file")
	ErrRender              = errors.New("could not write checksum artifact")
	ErrDuplicateIdentifier = errors.New("duplicate migration identifier")
	ErrOutOfDate           = errors.New("checksum artifact is out of date")
)

// Error carries the kind of failure, the path it concerns and the cause.
// errors.Is matches both the kind and the wrapped cause.
type Error struct {
	Kind error
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Kind.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Path)
	}
	if e.Msg != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func configErrorf(format string, args ...any) error {
	return &Error{Kind: ErrConfiguration, Msg: fmt.Sprintf(format, args...)}
}

func sourceReadError(path string, err error) error {
	return &Error{Kind: ErrSourceRead, Path: path, Err: err}
}

func renderError(path string, err error) error {
	return &Error{Kind: ErrRender, Path: path, Err: err}
}
