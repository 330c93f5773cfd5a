// Package errs defines the error taxonomy shared by every storage
// component: invalid arguments, out-of-bounds record access,
// underlying I/O failure, and malformed journal lines.
package errs

import "fmt"

// InvalidArgument signals a negative page/record index or a page
// buffer that is not exactly page.Size bytes long.
type InvalidArgument struct {
	Msg string
}

func (e *InvalidArgument) Error() string { return "invalid argument: " + e.Msg }

// OutOfBounds signals a read past the persisted end of the data file.
type OutOfBounds struct {
	Msg string
}

func (e *OutOfBounds) Error() string { return "out of bounds: " + e.Msg }

// Io wraps an underlying file-system error from the pager or the
// journal.
type Io struct {
	Msg string
	Err error
}

func (e *Io) Error() string { return fmt.Sprintf("io error: %s: %v", e.Msg, e.Err) }
func (e *Io) Unwrap() error { return e.Err }

// LogParse signals a malformed line encountered while replaying the
// journal. Recovery treats this, and every line after it, as absent.
type LogParse struct {
	Line string
	Err  error
}

func (e *LogParse) Error() string {
	return fmt.Sprintf("log parse error on line %q: %v", e.Line, e.Err)
}
func (e *LogParse) Unwrap() error { return e.Err }

// InvalidArgf builds an InvalidArgument error.
func InvalidArgf(format string, args ...any) error {
	return &InvalidArgument{Msg: fmt.Sprintf(format, args...)}
}

// OutOfBoundsf builds an OutOfBounds error.
func OutOfBoundsf(format string, args ...any) error {
	return &OutOfBounds{Msg: fmt.Sprintf(format, args...)}
}

// Iof builds an Io error wrapping err.
func Iof(err error, format string, args ...any) error {
	return &Io{Msg: fmt.Sprintf(format, args...), Err: err}
}
