package minisgbd

import "minisgbd/storage/errs"

// Error taxonomy re-exported at the package root so callers of the
// public Store API don't need to import the internal storage/errs
// package directly.
type (
	InvalidArgumentError = errs.InvalidArgument
	OutOfBoundsError     = errs.OutOfBounds
	IoError              = errs.Io
	LogParseError        = errs.LogParse
)
