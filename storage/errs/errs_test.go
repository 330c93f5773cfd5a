package errs

import (
	"errors"
	"testing"
)

func TestErrorMessagesIncludeKind(t *testing.T) {
	if got := InvalidArgf("bad %d", 5).Error(); got != "invalid argument: bad 5" {
		t.Errorf("InvalidArgf message = %q", got)
	}
	if got := OutOfBoundsf("id %d", 9).Error(); got != "out of bounds: id 9" {
		t.Errorf("OutOfBoundsf message = %q", got)
	}
}

func TestIoUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Iof(cause, "write page %d", 3)
	if !errors.Is(err, cause) {
		t.Error("Iof should wrap its cause so errors.Is finds it")
	}
}

func TestLogParseUnwraps(t *testing.T) {
	cause := errors.New("bad field")
	err := &LogParse{Line: "1|BAD", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("LogParse should wrap its cause so errors.Is finds it")
	}
}
