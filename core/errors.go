package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// PartialApplyError reports a multi-step write sequence that failed after one
// or more prior steps had already committed. The committed steps are not
// rolled back; callers surface them so an operator (or the reconciler) can
// finish or undo the partial state.
type PartialApplyError struct {
	Op        string   // operation that failed, e.g. "enroll.Approve"
	Completed []string // steps that committed before the failure
	Step      string   // step that failed
	Err       error
}

func (err *PartialApplyError) Error() string {
	return fmt.Sprintf(
		"%s: step %q failed after [%s] committed: %v",
		err.Op, err.Step, strings.Join(err.Completed, ", "), err.Err,
	)
}

func (err *PartialApplyError) Unwrap() error { return err.Err }

// IsPartialApply reports whether err (or its cause) is a PartialApplyError.
func IsPartialApply(err error) (*PartialApplyError, bool) {
	pErr, ok := errors.Cause(err).(*PartialApplyError)
	return pErr, ok
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
