package wizard

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the wizard core. Typed errors below unwrap to
// one of these so callers can branch with errors.Is.
var (
	ErrStepIncomplete    = errors.New("step incomplete")
	ErrFetchFailed       = errors.New("metadata fetch failed")
	ErrStaleResponse     = errors.New("stale metadata response discarded")
	ErrNotFound          = errors.New("worker pool not found")
	ErrInvalidReplicas   = errors.New("replicas must not be negative")
	ErrMissingField      = errors.New("missing or invalid field")
	ErrCommitInProgress  = errors.New("commit already in progress")
	ErrSubmissionFailed  = errors.New("submission failed")
	ErrNotAtLastStep     = errors.New("commit is only allowed at the last step")
	ErrNoPreviousStep    = errors.New("already at the first step")
	ErrSessionTerminated = errors.New("session already submitted or closed")
	ErrUnknownField      = errors.New("unknown field")
	ErrInvalidValue      = errors.New("invalid field value")
)

// StepIncompleteError reports the required fields a step is still missing.
type StepIncompleteError struct {
	Step    string
	Missing []FieldKey
}

func (e *StepIncompleteError) Error() string {
	keys := make([]string, len(e.Missing))
	for i, k := range e.Missing {
		keys[i] = string(k)
	}
	return fmt.Sprintf("step %q incomplete: missing %s", e.Step, strings.Join(keys, ", "))
}

func (e *StepIncompleteError) Unwrap() error { return ErrStepIncomplete }

// CompositionError names the first field that prevented document composition.
type CompositionError struct {
	Field string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingField, e.Field)
}

func (e *CompositionError) Unwrap() error { return ErrMissingField }

// SubmissionError carries the outcome of both document submissions. At least
// one of ClusterErr and PolicyErr is non-nil.
type SubmissionError struct {
	ClusterErr error
	PolicyErr  error
}

func (e *SubmissionError) Error() string {
	var parts []string
	if e.ClusterErr != nil {
		parts = append(parts, "cluster: "+e.ClusterErr.Error())
	}
	if e.PolicyErr != nil {
		parts = append(parts, "policy: "+e.PolicyErr.Error())
	}
	return fmt.Sprintf("%s (%s)", ErrSubmissionFailed, strings.Join(parts, "; "))
}

func (e *SubmissionError) Unwrap() []error {
	errs := []error{ErrSubmissionFailed}
	if e.ClusterErr != nil {
		errs = append(errs, e.ClusterErr)
	}
	if e.PolicyErr != nil {
		errs = append(errs, e.PolicyErr)
	}
	return errs
}
