package form

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

var (
	errValueRequired   = errors.New("a value is required")
	errInvalidName     = errors.New("must be a lowercase DNS label")
	errInvalidReplicas = errors.New("must be a non-negative whole number")
)

// validateRequired rejects blank answers.
func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return errValueRequired
	}
	return nil
}

// validateName accepts names usable as both a Kubernetes object name and a
// namespace.
func validateName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errValueRequired
	}
	if msgs := validation.IsDNS1123Label(s); len(msgs) > 0 {
		return fmt.Errorf("%w: %s", errInvalidName, strings.Join(msgs, "; "))
	}
	return nil
}

func validateReplicas(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return errInvalidReplicas
	}
	return nil
}
