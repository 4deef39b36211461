package credentials

import (
	"errors"

	"github.com/aws/smithy-go"
)

var (
	// ErrNoCredentials is returned when a source holds no credentials.
	ErrNoCredentials = errors.New("no credentials found")
	// ErrAccessDenied is returned when the provider rejects the credentials.
	ErrAccessDenied = errors.New("credentials rejected")
	// ErrIncompleteSecret is returned when the credentials Secret lacks a key.
	ErrIncompleteSecret = errors.New("credentials secret is incomplete")
)

// isAccessDenied reports whether err is an AWS API error rejecting the caller.
func isAccessDenied(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "AccessDenied", "AccessDeniedException", "ExpiredToken", "InvalidClientTokenId", "UnrecognizedClientException":
		return true
	}
	return false
}
