package config

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSource      = errors.New("invalid metadata source")
	ErrInvalidPageSize    = errors.New("page size must be positive")
	ErrInvalidTimeout     = errors.New("invalid timeout")
	ErrMissingAPIURL      = errors.New("UnDistro API URL is required")
	ErrMissingToken       = errors.New("hcloud token is required")
	ErrProviderMismatch   = errors.New("metadata source does not serve provider")
	ErrInvalidCredentials = errors.New("invalid credentials source")
)

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if err := c.validateMetadata(); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}

	switch c.Credentials.Source {
	case CredentialsAWS, CredentialsSecret, CredentialsNone:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidCredentials, c.Credentials.Source)
	}
	return nil
}

func (c *Config) validateMetadata() error {
	m := c.Metadata
	if m.PageSize <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, m.PageSize)
	}
	if _, err := m.TimeoutDuration(); err != nil {
		return err
	}

	switch m.Source {
	case SourceCatalog:
		if c.Provider != "aws" {
			return fmt.Errorf("%w: catalog serves aws, not %q", ErrProviderMismatch, c.Provider)
		}
	case SourceUnDistro:
		if m.APIURL == "" {
			return ErrMissingAPIURL
		}
	case SourceHCloud:
		if c.Provider != "hcloud" {
			return fmt.Errorf("%w: hcloud source does not serve %q", ErrProviderMismatch, c.Provider)
		}
		if m.HCloudToken == "" {
			return ErrMissingToken
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSource, m.Source)
	}
	return nil
}
