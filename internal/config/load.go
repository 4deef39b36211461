package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIURL      = "UNDISTRO_API_URL"
	EnvAPIToken    = "UNDISTRO_API_TOKEN"
	EnvHCloudToken = "HCLOUD_TOKEN"
	EnvKubeconfig  = "KUBECONFIG"
	EnvAWSProfile  = "AWS_PROFILE"
)

// Load reads the configuration at path over the defaults, applies the
// environment and validates the result. A missing file is only an error
// when required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()

	// #nosec G304
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// decode unmarshals data over cfg, rejecting unknown keys.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides cfg with the environment variables lookup reports.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	set(&c.Metadata.APIURL, EnvAPIURL)
	set(&c.Metadata.APIToken, EnvAPIToken)
	set(&c.Metadata.HCloudToken, EnvHCloudToken)
	set(&c.Kubeconfig, EnvKubeconfig)
	set(&c.Credentials.Profile, EnvAWSProfile)
}
