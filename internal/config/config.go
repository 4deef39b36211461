package config

import (
	"fmt"
	"time"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "clusterwizard.yaml"

// Metadata sources.
const (
	SourceCatalog  = "catalog"
	SourceUnDistro = "undistro"
	SourceHCloud   = "hcloud"
)

// Credential sources.
const (
	CredentialsAWS    = "aws"
	CredentialsSecret = "secret"
	CredentialsNone   = "none"
)

// Config is the clusterwizard configuration.
type Config struct {
	// Provider preselected in the wizard (aws, hcloud).
	Provider string `yaml:"provider"`
	// Namespace preselected for the cluster documents.
	Namespace string `yaml:"namespace"`
	// Kubeconfig of the management cluster; empty uses the default rules.
	Kubeconfig string `yaml:"kubeconfig"`

	Metadata    MetadataConfig    `yaml:"metadata"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Export      ExportConfig      `yaml:"export"`
}

// MetadataConfig selects and configures the metadata source.
type MetadataConfig struct {
	Source   string `yaml:"source"`
	PageSize int    `yaml:"pageSize"`
	Timeout  string `yaml:"timeout"`

	APIURL      string `yaml:"apiURL"`
	APIToken    string `yaml:"apiToken"`
	HCloudToken string `yaml:"hcloudToken"`

	// SSHKeys lists key pairs per region for the offline catalog.
	SSHKeys map[string][]string `yaml:"sshKeys"`
	// DescribeKeyPairs lists the account's EC2 key pairs in the catalog.
	DescribeKeyPairs bool `yaml:"describeKeyPairs"`
}

// CredentialsConfig selects where default credentials come from.
type CredentialsConfig struct {
	Source          string `yaml:"source"`
	Profile         string `yaml:"profile"`
	SecretName      string `yaml:"secretName"`
	SecretNamespace string `yaml:"secretNamespace"`
}

// ExportConfig configures document export.
type ExportConfig struct {
	// Path is a file path, "-" or an s3://bucket/key URL.
	Path string `yaml:"path"`

	S3Region    string `yaml:"s3Region"`
	S3Endpoint  string `yaml:"s3Endpoint"`
	S3PathStyle bool   `yaml:"s3PathStyle"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Provider:  "aws",
		Namespace: "default",
		Metadata: MetadataConfig{
			Source:   SourceCatalog,
			PageSize:         15,
			Timeout:          "30s",
			DescribeKeyPairs: true,
		},
		Credentials: CredentialsConfig{
			Source:          CredentialsAWS,
			SecretNamespace: "undistro-system",
		},
	}
}

// TimeoutDuration parses the metadata request timeout. Empty means no timeout.
func (m MetadataConfig) TimeoutDuration() (time.Duration, error) {
	if m.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(m.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidTimeout, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s is negative", ErrInvalidTimeout, m.Timeout)
	}
	return d, nil
}
