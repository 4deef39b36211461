package credentials

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/undistro/clusterwizard/internal/wizard"
)

// AWS resolves credentials through the AWS SDK default chain: environment,
// shared config and credentials files, then instance roles.
type AWS struct {
	loadOpts []func(*config.LoadOptions) error
}

// AWSOption configures an AWS source.
type AWSOption func(*AWS)

// WithProfile selects a shared config profile.
func WithProfile(profile string) AWSOption {
	return func(a *AWS) {
		if profile != "" {
			a.loadOpts = append(a.loadOpts, config.WithSharedConfigProfile(profile))
		}
	}
}

// WithRegion sets the region reported when the chain resolves none.
func WithRegion(region string) AWSOption {
	return func(a *AWS) {
		if region != "" {
			a.loadOpts = append(a.loadOpts, config.WithDefaultRegion(region))
		}
	}
}

// WithCredentialsProvider replaces the chain with provider.
func WithCredentialsProvider(provider aws.CredentialsProvider) AWSOption {
	return func(a *AWS) {
		a.loadOpts = append(a.loadOpts, config.WithCredentialsProvider(provider))
	}
}

// WithStaticCredentials replaces the chain with fixed keys.
func WithStaticCredentials(accessKeyID, secretAccessKey, sessionToken string) AWSOption {
	return WithCredentialsProvider(awscreds.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, sessionToken))
}

// NewAWS creates an AWS credential source.
func NewAWS(opts ...AWSOption) *AWS {
	a := &AWS{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config loads the SDK configuration the source resolves credentials from.
func (a *AWS) Config(ctx context.Context) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, a.loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

// DefaultCredentials implements wizard.CredentialSource.
func (a *AWS) DefaultCredentials(ctx context.Context) (*wizard.Credentials, error) {
	cfg, err := a.Config(ctx)
	if err != nil {
		return nil, err
	}
	if cfg.Credentials == nil {
		return nil, ErrNoCredentials
	}

	creds, err := cfg.Credentials.Retrieve(ctx)
	if err != nil {
		if isAccessDenied(err) {
			return nil, fmt.Errorf("%w: %w", ErrAccessDenied, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrNoCredentials, err)
	}

	log.FromContext(ctx).V(1).Info("Resolved AWS credentials",
		"source", creds.Source, "region", cfg.Region)

	return &wizard.Credentials{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretAccessKey,
		SessionToken:    creds.SessionToken,
		Region:          cfg.Region,
	}, nil
}
