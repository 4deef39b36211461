package handlers

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/undistro/clusterwizard/internal/config"
	"github.com/undistro/clusterwizard/internal/credentials"
	"github.com/undistro/clusterwizard/internal/metadata"
	"github.com/undistro/clusterwizard/internal/platform/undistro"
	"github.com/undistro/clusterwizard/internal/wizard"
)

// buildMetadataSource returns the metadata source cfg selects. creds, when
// set, authenticates the catalog's EC2 key pair listing.
func buildMetadataSource(cfg *config.Config, creds wizard.CredentialSource) (wizard.MetadataSource, error) {
	timeout, err := cfg.Metadata.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	switch cfg.Metadata.Source {
	case config.SourceCatalog:
		// Map order is random; sort so key listings are stable.
		regions := make([]string, 0, len(cfg.Metadata.SSHKeys))
		for region := range cfg.Metadata.SSHKeys {
			regions = append(regions, region)
		}
		sort.Strings(regions)

		opts := make([]metadata.CatalogOption, 0, len(regions)+1)
		for _, region := range regions {
			opts = append(opts, metadata.WithSSHKeys(region, cfg.Metadata.SSHKeys[region]...))
		}
		if cfg.Metadata.DescribeKeyPairs {
			opts = append(opts, metadata.WithKeyPairLister(metadata.NewEC2KeyPairs(keyPairConfig(cfg, creds))))
		}
		catalog, err := metadata.NewCatalog(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		return catalog, nil

	case config.SourceUnDistro:
		api := undistro.NewClient(cfg.Metadata.APIURL, cfg.Metadata.APIToken, undistro.WithTimeout(timeout))
		return metadata.NewUnDistro(api), nil

	case config.SourceHCloud:
		return metadata.NewHCloudFromToken(cfg.Metadata.HCloudToken,
			hcloud.WithHTTPClient(&http.Client{Timeout: timeout})), nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrInvalidSource, cfg.Metadata.Source)
}

// keyPairConfig resolves the SDK config used to list EC2 key pairs. Keys
// from the credential source take precedence over the default chain.
func keyPairConfig(cfg *config.Config, creds wizard.CredentialSource) func(context.Context) (aws.Config, error) {
	return func(ctx context.Context) (aws.Config, error) {
		opts := []credentials.AWSOption{credentials.WithProfile(cfg.Credentials.Profile)}
		if creds != nil {
			c, err := creds.DefaultCredentials(ctx)
			if err != nil {
				return aws.Config{}, fmt.Errorf("failed to resolve credentials for key pairs: %w", err)
			}
			if c != nil && c.AccessKeyID != "" {
				opts = append(opts, credentials.WithStaticCredentials(c.AccessKeyID, c.SecretAccessKey, c.SessionToken))
			}
		}
		return credentials.NewAWS(opts...).Config(ctx)
	}
}

// buildCredentialSource returns the credential source cfg selects, or nil
// when credentials are not pre-filled. kube is only used by the secret
// source.
func buildCredentialSource(cfg *config.Config, kube client.Reader) (wizard.CredentialSource, error) {
	switch cfg.Credentials.Source {
	case config.CredentialsAWS:
		return credentials.NewAWS(credentials.WithProfile(cfg.Credentials.Profile)), nil
	case config.CredentialsSecret:
		if kube == nil {
			return nil, fmt.Errorf("%w: secret source needs a management cluster", config.ErrInvalidCredentials)
		}
		return credentials.NewSecret(kube, cfg.Provider, cfg.Credentials.SecretNamespace, cfg.Credentials.SecretName), nil
	case config.CredentialsNone:
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %q", config.ErrInvalidCredentials, cfg.Credentials.Source)
}
