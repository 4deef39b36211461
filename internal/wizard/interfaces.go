package wizard

import (
	"context"

	"github.com/undistro/clusterwizard/api/v1alpha1"
)

// MetadataRequest asks for one page of a metadata listing. Page is 1-based.
// Context carries the governing value (region, machine type, flavor) when
// the listing depends on one.
type MetadataRequest struct {
	Provider string
	Kind     MetadataKind
	PageSize int
	Page     int
	Context  string
}

// MetadataPage is one page returned by a MetadataSource.
type MetadataPage struct {
	Items      []Option
	TotalPages int
}

// MetadataSource lists provider metadata page by page.
type MetadataSource interface {
	FetchPage(ctx context.Context, req MetadataRequest) (*MetadataPage, error)
}

// Credentials are provider credentials delivered already decoded.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
}

// CredentialSource supplies default credentials used to pre-fill a session.
type CredentialSource interface {
	DefaultCredentials(ctx context.Context) (*Credentials, error)
}

// ClusterSubmitter submits a composed Cluster document.
type ClusterSubmitter interface {
	SubmitCluster(ctx context.Context, cluster *v1alpha1.Cluster) error
}

// PolicySubmitter submits a composed DefaultPolicies document.
type PolicySubmitter interface {
	SubmitPolicy(ctx context.Context, policy *v1alpha1.DefaultPolicies) error
}
