package testing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/undistro/clusterwizard/api/v1alpha1"
	"github.com/undistro/clusterwizard/internal/wizard"
)

// MockMetadataSource is a mock implementation of wizard.MetadataSource.
type MockMetadataSource struct {
	mock.Mock
}

// FetchPage returns the configured page for req.
func (m *MockMetadataSource) FetchPage(ctx context.Context, req wizard.MetadataRequest) (*wizard.MetadataPage, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wizard.MetadataPage), args.Error(1)
}

// MockCredentialSource is a mock implementation of wizard.CredentialSource.
type MockCredentialSource struct {
	mock.Mock
}

// DefaultCredentials returns the configured credentials.
func (m *MockCredentialSource) DefaultCredentials(ctx context.Context) (*wizard.Credentials, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wizard.Credentials), args.Error(1)
}

// MockSubmitter implements both wizard.ClusterSubmitter and
// wizard.PolicySubmitter.
type MockSubmitter struct {
	mock.Mock
}

// SubmitCluster records the cluster submission.
func (m *MockSubmitter) SubmitCluster(ctx context.Context, cluster *v1alpha1.Cluster) error {
	args := m.Called(ctx, cluster)
	return args.Error(0)
}

// SubmitPolicy records the policy submission.
func (m *MockSubmitter) SubmitPolicy(ctx context.Context, policy *v1alpha1.DefaultPolicies) error {
	args := m.Called(ctx, policy)
	return args.Error(0)
}
