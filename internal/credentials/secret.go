package credentials

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/undistro/clusterwizard/internal/util/naming"
	"github.com/undistro/clusterwizard/internal/wizard"
)

// DefaultSecretNamespace holds the provider credential Secrets.
const DefaultSecretNamespace = "undistro-system"

// Keys of the credentials Secret.
const (
	SecretKeyAccessKeyID     = "accessKeyID"
	SecretKeySecretAccessKey = "secretAccessKey"
	SecretKeySessionToken    = "sessionToken"
	SecretKeyRegion          = "region"
)

// Secret reads provider credentials from a Secret in the management cluster.
// Secret data is already base64 decoded by the API machinery.
type Secret struct {
	reader client.Reader
	key    types.NamespacedName
}

// NewSecret creates a source reading the Secret name in namespace. Empty
// values default to the provider's credentials Secret in undistro-system.
func NewSecret(reader client.Reader, provider, namespace, name string) *Secret {
	if namespace == "" {
		namespace = DefaultSecretNamespace
	}
	if name == "" {
		name = naming.CredentialsSecret(provider)
	}
	return &Secret{reader: reader, key: types.NamespacedName{Namespace: namespace, Name: name}}
}

// DefaultCredentials implements wizard.CredentialSource.
func (s *Secret) DefaultCredentials(ctx context.Context) (*wizard.Credentials, error) {
	secret := &corev1.Secret{}
	if err := s.reader.Get(ctx, s.key, secret); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, fmt.Errorf("%w: secret %s not found", ErrNoCredentials, s.key)
		}
		return nil, fmt.Errorf("failed to get secret %s: %w", s.key, err)
	}

	creds := &wizard.Credentials{
		AccessKeyID:     string(secret.Data[SecretKeyAccessKeyID]),
		SecretAccessKey: string(secret.Data[SecretKeySecretAccessKey]),
		SessionToken:    string(secret.Data[SecretKeySessionToken]),
		Region:          string(secret.Data[SecretKeyRegion]),
	}
	if creds.AccessKeyID == "" {
		return nil, fmt.Errorf("%w: %s missing %s", ErrIncompleteSecret, s.key, SecretKeyAccessKeyID)
	}
	if creds.SecretAccessKey == "" {
		return nil, fmt.Errorf("%w: %s missing %s", ErrIncompleteSecret, s.key, SecretKeySecretAccessKey)
	}
	return creds, nil
}
