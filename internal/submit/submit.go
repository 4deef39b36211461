// Package submit creates the composed documents in the management cluster.
package submit

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/undistro/clusterwizard/api/v1alpha1"
)

// Submitter implements wizard.ClusterSubmitter and wizard.PolicySubmitter
// on a controller-runtime client. A document that already exists counts as
// submitted, so a commit retried after a partial failure goes through.
type Submitter struct {
	client client.Client
}

// New creates a Submitter writing through c.
func New(c client.Client) *Submitter {
	return &Submitter{client: c}
}

// SubmitCluster creates cluster.
func (s *Submitter) SubmitCluster(ctx context.Context, cluster *v1alpha1.Cluster) error {
	return s.create(ctx, "Cluster", cluster.DeepCopy())
}

// SubmitPolicy creates policy.
func (s *Submitter) SubmitPolicy(ctx context.Context, policy *v1alpha1.DefaultPolicies) error {
	return s.create(ctx, "DefaultPolicies", policy.DeepCopy())
}

func (s *Submitter) create(ctx context.Context, kind string, obj client.Object) error {
	logger := log.FromContext(ctx).WithValues("kind", kind, "object", client.ObjectKeyFromObject(obj))

	err := s.client.Create(ctx, obj)
	if apierrors.IsAlreadyExists(err) {
		logger.Info("Object already exists, treating as submitted")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create %s %s: %w", kind, client.ObjectKeyFromObject(obj), err)
	}

	logger.V(1).Info("Created object")
	return nil
}
