package testing

import (
	"github.com/undistro/clusterwizard/internal/wizard"
)

type fieldValue struct {
	key   wizard.FieldKey
	value wizard.Value
}

// SessionBuilder provides a fluent interface for constructing sessions with
// fields already set. Each method returns a new builder (immutable) for
// chaining. Fields are applied in the order they were added, so governors
// must be added before their dependents.
type SessionBuilder struct {
	fields []fieldValue
	opts   []wizard.SessionOption
}

// NewSessionBuilder creates a builder with no fields set.
func NewSessionBuilder() *SessionBuilder {
	return &SessionBuilder{}
}

func (b *SessionBuilder) clone() *SessionBuilder {
	return &SessionBuilder{
		fields: append([]fieldValue(nil), b.fields...),
		opts:   append([]wizard.SessionOption(nil), b.opts...),
	}
}

// WithField sets one field.
func (b *SessionBuilder) WithField(key wizard.FieldKey, value wizard.Value) *SessionBuilder {
	newBuilder := b.clone()
	newBuilder.fields = append(newBuilder.fields, fieldValue{key: key, value: value})
	return newBuilder
}

// WithProvider selects the infrastructure provider.
func (b *SessionBuilder) WithProvider(provider string) *SessionBuilder {
	return b.WithField(wizard.FieldProvider, wizard.StringValue(provider))
}

// WithCluster sets the cluster name and namespace.
func (b *SessionBuilder) WithCluster(name, namespace string) *SessionBuilder {
	return b.
		WithField(wizard.FieldClusterName, wizard.StringValue(name)).
		WithField(wizard.FieldNamespace, wizard.StringValue(namespace))
}

// WithRegion selects the region.
func (b *SessionBuilder) WithRegion(region string) *SessionBuilder {
	return b.WithField(wizard.FieldRegion, wizard.OptionValue(wizard.NewOption(region)))
}

// WithControlPlane sets the control plane machine type and replica count.
func (b *SessionBuilder) WithControlPlane(machineType string, replicas int) *SessionBuilder {
	return b.
		WithField(wizard.FieldMachineType, wizard.OptionValue(wizard.NewOption(machineType))).
		WithField(wizard.FieldReplicas, wizard.IntValue(replicas))
}

// WithOptions appends session options.
func (b *SessionBuilder) WithOptions(opts ...wizard.SessionOption) *SessionBuilder {
	newBuilder := b.clone()
	newBuilder.opts = append(newBuilder.opts, opts...)
	return newBuilder
}

// Build opens a session and applies the fields. It panics on a field the
// session rejects, which only happens with a misconfigured builder.
func (b *SessionBuilder) Build(source wizard.MetadataSource, cluster wizard.ClusterSubmitter, policy wizard.PolicySubmitter) *wizard.Session {
	s := wizard.NewSession(source, cluster, policy, b.opts...)
	for _, f := range b.fields {
		if err := s.SetField(f.key, f.value); err != nil {
			panic(err)
		}
	}
	return s
}
