package wizard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/undistro/clusterwizard/api/v1alpha1"
)

func validFields() map[FieldKey]Value {
	return map[FieldKey]Value{
		FieldClusterName:       StringValue("demo"),
		FieldNamespace:         StringValue("default"),
		FieldKubernetesVersion: OptionValue(NewOption("v1.20.8")),
		FieldProvider:          StringValue("aws"),
		FieldFlavor:            OptionValue(NewOption("ec2")),
		FieldRegion:            OptionValue(NewOption("us-east-1")),
		FieldSSHKey:            OptionValue(NewOption("undistro")),
		FieldReplicas:          IntValue(3),
		FieldMachineType:       OptionValue(NewOption("t3.medium")),
		FieldVCPU:              OptionValue(NewOption("2")),
		FieldMemory:            OptionValue(NewOption("4")),
	}
}

func TestCompose(t *testing.T) {
	snap := Snapshot{
		Fields: validFields(),
		Workers: []WorkerPoolEntry{
			{ID: "a", MachineType: opt("t3.large"), Replicas: 2},
			{ID: "b", MachineType: opt("m5.xlarge"), VCPU: opt("4"), Replicas: 0, InfraNode: true},
		},
	}

	docs, err := Compose(snap)
	require.NoError(t, err)

	c := docs.Cluster
	assert.Equal(t, "app.undistro.io/v1alpha1", c.APIVersion)
	assert.Equal(t, v1alpha1.ClusterKind, c.Kind)
	assert.Equal(t, "demo", c.Name)
	assert.Equal(t, "default", c.Namespace)
	assert.Equal(t, "v1.20.8", c.Spec.KubernetesVersion)
	assert.Equal(t, v1alpha1.InfrastructureProvider{
		Name: "aws", Flavor: "ec2", Region: "us-east-1", SSHKey: "undistro",
	}, c.Spec.InfrastructureProvider)

	require.NotNil(t, c.Spec.ControlPlane)
	assert.Equal(t, int32(3), *c.Spec.ControlPlane.Replicas)
	assert.Equal(t, "t3.medium", c.Spec.ControlPlane.MachineType)
	assert.Equal(t, "2", c.Spec.ControlPlane.VCPUs)
	assert.Equal(t, "4", c.Spec.ControlPlane.Memory)

	require.Len(t, c.Spec.Workers, 2)
	assert.Equal(t, "t3.large", c.Spec.Workers[0].MachineType)
	assert.Equal(t, int32(2), *c.Spec.Workers[0].Replicas)
	assert.Equal(t, int32(0), *c.Spec.Workers[1].Replicas)
	assert.Equal(t, "4", c.Spec.Workers[1].VCPUs)
	assert.True(t, c.Spec.Workers[1].InfraNode)

	p := docs.Policy
	assert.Equal(t, v1alpha1.DefaultPoliciesKind, p.Kind)
	assert.Equal(t, v1alpha1.DefaultPoliciesName, p.Name)
	assert.Equal(t, c.Namespace, p.Namespace)
	assert.Equal(t, c.Name, p.Spec.ClusterName)
}

func TestCompose_NoWorkers(t *testing.T) {
	docs, err := Compose(Snapshot{Fields: validFields()})
	require.NoError(t, err)
	assert.Empty(t, docs.Cluster.Spec.Workers)
}

func TestCompose_FirstMissingField(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f map[FieldKey]Value)
		workers []WorkerPoolEntry
		want    string
	}{
		{
			name:   "blank namespace",
			mutate: func(f map[FieldKey]Value) { f[FieldNamespace] = StringValue("") },
			want:   "namespace",
		},
		{
			name: "cluster name is checked before namespace",
			mutate: func(f map[FieldKey]Value) {
				delete(f, FieldClusterName)
				f[FieldNamespace] = StringValue("  ")
			},
			want: "clusterName",
		},
		{
			name:   "kubernetes version",
			mutate: func(f map[FieldKey]Value) { f[FieldKubernetesVersion] = OptionValue(Option{Label: "v1.20"}) },
			want:   "kubernetesVersion",
		},
		{
			name: "provider before region",
			mutate: func(f map[FieldKey]Value) {
				delete(f, FieldProvider)
				delete(f, FieldRegion)
			},
			want: "provider",
		},
		{
			name:   "flavor",
			mutate: func(f map[FieldKey]Value) { delete(f, FieldFlavor) },
			want:   "flavor",
		},
		{
			name:   "region",
			mutate: func(f map[FieldKey]Value) { delete(f, FieldRegion) },
			want:   "region",
		},
		{
			name:   "negative control plane replicas",
			mutate: func(f map[FieldKey]Value) { f[FieldReplicas] = IntValue(-1) },
			want:   "replicas",
		},
		{
			name:   "replicas of the wrong kind",
			mutate: func(f map[FieldKey]Value) { f[FieldReplicas] = StringValue("3") },
			want:   "replicas",
		},
		{
			name:   "control plane machine type",
			mutate: func(f map[FieldKey]Value) { delete(f, FieldMachineType) },
			want:   "machineType",
		},
		{
			name: "worker without machine type",
			workers: []WorkerPoolEntry{
				{ID: "a", MachineType: opt("t3.large"), Replicas: 1},
				{ID: "b", Replicas: 1},
			},
			want: "workers[1].machineType",
		},
		{
			name: "worker with negative replicas",
			workers: []WorkerPoolEntry{
				{ID: "a", MachineType: opt("t3.large"), Replicas: -1},
			},
			want: "workers[0].replicas",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validFields()
			if tt.mutate != nil {
				tt.mutate(fields)
			}

			docs, err := Compose(Snapshot{Fields: fields, Workers: tt.workers})
			assert.Nil(t, docs)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingField)

			var compErr *CompositionError
			require.True(t, errors.As(err, &compErr))
			assert.Equal(t, tt.want, compErr.Field)
		})
	}
}
