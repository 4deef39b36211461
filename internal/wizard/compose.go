package wizard

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/undistro/clusterwizard/api/v1alpha1"
	"github.com/undistro/clusterwizard/internal/util/naming"
	"github.com/undistro/clusterwizard/internal/util/ptr"
)

// Snapshot is a consistent copy of session state taken at commit time.
type Snapshot struct {
	Fields  map[FieldKey]Value
	Workers []WorkerPoolEntry
}

// Documents are the two resources submitted on commit.
type Documents struct {
	Cluster *v1alpha1.Cluster
	Policy  *v1alpha1.DefaultPolicies
}

// Compose validates snap and builds the Cluster and DefaultPolicies
// documents from it.
//
// Fields are checked in a fixed order (cluster name, namespace, kubernetes
// version, provider, flavor, region, control plane replicas and machine
// type, then each worker pool in order) and the first offender is returned
// as a *CompositionError.
func Compose(snap Snapshot) (*Documents, error) {
	fields := snap.Fields

	for _, key := range []FieldKey{
		FieldClusterName,
		FieldNamespace,
		FieldKubernetesVersion,
		FieldProvider,
		FieldFlavor,
		FieldRegion,
	} {
		if !fields[key].Present() {
			return nil, &CompositionError{Field: string(key)}
		}
	}

	replicas, ok := fields[FieldReplicas].Int()
	if !ok || replicas < 0 {
		return nil, &CompositionError{Field: string(FieldReplicas)}
	}
	if !fields[FieldMachineType].Present() {
		return nil, &CompositionError{Field: string(FieldMachineType)}
	}

	for i, w := range snap.Workers {
		if w.Replicas < 0 {
			return nil, &CompositionError{Field: naming.WorkerPoolField(i, "replicas")}
		}
		if w.MachineType == nil || w.MachineType.Value == "" {
			return nil, &CompositionError{Field: naming.WorkerPoolField(i, "machineType")}
		}
	}

	name := fields[FieldClusterName].Text()
	namespace := fields[FieldNamespace].Text()

	cluster := &v1alpha1.Cluster{
		TypeMeta: metav1.TypeMeta{
			APIVersion: v1alpha1.GroupVersion.String(),
			Kind:       v1alpha1.ClusterKind,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: namespace,
		},
		Spec: v1alpha1.ClusterSpec{
			KubernetesVersion: fields[FieldKubernetesVersion].Text(),
			InfrastructureProvider: v1alpha1.InfrastructureProvider{
				Name:   fields[FieldProvider].Text(),
				Flavor: fields[FieldFlavor].Text(),
				Region: fields[FieldRegion].Text(),
				SSHKey: fields[FieldSSHKey].Text(),
			},
			ControlPlane: &v1alpha1.ControlPlaneNode{
				Node: v1alpha1.Node{
					Replicas:    ptr.Int32(replicas),
					MachineType: fields[FieldMachineType].Text(),
					VCPUs:       fields[FieldVCPU].Text(),
					Memory:      fields[FieldMemory].Text(),
				},
			},
		},
	}

	for _, w := range snap.Workers {
		cluster.Spec.Workers = append(cluster.Spec.Workers, v1alpha1.WorkerNode{
			Node: v1alpha1.Node{
				Replicas:    ptr.Int32(w.Replicas),
				MachineType: w.MachineType.Value,
				VCPUs:       optionValue(w.VCPU),
				Memory:      optionValue(w.Memory),
			},
			InfraNode: w.InfraNode,
		})
	}

	policy := &v1alpha1.DefaultPolicies{
		TypeMeta: metav1.TypeMeta{
			APIVersion: v1alpha1.GroupVersion.String(),
			Kind:       v1alpha1.DefaultPoliciesKind,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      v1alpha1.DefaultPoliciesName,
			Namespace: namespace,
		},
		Spec: v1alpha1.DefaultPoliciesSpec{
			ClusterName: name,
		},
	}

	return &Documents{Cluster: cluster, Policy: policy}, nil
}

func optionValue(o *Option) string {
	if o == nil {
		return ""
	}
	return o.Value
}
