package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// Kind names used when documents are built outside of a typed client.
const (
	ClusterKind         = "Cluster"
	DefaultPoliciesKind = "DefaultPolicies"
)

// Node describes a group of machines sharing one machine type.
type Node struct {
	// Replicas is the desired number of machines
	// +kubebuilder:validation:Minimum=0
	Replicas *int32 `json:"replicas,omitempty"`

	// MachineType is the provider instance type (e.g., t3.medium)
	MachineType string `json:"machineType,omitempty"`

	// VCPUs is the vCPU sizing selected alongside the machine type
	// +optional
	VCPUs string `json:"vcpus,omitempty"`

	// Memory is the memory sizing selected alongside the machine type
	// +optional
	Memory string `json:"memory,omitempty"`
}

// ControlPlaneNode defines the control plane machines.
type ControlPlaneNode struct {
	Node `json:",inline"`
}

// WorkerNode defines one worker pool.
type WorkerNode struct {
	Node `json:",inline"`

	// InfraNode marks the pool as dedicated to infrastructure workloads
	// +optional
	InfraNode bool `json:"infraNode,omitempty"`
}

// InfrastructureProvider selects where and how the cluster is provisioned.
type InfrastructureProvider struct {
	// Name of the provider (e.g., aws)
	Name string `json:"name"`

	// Flavor is the provider flavor (e.g., ec2, eks)
	Flavor string `json:"flavor"`

	// Region is the provider region
	Region string `json:"region"`

	// SSHKey is the name of a key pair registered in the provider
	// +optional
	SSHKey string `json:"sshKey,omitempty"`
}

// ClusterSpec defines the desired state of Cluster.
type ClusterSpec struct {
	KubernetesVersion      string                 `json:"kubernetesVersion"`
	InfrastructureProvider InfrastructureProvider `json:"infrastructureProvider"`
	ControlPlane           *ControlPlaneNode      `json:"controlPlane,omitempty"`
	Workers                []WorkerNode           `json:"workers,omitempty"`
}

// ClusterStatus defines the observed state of Cluster.
type ClusterStatus struct {
	// +optional
	Phase string `json:"phase,omitempty"`

	// +optional
	Ready bool `json:"ready,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced

// Cluster is the Schema for the clusters API.
type Cluster struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   ClusterSpec   `json:"spec,omitempty"`
	Status ClusterStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// ClusterList contains a list of Cluster.
type ClusterList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Cluster `json:"items"`
}
