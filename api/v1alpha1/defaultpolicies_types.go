package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// DefaultPoliciesName is the name every cluster's policy resource is created with.
const DefaultPoliciesName = "defaultpolicies-undistro"

// DefaultPoliciesSpec defines the desired state of DefaultPolicies.
type DefaultPoliciesSpec struct {
	// ClusterName is the Cluster these policies apply to
	ClusterName string `json:"clusterName"`

	// ExcludePolicies lists policy names not to apply
	// +optional
	ExcludePolicies []string `json:"excludePolicies,omitempty"`
}

// DefaultPoliciesStatus defines the observed state of DefaultPolicies.
type DefaultPoliciesStatus struct {
	// +optional
	AppliedPolicies []string `json:"appliedPolicies,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status

// DefaultPolicies is the Schema for the defaultpolicies API.
type DefaultPolicies struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   DefaultPoliciesSpec   `json:"spec,omitempty"`
	Status DefaultPoliciesStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// DefaultPoliciesList contains a list of DefaultPolicies.
type DefaultPoliciesList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []DefaultPolicies `json:"items"`
}
