// Package k8s connects to the management cluster the wizard submits to.
package k8s

import (
	"fmt"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/undistro/clusterwizard/api/v1alpha1"
)

func loader(kubeconfigPath string) clientcmd.ClientConfig {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if kubeconfigPath != "" {
		rules.ExplicitPath = kubeconfigPath
	}
	return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{})
}

// RESTConfig builds a REST config from kubeconfigPath, or from $KUBECONFIG
// and ~/.kube/config when the path is empty.
func RESTConfig(kubeconfigPath string) (*rest.Config, error) {
	config, err := loader(kubeconfigPath).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig: %w", err)
	}
	return config, nil
}

// CurrentContext returns the kubeconfig context the client will use.
func CurrentContext(kubeconfigPath string) (string, error) {
	raw, err := loader(kubeconfigPath).RawConfig()
	if err != nil {
		return "", fmt.Errorf("failed to read kubeconfig: %w", err)
	}
	return raw.CurrentContext, nil
}

// NewClient creates a client for the management cluster with the UnDistro
// types registered.
func NewClient(kubeconfigPath string) (client.Client, error) {
	config, err := RESTConfig(kubeconfigPath)
	if err != nil {
		return nil, err
	}
	return newClient(config)
}

// NewClientFromBytes creates a management cluster client from kubeconfig bytes.
func NewClientFromBytes(kubeconfigData []byte) (client.Client, error) {
	config, err := clientcmd.RESTConfigFromKubeConfig(kubeconfigData)
	if err != nil {
		return nil, fmt.Errorf("failed to build kubeconfig from bytes: %w", err)
	}
	return newClient(config)
}

func newClient(config *rest.Config) (client.Client, error) {
	c, err := client.New(config, client.Options{Scheme: v1alpha1.Scheme})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}
