package naming

import "fmt"

// WorkerPool returns the display name of the worker pool at position index.
func WorkerPool(cluster string, index int) string {
	return fmt.Sprintf("%s-mp-%d", cluster, index)
}

// WorkerPoolField returns the path used in error messages for a worker pool field.
func WorkerPoolField(index int, field string) string {
	return fmt.Sprintf("workers[%d].%s", index, field)
}

// CredentialsSecret returns the name of the provider credentials Secret
// kept in the management cluster.
func CredentialsSecret(provider string) string {
	return fmt.Sprintf("undistro-%s-config", provider)
}
