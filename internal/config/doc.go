// Package config loads the clusterwizard configuration file.
//
// The file is optional. Missing values take defaults, and a few well-known
// environment variables override whatever the file says:
//
//   - UNDISTRO_API_URL, UNDISTRO_API_TOKEN: UnDistro API server metadata source
//   - HCLOUD_TOKEN: Hetzner Cloud metadata source
//   - KUBECONFIG: management cluster kubeconfig
//   - AWS_PROFILE: shared config profile for AWS credentials
package config
