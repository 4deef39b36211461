// Package credentials provides wizard.CredentialSource implementations used
// to pre-fill the provider credential fields: the AWS SDK default chain and
// the credentials Secret kept in the management cluster.
package credentials
