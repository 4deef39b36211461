package commands

import (
	"github.com/spf13/cobra"

	"github.com/undistro/clusterwizard/cmd/clusterwizard/handlers"
)

// Create returns the command that runs the cluster creation wizard.
//
// Optional flags:
//
//	--config, -c: Path to the configuration file (default: clusterwizard.yaml if present)
//	--dry-run: Do not submit anything to the management cluster
//	--output, -o: Also write the documents to a file, "-" or an s3://bucket/key URL
//
// Environment variables:
//
//	KUBECONFIG: Management cluster kubeconfig
//	UNDISTRO_API_URL, UNDISTRO_API_TOKEN: UnDistro metadata API
//	HCLOUD_TOKEN: Hetzner Cloud API token
//	AWS_PROFILE: AWS profile used for default credentials
func Create() *cobra.Command {
	var opts handlers.CreateOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a cluster with the interactive wizard",
		Long: `Create an UnDistro cluster with the interactive wizard.

The wizard asks for the cluster, its infrastructure provider, the control
plane and any number of worker pools. Choices such as regions, flavors and
machine types are loaded page by page from the configured metadata source.

On the last step the Cluster and its DefaultPolicies are submitted to the
management cluster. With --dry-run nothing is submitted and the documents
are written to --output instead (standard output by default).

Examples:
  # Create a cluster using clusterwizard.yaml in the current directory
  clusterwizard create

  # Preview the documents without submitting them
  clusterwizard create --dry-run

  # Submit and keep a copy in a bucket
  clusterwizard create -o s3://my-bucket/clusters/demo.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Create(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: clusterwizard.yaml)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Write the documents instead of submitting them")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", `Write the documents to a file, "-" or s3://bucket/key`)

	return cmd
}
