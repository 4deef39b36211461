package commands

import (
	"github.com/spf13/cobra"

	"github.com/undistro/clusterwizard/cmd/clusterwizard/handlers"
)

// Catalog returns the command that prints a metadata listing.
//
// Arguments:
//
//	kind: regions, supportedFlavors, kubernetesVersions, machineTypes, sshKeys, vcpus or memory
//
// Optional flags:
//
//	--context: Governing value (flavor, region or machine type) for dependent listings
//	--all: Load every page instead of only the first one
func Catalog() *cobra.Command {
	var opts handlers.CatalogOptions

	cmd := &cobra.Command{
		Use:   "catalog <kind>",
		Short: "Print a metadata listing from the configured source",
		Long: `Print one metadata listing the wizard offers as choices.

Listings are read page by page from the configured metadata source, exactly
as the wizard does. Dependent listings need the governing value:

  kubernetesVersions  --context <flavor>
  machineTypes        --context <region>
  sshKeys             --context <region>
  vcpus, memory       --context <machine type>

Examples:
  clusterwizard catalog regions
  clusterwizard catalog kubernetesVersions --context eks
  clusterwizard catalog machineTypes --context us-east-1 --all`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: handlers.CatalogKinds(),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Kind = args[0]
			return handlers.Catalog(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: clusterwizard.yaml)")
	cmd.Flags().StringVar(&opts.Provider, "provider", "", "Provider to list (default: from configuration)")
	cmd.Flags().StringVar(&opts.Context, "context", "", "Governing value for dependent listings")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "Items per page (default: from configuration)")
	cmd.Flags().BoolVar(&opts.All, "all", false, "Load every page")

	return cmd
}
