// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"os"

	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

// Root returns the root command for the clusterwizard CLI.
//
// The root command installs the logger shared by every subcommand: a zap
// logger writing to stderr, in development mode with --verbose.
func Root() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "clusterwizard",
		Short: "Interactively create UnDistro clusters",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			ctrl.SetLogger(zap.New(zap.UseDevMode(verbose), zap.WriteTo(os.Stderr)))
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(Create())
	cmd.AddCommand(Catalog())
	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
