package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/mattn/go-isatty"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/undistro/clusterwizard/internal/config"
	"github.com/undistro/clusterwizard/internal/export"
	"github.com/undistro/clusterwizard/internal/k8s"
	"github.com/undistro/clusterwizard/internal/platform/s3"
	"github.com/undistro/clusterwizard/internal/submit"
	"github.com/undistro/clusterwizard/internal/ui/form"
	"github.com/undistro/clusterwizard/internal/ui/tui"
	"github.com/undistro/clusterwizard/internal/wizard"
)

// CreateOptions holds the flags of the create command.
type CreateOptions struct {
	ConfigPath string
	DryRun     bool
	Output     string
}

// Factory function variables for create - can be replaced in tests.
var (
	// loadConfig reads the configuration file. An explicit path must exist.
	loadConfig = func(path string) (*config.Config, error) {
		if path == "" {
			return config.Load(config.DefaultPath, false)
		}
		return config.Load(path, true)
	}

	// newMetadataSource creates the metadata source the configuration selects.
	newMetadataSource = buildMetadataSource

	// newCredentialSource creates the default credentials source.
	newCredentialSource = buildCredentialSource

	// newKubeClient connects to the management cluster.
	newKubeClient = k8s.NewClient

	// newSubmitter creates the submitter for both documents.
	newSubmitter = func(c client.Client) submitter {
		return submit.New(c)
	}

	// newPrompter creates the interactive prompter.
	newPrompter = func() form.Prompter {
		return form.NewHuhPrompter(os.Getenv("ACCESSIBLE") != "")
	}

	// newObjectStore creates the S3 client used for s3:// destinations.
	newObjectStore = func(ctx context.Context, opts s3.Options) (export.ObjectStore, error) {
		c, err := s3.NewClient(ctx, opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	// isTerminal reports whether stdout is an interactive terminal.
	isTerminal = func() bool {
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}

	// runCommit shows the commit progress TUI.
	runCommit = tui.RunCommit

	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// submitter submits both documents of a commit.
type submitter interface {
	wizard.ClusterSubmitter
	wizard.PolicySubmitter
}

// Create runs the wizard and commits the resulting cluster.
//
// The wizard is pre-filled from the configuration and, once the provider
// is known, from the default credentials. Once the user submits the last step the Cluster and
// DefaultPolicies are submitted concurrently and, when an output is set,
// exported. A failed submission can be retried without answering again.
func Create(ctx context.Context, opts CreateOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	logger := ctrl.Log.WithName("create")
	ctx = log.IntoContext(ctx, logger)

	output := opts.Output
	if output == "" {
		output = cfg.Export.Path
	}
	if opts.DryRun && output == "" {
		output = export.Stdout
	}

	var kube client.Client
	if !opts.DryRun || cfg.Credentials.Source == config.CredentialsSecret {
		kube, err = newKubeClient(cfg.Kubeconfig)
		if err != nil {
			return fmt.Errorf("failed to connect to management cluster: %w", err)
		}
	}

	creds, err := newCredentialSource(cfg, kube)
	if err != nil {
		return err
	}

	source, err := newMetadataSource(cfg, creds)
	if err != nil {
		return err
	}

	reporter := tui.NewReporter()
	var (
		clusterSubmitter wizard.ClusterSubmitter
		policySubmitter  wizard.PolicySubmitter
	)
	if !opts.DryRun {
		sub := newSubmitter(kube)
		clusterSubmitter = reporter.Cluster(sub)
		policySubmitter = reporter.Policy(sub)
	}

	session := wizard.NewSession(source, clusterSubmitter, policySubmitter,
		wizard.WithLogger(ctrl.Log.WithName("wizard")),
		wizard.WithPageSize(cfg.Metadata.PageSize),
	)
	defer session.Close()

	if err := prefill(session, cfg); err != nil {
		return err
	}

	prompter := newPrompter()
	printWelcome(opts.DryRun)

	var runnerOpts []form.RunnerOption
	if creds != nil {
		runnerOpts = append(runnerOpts, form.WithCredentialSource(creds))
	}
	if err := form.NewRunner(session, prompter, runnerOpts...).Run(ctx); err != nil {
		if errors.Is(err, form.ErrAborted) {
			return fmt.Errorf("wizard canceled: %w", err)
		}
		return err
	}

	// Fields are discarded by a successful commit.
	fields := session.Fields()
	pools := poolSummaries(session)

	exporter := export.New(
		export.WithStdout(stdout),
		export.WithObjectStore(func(ctx context.Context) (export.ObjectStore, error) {
			return newObjectStore(ctx, objectStoreOptions(cfg, fields))
		}),
	)

	var location string
	commit := func(ctx context.Context) error {
		result, err := session.Commit(ctx)
		if err != nil {
			return err
		}
		if output == "" {
			return nil
		}
		return reporter.Track(tui.PhaseExport, func() error {
			docs := &wizard.Documents{Cluster: result.Cluster, Policy: result.Policy}
			location, err = exporter.Export(ctx, output, docs)
			if err != nil {
				return fmt.Errorf("failed to export documents: %w", err)
			}
			return nil
		})
	}

	var phases []tui.Phase
	if !opts.DryRun {
		phases = append(phases, tui.ClusterPhase(), tui.PolicyPhase())
	}
	if output != "" {
		phases = append(phases, tui.ExportPhase(output))
	}

	name := fields[wizard.FieldClusterName].Text()
	namespace := fields[wizard.FieldNamespace].Text()

	for {
		if isTerminal() && output != export.Stdout {
			err = runCommit(ctx, reporter, tui.NewCommitModel(name, namespace, phases...), commit)
		} else {
			reporter.Attach(tui.PlainProgress(stderr, phases...))
			err = commit(ctx)
			reporter.Attach(nil)
		}

		var submissionErr *wizard.SubmissionError
		if err == nil || !errors.As(err, &submissionErr) {
			break
		}

		retry, confirmErr := prompter.Confirm(ctx, "Submission failed. Retry?", submissionErr.Error(), true)
		if confirmErr != nil || !retry {
			break
		}
		logger.Info("Retrying submission", "cluster", name, "namespace", namespace)
	}
	if err != nil {
		// Only the export can fail once the commit went through.
		switch {
		case session.State() != wizard.StateSubmitted:
		case opts.DryRun:
			return fmt.Errorf("failed to write cluster %s: %w", name, err)
		default:
			return fmt.Errorf("cluster %s was submitted: %w", name, err)
		}
		return fmt.Errorf("failed to create cluster %s: %w", name, err)
	}

	summary := stdout
	if output == export.Stdout {
		summary = stderr
	}
	printCreateSummary(summary, fields, pools, !opts.DryRun, location)
	return nil
}

// prefill applies the configured provider and namespace. Answers given in
// the wizard always win. Credentials are seeded by the runner once the
// provider is known.
func prefill(session *wizard.Session, cfg *config.Config) error {
	if cfg.Provider != "" {
		if err := session.SetField(wizard.FieldProvider, wizard.StringValue(cfg.Provider)); err != nil {
			return err
		}
	}
	if cfg.Namespace != "" {
		if err := session.SetField(wizard.FieldNamespace, wizard.StringValue(cfg.Namespace)); err != nil {
			return err
		}
	}
	return nil
}

// objectStoreOptions configures S3 uploads. Keys entered in the wizard take
// precedence over the configured profile.
func objectStoreOptions(cfg *config.Config, fields map[wizard.FieldKey]wizard.Value) s3.Options {
	opts := s3.Options{
		Region:    cfg.Export.S3Region,
		Endpoint:  cfg.Export.S3Endpoint,
		PathStyle: cfg.Export.S3PathStyle,
		Profile:   cfg.Credentials.Profile,
	}
	if opts.Region == "" && cfg.Provider == "aws" {
		opts.Region = fields[wizard.FieldRegion].Text()
	}

	accessKey := fields[wizard.FieldAccessKeyID].Text()
	secretKey := fields[wizard.FieldSecretAccessKey].Text()
	if accessKey != "" && secretKey != "" {
		opts.Credentials = awscreds.NewStaticCredentialsProvider(accessKey, secretKey, fields[wizard.FieldSessionToken].Text())
	}
	return opts
}
