package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/undistro/clusterwizard/internal/config"
	"github.com/undistro/clusterwizard/internal/wizard"
)

var (
	errUnknownKind     = errors.New("unknown metadata kind")
	errContextRequired = errors.New("listing needs --context")
)

// CatalogOptions holds the flags of the catalog command.
type CatalogOptions struct {
	ConfigPath string
	Kind       string
	Provider   string
	Context    string
	PageSize   int
	All        bool
}

// catalogKinds maps each listing to the value that governs it, if any.
var catalogKinds = []struct {
	kind    wizard.MetadataKind
	context string
}{
	{wizard.MetaRegions, ""},
	{wizard.MetaSupportedFlavors, ""},
	{wizard.MetaKubernetesVersions, "flavor"},
	{wizard.MetaMachineTypes, "region"},
	{wizard.MetaSSHKeys, "region"},
	{wizard.MetaVCPUs, "machine type"},
	{wizard.MetaMemory, "machine type"},
}

// CatalogKinds returns the listings the catalog command accepts.
func CatalogKinds() []string {
	kinds := make([]string, len(catalogKinds))
	for i, k := range catalogKinds {
		kinds[i] = string(k.kind)
	}
	return kinds
}

// Catalog prints one metadata listing using the same pager as the wizard.
func Catalog(ctx context.Context, opts CatalogOptions) error {
	var kind wizard.MetadataKind
	governor := ""
	for _, k := range catalogKinds {
		if string(k.kind) == opts.Kind {
			kind, governor = k.kind, k.context
		}
	}
	if kind == "" {
		return fmt.Errorf("%w: %q (valid: %s)", errUnknownKind, opts.Kind, strings.Join(CatalogKinds(), ", "))
	}
	if governor != "" && opts.Context == "" {
		return fmt.Errorf("%w: %s lists per %s", errContextRequired, kind, governor)
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	logger := ctrl.Log.WithName("catalog")
	ctx = log.IntoContext(ctx, logger)

	provider := opts.Provider
	if provider == "" {
		provider = cfg.Provider
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = cfg.Metadata.PageSize
	}
	if pageSize <= 0 {
		pageSize = wizard.DefaultPageSize
	}

	var kube client.Client
	if cfg.Credentials.Source == config.CredentialsSecret {
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

	query := wizard.QueryKey{
		Provider: provider,
		Kind:     kind,
		PageSize: pageSize,
		Context:  opts.Context,
	}
	pager := wizard.NewOptionPager(source, logger)
	for {
		if _, err := pager.LoadNext(ctx, query); err != nil {
			return fmt.Errorf("failed to list %s: %w", kind, err)
		}
		if !opts.All || pager.Exhausted() {
			break
		}
	}

	printCatalog(stdout, query, pager.Options(), pager.HasMore())
	return nil
}

// printCatalog prints a listing, one option per line.
func printCatalog(w io.Writer, query wizard.QueryKey, options []wizard.Option, more bool) {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9fafb"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))

	title := fmt.Sprintf("%s %s", query.Provider, query.Kind)
	if query.Context != "" {
		title += " for " + query.Context
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, titleStyle.Render("  "+title))
	_, _ = fmt.Fprintln(w, dimStyle.Render("  "+strings.Repeat("-", 35)))

	for _, opt := range options {
		line := valueStyle.Render(opt.Value)
		if opt.Label != "" && opt.Label != opt.Value {
			line += "  " + dimStyle.Render(opt.Label)
		}
		_, _ = fmt.Fprintln(w, "  "+line)
	}
	if len(options) == 0 {
		_, _ = fmt.Fprintln(w, dimStyle.Render("  Nothing listed."))
	}
	if more {
		_, _ = fmt.Fprintln(w, dimStyle.Render("  More entries available, use --all to list them."))
	}
	_, _ = fmt.Fprintln(w)
}
