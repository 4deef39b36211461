package handlers

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/undistro/clusterwizard/internal/wizard"
)

// poolSummary is a worker pool as shown in the create summary.
type poolSummary struct {
	Name        string
	Replicas    int
	MachineType string
	InfraNode   bool
}

func poolSummaries(session *wizard.Session) []poolSummary {
	entries := session.WorkerPools()
	pools := make([]poolSummary, len(entries))
	for i, entry := range entries {
		pools[i] = poolSummary{
			Name:      session.WorkerPoolName(i),
			Replicas:  entry.Replicas,
			InfraNode: entry.InfraNode,
		}
		if entry.MachineType != nil {
			pools[i].MachineType = entry.MachineType.Value
		}
	}
	return pools
}

// printWelcome prints the welcome message.
func printWelcome(dryRun bool) {
	fmt.Println()
	fmt.Println("clusterwizard - UnDistro cluster creation")
	fmt.Println("=========================================")
	fmt.Println()
	fmt.Println("Answer the questions of each step, then choose Continue.")
	fmt.Println("Choices are loaded page by page; pick \"Load more...\" to see further entries.")
	if dryRun {
		fmt.Println("Dry run: nothing will be submitted to the management cluster.")
	}
	fmt.Println()
}

// printCreateSummary prints what was created and where it was written.
func printCreateSummary(w io.Writer, fields map[wizard.FieldKey]wizard.Value, pools []poolSummary, submitted bool, location string) {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f9fafb"))
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3b82f6"))
	nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))

	row := func(name, value string) {
		if value == "" {
			return
		}
		_, _ = fmt.Fprintf(w, "  %s  %s\n", nameStyle.Render(fmt.Sprintf("%-18s", name)), valueStyle.Render(value))
	}
	section := func(title string) {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, sectionStyle.Render("  "+title))
		_, _ = fmt.Fprintln(w, dimStyle.Render("  "+strings.Repeat("-", 35)))
	}

	name := fields[wizard.FieldClusterName].Text()
	title := "Cluster %s written"
	if submitted {
		title = "Cluster %s submitted"
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, titleStyle.Render("  "+fmt.Sprintf(title, name)))
	_, _ = fmt.Fprintln(w, dimStyle.Render("  "+strings.Repeat("=", 30)))

	section("Cluster")
	row("Namespace", fields[wizard.FieldNamespace].Text())
	row("Kubernetes", fields[wizard.FieldKubernetesVersion].Text())
	row("Provider", fields[wizard.FieldProvider].Text())
	row("Flavor", fields[wizard.FieldFlavor].Text())
	row("Region", fields[wizard.FieldRegion].Text())
	row("SSH key", fields[wizard.FieldSSHKey].Text())

	section("Nodes")
	row("Control plane", fmt.Sprintf("%s x %s",
		fields[wizard.FieldReplicas].Text(), fields[wizard.FieldMachineType].Text()))
	for _, pool := range pools {
		value := fmt.Sprintf("%d x %s", pool.Replicas, pool.MachineType)
		if pool.InfraNode {
			value += " (infra)"
		}
		row(pool.Name, value)
	}
	if len(pools) == 0 {
		_, _ = fmt.Fprintln(w, dimStyle.Render("  No worker pools"))
	}

	if location != "" {
		section("Documents")
		row("Written to", location)
	}
	_, _ = fmt.Fprintln(w)
}
