package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrInterrupted is returned when the user quits before the commit finished.
var ErrInterrupted = errors.New("interrupted before the commit finished")

// Commit phase keys.
const (
	PhaseCluster = "cluster"
	PhasePolicy  = "policy"
	PhaseExport  = "export"
)

// Phase is one line of the progress view.
type Phase struct {
	Name   string
	Key    string
	Done   bool
	Active bool
	Err    error
}

// ClusterPhase submits the Cluster document.
func ClusterPhase() Phase {
	return Phase{Name: "Submit Cluster", Key: PhaseCluster}
}

// PolicyPhase submits the DefaultPolicies document.
func PolicyPhase() Phase {
	return Phase{Name: "Submit DefaultPolicies", Key: PhasePolicy}
}

// ExportPhase writes the documents to a file or bucket.
func ExportPhase(destination string) Phase {
	return Phase{Name: "Export to " + destination, Key: PhaseExport}
}

// Model is the Bubble Tea model of the commit progress view.
type Model struct {
	ClusterName string
	Namespace   string

	Phases []Phase

	StartTime    time.Time
	SpinnerFrame int

	Width int
	Err   error
	Done  bool
}

// NewCommitModel creates a model tracking phases.
func NewCommitModel(clusterName, namespace string, phases ...Phase) Model {
	return Model{
		ClusterName: clusterName,
		Namespace:   namespace,
		Phases:      append([]Phase(nil), phases...),
		StartTime:   time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width

	case PhaseMsg:
		m.updatePhase(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, tickCmd()

	case ErrMsg:
		m.Err = msg.Err
		return m, tea.Quit

	case DoneMsg:
		m.Done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m *Model) updatePhase(msg PhaseMsg) {
	for i := range m.Phases {
		phase := &m.Phases[i]
		if phase.Key != msg.Phase {
			continue
		}
		phase.Err = msg.Err
		phase.Done = msg.Done && msg.Err == nil
		phase.Active = !msg.Done && msg.Err == nil
		return
	}
}

// finished counts the phases that completed without error.
func (m Model) finished() int {
	n := 0
	for _, phase := range m.Phases {
		if phase.Done {
			n++
		}
	}
	return n
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	return renderView(m)
}
