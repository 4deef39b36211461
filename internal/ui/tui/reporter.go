package tui

import (
	"context"
	"fmt"
	"io"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/undistro/clusterwizard/api/v1alpha1"
	"github.com/undistro/clusterwizard/internal/wizard"
)

// Reporter turns commit work into PhaseMsgs. It is created before the
// session so its submitters can be handed to wizard.NewSession; messages
// are dropped until a destination is attached.
type Reporter struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

// NewReporter returns a reporter with no destination.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Attach routes every further message to send. A nil send drops them.
func (r *Reporter) Attach(send func(tea.Msg)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.send = send
}

func (r *Reporter) emit(msg tea.Msg) {
	r.mu.RLock()
	send := r.send
	r.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

// Track reports phase as active, runs fn and reports its outcome.
func (r *Reporter) Track(phase string, fn func() error) error {
	r.emit(PhaseMsg{Phase: phase})
	err := fn()
	r.emit(PhaseMsg{Phase: phase, Done: true, Err: err})
	return err
}

// Cluster wraps next so its submissions are reported as PhaseCluster.
// A nil next stays nil so the session skips the submission.
func (r *Reporter) Cluster(next wizard.ClusterSubmitter) wizard.ClusterSubmitter {
	if next == nil {
		return nil
	}
	return &clusterReporter{reporter: r, next: next}
}

// Policy wraps next so its submissions are reported as PhasePolicy.
func (r *Reporter) Policy(next wizard.PolicySubmitter) wizard.PolicySubmitter {
	if next == nil {
		return nil
	}
	return &policyReporter{reporter: r, next: next}
}

type clusterReporter struct {
	reporter *Reporter
	next     wizard.ClusterSubmitter
}

func (c *clusterReporter) SubmitCluster(ctx context.Context, cluster *v1alpha1.Cluster) error {
	return c.reporter.Track(PhaseCluster, func() error {
		return c.next.SubmitCluster(ctx, cluster)
	})
}

type policyReporter struct {
	reporter *Reporter
	next     wizard.PolicySubmitter
}

func (p *policyReporter) SubmitPolicy(ctx context.Context, policy *v1alpha1.DefaultPolicies) error {
	return p.reporter.Track(PhasePolicy, func() error {
		return p.next.SubmitPolicy(ctx, policy)
	})
}

// PlainProgress writes one line per finished phase to w. It is the
// destination used when stdout is not a terminal.
func PlainProgress(w io.Writer, phases ...Phase) func(tea.Msg) {
	names := make(map[string]string, len(phases))
	for _, phase := range phases {
		names[phase.Key] = phase.Name
	}

	var mu sync.Mutex
	return func(msg tea.Msg) {
		pm, ok := msg.(PhaseMsg)
		if !ok || !pm.Done {
			return
		}
		name := names[pm.Phase]
		if name == "" {
			name = pm.Phase
		}

		mu.Lock()
		defer mu.Unlock()
		if pm.Err != nil {
			_, _ = fmt.Fprintf(w, "%s %s: %v\n", crossMark, name, pm.Err)
			return
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", checkMark, name)
	}
}
