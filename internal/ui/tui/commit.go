package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// RunCommit shows m while commit runs, feeding it the messages reporter
// emits. It returns commit's error, or ErrInterrupted if the user quit first.
func RunCommit(ctx context.Context, reporter *Reporter, m Model, commit func(ctx context.Context) error, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)
	reporter.Attach(p.Send)
	defer reporter.Attach(nil)

	// Run commit in background goroutine
	go func() {
		if err := commit(ctx); err != nil {
			p.Send(ErrMsg{Err: err})
			return
		}
		p.Send(DoneMsg{})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	fm := finalModel.(Model)
	switch {
	case fm.Err != nil:
		return fm.Err
	case !fm.Done:
		return ErrInterrupted
	}
	return nil
}
