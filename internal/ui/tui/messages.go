// Package tui provides a Bubble Tea-based terminal UI for committing a wizard session.
package tui

// PhaseMsg reports progress of one commit phase. Phases may run
// concurrently, so a message only ever touches its own phase.
type PhaseMsg struct {
	Phase string
	Done  bool
	Err   error
}

// TickMsg is sent periodically to refresh the display.
type TickMsg struct{}

// ErrMsg carries the error that ended the commit.
type ErrMsg struct{ Err error }

// DoneMsg signals that the commit finished.
type DoneMsg struct{}
