package form

import (
	"context"
	"errors"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// ErrAborted is returned when the user cancels the wizard.
var ErrAborted = errors.New("wizard aborted")

// Choice is one entry of a select prompt.
type Choice struct {
	Label string
	Value string
}

// Question describes a free-text prompt. Value is the pre-filled answer.
type Question struct {
	Title       string
	Description string
	Placeholder string
	Value       string
	Secret      bool
	Validate    func(string) error
}

// Prompter asks the user one thing at a time.
type Prompter interface {
	Input(ctx context.Context, q Question) (string, error)
	Select(ctx context.Context, title, description string, choices []Choice, current string) (string, error)
	Confirm(ctx context.Context, title, description string, current bool) (bool, error)
	Spin(ctx context.Context, title string, action func(context.Context) error) error
}

// HuhPrompter asks through charmbracelet/huh forms.
type HuhPrompter struct {
	accessible bool
}

// NewHuhPrompter returns a terminal prompter. Accessible mode replaces the
// interactive widgets with plain line-based prompts.
func NewHuhPrompter(accessible bool) *HuhPrompter {
	return &HuhPrompter{accessible: accessible}
}

func (p *HuhPrompter) run(ctx context.Context, field huh.Field) error {
	err := huh.NewForm(huh.NewGroup(field)).
		WithAccessible(p.accessible).
		RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

// Input asks for a line of text.
func (p *HuhPrompter) Input(ctx context.Context, q Question) (string, error) {
	value := q.Value
	input := huh.NewInput().
		Title(q.Title).
		Description(q.Description).
		Placeholder(q.Placeholder).
		Value(&value)
	if q.Validate != nil {
		input = input.Validate(q.Validate)
	}
	if q.Secret {
		input = input.EchoMode(huh.EchoModePassword)
	}
	if err := p.run(ctx, input); err != nil {
		return "", err
	}
	return value, nil
}

// Select asks for one of choices. current is pre-selected when present.
func (p *HuhPrompter) Select(ctx context.Context, title, description string, choices []Choice, current string) (string, error) {
	options := make([]huh.Option[string], len(choices))
	for i, c := range choices {
		options[i] = huh.NewOption(c.Label, c.Value)
	}
	value := current
	err := p.run(ctx, huh.NewSelect[string]().
		Title(title).
		Description(description).
		Options(options...).
		Value(&value))
	if err != nil {
		return "", err
	}
	return value, nil
}

// Confirm asks a yes/no question.
func (p *HuhPrompter) Confirm(ctx context.Context, title, description string, current bool) (bool, error) {
	value := current
	err := p.run(ctx, huh.NewConfirm().
		Title(title).
		Description(description).
		Value(&value))
	if err != nil {
		return false, err
	}
	return value, nil
}

// Spin shows a spinner while action runs.
func (p *HuhPrompter) Spin(ctx context.Context, title string, action func(context.Context) error) error {
	var actionErr error
	err := spinner.New().
		Title(title).
		Context(ctx).
		Action(func() { actionErr = action(ctx) }).
		Run()
	if err != nil {
		return err
	}
	return actionErr
}
