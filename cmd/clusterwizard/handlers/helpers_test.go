package handlers

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/undistro/clusterwizard/internal/config"
	wtesting "github.com/undistro/clusterwizard/internal/testing"
	"github.com/undistro/clusterwizard/internal/ui/form"
	"github.com/undistro/clusterwizard/internal/wizard"
)

// saveAndRestoreFactories saves all factory variables and restores them after the test.
func saveAndRestoreFactories(t *testing.T) {
	t.Helper()
	origLoadConfig := loadConfig
	origNewMetadataSource := newMetadataSource
	origNewCredentialSource := newCredentialSource
	origNewKubeClient := newKubeClient
	origNewSubmitter := newSubmitter
	origNewPrompter := newPrompter
	origNewObjectStore := newObjectStore
	origIsTerminal := isTerminal
	origRunCommit := runCommit
	origStdout := stdout
	origStderr := stderr

	t.Cleanup(func() {
		loadConfig = origLoadConfig
		newMetadataSource = origNewMetadataSource
		newCredentialSource = origNewCredentialSource
		newKubeClient = origNewKubeClient
		newSubmitter = origNewSubmitter
		newPrompter = origNewPrompter
		newObjectStore = origNewObjectStore
		isTerminal = origIsTerminal
		runCommit = origRunCommit
		stdout = origStdout
		stderr = origStderr
	})
}

// fakeEnv replaces every factory with in-memory fakes and returns the
// captured stdout and stderr.
func fakeEnv(t *testing.T, cfg *config.Config, prompter form.Prompter) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	saveAndRestoreFactories(t)

	fixture := wtesting.NewMetadataFixture().
		With(wizard.MetaVCPUs, "t3.large", "2").
		With(wizard.MetaMemory, "t3.large", "8")

	loadConfig = func(string) (*config.Config, error) { return cfg, nil }
	newMetadataSource = func(*config.Config, wizard.CredentialSource) (wizard.MetadataSource, error) { return fixture, nil }
	newKubeClient = func(string) (client.Client, error) {
		t.Error("unexpected connection to the management cluster")
		return nil, assert.AnError
	}
	newPrompter = func() form.Prompter { return prompter }
	isTerminal = func() bool { return false }

	var out, errOut bytes.Buffer
	stdout = &out
	stderr = &errOut
	return &out, &errOut
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Credentials.Source = config.CredentialsNone
	return cfg
}

// scriptedPrompter answers prompts from per-title queues.
type scriptedPrompter struct {
	t        *testing.T
	inputs   map[string][]string
	selects  map[string][]string
	confirms map[string][]bool
}

func newScriptedPrompter(t *testing.T) *scriptedPrompter {
	return &scriptedPrompter{
		t:        t,
		inputs:   make(map[string][]string),
		selects:  make(map[string][]string),
		confirms: make(map[string][]bool),
	}
}

func (s *scriptedPrompter) Input(_ context.Context, q form.Question) (string, error) {
	answers := s.inputs[q.Title]
	if len(answers) == 0 {
		s.t.Errorf("unexpected input prompt %q", q.Title)
		return "", form.ErrAborted
	}
	s.inputs[q.Title] = answers[1:]
	return answers[0], nil
}

func (s *scriptedPrompter) Select(_ context.Context, title, _ string, _ []form.Choice, _ string) (string, error) {
	answers := s.selects[title]
	if len(answers) == 0 {
		s.t.Errorf("unexpected select prompt %q", title)
		return "", form.ErrAborted
	}
	s.selects[title] = answers[1:]
	return answers[0], nil
}

func (s *scriptedPrompter) Confirm(_ context.Context, title, _ string, _ bool) (bool, error) {
	answers := s.confirms[title]
	if len(answers) == 0 {
		s.t.Errorf("unexpected confirm prompt %q", title)
		return false, form.ErrAborted
	}
	s.confirms[title] = answers[1:]
	return answers[0], nil
}

func (s *scriptedPrompter) Spin(ctx context.Context, _ string, action func(context.Context) error) error {
	return action(ctx)
}

func (s *scriptedPrompter) input(title string, answers ...string) *scriptedPrompter {
	s.inputs[title] = append(s.inputs[title], answers...)
	return s
}

func (s *scriptedPrompter) choose(title string, answers ...string) *scriptedPrompter {
	s.selects[title] = append(s.selects[title], answers...)
	return s
}

func (s *scriptedPrompter) confirm(title string, answers ...bool) *scriptedPrompter {
	s.confirms[title] = append(s.confirms[title], answers...)
	return s
}

// walkthrough answers every step of an aws cluster with one worker pool.
func walkthrough(t *testing.T) *scriptedPrompter {
	return newScriptedPrompter(t).
		input("Cluster name", "demo").
		input("Namespace", "default").
		choose("Region", "us-east-1").
		input("Access key ID", "").
		input("Secret access key", "").
		input("Session token", "").
		choose("Cluster", "next").
		choose("Flavor", "eks").
		choose("Kubernetes version", "v1.19.8").
		choose("SSH key", "undistro").
		choose("Infrastructure provider", "next").
		input("Control plane replicas", "3").
		choose("Machine type", "t3.large").
		choose("vCPUs", "2").
		choose("Memory", "8").
		choose("Worker pools", "add", "done").
		input("demo-mp-0: Replicas", "2").
		choose("demo-mp-0: Machine type", "t3.medium").
		choose("demo-mp-0: vCPUs", "\x00none").
		choose("demo-mp-0: Memory", "\x00none").
		confirm("demo-mp-0: Infra node", false).
		choose("Control plane & workers", "next")
}
