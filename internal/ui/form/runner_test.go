package form

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	wtesting "github.com/undistro/clusterwizard/internal/testing"
	"github.com/undistro/clusterwizard/internal/wizard"
)

// scriptedPrompter answers prompts from per-title queues. A select answer
// of the form "label:<text>" picks the choice with that label.
type scriptedPrompter struct {
	t        *testing.T
	inputs   map[string][]string
	selects  map[string][]string
	confirms map[string][]bool

	prefilled    map[string][]string
	offered      map[string][][]Choice
	descriptions map[string][]string
}

func newScriptedPrompter(t *testing.T) *scriptedPrompter {
	return &scriptedPrompter{
		t:            t,
		inputs:       make(map[string][]string),
		selects:      make(map[string][]string),
		confirms:     make(map[string][]bool),
		prefilled:    make(map[string][]string),
		offered:      make(map[string][][]Choice),
		descriptions: make(map[string][]string),
	}
}

func (s *scriptedPrompter) Input(_ context.Context, q Question) (string, error) {
	s.prefilled[q.Title] = append(s.prefilled[q.Title], q.Value)
	answers := s.inputs[q.Title]
	if len(answers) == 0 {
		s.t.Errorf("unexpected input prompt %q", q.Title)
		return "", ErrAborted
	}
	s.inputs[q.Title] = answers[1:]
	if q.Validate != nil {
		assert.NoError(s.t, q.Validate(answers[0]), q.Title)
	}
	return answers[0], nil
}

func (s *scriptedPrompter) Select(_ context.Context, title, description string, choices []Choice, current string) (string, error) {
	s.prefilled[title] = append(s.prefilled[title], current)
	s.offered[title] = append(s.offered[title], choices)
	s.descriptions[title] = append(s.descriptions[title], description)
	answers := s.selects[title]
	if len(answers) == 0 {
		s.t.Errorf("unexpected select prompt %q", title)
		return "", ErrAborted
	}
	s.selects[title] = answers[1:]

	answer := answers[0]
	if text, ok := strings.CutPrefix(answer, "label:"); ok {
		for _, c := range choices {
			if c.Label == text {
				return c.Value, nil
			}
		}
		s.t.Errorf("select %q has no choice labelled %q", title, text)
		return "", ErrAborted
	}
	values := make([]string, len(choices))
	for i, c := range choices {
		values[i] = c.Value
	}
	assert.Contains(s.t, values, answer, title)
	return answer, nil
}

func (s *scriptedPrompter) Confirm(_ context.Context, title, _ string, _ bool) (bool, error) {
	answers := s.confirms[title]
	if len(answers) == 0 {
		s.t.Errorf("unexpected confirm prompt %q", title)
		return false, ErrAborted
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

func (s *scriptedPrompter) assertConsumed() {
	for title, answers := range s.inputs {
		assert.Empty(s.t, answers, "unused input answers for %q", title)
	}
	for title, answers := range s.selects {
		assert.Empty(s.t, answers, "unused select answers for %q", title)
	}
	for title, answers := range s.confirms {
		assert.Empty(s.t, answers, "unused confirm answers for %q", title)
	}
}

func choiceValues(choices []Choice) []string {
	values := make([]string, len(choices))
	for i, c := range choices {
		values[i] = c.Value
	}
	return values
}

func newFixture() *wtesting.MetadataFixture {
	return wtesting.NewMetadataFixture().
		With(wizard.MetaVCPUs, "t3.large", "2").
		With(wizard.MetaMemory, "t3.large", "8")
}

func sessionBuilder(provider string) *wtesting.SessionBuilder {
	return wtesting.NewSessionBuilder().
		WithProvider(provider).
		WithOptions(wizard.WithPageSize(2))
}

func newSession(t *testing.T, fixture *wtesting.MetadataFixture, provider string) *wizard.Session {
	t.Helper()
	return sessionBuilder(provider).Build(fixture, nil, nil)
}

func TestRunner_CompleteWalkthrough(t *testing.T) {
	ctx := wtesting.TestContext(t)
	session := newSession(t, newFixture(), "aws")

	p := newScriptedPrompter(t).
		input("Cluster name", "demo").
		input("Namespace", "default").
		choose("Region", choiceLoadMore, "us-east-1").
		input("Access key ID", "AKIAEXAMPLE").
		input("Secret access key", "secret").
		input("Session token", "").
		choose("Cluster", navNext).
		choose("Flavor", "eks").
		choose("Kubernetes version", "v1.19.8").
		choose("SSH key", "undistro").
		choose("Infrastructure provider", navNext).
		input("Control plane replicas", "3").
		choose("Machine type", "t3.large").
		choose("vCPUs", "2").
		choose("Memory", "8").
		choose("Worker pools", poolAdd, poolDone).
		input("demo-mp-0: Replicas", "2").
		choose("demo-mp-0: Machine type", "t3.medium").
		choose("demo-mp-0: vCPUs", choiceNone).
		choose("demo-mp-0: Memory", choiceNone).
		confirm("demo-mp-0: Infra node", true).
		choose("Control plane & workers", navNext)

	require.NoError(t, NewRunner(session, p).Run(ctx))
	p.assertConsumed()

	regions := p.offered["Region"]
	require.Len(t, regions, 2)
	assert.Equal(t, []string{"us-east-1", "us-east-2", choiceLoadMore}, choiceValues(regions[0]))
	assert.Equal(t, []string{"us-east-1", "us-east-2", "us-west-2", "eu-west-1", choiceLoadMore}, choiceValues(regions[1]))

	assert.Equal(t, []string{"2", choiceNone}, choiceValues(p.offered["vCPUs"][0]))
	assert.Equal(t, []string{choiceNone}, choiceValues(p.offered["demo-mp-0: vCPUs"][0]))

	assert.Equal(t, wizard.StateInProgress, session.State())
	assert.True(t, session.IsLastStep())
	token, ok := session.Field(wizard.FieldSessionToken)
	assert.False(t, ok, "empty optional answer leaves the field unset: %v", token)

	result, err := session.Commit(ctx)
	require.NoError(t, err)

	cluster := result.Cluster
	assert.Equal(t, "demo", cluster.Name)
	assert.Equal(t, "default", cluster.Namespace)
	assert.Equal(t, "v1.19.8", cluster.Spec.KubernetesVersion)
	assert.Equal(t, "aws", cluster.Spec.InfrastructureProvider.Name)
	assert.Equal(t, "eks", cluster.Spec.InfrastructureProvider.Flavor)
	assert.Equal(t, "us-east-1", cluster.Spec.InfrastructureProvider.Region)
	assert.Equal(t, "undistro", cluster.Spec.InfrastructureProvider.SSHKey)

	require.NotNil(t, cluster.Spec.ControlPlane)
	require.NotNil(t, cluster.Spec.ControlPlane.Replicas)
	assert.Equal(t, int32(3), *cluster.Spec.ControlPlane.Replicas)
	assert.Equal(t, "t3.large", cluster.Spec.ControlPlane.MachineType)
	assert.Equal(t, "2", cluster.Spec.ControlPlane.VCPUs)
	assert.Equal(t, "8", cluster.Spec.ControlPlane.Memory)

	require.Len(t, cluster.Spec.Workers, 1)
	worker := cluster.Spec.Workers[0]
	require.NotNil(t, worker.Replicas)
	assert.Equal(t, int32(2), *worker.Replicas)
	assert.Equal(t, "t3.medium", worker.MachineType)
	assert.Empty(t, worker.VCPUs)
	assert.Empty(t, worker.Memory)
	assert.True(t, worker.InfraNode)

	assert.Equal(t, "demo", result.Policy.Spec.ClusterName)
}

func TestRunner_Cancel(t *testing.T) {
	ctx := wtesting.TestContext(t)
	session := newSession(t, newFixture(), "hcloud")

	p := newScriptedPrompter(t).
		input("Cluster name", "demo").
		input("Namespace", "default").
		choose("Region", "us-east-1").
		choose("Cluster", navCancel)

	err := NewRunner(session, p).Run(ctx)
	require.ErrorIs(t, err, ErrAborted)
	p.assertConsumed()
	assert.Equal(t, wizard.StateClosed, session.State())
}

func TestRunner_SkipsCredentialsForOtherProviders(t *testing.T) {
	ctx := wtesting.TestContext(t)
	session := newSession(t, newFixture(), "hcloud")

	p := newScriptedPrompter(t).
		input("Cluster name", "demo").
		input("Namespace", "default").
		choose("Region", "us-east-1").
		choose("Cluster", navCancel)

	require.ErrorIs(t, NewRunner(session, p).Run(ctx), ErrAborted)
	assert.NotContains(t, p.prefilled, "Access key ID")
	assert.NotContains(t, p.prefilled, "Provider")
}

func TestRunner_SeedsCredentialsOnceProviderIsChosen(t *testing.T) {
	ctx := wtesting.TestContext(t)
	session := wtesting.NewSessionBuilder().
		WithOptions(wizard.WithPageSize(2)).
		Build(newFixture(), nil, nil)

	creds := &wtesting.MockCredentialSource{}
	creds.On("DefaultCredentials", mock.Anything).Return(&wizard.Credentials{
		AccessKeyID:     "AKIASEEDED",
		SecretAccessKey: "seeded",
		Region:          "us-east-2",
	}, nil).Once()

	p := newScriptedPrompter(t).
		input("Cluster name", "demo").
		input("Namespace", "default").
		input("Provider", "aws").
		choose("Region", "us-east-2").
		input("Access key ID", "AKIASEEDED").
		input("Secret access key", "seeded").
		input("Session token", "").
		choose("Cluster", navCancel)

	err := NewRunner(session, p, WithCredentialSource(creds)).Run(ctx)
	require.ErrorIs(t, err, ErrAborted)
	p.assertConsumed()
	creds.AssertExpectations(t)

	assert.Equal(t, []string{"us-east-2"}, p.prefilled["Region"])
	assert.Equal(t, []string{"AKIASEEDED"}, p.prefilled["Access key ID"])
}

func TestRunner_SeedsNothingForOtherProviders(t *testing.T) {
	ctx := wtesting.TestContext(t)
	session := wtesting.NewSessionBuilder().
		WithOptions(wizard.WithPageSize(2)).
		Build(newFixture(), nil, nil)
	creds := &wtesting.MockCredentialSource{}

	p := newScriptedPrompter(t).
		input("Cluster name", "demo").
		input("Namespace", "default").
		input("Provider", "hcloud").
		choose("Region", "us-east-1").
		choose("Cluster", navCancel)

	err := NewRunner(session, p, WithCredentialSource(creds)).Run(ctx)
	require.ErrorIs(t, err, ErrAborted)
	p.assertConsumed()
	creds.AssertNotCalled(t, "DefaultCredentials", mock.Anything)
	assert.Equal(t, []string{""}, p.prefilled["Region"])
}

func TestRunner_IncompleteStepIsAskedAgain(t *testing.T) {
	ctx := wtesting.TestContext(t)
	fixture := newFixture().With(wizard.MetaRegions, "")
	session := newSession(t, fixture, "hcloud")

	p := newScriptedPrompter(t).
		input("Cluster name", "demo", "demo").
		input("Namespace", "default", "default").
		choose("Cluster", navNext, navCancel)

	require.ErrorIs(t, NewRunner(session, p).Run(ctx), ErrAborted)
	p.assertConsumed()

	require.Len(t, p.descriptions["Cluster"], 2)
	for _, description := range p.descriptions["Cluster"] {
		assert.Contains(t, description, string(wizard.FieldRegion))
	}
	assert.Equal(t, []string{"", "demo"}, p.prefilled["Cluster name"])
}

func TestRunner_BackKeepsAnswers(t *testing.T) {
	ctx := wtesting.TestContext(t)
	session := newSession(t, newFixture(), "hcloud")

	p := newScriptedPrompter(t).
		input("Cluster name", "demo", "demo").
		input("Namespace", "default", "default").
		choose("Region", "us-east-1", "us-east-1").
		choose("Cluster", navNext, navCancel).
		choose("Flavor", "ec2").
		choose("Kubernetes version", "v1.19.12").
		choose("SSH key", choiceNone).
		choose("Infrastructure provider", navBack)

	require.ErrorIs(t, NewRunner(session, p).Run(ctx), ErrAborted)
	p.assertConsumed()

	assert.Equal(t, []string{"", "demo"}, p.prefilled["Cluster name"])
	assert.Equal(t, []string{"", "us-east-1"}, p.prefilled["Region"])
	assert.Len(t, p.offered["Region"], 2)

	nav := p.offered["Infrastructure provider"][0]
	assert.Equal(t, []string{navNext, navBack, navCancel}, choiceValues(nav))
	assert.Equal(t, []string{navNext, navCancel}, choiceValues(p.offered["Cluster"][0]))
}

func TestRunner_WorkerPoolsAddAndRemove(t *testing.T) {
	ctx := wtesting.TestContext(t)
	session := sessionBuilder("aws").
		WithField(wizard.FieldClusterName, wizard.StringValue("demo")).
		WithRegion("us-east-1").
		WithControlPlane("m5.large", 3).
		Build(newFixture(), nil, nil)

	p := newScriptedPrompter(t).
		choose("Worker pools", poolAdd, poolAdd, "label:Remove demo-mp-0", poolDone).
		input("demo-mp-0: Replicas", "1").
		choose("demo-mp-0: Machine type", "t3.large").
		choose("demo-mp-0: vCPUs", "2").
		choose("demo-mp-0: Memory", "8").
		confirm("demo-mp-0: Infra node", false).
		input("demo-mp-1: Replicas", "5").
		choose("demo-mp-1: Machine type", "t3.medium").
		choose("demo-mp-1: vCPUs", choiceNone).
		choose("demo-mp-1: Memory", choiceNone).
		confirm("demo-mp-1: Infra node", true)

	runner := NewRunner(session, p)
	require.NoError(t, runner.askWorkerPools(ctx))
	p.assertConsumed()

	// New pools start from the control plane machine type.
	assert.Equal(t, []string{"m5.large"}, p.prefilled["demo-mp-0: Machine type"])
	assert.Equal(t, []string{"1"}, p.prefilled["demo-mp-0: Replicas"])

	assert.Equal(t,
		[]string{"0 configured", "1 configured", "2 configured", "1 configured"},
		p.descriptions["Worker pools"])

	pools := session.WorkerPools()
	require.Len(t, pools, 1)
	assert.Equal(t, 5, pools[0].Replicas)
	require.NotNil(t, pools[0].MachineType)
	assert.Equal(t, "t3.medium", pools[0].MachineType.Value)
	assert.True(t, pools[0].InfraNode)
	assert.Equal(t, "demo-mp-0", session.WorkerPoolName(0))
}

func TestRunner_EditPoolReloadsSizesAfterMachineTypeChange(t *testing.T) {
	ctx := wtesting.TestContext(t)
	session := sessionBuilder("aws").
		WithField(wizard.FieldClusterName, wizard.StringValue("demo")).
		WithRegion("us-east-1").
		Build(newFixture(), nil, nil)

	entry, err := session.AddWorkerPool(2)
	require.NoError(t, err)

	p := newScriptedPrompter(t).
		input("demo-mp-0: Replicas", "2", "2").
		choose("demo-mp-0: Machine type", "t3.large", "t3.medium").
		choose("demo-mp-0: vCPUs", "2", choiceNone).
		choose("demo-mp-0: Memory", "8", choiceNone).
		confirm("demo-mp-0: Infra node", false, false)

	runner := NewRunner(session, p)
	require.NoError(t, runner.editPool(ctx, entry.ID))
	require.NoError(t, runner.editPool(ctx, entry.ID))
	p.assertConsumed()

	vcpus := p.offered["demo-mp-0: vCPUs"]
	require.Len(t, vcpus, 2)
	assert.Equal(t, []string{"2", choiceNone}, choiceValues(vcpus[0]))
	assert.Equal(t, []string{choiceNone}, choiceValues(vcpus[1]))

	pools := session.WorkerPools()
	require.Len(t, pools, 1)
	assert.Equal(t, "t3.medium", pools[0].MachineType.Value)
	assert.Nil(t, pools[0].VCPU)
	assert.Nil(t, pools[0].Memory)
	assert.Equal(t, strconv.Itoa(2), p.prefilled["demo-mp-0: Replicas"][1])
}

func TestRunner_EditUnknownPool(t *testing.T) {
	session := newSession(t, newFixture(), "aws")
	err := NewRunner(session, newScriptedPrompter(t)).editPool(context.Background(), "missing")
	assert.ErrorIs(t, err, wizard.ErrNotFound)
}
