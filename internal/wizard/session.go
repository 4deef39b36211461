package wizard

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/undistro/clusterwizard/api/v1alpha1"
	"github.com/undistro/clusterwizard/internal/util/async"
)

// State is the lifecycle state of a Session.
type State int

// Session states. A session stays StateInProgress while the user moves
// between steps; StateSubmitted and StateClosed are terminal.
const (
	StateInProgress State = iota
	StateSubmitted
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "InProgress"
	case StateSubmitted:
		return "Submitted"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Submission task names.
const (
	taskCluster = "cluster"
	taskPolicy  = "policy"
)

// CommitResult reports what a commit produced and how each submission went.
type CommitResult struct {
	Cluster    *v1alpha1.Cluster
	Policy     *v1alpha1.DefaultPolicies
	ClusterErr error
	PolicyErr  error
}

// Session is the wizard state machine. It owns the field values, the worker
// pools and the option pagers for one run of the wizard. All methods are safe
// for concurrent use; only metadata fetches and submission block.
type Session struct {
	source   MetadataSource
	cluster  ClusterSubmitter
	policy   PolicySubmitter
	log      logr.Logger
	pageSize int
	specs    []FieldSpec
	newID    func() string

	mu      sync.Mutex
	steps   []Step
	index   int
	state   State
	fields  map[FieldKey]Value
	known   map[FieldKey]bool
	workers *WorkerPoolCollection
	deps    *DependentFieldGroup

	committing atomic.Bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSteps replaces the default steps. An empty list keeps the defaults.
func WithSteps(steps ...Step) SessionOption {
	return func(s *Session) {
		if len(steps) > 0 {
			s.steps = append([]Step(nil), steps...)
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(log logr.Logger) SessionOption {
	return func(s *Session) {
		s.log = log
	}
}

// WithPageSize sets the page size of every metadata query.
func WithPageSize(size int) SessionOption {
	return func(s *Session) {
		s.pageSize = size
	}
}

// WithFieldSpecs replaces the default option-field dependency graph.
func WithFieldSpecs(specs ...FieldSpec) SessionOption {
	return func(s *Session) {
		s.specs = append([]FieldSpec(nil), specs...)
	}
}

func withIDGenerator(newID func() string) SessionOption {
	return func(s *Session) {
		s.newID = newID
	}
}

// NewSession opens a session at its first step with no field values.
// A nil submitter skips submission of that document on commit.
func NewSession(source MetadataSource, cluster ClusterSubmitter, policy PolicySubmitter, opts ...SessionOption) *Session {
	s := &Session{
		source:   source,
		cluster:  cluster,
		policy:   policy,
		log:      logr.Discard(),
		pageSize: DefaultPageSize,
		specs:    DefaultFieldSpecs(),
		steps:    DefaultSteps(),
		fields:   make(map[FieldKey]Value),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.newID != nil {
		s.workers = newWorkerPoolCollection(s.newID)
	} else {
		s.workers = NewWorkerPoolCollection()
	}
	s.deps = NewDependentFieldGroup(source, s.specs, s.pageSize, s.log)

	s.known = make(map[FieldKey]bool)
	for _, key := range KnownFields() {
		s.known[key] = true
	}
	for _, key := range s.deps.Fields() {
		s.known[key] = true
	}
	for _, step := range s.steps {
		for _, key := range step.Required {
			s.known[key] = true
		}
	}
	return s
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Index returns the current step index.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Steps returns the step definitions.
func (s *Session) Steps() []Step {
	return append([]Step(nil), s.steps...)
}

// CurrentStep returns the step the session is at.
func (s *Session) CurrentStep() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps[s.index]
}

// IsLastStep reports whether the session is at its final step.
func (s *Session) IsLastStep() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index == len(s.steps)-1
}

// Field returns the value of key.
func (s *Session) Field(key FieldKey) (Value, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.fields[key]
	return v, ok
}

// Fields returns a copy of all field values.
func (s *Session) Fields() map[FieldKey]Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.fields)
}

// Missing returns the required fields of the current step not yet present.
func (s *Session) Missing() []FieldKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.steps[s.index].missing(s.fields)
}

// StepComplete reports whether the current step may be left forward.
func (s *Session) StepComplete() bool {
	return len(s.Missing()) == 0
}

func (s *Session) checkActiveLocked() error {
	if s.state != StateInProgress {
		return fmt.Errorf("%w: %s", ErrSessionTerminated, s.state)
	}
	return nil
}

// SetField sets key to value. The zero Value unsets the field. When key
// governs option fields, their selections are cleared and their pagers reset.
func (s *Session) SetField(key FieldKey, value Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActiveLocked(); err != nil {
		return err
	}
	if !s.known[key] {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	if want, ok := fieldKinds[key]; ok && value.Kind() != KindNone && value.Kind() != want {
		return fmt.Errorf("%w: %s must be %s, got %s", ErrInvalidValue, key, want, value.Kind())
	}

	if value.Kind() == KindNone {
		delete(s.fields, key)
	} else {
		s.fields[key] = value
	}

	dependents := s.deps.OnGovernorChange(key, value.Text())
	for _, dep := range dependents {
		delete(s.fields, dep)
	}
	if slices.Contains(dependents, FieldMachineType) {
		s.clearWorkerPoolSizingLocked()
	}
	return nil
}

// clearWorkerPoolSizingLocked drops the machine type, vcpu and memory
// selections of every worker pool. Their pagers are reset by the
// dependent field group.
func (s *Session) clearWorkerPoolSizingLocked() {
	cleared := WorkerPoolPatch{MachineType: &Option{}, VCPU: &Option{}, Memory: &Option{}}
	for _, e := range s.workers.Entries() {
		if _, err := s.workers.Update(e.ID, cleared); err != nil {
			s.log.V(1).Info("worker pool vanished while clearing sizing", "pool", e.ID)
		}
	}
}

// Next advances to the following step once the current one is complete.
// At the last step it commits instead and returns the commit result.
func (s *Session) Next(ctx context.Context) (*CommitResult, error) {
	s.mu.Lock()
	if err := s.checkActiveLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	step := s.steps[s.index]
	if missing := step.missing(s.fields); len(missing) > 0 {
		s.mu.Unlock()
		return nil, &StepIncompleteError{Step: step.Name, Missing: missing}
	}

	if s.index < len(s.steps)-1 {
		s.index++
		s.log.V(1).Info("advanced step", "step", s.steps[s.index].Name, "index", s.index)
		s.mu.Unlock()
		return nil, nil
	}
	s.mu.Unlock()

	return s.Commit(ctx)
}

// Back returns to the previous step. Field values are kept.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActiveLocked(); err != nil {
		return err
	}
	if s.index == 0 {
		return ErrNoPreviousStep
	}
	s.index--
	return nil
}

// Commit composes the documents from a snapshot of the session and submits
// both of them concurrently. It is only allowed at the last step with every
// step complete, and only one commit may run at a time.
//
// On success the session moves to StateSubmitted and its state is
// discarded. On a composition or submission error the session stays at the
// last step so the commit can be retried.
func (s *Session) Commit(ctx context.Context) (*CommitResult, error) {
	if !s.committing.CompareAndSwap(false, true) {
		return nil, ErrCommitInProgress
	}
	defer s.committing.Store(false)

	snap, err := s.commitSnapshot()
	if err != nil {
		return nil, err
	}

	docs, err := Compose(snap)
	if err != nil {
		recordCommitMetric(commitInvalid)
		return nil, err
	}

	var tasks []async.Task
	if s.cluster != nil {
		tasks = append(tasks, async.Task{Name: taskCluster, Func: func(ctx context.Context) error {
			return s.cluster.SubmitCluster(ctx, docs.Cluster)
		}})
	}
	if s.policy != nil {
		tasks = append(tasks, async.Task{Name: taskPolicy, Func: func(ctx context.Context) error {
			return s.policy.SubmitPolicy(ctx, docs.Policy)
		}})
	}
	outcomes := async.RunAll(ctx, tasks)

	result := &CommitResult{
		Cluster:    docs.Cluster,
		Policy:     docs.Policy,
		ClusterErr: outcomes[taskCluster],
		PolicyErr:  outcomes[taskPolicy],
	}
	if result.ClusterErr != nil || result.PolicyErr != nil {
		recordCommitMetric(commitFailed)
		s.log.Error(errors.Join(result.ClusterErr, result.PolicyErr), "submission failed",
			"cluster", docs.Cluster.Name, "namespace", docs.Cluster.Namespace)
		return result, &SubmissionError{ClusterErr: result.ClusterErr, PolicyErr: result.PolicyErr}
	}

	s.mu.Lock()
	if s.state == StateInProgress {
		s.state = StateSubmitted
		s.discardLocked()
	}
	s.mu.Unlock()

	recordCommitMetric(commitSuccess)
	s.log.Info("cluster submitted", "cluster", docs.Cluster.Name, "namespace", docs.Cluster.Namespace)
	return result, nil
}

// commitSnapshot checks commit preconditions and copies fields and worker
// pools under one lock.
func (s *Session) commitSnapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActiveLocked(); err != nil {
		return Snapshot{}, err
	}
	if s.index != len(s.steps)-1 {
		return Snapshot{}, ErrNotAtLastStep
	}
	for _, step := range s.steps {
		if missing := step.missing(s.fields); len(missing) > 0 {
			return Snapshot{}, &StepIncompleteError{Step: step.Name, Missing: missing}
		}
	}
	return Snapshot{
		Fields:  maps.Clone(s.fields),
		Workers: s.workers.Entries(),
	}, nil
}

// Close abandons the session from any state and discards its state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateInProgress {
		s.state = StateClosed
	}
	s.discardLocked()
}

func (s *Session) discardLocked() {
	s.fields = make(map[FieldKey]Value)
	for _, e := range s.workers.Entries() {
		s.deps.DropEntry(e.ID)
	}
	s.workers.clear()
}

// OnStepEnter loads the first page of every option field the current step
// declares and that has nothing loaded yet. Fetch errors are joined; fields
// that loaded keep their pages.
func (s *Session) OnStepEnter(ctx context.Context) error {
	s.mu.Lock()
	if err := s.checkActiveLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	loads := append([]FieldKey(nil), s.steps[s.index].Loads...)
	s.mu.Unlock()

	var errs []error
	for _, key := range loads {
		pager, err := s.deps.Pager(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		query, err := s.deps.Query(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if pager.Query() == query && pager.Started() {
			continue
		}
		if _, err := pager.LoadNext(ctx, query); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// LoadOptions fetches the next page of choices for an option field.
func (s *Session) LoadOptions(ctx context.Context, key FieldKey) (OptionPage, error) {
	s.mu.Lock()
	err := s.checkActiveLocked()
	s.mu.Unlock()
	if err != nil {
		return OptionPage{}, err
	}
	return s.deps.LoadNext(ctx, key)
}

// Pager returns the pager backing an option field.
func (s *Session) Pager(key FieldKey) (*OptionPager, error) {
	return s.deps.Pager(key)
}

// Options returns the choices loaded so far for an option field.
func (s *Session) Options(key FieldKey) ([]Option, error) {
	pager, err := s.deps.Pager(key)
	if err != nil {
		return nil, err
	}
	return pager.Options(), nil
}

// SeedCredentials pre-fills the credential fields and region from src.
// Fields that already hold a value are left alone. A failing source is
// logged and otherwise ignored.
func (s *Session) SeedCredentials(ctx context.Context, src CredentialSource) error {
	s.mu.Lock()
	err := s.checkActiveLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	creds, err := src.DefaultCredentials(ctx)
	if err != nil {
		s.log.Info("default credentials unavailable, leaving fields empty", "error", err.Error())
		return nil
	}
	if creds == nil {
		return nil
	}

	seed := []struct {
		key   FieldKey
		value Value
		set   bool
	}{
		{FieldAccessKeyID, StringValue(creds.AccessKeyID), creds.AccessKeyID != ""},
		{FieldSecretAccessKey, StringValue(creds.SecretAccessKey), creds.SecretAccessKey != ""},
		{FieldSessionToken, StringValue(creds.SessionToken), creds.SessionToken != ""},
		{FieldRegion, OptionValue(NewOption(creds.Region)), creds.Region != ""},
	}
	for _, f := range seed {
		if !f.set {
			continue
		}
		if v, ok := s.Field(f.key); ok && v.Present() {
			continue
		}
		if err := s.SetField(f.key, f.value); err != nil {
			return err
		}
	}
	return nil
}

// AddWorkerPool appends a worker pool seeded from the control plane's
// current machine type, vcpu and memory selections.
func (s *Session) AddWorkerPool(replicas int) (WorkerPoolEntry, error) {
	s.mu.Lock()
	defaults := WorkerPoolDefaults{
		MachineType: optionOf(s.fields[FieldMachineType]),
		VCPU:        optionOf(s.fields[FieldVCPU]),
		Memory:      optionOf(s.fields[FieldMemory]),
		Replicas:    replicas,
	}
	s.mu.Unlock()
	return s.AddWorkerPoolWith(defaults)
}

// AddWorkerPoolWith appends a worker pool seeded from defaults.
func (s *Session) AddWorkerPoolWith(defaults WorkerPoolDefaults) (WorkerPoolEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkActiveLocked(); err != nil {
		return WorkerPoolEntry{}, err
	}
	return s.workers.Add(defaults)
}

// UpdateWorkerPool applies patch to the pool with id. Changing the machine
// type clears the pool's vcpu and memory unless the patch sets them too.
func (s *Session) UpdateWorkerPool(id string, patch WorkerPoolPatch) (WorkerPoolEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkActiveLocked(); err != nil {
		return WorkerPoolEntry{}, err
	}

	machineTypeChanged := false
	if patch.MachineType != nil {
		current, ok := s.workers.Get(id)
		if !ok {
			return WorkerPoolEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if optionValue(current.MachineType) != patch.MachineType.Value {
			machineTypeChanged = true
			if patch.VCPU == nil {
				patch.VCPU = &Option{}
			}
			if patch.Memory == nil {
				patch.Memory = &Option{}
			}
		}
	}

	entry, err := s.workers.Update(id, patch)
	if err != nil {
		return WorkerPoolEntry{}, err
	}
	if machineTypeChanged {
		s.deps.resetEntry(id, FieldVCPU, FieldMemory)
	}
	return entry, nil
}

// RemoveWorkerPool removes the pool with id. Unknown ids are ignored.
func (s *Session) RemoveWorkerPool(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkActiveLocked(); err != nil {
		return err
	}
	s.workers.Remove(id)
	s.deps.DropEntry(id)
	return nil
}

// WorkerPools returns copies of the worker pools in display order.
func (s *Session) WorkerPools() []WorkerPoolEntry {
	return s.workers.Entries()
}

// WorkerPoolName returns the display name of the pool at position index.
func (s *Session) WorkerPoolName(index int) string {
	s.mu.Lock()
	cluster := s.fields[FieldClusterName].Text()
	s.mu.Unlock()
	return s.workers.DisplayName(cluster, index)
}

// LoadWorkerPoolOptions fetches the next page of machineType, vcpu or
// memory choices for the pool with id.
func (s *Session) LoadWorkerPoolOptions(ctx context.Context, id string, key FieldKey) (OptionPage, error) {
	s.mu.Lock()
	if err := s.checkActiveLocked(); err != nil {
		s.mu.Unlock()
		return OptionPage{}, err
	}
	entry, ok := s.workers.Get(id)
	s.mu.Unlock()
	if !ok {
		return OptionPage{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.deps.LoadEntry(ctx, entry, key)
}

// WorkerPoolPager returns the pager holding a pool's machineType, vcpu or
// memory choices.
func (s *Session) WorkerPoolPager(id string, key FieldKey) (*OptionPager, error) {
	if _, ok := s.workers.Get(id); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.deps.EntryPager(id, key)
}

// optionOf converts a field value into a worker pool selection.
func optionOf(v Value) *Option {
	if o, ok := v.Option(); ok && o.Value != "" {
		return &o
	}
	if text := v.Text(); text != "" && v.Kind() == KindString {
		o := NewOption(text)
		return &o
	}
	return nil
}
