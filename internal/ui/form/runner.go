package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/undistro/clusterwizard/internal/wizard"
)

const providerAWS = "aws"

// Sentinel choice values. They cannot collide with metadata values.
const (
	choiceLoadMore = "\x00more"
	choiceNone     = "\x00none"
)

// Navigation and worker pool menu values.
const (
	navNext   = "next"
	navBack   = "back"
	navCancel = "cancel"

	poolAdd    = "add"
	poolDone   = "done"
	poolEdit   = "edit:"
	poolRemove = "remove:"
)

var errNoChoices = errors.New("no choices available")

// prompt is the wording of one field.
type prompt struct {
	Title       string
	Description string
	Placeholder string
	Secret      bool
	Optional    bool
	Validate    func(string) error
}

var prompts = map[wizard.FieldKey]prompt{
	wizard.FieldClusterName: {
		Title:       "Cluster name",
		Description: "Lowercase letters, digits and hyphens",
		Placeholder: "my-cluster",
		Validate:    validateName,
	},
	wizard.FieldNamespace: {
		Title:       "Namespace",
		Description: "Namespace the Cluster is created in",
		Placeholder: "default",
		Validate:    validateName,
	},
	wizard.FieldProvider: {
		Title:       "Provider",
		Description: "Infrastructure provider",
		Placeholder: providerAWS,
		Validate:    validateRequired,
	},
	wizard.FieldRegion: {
		Title:       "Region",
		Description: "Region the cluster runs in",
	},
	wizard.FieldAccessKeyID: {
		Title:       "Access key ID",
		Description: "Leave empty to keep the credentials found on this machine",
		Optional:    true,
	},
	wizard.FieldSecretAccessKey: {
		Title:    "Secret access key",
		Secret:   true,
		Optional: true,
	},
	wizard.FieldSessionToken: {
		Title:       "Session token",
		Description: "Only needed for temporary credentials",
		Secret:      true,
		Optional:    true,
	},
	wizard.FieldFlavor: {
		Title:       "Flavor",
		Description: "Kubernetes distribution",
	},
	wizard.FieldKubernetesVersion: {
		Title: "Kubernetes version",
	},
	wizard.FieldSSHKey: {
		Title:       "SSH key",
		Description: "Key pair installed on every node",
		Optional:    true,
	},
	wizard.FieldReplicas: {
		Title:       "Control plane replicas",
		Description: "Use an odd number for etcd quorum",
		Placeholder: "3",
		Validate:    validateReplicas,
	},
	wizard.FieldMachineType: {
		Title: "Machine type",
	},
	wizard.FieldVCPU: {
		Title:    "vCPUs",
		Optional: true,
	},
	wizard.FieldMemory: {
		Title:    "Memory",
		Optional: true,
	},
	wizard.FieldInfraNode: {
		Title:       "Infra node",
		Description: "Reserve this pool for infrastructure workloads",
	},
}

var poolReplicasPrompt = prompt{
	Title:    "Replicas",
	Validate: validateReplicas,
}

func promptFor(key wizard.FieldKey) prompt {
	if p, ok := prompts[key]; ok {
		return p
	}
	return prompt{Title: string(key)}
}

// fieldsOf returns the fields asked on step, in order.
func fieldsOf(step wizard.Step) []wizard.FieldKey {
	switch step.Name {
	case wizard.StepCluster:
		return []wizard.FieldKey{
			wizard.FieldClusterName,
			wizard.FieldNamespace,
			wizard.FieldProvider,
			wizard.FieldRegion,
			wizard.FieldAccessKeyID,
			wizard.FieldSecretAccessKey,
			wizard.FieldSessionToken,
		}
	case wizard.StepInfrastructure:
		return []wizard.FieldKey{
			wizard.FieldFlavor,
			wizard.FieldKubernetesVersion,
			wizard.FieldSSHKey,
		}
	case wizard.StepControlPlane:
		return []wizard.FieldKey{
			wizard.FieldReplicas,
			wizard.FieldMachineType,
			wizard.FieldVCPU,
			wizard.FieldMemory,
		}
	}

	var keys []wizard.FieldKey
	seen := make(map[wizard.FieldKey]bool)
	for _, key := range append(append([]wizard.FieldKey(nil), step.Required...), step.Loads...) {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// Runner walks a session through its steps using a Prompter.
type Runner struct {
	session  *wizard.Session
	prompter Prompter

	credentials wizard.CredentialSource
	seededFor   string
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithCredentialSource pre-fills the AWS credential fields and region from
// src. Seeding waits until the provider is known, since choosing a provider
// clears the region, and runs again whenever the provider changes.
func WithCredentialSource(src wizard.CredentialSource) RunnerOption {
	return func(r *Runner) {
		r.credentials = src
	}
}

// NewRunner returns a runner for session.
func NewRunner(session *wizard.Session, prompter Prompter, opts ...RunnerOption) *Runner {
	r := &Runner{session: session, prompter: prompter}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run asks every field of every step, moving forward and back as the user
// chooses. It returns nil once the user submits from a complete last step;
// committing is left to the caller. Cancelling closes the session and
// returns ErrAborted.
func (r *Runner) Run(ctx context.Context) error {
	logger := log.FromContext(ctx)

	for {
		step := r.session.CurrentStep()

		err := r.prompter.Spin(ctx, "Loading "+strings.ToLower(step.Label)+" choices", r.session.OnStepEnter)
		if err != nil {
			if interrupted(ctx, err) {
				return err
			}
			logger.Info("some choices could not be loaded", "step", step.Name, "error", err.Error())
		}

		if err := r.askStep(ctx, step); err != nil {
			return err
		}

		nav, err := r.navigate(ctx, step)
		if err != nil {
			return err
		}

		switch nav {
		case navCancel:
			r.session.Close()
			return ErrAborted
		case navBack:
			if err := r.session.Back(); err != nil {
				return err
			}
		default:
			if r.session.IsLastStep() {
				if r.session.StepComplete() {
					return nil
				}
				continue
			}
			if _, err := r.session.Next(ctx); err != nil {
				var incomplete *wizard.StepIncompleteError
				if !errors.As(err, &incomplete) {
					return err
				}
				logger.Info("step incomplete", "step", incomplete.Step, "missing", incomplete.Missing)
			}
		}
	}
}

// interrupted reports whether err ends the run instead of just failing a fetch.
func interrupted(ctx context.Context, err error) bool {
	return errors.Is(err, ErrAborted) || ctx.Err() != nil
}

func (r *Runner) askStep(ctx context.Context, step wizard.Step) error {
	for _, key := range fieldsOf(step) {
		if err := r.askField(ctx, key); err != nil {
			return err
		}
	}
	if step.Name == wizard.StepControlPlane {
		return r.askWorkerPools(ctx)
	}
	return nil
}

func (r *Runner) navigate(ctx context.Context, step wizard.Step) (string, error) {
	next := Choice{Label: "Continue", Value: navNext}
	if r.session.IsLastStep() {
		next.Label = "Submit"
	}
	choices := []Choice{next}
	if r.session.Index() > 0 {
		choices = append(choices, Choice{Label: "Back", Value: navBack})
	}
	choices = append(choices, Choice{Label: "Cancel", Value: navCancel})

	var description string
	if missing := r.session.Missing(); len(missing) > 0 {
		keys := make([]string, len(missing))
		for i, key := range missing {
			keys[i] = string(key)
		}
		description = "Missing: " + strings.Join(keys, ", ")
	}
	return r.prompter.Select(ctx, step.Label, description, choices, navNext)
}

func (r *Runner) askField(ctx context.Context, key wizard.FieldKey) error {
	current, _ := r.session.Field(key)

	switch key {
	case wizard.FieldProvider:
		if !current.Present() {
			if err := r.askText(ctx, key, promptFor(key), current); err != nil {
				return err
			}
		}
		return r.seedCredentials(ctx)
	case wizard.FieldAccessKeyID, wizard.FieldSecretAccessKey, wizard.FieldSessionToken:
		if provider, _ := r.session.Field(wizard.FieldProvider); provider.Text() != providerAWS {
			return nil
		}
	}

	p := promptFor(key)
	if pager, err := r.session.Pager(key); err == nil {
		return r.askOption(ctx, key, p, pager, current)
	}
	if key == wizard.FieldReplicas {
		n, err := r.askReplicas(ctx, p, current.Text())
		if err != nil {
			return err
		}
		return r.session.SetField(key, wizard.IntValue(n))
	}
	return r.askText(ctx, key, p, current)
}

// seedCredentials seeds the session once per chosen provider. Only aws
// takes the seeded keys and region.
func (r *Runner) seedCredentials(ctx context.Context) error {
	if r.credentials == nil {
		return nil
	}
	provider, _ := r.session.Field(wizard.FieldProvider)
	if !provider.Present() || provider.Text() == r.seededFor {
		return nil
	}
	r.seededFor = provider.Text()
	if provider.Text() != providerAWS {
		return nil
	}
	return r.session.SeedCredentials(ctx, r.credentials)
}

func question(p prompt, value string) Question {
	return Question{
		Title:       p.Title,
		Description: p.Description,
		Placeholder: p.Placeholder,
		Value:       value,
		Secret:      p.Secret,
		Validate:    p.Validate,
	}
}

func (r *Runner) askText(ctx context.Context, key wizard.FieldKey, p prompt, current wizard.Value) error {
	answer, err := r.prompter.Input(ctx, question(p, current.Text()))
	if err != nil {
		return err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return r.session.SetField(key, wizard.Value{})
	}
	return r.session.SetField(key, wizard.StringValue(answer))
}

func (r *Runner) askReplicas(ctx context.Context, p prompt, current string) (int, error) {
	answer, err := r.prompter.Input(ctx, question(p, current))
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: %w", p.Title, errInvalidReplicas)
	}
	return n, nil
}

func (r *Runner) askOption(ctx context.Context, key wizard.FieldKey, p prompt, pager *wizard.OptionPager, current wizard.Value) error {
	load := func(ctx context.Context) error {
		_, err := r.session.LoadOptions(ctx, key)
		return err
	}
	opt, err := r.choose(ctx, p, pager, load, current.Text())
	if errors.Is(err, errNoChoices) {
		log.FromContext(ctx).Info("no choices available", "field", key)
		return nil
	}
	if err != nil {
		return err
	}
	if opt.Value == "" {
		return r.session.SetField(key, wizard.Value{})
	}
	return r.session.SetField(key, wizard.OptionValue(opt))
}

// choose asks for one option of pager. The first page is fetched when
// nothing is loaded yet; picking "Load more" fetches the next one and asks
// again. An optional field may be unset, which returns the zero Option.
func (r *Runner) choose(ctx context.Context, p prompt, pager *wizard.OptionPager, load func(context.Context) error, current string) (wizard.Option, error) {
	fetch := !pager.Started()
	for {
		if fetch && pager.HasMore() {
			err := r.prompter.Spin(ctx, "Loading "+strings.ToLower(p.Title), load)
			if err != nil {
				if interrupted(ctx, err) {
					return wizard.Option{}, err
				}
				log.FromContext(ctx).Info("could not load choices", "field", p.Title, "error", err.Error())
			}
		}
		fetch = false

		options := pager.Options()
		byValue := make(map[string]wizard.Option, len(options))
		var choices []Choice
		for _, o := range options {
			if _, seen := byValue[o.Value]; seen {
				continue
			}
			byValue[o.Value] = o
			choices = append(choices, Choice{Label: label(o), Value: o.Value})
		}
		if pager.HasMore() {
			choices = append(choices, Choice{Label: "Load more…", Value: choiceLoadMore})
		}
		if p.Optional {
			choices = append(choices, Choice{Label: "(none)", Value: choiceNone})
		}
		if len(choices) == 0 {
			return wizard.Option{}, errNoChoices
		}

		answer, err := r.prompter.Select(ctx, p.Title, p.Description, choices, current)
		if err != nil {
			return wizard.Option{}, err
		}
		switch answer {
		case choiceLoadMore:
			fetch = true
		case choiceNone:
			return wizard.Option{}, nil
		default:
			if o, ok := byValue[answer]; ok {
				return o, nil
			}
			return wizard.NewOption(answer), nil
		}
	}
}

func label(o wizard.Option) string {
	if o.Label != "" {
		return o.Label
	}
	return o.Value
}

func (r *Runner) askWorkerPools(ctx context.Context) error {
	for {
		pools := r.session.WorkerPools()
		choices := []Choice{{Label: "Add a worker pool", Value: poolAdd}}
		for i, pool := range pools {
			name := r.session.WorkerPoolName(i)
			choices = append(choices,
				Choice{Label: "Edit " + describePool(name, pool), Value: poolEdit + pool.ID},
				Choice{Label: "Remove " + name, Value: poolRemove + pool.ID},
			)
		}
		choices = append(choices, Choice{Label: "Done", Value: poolDone})

		answer, err := r.prompter.Select(ctx, "Worker pools", fmt.Sprintf("%d configured", len(pools)), choices, poolDone)
		if err != nil {
			return err
		}

		switch {
		case answer == poolDone:
			return nil
		case answer == poolAdd:
			entry, err := r.session.AddWorkerPool(1)
			if err != nil {
				return err
			}
			if err := r.editPool(ctx, entry.ID); err != nil {
				return err
			}
		case strings.HasPrefix(answer, poolEdit):
			if err := r.editPool(ctx, strings.TrimPrefix(answer, poolEdit)); err != nil {
				return err
			}
		case strings.HasPrefix(answer, poolRemove):
			if err := r.session.RemoveWorkerPool(strings.TrimPrefix(answer, poolRemove)); err != nil {
				return err
			}
		}
	}
}

func describePool(name string, pool wizard.WorkerPoolEntry) string {
	machineType := "no machine type"
	if pool.MachineType != nil && pool.MachineType.Value != "" {
		machineType = pool.MachineType.Value
	}
	return fmt.Sprintf("%s (%d x %s)", name, pool.Replicas, machineType)
}

// pool returns the position and a copy of the pool with id.
func (r *Runner) pool(id string) (int, wizard.WorkerPoolEntry, bool) {
	for i, entry := range r.session.WorkerPools() {
		if entry.ID == id {
			return i, entry, true
		}
	}
	return 0, wizard.WorkerPoolEntry{}, false
}

func (r *Runner) editPool(ctx context.Context, id string) error {
	index, entry, ok := r.pool(id)
	if !ok {
		return fmt.Errorf("%w: %s", wizard.ErrNotFound, id)
	}
	name := r.session.WorkerPoolName(index)
	titled := func(p prompt) prompt {
		p.Title = name + ": " + p.Title
		return p
	}

	replicas, err := r.askReplicas(ctx, titled(poolReplicasPrompt), strconv.Itoa(entry.Replicas))
	if err != nil {
		return err
	}
	if entry, err = r.session.UpdateWorkerPool(id, wizard.WorkerPoolPatch{Replicas: &replicas}); err != nil {
		return err
	}

	for _, key := range []wizard.FieldKey{wizard.FieldMachineType, wizard.FieldVCPU, wizard.FieldMemory} {
		pager, err := r.session.WorkerPoolPager(id, key)
		if err != nil {
			return err
		}
		load := func(ctx context.Context) error {
			_, err := r.session.LoadWorkerPoolOptions(ctx, id, key)
			return err
		}
		opt, err := r.choose(ctx, titled(promptFor(key)), pager, load, selectionText(entry, key))
		if errors.Is(err, errNoChoices) {
			log.FromContext(ctx).Info("no choices available", "pool", name, "field", key)
			continue
		}
		if err != nil {
			return err
		}
		if entry, err = r.session.UpdateWorkerPool(id, patchFor(key, opt)); err != nil {
			return err
		}
	}

	p := titled(promptFor(wizard.FieldInfraNode))
	infra, err := r.prompter.Confirm(ctx, p.Title, p.Description, entry.InfraNode)
	if err != nil {
		return err
	}
	_, err = r.session.UpdateWorkerPool(id, wizard.WorkerPoolPatch{InfraNode: &infra})
	return err
}

func selectionText(entry wizard.WorkerPoolEntry, key wizard.FieldKey) string {
	var o *wizard.Option
	switch key {
	case wizard.FieldMachineType:
		o = entry.MachineType
	case wizard.FieldVCPU:
		o = entry.VCPU
	case wizard.FieldMemory:
		o = entry.Memory
	}
	if o == nil {
		return ""
	}
	return o.Value
}

func patchFor(key wizard.FieldKey, opt wizard.Option) wizard.WorkerPoolPatch {
	switch key {
	case wizard.FieldMachineType:
		return wizard.WorkerPoolPatch{MachineType: &opt}
	case wizard.FieldVCPU:
		return wizard.WorkerPoolPatch{VCPU: &opt}
	default:
		return wizard.WorkerPoolPatch{Memory: &opt}
	}
}
