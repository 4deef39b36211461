// Package wizard implements the orchestration core of the cluster creation
// wizard.
//
// A [Session] walks the user through an ordered list of [Step] definitions,
// gating forward navigation on each step's required fields and deferring
// submission until the last step. Selection lists that come from the remote
// metadata service are served by [OptionPager] instances, bound together by a
// [DependentFieldGroup] so that changing a governing field (provider, region,
// machine type, flavor) resets everything downstream of it. Worker pools live
// in a [WorkerPoolCollection] keyed by stable ids.
//
// [Compose] is a pure function that turns a session [Snapshot] into the
// Cluster and DefaultPolicies documents submitted on commit.
//
// The package talks to the outside world only through [MetadataSource],
// [CredentialSource], [ClusterSubmitter] and [PolicySubmitter]. Concrete
// adapters live in internal/metadata, internal/credentials and
// internal/submit.
package wizard
