package wizard

import (
	"context"
	"fmt"
	"sync"

	"github.com/undistro/clusterwizard/api/v1alpha1"
)

// fakeSource records requests and answers them with fn.
type fakeSource struct {
	mu    sync.Mutex
	calls []MetadataRequest
	fn    func(ctx context.Context, req MetadataRequest) (*MetadataPage, error)
}

func (f *fakeSource) FetchPage(ctx context.Context, req MetadataRequest) (*MetadataPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	fn := f.fn
	f.mu.Unlock()
	return fn(ctx, req)
}

func (f *fakeSource) requests() []MetadataRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]MetadataRequest(nil), f.calls...)
}

func (f *fakeSource) callCount() int {
	return len(f.requests())
}

// pagedSource serves totalPages pages of two items each for every query.
func pagedSource(totalPages int) *fakeSource {
	return &fakeSource{fn: func(_ context.Context, req MetadataRequest) (*MetadataPage, error) {
		return &MetadataPage{
			Items: []Option{
				NewOption(fmt.Sprintf("%s-%s-%d-a", req.Kind, req.Context, req.Page)),
				NewOption(fmt.Sprintf("%s-%s-%d-b", req.Kind, req.Context, req.Page)),
			},
			TotalPages: totalPages,
		}, nil
	}}
}

// gate blocks a fetch until released and signals when it started.
type gate struct {
	started chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{started: make(chan struct{}, 8), release: make(chan struct{})}
}

func (g *gate) wait() {
	g.started <- struct{}{}
	<-g.release
}

func waiters(p *OptionPager) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.inflight == nil {
		return 0
	}
	return p.inflight.waiters
}

// fakeSubmitter implements both submitter interfaces.
type fakeSubmitter struct {
	mu         sync.Mutex
	clusters   []*v1alpha1.Cluster
	policies   []*v1alpha1.DefaultPolicies
	clusterErr error
	policyErr  error
	block      *gate
}

func (f *fakeSubmitter) SubmitCluster(_ context.Context, c *v1alpha1.Cluster) error {
	if f.block != nil {
		f.block.wait()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clusterErr != nil {
		return f.clusterErr
	}
	f.clusters = append(f.clusters, c)
	return nil
}

func (f *fakeSubmitter) SubmitPolicy(_ context.Context, p *v1alpha1.DefaultPolicies) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.policyErr != nil {
		return f.policyErr
	}
	f.policies = append(f.policies, p)
	return nil
}

type fakeCredentials struct {
	creds *Credentials
	err   error
}

func (f fakeCredentials) DefaultCredentials(context.Context) (*Credentials, error) {
	return f.creds, f.err
}

// sequenceIDs returns an id generator cycling through ids.
func sequenceIDs(ids ...string) func() string {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func opt(v string) *Option {
	o := NewOption(v)
	return &o
}

func intPtr(n int) *int { return &n }
