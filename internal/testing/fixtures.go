package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/undistro/clusterwizard/internal/wizard"
)

// MetadataFixture is an in-memory wizard.MetadataSource. Listings are keyed
// by kind and context and split into pages of the requested size.
type MetadataFixture struct {
	mu       sync.Mutex
	listings map[string][]wizard.Option
	requests []wizard.MetadataRequest
	failures map[string]error
}

// NewMetadataFixture returns a fixture with a small AWS-like catalog.
func NewMetadataFixture() *MetadataFixture {
	f := &MetadataFixture{
		listings: make(map[string][]wizard.Option),
		failures: make(map[string]error),
	}
	f.With(wizard.MetaRegions, "", "us-east-1", "us-east-2", "us-west-2", "eu-west-1", "sa-east-1")
	f.With(wizard.MetaSupportedFlavors, "", "ec2", "eks")
	f.With(wizard.MetaKubernetesVersions, "ec2", "v1.18.19", "v1.19.12", "v1.20.8", "v1.21.2")
	f.With(wizard.MetaKubernetesVersions, "eks", "v1.18.16", "v1.19.8", "v1.20.4")
	f.With(wizard.MetaMachineTypes, "us-east-1", "t3.medium", "t3.large", "m5.large", "m5.xlarge")
	f.With(wizard.MetaSSHKeys, "us-east-1", "undistro")
	return f
}

func listingKey(kind wizard.MetadataKind, scope string) string {
	return string(kind) + "/" + scope
}

// With sets the values listed for kind under scope, the governing value
// sent as the request context.
func (f *MetadataFixture) With(kind wizard.MetadataKind, scope string, values ...string) *MetadataFixture {
	f.mu.Lock()
	defer f.mu.Unlock()
	opts := make([]wizard.Option, len(values))
	for i, v := range values {
		opts[i] = wizard.NewOption(v)
	}
	f.listings[listingKey(kind, scope)] = opts
	return f
}

// Failing makes every fetch of kind under scope return err. A nil err
// clears the failure.
func (f *MetadataFixture) Failing(kind wizard.MetadataKind, scope string, err error) *MetadataFixture {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, listingKey(kind, scope))
	} else {
		f.failures[listingKey(kind, scope)] = err
	}
	return f
}

// Requests returns the requests served so far.
func (f *MetadataFixture) Requests() []wizard.MetadataRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]wizard.MetadataRequest(nil), f.requests...)
}

// FetchPage implements wizard.MetadataSource.
func (f *MetadataFixture) FetchPage(_ context.Context, req wizard.MetadataRequest) (*wizard.MetadataPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	key := listingKey(req.Kind, req.Context)
	if err := f.failures[key]; err != nil {
		return nil, err
	}

	items := f.listings[key]
	size := req.PageSize
	if size <= 0 {
		size = len(items)
	}
	total := 0
	if size > 0 {
		total = (len(items) + size - 1) / size
	}

	start := (req.Page - 1) * size
	if req.Page < 1 || (start >= len(items) && len(items) > 0) {
		return nil, fmt.Errorf("page %d out of range (%d pages)", req.Page, total)
	}
	stop := min(start+size, len(items))

	return &wizard.MetadataPage{
		Items:      append([]wizard.Option(nil), items[start:stop]...),
		TotalPages: total,
	}, nil
}
