package metadata

import (
	"context"
	"fmt"
	"sync"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/undistro/clusterwizard/internal/platform/undistro"
	"github.com/undistro/clusterwizard/internal/wizard"
)

// sizingLookupPageSize is the page size used when scanning machine types for
// one type's sizing.
const sizingLookupPageSize = 100

// UnDistroAPI is the subset of the UnDistro client the adapter uses.
type UnDistroAPI interface {
	Regions(ctx context.Context, provider string) ([]string, error)
	SSHKeys(ctx context.Context, provider, region string) ([]string, error)
	SupportedFlavors(ctx context.Context, provider string) ([]undistro.Flavor, error)
	MachineTypes(ctx context.Context, provider string, pageSize, page int) (*undistro.MachineTypesPage, error)
}

// UnDistro serves metadata from an UnDistro API server. Only machine types
// are paged by the server; the other listings are paged locally.
//
// Machine type sizings seen in any page are remembered so the vcpus and
// memory listings usually need no extra request.
type UnDistro struct {
	api UnDistroAPI

	mu    sync.Mutex
	sizes map[string]map[string]sizing
}

// NewUnDistro creates an adapter over api.
func NewUnDistro(api UnDistroAPI) *UnDistro {
	return &UnDistro{
		api:   api,
		sizes: make(map[string]map[string]sizing),
	}
}

// FetchPage implements wizard.MetadataSource.
func (u *UnDistro) FetchPage(ctx context.Context, req wizard.MetadataRequest) (*wizard.MetadataPage, error) {
	logger := log.FromContext(ctx).WithValues("provider", req.Provider, "kind", req.Kind)

	switch req.Kind {
	case wizard.MetaRegions:
		regions, err := u.api.Regions(ctx, req.Provider)
		if err != nil {
			return nil, err
		}
		return pageOf(optionsOf(regions), req)

	case wizard.MetaSSHKeys:
		if req.Context == "" {
			return nil, fmt.Errorf("%s: %w", req.Kind, ErrContextRequired)
		}
		keys, err := u.api.SSHKeys(ctx, req.Provider, req.Context)
		if err != nil {
			return nil, err
		}
		return pageOf(optionsOf(keys), req)

	case wizard.MetaSupportedFlavors, wizard.MetaKubernetesVersions:
		flavors, err := u.api.SupportedFlavors(ctx, req.Provider)
		if err != nil {
			return nil, err
		}
		return pageOf(flavorListing(req, flavors), req)

	case wizard.MetaMachineTypes:
		resp, err := u.api.MachineTypes(ctx, req.Provider, req.PageSize, req.Page)
		if err != nil {
			return nil, err
		}
		opts := u.remember(req.Provider, resp.MachineTypes)
		logger.V(1).Info("Fetched machine types", "page", req.Page, "totalPages", resp.TotalPages)
		return &wizard.MetadataPage{Items: opts, TotalPages: resp.TotalPages}, nil

	case wizard.MetaVCPUs, wizard.MetaMemory:
		if req.Context == "" {
			return nil, fmt.Errorf("%s: %w", req.Kind, ErrContextRequired)
		}
		s, err := u.sizing(ctx, req.Provider, req.Context)
		if err != nil {
			return nil, err
		}
		return pageOf(sizingOptions(req.Kind, s), req)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, req.Kind)
}

func flavorListing(req wizard.MetadataRequest, flavors []undistro.Flavor) []wizard.Option {
	if req.Kind == wizard.MetaSupportedFlavors {
		names := make([]string, len(flavors))
		for i, f := range flavors {
			names[i] = f.Name
		}
		return optionsOf(names)
	}
	for _, f := range flavors {
		if f.Name == req.Context {
			return optionsOf(f.KubernetesVersions)
		}
	}
	return nil
}

func (u *UnDistro) remember(provider string, types []undistro.MachineType) []wizard.Option {
	u.mu.Lock()
	defer u.mu.Unlock()

	known, ok := u.sizes[provider]
	if !ok {
		known = make(map[string]sizing)
		u.sizes[provider] = known
	}

	opts := make([]wizard.Option, len(types))
	for i, mt := range types {
		s := sizing{VCPUs: mt.VCPUs, Memory: mt.Memory}
		known[mt.InstanceType] = s
		opts[i] = machineTypeOption(mt.InstanceType, s)
	}
	return opts
}

func (u *UnDistro) cached(provider, machineType string) (*sizing, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	s, ok := u.sizes[provider][machineType]
	if !ok {
		return nil, false
	}
	return &s, true
}

// sizing returns the sizing of machineType, scanning the machine type pages
// when it has not been seen yet. An unknown type yields nil.
func (u *UnDistro) sizing(ctx context.Context, provider, machineType string) (*sizing, error) {
	if s, ok := u.cached(provider, machineType); ok {
		return s, nil
	}

	for page := 1; ; page++ {
		resp, err := u.api.MachineTypes(ctx, provider, sizingLookupPageSize, page)
		if err != nil {
			return nil, fmt.Errorf("look up %s: %w", machineType, err)
		}
		u.remember(provider, resp.MachineTypes)
		if s, ok := u.cached(provider, machineType); ok {
			return s, nil
		}
		if page >= resp.TotalPages {
			return nil, nil
		}
	}
}
