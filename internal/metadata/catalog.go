package metadata

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/undistro/clusterwizard/internal/wizard"
)

// ProviderAWS is the provider name served by the catalog.
const ProviderAWS = "aws"

//go:embed aws.json
var awsCatalog []byte

type catalogFlavor struct {
	Name               string   `json:"name"`
	KubernetesVersions []string `json:"kubernetesVersion"`
}

type catalogInstanceType struct {
	InstanceType      string   `json:"instanceType"`
	AvailabilityZones []string `json:"availabilityZones,omitempty"`
	VCPUs             int      `json:"vcpus"`
	Memory            float64  `json:"memory"`
}

type catalogDocument struct {
	Regions       []string              `json:"regions"`
	Flavors       []catalogFlavor       `json:"flavors"`
	InstanceTypes []catalogInstanceType `json:"instanceTypes"`
}

// Catalog serves AWS metadata from an embedded, offline catalog. SSH keys are
// account specific: they come from a KeyPairLister when one is set, plus the
// keys registered with WithSSHKeys.
type Catalog struct {
	doc      catalogDocument
	sizes    map[string]sizing
	sshKeys  map[string][]string
	keyPairs KeyPairLister

	mu     sync.Mutex
	listed map[string][]string
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithSSHKeys lists keys as the key pairs registered in region.
func WithSSHKeys(region string, keys ...string) CatalogOption {
	return func(c *Catalog) {
		c.sshKeys[region] = slices.Clone(keys)
	}
}

// WithKeyPairLister lists each region's key pairs through lister. A region
// is listed once; later pages reuse the result.
func WithKeyPairLister(lister KeyPairLister) CatalogOption {
	return func(c *Catalog) {
		c.keyPairs = lister
	}
}

// NewCatalog loads the embedded AWS catalog.
func NewCatalog(opts ...CatalogOption) (*Catalog, error) {
	c := &Catalog{
		sshKeys: make(map[string][]string),
		listed:  make(map[string][]string),
	}
	if err := json.Unmarshal(awsCatalog, &c.doc); err != nil {
		return nil, fmt.Errorf("parse embedded catalog: %w", err)
	}

	c.sizes = make(map[string]sizing, len(c.doc.InstanceTypes))
	for _, it := range c.doc.InstanceTypes {
		c.sizes[it.InstanceType] = sizing{VCPUs: it.VCPUs, Memory: it.Memory}
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchPage implements wizard.MetadataSource.
func (c *Catalog) FetchPage(ctx context.Context, req wizard.MetadataRequest) (*wizard.MetadataPage, error) {
	if err := checkProvider(req, ProviderAWS); err != nil {
		return nil, err
	}

	opts, err := c.listing(ctx, req)
	if err != nil {
		return nil, err
	}

	page, err := pageOf(opts, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Kind, err)
	}
	log.FromContext(ctx).V(1).Info("Served catalog page",
		"kind", req.Kind, "context", req.Context, "page", req.Page, "totalPages", page.TotalPages)
	return page, nil
}

func (c *Catalog) listing(ctx context.Context, req wizard.MetadataRequest) ([]wizard.Option, error) {
	switch req.Kind {
	case wizard.MetaRegions:
		return optionsOf(c.doc.Regions), nil

	case wizard.MetaSupportedFlavors:
		names := make([]string, len(c.doc.Flavors))
		for i, f := range c.doc.Flavors {
			names[i] = f.Name
		}
		return optionsOf(names), nil

	case wizard.MetaKubernetesVersions:
		if req.Context == "" {
			return nil, fmt.Errorf("%s: %w", req.Kind, ErrContextRequired)
		}
		for _, f := range c.doc.Flavors {
			if f.Name == req.Context {
				return optionsOf(f.KubernetesVersions), nil
			}
		}
		return nil, nil

	case wizard.MetaMachineTypes:
		opts := make([]wizard.Option, len(c.doc.InstanceTypes))
		for i, it := range c.doc.InstanceTypes {
			opts[i] = machineTypeOption(it.InstanceType, c.sizes[it.InstanceType])
		}
		return opts, nil

	case wizard.MetaVCPUs, wizard.MetaMemory:
		s, ok := c.sizes[req.Context]
		if !ok {
			return nil, nil
		}
		return sizingOptions(req.Kind, &s), nil

	case wizard.MetaSSHKeys:
		if req.Context == "" {
			return nil, fmt.Errorf("%s: %w", req.Kind, ErrContextRequired)
		}
		keys, err := c.regionKeyPairs(ctx, req.Context)
		if err != nil {
			return nil, err
		}
		return optionsOf(append(keys, c.sshKeys[req.Context]...)), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, req.Kind)
}

// regionKeyPairs returns the key pairs the lister reports for region. Failed
// listings are not cached.
func (c *Catalog) regionKeyPairs(ctx context.Context, region string) ([]string, error) {
	if c.keyPairs == nil {
		return nil, nil
	}

	c.mu.Lock()
	keys, ok := c.listed[region]
	c.mu.Unlock()
	if ok {
		return slices.Clone(keys), nil
	}

	keys, err := c.keyPairs.KeyPairs(ctx, region)
	if err != nil {
		return nil, err
	}
	log.FromContext(ctx).V(1).Info("Listed EC2 key pairs", "region", region, "count", len(keys))

	c.mu.Lock()
	c.listed[region] = slices.Clone(keys)
	c.mu.Unlock()
	return keys, nil
}
