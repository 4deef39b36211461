package metadata

import (
	"context"
	"errors"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/undistro/clusterwizard/internal/wizard"
)

const (
	// ProviderHCloud is the provider name served by the Hetzner Cloud source.
	ProviderHCloud = "hcloud"
	// FlavorHCloud is the only flavor offered on Hetzner Cloud.
	FlavorHCloud = "cloud"
)

// ErrUnauthorized is returned when the Hetzner Cloud token is rejected.
var ErrUnauthorized = errors.New("hcloud token rejected")

// HCloudKubernetesVersions lists the versions offered for FlavorHCloud.
var HCloudKubernetesVersions = []string{"v1.33.4", "v1.32.8", "v1.31.12"}

// HCloud serves metadata from the Hetzner Cloud API. Locations, server types
// and SSH keys are paged by the API; SSH keys are project wide so the region
// context is not sent.
type HCloud struct {
	client *hcloud.Client
}

// NewHCloud creates a source backed by client.
func NewHCloud(client *hcloud.Client) *HCloud {
	return &HCloud{client: client}
}

// NewHCloudFromToken creates a source authenticated with token.
func NewHCloudFromToken(token string, opts ...hcloud.ClientOption) *HCloud {
	opts = append([]hcloud.ClientOption{
		hcloud.WithToken(token),
		hcloud.WithApplication("clusterwizard", ""),
	}, opts...)
	return NewHCloud(hcloud.NewClient(opts...))
}

// FetchPage implements wizard.MetadataSource.
func (h *HCloud) FetchPage(ctx context.Context, req wizard.MetadataRequest) (*wizard.MetadataPage, error) {
	if err := checkProvider(req, ProviderHCloud); err != nil {
		return nil, err
	}

	page, err := h.fetch(ctx, req)
	if err != nil {
		if isHCloudErrorCode(err, hcloud.ErrorCodeUnauthorized, hcloud.ErrorCodeForbidden) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
		}
		return nil, err
	}

	log.FromContext(ctx).V(1).Info("Fetched hcloud metadata",
		"kind", req.Kind, "page", req.Page, "totalPages", page.TotalPages)
	return page, nil
}

func (h *HCloud) fetch(ctx context.Context, req wizard.MetadataRequest) (*wizard.MetadataPage, error) {
	listOpts := hcloud.ListOpts{Page: req.Page, PerPage: req.PageSize}

	switch req.Kind {
	case wizard.MetaRegions:
		locations, resp, err := h.client.Location.List(ctx, hcloud.LocationListOpts{ListOpts: listOpts})
		if err != nil {
			return nil, fmt.Errorf("list locations: %w", err)
		}
		opts := make([]wizard.Option, len(locations))
		for i, l := range locations {
			opts[i] = wizard.Option{Value: l.Name, Label: fmt.Sprintf("%s (%s)", l.Name, l.City)}
		}
		return &wizard.MetadataPage{Items: opts, TotalPages: lastPage(resp, req.Page)}, nil

	case wizard.MetaMachineTypes:
		types, resp, err := h.client.ServerType.List(ctx, hcloud.ServerTypeListOpts{ListOpts: listOpts})
		if err != nil {
			return nil, fmt.Errorf("list server types: %w", err)
		}
		opts := make([]wizard.Option, len(types))
		for i, st := range types {
			opts[i] = machineTypeOption(st.Name, serverTypeSizing(st))
		}
		return &wizard.MetadataPage{Items: opts, TotalPages: lastPage(resp, req.Page)}, nil

	case wizard.MetaSSHKeys:
		keys, resp, err := h.client.SSHKey.List(ctx, hcloud.SSHKeyListOpts{ListOpts: listOpts})
		if err != nil {
			return nil, fmt.Errorf("list ssh keys: %w", err)
		}
		opts := make([]wizard.Option, len(keys))
		for i, k := range keys {
			opts[i] = wizard.NewOption(k.Name)
		}
		return &wizard.MetadataPage{Items: opts, TotalPages: lastPage(resp, req.Page)}, nil

	case wizard.MetaSupportedFlavors:
		return pageOf(optionsOf([]string{FlavorHCloud}), req)

	case wizard.MetaKubernetesVersions:
		if req.Context != FlavorHCloud {
			return pageOf(nil, req)
		}
		return pageOf(optionsOf(HCloudKubernetesVersions), req)

	case wizard.MetaVCPUs, wizard.MetaMemory:
		if req.Context == "" {
			return nil, fmt.Errorf("%s: %w", req.Kind, ErrContextRequired)
		}
		st, _, err := h.client.ServerType.GetByName(ctx, req.Context)
		if err != nil {
			return nil, fmt.Errorf("get server type %s: %w", req.Context, err)
		}
		var s *sizing
		if st != nil {
			sz := serverTypeSizing(st)
			s = &sz
		}
		return pageOf(sizingOptions(req.Kind, s), req)
	}

	return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, req.Kind)
}

func serverTypeSizing(st *hcloud.ServerType) sizing {
	return sizing{VCPUs: st.Cores, Memory: float64(st.Memory)}
}

// lastPage reads the total page count from the response pagination meta.
// Responses without it are treated as the last page.
func lastPage(resp *hcloud.Response, page int) int {
	if resp == nil || resp.Meta.Pagination == nil {
		return page
	}
	return resp.Meta.Pagination.LastPage
}

func isHCloudErrorCode(err error, codes ...hcloud.ErrorCode) bool {
	var hcloudErr hcloud.Error
	if !errors.As(err, &hcloudErr) {
		return false
	}
	for _, code := range codes {
		if hcloudErr.Code == code {
			return true
		}
	}
	return false
}
