// Package undistro is a minimal client for the UnDistro API server's
// provider metadata endpoint.
package undistro

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Metadata names accepted by the endpoint's meta parameter.
const (
	MetaRegions          = "regions"
	MetaSSHKeys          = "sshKeys"
	MetaMachineTypes     = "machineTypes"
	MetaSupportedFlavors = "supportedFlavors"
)

// Client is a minimal UnDistro API client for provider metadata.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// MachineType is one instance type offered by a provider.
type MachineType struct {
	InstanceType      string   `json:"instanceType,omitempty"`
	AvailabilityZones []string `json:"availabilityZones,omitempty"`
	VCPUs             int      `json:"vcpus,omitempty"`
	Memory            float64  `json:"memory,omitempty"`
}

// Flavor is a provider flavor with the Kubernetes versions it supports.
type Flavor struct {
	Name               string   `json:"name"`
	KubernetesVersions []string `json:"kubernetesVersion"`
}

// MachineTypesPage is one page of machine types.
type MachineTypesPage struct {
	Page         int           `json:"Page"`
	TotalPages   int           `json:"TotalPages"`
	MachineTypes []MachineType `json:"MachineTypes"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client for the API server at baseURL. An empty token
// sends no Authorization header.
func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Regions lists the regions of provider.
func (c *Client) Regions(ctx context.Context, provider string) ([]string, error) {
	var regions []string
	if err := c.metadata(ctx, provider, MetaRegions, nil, &regions); err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	return regions, nil
}

// SSHKeys lists the key pair names registered in region.
func (c *Client) SSHKeys(ctx context.Context, provider, region string) ([]string, error) {
	var keys []string
	params := url.Values{"region": {region}}
	if err := c.metadata(ctx, provider, MetaSSHKeys, params, &keys); err != nil {
		return nil, fmt.Errorf("list ssh keys in %s: %w", region, err)
	}
	return keys, nil
}

// SupportedFlavors lists the flavors of provider.
func (c *Client) SupportedFlavors(ctx context.Context, provider string) ([]Flavor, error) {
	var flavors []Flavor
	if err := c.metadata(ctx, provider, MetaSupportedFlavors, nil, &flavors); err != nil {
		return nil, fmt.Errorf("list flavors: %w", err)
	}
	return flavors, nil
}

// MachineTypes returns one page of machine types. Pages start at 1.
func (c *Client) MachineTypes(ctx context.Context, provider string, pageSize, page int) (*MachineTypesPage, error) {
	params := url.Values{
		"page_size": {strconv.Itoa(pageSize)},
		"page":      {strconv.Itoa(page)},
	}
	var resp MachineTypesPage
	if err := c.metadata(ctx, provider, MetaMachineTypes, params, &resp); err != nil {
		return nil, fmt.Errorf("list machine types page %d: %w", page, err)
	}
	return &resp, nil
}

func (c *Client) metadata(ctx context.Context, provider, meta string, params url.Values, out any) error {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("name", provider)
	q.Set("meta", meta)

	req, err := c.newRequest(ctx, http.MethodGet, "/provider/metadata?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w (status %d)", err, resp.StatusCode)
	}

	return nil
}
