package wizard

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/go-logr/logr"
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 15

// FieldSpec declares one pager-backed field. Governor names the field whose
// value the listing depends on. Every query also carries the provider, so a
// spec governed directly by FieldProvider has an empty query context.
type FieldSpec struct {
	Key      FieldKey
	Kind     MetadataKind
	Governor FieldKey
}

// DefaultFieldSpecs returns the dependency graph of the metadata endpoint:
// provider → region → {machineType, sshKey}, machineType → {vcpu, memory}
// and provider → flavor → kubernetesVersion.
func DefaultFieldSpecs() []FieldSpec {
	return []FieldSpec{
		{Key: FieldRegion, Kind: MetaRegions, Governor: FieldProvider},
		{Key: FieldFlavor, Kind: MetaSupportedFlavors, Governor: FieldProvider},
		{Key: FieldKubernetesVersion, Kind: MetaKubernetesVersions, Governor: FieldFlavor},
		{Key: FieldSSHKey, Kind: MetaSSHKeys, Governor: FieldRegion},
		{Key: FieldMachineType, Kind: MetaMachineTypes, Governor: FieldRegion},
		{Key: FieldVCPU, Kind: MetaVCPUs, Governor: FieldMachineType},
		{Key: FieldMemory, Kind: MetaMemory, Governor: FieldMachineType},
	}
}

// entryFields are the fields each worker pool owns its own pagers for.
var entryFields = map[FieldKey]bool{
	FieldMachineType: true,
	FieldVCPU:        true,
	FieldMemory:      true,
}

// DependentFieldGroup binds the pagers of fields whose choices depend on
// another field's value and performs the cascading resets when a governing
// value changes.
type DependentFieldGroup struct {
	source   MetadataSource
	log      logr.Logger
	pageSize int

	mu      sync.RWMutex
	specs   []FieldSpec
	byKey   map[FieldKey]FieldSpec
	pagers  map[FieldKey]*OptionPager
	values  map[FieldKey]string
	entries map[string]map[FieldKey]*OptionPager
}

// NewDependentFieldGroup declares one pager per spec. A non-positive
// pageSize falls back to DefaultPageSize.
func NewDependentFieldGroup(source MetadataSource, specs []FieldSpec, pageSize int, log logr.Logger) *DependentFieldGroup {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	g := &DependentFieldGroup{
		source:   source,
		log:      log,
		pageSize: pageSize,
		byKey:    make(map[FieldKey]FieldSpec, len(specs)),
		pagers:   make(map[FieldKey]*OptionPager, len(specs)),
		values:   make(map[FieldKey]string),
		entries:  make(map[string]map[FieldKey]*OptionPager),
	}
	for _, spec := range specs {
		if _, dup := g.byKey[spec.Key]; dup {
			continue
		}
		g.specs = append(g.specs, spec)
		g.byKey[spec.Key] = spec
		pager := NewOptionPager(source, log.WithValues("field", spec.Key))
		pager.resetTo(g.queryLocked(spec))
		g.pagers[spec.Key] = pager
	}
	return g
}

// Fields returns the declared pager-backed fields in declaration order.
func (g *DependentFieldGroup) Fields() []FieldKey {
	keys := make([]FieldKey, len(g.specs))
	for i, spec := range g.specs {
		keys[i] = spec.Key
	}
	return keys
}

// Declared reports whether key is a pager-backed field of the group.
func (g *DependentFieldGroup) Declared(key FieldKey) bool {
	_, ok := g.byKey[key]
	return ok
}

// Pager returns the pager backing key.
func (g *DependentFieldGroup) Pager(key FieldKey) (*OptionPager, error) {
	pager, ok := g.pagers[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an option field", ErrUnknownField, key)
	}
	return pager, nil
}

// Query returns the current query of key, derived from the governing values
// the group has seen.
func (g *DependentFieldGroup) Query(key FieldKey) (QueryKey, error) {
	spec, ok := g.byKey[key]
	if !ok {
		return QueryKey{}, fmt.Errorf("%w: %s is not an option field", ErrUnknownField, key)
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.queryLocked(spec), nil
}

func (g *DependentFieldGroup) queryLocked(spec FieldSpec) QueryKey {
	return g.queryFor(spec.Kind, spec.Governor, g.values[spec.Governor])
}

// queryFor builds the query for kind governed by governor currently holding
// value. Callers hold at least a read lock.
func (g *DependentFieldGroup) queryFor(kind MetadataKind, governor FieldKey, value string) QueryKey {
	q := QueryKey{
		Provider: g.values[FieldProvider],
		Kind:     kind,
		PageSize: g.pageSize,
	}
	if governor != "" && governor != FieldProvider {
		q.Context = value
		if value == "" {
			q.Unresolved = true
		}
	}
	if q.Provider == "" {
		q.Unresolved = true
	}
	return q
}

// LoadNext fetches the next page for key under its current query.
func (g *DependentFieldGroup) LoadNext(ctx context.Context, key FieldKey) (OptionPage, error) {
	pager, err := g.Pager(key)
	if err != nil {
		return OptionPage{}, err
	}
	query, err := g.Query(key)
	if err != nil {
		return OptionPage{}, err
	}
	return pager.LoadNext(ctx, query)
}

// OnGovernorChange records the new value of key and resets every field that
// transitively depends on it. It returns the dependent keys whose selection
// must be cleared. Resets never propagate to key's own governors. Setting the
// value key already holds is a no-op.
func (g *DependentFieldGroup) OnGovernorChange(key FieldKey, value string) []FieldKey {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.tracksLocked(key) || g.values[key] == value {
		return nil
	}
	if value == "" {
		delete(g.values, key)
	} else {
		g.values[key] = value
	}

	dependents := g.dependentsLocked(key)
	for _, dep := range dependents {
		delete(g.values, dep)
	}
	for _, dep := range dependents {
		g.pagers[dep].resetTo(g.queryLocked(g.byKey[dep]))
	}
	if slices.Contains(dependents, FieldMachineType) {
		// Worker pool listings follow the session region.
		for _, pagers := range g.entries {
			for _, pager := range pagers {
				pager.Reset()
			}
		}
	}

	if len(dependents) > 0 {
		g.log.V(1).Info("governing field changed", "field", key, "reset", dependents)
	}
	return dependents
}

// tracksLocked reports whether key is a declared field or governs one.
func (g *DependentFieldGroup) tracksLocked(key FieldKey) bool {
	if key == FieldProvider {
		return true
	}
	if _, ok := g.byKey[key]; ok {
		return true
	}
	for _, spec := range g.specs {
		if spec.Governor == key {
			return true
		}
	}
	return false
}

// dependentsLocked returns every field reachable from key through governor
// edges, breadth first and in declaration order within one level.
func (g *DependentFieldGroup) dependentsLocked(key FieldKey) []FieldKey {
	var out []FieldKey
	seen := map[FieldKey]bool{key: true}
	queue := []FieldKey{key}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, spec := range g.specs {
			governed := spec.Governor == current || (current == FieldProvider && spec.Governor == "")
			if !governed || seen[spec.Key] {
				continue
			}
			seen[spec.Key] = true
			out = append(out, spec.Key)
			queue = append(queue, spec.Key)
		}
	}
	return out
}

// EntryPager returns the pager worker pool id uses for key, creating it on
// first use. Only machineType, vcpu and memory have per-entry pagers.
func (g *DependentFieldGroup) EntryPager(id string, key FieldKey) (*OptionPager, error) {
	if !entryFields[key] {
		return nil, fmt.Errorf("%w: %s has no per-pool options", ErrUnknownField, key)
	}
	if _, ok := g.byKey[key]; !ok {
		return nil, fmt.Errorf("%w: %s is not an option field", ErrUnknownField, key)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	pagers, ok := g.entries[id]
	if !ok {
		pagers = make(map[FieldKey]*OptionPager)
		g.entries[id] = pagers
	}
	pager, ok := pagers[key]
	if !ok {
		pager = NewOptionPager(g.source, g.log.WithValues("pool", id, "field", key))
		pagers[key] = pager
	}
	return pager, nil
}

// LoadEntry fetches the next page of key for a worker pool. The machine
// type listing follows the session region; vcpu and memory follow the
// pool's own machine type.
func (g *DependentFieldGroup) LoadEntry(ctx context.Context, entry WorkerPoolEntry, key FieldKey) (OptionPage, error) {
	pager, err := g.EntryPager(entry.ID, key)
	if err != nil {
		return OptionPage{}, err
	}

	spec := g.byKey[key]
	g.mu.RLock()
	var query QueryKey
	if spec.Governor == FieldMachineType {
		machineType := ""
		if entry.MachineType != nil {
			machineType = entry.MachineType.Value
		}
		query = g.queryFor(spec.Kind, spec.Governor, machineType)
	} else {
		query = g.queryLocked(spec)
	}
	g.mu.RUnlock()

	return pager.LoadNext(ctx, query)
}

// resetEntry discards the pages worker pool id holds for keys.
func (g *DependentFieldGroup) resetEntry(id string, keys ...FieldKey) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, key := range keys {
		if pager, ok := g.entries[id][key]; ok {
			pager.Reset()
		}
	}
}

// DropEntry releases the pagers of a removed worker pool.
func (g *DependentFieldGroup) DropEntry(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, id)
}
