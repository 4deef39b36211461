package wizard

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/undistro/clusterwizard/internal/util/naming"
)

// WorkerPoolEntry is one worker pool. ID is assigned on creation and is the
// only key used to update or remove the entry; the display name is derived
// from the entry's position.
type WorkerPoolEntry struct {
	ID          string
	MachineType *Option
	VCPU        *Option
	Memory      *Option
	Replicas    int
	InfraNode   bool
}

func (e WorkerPoolEntry) clone() WorkerPoolEntry {
	e.MachineType = cloneOption(e.MachineType)
	e.VCPU = cloneOption(e.VCPU)
	e.Memory = cloneOption(e.Memory)
	return e
}

// WorkerPoolDefaults seeds a new worker pool.
type WorkerPoolDefaults struct {
	MachineType *Option
	VCPU        *Option
	Memory      *Option
	Replicas    int
	InfraNode   bool
}

// WorkerPoolPatch is a partial update. Nil fields are left untouched; a
// non-nil option with an empty Value clears the selection.
type WorkerPoolPatch struct {
	MachineType *Option
	VCPU        *Option
	Memory      *Option
	Replicas    *int
	InfraNode   *bool
}

// WorkerPoolCollection is an ordered set of worker pools keyed by id.
type WorkerPoolCollection struct {
	mu      sync.Mutex
	entries []WorkerPoolEntry
	issued  map[string]struct{}
	newID   func() string
}

// NewWorkerPoolCollection returns an empty collection issuing random UUIDs.
func NewWorkerPoolCollection() *WorkerPoolCollection {
	return newWorkerPoolCollection(uuid.NewString)
}

func newWorkerPoolCollection(newID func() string) *WorkerPoolCollection {
	return &WorkerPoolCollection{
		issued: make(map[string]struct{}),
		newID:  newID,
	}
}

// Add appends a pool seeded from a copy of defaults and returns it.
func (c *WorkerPoolCollection) Add(defaults WorkerPoolDefaults) (WorkerPoolEntry, error) {
	if defaults.Replicas < 0 {
		return WorkerPoolEntry{}, fmt.Errorf("%w: %d", ErrInvalidReplicas, defaults.Replicas)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry := WorkerPoolEntry{
		ID:          c.nextIDLocked(),
		MachineType: cloneOption(defaults.MachineType),
		VCPU:        cloneOption(defaults.VCPU),
		Memory:      cloneOption(defaults.Memory),
		Replicas:    defaults.Replicas,
		InfraNode:   defaults.InfraNode,
	}
	c.entries = append(c.entries, entry)
	return entry.clone(), nil
}

// nextIDLocked returns an id never issued by this collection before.
func (c *WorkerPoolCollection) nextIDLocked() string {
	for {
		id := c.newID()
		if _, used := c.issued[id]; used || id == "" {
			continue
		}
		c.issued[id] = struct{}{}
		return id
	}
}

// Remove deletes the pool with id. Removing an absent id is a no-op.
func (c *WorkerPoolCollection) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, e := range c.entries {
		if e.ID == id {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// Update applies patch to the pool with id.
func (c *WorkerPoolCollection) Update(id string, patch WorkerPoolPatch) (WorkerPoolEntry, error) {
	if patch.Replicas != nil && *patch.Replicas < 0 {
		return WorkerPoolEntry{}, fmt.Errorf("%w: %d", ErrInvalidReplicas, *patch.Replicas)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.entries {
		e := &c.entries[i]
		if e.ID != id {
			continue
		}
		if patch.MachineType != nil {
			e.MachineType = selection(patch.MachineType)
		}
		if patch.VCPU != nil {
			e.VCPU = selection(patch.VCPU)
		}
		if patch.Memory != nil {
			e.Memory = selection(patch.Memory)
		}
		if patch.Replicas != nil {
			e.Replicas = *patch.Replicas
		}
		if patch.InfraNode != nil {
			e.InfraNode = *patch.InfraNode
		}
		return e.clone(), nil
	}
	return WorkerPoolEntry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Get returns a copy of the pool with id.
func (c *WorkerPoolCollection) Get(id string) (WorkerPoolEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e.ID == id {
			return e.clone(), true
		}
	}
	return WorkerPoolEntry{}, false
}

// Entries returns copies of all pools in insertion order.
func (c *WorkerPoolCollection) Entries() []WorkerPoolEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]WorkerPoolEntry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.clone()
	}
	return out
}

// Len returns the number of pools.
func (c *WorkerPoolCollection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// DisplayName returns the name of the pool at position index.
func (c *WorkerPoolCollection) DisplayName(cluster string, index int) string {
	return naming.WorkerPool(cluster, index)
}

// clear drops every pool. Issued ids stay reserved.
func (c *WorkerPoolCollection) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}

func cloneOption(o *Option) *Option {
	if o == nil {
		return nil
	}
	cp := *o
	return &cp
}

// selection turns a patch option into the stored selection.
func selection(o *Option) *Option {
	if o.Value == "" {
		return nil
	}
	return cloneOption(o)
}
