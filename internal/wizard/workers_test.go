package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolCollection_AddRemoveScenario(t *testing.T) {
	c := NewWorkerPoolCollection()

	first, err := c.Add(WorkerPoolDefaults{MachineType: opt("t3.medium"), Replicas: 1})
	require.NoError(t, err)
	second, err := c.Add(WorkerPoolDefaults{MachineType: opt("t3.medium"), Replicas: 3})
	require.NoError(t, err)

	require.Equal(t, 2, c.Len())
	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEmpty(t, first.ID)

	entries := c.Entries()
	assert.Equal(t, 1, entries[0].Replicas)
	assert.Equal(t, 3, entries[1].Replicas)

	c.Remove(first.ID)

	entries = c.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, "demo-mp-0", c.DisplayName("demo", 0))
}

func TestWorkerPoolCollection_RemoveIsIdempotent(t *testing.T) {
	build := func() (*WorkerPoolCollection, string) {
		c := newWorkerPoolCollection(sequenceIDs("a", "b", "c"))
		for range 3 {
			_, err := c.Add(WorkerPoolDefaults{Replicas: 1})
			require.NoError(t, err)
		}
		return c, "b"
	}

	once, id := build()
	once.Remove(id)

	twice, id := build()
	twice.Remove(id)
	twice.Remove(id)

	assert.Equal(t, once.Entries(), twice.Entries())
	assert.Equal(t, 2, twice.Len())

	twice.Remove("never-issued")
	assert.Equal(t, 2, twice.Len())
}

func TestWorkerPoolCollection_IDsNeverReused(t *testing.T) {
	c := newWorkerPoolCollection(sequenceIDs("a", "a", "", "b", "a", "c"))

	first, err := c.Add(WorkerPoolDefaults{})
	require.NoError(t, err)
	c.Remove(first.ID)

	second, err := c.Add(WorkerPoolDefaults{})
	require.NoError(t, err)
	third, err := c.Add(WorkerPoolDefaults{})
	require.NoError(t, err)

	assert.Equal(t, "a", first.ID)
	assert.Equal(t, "b", second.ID)
	assert.Equal(t, "c", third.ID)
}

func TestWorkerPoolCollection_EntriesAreIndependentCopies(t *testing.T) {
	c := NewWorkerPoolCollection()
	defaults := WorkerPoolDefaults{MachineType: opt("t3.medium"), VCPU: opt("2"), Memory: opt("4"), Replicas: 1}

	a, err := c.Add(defaults)
	require.NoError(t, err)
	b, err := c.Add(defaults)
	require.NoError(t, err)

	defaults.MachineType.Value = "m5.large"
	a.MachineType.Value = "changed-by-caller"

	_, err = c.Update(b.ID, WorkerPoolPatch{MachineType: opt("t3.xlarge")})
	require.NoError(t, err)

	gotA, ok := c.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, "t3.medium", gotA.MachineType.Value)

	gotB, ok := c.Get(b.ID)
	require.True(t, ok)
	assert.Equal(t, "t3.xlarge", gotB.MachineType.Value)
	assert.Equal(t, "2", gotB.VCPU.Value)
}

func TestWorkerPoolCollection_Update(t *testing.T) {
	c := NewWorkerPoolCollection()
	entry, err := c.Add(WorkerPoolDefaults{MachineType: opt("t3.medium"), VCPU: opt("2"), Replicas: 1})
	require.NoError(t, err)

	tests := []struct {
		name    string
		id      string
		patch   WorkerPoolPatch
		wantErr error
		check   func(t *testing.T, e WorkerPoolEntry)
	}{
		{
			name:  "replicas only",
			id:    entry.ID,
			patch: WorkerPoolPatch{Replicas: intPtr(5)},
			check: func(t *testing.T, e WorkerPoolEntry) {
				assert.Equal(t, 5, e.Replicas)
				assert.Equal(t, "t3.medium", e.MachineType.Value)
			},
		},
		{
			name:  "clear vcpu",
			id:    entry.ID,
			patch: WorkerPoolPatch{VCPU: &Option{}},
			check: func(t *testing.T, e WorkerPoolEntry) {
				assert.Nil(t, e.VCPU)
			},
		},
		{
			name: "infra node flag",
			id:   entry.ID,
			patch: func() WorkerPoolPatch {
				infra := true
				return WorkerPoolPatch{InfraNode: &infra}
			}(),
			check: func(t *testing.T, e WorkerPoolEntry) {
				assert.True(t, e.InfraNode)
			},
		},
		{
			name:    "unknown id",
			id:      "missing",
			patch:   WorkerPoolPatch{Replicas: intPtr(2)},
			wantErr: ErrNotFound,
		},
		{
			name:    "negative replicas",
			id:      entry.ID,
			patch:   WorkerPoolPatch{Replicas: intPtr(-1)},
			wantErr: ErrInvalidReplicas,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Update(tt.id, tt.patch)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestWorkerPoolCollection_AddRejectsNegativeReplicas(t *testing.T) {
	c := NewWorkerPoolCollection()
	_, err := c.Add(WorkerPoolDefaults{Replicas: -2})
	assert.ErrorIs(t, err, ErrInvalidReplicas)
	assert.Zero(t, c.Len())
}
