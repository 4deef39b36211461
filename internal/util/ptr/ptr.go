// Package ptr provides helpers for optional API fields.
package ptr

// To returns a pointer to a copy of v.
func To[T any](v T) *T { return &v }

// Int32 converts n to the *int32 replica counts of the cluster API.
func Int32(n int) *int32 { return To(int32(n)) }
