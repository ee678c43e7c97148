// Package foundation holds small generic helpers shared across packages.
package foundation

import (
	"fmt"
	"slices"
	"strings"
)

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Enum maps case-insensitive names to values of a closed set.
type Enum[T comparable] struct {
	name   string
	values map[string]T
}

// NewEnum creates an enum called name (used in error messages) over values.
func NewEnum[T comparable](name string, values map[string]T) *Enum[T] {
	normalized := make(map[string]T, len(values))
	for k, v := range values {
		normalized[normalize(k)] = v
	}
	return &Enum[T]{name: name, values: normalized}
}

// Lookup returns the value for raw, ignoring case and surrounding space.
func (e *Enum[T]) Lookup(raw string) (T, bool) {
	v, ok := e.values[normalize(raw)]
	return v, ok
}

// Parse is Lookup with an error naming the valid keys.
func (e *Enum[T]) Parse(raw string) (T, error) {
	if v, ok := e.Lookup(raw); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q (valid: %s)", e.name, raw, strings.Join(e.Keys(), ", "))
}

// Keys returns the valid keys, sorted.
func (e *Enum[T]) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
