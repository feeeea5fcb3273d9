// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ProviderLocal marks catalog entries served by the local Ollama instance.
const ProviderLocal = "Local"

// ErrEmptyCatalog is returned when a catalog has no entries.
var ErrEmptyCatalog = errors.New("model catalog is empty")

//go:embed catalog.json
var defaultCatalog []byte

// =============================================================================
// DESCRIPTOR
// =============================================================================

// Descriptor identifies a selectable model.
type Descriptor struct {
	// ID is the identifier sent to the backend
	ID string `json:"id"`

	// Name is the human-readable display name
	Name string `json:"name"`

	// Provider is who serves the model (OpenAI, Anthropic, Local, ...)
	Provider string `json:"provider"`
}

// IsLocal reports whether the model runs on the local Ollama backend.
func (d Descriptor) IsLocal() bool {
	return strings.EqualFold(d.Provider, ProviderLocal)
}

// Label returns "Name (Provider)".
func (d Descriptor) Label() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Provider)
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry is the read-only model catalog. It is never mutated after
// construction, so lookups need no locking.
type Registry struct {
	entries []Descriptor
	byID    map[string]int
}

// NewRegistry builds a registry from catalog entries in display order.
// Entries without an id are rejected; duplicate ids keep the first entry.
func NewRegistry(entries []Descriptor) (*Registry, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}

	r := &Registry{
		entries: make([]Descriptor, 0, len(entries)),
		byID:    make(map[string]int, len(entries)),
	}
	for i, d := range entries {
		if strings.TrimSpace(d.ID) == "" {
			return nil, fmt.Errorf("catalog entry %d: missing id", i)
		}
		if _, dup := r.byID[d.ID]; dup {
			continue
		}
		if d.Name == "" {
			d.Name = d.ID
		}
		r.byID[d.ID] = len(r.entries)
		r.entries = append(r.entries, d)
	}
	return r, nil
}

// ParseCatalog decodes a JSON catalog: an array of {id, name, provider}.
func ParseCatalog(data []byte) (*Registry, error) {
	var entries []Descriptor
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return NewRegistry(entries)
}

// LoadCatalog reads a JSON catalog from disk.
func LoadCatalog(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// DefaultRegistry returns the registry built from the embedded catalog.
func DefaultRegistry() *Registry {
	r, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic("model: embedded catalog is invalid: " + err.Error())
	}
	return r
}

// Resolve returns the descriptor for id, or the first catalog entry when
// id is unknown.
func (r *Registry) Resolve(id string) Descriptor {
	if d, ok := r.Lookup(id); ok {
		return d
	}
	return r.First()
}

// Lookup returns the descriptor for id and whether it exists.
func (r *Registry) Lookup(id string) (Descriptor, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Descriptor{}, false
	}
	return r.entries[i], true
}

// First returns the fallback entry.
func (r *Registry) First() Descriptor {
	return r.entries[0]
}

// All returns the catalog in display order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of catalog entries.
func (r *Registry) Len() int {
	return len(r.entries)
}
