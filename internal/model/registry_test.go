// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	require.Greater(t, r.Len(), 0)

	first := r.First()
	assert.Equal(t, "gpt-4o", first.ID)
	assert.Equal(t, "GPT-4o", first.Name)
	assert.Equal(t, "OpenAI", first.Provider)

	for _, d := range r.All() {
		assert.NotEmpty(t, d.ID)
		assert.NotEmpty(t, d.Name)
		assert.NotEmpty(t, d.Provider)
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r, err := NewRegistry([]Descriptor{
		{ID: "a", Name: "Alpha", Provider: "OpenAI"},
		{ID: "b", Name: "Beta", Provider: "Local"},
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		id   string
		want string
	}{
		{"known first", "a", "Alpha"},
		{"known second", "b", "Beta"},
		{"unknown falls back to first", "bad-id", "Alpha"},
		{"empty falls back to first", "", "Alpha"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Resolve(tc.id).Name)
		})
	}

	_, ok := r.Lookup("bad-id")
	assert.False(t, ok)
}

func TestNewRegistry_Errors(t *testing.T) {
	_, err := NewRegistry(nil)
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = NewRegistry([]Descriptor{{Name: "no id"}})
	assert.Error(t, err)
}

func TestNewRegistry_DuplicatesKeepFirst(t *testing.T) {
	r, err := NewRegistry([]Descriptor{
		{ID: "a", Name: "First", Provider: "OpenAI"},
		{ID: "a", Name: "Second", Provider: "OpenAI"},
		{ID: "c"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, "First", r.Resolve("a").Name)
	assert.Equal(t, "c", r.Resolve("c").Name, "missing name defaults to id")
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")
	data := `[{"id":"llama3.2:3b","name":"Llama","provider":"Local"}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	r, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.True(t, r.First().IsLocal())
	assert.Equal(t, "Llama (Local)", r.First().Label())

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("{not json"))
	assert.Error(t, err)
}

func TestSpeaker_Role(t *testing.T) {
	assert.Equal(t, RoleUser, SpeakerUser.Role())
	assert.Equal(t, RoleAssistant, SpeakerAssistant.Role())
	assert.Equal(t, RoleAssistant, SpeakerNotice.Role())
	assert.Equal(t, "notice", SpeakerNotice.String())
}
