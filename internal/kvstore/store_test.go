package kvstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storesUnderTest(t *testing.T) map[string]Store {
	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)
	return map[string]Store{
		"file":   fileStore,
		"memory": NewMemoryStore(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get("completedModules")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, SetJSON(store, "completedModules", []string{"a", "b"}))
			var ids []string
			found, err := GetJSON(store, "completedModules", &ids)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, []string{"a", "b"}, ids)

			require.NoError(t, SetJSON(store, "completedModules", []string{"c"}))
			found, err = GetJSON(store, "completedModules", &ids)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, []string{"c"}, ids)

			require.NoError(t, store.Remove("completedModules"))
			require.NoError(t, store.Remove("completedModules"))
			found, err = GetJSON(store, "completedModules", &ids)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestStoreRejectsBadKeys(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
				assert.Error(t, store.Set(key, json.RawMessage(`1`)), key)
				_, err := store.Get(key)
				assert.Error(t, err, key)
			}
		})
	}
}

func TestGetJSONReportsCorruptValue(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set("userProfile", json.RawMessage(`{not json`)))
	var out map[string]any
	found, err := GetJSON(store, "userProfile", &out)
	assert.False(t, found)
	assert.Error(t, err)
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	first, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, SetJSON(first, "userProfile", map[string]string{"name": "Ada"}))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	var out map[string]string
	found, err := GetJSON(second, "userProfile", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Ada", out["name"])

	keys, err := second.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"userProfile"}, keys)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not linger")
}

func TestFileStoreRejectsInvalidJSON(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, store.Set("broken", json.RawMessage(`{`)))

	_, err = NewFileStore("  ")
	assert.Error(t, err)
}
