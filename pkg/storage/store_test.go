package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStores(t *testing.T) {
	newFile := func(t *testing.T) Store {
		s, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "local.json"))
		require.NoError(t, err)
		return s
	}
	newMemory := func(t *testing.T) Store {
		return NewMemoryStore()
	}

	for name, factory := range map[string]func(t *testing.T) Store{
		"file":   newFile,
		"memory": newMemory,
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("should report a missing key as absent", func(t *testing.T) {
				s := factory(t)
				v, ok, err := s.Get(ctx, KeySessionID)
				require.NoError(t, err)
				assert.False(t, ok)
				assert.Empty(t, v)
			})

			t.Run("should round trip values per key", func(t *testing.T) {
				s := factory(t)
				require.NoError(t, s.Set(ctx, KeySessionID, "abc"))
				require.NoError(t, s.Set(ctx, KeyToken, "tok"))

				v, ok, err := s.Get(ctx, KeySessionID)
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "abc", v)

				v, ok, err = s.Get(ctx, KeyToken)
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "tok", v)
			})

			t.Run("should delete only the named key", func(t *testing.T) {
				s := factory(t)
				require.NoError(t, s.Set(ctx, KeySessionID, "abc"))
				require.NoError(t, s.Set(ctx, KeyToken, "tok"))
				require.NoError(t, s.Delete(ctx, KeyToken))

				_, ok, err := s.Get(ctx, KeyToken)
				require.NoError(t, err)
				assert.False(t, ok)

				_, ok, err = s.Get(ctx, KeySessionID)
				require.NoError(t, err)
				assert.True(t, ok)
			})
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "local.json")

	first, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeySessionID, "persisted"))

	second, err := NewFileStore(path)
	require.NoError(t, err)
	v, ok, err := second.Get(ctx, KeySessionID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", v)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	s, err := NewFileStore(path)
	require.NoError(t, err)

	_, _, err = s.Get(context.Background(), KeyToken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode store")
}

func TestFileStoreTreatsNullAsEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "local.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0600))

	s, err := NewFileStore(path)
	require.NoError(t, err)

	_, ok, err := s.Get(ctx, KeySessionID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NotPanics(t, func() {
		require.NoError(t, s.Set(ctx, KeySessionID, "abc"))
	})

	value, ok, err := s.Get(ctx, KeySessionID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", value)
}

func TestNewFileStoreRequiresPath(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}
