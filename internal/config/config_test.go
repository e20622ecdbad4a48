package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "nested", "dir", "config.json"))
	require.NoError(t, err)
	return store
}

func TestLoadMissingFileReturnsEmptyRecord(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Record{}, rec)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	before := time.Now()

	err := store.Save(Record{APIKey: "sk-1234567890", Profile: "work"})
	require.NoError(t, err)

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-1234567890", rec.APIKey)
	assert.Equal(t, "work", rec.Profile)
	assert.False(t, rec.UpdatedAt.IsZero())
	assert.False(t, rec.UpdatedAt.Before(before.Truncate(time.Millisecond)), "updatedAt should not predate the save")
}

func TestSaveOverwritesCallerTimestamp(t *testing.T) {
	store := newTestStore(t)
	stale := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(Record{APIKey: "abc", UpdatedAt: stale}))

	rec, err := store.Load()
	require.NoError(t, err)
	assert.True(t, rec.UpdatedAt.After(stale))
}

func TestSaveWritesPrettyJSONWithTrailingNewline(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(Record{APIKey: "abc"}))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	content := string(data)
	assert.True(t, strings.HasPrefix(content, "{\n  \"apiKey\": \"abc\",\n"))
	assert.True(t, strings.HasSuffix(content, "}\n"))
	assert.NotContains(t, content, "profile", "unset fields are omitted")

	info, err := os.Stat(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(Record{APIKey: "abc"}))
	require.NoError(t, store.Save(Record{APIKey: "def"}))

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(Record{APIKey: "abc"}))

	require.NoError(t, store.Delete())
	require.NoError(t, store.Delete())

	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteWithoutDirectoryDoesNotCreateIt(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Delete())

	_, err := os.Stat(filepath.Dir(store.Path()))
	assert.True(t, os.IsNotExist(err))
}

func TestLoadMalformedJSONReturnsParseError(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "truncated object", content: "{not json"},
		{name: "empty file", content: ""},
		{name: "null", content: "null"},
		{name: "null with whitespace", content: "  null\n"},
		{name: "array", content: "[]"},
		{name: "number", content: "42"},
		{name: "string", content: `"apiKey"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0700))
			require.NoError(t, os.WriteFile(store.Path(), []byte(tt.content), 0600))

			_, err := store.Load()
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, store.Path(), parseErr.Path)
		})
	}
}

func TestLoadAcceptsJSON5(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0700))
	content := "{\n  // edited by hand\n  \"apiKey\": \"abc\",\n  \"profile\": \"work\",\n}\n"
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0600))

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", rec.APIKey)
	assert.Equal(t, "work", rec.Profile)
}

func TestLoadDirectoryReturnsIOError(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(store.Path(), 0700))

	_, err := store.Load()
	require.Error(t, err)

	var ioErr *IOError
	assert.True(t, errors.As(err, &ioErr))
}

func TestUpdateMergesOntoPreviousRecord(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(Record{Profile: "work"}))

	saved, err := store.Update(func(rec *Record) error {
		rec.APIKey = "abc"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "abc", saved.APIKey)
	assert.Equal(t, "work", saved.Profile)

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, saved, rec)
}

func TestUpdateCallbackErrorLeavesFileUntouched(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(Record{APIKey: "keep"}))

	boom := errors.New("boom")
	_, err := store.Update(func(rec *Record) error {
		rec.APIKey = "discard"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	rec, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "keep", rec.APIKey)
}

func TestResolvePath(t *testing.T) {
	t.Run("empty uses default", func(t *testing.T) {
		path, err := ResolvePath("")
		require.NoError(t, err)
		assert.Equal(t, DefaultPath(), path)
		assert.Equal(t, filepath.Join(".codex", "config.json"), filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path)))
	})

	t.Run("relative becomes absolute", func(t *testing.T) {
		path, err := ResolvePath("custom.json")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(path))
		assert.Equal(t, "custom.json", filepath.Base(path))
	})

	t.Run("absolute is kept", func(t *testing.T) {
		abs := filepath.Join(t.TempDir(), "config.json")
		path, err := ResolvePath(abs)
		require.NoError(t, err)
		assert.Equal(t, abs, path)
	})

	t.Run("tilde expands to home", func(t *testing.T) {
		path, err := ResolvePath("~/x/config.json")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(path))
		assert.NotContains(t, path, "~")
	})
}

func TestRecordUsesKeyring(t *testing.T) {
	assert.False(t, Record{}.UsesKeyring())
	assert.True(t, Record{APIKeyStore: KeyringStore}.UsesKeyring())
}
