package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"ui_resolver/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDefinition(t *testing.T, root, path, body string) {
	t.Helper()
	file := filepath.Join(root, filepath.FromSlash(path)+definitionExt)
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
	require.NoError(t, os.WriteFile(file, []byte(body), 0o644))
}

func TestDefinitionStoreLoad(t *testing.T) {
	root := t.TempDir()
	writeDefinition(t, root, "login/submit", `{
		"name": "Submit",
		"parentPath": "base/button",
		"locators": [
			{"strategy": "css", "value": "#submit", "priority": 1, "reliability": 0.9},
			{"strategy": "xpath", "value": "//button", "active": false}
		],
		"properties": {"waitTimeout": 2}
	}`)

	store := NewDefinitionStore(root)
	obj, err := store.Load("login/submit")
	require.NoError(t, err)

	assert.Equal(t, "login/submit", obj.Path, "path defaults to the file location")
	assert.Equal(t, "base/button", obj.ParentPath)
	require.Len(t, obj.Locators, 2)
	assert.True(t, obj.Locators[0].Active)
	assert.False(t, obj.Locators[1].Active)

	timeout, ok := obj.WaitTimeout()
	require.True(t, ok)
	assert.Equal(t, "2s", timeout.String())
}

func TestDefinitionStoreErrors(t *testing.T) {
	root := t.TempDir()
	writeDefinition(t, root, "broken", `{"name": `)
	writeDefinition(t, root, "mismatch", `{"path": "elsewhere", "locators": []}`)
	writeDefinition(t, root, "unknown", `{"locators": [{"strategy": "telepathy", "value": "x"}]}`)

	store := NewDefinitionStore(root)

	tests := []struct {
		path      string
		wantParse bool
	}{
		{"missing", false},
		{"broken", true},
		{"mismatch", true},
		{"unknown", true},
		{"../escape", false},
		{"/abs", false},
		{"a//b", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := store.Load(tt.path)
			require.Error(t, err)

			var parseErr *entities.DefinitionParseError
			var notFound *entities.ObjectNotFoundError
			if tt.wantParse {
				assert.True(t, errors.As(err, &parseErr), "got %v", err)
			} else {
				assert.True(t, errors.As(err, &notFound), "got %v", err)
			}
		})
	}
}

func TestDefinitionStorePaths(t *testing.T) {
	root := t.TempDir()
	writeDefinition(t, root, "login/submit", `{}`)
	writeDefinition(t, root, "login/form/user", `{}`)
	writeDefinition(t, root, "base", `{}`)
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("x"), 0o644))

	paths, err := NewDefinitionStore(root).Paths()
	require.NoError(t, err)
	assert.Equal(t, []string{"base", "login/form/user", "login/submit"}, paths)

	missing, err := NewDefinitionStore(filepath.Join(root, "nope")).Paths()
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestMemoryCachePutIfAbsent(t *testing.T) {
	cache := NewMemoryCache()
	first := &entities.UIObject{Path: "a", Name: "first"}
	second := &entities.UIObject{Path: "a", Name: "second"}

	assert.Same(t, first, cache.PutIfAbsent("a", first))
	assert.Same(t, first, cache.PutIfAbsent("a", second))
	assert.Equal(t, 1, cache.Len())

	got, ok := cache.Get("a")
	require.True(t, ok)
	assert.Same(t, first, got)

	cache.Clear()
	assert.Equal(t, 0, cache.Len())
	_, ok = cache.Get("a")
	assert.False(t, ok)
}
