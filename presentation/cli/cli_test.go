package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func repoDir(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for path, body := range files {
		file := filepath.Join(root, filepath.FromSlash(path)+".json")
		require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
		require.NoError(t, os.WriteFile(file, []byte(body), 0o644))
	}
	return root
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("RESOLVER_SELF_HEALING", "false")
	t.Setenv("RESOLVER_LOG_LEVEL", "error")

	missing := filepath.Join(t.TempDir(), "missing")
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--dir", dir, "--config", missing + ".yaml", "--env", missing + ".env"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

var sampleRepo = map[string]string{
	"base/button":  `{"type": "button", "locators": [{"strategy": "tag_name", "value": "button", "priority": 9}]}`,
	"login/submit": `{"name": "Submit", "parentPath": "base/button", "locators": [{"strategy": "css", "value": "#submit", "priority": 1}]}`,
	"login/user":   `{"locators": [{"strategy": "name", "value": "user"}]}`,
}

func TestShowYAML(t *testing.T) {
	out, err := run(t, repoDir(t, sampleRepo), "show", "login/submit")
	require.NoError(t, err)

	var shown map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "login/submit", shown["path"])
	assert.Equal(t, "button", shown["type"])
	assert.Len(t, shown["locators"], 2)
}

func TestShowJSON(t *testing.T) {
	out, err := run(t, repoDir(t, sampleRepo), "show", "login/submit", "--format", "json")
	require.NoError(t, err)

	var shown struct {
		Name     string `json:"name"`
		Locators []struct {
			Strategy string `json:"strategy"`
		} `json:"locators"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, "Submit", shown.Name)
	require.Len(t, shown.Locators, 2)
	assert.Equal(t, "css", shown.Locators[0].Strategy)
}

func TestShowErrors(t *testing.T) {
	dir := repoDir(t, sampleRepo)

	_, err := run(t, dir, "show", "login/nothing")
	assert.ErrorContains(t, err, "object not found")

	_, err = run(t, dir, "show", "login/submit", "--format", "toml")
	assert.ErrorContains(t, err, "unsupported format")
}

func TestList(t *testing.T) {
	dir := repoDir(t, sampleRepo)

	out, err := run(t, dir, "list")
	require.NoError(t, err)
	assert.Equal(t, []string{"base/button", "login/submit", "login/user"}, strings.Fields(out))

	out, err = run(t, dir, "list", "login/*")
	require.NoError(t, err)
	assert.Equal(t, []string{"login/submit", "login/user"}, strings.Fields(out))
}

func TestCheck(t *testing.T) {
	out, err := run(t, repoDir(t, sampleRepo), "check")
	require.NoError(t, err)
	assert.Contains(t, out, "3 checked, 0 failed, 3 cached")

	broken := map[string]string{
		"ok":     `{}`,
		"loop/a": `{"parentPath": "loop/b"}`,
		"loop/b": `{"parentPath": "loop/a"}`,
		"orphan": `{"parentPath": "ghost"}`,
		"bad":    `{"locators": [`,
	}
	out, err = run(t, repoDir(t, broken), "check")
	require.Error(t, err)
	assert.Contains(t, out, "ok   ok")
	assert.Contains(t, out, "FAIL loop/a: ")
	assert.Contains(t, out, "cyclic inheritance")
	assert.Contains(t, out, "FAIL orphan: ")
	assert.Contains(t, out, "FAIL bad: malformed definition")
	assert.Contains(t, out, "5 checked, 4 failed")
}

func TestFindRequiresURL(t *testing.T) {
	_, err := run(t, repoDir(t, sampleRepo), "find", "login/submit")
	assert.ErrorContains(t, err, "url")
}
