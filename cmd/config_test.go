package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/productdevbook/portkiller/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command against a throwaway config file
func execute(t *testing.T, path string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvConfigPath, path)
	jsonOutput, outputFormat = false, formatTable

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

func tempConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
	return path
}

func loadConfig(t *testing.T, path string) *config.Config {
	t.Helper()
	store, err := config.NewSharedStoreAt(path)
	require.NoError(t, err)
	cfg, err := store.Load()
	require.NoError(t, err)
	return cfg
}

func TestConfigSet(t *testing.T) {
	path := tempConfig(t)

	_, err := execute(t, path, "config", "set", "method", "kill")
	require.NoError(t, err)
	_, err = execute(t, path, "config", "set", "system", "true")
	require.NoError(t, err)

	cfg := loadConfig(t, path)
	assert.Equal(t, "SIGKILL", cfg.KillMethod)
	assert.True(t, cfg.ShowSystemPorts)
}

func TestConfigSet_Rejects(t *testing.T) {
	path := tempConfig(t)

	_, err := execute(t, path, "config", "set", "method", "SIGHUP")
	assert.Error(t, err)

	_, err = execute(t, path, "config", "set", "system", "maybe")
	assert.Error(t, err)

	_, err = execute(t, path, "config", "set", "color", "red")
	assert.Error(t, err)

	assert.Equal(t, config.Default(), loadConfig(t, path))
}

func TestConfigShow(t *testing.T) {
	path := tempConfig(t)

	out, err := execute(t, path, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "killMethod: SIGTERM")
	assert.Contains(t, out, "showSystemPorts: false")
}

func TestFavorites(t *testing.T) {
	path := tempConfig(t)

	_, err := execute(t, path, "favorite", "add", "3000")
	require.NoError(t, err)
	_, err = execute(t, path, "favorite", "add", "8080")
	require.NoError(t, err)
	_, err = execute(t, path, "favorite", "add", "3000")
	require.NoError(t, err)
	assert.Equal(t, []int{3000, 8080}, loadConfig(t, path).Favorites)

	_, err = execute(t, path, "fav", "rm", "3000")
	require.NoError(t, err)
	assert.Equal(t, []int{8080}, loadConfig(t, path).Favorites)

	out, err := execute(t, path, "favorite", "list")
	require.NoError(t, err)
	assert.Equal(t, "8080\n", out)
}

func TestFavorites_InvalidPort(t *testing.T) {
	path := tempConfig(t)

	for _, arg := range []string{"0", "65536", "http"} {
		_, err := execute(t, path, "favorite", "add", arg)
		assert.Error(t, err, arg)
	}
}

func TestKill_InvalidPort(t *testing.T) {
	_, err := execute(t, tempConfig(t), "kill", "99999")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port number")
}
