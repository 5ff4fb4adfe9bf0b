package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	ApiUrl    string `json:"api_url"`
	RateLimit int    `json:"rate_limit"`
}

func TestReadConfigMissingIsNotExist(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "craft.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestReadConfigBaseOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "craft.json5")
	err := os.WriteFile(path, []byte(`{api_url: "http://localhost:8080", rate_limit: 10}`), 0644)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.ApiUrl)
	require.Equal(t, 10, cfg.RateLimit)
}

func TestReadConfigLocalOverrides(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "craft.json5")
	err := os.WriteFile(base, []byte(`{api_url: "http://localhost:8080", rate_limit: 10}`), 0644)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "craft.local.json5"), []byte(`{rate_limit: 25}`), 0644)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](base)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8080", cfg.ApiUrl, "base settings survive the merge")
	require.Equal(t, 25, cfg.RateLimit, "local settings win")
}

func TestReadConfigLocalOnly(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "craft.local.json5"), []byte(`{api_url: "http://localhost:9999"}`), 0644)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "craft.json5"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9999", cfg.ApiUrl)
}
