package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	ApiKey string   `json:"api_key" validate:"required"`
	Tags   []string `json:"tags" validate:"min=1,dive,required"`
	Pages  int      `json:"pages" validate:"gte=0"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0600)
	require.NoError(t, err)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "app.json5"), `{
		// comments are allowed
		api_key: "base",
		tags: ["proana"],
		pages: 2
	}`)
	writeFile(t, filepath.Join(dir, "app.local.json5"), `{ api_key: "secret" }`)

	config, err := ReadConfig[testConfig](filepath.Join(dir, "app.json5"))
	require.NoError(t, err)
	require.Equal(t, "secret", config.ApiKey)
	require.Equal(t, []string{"proana"}, config.Tags)
	require.Equal(t, 2, config.Pages)
}

func TestReadConfigNotFound(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "missing.json5"))
	require.True(t, os.IsNotExist(err))
}

func TestLoadValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.json5")

	writeFile(t, path, `{ tags: ["edtwt"] }`)
	_, err := Load[testConfig](path)
	require.Error(t, err)

	writeFile(t, path, `{ api_key: "k", tags: [] }`)
	_, err = Load[testConfig](path)
	require.Error(t, err)

	writeFile(t, path, `{ api_key: "k", tags: ["edtwt"] }`)
	config, err := Load[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, "k", config.ApiKey)
}
