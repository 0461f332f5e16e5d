package common

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "zillasec.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	config := NewDefaultConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, 200, config.Analysis.MaxInputRows)
	assert.Equal(t, "risk_summary", config.Analysis.SchemaVariant)
	assert.Equal(t, 10, config.Chat.ContextLimit)
	assert.Equal(t, LLMProviderOpenRouter, config.LLM.DefaultProvider)

	timeout, err := config.AnalysisTimeout()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, timeout)
}

func TestLoadFromFilesLaterFileWins(t *testing.T) {
	t.Setenv("ZILLASEC_MAX_AI_INPUT_ROWS", "")
	t.Setenv("ZILLASEC_ANALYSIS_TIMEOUT", "")
	t.Setenv("ZILLASEC_BADGER_PATH", "")

	base := writeConfig(t, `
[analysis]
max_input_rows = 50
timeout = "30s"

[storage.badger]
path = "/tmp/base"
`)
	override := writeConfig(t, `
[analysis]
max_input_rows = 75
`)

	config, err := LoadFromFiles(base, override)
	require.NoError(t, err)
	assert.Equal(t, 75, config.Analysis.MaxInputRows)
	assert.Equal(t, "30s", config.Analysis.Timeout)
	assert.Equal(t, "/tmp/base", config.Storage.Badger.Path)
}

func TestEnvOverridesFiles(t *testing.T) {
	path := writeConfig(t, `
[analysis]
max_input_rows = 50
`)
	t.Setenv("ZILLASEC_MAX_AI_INPUT_ROWS", "5")
	t.Setenv("ZILLASEC_SCHEMA_VARIANT", "access_review")

	config, err := LoadFromFiles(path)
	require.NoError(t, err)
	assert.Equal(t, 5, config.Analysis.MaxInputRows)
	assert.Equal(t, "access_review", config.Analysis.SchemaVariant)
}

func TestLoadFromFilesRejectsInvalid(t *testing.T) {
	t.Setenv("ZILLASEC_ANALYSIS_TIMEOUT", "")
	t.Setenv("ZILLASEC_LLM_DEFAULT_PROVIDER", "")

	_, err := LoadFromFiles(writeConfig(t, `
[analysis]
timeout = "soon"
`))
	assert.Error(t, err)

	_, err = LoadFromFiles(writeConfig(t, `
[llm]
default_provider = "mistral"
`))
	assert.Error(t, err)

	_, err = LoadFromFiles(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestResolveAPIKeyPriority(t *testing.T) {
	ctx := context.Background()
	t.Setenv("ZILLASEC_OPENROUTER_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")

	key, err := ResolveAPIKey(ctx, nil, "openrouter_api_key", "from-config")
	require.NoError(t, err)
	assert.Equal(t, "from-config", key)

	t.Setenv("OPENROUTER_API_KEY", "from-env")
	key, err = ResolveAPIKey(ctx, nil, "openrouter_api_key", "from-config")
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)

	_, err = ResolveAPIKey(ctx, nil, "unknown_api_key", "")
	assert.Error(t, err)
}
