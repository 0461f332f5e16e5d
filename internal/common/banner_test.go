package common

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	stdout := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = stdout }()

	fn()
	require.NoError(t, w.Close())

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String()
}

func TestPrintBannerShowsSettings(t *testing.T) {
	config := NewDefaultConfig()
	config.Storage.Badger.Path = "./identities"

	out := captureStdout(t, func() {
		PrintBanner(config, arbor.NewLogger())
	})

	assert.Contains(t, out, AppName)
	assert.Contains(t, out, GetVersion())
	assert.Contains(t, out, "Provider:")
	assert.Contains(t, out, string(config.LLM.DefaultProvider))
	assert.Contains(t, out, "./identities")
	assert.Contains(t, out, "╔")
	assert.Contains(t, out, "╝")
}

func TestGetFullVersion(t *testing.T) {
	version, build, commit := Version, Build, GitCommit
	t.Cleanup(func() { Version, Build, GitCommit = version, build, commit })

	Version, Build, GitCommit = "1.2.0", "2026-10-16", "0123456789abcdef"
	assert.Equal(t, "ZillaSec 1.2.0 (build 2026-10-16, commit 0123456)", GetFullVersion())

	GitCommit = "unknown"
	assert.Equal(t, "ZillaSec 1.2.0 (build 2026-10-16, commit unknown)", GetFullVersion())
}

func TestSetupLoggerCreatesLogsDir(t *testing.T) {
	config := NewDefaultConfig()
	config.Logging.Dir = filepath.Join(t.TempDir(), "logs")
	config.Logging.Output = []string{"file"}
	config.Logging.Level = "debug"

	logger := SetupLogger(config)
	require.NotNil(t, logger)
	assert.DirExists(t, config.Logging.Dir)

	assert.NotPanics(t, func() {
		logger.Info().Str("key", "value").Msg("file writer ready")
	})
}
