package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig("debug", "/tmp/x.log")
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level)
	assert.Equal(t, "/tmp/x.log", cfg.File)

	cfg, err = ParseConfig("", "")
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level)

	_, err = ParseConfig("loud", "")
	assert.Error(t, err)
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Format = "json"
	logger := New(cfg, &buf)

	logger.Debug().Msg("hidden")
	logger.Info().Int("index", 2).Msg("resize released")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"index":2`)
	assert.Contains(t, out, `"message":"resize released"`)
}

func TestSetupWritesToFile(t *testing.T) {
	prev, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	path := filepath.Join(t.TempDir(), "logs", "splitview.log")
	cfg := DefaultConfig()
	cfg.File = path
	closer, err := Setup(cfg)
	require.NoError(t, err)

	log.Info().Str("pane", "preview").Msg("opened")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "opened")
	assert.Contains(t, string(data), "pane=preview")
}

func TestSetupWithoutFileDiscards(t *testing.T) {
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })

	closer, err := Setup(DefaultConfig())
	require.NoError(t, err)
	require.NoError(t, closer.Close())
}
