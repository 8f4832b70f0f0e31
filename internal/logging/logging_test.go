package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, FormatConsole, cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
}

func TestNewWithWriter_JSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	log := WithComponent(NewWithWriter(Config{Level: "info", Format: FormatJSON}, &buf), "cli")

	log.Debug().Msg("hidden")
	log.Info().Int("tasks", 7).Msg("schedule computed")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	entry := gjson.ParseBytes(lines[0])
	assert.Equal(t, "info", entry.Get("level").String())
	assert.Equal(t, "cli", entry.Get("component").String())
	assert.Equal(t, int64(7), entry.Get("tasks").Int())
	assert.Equal(t, "schedule computed", entry.Get("message").String())
}

func TestNewWithWriter_Console(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "debug", NoColor: true}, &buf)
	log.Debug().Msg("parsing project")

	assert.Contains(t, buf.String(), "[DBG]")
	assert.Contains(t, buf.String(), "parsing project")
}

func TestNewWithWriter_BadLevelFallsBack(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	var buf bytes.Buffer
	log := NewWithWriter(Config{Level: "chatty", Format: FormatJSON}, &buf)
	log.Info().Msg("dropped")
	log.Warn().Msg("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
