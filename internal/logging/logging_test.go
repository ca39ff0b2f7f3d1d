package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in       string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	prevLogger := log.Logger
	t.Cleanup(func() { log.Logger = prevLogger })

	err := Init(Settings{Level: "loud", Quiet: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loud")
}

func TestInitQuietWritesOnlyToFile(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	path := filepath.Join(t.TempDir(), "focusflow.log")
	require.NoError(t, Init(Settings{Level: "debug", File: path, Quiet: true}))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	log.Debug().Str("k", "v").Msg("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), "k=v")
}
