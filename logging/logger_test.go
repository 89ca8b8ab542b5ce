package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" error ", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.WarnLevel},
		{"loud", zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: "info", Output: &buf, Component: "claude"})

	l.Debug().Msg("hidden")
	l.Info().Int("attempt", 2).Msg("sending")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, "sending", gjson.Get(out, "message").String())
	assert.Equal(t, "claude", gjson.Get(out, "component").String())
	assert.Equal(t, int64(2), gjson.Get(out, "attempt").Int())
}

func TestFromEnvWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medclarify.log")
	t.Setenv(EnvFile, path)
	t.Setenv(EnvLevel, "debug")
	t.Setenv(EnvFormat, "json")

	l, closer, err := FromEnv()
	require.NoError(t, err)
	l.Debug().Msg("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "to file", gjson.GetBytes(data, "message").String())
	assert.Equal(t, "medclarify", gjson.GetBytes(data, "component").String())
}

func TestFromEnvBadPath(t *testing.T) {
	t.Setenv(EnvFile, filepath.Join(t.TempDir(), "missing", "dir", "x.log"))

	_, _, err := FromEnv()
	assert.Error(t, err)
}

func TestModule(t *testing.T) {
	var buf bytes.Buffer
	l := Module(New(Options{Level: "info", Output: &buf, Component: "medclarify"}), "qa")

	l.Warn().Msg("pending")

	assert.Equal(t, "qa", gjson.Get(buf.String(), "module").String())
	assert.Equal(t, "medclarify", gjson.Get(buf.String(), "component").String())
}
