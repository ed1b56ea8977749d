package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type logEntry map[string]any

func TestLoggerInfoWithFields(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log = log.WithFields(map[string]any{"definition": "oval:x:def:1", "stage": "probe"})
	log.Info("collection started")

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "collection started", entry["message"])
	require.Equal(t, "oval:x:def:1", entry["definition"])
	require.Equal(t, "probe", entry["stage"])
	require.Equal(t, "info", entry["level"])
}

func TestLoggerDefaultsToWarnings(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Writer: buf})
	require.NoError(t, err)

	log.Info("quiet by default")
	require.Equal(t, "", strings.TrimSpace(buf.String()))

	log.Warn("unresolved object reference")
	require.Contains(t, buf.String(), "unresolved object reference")
}

func TestLoggerDebugRespectsLevel(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "info", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log.Debug("this should not appear")
	require.Equal(t, "", strings.TrimSpace(buf.String()))
}

func TestLoggerErrorIncludesContext(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log, err := New(Options{Level: "debug", HumanReadable: false, Writer: buf})
	require.NoError(t, err)

	log = log.WithFields(map[string]any{"object": "oval:x:obj:7"})
	log.Error(errors.New("stat failed"), "probe fault")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry logEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "probe fault", entry["message"])
	require.Equal(t, "oval:x:obj:7", entry["object"])
	require.Equal(t, "stat failed", entry["error"])
}

func TestForVerbosity(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := ForVerbosity(true, buf)
	require.NotNil(t, log)
	log.Debug("engine scored definition")
	require.Contains(t, buf.String(), "engine scored definition")

	buf.Reset()
	log = ForVerbosity(false, buf)
	log.Debug("hidden")
	log.Info("hidden too")
	require.Equal(t, "", strings.TrimSpace(buf.String()))
}

func TestNilLoggerIsSafe(t *testing.T) {
	t.Parallel()

	var log *Logger
	require.Nil(t, log.WithFields(map[string]any{"k": "v"}))
	log.Info("no panic")
	log.Debug("no panic")
	log.Warn("no panic")
	log.Error(errors.New("x"), "no panic")
}
