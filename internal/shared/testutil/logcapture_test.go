package testutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCapture(t *testing.T) {
	logger, logs := NewTestLogger(t)

	component := logger.With(slog.String("component", "catalog"))
	component.Info("listing industries", slog.Int("count", 3))
	logger.Warn("slow fit")

	records := logs.Records()
	require.Len(t, records, 2)
	assert.Equal(t, slog.LevelInfo, records[0].Level)
	assert.Equal(t, "catalog", records[0].Attrs["component"])
	assert.Equal(t, int64(3), records[0].Attrs["count"])
	assert.NotContains(t, records[1].Attrs, "component")

	rec, ok := logs.Find("slow")
	require.True(t, ok)
	assert.Equal(t, slog.LevelWarn, rec.Level)

	_, ok = logs.Find("missing")
	assert.False(t, ok)

	AssertLogContains(t, logs, slog.LevelWarn, "slow fit")
	AssertNoErrors(t, logs)
}

func TestFixtures(t *testing.T) {
	root := t.TempDir()
	path := WriteProduct(t, root, "Pharma", "aspirin", PharmaCSV(3))

	assert.Equal(t, filepath.Join(root, "Pharma", "aspirin.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, PharmaHeader, lines[0])
	assert.Equal(t, "96,104,97,386,0,322,7,2,62", lines[3])
}
