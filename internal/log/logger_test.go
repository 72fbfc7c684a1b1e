package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scimrename/internal/config"
)

func TestNewLoggerConsoleLevels(t *testing.T) {
	tests := []struct {
		name        string
		debug       bool
		expectDebug bool
	}{
		{
			name:        "info by default",
			debug:       false,
			expectDebug: false,
		},
		{
			name:        "debug flag",
			debug:       true,
			expectDebug: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var console bytes.Buffer
			logger := NewLogger(&config.Config{Debug: tt.debug}, &console)
			defer logger.Close()

			logger.Debug("will modify row")
			logger.Info("users downloaded")
			logger.Error("request failed")

			out := console.String()
			assert.Contains(t, out, "users downloaded")
			assert.Contains(t, out, "request failed")
			assert.Equal(t, tt.expectDebug, strings.Contains(out, "will modify row"))
		})
	}
}

func TestNewLoggerFileKeepsDebug(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "rename.log")

	var console bytes.Buffer
	logger := NewLogger(&config.Config{LogFile: logFile}, &console)

	logger.Debug("will modify row")
	logger.Info("users downloaded")
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "will modify row")
	assert.Contains(t, string(content), "users downloaded")
	assert.NotContains(t, console.String(), "will modify row")
}

func TestCloseWithoutFile(t *testing.T) {
	logger := NewLogger(&config.Config{}, &bytes.Buffer{})
	assert.NoError(t, logger.Close())
}

func TestWithRun(t *testing.T) {
	logger, hook := test.NewNullLogger()

	first := WithRun(logger, "download")
	second := WithRun(logger, "download")
	first.Info("one")
	second.Info("two")

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "download", entries[0].Data["op"])
	assert.NotEmpty(t, entries[0].Data["run"])
	assert.NotEqual(t, entries[0].Data["run"], entries[1].Data["run"])
}

func TestLevelsUpTo(t *testing.T) {
	levels := levelsUpTo(logrus.InfoLevel)

	assert.Contains(t, levels, logrus.ErrorLevel)
	assert.Contains(t, levels, logrus.InfoLevel)
	assert.NotContains(t, levels, logrus.DebugLevel)
}

func TestWriteSummary(t *testing.T) {
	tests := []struct {
		name     string
		summary  Summary
		contains []string
		excludes []string
	}{
		{
			name: "completed run",
			summary: Summary{
				Operation:      "update",
				Total:          5,
				Rejected:       2,
				Eligible:       3,
				Applied:        2,
				Failed:         1,
				ProcessingTime: time.Second,
				Errors:         []string{"uid 7: giving up after 3 attempts"},
			},
			contains: []string{
				"=== update summary (completed) ===",
				"Rows read: 5",
				"Rows rejected: 2",
				"Users renamed: 2",
				"Users failed: 1",
				"Errors encountered:",
				"uid 7: giving up after 3 attempts",
			},
		},
		{
			name:     "cancelled run",
			summary:  Summary{Operation: "update", Eligible: 4, Cancelled: true},
			contains: []string{"(cancelled)", "Rows eligible: 4"},
			excludes: []string{"Errors encountered:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteSummary(&buf, tt.summary))

			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, buf.String(), unwanted)
			}
		})
	}
}
