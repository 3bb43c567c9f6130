package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name      string
		opts      Options
		wantDebug bool
	}{
		{"默认", Options{}, false},
		{"调试", Options{Debug: true}, true},
		{"详细", Options{Verbose: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDebug, log.Core().Enabled(zap.DebugLevel))
			assert.True(t, log.Core().Enabled(zap.InfoLevel))
		})
	}
}

func TestNewWritesJSONToOutputPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	log, err := New(Options{OutputPaths: []string{path}})
	require.NoError(t, err)

	log.Info("chunk translated", zap.Int("chunk", 1))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.Contains(t, line, `"msg":"chunk translated"`)
	assert.Contains(t, line, `"chunk":1`)
}
