package logger

import (
	"os"
	"path/filepath"
	"testing"

	"agritrace/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.log")

	l, err := New(config.Config{LogLevel: "debug", LogFile: path})
	require.NoError(t, err)

	l.Info("product created")
	_ = l.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "product created")
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	l, err := New(config.Config{LogLevel: "loud"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
}
