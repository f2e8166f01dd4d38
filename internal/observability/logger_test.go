// internal/observability/logger_test.go
package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xkilldash9x/formforge/internal/config"
)

// lockedBuffer is a WriteSyncer over a buffer, safe for the logger's writes.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Sync() error { return nil }

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var _ zapcore.WriteSyncer = (*lockedBuffer)(nil)

func TestInitialize(t *testing.T) {
	t.Run("should initialize console logger with colors", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()
		out := &lockedBuffer{}

		Initialize(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "TestService",
			Colors:      config.ColorConfig{Info: "green"},
		}, out)
		GetLogger().Named("generator").Info("This is a test message.")
		Sync()

		output := out.String()
		assert.Contains(t, output, "INFO")
		assert.Contains(t, output, "This is a test message.")
		assert.Contains(t, output, colorGreen)
		assert.Contains(t, output, colorReset)
		assert.Contains(t, output, "TestService.generator.")
	})

	t.Run("should emit JSON when configured", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()
		out := &lockedBuffer{}

		Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "svc"}, out)
		GetLogger().Info("structured", zap.String("field", "email"))
		Sync()

		line := strings.TrimSpace(out.String())
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "structured", entry["msg"])
		assert.Equal(t, "email", entry["field"])
		assert.Equal(t, "svc", entry["logger"])
	})

	t.Run("should respect the configured level", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()
		out := &lockedBuffer{}

		Initialize(config.LoggerConfig{Level: "warn", Format: "json"}, out)
		GetLogger().Info("hidden")
		GetLogger().Warn("shown")
		Sync()

		assert.NotContains(t, out.String(), "hidden")
		assert.Contains(t, out.String(), "shown")
	})

	t.Run("should fall back to info on an invalid level", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()
		out := &lockedBuffer{}

		Initialize(config.LoggerConfig{Level: "loud", Format: "json"}, out)
		GetLogger().Debug("debug line")
		GetLogger().Info("info line")
		Sync()

		assert.NotContains(t, out.String(), "debug line")
		assert.Contains(t, out.String(), "info line")
	})

	t.Run("should write a rotated file alongside the console", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()
		logFile := filepath.Join(t.TempDir(), "formforge.log")

		Initialize(config.LoggerConfig{Level: "info", Format: "console", LogFile: logFile, MaxSize: 1}, &lockedBuffer{})
		GetLogger().Info("to file")
		Sync()

		data, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"msg":"to file"`)
	})

	t.Run("should initialize only once", func(t *testing.T) {
		ResetForTest()
		defer ResetForTest()
		first, second := &lockedBuffer{}, &lockedBuffer{}

		Initialize(config.LoggerConfig{Level: "info", Format: "json"}, first)
		Initialize(config.LoggerConfig{Level: "info", Format: "json"}, second)
		GetLogger().Info("once")
		Sync()

		assert.Contains(t, first.String(), "once")
		assert.Empty(t, second.String())
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("should return a fallback before initialization", func(t *testing.T) {
		ResetForTest()
		logger := GetLogger()
		require.NotNil(t, logger)
		assert.Equal(t, "fallback", logger.Name())
	})
}
