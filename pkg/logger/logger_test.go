package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	t.Run("控制台格式", func(t *testing.T) {
		l, err := New(Config{Level: "debug", Format: "console", Output: "stdout"})
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	})

	t.Run("JSON格式按级别过滤", func(t *testing.T) {
		l, err := New(Config{Level: "warn", Format: "json", Output: "stderr"})
		require.NoError(t, err)
		assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
		assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	})

	t.Run("无效级别", func(t *testing.T) {
		_, err := New(Config{Level: "verbose"})
		assert.Error(t, err)
	})
}

func TestContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetDefault(zap.New(core))
	t.Cleanup(func() { SetDefault(nil) })

	t.Run("没有logger时使用默认logger", func(t *testing.T) {
		Info(context.Background(), "默认")
		require.Equal(t, 1, logs.FilterMessage("默认").Len())
	})

	t.Run("字段随context传递", func(t *testing.T) {
		ctx := WithFields(context.Background(), zap.String("request_id", "req-1"))
		Warn(ctx, "带字段")

		entries := logs.FilterMessage("带字段").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	})
}
