package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_WritesRotatingFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	lg, err := New(Options{Level: "debug", Format: "json", File: file, MaxSizeMB: 1})
	require.NoError(t, err)
	lg.Info("menu_tree_orphans", zap.Int("count", 2))
	_ = lg.Sync()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"menu_tree_orphans"`)
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestWithContext_AddsFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := &Logger{zap.New(core)}

	ctx := WithAdminID(WithTraceID(context.Background(), "t-1"), 9)
	l.WithContext(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, int64(9), fields["admin_id"])
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, zap.L(), FromContext(context.Background()))
	lg := zap.NewNop()
	assert.Same(t, lg, FromContext(IntoContext(context.Background(), lg)))
}
