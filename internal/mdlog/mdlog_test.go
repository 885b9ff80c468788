package mdlog_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/mdnotes/mdls/internal/mdlog"
	"github.com/stretchr/testify/require"
)

func TestNewTestCapturesLogLines(t *testing.T) {
	var buf bytes.Buffer
	logger := mdlog.NewTest(&buf)
	logger.Info("document opened", "uri", "file:///a.md")
	require.Contains(t, buf.String(), "document opened")
	require.Contains(t, buf.String(), "file:///a.md")
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := mdlog.NewTest(&buf)
	ctx := mdlog.ContextWithLogger(context.Background(), logger)
	mdlog.FromContext(ctx).Warn("resolution failed", "target", "missing.md")
	require.True(t, strings.Contains(buf.String(), "resolution failed"))
}

func TestFromContextWithoutLoggerReturnsNop(t *testing.T) {
	logger := mdlog.FromContext(context.Background())
	require.NotNil(t, logger)
}

func TestNewWritesToSidecarFile(t *testing.T) {
	path := t.TempDir() + "/mdls.log"
	logger, err := mdlog.New(mdlog.Options{Path: path, JSON: true})
	require.NoError(t, err)
	logger.Info("server started")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "server started")
}
