package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrom_DefaultWhenEmpty(t *testing.T) {
	t.Parallel()

	require.Same(t, slog.Default(), From(context.Background()))
}

func TestInto_From_RoundTrip(t *testing.T) {
	t.Parallel()

	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := Into(context.Background(), l)

	require.Same(t, l, From(ctx))
}

func TestFrom_NilLoggerFallsBack(t *testing.T) {
	t.Parallel()

	var l *slog.Logger
	ctx := Into(context.Background(), l)

	require.Same(t, slog.Default(), From(ctx))
}

func TestWith_AddsAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))

	ctx, l := With(Into(context.Background(), base), "request_id", "rid-1")
	l.Info("mark")
	From(ctx).Info("mark2")

	require.Contains(t, buf.String(), "msg=mark request_id=rid-1")
	require.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("request_id=rid-1")))
}
