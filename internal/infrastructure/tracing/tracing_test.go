package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObserved(t *testing.T) (*Tracer, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	tracer := New("vpm", zap.New(core))
	t.Cleanup(tracer.Close)
	return tracer, logs
}

func TestSpanInheritsTrace(t *testing.T) {
	tracer, _ := newObserved(t)

	parent, ctx := tracer.StartSpan(context.Background(), "parent")
	require.NotNil(t, parent)
	assert.NotEmpty(t, parent.TraceID)
	assert.Empty(t, parent.ParentID)
	assert.Equal(t, parent.TraceID, GetTraceID(ctx))
	assert.Equal(t, parent.SpanID, GetSpanID(ctx))

	child, _ := tracer.StartSpan(ctx, "child")
	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.NotEqual(t, parent.SpanID, child.SpanID)
}

func TestEndLogsSpans(t *testing.T) {
	tracer, logs := newObserved(t)

	ok, _ := tracer.StartSpan(context.Background(), "registry.install")
	ok.SetTag("package", "com.example.app")
	tracer.End(ok, nil)

	failed, _ := tracer.StartSpan(context.Background(), "registry.remove")
	tracer.End(failed, errors.New("boom"))
	assert.Equal(t, 500, failed.StatusCode)
	assert.False(t, failed.EndTime.IsZero())

	tracer.Close()

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "com.example.app", entries[0].ContextMap()["package"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "registry.remove", entries[1].ContextMap()["operation"])
}

func TestSubmitAfterCloseIsDropped(t *testing.T) {
	tracer, logs := newObserved(t)
	tracer.Close()

	span, _ := tracer.StartSpan(context.Background(), "late")
	tracer.End(span, nil)
	tracer.Close()
	assert.Zero(t, logs.Len())
}

func TestNilTracer(t *testing.T) {
	var tracer *Tracer
	ctx := context.Background()

	span, got := tracer.StartSpan(ctx, "noop")
	assert.Nil(t, span)
	assert.Equal(t, ctx, got)

	span.SetTag("k", "v")
	span.SetStatus(200)
	span.SetError(errors.New("x"))
	span.Finish()
	tracer.End(span, nil)
	tracer.Close()
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tracer, logs := newObserved(t)

	var seen TraceID
	r := gin.New()
	r.Use(HTTPMiddleware(tracer))
	r.GET("/packages/:name", func(c *gin.Context) {
		seen = GetTraceID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/packages/com.example.app", nil)
	req.Header.Set(TraceHeader, "trace-from-client")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, TraceID("trace-from-client"), seen)
	assert.Equal(t, "trace-from-client", w.Header().Get(TraceHeader))
	assert.NotEmpty(t, w.Header().Get(SpanHeader))

	tracer.Close()
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "GET /packages/:name", fields["operation"])
	assert.Equal(t, "204", fields["http.status"])
}

func TestFormatTrace(t *testing.T) {
	assert.Equal(t, "[trace:t span:s]", FormatTrace("t", "s"))
}
