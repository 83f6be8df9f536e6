/*
Package tracing provides lightweight request and operation tracing.

Spans carry a trace id propagated through context.Context and the
X-Trace-ID / X-Span-ID headers. Finished spans are queued and logged by a
collector goroutine; Close drains the queue.

# Usage

	tracer := tracing.New("vpm", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "registry.install")
	span.SetTag("package", name)
	defer func() { tracer.End(span, err) }()

A nil *Tracer is valid: it hands out nil spans and records nothing.
*/
package tracing
