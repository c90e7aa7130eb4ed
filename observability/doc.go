// Package observability provides OpenTelemetry tracing and metrics for the
// audioscribe service.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("audioscribe"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "pipeline.run")
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("audioscribe"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("audioscribe"))
//	metrics.RecordOperation(ctx, "pipeline", "diarize", "ok", duration)
//
// When neither provider is initialized the otel globals fall back to no-ops,
// so instrumented code paths work unchanged with observability disabled.
package observability
