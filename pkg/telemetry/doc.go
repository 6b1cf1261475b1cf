// Package telemetry provides observability instrumentation for talevault.
//
// The telemetry package integrates structured logging (zerolog),
// distributed tracing (OpenTelemetry), and metrics (Prometheus) into a
// unified system for monitoring the variable store and the dialogue
// script runtime.
//
// # Usage
//
// Initialize telemetry at application startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceName = "talevault"
//	cfg.ServiceVersion = "1.0.0"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
// Add telemetry to context so downstream components can pick it up:
//
//	ctx = tel.WithContext(ctx)
//
// # Structured Logging
//
// The logger provides component-specific logging with context propagation:
//
//	logger := tel.Logger.NewComponentLogger("dialogue")
//	logger = logger.WithSessionID(sessionID).WithScript(path)
//	logger.Info("Running dialogue script")
//	logger.WithError(err).Error("Script run failed")
//
// # Distributed Tracing
//
// Tracing covers script runs and store operations:
//
//	ctx, span := tel.Tracer.StartScriptSpan(ctx, sessionID, path)
//	defer span.End()
//
//	if err != nil {
//	    telemetry.RecordError(span, err)
//	}
//
// Supported exporters: OTLP/gRPC (production), stdout (development),
// none (testing).
//
// # Metrics
//
// Key metrics exposed at /metrics:
//
//   - talevault_variable_reads_total{kind,result}
//   - talevault_variable_writes_total{kind}
//   - talevault_type_conflicts_total{kind}
//   - talevault_store_clears_total
//   - talevault_store_op_duration_seconds{operation}
//   - talevault_script_runs_total{status}
//   - talevault_script_run_duration_seconds{status}
//   - talevault_errors_by_class_total{class}
package telemetry
