package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestMetricsDisabled tests that a disabled config yields a no-op collector
func TestMetricsDisabled(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Enabled: false})
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	// No-op collectors must not panic
	m.RecordVariableRead("text", true)
	m.RecordVariableWrite("number")
	m.RecordTypeConflict("boolean")
	m.RecordStoreClear()
	m.RecordStoreOp("set", time.Millisecond)
	m.RecordScriptRun("succeeded", time.Millisecond)
	m.RecordError("conflict")
}

// TestMetricsHandler tests that recorded metrics appear on the endpoint
func TestMetricsHandler(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{
		Enabled:   true,
		Namespace: "talevault",
		Path:      "/metrics",
	})
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}

	m.RecordVariableRead("text", true)
	m.RecordVariableWrite("number")
	m.RecordTypeConflict("text")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		"talevault_variable_reads_total",
		"talevault_variable_writes_total",
		"talevault_type_conflicts_total",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected metric %s in output", want)
		}
	}
}

// TestConfigValidate tests telemetry config validation
func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid log level")
	}

	cfg = DefaultConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid exporter")
	}
}
