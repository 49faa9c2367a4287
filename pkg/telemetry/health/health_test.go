package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestReadiness_AllHealthy(t *testing.T) {
	checker := New(time.Second)
	checker.Register("policies", func(ctx context.Context) error { return nil })
	checker.Register("provider", func(ctx context.Context) error { return nil })

	report := checker.Readiness(context.Background())
	if report.Status != "ready" {
		t.Errorf("Status = %q, want ready", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Errorf("len(Checks) = %d, want 2", len(report.Checks))
	}
	for name, result := range report.Checks {
		if result.Status != "ok" {
			t.Errorf("check %s = %q, want ok", name, result.Status)
		}
	}
}

func TestReadiness_DegradesOnFailure(t *testing.T) {
	checker := New(time.Second)
	checker.Register("policies", func(ctx context.Context) error { return nil })
	checker.Register("provider", func(ctx context.Context) error { return errors.New("snapshot missing") })

	report := checker.Readiness(context.Background())
	if report.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", report.Status)
	}
	if report.Checks["provider"].Message != "snapshot missing" {
		t.Errorf("provider message = %q, want the check error", report.Checks["provider"].Message)
	}
	if report.Checks["policies"].Status != "ok" {
		t.Errorf("policies = %q, want ok despite the sibling failure", report.Checks["policies"].Status)
	}
}

func TestReadiness_TimesOutSlowChecks(t *testing.T) {
	checker := New(20 * time.Millisecond)
	checker.Register("stuck", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(5 * time.Millisecond)
		return ctx.Err()
	})

	report := checker.Readiness(context.Background())
	if report.Status != "degraded" {
		t.Errorf("Status = %q, want degraded on timeout", report.Status)
	}
}

func TestReadiness_NoChecksIsReady(t *testing.T) {
	report := New(0).Readiness(context.Background())
	if report.Status != "ready" {
		t.Errorf("Status = %q, want ready with no checks", report.Status)
	}
}

func TestReadinessHandler_StatusCodes(t *testing.T) {
	checker := New(time.Second)
	checker.Register("ok", func(ctx context.Context) error { return nil })

	rec := httptest.NewRecorder()
	checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthy status = %d, want 200", rec.Code)
	}

	checker.Register("broken", func(ctx context.Context) error { return errors.New("down") })
	rec = httptest.NewRecorder()
	checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded status = %d, want 503", rec.Code)
	}

	rec = httptest.NewRecorder()
	checker.ReadinessHandler()(rec, httptest.NewRequest(http.MethodPost, "/ready", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", rec.Code)
	}
}

func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	New(0).LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if report.Status != "ok" {
		t.Errorf("Status = %q, want ok", report.Status)
	}
}

func TestVersionHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler("1.2.0", "abc123", "2026-08-30")(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if info.Version != "1.2.0" || info.Commit != "abc123" {
		t.Errorf("info = %+v, want the build values", info)
	}
	if info.GoVersion == "" {
		t.Error("GoVersion is empty")
	}
}
