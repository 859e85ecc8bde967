package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{" error ", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSONFormatWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Format: "json", Component: ComponentSync, Output: &buf})

	logger.Debug("hidden")
	logger.Info("Ledger loaded", FieldUserID, "user_1")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("record is not JSON: %v", err)
	}
	if rec[FieldComponent] != ComponentSync || rec[FieldUserID] != "user_1" || rec["msg"] != "Ledger loaded" {
		t.Errorf("unexpected record %v", rec)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Output: &buf})
	child := base.WithComponent(ComponentHTTP)

	if base.Component() != ComponentApp || child.Component() != ComponentHTTP {
		t.Fatalf("components = %q, %q", base.Component(), child.Component())
	}
	child.Info("hello")
	if !strings.Contains(buf.String(), "component=http") {
		t.Errorf("record missing component: %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got.Logger == nil || got.Component() != "unknown" {
		t.Fatalf("fallback logger = %+v", got)
	}

	var buf bytes.Buffer
	logger := New(Config{Output: &buf})
	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Errorf("request id not propagated: %q", buf.String())
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithOperation(OpCreate).
		WithRequestID("").
		WithError(errors.New("boom"), "not_ok").
		WithHTTPResponse(503, 12, "12ms")

	if _, ok := f[FieldRequestID]; ok {
		t.Error("empty request id should be omitted")
	}
	if f[FieldError] != "boom" || f[FieldErrorType] != "not_ok" || f[FieldSuccess] != false {
		t.Errorf("unexpected fields %v", f)
	}
	if got := len(f.ToSlice()); got != 2*len(f) {
		t.Errorf("ToSlice length = %d", got)
	}
}
