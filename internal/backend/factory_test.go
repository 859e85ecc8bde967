package backend

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"wallet/internal/config"
	"wallet/internal/ledger/httpapi"
	"wallet/internal/ledger/memory"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{LedgerBackend: "sqlite"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg, err := FromAppConfig(&config.Config{
		LedgerBackend: "http",
		LedgerAPIURL:  "http://localhost:8081/api",
		HTTPTimeout:   5 * time.Second,
		SeedDirectory: "seed",
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != HTTPBackend || cfg.APIURL != "http://localhost:8081/api" || cfg.Timeout != 5*time.Second || cfg.DataDirectory != "seed" {
		t.Fatalf("unexpected backend config %+v", cfg)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{"http ok", Config{Type: HTTPBackend, APIURL: "http://x/api", Timeout: time.Second}, ""},
		{"http without url", Config{Type: HTTPBackend, Timeout: time.Second}, "ledger API URL is required"},
		{"http without timeout", Config{Type: HTTPBackend, APIURL: "http://x/api"}, "timeout must be positive"},
		{"memory ok", Config{Type: MemoryBackend}, ""},
		{"unknown", Config{Type: "sheets"}, "invalid backend type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestFactory_CreateBackend(t *testing.T) {
	f := NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	res, err := f.CreateBackend(ctx, Config{Type: HTTPBackend, APIURL: "http://localhost:8081/api", Timeout: time.Second})
	if err != nil {
		t.Fatalf("http backend: %v", err)
	}
	if _, ok := res.Client.(*httpapi.Client); !ok {
		t.Fatalf("client = %T, want *httpapi.Client", res.Client)
	}
	if res.Cleanup == nil || res.Cleanup() != nil {
		t.Fatal("http backend should provide a cleanup")
	}

	res, err = f.CreateBackend(ctx, Config{Type: MemoryBackend, DataDirectory: t.TempDir()})
	if err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if _, ok := res.Client.(*memory.Store); !ok {
		t.Fatalf("client = %T, want *memory.Store", res.Client)
	}

	if _, err := f.CreateBackend(ctx, Config{Type: HTTPBackend, APIURL: "ftp://nope", Timeout: time.Second}); err == nil {
		t.Fatal("expected error for invalid API URL")
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	if len(got) != 2 || got[0] != "http" || got[1] != "memory" {
		t.Fatalf("GetBackendTypeStrings() = %v", got)
	}
}
