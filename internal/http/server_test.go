package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wallet/internal/core"
	"wallet/internal/ledger"
	"wallet/internal/ledger/httpapi"
	applog "wallet/internal/log"
	"wallet/internal/middleware/ratelimit"
	"wallet/internal/services"
	"wallet/internal/storage"
)

func newTestServer(t *testing.T, opts Options) (*Server, *httptest.Server) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	if opts.Logger == nil {
		opts.Logger = applog.New(applog.Config{Output: io.Discard})
	}
	if opts.RateLimit.RequestsPerSecond == 0 {
		opts.RateLimit = ratelimit.Config{RequestsPerSecond: 1000, Burst: 1000}
	}
	s := NewServer(":0", repo, opts)
	ts := httptest.NewServer(s.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = s.Shutdown(context.Background())
	})
	return s, ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestServer_CreateListReportDelete(t *testing.T) {
	_, ts := newTestServer(t, Options{ReportCacheTTL: time.Minute})

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", map[string]any{
		"transaction_title":    "Salary",
		"transaction_amount":   "1000",
		"transaction_category": "Salary",
		"transaction_type":     "Income",
		"user_id":              "user_1",
		"related_user":         nil,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", resp.StatusCode, body)
	}
	var created core.Transaction
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode created: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() || created.UserID != "user_1" {
		t.Fatalf("created = %+v", created)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/transactions/report/user_1", nil)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("X-Cache") != "MISS" {
		t.Fatalf("report status=%d cache=%s", resp.StatusCode, resp.Header.Get("X-Cache"))
	}
	var report core.Report
	_ = json.Unmarshal(body, &report)
	if !report.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance = %s", report.Balance)
	}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/transactions/report/user_1", nil)
	if resp.Header.Get("X-Cache") != "HIT" {
		t.Fatalf("second report should be cached")
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/transactions/user_1", nil)
	var txs []core.Transaction
	_ = json.Unmarshal(body, &txs)
	if resp.StatusCode != http.StatusOK || len(txs) != 1 {
		t.Fatalf("list status=%d txs=%v", resp.StatusCode, txs)
	}

	resp, body = doJSON(t, http.MethodDelete, ts.URL+"/api/transactions/"+created.ID.String(), nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Transaction deleted successfully") {
		t.Fatalf("delete status=%d body=%s", resp.StatusCode, body)
	}

	// the mutation must invalidate the cached report
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/transactions/report/user_1", nil)
	_ = json.Unmarshal(body, &report)
	if resp.Header.Get("X-Cache") != "MISS" || !report.Balance.IsZero() {
		t.Fatalf("stale report after delete: cache=%s balance=%s", resp.Header.Get("X-Cache"), report.Balance)
	}
}

func TestServer_CreateRejectsInvalidPayloads(t *testing.T) {
	_, ts := newTestServer(t, Options{})

	valid := func() map[string]any {
		return map[string]any{
			"transaction_title":    "Coffee",
			"transaction_amount":   250,
			"transaction_category": "Friend",
			"transaction_type":     "Lend",
			"user_id":              "u1",
			"related_user":         "Sai",
		}
	}
	tests := []struct {
		name    string
		mutate  func(map[string]any)
		message string
	}{
		{"missing user", func(m map[string]any) { delete(m, "user_id") }, "user_id is required"},
		{"zero amount", func(m map[string]any) { m["transaction_amount"] = 0 }, core.ErrAmountRequired.Message},
		{"category of another type", func(m map[string]any) { m["transaction_category"] = "Salary" }, core.ErrCategoryRequired.Message},
		{"blank title", func(m map[string]any) { m["transaction_title"] = "  " }, core.ErrTitleRequired.Message},
		{"lend without counterparty", func(m map[string]any) { m["related_user"] = nil }, core.ErrCounterpartyRequired.Message},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := valid()
			tt.mutate(body)
			resp, raw := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			var eb ledger.ErrorBody
			if err := json.Unmarshal(raw, &eb); err != nil || eb.Text() != tt.message {
				t.Fatalf("body = %s, want message %q", raw, tt.message)
			}
		})
	}

	req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/transactions", strings.NewReader("{"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed JSON status = %d", resp.StatusCode)
	}
}

func TestServer_DeleteUnknown(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	for _, id := range []string{"999", "abc"} {
		resp, _ := doJSON(t, http.MethodDelete, ts.URL+"/api/transactions/"+id, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("delete %s status = %d, want 404", id, resp.StatusCode)
		}
	}
}

func TestServer_Health(t *testing.T) {
	_, ts := newTestServer(t, Options{})
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"status":"ok"`) {
		t.Fatalf("health status=%d body=%s", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Request-ID") == "" || resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("middleware headers missing: %v", resp.Header)
	}
}

func TestServer_RateLimited(t *testing.T) {
	_, ts := newTestServer(t, Options{RateLimit: ratelimit.Config{RequestsPerSecond: 0.01, Burst: 1}})

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first status = %d", resp.StatusCode)
	}
	resp, body := doJSON(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusTooManyRequests || !strings.Contains(string(body), "Too many requests") {
		t.Fatalf("second status=%d body=%s", resp.StatusCode, body)
	}
}

// TestEndToEnd drives the sync controller over HTTP against the service.
func TestEndToEnd(t *testing.T) {
	_, ts := newTestServer(t, Options{ReportCacheTTL: time.Minute})

	client, err := httpapi.New(ts.URL+"/api", nil)
	if err != nil {
		t.Fatalf("httpapi.New: %v", err)
	}
	quiet := applog.New(applog.Config{Output: io.Discard})
	c := services.NewSyncController(client, "user_1", services.SyncControllerConfig{Logger: quiet.Logger})
	defer c.Close()
	ctx := context.Background()

	snap := c.Load(ctx)
	if snap.Err != nil || len(snap.Transactions) != 0 {
		t.Fatalf("initial load: %+v", snap)
	}

	tx, err := core.Draft{Type: core.Lend, Title: "Coffee with Sai", Amount: "250", Category: "Friend", RelatedParty: "Sai"}.Validate()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := c.Create(ctx, tx); err != nil {
		t.Fatalf("create: %v", err)
	}
	snap = c.Snapshot()
	if len(snap.Transactions) != 1 || snap.Transactions[0].RelatedParty != "Sai" {
		t.Fatalf("after create: %+v", snap.Transactions)
	}
	if !snap.Report.Lending.Equal(decimal.NewFromInt(250)) || !snap.Report.Balance.Equal(decimal.NewFromInt(-250)) {
		t.Fatalf("report after create: %+v", snap.Report)
	}

	if err := c.Remove(ctx, snap.Transactions[0].ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	snap = c.Snapshot()
	if len(snap.Transactions) != 0 || !snap.Report.Balance.IsZero() {
		t.Fatalf("after remove: %+v", snap)
	}
	if c.State() != services.StateReady {
		t.Fatalf("state = %s", c.State())
	}
}
