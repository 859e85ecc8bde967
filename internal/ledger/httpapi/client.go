// Package httpapi implements the ledger ports against the remote ledger
// service's HTTP API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wallet/internal/core"
	"wallet/internal/ledger"
)

// maxErrorBody bounds how much of a failed response is read.
const maxErrorBody = 64 << 10

var (
	errBaseURLFormat = errors.New("invalid ledger base URL")
	errBodyDecode    = errors.New("error decoding response body")
)

// Client talks to the ledger service. It performs no retries.
type Client struct {
	httpClient *http.Client
	base       string
}

// Ensure interface conformance
var _ ledger.Client = (*Client)(nil)

// New creates a Client for baseURL, e.g. "https://host/api". A nil
// httpClient gets NewHTTPClient(10s).
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", errBaseURLFormat, baseURL)
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(10 * time.Second)
	}
	return &Client{
		httpClient: httpClient,
		base:       strings.TrimRight(u.String(), "/"),
	}, nil
}

// NewHTTPClient creates an HTTP client with connection pooling whose overall
// request timeout is timeout. Timeouts surface as ledger.ErrUnreachable.
func NewHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,

		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// ListTransactions implements ledger.TransactionLister
func (c *Client) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := c.getJSON(ctx, ledger.OpList, c.url("transactions", userID), &txs); err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	return txs, nil
}

// FetchReport implements ledger.ReportReader
func (c *Client) FetchReport(ctx context.Context, userID string) (core.Report, error) {
	var report core.Report
	if err := c.getJSON(ctx, ledger.OpReport, c.url("transactions", "report", userID), &report); err != nil {
		return core.Report{}, err
	}
	return report, nil
}

// CreateTransaction implements ledger.TransactionWriter
func (c *Client) CreateTransaction(ctx context.Context, tx core.NewTransaction) error {
	body, err := json.Marshal(ledger.NewCreateRequest(tx))
	if err != nil {
		return fmt.Errorf("encode transaction: %w", err)
	}
	resp, err := c.do(ctx, ledger.OpCreate, http.MethodPost, c.url("transactions"), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if isSuccess(resp.StatusCode) {
		drain(resp.Body)
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var eb ledger.ErrorBody
		if json.Unmarshal(raw, &eb) == nil && strings.TrimSpace(eb.Text()) != "" {
			return &ledger.ServerValidationError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(eb.Text())}
		}
	}
	return ledger.NotOKError(ledger.OpCreate, resp.StatusCode, bodyError(raw))
}

// DeleteTransaction implements ledger.TransactionDeleter
func (c *Client) DeleteTransaction(ctx context.Context, id core.ID) error {
	resp, err := c.do(ctx, ledger.OpDelete, http.MethodDelete, c.url("transactions", id.String()), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return ledger.NotOKError(ledger.OpDelete, resp.StatusCode, bodyError(raw))
	}
	drain(resp.Body)
	return nil
}

func (c *Client) getJSON(ctx context.Context, op, target string, out any) error {
	resp, err := c.do(ctx, op, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return ledger.NotOKError(op, resp.StatusCode, bodyError(raw))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// a dropped connection mid-body is still "no usable response"
		if isNetworkError(err) {
			return ledger.UnreachableError(op, err)
		}
		return ledger.NotOKError(op, resp.StatusCode, fmt.Errorf("%w: %w", errBodyDecode, err))
	}
	return nil
}

func (c *Client) do(ctx context.Context, op, method, target string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.DebugContext(ctx, "Ledger request failed",
			"component", "ledger",
			"operation", op,
			"method", method,
			"error", err)
		return nil, ledger.UnreachableError(op, err)
	}
	slog.DebugContext(ctx, "Ledger request completed",
		"component", "ledger",
		"operation", op,
		"method", method,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())
	return resp, nil
}

func (c *Client) url(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.base)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func isNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}

func bodyError(raw []byte) error {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nil
	}
	var eb ledger.ErrorBody
	if json.Unmarshal(raw, &eb) == nil && eb.Text() != "" {
		text = eb.Text()
	}
	if len(text) > 200 {
		text = text[:200]
	}
	return errors.New(text)
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxErrorBody))
}
