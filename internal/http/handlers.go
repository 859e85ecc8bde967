package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"wallet/internal/core"
	"wallet/internal/ledger"
	applog "wallet/internal/log"
	"wallet/internal/storage"
)

// maxBodyBytes bounds create request bodies.
const maxBodyBytes = 64 << 10

// handleHealth checks that the database answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Health check failed", applog.FieldError, err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w, r)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	var req ledger.CreateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		logger.WarnContext(ctx, "Invalid create request body", applog.FieldError, err)
		writeMessage(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := req.NewTransaction()
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, core.ErrAmountRequired.Message)
		return
	}
	tx.Title = strings.TrimSpace(tx.Title)
	tx.RelatedParty = strings.TrimSpace(tx.RelatedParty)
	tx.UserID = strings.TrimSpace(tx.UserID)
	if !tx.Type.NeedsCounterparty() {
		tx.RelatedParty = ""
	}

	if tx.UserID == "" {
		writeMessage(w, r, http.StatusBadRequest, "user_id is required")
		return
	}
	if err := tx.Validate(); err != nil {
		var ve *core.ValidationError
		msg := err.Error()
		if errors.As(err, &ve) {
			msg = ve.Message
		}
		logger.InfoContext(ctx, "Rejected transaction",
			applog.FieldUserID, tx.UserID,
			applog.FieldError, msg)
		writeMessage(w, r, http.StatusBadRequest, msg)
		return
	}

	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create transaction",
			applog.NewFields().
				WithOperation(applog.OpCreate).
				WithError(err, "database_error").
				WithTransaction(tx.UserID, tx.Title, tx.Amount.String(), tx.Category, string(tx.Type)).
				ToSlice()...)
		writeMessage(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.invalidateReport(created.UserID)

	logger.InfoContext(ctx, "Transaction created",
		applog.NewFields().
			WithOperation(applog.OpCreate).
			WithTransaction(created.UserID, created.Title, created.Amount.String(), created.Category, string(created.Type)).
			ToSlice()...)

	NewJSONResponse().Status(http.StatusCreated).Body(created).Write(w, r)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := pathParam(r, "userID")
	if !ok {
		writeMessage(w, r, http.StatusBadRequest, "Invalid user id")
		return
	}

	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to list transactions",
			applog.FieldOperation, applog.OpList,
			applog.FieldUserID, userID,
			applog.FieldError, err)
		writeMessage(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	NewJSONResponse().Body(txs).Write(w, r)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, ok := pathParam(r, "userID")
	if !ok {
		writeMessage(w, r, http.StatusBadRequest, "Invalid user id")
		return
	}

	if report, hit := s.cachedReport(userID); hit {
		NewJSONResponse().Header("X-Cache", "HIT").Body(report).Write(w, r)
		return
	}

	report, err := s.store.Report(ctx, userID)
	if err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Failed to compute report",
			applog.FieldOperation, applog.OpReport,
			applog.FieldUserID, userID,
			applog.FieldError, err)
		writeMessage(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.storeReport(userID, report)

	NewJSONResponse().Header("X-Cache", "MISS").Body(report).Write(w, r)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	raw, _ := pathParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, r, http.StatusNotFound, "Transaction not found")
		return
	}

	tx, err := s.store.GetTransaction(ctx, id)
	if err == nil {
		err = s.store.DeleteTransaction(ctx, id)
	}
	if errors.Is(err, storage.ErrNotFound) {
		writeMessage(w, r, http.StatusNotFound, "Transaction not found")
		return
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to delete transaction",
			applog.FieldOperation, applog.OpDelete,
			applog.FieldTransactionID, id,
			applog.FieldError, err)
		writeMessage(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.invalidateReport(tx.UserID)

	logger.InfoContext(ctx, "Transaction deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldTransactionID, id,
		applog.FieldUserID, tx.UserID)

	writeMessage(w, r, http.StatusOK, "Transaction deleted successfully")
}

// handleRateLimited answers 429 in the service's error envelope.
func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded", applog.FieldPath, r.URL.Path)
	writeMessage(w, r, http.StatusTooManyRequests, "Too many requests")
}

// pathParam returns the unescaped chi URL parameter.
func pathParam(r *http.Request, name string) (string, bool) {
	v, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}
