package ledger

import (
	"encoding/json"
	"fmt"

	"wallet/internal/core"

	"github.com/shopspring/decimal"
)

// CreateRequest is the JSON body of POST /transactions.
type CreateRequest struct {
	Title       string               `json:"transaction_title"`
	Amount      json.Number          `json:"transaction_amount"`
	Category    string               `json:"transaction_category"`
	Type        core.TransactionType `json:"transaction_type"`
	UserID      string               `json:"user_id"`
	RelatedUser *string              `json:"related_user"`
}

// ErrorBody is the JSON error envelope of the ledger service.
type ErrorBody struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Text returns whichever of message/error is set.
func (b ErrorBody) Text() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// NewCreateRequest encodes tx for the wire. related_user is null unless the
// type carries a counterparty.
func NewCreateRequest(tx core.NewTransaction) CreateRequest {
	req := CreateRequest{
		Title:    tx.Title,
		Amount:   json.Number(tx.Amount.String()),
		Category: tx.Category,
		Type:     tx.Type,
		UserID:   tx.UserID,
	}
	if tx.Type.NeedsCounterparty() {
		party := tx.RelatedParty
		req.RelatedUser = &party
	}
	return req
}

// NewTransaction decodes the request into a payload. It does not validate.
func (r CreateRequest) NewTransaction() (core.NewTransaction, error) {
	amount := decimal.Zero
	if r.Amount != "" {
		var err error
		amount, err = decimal.NewFromString(r.Amount.String())
		if err != nil {
			return core.NewTransaction{}, fmt.Errorf("decode amount: %w", err)
		}
	}
	tx := core.NewTransaction{
		Title:    r.Title,
		Amount:   amount,
		Category: r.Category,
		Type:     r.Type,
		UserID:   r.UserID,
	}
	if r.RelatedUser != nil {
		tx.RelatedParty = *r.RelatedUser
	}
	return tx, nil
}
