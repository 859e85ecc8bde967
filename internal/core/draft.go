package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationCode names the first rule a draft failed.
type ValidationCode string

const (
	AmountRequired       ValidationCode = "amount_required"
	CategoryRequired     ValidationCode = "category_required"
	TitleRequired        ValidationCode = "title_required"
	CounterpartyRequired ValidationCode = "counterparty_required"
)

// ValidationError is a local, pre-submission rejection of a transaction.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var (
	ErrAmountRequired       = &ValidationError{Code: AmountRequired, Message: "amount must be a positive number"}
	ErrCategoryRequired     = &ValidationError{Code: CategoryRequired, Message: "category is required for the selected type"}
	ErrTitleRequired        = &ValidationError{Code: TitleRequired, Message: "title is required"}
	ErrCounterpartyRequired = &ValidationError{Code: CounterpartyRequired, Message: "related party is required for lend and borrow"}
)

// Draft is the editable state of the create-transaction form.
type Draft struct {
	Type         TransactionType
	Title        string
	Amount       string
	Category     string
	RelatedParty string
}

// NewDraft returns an empty draft of the given type.
func NewDraft(t TransactionType) Draft {
	return Draft{Type: t}
}

// SetType switches the draft's type. Category and related party depend on
// the type, so both are cleared even when t equals the current type.
func (d *Draft) SetType(t TransactionType) {
	d.Type = t
	d.Category = ""
	d.RelatedParty = ""
}

// NewTransaction is a validated, normalized creation payload.
type NewTransaction struct {
	Title        string
	Amount       decimal.Decimal
	Category     string
	Type         TransactionType
	RelatedParty string
	UserID       string
}

// Validate checks the draft and returns the normalized payload or the first
// failing rule: amount, category, title, counterparty.
func (d Draft) Validate() (NewTransaction, error) {
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return NewTransaction{}, err
	}
	tx := NewTransaction{
		Title:        strings.TrimSpace(d.Title),
		Amount:       amount,
		Category:     strings.TrimSpace(d.Category),
		Type:         d.Type,
		RelatedParty: strings.TrimSpace(d.RelatedParty),
	}
	if err := tx.Validate(); err != nil {
		return NewTransaction{}, err
	}
	if !tx.Type.NeedsCounterparty() {
		tx.RelatedParty = ""
	}
	return tx, nil
}

// Validate applies the draft rules to an already-built payload.
func (tx NewTransaction) Validate() error {
	if !tx.Amount.IsPositive() {
		return ErrAmountRequired
	}
	category := strings.TrimSpace(tx.Category)
	if category == "" || !tx.Type.HasCategory(category) {
		return ErrCategoryRequired
	}
	if strings.TrimSpace(tx.Title) == "" {
		return ErrTitleRequired
	}
	if tx.Type.NeedsCounterparty() && strings.TrimSpace(tx.RelatedParty) == "" {
		return ErrCounterpartyRequired
	}
	return nil
}
