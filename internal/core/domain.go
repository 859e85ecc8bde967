package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "Income"
	Expense TransactionType = "Expense"
	Lend    TransactionType = "Lend"
	Borrow  TransactionType = "Borrow"
)

type (
	TransactionType string

	// ID is the server-assigned transaction identifier. The ledger service
	// may encode it as a JSON number or string; it is kept opaque.
	ID string

	// Timestamp is a server timestamp accepting RFC 3339 or plain dates.
	Timestamp struct {
		time.Time
	}

	Transaction struct {
		ID           ID              `json:"id"`
		Title        string          `json:"transaction_title"`
		Amount       decimal.Decimal `json:"transaction_amount"`
		Category     string          `json:"transaction_category"`
		Type         TransactionType `json:"transaction_type"`
		RelatedParty string          `json:"related_user,omitempty"`
		CreatedAt    Timestamp       `json:"created_at"`
		UserID       string          `json:"user_id"`
	}

	// Report is the server-computed aggregate for one user.
	Report struct {
		Balance   decimal.Decimal `json:"balance"`
		Income    decimal.Decimal `json:"income"`
		Expense   decimal.Decimal `json:"expense"`
		Lending   decimal.Decimal `json:"lending"`
		Borrowing decimal.Decimal `json:"borrowing"`
	}
)

// categoryTable is the closed set of categories per transaction type.
var categoryTable = map[TransactionType][]string{
	Income:  {"Salary", "Bonus", "Interest", "Other"},
	Expense: {"Food", "Sport", "Travelling", "Petrol", "Movies", "Other"},
	Lend:    {"Friend", "Family", "Loan", "Other"},
	Borrow:  {"Bank", "Friend", "Emergency", "Other"},
}

// Types returns every transaction type in display order.
func Types() []TransactionType {
	return []TransactionType{Income, Expense, Lend, Borrow}
}

// ParseTransactionType matches s case-insensitively against the known types.
func ParseTransactionType(s string) (TransactionType, error) {
	s = strings.TrimSpace(s)
	for _, t := range Types() {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown transaction type %q", s)
}

func (t TransactionType) IsValid() bool {
	_, ok := categoryTable[t]
	return ok
}

// NeedsCounterparty reports whether the type requires a related party.
func (t TransactionType) NeedsCounterparty() bool {
	return t == Lend || t == Borrow
}

// Categories returns a copy of the category set for t, nil for unknown types.
func (t TransactionType) Categories() []string {
	cats, ok := categoryTable[t]
	if !ok {
		return nil
	}
	return append([]string(nil), cats...)
}

// HasCategory reports whether category belongs to t's table.
func (t TransactionType) HasCategory(category string) bool {
	for _, c := range categoryTable[t] {
		if c == category {
			return true
		}
	}
	return false
}

func (id ID) String() string { return string(id) }

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON keeps numeric ids numeric so they round-trip unchanged.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode timestamp: %w", err)
	}
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t
			return nil
		}
	}
	return fmt.Errorf("decode timestamp: unsupported format %q", s)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339))
}
