package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"wallet/internal/core"
)

func ts(s string) core.Timestamp {
	t, _ := time.Parse(time.RFC3339, s)
	return core.Timestamp{Time: t}
}

func TestSummaryMarkdown(t *testing.T) {
	txs := []core.Transaction{
		{ID: "1", Title: "Salary", Amount: decimal.NewFromInt(100), Category: "Salary", Type: core.Income, CreatedAt: ts("2024-01-01T10:00:00Z")},
		{ID: "2", Title: "Coffee | cake", Amount: decimal.RequireFromString("12.5"), Category: "Friend", Type: core.Lend, RelatedParty: "Sai", CreatedAt: ts("2024-02-03T10:00:00Z")},
	}
	md := SummaryMarkdown(SummaryInput{
		UserID:       "user_1",
		Currency:     "INR",
		Transactions: txs,
		Report:       core.Tally(txs),
	})

	for _, want := range []string{
		"# Wallet of user_1",
		"Balance: **₹87.50**",
		"| ₹100.00 | ₹0.00 | ₹12.50 | ₹0.00 |",
		`| 2 | February 3, 2024 | Coffee \| cake | Friend | Lend | Sai | -₹12.50 |`,
		"| 1 | January 1, 2024 | Salary | Salary | Income |  | +₹100.00 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("summary missing %q\n%s", want, md)
		}
	}
	if strings.Index(md, "February 3, 2024") > strings.Index(md, "January 1, 2024") {
		t.Errorf("transactions not newest first:\n%s", md)
	}
	if strings.Contains(md, "Showing last loaded data") {
		t.Errorf("unexpected stale banner")
	}
}

func TestSummaryMarkdown_EmptyAndStale(t *testing.T) {
	md := SummaryMarkdown(SummaryInput{UserID: "u", Currency: "USD", Err: errors.New("ledger unreachable")})
	for _, want := range []string{"_No transactions yet._", "Balance: **$0.00**", "Showing last loaded data: ledger unreachable"} {
		if !strings.Contains(md, want) {
			t.Errorf("summary missing %q\n%s", want, md)
		}
	}
}

func TestCategoriesMarkdown(t *testing.T) {
	md := CategoriesMarkdown()
	if !strings.Contains(md, "| Borrow | Bank, Friend, Emergency, Other |") {
		t.Errorf("categories table:\n%s", md)
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, "# Title\n\nbody text", Options{Style: "notty"}); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if !strings.Contains(buf.String(), "body text") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSectionsAreSeparable(t *testing.T) {
	in := SummaryInput{UserID: "u", Currency: "INR"}
	if md := ReportMarkdown(in); strings.Contains(md, "No transactions") || !strings.Contains(md, "Balance:") {
		t.Errorf("report:\n%s", md)
	}
	if md := TransactionsMarkdown(in); strings.Contains(md, "Balance:") || !strings.Contains(md, "_No transactions yet._") {
		t.Errorf("transactions:\n%s", md)
	}
}
