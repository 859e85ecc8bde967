package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1250.5", "INR", "₹1,250.50"},
		{"0", "INR", "₹0.00"},
		{"12.345", "INR", "₹12.35"},
		{"99.99", "", "₹99.99"},
		{"99.99", "XXX-unknown", "₹99.99"},
		{"10", "inr", "₹10.00"},
		// minor units beyond int64
		{"12345678901234567890.12", "INR", "₹12,345,678,901,234,567,890.12"},
		{"-92233720368547758.08", "INR", "-₹92,233,720,368,547,758.08"},
		{"100000000000000000000", "USD", "$100,000,000,000,000,000,000.00"},
	}
	for _, tc := range cases {
		got := FormatAmount(decimal.RequireFromString(tc.amount), tc.currency)
		if got != tc.want {
			t.Errorf("FormatAmount(%s, %q) = %q, want %q", tc.amount, tc.currency, got, tc.want)
		}
	}
}

func TestFormatSignedAmount(t *testing.T) {
	in := Transaction{Type: Borrow, Amount: decimal.NewFromInt(5)}
	out := Transaction{Type: Lend, Amount: decimal.NewFromInt(5)}
	if got := FormatSignedAmount(in, "INR"); got != "+₹5.00" {
		t.Errorf("borrow = %q", got)
	}
	if got := FormatSignedAmount(out, "INR"); got != "-₹5.00" {
		t.Errorf("lend = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(time.Date(2025, 7, 4, 13, 0, 0, 0, time.UTC)); got != "July 4, 2025" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := FormatDate(time.Time{}); got != "" {
		t.Errorf("zero date = %q", got)
	}
}

func TestSortNewestFirst(t *testing.T) {
	day := func(d int) Timestamp { return Timestamp{time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)} }
	txs := []Transaction{
		{ID: "a", CreatedAt: day(1)},
		{ID: "b", CreatedAt: day(3)},
		{ID: "c", CreatedAt: day(2)},
		{ID: "d", CreatedAt: day(3)},
	}
	got := SortNewestFirst(txs)
	want := []ID{"b", "d", "c", "a"}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d = %s, want %s (%v)", i, got[i].ID, id, got)
		}
	}
	if txs[0].ID != "a" {
		t.Fatal("input slice must not be reordered")
	}
}
