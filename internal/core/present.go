package core

import (
	"sort"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used when no currency, or an unknown one, is configured.
const DefaultCurrency = money.INR

// DateLayout is the long display form used for transaction rows.
const DateLayout = "January 2, 2006"

// FormatAmount renders amount in the given ISO currency with the currency's
// symbol and minor-unit precision, e.g. "₹1,250.50".
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(strings.ToUpper(strings.TrimSpace(currency)))
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	if minor.Abs().BigInt().IsInt64() {
		return cur.Formatter().Format(minor.IntPart())
	}
	return formatDigits(cur.Formatter(), minor.BigInt().String())
}

// formatDigits applies f's layout to a minor-unit integer given as decimal
// digits, for amounts whose magnitude does not fit in an int64.
func formatDigits(f *money.Formatter, digits string) string {
	negative := strings.HasPrefix(digits, "-")
	sa := strings.TrimPrefix(digits, "-")
	if len(sa) <= f.Fraction {
		sa = strings.Repeat("0", f.Fraction-len(sa)+1) + sa
	}
	if f.Thousand != "" {
		for i := len(sa) - f.Fraction - 3; i > 0; i -= 3 {
			sa = sa[:i] + f.Thousand + sa[i:]
		}
	}
	if f.Fraction > 0 {
		sa = sa[:len(sa)-f.Fraction] + f.Decimal + sa[len(sa)-f.Fraction:]
	}
	sa = strings.Replace(f.Template, "1", sa, 1)
	sa = strings.Replace(sa, "$", f.Grapheme, 1)
	if negative {
		sa = "-" + sa
	}
	return sa
}

// Direction is +1 for money flowing in and -1 for money flowing out.
func (t TransactionType) Direction() int {
	switch t {
	case Income, Borrow:
		return 1
	default:
		return -1
	}
}

// FormatSignedAmount prefixes the formatted amount with the flow direction.
func FormatSignedAmount(tx Transaction, currency string) string {
	if tx.Type.Direction() > 0 {
		return "+" + FormatAmount(tx.Amount, currency)
	}
	return "-" + FormatAmount(tx.Amount, currency)
}

// FormatDate renders t as "January 2, 2006"; zero times render empty.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// SortNewestFirst returns a copy of txs ordered by creation time, newest
// first. Ties keep the server's order.
func SortNewestFirst(txs []Transaction) []Transaction {
	out := append([]Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt.Time)
	})
	return out
}
