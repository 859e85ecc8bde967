package core

import "github.com/shopspring/decimal"

// Tally aggregates transactions into a Report. Only ledger backends use it;
// clients always fetch the report from the server.
//
// Balance counts income and borrowed money as inflow, expenses and lent
// money as outflow.
func Tally(txs []Transaction) Report {
	r := Report{
		Balance:   decimal.Zero,
		Income:    decimal.Zero,
		Expense:   decimal.Zero,
		Lending:   decimal.Zero,
		Borrowing: decimal.Zero,
	}
	for _, tx := range txs {
		switch tx.Type {
		case Income:
			r.Income = r.Income.Add(tx.Amount)
		case Expense:
			r.Expense = r.Expense.Add(tx.Amount)
		case Lend:
			r.Lending = r.Lending.Add(tx.Amount)
		case Borrow:
			r.Borrowing = r.Borrowing.Add(tx.Amount)
		}
	}
	r.Balance = r.Income.Add(r.Borrowing).Sub(r.Expense).Sub(r.Lending)
	return r
}
