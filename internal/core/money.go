// Package core provides money parsing and handling utilities.
//
// This file contains the parsing of user-typed amounts into decimals.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a typed amount into a positive decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and ignores
// surrounding spaces. Signs, exponents, thousands separators and anything that
// is not a plain decimal number are rejected, as are zero values.
//
// Examples:
//
//	ParseAmount("250")    -> 250, nil
//	ParseAmount("12,50")  -> 12.5, nil
//	ParseAmount("-1")     -> 0, ErrAmountRequired
//	ParseAmount("")       -> 0, ErrAmountRequired
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrAmountRequired
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrAmountRequired
	}
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '.':
		default:
			return decimal.Zero, ErrAmountRequired
		}
	}
	if digits == 0 {
		return decimal.Zero, ErrAmountRequired
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrAmountRequired
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrAmountRequired
	}
	return d, nil
}
