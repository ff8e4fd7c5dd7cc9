// Package core holds the expense and budget records shared by the ledger
// and every view.
//
// This file contains the parsing and formatting of monetary amounts. Amounts
// are kept as integer cents so totals never drift.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// MaxAmountCents is the largest amount a single expense or budget limit may
// carry ($1,000,000,000.00). It keeps running totals far from int64 overflow.
const MaxAmountCents int64 = 1_000_000_000_00

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators, an
// optional leading dollar sign, and performs half-up rounding on the third
// decimal place. Returns ErrInvalidAmount for malformed text, negative
// values, zero, or anything above MaxAmountCents.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("$12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToCents("12.344") -> 1234, nil
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if iv > MaxAmountCents/100 {
		return 0, ErrInvalidAmount
	}
	// First two fractional digits, then half-up on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 || cents > MaxAmountCents {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseMoney is ParseDecimalToCents wrapped into a Money value.
func ParseMoney(s string) (Money, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// String formats the amount with exactly two decimals, e.g. "30.00" or "-5.50".
func (m Money) String() string {
	c := m.Cents
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// Dollars returns the amount as a float64 for display purposes only.
// Use cents for calculations.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}
