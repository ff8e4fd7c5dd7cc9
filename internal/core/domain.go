package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is one recorded transaction. It is immutable once built.
	Expense struct {
		amount      Money
		category    string
		description string
		date        Date
	}

	// Budget is a spending ceiling for a single category paired with the
	// running total of what has been spent against it.
	Budget struct {
		category string
		limit    Money
		spent    Money
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrMissingField     = errors.New("missing required field")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrDescriptionLong  = errors.New("description too long (max 200 characters)")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time of day from t, keeping its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// Today returns the current calendar date in the local time zone.
func Today() Date {
	return DateOf(time.Now())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// SameMonth reports whether d falls in the same calendar month and year as t.
func (d Date) SameMonth(t time.Time) bool {
	return d.Year() == t.Year() && d.Month() == int(t.Month())
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// NewExpense builds an expense record. Nothing is validated here: callers
// that accept user input are expected to call Validate first.
func NewExpense(amount Money, category, description string, date Date) Expense {
	return Expense{
		amount:      amount,
		category:    category,
		description: description,
		date:        date,
	}
}

func (e Expense) Amount() Money       { return e.amount }
func (e Expense) Category() string    { return e.category }
func (e Expense) Description() string { return e.description }
func (e Expense) Date() Date          { return e.date }

// String renders the expense as "2025-01-21 - $30.00 - Food - lunch".
func (e Expense) String() string {
	return fmt.Sprintf("%s - $%s - %s - %s", e.date, e.amount, e.category, e.description)
}

func (e Expense) Validate() error {
	if err := e.date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(e.description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.description) > 200 {
		return ErrDescriptionLong
	}
	if err := e.amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// NewBudget starts a budget for category with nothing spent.
func NewBudget(category string, limit Money) Budget {
	return Budget{category: category, limit: limit}
}

// AddExpense increases the spent total. The amount is neither clamped nor
// sign-checked.
func (b *Budget) AddExpense(amount Money) {
	b.spent = b.spent.Add(amount)
}

// IsOverBudget reports whether spent strictly exceeds the limit. Spending
// exactly the limit is not over budget.
func (b Budget) IsOverBudget() bool {
	return b.spent.Cents > b.limit.Cents
}

// Remaining is limit minus spent and goes negative once over budget.
func (b Budget) Remaining() Money {
	return b.limit.Sub(b.spent)
}

func (b Budget) Category() string { return b.category }
func (b Budget) Limit() Money     { return b.limit }
func (b Budget) Spent() Money     { return b.spent }
