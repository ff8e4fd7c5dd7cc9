package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/ledger"
	"spendwise/internal/log"
)

// User-facing messages shared by the web and terminal views.
const (
	MsgExpenseAdded    = "Expense added successfully"
	MsgInvalidAmount   = "Please enter a valid amount"
	MsgMissingField    = "Please fill in all fields"
	MsgUnknownCategory = "Please choose a category from the list"
	MsgDescriptionLong = "Description is too long (max 200 characters)"
	MsgInvalidInput    = "Please check your input"
)

// AlertPublisher sends budget alerts somewhere outside the process.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, msg *amqp.BudgetAlertMessage) error
}

// ExpenseInput is an expense as typed by a user. A zero Date means today.
type ExpenseInput struct {
	Amount      string
	Category    string
	Description string
	Date        core.Date
}

// BudgetInput is a budget as typed by a user.
type BudgetInput struct {
	Category string
	Amount   string
}

// Outcome is what a view shows after a write.
type Outcome struct {
	Message    string
	Success    bool
	OverBudget bool
	Expense    core.Expense
	// Budget is the category's budget after the write; HasBudget is false
	// when the category has none.
	Budget    core.Budget
	HasBudget bool
}

// Tracker validates user input and applies it to the ledger. When an expense
// leaves its category over budget an alert is published, if a publisher is
// configured.
type Tracker struct {
	ledger     *ledger.Ledger
	categories []string
	known      map[string]bool
	alerts     AlertPublisher
	logger     *log.Logger
	structured *log.StructuredLogger
	now        func() time.Time
}

// NewTracker builds a tracker over l. alerts may be nil.
func NewTracker(l *ledger.Ledger, categories []string, alerts AlertPublisher, logger *log.Logger) *Tracker {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentTracker)
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c] = true
	}
	return &Tracker{
		ledger:     l,
		categories: append([]string(nil), categories...),
		known:      known,
		alerts:     alerts,
		logger:     logger,
		structured: log.NewStructuredLogger(logger),
		now:        time.Now,
	}
}

// Ledger returns the underlying ledger for read-only views.
func (t *Tracker) Ledger() *ledger.Ledger { return t.ledger }

// Categories returns the selectable categories in display order.
func (t *Tracker) Categories() []string {
	return append([]string(nil), t.categories...)
}

// RecordExpense validates in, records it and reports whether the category
// is now over budget.
func (t *Tracker) RecordExpense(ctx context.Context, in ExpenseInput) (Outcome, error) {
	e, err := t.parseExpense(in)
	if err != nil {
		t.logger.DebugContext(ctx, "Rejected expense input",
			log.FieldOperation, log.OpValidate,
			log.FieldErrorType, log.ErrorTypeValidation,
			log.FieldError, err.Error())
		return Outcome{Message: UserMessage(err)}, fmt.Errorf("record expense: %w", err)
	}

	b, hasBudget := t.ledger.Record(e)
	t.structured.LogExpenseRecorded(ctx, e.Description(), e.Amount().Cents, e.Category(), e.Date().String())

	out := Outcome{
		Message:   MsgExpenseAdded,
		Success:   true,
		Expense:   e,
		Budget:    b,
		HasBudget: hasBudget,
	}
	if hasBudget && b.IsOverBudget() {
		out.OverBudget = true
		out.Message = "Budget exceeded for " + e.Category()
		t.structured.LogBudgetExceeded(ctx, b.Category(), b.Limit().Cents, b.Spent().Cents)
		t.publishAlert(ctx, b, e)
	}
	return out, nil
}

// SetBudget validates in and installs the budget, replacing any existing one
// for the same category.
func (t *Tracker) SetBudget(ctx context.Context, in BudgetInput) (Outcome, error) {
	category := strings.TrimSpace(in.Category)
	amount := strings.TrimSpace(in.Amount)
	var err error
	switch {
	case category == "" || amount == "":
		err = core.ErrMissingField
	case !t.known[category]:
		err = fmt.Errorf("%q: %w", category, core.ErrUnknownCategory)
	}
	var limit core.Money
	if err == nil {
		limit, err = core.ParseMoney(amount)
	}
	if err != nil {
		t.logger.DebugContext(ctx, "Rejected budget input",
			log.FieldOperation, log.OpValidate,
			log.FieldErrorType, log.ErrorTypeValidation,
			log.FieldError, err.Error())
		return Outcome{Message: UserMessage(err)}, fmt.Errorf("set budget: %w", err)
	}

	prev, replaced := t.ledger.ReplaceBudget(category, limit)
	t.structured.LogBudgetSet(ctx, category, limit.Cents, replaced, prev.Spent().Cents)

	return Outcome{
		Message:   fmt.Sprintf("Budget set for %s: $%s", category, limit),
		Success:   true,
		Budget:    core.NewBudget(category, limit),
		HasBudget: true,
	}, nil
}

func (t *Tracker) parseExpense(in ExpenseInput) (core.Expense, error) {
	amount := strings.TrimSpace(in.Amount)
	category := strings.TrimSpace(in.Category)
	description := strings.TrimSpace(in.Description)
	if amount == "" || category == "" || description == "" {
		return core.Expense{}, core.ErrMissingField
	}
	money, err := core.ParseMoney(amount)
	if err != nil {
		return core.Expense{}, err
	}
	if !t.known[category] {
		return core.Expense{}, fmt.Errorf("%q: %w", category, core.ErrUnknownCategory)
	}
	date := in.Date
	if date.IsZero() {
		date = core.DateOf(t.now())
	}
	e := core.NewExpense(money, category, description, date)
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (t *Tracker) publishAlert(ctx context.Context, b core.Budget, e core.Expense) {
	if t.alerts == nil {
		return
	}
	msg := amqp.NewBudgetAlertMessage(b, e)
	// The alert outlives a cancelled request.
	if err := t.alerts.PublishBudgetAlert(context.WithoutCancel(ctx), msg); err != nil {
		t.structured.LogError(ctx, "Failed to publish budget alert", err,
			log.ComponentTracker, log.OpAlert,
			log.NewFields().WithBudget(b.Category(), b.Limit().Cents, b.Spent().Cents).WithErrorType(log.ErrorTypeNetwork))
		return
	}
	t.logger.DebugContext(ctx, "Budget alert queued", log.FieldAlertID, msg.ID, log.FieldCategory, b.Category())
}

// UserMessage maps a validation error to the text shown to the user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, core.ErrMissingField), errors.Is(err, core.ErrEmptyDescription), errors.Is(err, core.ErrEmptyCategory):
		return MsgMissingField
	case errors.Is(err, core.ErrInvalidAmount):
		return MsgInvalidAmount
	case errors.Is(err, core.ErrUnknownCategory):
		return MsgUnknownCategory
	case errors.Is(err, core.ErrDescriptionLong):
		return MsgDescriptionLong
	default:
		return MsgInvalidInput
	}
}

// IsValidationError reports whether err came from rejected user input.
func IsValidationError(err error) bool {
	for _, target := range []error{
		core.ErrMissingField, core.ErrInvalidAmount, core.ErrUnknownCategory,
		core.ErrEmptyDescription, core.ErrEmptyCategory, core.ErrDescriptionLong,
		core.ErrInvalidDay, core.ErrInvalidMonth,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
