package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"spendwise/internal/core"
)

// BudgetAlertMessage is published whenever an expense leaves its category
// over budget. Crossed is true only for the expense that pushed spending
// past the limit.
type BudgetAlertMessage struct {
	ID                 string    `json:"id"`
	Category           string    `json:"category"`
	LimitCents         int64     `json:"limit_cents"`
	SpentCents         int64     `json:"spent_cents"`
	RemainingCents     int64     `json:"remaining_cents"`
	ExpenseDescription string    `json:"expense_description"`
	ExpenseAmountCents int64     `json:"expense_amount_cents"`
	ExpenseDate        string    `json:"expense_date"`
	Crossed            bool      `json:"crossed"`
	Timestamp          time.Time `json:"timestamp"`
}

// NewBudgetAlertMessage builds an alert from the budget state right after e
// was applied to it.
func NewBudgetAlertMessage(b core.Budget, e core.Expense) *BudgetAlertMessage {
	before := b.Spent().Sub(e.Amount())
	return &BudgetAlertMessage{
		ID:                 uuid.NewString(),
		Category:           b.Category(),
		LimitCents:         b.Limit().Cents,
		SpentCents:         b.Spent().Cents,
		RemainingCents:     b.Remaining().Cents,
		ExpenseDescription: e.Description(),
		ExpenseAmountCents: e.Amount().Cents,
		ExpenseDate:        e.Date().String(),
		Crossed:            before.Cents <= b.Limit().Cents,
		Timestamp:          time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertMessageFromJSON decodes a message body.
func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
