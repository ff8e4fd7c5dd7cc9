// Package worker turns budget alerts taken off the queue into log records.
package worker

import (
	"context"
	"sync/atomic"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/log"
)

// AlertWorker handles budget alerts delivered by an amqp consumer.
type AlertWorker struct {
	logger   *log.Logger
	handled  int64
	crossed  int64
	rejected int64
}

func NewAlertWorker(logger *log.Logger) *AlertWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &AlertWorker{logger: logger.WithComponent(log.ComponentNotifier)}
}

// HandleAlertMessage logs msg. Alerts without a category are counted and
// dropped; requeueing them would only redeliver the same message.
func (w *AlertWorker) HandleAlertMessage(ctx context.Context, msg *amqp.BudgetAlertMessage) error {
	if msg.Category == "" {
		atomic.AddInt64(&w.rejected, 1)
		w.logger.WarnContext(ctx, "Dropping alert without category",
			log.FieldAlertID, msg.ID,
			log.FieldError, core.ErrEmptyCategory.Error())
		return nil
	}
	atomic.AddInt64(&w.handled, 1)

	args := log.NewFields().
		WithBudget(msg.Category, msg.LimitCents, msg.SpentCents).
		WithExpense(msg.ExpenseDescription, msg.ExpenseAmountCents, msg.Category, msg.ExpenseDate).
		WithOperation(log.OpAlert).
		ToSlice()
	args = append(args, log.FieldAlertID, msg.ID)

	if msg.Crossed {
		atomic.AddInt64(&w.crossed, 1)
		w.logger.WarnContext(ctx, "Budget crossed", args...)
		return nil
	}
	w.logger.InfoContext(ctx, "Budget still exceeded", args...)
	return nil
}

// Stats is a snapshot of alerts seen so far.
type Stats struct {
	Handled  int64
	Crossed  int64
	Rejected int64
}

func (w *AlertWorker) Stats() Stats {
	return Stats{
		Handled:  atomic.LoadInt64(&w.handled),
		Crossed:  atomic.LoadInt64(&w.crossed),
		Rejected: atomic.LoadInt64(&w.rejected),
	}
}
