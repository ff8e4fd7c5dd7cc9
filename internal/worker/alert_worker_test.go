package worker

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"spendwise/internal/amqp"
	"spendwise/internal/log"
)

func TestHandleAlertMessage(t *testing.T) {
	tests := []struct {
		name     string
		msg      amqp.BudgetAlertMessage
		wantLog  []string
		wantStat Stats
	}{
		{
			name:     "crossed",
			msg:      amqp.BudgetAlertMessage{ID: "a1", Category: "Food", LimitCents: 10000, SpentCents: 11000, RemainingCents: -1000, Crossed: true},
			wantLog:  []string{"level=WARN", "Budget crossed", "category=Food", "over_budget=true"},
			wantStat: Stats{Handled: 1, Crossed: 1},
		},
		{
			name:     "still over",
			msg:      amqp.BudgetAlertMessage{ID: "a2", Category: "Food", LimitCents: 10000, SpentCents: 12000, RemainingCents: -2000},
			wantLog:  []string{"level=INFO", "Budget still exceeded", "spent_cents=12000"},
			wantStat: Stats{Handled: 1},
		},
		{
			name:     "no category",
			msg:      amqp.BudgetAlertMessage{ID: "a3"},
			wantLog:  []string{"Dropping alert without category"},
			wantStat: Stats{Rejected: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewAlertWorker(log.New(log.Config{Output: &buf, Level: slog.LevelDebug}))

			msg := tt.msg
			if err := w.HandleAlertMessage(context.Background(), &msg); err != nil {
				t.Fatalf("HandleAlertMessage() error = %v", err)
			}
			if got := w.Stats(); got != tt.wantStat {
				t.Fatalf("Stats() = %+v, want %+v", got, tt.wantStat)
			}
			out := buf.String()
			for _, want := range append(tt.wantLog, "alert_id="+msg.ID, "component=notifier") {
				if !strings.Contains(out, want) {
					t.Errorf("log missing %q:\n%s", want, out)
				}
			}
		})
	}
}
