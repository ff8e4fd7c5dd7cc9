// Package ledger keeps every recorded expense and the per-category budgets
// in memory, and routes each new expense into the matching budget.
package ledger

import (
	"sort"
	"sync"
	"time"

	"spendwise/internal/core"
)

// Ledger is safe for concurrent use. The zero value is not usable; call New.
type Ledger struct {
	mu       sync.RWMutex
	expenses []core.Expense
	budgets  map[string]*core.Budget
	total    core.Money
}

func New() *Ledger {
	return &Ledger{budgets: make(map[string]*core.Budget)}
}

// AddExpense appends e, adds its amount to the grand total and, when a
// budget exists for its category, to that budget's spent total.
func (l *Ledger) AddExpense(e core.Expense) {
	l.Record(e)
}

// Record is AddExpense that also returns a snapshot of the category's
// budget taken under the same lock. ok is false when no budget is set.
func (l *Ledger) Record(e core.Expense) (core.Budget, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.expenses = append(l.expenses, e)
	l.total = l.total.Add(e.Amount())

	b, ok := l.budgets[e.Category()]
	if !ok {
		return core.Budget{}, false
	}
	b.AddExpense(e.Amount())
	return *b, true
}

// SetBudget installs a fresh budget for category. An existing budget for
// the same category is replaced and its spent total starts again from zero;
// expenses recorded earlier are not counted retroactively.
func (l *Ledger) SetBudget(category string, limit core.Money) {
	l.ReplaceBudget(category, limit)
}

// ReplaceBudget is SetBudget that also returns the budget it replaced.
func (l *Ledger) ReplaceBudget(category string, limit core.Money) (core.Budget, bool) {
	b := core.NewBudget(category, limit)
	l.mu.Lock()
	defer l.mu.Unlock()
	prev, ok := l.budgets[category]
	l.budgets[category] = &b
	if !ok {
		return core.Budget{}, false
	}
	return *prev, true
}

// IsOverBudget is false when the category has no budget.
func (l *Ledger) IsOverBudget(category string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.budgets[category]
	return ok && b.IsOverBudget()
}

// TotalExpenses returns the sum of all recorded amounts, every category.
func (l *Ledger) TotalExpenses() core.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total
}

// Expenses returns a copy of all expenses in insertion order.
func (l *Ledger) Expenses() []core.Expense {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]core.Expense(nil), l.expenses...)
}

// Budget returns a copy of the category's budget.
func (l *Ledger) Budget(category string) (core.Budget, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.budgets[category]
	if !ok {
		return core.Budget{}, false
	}
	return *b, true
}

// Budgets returns copies of all budgets ordered by category.
func (l *Ledger) Budgets() []core.Budget {
	l.mu.RLock()
	out := make([]core.Budget, 0, len(l.budgets))
	for _, b := range l.budgets {
		out = append(out, *b)
	}
	l.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Category() < out[j].Category() })
	return out
}

// MonthlyTotal sums the expenses dated in the same month and year as now.
func (l *Ledger) MonthlyTotal(now time.Time) core.Money {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var sum core.Money
	for _, e := range l.expenses {
		if e.Date().SameMonth(now) {
			sum = sum.Add(e.Amount())
		}
	}
	return sum
}

// MonthOverview totals the given month, overall and per category. Categories
// are listed by descending amount, ties by name.
func (l *Ledger) MonthOverview(year, month int) core.MonthOverview {
	ov := core.MonthOverview{Year: year, Month: month}
	ref := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)

	byCat := map[string]core.Money{}
	l.mu.RLock()
	for _, e := range l.expenses {
		if !e.Date().SameMonth(ref) {
			continue
		}
		ov.Total = ov.Total.Add(e.Amount())
		byCat[e.Category()] = byCat[e.Category()].Add(e.Amount())
	}
	l.mu.RUnlock()

	for name, amt := range byCat {
		ov.ByCategory = append(ov.ByCategory, core.CategoryAmount{Name: name, Amount: amt})
	}
	sort.Slice(ov.ByCategory, func(i, j int) bool {
		a, b := ov.ByCategory[i], ov.ByCategory[j]
		if a.Amount.Cents != b.Amount.Cents {
			return a.Amount.Cents > b.Amount.Cents
		}
		return a.Name < b.Name
	})
	return ov
}
