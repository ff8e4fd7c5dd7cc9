// Package report renders ledger snapshots for people: terminal tables and
// spreadsheet exports.
package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"spendwise/internal/core"
)

// NewestFirst returns expenses in reverse entry order, the way the expense
// list is displayed.
func NewestFirst(expenses []core.Expense) []core.Expense {
	out := make([]core.Expense, len(expenses))
	for i, e := range expenses {
		out[len(expenses)-1-i] = e
	}
	return out
}

func newWriter(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func dollars(m core.Money) string {
	return "$" + m.String()
}

// WriteExpenses prints the expense list newest first with a total footer.
func WriteExpenses(w io.Writer, expenses []core.Expense) {
	t := newWriter(w)
	t.AppendHeader(table.Row{"Date", "Category", "Description", "Amount"})

	var total core.Money
	for _, e := range NewestFirst(expenses) {
		t.AppendRow(table.Row{e.Date().String(), e.Category(), e.Description(), dollars(e.Amount())})
		total = total.Add(e.Amount())
	}
	if len(expenses) == 0 {
		t.AppendRow(table.Row{text.FgHiBlack.Sprint("no expenses yet"), "", "", ""})
	}

	t.AppendSeparator()
	t.AppendFooter(table.Row{"", "", text.Bold.Sprint("Total"), text.Bold.Sprint(dollars(total))})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	t.Render()
}

// WriteBudgets prints every budget with its spend and remaining headroom.
func WriteBudgets(w io.Writer, budgets []core.Budget) {
	t := newWriter(w)
	t.AppendHeader(table.Row{"Category", "Limit", "Spent", "Remaining", "Status"})

	for _, b := range budgets {
		status := text.FgGreen.Sprint("OK")
		if b.IsOverBudget() {
			status = text.FgRed.Sprint("OVER")
		}
		t.AppendRow(table.Row{b.Category(), dollars(b.Limit()), dollars(b.Spent()), dollars(b.Remaining()), status})
	}
	if len(budgets) == 0 {
		t.AppendRow(table.Row{text.FgHiBlack.Sprint("no budgets set"), "", "", "", ""})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	t.Render()
}

// WriteTotals prints the all-time and current-month totals.
func WriteTotals(w io.Writer, total, thisMonth core.Money) {
	t := newWriter(w)
	t.AppendRow(table.Row{"Total Expenses", dollars(total)})
	t.AppendRow(table.Row{"This Month", dollars(thisMonth)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})
	t.Render()
}
