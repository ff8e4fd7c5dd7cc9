// Package console is the line-oriented terminal front end: one command per
// line, results printed as tables.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"spendwise/internal/log"
	"spendwise/internal/report"
	"spendwise/internal/services"
)

const prompt = "> "

const helpText = `Commands:
  add <amount> <category> <description...>   record an expense dated today
  budget <category> <limit>                  set or replace a category budget
  list                                       show expenses, newest first
  budgets                                    show budgets and what is left
  total                                      show total and this month's spending
  categories                                 show the selectable categories
  help                                       show this help
  quit                                       leave
`

// Console reads commands from in and writes results to out.
type Console struct {
	tracker *services.Tracker
	in      io.Reader
	out     io.Writer
	logger  *log.Logger
	now     func() time.Time
}

func New(tracker *services.Tracker, in io.Reader, out io.Writer, logger *log.Logger) *Console {
	if logger == nil {
		logger = log.Discard()
	}
	return &Console{
		tracker: tracker,
		in:      in,
		out:     out,
		logger:  logger.WithComponent(log.ComponentConsole),
		now:     time.Now,
	}
}

// Run processes commands until quit, end of input or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(c.in)
	fmt.Fprintln(c.out, "SpendWise. Type 'help' for commands.")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		if quit := c.Execute(ctx, scanner.Text()); quit {
			return nil
		}
	}
}

// Execute runs a single command line and reports whether the user asked to
// quit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	c.logger.DebugContext(ctx, "Console command", "command", cmd, "args", len(args))

	switch cmd {
	case "add":
		c.add(ctx, args)
	case "budget":
		c.budget(ctx, args)
	case "list", "ls":
		report.WriteExpenses(c.out, c.tracker.Ledger().Expenses())
	case "budgets":
		report.WriteBudgets(c.out, c.tracker.Ledger().Budgets())
	case "total", "totals":
		l := c.tracker.Ledger()
		report.WriteTotals(c.out, l.TotalExpenses(), l.MonthlyTotal(c.now()))
	case "categories":
		fmt.Fprintln(c.out, strings.Join(c.tracker.Categories(), ", "))
	case "help", "?":
		fmt.Fprint(c.out, helpText)
	case "quit", "exit", "q":
		return true
	default:
		fmt.Fprintf(c.out, "Unknown command %q. Type 'help' for commands.\n", cmd)
	}
	return false
}

func (c *Console) add(ctx context.Context, args []string) {
	in := services.ExpenseInput{}
	if len(args) > 0 {
		in.Amount = args[0]
	}
	if len(args) > 1 {
		in.Category = args[1]
	}
	if len(args) > 2 {
		in.Description = strings.Join(args[2:], " ")
	}
	out, err := c.tracker.RecordExpense(ctx, in)
	fmt.Fprintln(c.out, out.Message)
	if err == nil && out.HasBudget {
		fmt.Fprintf(c.out, "%s: $%s of $%s spent, $%s remaining\n",
			out.Budget.Category(), out.Budget.Spent(), out.Budget.Limit(), out.Budget.Remaining())
	}
}

func (c *Console) budget(ctx context.Context, args []string) {
	in := services.BudgetInput{}
	if len(args) > 0 {
		in.Category = args[0]
	}
	if len(args) > 1 {
		in.Amount = args[1]
	}
	out, err := c.tracker.SetBudget(ctx, in)
	fmt.Fprintln(c.out, out.Message)
	if err != nil {
		c.logger.DebugContext(ctx, "Budget command rejected",
			log.FieldCategory, in.Category,
			log.FieldError, err.Error())
	}
}
