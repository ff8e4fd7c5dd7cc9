package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"spendwise/internal/core"
)

// Sheet names used by WriteXLSX.
const (
	SheetExpenses = "Expenses"
	SheetBudgets  = "Budgets"
)

// moneyFormat is Excel's built-in "0.00" number format.
const moneyFormat = 2

// WriteXLSX writes a workbook with one sheet listing expenses newest first
// and one listing budgets. Amounts are numeric cells in dollars.
func WriteXLSX(w io.Writer, expenses []core.Expense, budgets []core.Budget) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetExpenses); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetBudgets); err != nil {
		return fmt.Errorf("create budgets sheet: %w", err)
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	rows := [][]any{{"Date", "Category", "Description", "Amount"}}
	for _, e := range NewestFirst(expenses) {
		rows = append(rows, []any{e.Date().String(), e.Category(), e.Description(), e.Amount().Dollars()})
	}
	if err := writeRows(f, SheetExpenses, rows); err != nil {
		return err
	}
	if err := styleSheet(f, SheetExpenses, "D", "D", "D", len(rows), headerStyle, moneyStyle); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetExpenses, "A", "B", 14)
	_ = f.SetColWidth(SheetExpenses, "C", "C", 40)

	rows = [][]any{{"Category", "Limit", "Spent", "Remaining", "Over Budget"}}
	for _, b := range budgets {
		rows = append(rows, []any{b.Category(), b.Limit().Dollars(), b.Spent().Dollars(), b.Remaining().Dollars(), b.IsOverBudget()})
	}
	if err := writeRows(f, SheetBudgets, rows); err != nil {
		return err
	}
	if err := styleSheet(f, SheetBudgets, "E", "B", "D", len(rows), headerStyle, moneyStyle); err != nil {
		return err
	}
	_ = f.SetColWidth(SheetBudgets, "A", "E", 14)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// styleSheet bolds the header row A1..lastCol1 and applies the money format
// to columns moneyFrom..moneyTo below it.
func styleSheet(f *excelize.File, sheet, lastCol, moneyFrom, moneyTo string, rowCount, headerStyle, moneyStyle int) error {
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	if rowCount < 2 {
		return nil
	}
	from := fmt.Sprintf("%s2", moneyFrom)
	to := fmt.Sprintf("%s%d", moneyTo, rowCount)
	if err := f.SetCellStyle(sheet, from, to, moneyStyle); err != nil {
		return fmt.Errorf("style %s amounts: %w", sheet, err)
	}
	return nil
}
