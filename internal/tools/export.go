// Package tools holds the adapters behind specific intents: file export,
// price search, trend analytics and reminder date resolution. Each adapter is
// a thin wrapper the dispatcher's handlers call; none of them talk to the
// model.
package tools

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/finbotdev/finbot/internal/store"
)

// Export formats.
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
)

// Exporter renders a user's financial data to a file under Dir. The caller
// hands in the data; the exporter only renders.
type Exporter struct {
	Dir string
}

// NewExporter creates the export directory if needed.
func NewExporter(dir string) (*Exporter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("NewExporter: %w", err)
	}
	return &Exporter{Dir: dir}, nil
}

// Export writes the report in the requested format and returns the file path
// for the platform adapter to attach.
func (e *Exporter) Export(userID, format string, txs []store.Transaction, balance store.Balance, report map[string]store.CategoryTotals) (string, error) {
	if len(txs) == 0 {
		return "", fmt.Errorf("Export: no transactions to export")
	}

	switch format {
	case FormatCSV:
		return e.exportCSV(userID, txs)
	case FormatExcel:
		return e.exportExcel(userID, txs, balance, report)
	default:
		return "", fmt.Errorf("Export: unsupported format %q", format)
	}
}

func (e *Exporter) filename(userID, ext string) string {
	return filepath.Join(e.Dir, fmt.Sprintf("financial_report_%s_%s.%s", userID, uuid.NewString()[:8], ext))
}

func (e *Exporter) exportCSV(userID string, txs []store.Transaction) (string, error) {
	path := e.filename(userID, "csv")

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("exportCSV: creating %s: %w", path, err)
	}
	defer file.Close()

	// BOM so spreadsheet apps read the UTF-8 correctly.
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", fmt.Errorf("exportCSV: writing BOM: %w", err)
	}

	w := csv.NewWriter(file)
	if err := w.Write([]string{"date", "type", "amount", "category", "description"}); err != nil {
		return "", fmt.Errorf("exportCSV: writing header: %w", err)
	}
	for _, tx := range txs {
		record := []string{
			tx.CreatedAt.Format("2006-01-02"),
			tx.Type,
			fmt.Sprintf("%.0f", tx.Amount),
			tx.Category,
			tx.Description,
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("exportCSV: writing row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("exportCSV: flush: %w", err)
	}
	return path, nil
}

// exportExcel writes the three-sheet workbook: transaction detail, the
// balance summary, and the per-category breakdown.
func (e *Exporter) exportExcel(userID string, txs []store.Transaction, balance store.Balance, report map[string]store.CategoryTotals) (string, error) {
	path := e.filename(userID, "xlsx")

	f := excelize.NewFile()
	defer f.Close()

	const txSheet = "Transactions"
	if err := f.SetSheetName("Sheet1", txSheet); err != nil {
		return "", fmt.Errorf("exportExcel: %w", err)
	}
	if err := f.SetSheetRow(txSheet, "A1", &[]any{"Date", "Type", "Amount", "Category", "Description"}); err != nil {
		return "", fmt.Errorf("exportExcel: header: %w", err)
	}
	for i, tx := range txs {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{tx.CreatedAt.Format("2006-01-02"), tx.Type, tx.Amount, tx.Category, tx.Description}
		if err := f.SetSheetRow(txSheet, cell, &row); err != nil {
			return "", fmt.Errorf("exportExcel: row %d: %w", i, err)
		}
	}

	const summarySheet = "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return "", fmt.Errorf("exportExcel: %w", err)
	}
	summary := [][]any{
		{"Metric", "Amount"},
		{"Total Pemasukan", balance.Income},
		{"Total Pengeluaran", balance.Expense},
		{"Saldo", balance.Balance},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow(summarySheet, cell, &r); err != nil {
			return "", fmt.Errorf("exportExcel: summary row %d: %w", i, err)
		}
	}

	const catSheet = "Categories"
	if _, err := f.NewSheet(catSheet); err != nil {
		return "", fmt.Errorf("exportExcel: %w", err)
	}
	if err := f.SetSheetRow(catSheet, "A1", &[]any{"Category", "Type", "Amount"}); err != nil {
		return "", fmt.Errorf("exportExcel: categories header: %w", err)
	}
	row := 2
	for _, category := range sortedCategories(report) {
		totals := report[category]
		if totals.Income > 0 {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			r := []any{category, "Income", totals.Income}
			if err := f.SetSheetRow(catSheet, cell, &r); err != nil {
				return "", fmt.Errorf("exportExcel: category row: %w", err)
			}
			row++
		}
		if totals.Expense > 0 {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			r := []any{category, "Expense", totals.Expense}
			if err := f.SetSheetRow(catSheet, cell, &r); err != nil {
				return "", fmt.Errorf("exportExcel: category row: %w", err)
			}
			row++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("exportExcel: saving %s: %w", path, err)
	}
	return path, nil
}

// NormalizeFormat maps free-form format mentions to a supported format.
// Unspecified or unknown input defaults to Excel, which carries the fuller
// report.
func NormalizeFormat(raw string) string {
	switch raw {
	case FormatCSV:
		return FormatCSV
	case FormatExcel, "xlsx", ".xlsx":
		return FormatExcel
	default:
		return FormatExcel
	}
}

// sortedCategories orders category names by combined volume, largest first,
// ties broken by name so output stays stable.
func sortedCategories(report map[string]store.CategoryTotals) []string {
	names := make([]string, 0, len(report))
	for name := range report {
		names = append(names, name)
	}
	volume := func(name string) float64 {
		t := report[name]
		return t.Income + t.Expense
	}
	sort.Slice(names, func(i, j int) bool {
		vi, vj := volume(names[i]), volume(names[j])
		if vi != vj {
			return vi > vj
		}
		return names[i] < names[j]
	})
	return names
}
