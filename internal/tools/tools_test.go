package tools

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/finbotdev/finbot/internal/store"
)

func TestResolveDueDate(t *testing.T) {
	now := time.Date(2026, time.September, 20, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"full date passes through", "2026-12-25", "2026-12-25", false},
		{"day after today stays this month", "25", "2026-09-25", false},
		{"today stays this month", "20", "2026-09-20", false},
		{"passed day rolls to next month", "5", "2026-10-05", false},
		{"empty", "", "", true},
		{"zero day", "0", "", true},
		{"day 32", "32", "", true},
		{"garbage", "besok", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDueDate(tt.raw, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ResolveDueDate(%q) = %q, want error", tt.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveDueDate(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ResolveDueDate(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestResolveDueDate_DecemberRollsToJanuary(t *testing.T) {
	now := time.Date(2026, time.December, 20, 0, 0, 0, 0, time.UTC)
	got, err := ResolveDueDate("5", now)
	if err != nil {
		t.Fatalf("ResolveDueDate: %v", err)
	}
	if got != "2027-01-05" {
		t.Errorf("got %q, want 2027-01-05", got)
	}
}

func TestFormatDueDate(t *testing.T) {
	if got := FormatDueDate("2026-09-05"); got != "05 September 2026" {
		t.Errorf("FormatDueDate = %q", got)
	}
	// Unparseable input is returned as-is rather than erased.
	if got := FormatDueDate("segera"); got != "segera" {
		t.Errorf("FormatDueDate(segera) = %q", got)
	}
}

func TestNormalizeFormat(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"csv", FormatCSV},
		{"excel", FormatExcel},
		{"xlsx", FormatExcel},
		{".xlsx", FormatExcel},
		{"", FormatExcel},
		{"pdf", FormatExcel},
	}
	for _, tt := range tests {
		if got := NormalizeFormat(tt.in); got != tt.want {
			t.Errorf("NormalizeFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEstimatePrice(t *testing.T) {
	est, ok := EstimatePrice("laptop gaming ROG")
	if !ok {
		t.Fatal("laptop should match the static table")
	}
	if est.Avg != 8000000 {
		t.Errorf("Avg = %v, want 8000000", est.Avg)
	}

	if _, ok := EstimatePrice("helikopter"); ok {
		t.Error("helikopter should not match")
	}
}

func sampleTransactions() []store.Transaction {
	aug := time.Date(2026, time.August, 10, 0, 0, 0, 0, time.UTC)
	sep := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)
	return []store.Transaction{
		{ID: 1, UserID: "u1", Type: "income", Amount: 5000000, Category: "Gaji", Description: "gaji", CreatedAt: aug},
		{ID: 2, UserID: "u1", Type: "expense", Amount: 300000, Category: "Makanan", Description: "makan", CreatedAt: aug},
		{ID: 3, UserID: "u1", Type: "expense", Amount: 200000, Category: "Transport", Description: "bensin", CreatedAt: sep},
		{ID: 4, UserID: "u1", Type: "expense", Amount: 500000, Category: "Makanan", Description: "makan lagi", CreatedAt: sep},
	}
}

func TestAnalyzeTrends(t *testing.T) {
	report, err := AnalyzeTrends(sampleTransactions())
	if err != nil {
		t.Fatalf("AnalyzeTrends: %v", err)
	}

	if len(report.Months) != 2 || report.Months[0] != "2026-08" || report.Months[1] != "2026-09" {
		t.Errorf("Months = %v", report.Months)
	}
	if report.MonthlyExpense["2026-08"] != 300000 || report.MonthlyExpense["2026-09"] != 700000 {
		t.Errorf("MonthlyExpense = %v", report.MonthlyExpense)
	}
	if report.TotalExpense != 1000000 {
		t.Errorf("TotalExpense = %v", report.TotalExpense)
	}
	if len(report.TopCategories) != 2 {
		t.Fatalf("TopCategories = %v", report.TopCategories)
	}
	if report.TopCategories[0].Category != "Makanan" || report.TopCategories[0].Percent != 80 {
		t.Errorf("top category = %+v", report.TopCategories[0])
	}
}

func TestAnalyzeTrends_Empty(t *testing.T) {
	if _, err := AnalyzeTrends(nil); err == nil {
		t.Error("empty history should error")
	}
}

func TestFormatTrendReport(t *testing.T) {
	report, err := AnalyzeTrends(sampleTransactions())
	if err != nil {
		t.Fatalf("AnalyzeTrends: %v", err)
	}
	text := FormatTrendReport(report)
	if !strings.Contains(text, "Makanan") {
		t.Errorf("report should name the top category:\n%s", text)
	}
	if !strings.Contains(text, "naik") {
		t.Errorf("September spending rose; insight should say naik:\n%s", text)
	}
}

func TestExportCSV(t *testing.T) {
	e, err := NewExporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}

	txs := sampleTransactions()
	path, err := e.Export("u1", FormatCSV, txs, store.Balance{}, nil)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Ext(path) != ".csv" {
		t.Errorf("extension = %q, want .csv", filepath.Ext(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "\xEF\xBB\xBF") {
		t.Error("CSV should start with a UTF-8 BOM")
	}
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != len(txs)+1 {
		t.Errorf("lines = %d, want header + %d rows", len(lines), len(txs))
	}
	if !strings.Contains(lines[1], "5000000") {
		t.Errorf("first row missing amount: %q", lines[1])
	}
}

func TestExportExcel(t *testing.T) {
	e, err := NewExporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}

	balance := store.Balance{Income: 5000000, Expense: 1000000, Balance: 4000000}
	report := map[string]store.CategoryTotals{
		"Gaji":      {Income: 5000000},
		"Makanan":   {Expense: 800000},
		"Transport": {Expense: 200000},
	}

	path, err := e.Export("u1", FormatExcel, sampleTransactions(), balance, report)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Ext(path) != ".xlsx" {
		t.Errorf("extension = %q, want .xlsx", filepath.Ext(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat export: %v", err)
	}
	if info.Size() == 0 {
		t.Error("workbook is empty")
	}
}

func TestExport_NoTransactions(t *testing.T) {
	e, err := NewExporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	if _, err := e.Export("u1", FormatCSV, nil, store.Balance{}, nil); err == nil {
		t.Error("empty export should error")
	}
}

func TestFormatSnippetsFallback(t *testing.T) {
	snippets := []Snippet{
		{Title: "Toko A", URL: "https://a.example", Content: "Rp 8.000.000"},
		{Title: "Toko B", URL: "https://b.example", Content: "Rp 8.500.000"},
		{Title: "Toko C", URL: "https://c.example", Content: "Rp 7.900.000"},
		{Title: "Toko D", URL: "https://d.example", Content: "should be cut"},
	}

	text := FormatSnippetsFallback("ps5", snippets)
	if !strings.Contains(text, "Toko A") || !strings.Contains(text, "Toko C") {
		t.Errorf("fallback should list the first three snippets:\n%s", text)
	}
	if strings.Contains(text, "Toko D") {
		t.Errorf("fallback should cap at three snippets:\n%s", text)
	}
}
