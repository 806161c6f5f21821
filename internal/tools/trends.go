package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/finbotdev/finbot/internal/schema"
	"github.com/finbotdev/finbot/internal/store"
)

// TrendReport is the aggregate computed over a user's full history.
type TrendReport struct {
	// Months holds "YYYY-MM" keys in chronological order.
	Months         []string
	MonthlyExpense map[string]float64
	MonthlyIncome  map[string]float64
	// TopCategories lists up to five expense categories, largest first.
	TopCategories []CategoryShare
	TotalExpense  float64
}

// CategoryShare is one expense category with its share of total spending.
type CategoryShare struct {
	Category string
	Amount   float64
	Percent  float64
}

// AnalyzeTrends computes monthly totals and the top-5 expense breakdown.
// Pure computation; the handler only renders the result.
func AnalyzeTrends(txs []store.Transaction) (*TrendReport, error) {
	if len(txs) == 0 {
		return nil, fmt.Errorf("AnalyzeTrends: no transactions to analyze")
	}

	report := &TrendReport{
		MonthlyExpense: make(map[string]float64),
		MonthlyIncome:  make(map[string]float64),
	}
	byCategory := make(map[string]float64)
	seenMonths := make(map[string]bool)

	for _, tx := range txs {
		month := tx.CreatedAt.Format("2006-01")
		if !seenMonths[month] {
			seenMonths[month] = true
			report.Months = append(report.Months, month)
		}
		if tx.Type == "income" {
			report.MonthlyIncome[month] += tx.Amount
			continue
		}
		report.MonthlyExpense[month] += tx.Amount
		byCategory[tx.Category] += tx.Amount
		report.TotalExpense += tx.Amount
	}
	sort.Strings(report.Months)

	for category, amount := range byCategory {
		share := CategoryShare{Category: category, Amount: amount}
		if report.TotalExpense > 0 {
			share.Percent = amount / report.TotalExpense * 100
		}
		report.TopCategories = append(report.TopCategories, share)
	}
	sort.Slice(report.TopCategories, func(i, j int) bool {
		if report.TopCategories[i].Amount != report.TopCategories[j].Amount {
			return report.TopCategories[i].Amount > report.TopCategories[j].Amount
		}
		return report.TopCategories[i].Category < report.TopCategories[j].Category
	})
	if len(report.TopCategories) > 5 {
		report.TopCategories = report.TopCategories[:5]
	}

	return report, nil
}

// FormatTrendReport renders the aggregate for the user.
func FormatTrendReport(r *TrendReport) string {
	var b strings.Builder
	b.WriteString("📊 **Analisis Tren Pengeluaran:**\n\n")

	expenseMonths := make([]string, 0, len(r.Months))
	for _, m := range r.Months {
		if _, ok := r.MonthlyExpense[m]; ok {
			expenseMonths = append(expenseMonths, m)
		}
	}

	if len(expenseMonths) > 1 {
		b.WriteString("**Tren Bulanan:**\n")
		for _, m := range expenseMonths {
			fmt.Fprintf(&b, "  • %s: Rp %s\n", m, schema.FormatRupiah(r.MonthlyExpense[m]))
		}
		b.WriteString("\n")
	}

	b.WriteString("**Top 5 Kategori Pengeluaran:**\n")
	for i, share := range r.TopCategories {
		fmt.Fprintf(&b, "  %d. %s: Rp %s (%.1f%%)\n", i+1, share.Category, schema.FormatRupiah(share.Amount), share.Percent)
	}

	if len(expenseMonths) > 1 {
		last := r.MonthlyExpense[expenseMonths[len(expenseMonths)-1]]
		prev := r.MonthlyExpense[expenseMonths[len(expenseMonths)-2]]
		trend := "turun"
		if last > prev {
			trend = "naik"
		}
		fmt.Fprintf(&b, "\n💡 **Insight:** Pengeluaran bulan ini %s dibanding bulan lalu", trend)
	}

	return b.String()
}
