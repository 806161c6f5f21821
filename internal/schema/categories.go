package schema

import "strings"

// DefaultCategory is applied whenever the model omits a category or proposes
// one outside the enumeration.
const DefaultCategory = "Lainnya"

// TransactionDirection distinguishes the two category enumerations.
type TransactionDirection string

const (
	DirectionIncome  TransactionDirection = "income"
	DirectionExpense TransactionDirection = "expense"
)

var incomeCategories = []string{"Gaji", "Freelance", "Investasi", "Hadiah", DefaultCategory}

var expenseCategories = []string{
	"Makanan", "Transport", "Hiburan", "Belanja",
	"Tagihan", "Kesehatan", "Pendidikan", DefaultCategory,
}

// Categories returns the valid category names for a transaction direction.
func Categories(dir TransactionDirection) []string {
	if dir == DirectionIncome {
		return append([]string(nil), incomeCategories...)
	}
	return append([]string(nil), expenseCategories...)
}

// AllCategories returns the union of both enumerations, for the model-facing
// function schema (the model picks one; Validate re-checks per direction).
func AllCategories() []string {
	seen := make(map[string]bool)
	var all []string
	for _, c := range append(append([]string(nil), incomeCategories...), expenseCategories...) {
		if !seen[c] {
			seen[c] = true
			all = append(all, c)
		}
	}
	return all
}

// ValidCategory reports whether name belongs to the enumeration for dir.
// Matching is case-insensitive on trimmed input; the canonical casing is
// returned so stored rows stay uniform.
func ValidCategory(dir TransactionDirection, name string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, c := range Categories(dir) {
		if strings.ToLower(c) == needle {
			return c, true
		}
	}
	return "", false
}
