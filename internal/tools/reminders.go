package tools

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ResolveDueDate normalizes a model-extracted due date to YYYY-MM-DD.
//
// Accepted inputs: a full YYYY-MM-DD date, or a bare day-of-month. A bare
// day that has already passed this month rolls over to the same day next
// month; today or later stays in the current month. The stored value is
// always fully resolved, never an ambiguous day-only string.
func ResolveDueDate(raw string, now time.Time) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("ResolveDueDate: empty due date")
	}

	if parsed, err := time.Parse("2006-01-02", raw); err == nil {
		return parsed.Format("2006-01-02"), nil
	}

	day, err := strconv.Atoi(raw)
	if err != nil || day < 1 || day > 31 {
		return "", fmt.Errorf("ResolveDueDate: invalid due date %q", raw)
	}

	year, month := now.Year(), now.Month()
	if day < now.Day() {
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}

	// time.Date normalizes out-of-range days (Feb 30 -> Mar 2), which keeps
	// short months from failing outright.
	resolved := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	return resolved.Format("2006-01-02"), nil
}

// FormatDueDate renders a stored date for display ("05 January 2026").
func FormatDueDate(dueDate string) string {
	parsed, err := time.Parse("2006-01-02", dueDate)
	if err != nil {
		return dueDate
	}
	return parsed.Format("02 January 2006")
}
