package schema

import (
	"strconv"
	"strings"
)

// FromArgs maps raw model arguments onto an IntentRecord. Field names must
// match the schema exactly; anything else is dropped. Values arrive as
// whatever encoding/json produced (float64, string, bool...), so every field
// is coerced defensively here and re-checked by Validate.
func FromArgs(args map[string]any) IntentRecord {
	rec := IntentRecord{
		Intent:       Intent(stringArg(args, "intent")),
		Category:     stringArg(args, "category"),
		Description:  stringArg(args, "description"),
		ItemName:     stringArg(args, "item_name"),
		Format:       strings.ToLower(stringArg(args, "format")),
		ReminderText: stringArg(args, "reminder_text"),
		DueDate:      stringArg(args, "due_date"),
		ResponseText: stringArg(args, "response_text"),
	}

	if v, ok := floatArg(args, "amount"); ok {
		rec.Amount = &v
	}
	if v, ok := floatArg(args, "transaction_id"); ok {
		rec.TransactionID = int64(v)
	}
	if v, ok := floatArg(args, "reminder_id"); ok {
		rec.ReminderID = int64(v)
	}

	return rec
}

// Validate coerces and checks a candidate record against the schema. Invalid
// fields are dropped or defaulted; the record itself always survives. This
// function never fails: a degraded record is still a usable record.
func Validate(rec IntentRecord) IntentRecord {
	if !KnownIntent(string(rec.Intent)) {
		rec.Intent = IntentCasualChat
	}

	if rec.Amount != nil && *rec.Amount < 0 {
		rec.Amount = nil
	}

	if rec.Category != "" {
		dir := DirectionExpense
		if rec.Intent == IntentRecordIncome {
			dir = DirectionIncome
		}
		if canonical, ok := ValidCategory(dir, rec.Category); ok {
			rec.Category = canonical
		} else {
			// Handler applies DefaultCategory where one is needed.
			rec.Category = ""
		}
	}

	if rec.TransactionID < 0 {
		rec.TransactionID = 0
	}
	if rec.ReminderID < 0 {
		rec.ReminderID = 0
	}

	rec.ResponseText = strings.TrimSpace(rec.ResponseText)

	return rec
}

func stringArg(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	default:
		return ""
	}
}

// floatArg coerces a numeric argument. Models in free-text mode routinely
// quote numbers ("5000000"), so numeric strings are accepted too.
func floatArg(m map[string]any, key string) (float64, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
