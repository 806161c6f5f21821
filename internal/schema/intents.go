package schema

// Intent is the classified purpose of a user message. The set is closed:
// anything the model invents outside of it is coerced to IntentCasualChat
// by Validate.
type Intent string

const (
	IntentRecordIncome      Intent = "record_income"
	IntentRecordExpense     Intent = "record_expense"
	IntentCheckBalance      Intent = "check_balance"
	IntentGetReport         Intent = "get_report"
	IntentBudgetAdvice      Intent = "budget_advice"
	IntentPurchaseAnalysis  Intent = "purchase_analysis"
	IntentDeleteTransaction Intent = "delete_transaction"
	IntentExportReport      Intent = "export_report"
	IntentSearchPrice       Intent = "search_price"
	IntentAnalyzeTrends     Intent = "analyze_trends"
	IntentSetReminder       Intent = "set_reminder"
	IntentViewReminders     Intent = "view_reminders"
	IntentCompleteReminder  Intent = "complete_reminder"
	IntentCasualChat        Intent = "casual_chat"
	IntentHelp              Intent = "help"
	IntentError             Intent = "error"
)

// Intents lists every intent the model is allowed to return. IntentError is
// excluded on purpose: it is a sentinel produced locally on transport failure,
// never requested from the model.
var Intents = []Intent{
	IntentRecordIncome,
	IntentRecordExpense,
	IntentCheckBalance,
	IntentGetReport,
	IntentBudgetAdvice,
	IntentPurchaseAnalysis,
	IntentDeleteTransaction,
	IntentExportReport,
	IntentSearchPrice,
	IntentAnalyzeTrends,
	IntentSetReminder,
	IntentViewReminders,
	IntentCompleteReminder,
	IntentCasualChat,
	IntentHelp,
}

// KnownIntent reports whether s names an intent the model may produce.
func KnownIntent(s string) bool {
	for _, it := range Intents {
		if string(it) == s {
			return true
		}
	}
	return s == string(IntentError)
}

// IntentNames returns the model-facing enumeration as plain strings, for
// building the function-calling schema.
func IntentNames() []string {
	names := make([]string, len(Intents))
	for i, it := range Intents {
		names[i] = string(it)
	}
	return names
}
