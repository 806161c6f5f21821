package schema

// IntentRecord is the structured interpretation of one user message. It is
// built fresh per turn by the interpreter, normalized by Validate, consumed
// once by the dispatcher and then discarded; it is never persisted.
type IntentRecord struct {
	Intent Intent

	// Amount is nil when the model supplied none or the value failed
	// coercion. A present value is always >= 0.
	Amount *float64

	Category     string
	Description  string
	ItemName     string
	Format       string
	ReminderText string
	DueDate      string

	// TransactionID and ReminderID use 0 as "absent"; SQLite AUTOINCREMENT
	// ids start at 1.
	TransactionID int64
	ReminderID    int64

	// ResponseText is the model's proposed reply fragment. It may be empty
	// here; the dispatcher substitutes a fallback before anything reaches
	// the user.
	ResponseText string
}

// AmountValue returns the amount or 0 when absent.
func (r IntentRecord) AmountValue() float64 {
	if r.Amount == nil {
		return 0
	}
	return *r.Amount
}

// HasAmount reports whether a usable amount survived validation.
func (r IntentRecord) HasAmount() bool {
	return r.Amount != nil
}
