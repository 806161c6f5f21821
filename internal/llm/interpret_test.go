package llm

import (
	"strings"
	"testing"

	"github.com/finbotdev/finbot/internal/schema"
)

func TestInterpret_FunctionCall(t *testing.T) {
	out := &Output{FunctionArgs: map[string]any{
		"intent":        "check_balance",
		"response_text": "Ini saldomu",
	}}

	rec := Interpret(out)
	if rec.Intent != schema.IntentCheckBalance {
		t.Errorf("Intent = %q, want check_balance", rec.Intent)
	}
	if rec.ResponseText != "Ini saldomu" {
		t.Errorf("ResponseText = %q", rec.ResponseText)
	}
}

func TestInterpret_PlainJSON(t *testing.T) {
	out := &Output{Text: `{"intent": "record_expense", "amount": 50000, "category": "Makanan", "response_text": "Oke!"}`}

	rec := Interpret(out)
	if rec.Intent != schema.IntentRecordExpense {
		t.Errorf("Intent = %q, want record_expense", rec.Intent)
	}
	if rec.AmountValue() != 50000 {
		t.Errorf("Amount = %v, want 50000", rec.Amount)
	}
}

func TestInterpret_JSONWithSurroundingProse(t *testing.T) {
	out := &Output{Text: "Tentu, ini hasilnya:\n{\"intent\": \"get_report\", \"response_text\": \"laporan\"}\nSemoga membantu!"}

	rec := Interpret(out)
	if rec.Intent != schema.IntentGetReport {
		t.Errorf("Intent = %q, want get_report", rec.Intent)
	}
}

func TestInterpret_ThinkTagStripped(t *testing.T) {
	out := &Output{Text: "<think>{\"intent\": \"delete_transaction\"} hmm sebenarnya...</think>\n{\"intent\": \"check_balance\", \"response_text\": \"ok\"}"}

	rec := Interpret(out)
	if rec.Intent != schema.IntentCheckBalance {
		t.Errorf("Intent = %q, want check_balance (reasoning block must be ignored)", rec.Intent)
	}
}

func TestInterpret_Unparseable(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"plain chat", "Halo! Gimana kabarmu hari ini?"},
		{"broken json", `{"intent": "check_balance",`},
		{"json without intent", `{"amount": 5000}`},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Interpret(&Output{Text: tt.text})
			if rec.Intent != schema.IntentCasualChat {
				t.Errorf("Intent = %q, want casual_chat", rec.Intent)
			}
			if rec.ResponseText != strings.TrimSpace(tt.text) {
				t.Errorf("ResponseText = %q, want raw text preserved", rec.ResponseText)
			}
		})
	}
}

func TestInterpret_NilOutput(t *testing.T) {
	rec := Interpret(nil)
	if rec.Intent != schema.IntentCasualChat || rec.ResponseText != "" {
		t.Errorf("nil output should yield empty casual_chat, got %+v", rec)
	}
}

func TestInterpret_LongRawTextTruncated(t *testing.T) {
	raw := strings.Repeat("a", maxRawReply+200)
	rec := Interpret(&Output{Text: raw})
	if got := len([]rune(rec.ResponseText)); got != maxRawReply+1 {
		t.Errorf("truncated length = %d runes, want %d", got, maxRawReply+1)
	}
	if !strings.HasSuffix(rec.ResponseText, "…") {
		t.Error("truncated text should end with ellipsis")
	}
}
