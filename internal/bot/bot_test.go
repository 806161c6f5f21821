package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbotdev/finbot/internal/llm"
	"github.com/finbotdev/finbot/internal/memory"
	"github.com/finbotdev/finbot/internal/schema"
	"github.com/finbotdev/finbot/internal/store"
	"github.com/finbotdev/finbot/internal/tools"
)

// fakeModel scripts the model layer: one canned Infer output plus an
// optional FormatSnippets result.
type fakeModel struct {
	out     *llm.Output
	err     error
	lastReq llm.Request

	formatText  string
	formatErr   error
	formatCalls int
}

func (f *fakeModel) Infer(ctx context.Context, req llm.Request) (*llm.Output, error) {
	f.lastReq = req
	return f.out, f.err
}

func (f *fakeModel) FormatSnippets(ctx context.Context, itemName string, snippets []llm.Snippet) (string, error) {
	f.formatCalls++
	return f.formatText, f.formatErr
}

type fakeSearcher struct {
	lastQuery string
	snippets  []tools.Snippet
	err       error
}

func (f *fakeSearcher) SearchPrice(ctx context.Context, itemName string) ([]tools.Snippet, error) {
	f.lastQuery = itemName
	if f.err != nil {
		return nil, f.err
	}
	return f.snippets, nil
}

func newTestCore(t *testing.T, model ModelClient, searcher tools.PriceSearcher) (*Core, *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	exporter, err := tools.NewExporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}

	core := New(model, st, memory.NewStore(5), exporter, searcher, zerolog.Nop())
	return core, st
}

func callOutput(args map[string]any) *llm.Output {
	return &llm.Output{FunctionArgs: args}
}

func TestProcess_RecordIncome(t *testing.T) {
	model := &fakeModel{out: callOutput(map[string]any{
		"intent":        "record_income",
		"amount":        5000000.0,
		"category":      "Gaji",
		"description":   "gaji bulanan",
		"response_text": "Dicatat!",
	})}
	core, st := newTestCore(t, model, nil)
	ctx := context.Background()

	reply := core.Process(ctx, "u1", "budi", "aku dapat gaji 5000000")
	if !strings.Contains(reply.Text, "5,000,000") {
		t.Errorf("reply should show the recorded amount:\n%s", reply.Text)
	}
	if !strings.Contains(reply.Text, "Gaji") {
		t.Errorf("reply should show the category:\n%s", reply.Text)
	}

	b, err := st.GetBalance(ctx, "u1")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if b.Income != 5000000 {
		t.Errorf("income = %v, want 5000000", b.Income)
	}

	// Both sides of the exchange land in memory.
	if got := core.memory.Len("u1"); got != 2 {
		t.Errorf("memory turns = %d, want 2", got)
	}
}

func TestProcess_ExpenseWarnings(t *testing.T) {
	model := &fakeModel{out: callOutput(map[string]any{
		"intent":   "record_expense",
		"amount":   900000.0,
		"category": "Belanja",
	})}
	core, st := newTestCore(t, model, nil)
	ctx := context.Background()

	if _, err := st.AddTransaction(ctx, "u1", "budi", "income", 1000000, "Gaji", ""); err != nil {
		t.Fatalf("seed income: %v", err)
	}

	reply := core.Process(ctx, "u1", "budi", "belanja 900rb")
	if !strings.Contains(reply.Text, "80%") {
		t.Errorf("spending past 80%% of income should warn:\n%s", reply.Text)
	}
}

func TestProcess_CheckBalanceReadIdempotent(t *testing.T) {
	model := &fakeModel{out: callOutput(map[string]any{"intent": "check_balance"})}
	core, st := newTestCore(t, model, nil)
	ctx := context.Background()

	if _, err := st.AddTransaction(ctx, "u1", "budi", "income", 5000000, "Gaji", ""); err != nil {
		t.Fatalf("seed income: %v", err)
	}
	if _, err := st.AddTransaction(ctx, "u1", "budi", "expense", 250000, "Makanan", ""); err != nil {
		t.Fatalf("seed expense: %v", err)
	}

	first := core.Process(ctx, "u1", "budi", "berapa saldo aku?")
	second := core.Process(ctx, "u1", "budi", "berapa saldo aku?")
	if first.Text != second.Text {
		t.Errorf("balance check mutated state:\nfirst:\n%s\nsecond:\n%s", first.Text, second.Text)
	}
	if !strings.Contains(first.Text, "4,750,000") {
		t.Errorf("reply should show the derived balance:\n%s", first.Text)
	}
}

func TestProcess_TransportError(t *testing.T) {
	model := &fakeModel{err: errors.New("connection refused")}
	core, _ := newTestCore(t, model, nil)

	reply := core.Process(context.Background(), "u1", "budi", "halo")
	if reply.Text != schema.TransportErrorMsg {
		t.Errorf("reply = %q, want transport error message", reply.Text)
	}
}

func TestProcess_EmptyModelReplyFallsBack(t *testing.T) {
	model := &fakeModel{out: &llm.Output{Text: ""}}
	core, _ := newTestCore(t, model, nil)

	reply := core.Process(context.Background(), "u1", "budi", "hai")
	if reply.Text != schema.FallbackGreeting {
		t.Errorf("reply = %q, want greeting fallback", reply.Text)
	}
}

func TestProcess_UnknownIntentBecomesCasualChat(t *testing.T) {
	model := &fakeModel{out: callOutput(map[string]any{
		"intent":        "transfer_money",
		"response_text": "Siap, transfer!",
	})}
	core, _ := newTestCore(t, model, nil)

	reply := core.Process(context.Background(), "u1", "budi", "transfer dong")
	if reply.Text != "Siap, transfer!" {
		t.Errorf("unknown intent should degrade to casual chat with model text, got %q", reply.Text)
	}
}

func TestProcess_KeywordOverrideExports(t *testing.T) {
	// Model misfiles the request as casual chat; the keyword wins.
	model := &fakeModel{out: callOutput(map[string]any{
		"intent":        "casual_chat",
		"response_text": "Maaf, aku tidak bisa ekspor file.",
	})}
	core, st := newTestCore(t, model, nil)
	ctx := context.Background()

	if _, err := st.AddTransaction(ctx, "u1", "budi", "income", 1000000, "Gaji", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}

	reply := core.Process(ctx, "u1", "budi", "tolong export laporanku ke csv")
	if reply.ArtifactPath == "" {
		t.Fatalf("override should produce an export file, reply: %s", reply.Text)
	}
	if !strings.HasSuffix(reply.ArtifactPath, ".csv") {
		t.Errorf("artifact = %q, want .csv (csv was requested)", reply.ArtifactPath)
	}
}

func TestProcess_OverrideDefaultsToExcel(t *testing.T) {
	model := &fakeModel{out: callOutput(map[string]any{"intent": "casual_chat", "response_text": "ok"})}
	core, st := newTestCore(t, model, nil)
	ctx := context.Background()

	if _, err := st.AddTransaction(ctx, "u1", "budi", "income", 1000000, "Gaji", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}

	reply := core.Process(ctx, "u1", "budi", "download laporan keuanganku dong")
	if !strings.HasSuffix(reply.ArtifactPath, ".xlsx") {
		t.Errorf("artifact = %q, want .xlsx default", reply.ArtifactPath)
	}
}

func TestDetectOverride(t *testing.T) {
	tests := []struct {
		message    string
		wantHit    bool
		wantFormat string
	}{
		{"tolong EXPORT data", true, tools.FormatExcel},
		{"ekspor ke csv ya", true, tools.FormatCSV},
		{"unduh laporan xlsx", true, tools.FormatExcel},
		{"berapa saldo aku", false, ""},
	}
	for _, tt := range tests {
		ov, ok := DetectOverride(tt.message)
		if ok != tt.wantHit {
			t.Errorf("DetectOverride(%q) hit = %v, want %v", tt.message, ok, tt.wantHit)
			continue
		}
		if ok && ov.Format != tt.wantFormat {
			t.Errorf("DetectOverride(%q) format = %q, want %q", tt.message, ov.Format, tt.wantFormat)
		}
		if ok && ov.Intent != schema.IntentExportReport {
			t.Errorf("DetectOverride(%q) intent = %q", tt.message, ov.Intent)
		}
	}
}

func TestProcess_DeleteOwnership(t *testing.T) {
	core, st := newTestCore(t, &fakeModel{}, nil)
	ctx := context.Background()

	id, err := st.AddTransaction(ctx, "other", "siti", "expense", 5000, "Makanan", "")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	core.model = &fakeModel{out: callOutput(map[string]any{
		"intent":         "delete_transaction",
		"transaction_id": float64(id),
	})}

	reply := core.Process(ctx, "u1", "budi", fmt.Sprintf("hapus transaksi %d", id))
	if !strings.Contains(reply.Text, "tidak ditemukan") {
		t.Errorf("deleting another user's row should be denied:\n%s", reply.Text)
	}

	// The row must survive.
	b, _ := st.GetBalance(ctx, "other")
	if b.Expense != 5000 {
		t.Errorf("other user's transaction was mutated: %+v", b)
	}
}

func TestProcess_SearchPriceQueryFidelity(t *testing.T) {
	searcher := &fakeSearcher{snippets: []tools.Snippet{
		{Title: "Toko A", URL: "https://a.example", Content: "Rp 8.000.000"},
	}}
	model := &fakeModel{
		out: callOutput(map[string]any{
			"intent":    "search_price",
			"item_name": "iphone 17 pro max 256gb",
		}),
		formatText: "Harga iPhone 17 Pro Max berkisar Rp 8.000.000.",
	}
	core, _ := newTestCore(t, model, searcher)

	reply := core.Process(context.Background(), "u1", "budi", "berapa harga iphone 17 pro max 256gb?")
	if searcher.lastQuery != "iphone 17 pro max 256gb" {
		t.Errorf("search query = %q, item name must pass through verbatim", searcher.lastQuery)
	}
	if reply.Text != model.formatText {
		t.Errorf("reply = %q, want formatted snippet text", reply.Text)
	}
	if model.formatCalls != 1 {
		t.Errorf("format hop calls = %d, want 1", model.formatCalls)
	}
}

func TestProcess_SearchPriceFormatterFallback(t *testing.T) {
	searcher := &fakeSearcher{snippets: []tools.Snippet{
		{Title: "Toko A", URL: "https://a.example", Content: "Rp 8.000.000"},
	}}
	model := &fakeModel{
		out:       callOutput(map[string]any{"intent": "search_price", "item_name": "ps5"}),
		formatErr: errors.New("model busy"),
	}
	core, _ := newTestCore(t, model, searcher)

	reply := core.Process(context.Background(), "u1", "budi", "harga ps5?")
	if !strings.Contains(reply.Text, "Hasil pencarian harga") || !strings.Contains(reply.Text, "Toko A") {
		t.Errorf("failed format hop should fall back to the deterministic renderer:\n%s", reply.Text)
	}
}

func TestProcess_SearchPriceStaticFallback(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("timeout")}
	model := &fakeModel{out: callOutput(map[string]any{"intent": "search_price", "item_name": "laptop"})}
	core, _ := newTestCore(t, model, searcher)

	reply := core.Process(context.Background(), "u1", "budi", "harga laptop?")
	if !strings.Contains(reply.Text, "Perkiraan harga") {
		t.Errorf("search failure should fall back to static estimates:\n%s", reply.Text)
	}
}

func TestBudgetAdviceMath(t *testing.T) {
	core, _ := newTestCore(t, &fakeModel{}, nil)

	reply := core.handleBudgetAdvice(schema.IntentRecord{}, store.Balance{Balance: 1000000, Income: 1000000})
	// 15% emergency fund, then 30% of the remainder as savings.
	if !strings.Contains(reply.Text, "150,000") {
		t.Errorf("emergency fund should be 150,000:\n%s", reply.Text)
	}
	if !strings.Contains(reply.Text, "255,000") {
		t.Errorf("savings should be 255,000:\n%s", reply.Text)
	}
}

func TestBudgetAdvice_NoBalance(t *testing.T) {
	core, _ := newTestCore(t, &fakeModel{}, nil)
	reply := core.handleBudgetAdvice(schema.IntentRecord{}, store.Balance{Balance: 0})
	if !strings.Contains(reply.Text, "belum positif") {
		t.Errorf("zero balance should get the bootstrap advice:\n%s", reply.Text)
	}
}

func TestPurchaseAnalysisTiers(t *testing.T) {
	core, _ := newTestCore(t, &fakeModel{}, nil)
	balance := store.Balance{Balance: 10000000, Income: 10000000}

	rec := func(price float64) schema.IntentRecord {
		return schema.IntentRecord{Intent: schema.IntentPurchaseAnalysis, Amount: &price, ItemName: "barang"}
	}

	tests := []struct {
		price float64
		want  string
	}{
		{3000000, "Aman dibeli"},
		{3100000, "hati-hati"},
		{6100000, "Kurang disarankan"},
	}
	for _, tt := range tests {
		reply := core.handlePurchaseAnalysis(context.Background(), rec(tt.price), balance)
		if !strings.Contains(reply.Text, tt.want) {
			t.Errorf("price %v: want verdict %q in:\n%s", tt.price, tt.want, reply.Text)
		}
	}
}

func TestPurchaseAnalysis_Unaffordable(t *testing.T) {
	core, _ := newTestCore(t, &fakeModel{}, nil)
	price := 12000000.0
	reply := core.handlePurchaseAnalysis(context.Background(),
		schema.IntentRecord{Intent: schema.IntentPurchaseAnalysis, Amount: &price, ItemName: "macbook"},
		store.Balance{Balance: 10000000, Income: 10000000})

	if !strings.Contains(reply.Text, "belum cukup") {
		t.Errorf("over-balance purchase should be rejected:\n%s", reply.Text)
	}
	// Shortfall 2,000,000 at 3,000,000/month savings lands within 1 month.
	if !strings.Contains(reply.Text, "1 bulan") {
		t.Errorf("savings plan should estimate 1 month:\n%s", reply.Text)
	}
}

func TestProcess_SetReminderRollsOver(t *testing.T) {
	model := &fakeModel{out: callOutput(map[string]any{
		"intent":        "set_reminder",
		"reminder_text": "bayar listrik",
		"due_date":      "5",
	})}
	core, st := newTestCore(t, model, nil)
	core.now = func() time.Time {
		return time.Date(2026, time.September, 20, 12, 0, 0, 0, time.UTC)
	}
	ctx := context.Background()

	reply := core.Process(ctx, "u1", "budi", "ingatkan bayar listrik tanggal 5")
	if !strings.Contains(reply.Text, "05 October 2026") {
		t.Errorf("day 5 with today=20 should roll to October:\n%s", reply.Text)
	}

	reminders, err := st.Reminders(ctx, "u1", false)
	if err != nil || len(reminders) != 1 {
		t.Fatalf("stored reminders = %v, %v", reminders, err)
	}
	if reminders[0].DueDate != "2026-10-05" {
		t.Errorf("stored due date = %q, want 2026-10-05", reminders[0].DueDate)
	}
}

func TestProcess_HelpIsFixedText(t *testing.T) {
	model := &fakeModel{out: callOutput(map[string]any{
		"intent":        "help",
		"response_text": "model text that must be ignored",
	})}
	core, _ := newTestCore(t, model, nil)

	reply := core.Process(context.Background(), "u1", "budi", "apa yang bisa kamu lakukan?")
	if reply.Text != schema.HelpText {
		t.Errorf("help must return the fixed help text")
	}
}

func TestProcess_HistoryFlowsToModel(t *testing.T) {
	model := &fakeModel{out: &llm.Output{Text: "Halo juga!"}}
	core, _ := newTestCore(t, model, nil)
	ctx := context.Background()

	core.Process(ctx, "u1", "budi", "halo")
	core.Process(ctx, "u1", "budi", "apa kabar?")

	if len(model.lastReq.History) != 2 {
		t.Fatalf("second call should carry the first exchange, got %d turns", len(model.lastReq.History))
	}
	if model.lastReq.History[0].Content != "halo" {
		t.Errorf("history[0] = %+v", model.lastReq.History[0])
	}
	if model.lastReq.Context == "" {
		t.Error("context block should never be empty")
	}
}
