// Package bot is the orchestration core: it turns one inbound message into
// exactly one reply, routing through the model client, the interpreter, the
// validator and a single intent handler. Nothing in here may escape as an
// unhandled fault; every path terminates in a non-empty string.
package bot

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbotdev/finbot/internal/llm"
	"github.com/finbotdev/finbot/internal/memory"
	"github.com/finbotdev/finbot/internal/schema"
	"github.com/finbotdev/finbot/internal/store"
	"github.com/finbotdev/finbot/internal/tools"
)

// ModelClient is the slice of the model layer the dispatcher needs. The
// concrete implementation is llm.Client; tests substitute their own.
type ModelClient interface {
	Infer(ctx context.Context, req llm.Request) (*llm.Output, error)
	FormatSnippets(ctx context.Context, itemName string, snippets []llm.Snippet) (string, error)
}

// Reply is the outcome of one processed turn. ArtifactPath is set only for
// intents producing a file (export); the platform adapter attaches it.
type Reply struct {
	Text         string
	ArtifactPath string
}

// Core wires the collaborators together. It holds no cross-request state
// beyond the bounded conversation memory; every turn is otherwise stateless.
type Core struct {
	model    ModelClient
	store    *store.Store
	memory   *memory.Store
	exporter *tools.Exporter
	searcher tools.PriceSearcher
	log      zerolog.Logger

	now func() time.Time
}

// New assembles the orchestration core.
func New(model ModelClient, st *store.Store, mem *memory.Store, exporter *tools.Exporter, searcher tools.PriceSearcher, log zerolog.Logger) *Core {
	return &Core{
		model:    model,
		store:    st,
		memory:   mem,
		exporter: exporter,
		searcher: searcher,
		log:      log,
		now:      time.Now,
	}
}

// Process handles one user turn end to end. It never returns an error and
// never returns empty text: degraded paths end in a canned line instead.
func (c *Core) Process(ctx context.Context, userID, username, message string) Reply {
	snapshot, err := c.store.GetBalance(ctx, userID)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("fetching balance failed")
		return c.finish(userID, message, Reply{Text: schema.StorageErrorMsg})
	}

	recent, err := c.store.RecentTransactions(ctx, userID, 3)
	if err != nil {
		c.log.Warn().Err(err).Str("user_id", userID).Msg("fetching recent transactions failed")
	}

	rec := c.classify(ctx, userID, message, snapshot, recent)
	rec = schema.Validate(rec)

	// Deterministic lexical triggers outrank the model for a narrow set of
	// non-destructive intents the model is unreliable at.
	if ov, ok := DetectOverride(message); ok {
		c.log.Debug().Str("intent", string(ov.Intent)).Msg("keyword override applied")
		rec.Intent = ov.Intent
		if ov.Format != "" {
			rec.Format = ov.Format
		}
	}

	reply := c.dispatch(ctx, userID, username, rec, snapshot)
	return c.finish(userID, message, reply)
}

// classify runs the primary model call and interpretation. Transport failure
// maps to the sentinel error intent; parse failure is handled inside
// Interpret and is not an error at all.
func (c *Core) classify(ctx context.Context, userID, message string, snapshot store.Balance, recent []store.Transaction) schema.IntentRecord {
	ctxBlock := schema.ContextBlock(toSnapshot(snapshot), toContextTransactions(recent))

	out, err := c.model.Infer(ctx, llm.Request{
		Context: ctxBlock,
		History: c.memory.History(userID),
		Message: message,
	})
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("model call failed")
		return schema.IntentRecord{
			Intent:       schema.IntentError,
			ResponseText: schema.TransportErrorMsg,
		}
	}

	rec := llm.Interpret(out)
	c.log.Info().Str("user_id", userID).Str("intent", string(rec.Intent)).Msg("message classified")
	return rec
}

// dispatch routes the validated record to exactly one handler. The switch is
// exhaustive over the intent enumeration; new intents fail loudly here at
// review time rather than falling through silently.
func (c *Core) dispatch(ctx context.Context, userID, username string, rec schema.IntentRecord, snapshot store.Balance) Reply {
	switch rec.Intent {
	case schema.IntentRecordIncome:
		return c.handleRecordTransaction(ctx, userID, username, rec, "income")
	case schema.IntentRecordExpense:
		return c.handleRecordTransaction(ctx, userID, username, rec, "expense")
	case schema.IntentCheckBalance:
		return c.handleCheckBalance(ctx, userID)
	case schema.IntentGetReport:
		return c.handleGetReport(ctx, userID)
	case schema.IntentBudgetAdvice:
		return c.handleBudgetAdvice(rec, snapshot)
	case schema.IntentPurchaseAnalysis:
		return c.handlePurchaseAnalysis(ctx, rec, snapshot)
	case schema.IntentDeleteTransaction:
		return c.handleDeleteTransaction(ctx, userID, rec)
	case schema.IntentExportReport:
		return c.handleExportReport(ctx, userID, rec)
	case schema.IntentSearchPrice:
		return c.handleSearchPrice(ctx, rec)
	case schema.IntentAnalyzeTrends:
		return c.handleAnalyzeTrends(ctx, userID)
	case schema.IntentSetReminder:
		return c.handleSetReminder(ctx, userID, rec)
	case schema.IntentViewReminders:
		return c.handleViewReminders(ctx, userID)
	case schema.IntentCompleteReminder:
		return c.handleCompleteReminder(ctx, userID, rec)
	case schema.IntentHelp:
		return Reply{Text: schema.HelpText}
	case schema.IntentError:
		return Reply{Text: nonEmpty(rec.ResponseText, schema.TransportErrorMsg)}
	case schema.IntentCasualChat:
		return Reply{Text: nonEmpty(rec.ResponseText, schema.FallbackGreeting)}
	default:
		return Reply{Text: nonEmpty(rec.ResponseText, schema.FallbackConfused)}
	}
}

// finish enforces the empty-message invariant and records both sides of the
// exchange in conversation memory.
func (c *Core) finish(userID, message string, reply Reply) Reply {
	if strings.TrimSpace(reply.Text) == "" {
		reply.Text = schema.FallbackGreeting
	}
	c.memory.Append(userID, memory.RoleUser, message)
	c.memory.Append(userID, memory.RoleAssistant, reply.Text)
	return reply
}

func toSnapshot(b store.Balance) schema.Snapshot {
	return schema.Snapshot{Income: b.Income, Expense: b.Expense, Balance: b.Balance}
}

func toContextTransactions(txs []store.Transaction) []schema.ContextTransaction {
	out := make([]schema.ContextTransaction, 0, len(txs))
	for _, t := range txs {
		out = append(out, schema.ContextTransaction{
			Type:        t.Type,
			Amount:      t.Amount,
			Category:    t.Category,
			Description: t.Description,
		})
	}
	return out
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
