// Package llm wraps the Gemini client behind a small interface: it ships a
// request (instructions + context + history + message) and hands back either
// a structured call or raw text. It knows nothing about financial semantics.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/finbotdev/finbot/internal/memory"
	"github.com/finbotdev/finbot/internal/schema"
)

// Request carries everything the primary model call needs for one turn.
type Request struct {
	// Context is the per-user financial context block.
	Context string
	// History is the bounded conversation window, oldest first.
	History []memory.Turn
	// Message is the current user message, verbatim.
	Message string
}

// Output is the model's raw response in one of two encodings. Exactly one of
// FunctionArgs and Text is meaningful; downstream code stays encoding-blind
// behind Interpret.
type Output struct {
	FunctionArgs map[string]any
	Text         string
}

// IsCall reports whether the structured-call encoding was returned.
func (o *Output) IsCall() bool {
	return o.FunctionArgs != nil
}

// Client is the Gemini-backed model client. One attempt per turn: transport
// failures are returned to the caller, which maps them to the sentinel error
// intent. Retries are deliberately not this component's business.
type Client struct {
	genai    *genai.Client
	model    string
	timeout  time.Duration
	useTools bool
	log      zerolog.Logger
}

// NewClient builds a model client against the Gemini API backend.
func NewClient(ctx context.Context, apiKey, model string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("llm.NewClient: %w", err)
	}
	return &Client{
		genai:    gc,
		model:    model,
		timeout:  timeout,
		useTools: true,
		log:      log,
	}, nil
}

// Infer sends the primary intent-extraction request. Structured-call mode is
// attempted first; if the backend rejects the tool declaration the request is
// reissued once in free-text mode (a mode switch, not a retry of a failed
// transport).
func (c *Client) Infer(ctx context.Context, req Request) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	contents := buildContents(req)
	base := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: schema.SystemPrompt + "\n\n" + req.Context}},
		},
		Temperature:     genai.Ptr[float32](0.7),
		MaxOutputTokens: 1000,
	}

	if c.useTools {
		cfg := *base
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{financialRequestDecl()}}}
		resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, &cfg)
		if err == nil {
			if calls := resp.FunctionCalls(); len(calls) > 0 {
				return &Output{FunctionArgs: calls[0].Args}, nil
			}
			return &Output{Text: resp.Text()}, nil
		}
		c.log.Warn().Err(err).Msg("structured-call mode failed, falling back to free text")
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, contents, base)
	if err != nil {
		return nil, fmt.Errorf("llm.Infer: %w", err)
	}
	return &Output{Text: resp.Text()}, nil
}

// Snippet is one raw search result handed to the two-hop formatter.
type Snippet struct {
	Title   string
	URL     string
	Content string
}

// FormatSnippets is the second, smaller model hop: it turns raw search
// snippets into prose. Callers must keep their own deterministic fallback;
// an error here never reaches the user directly.
func (c *Client) FormatSnippets(ctx context.Context, itemName string, snippets []Snippet) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var b strings.Builder
	fmt.Fprintf(&b, "Barang yang dicari: %s\n\nHasil pencarian:\n", itemName)
	for i, s := range snippets {
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n", i+1, s.Title, s.URL, s.Content)
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: schema.FormatterPrompt}},
		},
		Temperature:     genai.Ptr[float32](0.3),
		MaxOutputTokens: 600,
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(b.String()), cfg)
	if err != nil {
		return "", fmt.Errorf("llm.FormatSnippets: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("llm.FormatSnippets: empty response from model")
	}
	return text, nil
}

// buildContents lays out history plus the current message. Gemini uses
// "model" for the assistant role.
func buildContents(req Request) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := genai.RoleUser
		if turn.Role == memory.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: turn.Content}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: req.Message}},
	})
	return contents
}

// financialRequestDecl mirrors schema.IntentRecord for structured-call mode.
// Field names here are the only ones the interpreter maps; anything else the
// model invents is dropped.
func financialRequestDecl() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        "process_financial_request",
		Description: "Memproses permintaan keuangan dari pengguna dan mengembalikan intent beserta data yang diekstrak",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"intent": {
					Type:        genai.TypeString,
					Enum:        schema.IntentNames(),
					Description: "Intent/tujuan dari permintaan pengguna",
				},
				"amount": {
					Type:        genai.TypeNumber,
					Description: "Jumlah uang dalam Rupiah penuh (5000000 untuk 5 juta)",
				},
				"category": {
					Type:        genai.TypeString,
					Enum:        schema.AllCategories(),
					Description: "Kategori transaksi yang paling sesuai dengan konteks",
				},
				"description": {
					Type:        genai.TypeString,
					Description: "Deskripsi tambahan tentang transaksi",
				},
				"item_name": {
					Type:        genai.TypeString,
					Description: "Nama barang, persis seperti yang disebut pengguna",
				},
				"transaction_id": {
					Type:        genai.TypeInteger,
					Description: "ID transaksi (untuk delete_transaction)",
				},
				"format": {
					Type:        genai.TypeString,
					Enum:        []string{"csv", "excel"},
					Description: "Format ekspor file (untuk export_report)",
				},
				"reminder_text": {
					Type:        genai.TypeString,
					Description: "Teks reminder (untuk set_reminder)",
				},
				"due_date": {
					Type:        genai.TypeString,
					Description: "Tanggal jatuh tempo, YYYY-MM-DD atau DD saja",
				},
				"reminder_id": {
					Type:        genai.TypeInteger,
					Description: "ID reminder (untuk complete_reminder)",
				},
				"response_text": {
					Type:        genai.TypeString,
					Description: "Respon natural dalam bahasa Indonesia untuk pengguna",
				},
			},
			Required: []string{"intent", "response_text"},
		},
	}
}
