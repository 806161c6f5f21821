package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/finbotdev/finbot/internal/schema"
)

// Snippet is one raw search result: title, source URL and a content excerpt.
// The dispatcher hands these to the two-hop formatter untouched.
type Snippet struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// PriceSearcher looks up current prices for an item. Implementations must
// pass the query through verbatim: the caller's item name, not any model
// belief about the product, is what gets searched.
type PriceSearcher interface {
	SearchPrice(ctx context.Context, itemName string) ([]Snippet, error)
}

// HTTPSearcher drives an external web-search service over HTTP. The timeout
// is kept well under the hosting platform's liveness cutoff; a slow search
// fails soft and the caller falls back to static estimates.
type HTTPSearcher struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTPSearcher builds a searcher against the given endpoint.
func NewHTTPSearcher(endpoint string, timeout time.Duration) *HTTPSearcher {
	return &HTTPSearcher{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
	}
}

// SearchPrice posts the query and decodes the service's result list.
func (s *HTTPSearcher) SearchPrice(ctx context.Context, itemName string) ([]Snippet, error) {
	if s.Endpoint == "" {
		return nil, fmt.Errorf("SearchPrice: no search endpoint configured")
	}

	payload, err := json.Marshal(map[string]any{
		"query": fmt.Sprintf("harga %s Indonesia", itemName),
		"limit": 5,
	})
	if err != nil {
		return nil, fmt.Errorf("SearchPrice: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("SearchPrice: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("SearchPrice: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SearchPrice: search service returned %d", resp.StatusCode)
	}

	var body struct {
		Results []Snippet `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("SearchPrice: decoding response: %w", err)
	}
	if len(body.Results) == 0 {
		return nil, fmt.Errorf("SearchPrice: no results for %q", itemName)
	}
	return body.Results, nil
}

// PriceEstimate is a static min/avg/max range used when live search fails.
type PriceEstimate struct {
	Min float64
	Avg float64
	Max float64
}

// staticPrices is the offline estimate table keyed by a lowercase fragment
// of the item name.
var staticPrices = map[string]PriceEstimate{
	"laptop":    {Min: 3000000, Avg: 8000000, Max: 25000000},
	"iphone":    {Min: 8000000, Avg: 15000000, Max: 25000000},
	"ps5":       {Min: 7000000, Avg: 8000000, Max: 9000000},
	"samsung":   {Min: 2000000, Avg: 7000000, Max: 20000000},
	"macbook":   {Min: 12000000, Avg: 20000000, Max: 35000000},
	"sepatu":    {Min: 200000, Avg: 500000, Max: 3000000},
	"baju":      {Min: 50000, Avg: 200000, Max: 1000000},
	"tas":       {Min: 100000, Avg: 500000, Max: 5000000},
	"jam":       {Min: 150000, Avg: 1000000, Max: 10000000},
	"headphone": {Min: 100000, Avg: 800000, Max: 5000000},
}

// EstimatePrice looks the item up in the static table by partial match.
func EstimatePrice(itemName string) (PriceEstimate, bool) {
	needle := strings.ToLower(strings.TrimSpace(itemName))
	for key, est := range staticPrices {
		if strings.Contains(needle, key) || strings.Contains(key, needle) {
			return est, true
		}
	}
	return PriceEstimate{}, false
}

// FormatEstimate renders a static estimate as the fallback reply body.
func FormatEstimate(itemName string, est PriceEstimate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Perkiraan harga untuk '%s':\n", itemName)
	fmt.Fprintf(&b, "  • Harga terendah: Rp %s\n", schema.FormatRupiah(est.Min))
	fmt.Fprintf(&b, "  • Harga tertinggi: Rp %s\n", schema.FormatRupiah(est.Max))
	fmt.Fprintf(&b, "  • Harga rata-rata: Rp %s\n\n", schema.FormatRupiah(est.Avg))
	b.WriteString("💡 Harga bisa bervariasi tergantung spesifikasi dan toko")
	return b.String()
}

// FormatSnippetsFallback is the deterministic renderer used when the second
// model hop fails: plain list of titles, excerpts and sources.
func FormatSnippetsFallback(itemName string, snippets []Snippet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Hasil pencarian harga untuk '%s':\n\n", itemName)
	for i, s := range snippets {
		if i >= 3 {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, s.Title)
		if s.Content != "" {
			fmt.Fprintf(&b, "   %s\n", truncateSnippet(s.Content, 200))
		}
		fmt.Fprintf(&b, "   Sumber: %s\n\n", s.URL)
	}
	b.WriteString("💡 Harga bisa bervariasi tergantung spesifikasi dan toko")
	return b.String()
}

func truncateSnippet(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
