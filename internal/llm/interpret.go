package llm

import (
	"encoding/json"
	"strings"

	"github.com/finbotdev/finbot/internal/schema"
)

// maxRawReply caps how much raw model text is carried into a casual_chat
// fallback. Platform adapters split long messages themselves, but an
// unparseable response should never balloon past a normal reply.
const maxRawReply = 1500

const thinkClose = "</think>"

// Interpret parses raw model output into a candidate intent record.
//
// A structured call maps its arguments straight onto the record. Free text
// first loses any reasoning block, then the substring from the first '{' to
// the last '}' is parsed as JSON. Parse failure at any stage is not a system
// fault: the model just chatted, so the result is casual_chat carrying the
// raw text verbatim.
func Interpret(out *Output) schema.IntentRecord {
	if out == nil {
		return casualChat("")
	}

	if out.IsCall() {
		return schema.FromArgs(out.FunctionArgs)
	}

	text := out.Text

	// Reasoning-tag wrappers: keep only what follows the closing marker.
	if i := strings.LastIndex(text, thinkClose); i != -1 {
		text = text[i+len(thinkClose):]
	}
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return casualChat(out.Text)
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &args); err != nil {
		return casualChat(out.Text)
	}
	if _, ok := args["intent"]; !ok {
		return casualChat(out.Text)
	}

	return schema.FromArgs(args)
}

func casualChat(raw string) schema.IntentRecord {
	return schema.IntentRecord{
		Intent:       schema.IntentCasualChat,
		ResponseText: truncate(strings.TrimSpace(raw), maxRawReply),
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
