package bot

import (
	"strings"

	"github.com/finbotdev/finbot/internal/schema"
	"github.com/finbotdev/finbot/internal/tools"
)

// Override is a deterministic routing decision derived from the message text
// alone. Only non-destructive intents may appear here: a stray keyword must
// never delete data.
type Override struct {
	Intent schema.Intent
	Format string
}

// exportTriggers are the substrings that force the export intent regardless
// of what the model classified. The model reliably misfiles "download" style
// requests as casual chat, so the lexical route wins.
var exportTriggers = []string{"export", "ekspor", "download", "unduh"}

// DetectOverride scans the message for trigger keywords. The match is
// case-insensitive and substring-based, same as the classifier it backstops.
func DetectOverride(message string) (Override, bool) {
	lower := strings.ToLower(message)
	for _, trigger := range exportTriggers {
		if strings.Contains(lower, trigger) {
			return Override{
				Intent: schema.IntentExportReport,
				Format: formatFromMessage(lower),
			}, true
		}
	}
	return Override{}, false
}

// formatFromMessage picks the export format mentioned in the text. CSV only
// when asked for by name; everything else gets the fuller Excel workbook.
func formatFromMessage(lower string) string {
	if strings.Contains(lower, "csv") {
		return tools.FormatCSV
	}
	return tools.FormatExcel
}
