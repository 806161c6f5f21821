package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/finbotdev/finbot/internal/llm"
	"github.com/finbotdev/finbot/internal/schema"
	"github.com/finbotdev/finbot/internal/store"
	"github.com/finbotdev/finbot/internal/tools"
)

// Spending thresholds used by the advice handlers. Ratios are fractions of
// the relevant base (income for spending, balance for purchases).
const (
	spendingWarnRatio  = 0.80
	emergencyFundRatio = 0.15
	savingsRatio       = 0.30
	purchaseSafeRatio  = 0.30
	purchaseRiskRatio  = 0.60
)

func (c *Core) handleRecordTransaction(ctx context.Context, userID, username string, rec schema.IntentRecord, txType string) Reply {
	if !rec.HasAmount() || rec.AmountValue() <= 0 {
		if txType == "income" {
			return Reply{Text: "Berapa jumlah pemasukannya? Contoh: \"dapat gaji 5 juta\" 💵"}
		}
		return Reply{Text: "Berapa jumlah pengeluarannya? Contoh: \"habis 50rb buat makan\" 💸"}
	}

	category := rec.Category
	if category == "" {
		category = schema.DefaultCategory
	}
	description := rec.Description
	if description == "" {
		description = category
	}

	if _, err := c.store.AddTransaction(ctx, userID, username, txType, rec.AmountValue(), category, description); err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("recording transaction failed")
		return Reply{Text: schema.StorageErrorMsg}
	}

	balance, err := c.store.GetBalance(ctx, userID)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("refreshing balance failed")
		return Reply{Text: schema.StorageErrorMsg}
	}

	var b strings.Builder
	if txType == "income" {
		b.WriteString("✅ Pemasukan berhasil dicatat!\n\n")
		fmt.Fprintf(&b, "💵 Jumlah: Rp %s\n", schema.FormatRupiah(rec.AmountValue()))
	} else {
		b.WriteString("✅ Pengeluaran berhasil dicatat!\n\n")
		fmt.Fprintf(&b, "💸 Jumlah: Rp %s\n", schema.FormatRupiah(rec.AmountValue()))
	}
	fmt.Fprintf(&b, "📁 Kategori: %s\n", category)
	fmt.Fprintf(&b, "📝 Deskripsi: %s\n\n", description)
	fmt.Fprintf(&b, "💰 Saldo sekarang: Rp %s", schema.FormatRupiah(balance.Balance))

	if txType == "expense" {
		if balance.Income > 0 && balance.Expense > balance.Income*spendingWarnRatio {
			b.WriteString("\n\n⚠️ Pengeluaranmu sudah lebih dari 80% pemasukan. Hati-hati ya!")
		}
		if balance.Balance < 0 {
			b.WriteString("\n\n🚨 Saldo kamu minus! Yuk catat pemasukan atau rem pengeluaran dulu.")
		}
	}
	return Reply{Text: b.String()}
}

func (c *Core) handleCheckBalance(ctx context.Context, userID string) Reply {
	balance, err := c.store.GetBalance(ctx, userID)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("fetching balance failed")
		return Reply{Text: schema.StorageErrorMsg}
	}

	var b strings.Builder
	b.WriteString("💰 **Ringkasan Keuanganmu:**\n\n")
	fmt.Fprintf(&b, "📈 Total Pemasukan: Rp %s\n", schema.FormatRupiah(balance.Income))
	fmt.Fprintf(&b, "📉 Total Pengeluaran: Rp %s\n", schema.FormatRupiah(balance.Expense))
	fmt.Fprintf(&b, "💵 Saldo: Rp %s\n", schema.FormatRupiah(balance.Balance))

	switch {
	case balance.Income == 0 && balance.Expense == 0:
		b.WriteString("\n💡 Belum ada transaksi. Mulai catat keuanganmu yuk!")
	case balance.Balance < 0:
		b.WriteString("\n🚨 Saldo minus! Pengeluaranmu melebihi pemasukan.")
	case balance.Income > 0:
		rate := balance.Balance / balance.Income * 100
		if rate >= 20 {
			fmt.Fprintf(&b, "\n✨ Bagus! Kamu menyisakan %.0f%% dari pemasukanmu.", rate)
		} else {
			fmt.Fprintf(&b, "\n💡 Kamu menyisakan %.0f%% dari pemasukan. Coba targetkan minimal 20%%.", rate)
		}
	}
	return Reply{Text: b.String()}
}

func (c *Core) handleGetReport(ctx context.Context, userID string) Reply {
	balance, err := c.store.GetBalance(ctx, userID)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("fetching balance failed")
		return Reply{Text: schema.StorageErrorMsg}
	}
	report, err := c.store.CategoryReport(ctx, userID)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("fetching category report failed")
		return Reply{Text: schema.StorageErrorMsg}
	}
	recent, err := c.store.RecentTransactions(ctx, userID, 5)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("fetching recent transactions failed")
		return Reply{Text: schema.StorageErrorMsg}
	}
	if len(recent) == 0 {
		return Reply{Text: "📊 Belum ada transaksi untuk dilaporkan. Mulai catat keuanganmu dulu ya! 😊"}
	}

	var b strings.Builder
	b.WriteString("📊 **Laporan Keuangan:**\n\n")
	fmt.Fprintf(&b, "📈 Total Pemasukan: Rp %s\n", schema.FormatRupiah(balance.Income))
	fmt.Fprintf(&b, "📉 Total Pengeluaran: Rp %s\n", schema.FormatRupiah(balance.Expense))
	fmt.Fprintf(&b, "💵 Saldo: Rp %s\n", schema.FormatRupiah(balance.Balance))

	shares := expenseShares(report)
	if len(shares) > 0 {
		b.WriteString("\n**Top Kategori Pengeluaran:**\n")
		for i, share := range shares {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "  %d. %s: Rp %s\n", i+1, share.Category, schema.FormatRupiah(share.Amount))
		}
	}

	b.WriteString("\n**Transaksi Terakhir:**\n")
	for _, tx := range recent {
		icon := "📉"
		if tx.Type == "income" {
			icon = "📈"
		}
		fmt.Fprintf(&b, "  %s [%d] Rp %s - %s (%s)\n", icon, tx.ID, schema.FormatRupiah(tx.Amount), tx.Description, tx.Category)
	}
	return Reply{Text: b.String()}
}

func (c *Core) handleBudgetAdvice(rec schema.IntentRecord, balance store.Balance) Reply {
	if balance.Balance <= 0 {
		return Reply{Text: "💡 Saldo kamu belum positif, jadi belum bisa dialokasikan. Fokus dulu catat pemasukan dan kurangi pengeluaran ya! 💪"}
	}

	emergency := balance.Balance * emergencyFundRatio
	savings := (balance.Balance - emergency) * savingsRatio

	var b strings.Builder
	b.WriteString("💡 **Saran Anggaran:**\n\n")
	fmt.Fprintf(&b, "💵 Saldo saat ini: Rp %s\n\n", schema.FormatRupiah(balance.Balance))
	fmt.Fprintf(&b, "🏦 Dana darurat (15%%): Rp %s\n", schema.FormatRupiah(emergency))
	fmt.Fprintf(&b, "💰 Tabungan (30%% dari sisa): Rp %s\n", schema.FormatRupiah(savings))
	fmt.Fprintf(&b, "🛒 Dana fleksibel: Rp %s\n", schema.FormatRupiah(balance.Balance-emergency-savings))
	b.WriteString("\n✨ Sisihkan dana darurat dulu sebelum yang lain. Konsistensi lebih penting dari jumlah!")

	if extra := strings.TrimSpace(rec.ResponseText); extra != "" {
		b.WriteString("\n\n")
		b.WriteString(extra)
	}
	return Reply{Text: b.String()}
}

func (c *Core) handlePurchaseAnalysis(ctx context.Context, rec schema.IntentRecord, balance store.Balance) Reply {
	item := strings.TrimSpace(rec.ItemName)
	if item == "" {
		item = "barang itu"
	}

	price := rec.AmountValue()
	estimated := false
	if !rec.HasAmount() || price <= 0 {
		est, ok := tools.EstimatePrice(item)
		if !ok {
			return Reply{Text: fmt.Sprintf("Berapa harga %s? Sebutkan harganya biar aku bisa analisis, atau tanya \"berapa harga %s\" dulu 😊", item, item)}
		}
		price = est.Avg
		estimated = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🛍️ **Analisis Pembelian: %s**\n\n", item)
	fmt.Fprintf(&b, "💵 Harga: Rp %s", schema.FormatRupiah(price))
	if estimated {
		b.WriteString(" (perkiraan)")
	}
	fmt.Fprintf(&b, "\n💰 Saldo kamu: Rp %s\n\n", schema.FormatRupiah(balance.Balance))

	if balance.Balance <= 0 || price > balance.Balance {
		b.WriteString("❌ Saldo kamu belum cukup untuk pembelian ini.\n")
		shortfall := price - balance.Balance
		if balance.Income > 0 {
			monthly := balance.Income * savingsRatio
			months := int(shortfall/monthly) + 1
			fmt.Fprintf(&b, "💡 Kalau kamu nabung 30%% dari pemasukan (Rp %s/bulan), kamu bisa beli dalam sekitar %d bulan.",
				schema.FormatRupiah(monthly), months)
		} else {
			b.WriteString("💡 Mulai catat pemasukanmu dulu, nanti aku bantu hitung rencana nabungnya.")
		}
		return Reply{Text: b.String()}
	}

	ratio := price / balance.Balance
	switch {
	case ratio <= purchaseSafeRatio:
		fmt.Fprintf(&b, "✅ **Aman dibeli!** Harga ini cuma %.0f%% dari saldomu.\n", ratio*100)
		fmt.Fprintf(&b, "💰 Sisa saldo setelah beli: Rp %s", schema.FormatRupiah(balance.Balance-price))
	case ratio <= purchaseRiskRatio:
		fmt.Fprintf(&b, "⚠️ **Boleh, tapi hati-hati.** Harga ini %.0f%% dari saldomu.\n", ratio*100)
		fmt.Fprintf(&b, "💰 Sisa saldo setelah beli: Rp %s\n", schema.FormatRupiah(balance.Balance-price))
		b.WriteString("💡 Pastikan kebutuhan pokok bulan ini sudah aman dulu ya.")
	default:
		fmt.Fprintf(&b, "❌ **Kurang disarankan.** Harga ini %.0f%% dari saldomu.\n", ratio*100)
		b.WriteString("💡 Pertimbangkan menunda atau menabung dulu biar keuanganmu tetap sehat.")
	}
	return Reply{Text: b.String()}
}

func (c *Core) handleDeleteTransaction(ctx context.Context, userID string, rec schema.IntentRecord) Reply {
	if rec.TransactionID <= 0 {
		return Reply{Text: "Transaksi mana yang mau dihapus? Sebutkan ID-nya, misalnya \"hapus transaksi 12\". Lihat ID di laporan ya 📊"}
	}

	deleted, err := c.store.DeleteTransaction(ctx, userID, rec.TransactionID)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Int64("tx_id", rec.TransactionID).Msg("deleting transaction failed")
		return Reply{Text: schema.StorageErrorMsg}
	}
	if !deleted {
		return Reply{Text: fmt.Sprintf("🔍 Transaksi %d tidak ditemukan di catatanmu. Cek lagi ID-nya di laporan ya.", rec.TransactionID)}
	}
	return Reply{Text: fmt.Sprintf("🗑️ Transaksi %d berhasil dihapus. Saldo kamu sudah diperbarui.", rec.TransactionID)}
}

func (c *Core) handleExportReport(ctx context.Context, userID string, rec schema.IntentRecord) Reply {
	txs, err := c.store.AllTransactions(ctx, userID)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("loading transactions for export failed")
		return Reply{Text: schema.StorageErrorMsg}
	}
	if len(txs) == 0 {
		return Reply{Text: "📁 Belum ada transaksi untuk diekspor. Catat dulu beberapa transaksi ya! 😊"}
	}

	balance, err := c.store.GetBalance(ctx, userID)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("fetching balance for export failed")
		return Reply{Text: schema.StorageErrorMsg}
	}
	report, err := c.store.CategoryReport(ctx, userID)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("fetching category report for export failed")
		return Reply{Text: schema.StorageErrorMsg}
	}

	format := tools.NormalizeFormat(rec.Format)
	path, err := c.exporter.Export(userID, format, txs, balance, report)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Str("format", format).Msg("export failed")
		return Reply{Text: "Maaf, ekspor laporannya gagal. Coba lagi ya! 🔧"}
	}

	label := "Excel"
	if format == tools.FormatCSV {
		label = "CSV"
	}
	return Reply{
		Text:         fmt.Sprintf("📁 Laporan keuanganmu sudah siap dalam format %s! (%d transaksi)", label, len(txs)),
		ArtifactPath: path,
	}
}

func (c *Core) handleSearchPrice(ctx context.Context, rec schema.IntentRecord) Reply {
	item := strings.TrimSpace(rec.ItemName)
	if item == "" {
		return Reply{Text: "Barang apa yang mau dicari harganya? 🔍"}
	}

	if c.searcher != nil {
		snippets, err := c.searcher.SearchPrice(ctx, item)
		if err == nil {
			return Reply{Text: c.renderSnippets(ctx, item, snippets)}
		}
		c.log.Warn().Err(err).Str("item", item).Msg("price search failed, using static estimate")
	}

	if est, ok := tools.EstimatePrice(item); ok {
		return Reply{Text: tools.FormatEstimate(item, est)}
	}
	return Reply{Text: fmt.Sprintf("🔍 Maaf, aku belum menemukan harga untuk '%s'. Coba sebutkan merek atau tipenya lebih spesifik ya!", item)}
}

// renderSnippets is the second model hop: raw snippets in, prose out. The
// deterministic fallback renderer keeps the reply useful when the hop fails.
func (c *Core) renderSnippets(ctx context.Context, item string, snippets []tools.Snippet) string {
	converted := make([]llm.Snippet, 0, len(snippets))
	for _, s := range snippets {
		converted = append(converted, llm.Snippet{Title: s.Title, URL: s.URL, Content: s.Content})
	}

	text, err := c.model.FormatSnippets(ctx, item, converted)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			c.log.Warn().Err(err).Str("item", item).Msg("snippet formatting failed, using fallback renderer")
		}
		return tools.FormatSnippetsFallback(item, snippets)
	}
	return text
}

func (c *Core) handleAnalyzeTrends(ctx context.Context, userID string) Reply {
	txs, err := c.store.AllTransactions(ctx, userID)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("loading transactions for trends failed")
		return Reply{Text: schema.StorageErrorMsg}
	}

	report, err := tools.AnalyzeTrends(txs)
	if err != nil {
		return Reply{Text: "📈 Belum ada cukup data untuk analisis tren. Catat dulu beberapa transaksi ya! 😊"}
	}
	return Reply{Text: tools.FormatTrendReport(report)}
}

func (c *Core) handleSetReminder(ctx context.Context, userID string, rec schema.IntentRecord) Reply {
	text := strings.TrimSpace(rec.ReminderText)
	if text == "" {
		return Reply{Text: "Reminder untuk apa? Contoh: \"ingatkan bayar listrik tanggal 5\" ⏰"}
	}
	if strings.TrimSpace(rec.DueDate) == "" {
		return Reply{Text: fmt.Sprintf("Tanggal berapa aku harus ingatkan soal \"%s\"? 📅", text)}
	}

	dueDate, err := tools.ResolveDueDate(rec.DueDate, c.now())
	if err != nil {
		return Reply{Text: fmt.Sprintf("Hmm, aku kurang paham tanggalnya (%q). Coba sebutkan tanggal 1-31 atau format YYYY-MM-DD ya 📅", rec.DueDate)}
	}

	id, err := c.store.AddReminder(ctx, userID, text, dueDate, rec.Category)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("saving reminder failed")
		return Reply{Text: schema.StorageErrorMsg}
	}

	return Reply{Text: fmt.Sprintf("⏰ Reminder dibuat!\n\n📝 %s\n📅 Jatuh tempo: %s\n🔖 ID: %d\n\nAku akan bantu ingatkan ya!",
		text, tools.FormatDueDate(dueDate), id)}
}

func (c *Core) handleViewReminders(ctx context.Context, userID string) Reply {
	reminders, err := c.store.Reminders(ctx, userID, false)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Msg("loading reminders failed")
		return Reply{Text: schema.StorageErrorMsg}
	}
	if len(reminders) == 0 {
		return Reply{Text: "⏰ Tidak ada reminder aktif. Buat reminder dengan bilang misalnya \"ingatkan bayar listrik tanggal 5\" 😊"}
	}

	var b strings.Builder
	b.WriteString("⏰ **Reminder Aktif:**\n\n")
	for _, r := range reminders {
		fmt.Fprintf(&b, "  [%d] %s — %s (%s)\n", r.ID, r.Text, tools.FormatDueDate(r.DueDate), r.Category)
	}
	b.WriteString("\n💡 Tandai selesai dengan bilang \"reminder 1 selesai\"")
	return Reply{Text: b.String()}
}

func (c *Core) handleCompleteReminder(ctx context.Context, userID string, rec schema.IntentRecord) Reply {
	if rec.ReminderID <= 0 {
		return Reply{Text: "Reminder mana yang sudah selesai? Sebutkan ID-nya ya, misalnya \"reminder 1 selesai\" ✅"}
	}

	done, err := c.store.CompleteReminder(ctx, userID, rec.ReminderID)
	if err != nil {
		c.log.Error().Err(err).Str("user_id", userID).Int64("reminder_id", rec.ReminderID).Msg("completing reminder failed")
		return Reply{Text: schema.StorageErrorMsg}
	}
	if !done {
		return Reply{Text: fmt.Sprintf("🔍 Reminder %d tidak ditemukan atau sudah selesai.", rec.ReminderID)}
	}
	return Reply{Text: fmt.Sprintf("✅ Reminder %d ditandai selesai. Mantap, tagihan aman! 🎉", rec.ReminderID)}
}

// expenseShares flattens the category report to expense-only entries sorted
// by amount, largest first.
func expenseShares(report map[string]store.CategoryTotals) []tools.CategoryShare {
	var shares []tools.CategoryShare
	for category, totals := range report {
		if totals.Expense > 0 {
			shares = append(shares, tools.CategoryShare{Category: category, Amount: totals.Expense})
		}
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount != shares[j].Amount {
			return shares[i].Amount > shares[j].Amount
		}
		return shares[i].Category < shares[j].Category
	})
	return shares
}
