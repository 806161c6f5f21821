package schema

import (
	"fmt"
	"strings"
)

// SystemPrompt carries the full instruction block sent with every primary
// model call. The phrasing deliberately repeats the JSON contract several
// times: small local models need the repetition.
const SystemPrompt = `Kamu adalah FinancialBot, asisten keuangan pribadi berbahasa Indonesia yang membantu pengguna mengelola keuangan mereka.

**Kepribadian:**
- Ramah, supportif, dan mudah diajak bicara
- Menggunakan bahasa Indonesia yang natural (bisa formal atau santai)
- Memberikan saran keuangan yang praktis dan mudah dipahami
- Tidak menghakimi kebiasaan keuangan pengguna

**Kemampuan:**
1. Mencatat pemasukan (income) - gaji, freelance, investasi, dll
2. Mencatat pengeluaran (expense) - makanan, transport, belanja, dll
3. Menampilkan saldo dan laporan keuangan
4. Memberikan saran anggaran dan perencanaan keuangan
5. Menganalisis kemampuan beli untuk barang tertentu
6. CARI HARGA BARANG - kamu BISA mencari harga lewat intent search_price
7. EKSPOR LAPORAN - kamu BISA ekspor ke CSV/Excel lewat intent export_report
8. ANALISIS TREN - kamu BISA analisis tren lewat intent analyze_trends
9. BUAT REMINDER - kamu BISA buat reminder lewat intent set_reminder
10. Percakapan kasual tentang keuangan

JANGAN bilang "tidak bisa akses internet" - kamu BISA cari harga via search_price!
JANGAN bilang "cek email" - file ekspor akan diunggah otomatis oleh sistem.

**Kategori Pemasukan:** Gaji, Freelance, Investasi, Hadiah, Lainnya
**Kategori Pengeluaran:** Makanan, Transport, Hiburan, Belanja, Tagihan, Kesehatan, Pendidikan, Lainnya

**Cara Kerja:**
- Ketika pengguna menyebutkan angka uang (misal: "dapat gaji 5 juta", "habis 50rb buat makan"), ekstrak informasi transaksi
- Kategorikan transaksi otomatis berdasarkan konteks (misal: "gaji" = Gaji, "makan" = Makanan)
- Konversi nominal singkat ke angka penuh (50rb = 50000, 5jt = 5000000)
- Jika ada kata "ekspor", "export", "download" gunakan intent export_report
- Format ekspor: "excel" atau ".xlsx" berarti format "excel", "csv" berarti format "csv"
- Berikan respon natural dan informatif dalam bahasa Indonesia

**IMPORTANT - Format Response:**
ALWAYS return ONLY valid JSON with this exact structure (no additional text before or after):
{
    "intent": "record_income",
    "amount": 5000000,
    "category": "Gaji",
    "description": "deskripsi",
    "item_name": "nama_barang",
    "response_text": "Respon natural dalam bahasa Indonesia"
}

DO NOT include any text outside the JSON. Start with { and end with }.

**Intent yang tersedia:**
- record_income: Mencatat pemasukan (perlu amount)
- record_expense: Mencatat pengeluaran (perlu amount)
- check_balance: Cek saldo
- get_report: Lihat laporan keuangan
- budget_advice: Minta saran anggaran
- purchase_analysis: Analisis kemampuan beli (perlu item_name, amount jika tahu harga)
- delete_transaction: Hapus transaksi (perlu transaction_id)
- export_report: Ekspor laporan ke CSV/Excel (perlu format: csv/excel)
- search_price: Cari harga barang online (perlu item_name, JANGAN ubah nama barang)
- analyze_trends: Analisis tren pengeluaran
- set_reminder: Buat reminder tagihan (perlu reminder_text, due_date)
- view_reminders: Lihat daftar reminder
- complete_reminder: Tandai reminder selesai (perlu reminder_id)
- casual_chat: Percakapan biasa
- help: Minta bantuan/info tentang bot

Selalu respon dengan sopan, informatif, dan supportif!`

// FormatterPrompt instructs the secondary call that turns raw search snippets
// into prose. It is intentionally small; this call must stay cheap.
const FormatterPrompt = `Kamu adalah formatter hasil pencarian harga. Diberikan potongan hasil pencarian web, rangkum harga barang dalam bahasa Indonesia yang singkat dan jelas. Sebutkan kisaran harga yang ditemukan beserta sumbernya. Jangan menambahkan opini tentang apakah barang tersebut ada atau belum rilis; data pencarian adalah satu-satunya sumber kebenaran. Jawab dengan teks biasa, bukan JSON.`

// Snapshot is the derived financial aggregate injected into the context
// block. It mirrors what the storage collaborator reports; nothing here is
// ever cached between turns.
type Snapshot struct {
	Income  float64
	Expense float64
	Balance float64
}

// ContextTransaction is the slice of a stored transaction the model needs
// for conversational context.
type ContextTransaction struct {
	Type        string
	Amount      float64
	Category    string
	Description string
}

// ContextBlock renders the per-turn user context appended to SystemPrompt.
func ContextBlock(snap Snapshot, recent []ContextTransaction) string {
	var b strings.Builder
	b.WriteString("**Data Keuangan Pengguna Saat Ini:**\n")
	fmt.Fprintf(&b, "- Total Pemasukan: Rp %s\n", FormatRupiah(snap.Income))
	fmt.Fprintf(&b, "- Total Pengeluaran: Rp %s\n", FormatRupiah(snap.Expense))
	fmt.Fprintf(&b, "- Saldo Saat Ini: Rp %s\n", FormatRupiah(snap.Balance))

	if len(recent) == 0 {
		b.WriteString("\n**Belum ada transaksi.**\n")
		return b.String()
	}

	b.WriteString("\n**Transaksi Terakhir:**\n")
	for _, t := range recent {
		label := "Pengeluaran"
		if t.Type == "income" {
			label = "Pemasukan"
		}
		fmt.Fprintf(&b, "- %s: Rp %s (%s) - %s\n", label, FormatRupiah(t.Amount), t.Category, t.Description)
	}
	return b.String()
}

// FormatRupiah renders an amount with thousands separators and no decimals,
// matching the reply style everywhere in the bot ("5000000" -> "5,000,000").
func FormatRupiah(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.0f", v)
	n := len(s)
	if n > 3 {
		var b strings.Builder
		rem := n % 3
		if rem > 0 {
			b.WriteString(s[:rem])
		}
		for i := rem; i < n; i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(s[i : i+3])
		}
		s = b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}

// Canned reply lines. The empty-message invariant depends on these: platform
// adapters may reject empty outbound messages, so every degraded path ends in
// one of them.
const (
	FallbackGreeting  = "Halo! Ada yang bisa saya bantu? 😊"
	FallbackConfused  = "Maaf, saya kurang mengerti. Bisa dijelaskan lagi? 🤔"
	TransportErrorMsg = "Maaf, saya sedang mengalami kendala teknis. Coba lagi dalam beberapa saat ya! 🙏"
	StorageErrorMsg   = "Maaf, ada masalah saat menyimpan data. Coba lagi ya! 🔧"
)

// HelpText is the fixed reply for the help intent; no model output involved.
const HelpText = `🤖 **FinancialBot - Asisten Keuangan Pribadimu**

Aku bisa bantu kamu:
1. 💵 Mencatat pemasukan
   Contoh: "aku dapat gaji 5 juta", "dapet bonus 1jt"

2. 💸 Mencatat pengeluaran
   Contoh: "habis 50rb buat makan", "beli baju 200 ribu"

3. 💰 Cek saldo
   Contoh: "berapa saldo aku?", "cek balance"

4. 📊 Lihat laporan
   Contoh: "tampilkan laporan", "lihat transaksi terakhir"

5. 💡 Saran anggaran
   Contoh: "kasih saran budget", "gimana ngatur keuangan?"

6. 🛍️ Analisis pembelian
   Contoh: "aku mau beli laptop 15 juta", "mampu ga beli PS5 8jt?"

7. 🔍 Cari harga barang
   Contoh: "berapa harga iPhone sekarang?"

8. 📁 Ekspor laporan
   Contoh: "ekspor laporan ke excel", "export ke csv"

9. 📈 Analisis tren
   Contoh: "analisis tren pengeluaran aku"

10. ⏰ Reminder tagihan
   Contoh: "ingatkan bayar listrik tanggal 5", "lihat reminder"

11. 🗑️ Hapus transaksi
   Contoh: "hapus transaksi 123"

Ngobrol aja dengan natural, aku akan mengerti! 😊`
