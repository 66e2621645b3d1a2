package bot

import (
	"fmt"
	"strings"
	"time"

	"catatan/internal/core"
)

const (
	replyWelcome = "Halo! 👋 Aku bot pencatat pengeluaran.\n\n" +
		"Kirim pesan seperti \"beli ayam goreng di warteg 25rb\" atau foto struk belanja, " +
		"dan aku akan mencatatnya ke Google Sheets.\n\n" +
		"Ketik /help untuk daftar perintah."

	replyHelp = "Perintah yang tersedia:\n" +
		"/start - mulai menggunakan bot\n" +
		"/help - tampilkan bantuan ini\n" +
		"/summary - ringkasan pengeluaran bulan ini\n" +
		"/categories - daftar kategori\n" +
		"/warmup - cek bot aktif\n\n" +
		"Contoh pencatatan:\n" +
		"• makan siang 25k\n" +
		"• kemarin bensin di shell 50rb\n" +
		"• kirim foto struk belanja 📷"

	replyWarmup         = "Bot aktif! 🔥"
	replyUnknownCommand = "Perintah tidak dikenal. Ketik /help untuk daftar perintah."

	replyProcessing      = "⏳ Sedang memproses..."
	replyProcessingPhoto = "⏳ Sedang membaca struk..."

	replyParseFailed = "❌ Maaf, aku tidak bisa memahami pesanmu.\n" +
		"Coba tulis seperti: \"beli ayam goreng 25rb\" (jangan lupa nominalnya)."
	replyPhotoFailed   = "❌ Gagal mengunduh foto. Coba kirim ulang ya."
	replyOCRFailed     = "❌ Aku tidak bisa membaca teks di foto itu. Coba foto yang lebih jelas."
	replyReceiptFailed = "❌ Struk terbaca, tapi aku tidak menemukan totalnya. " +
		"Coba catat manual, misal: \"belanja indomaret 52500\"."
	replySaveFailed    = "❌ Pengeluaran gagal disimpan. Coba lagi sebentar lagi."
	replySummaryFailed = "❌ Gagal mengambil ringkasan. Coba lagi sebentar lagi."
)

var monthNames = map[time.Month]string{
	time.January:   "Januari",
	time.February:  "Februari",
	time.March:     "Maret",
	time.April:     "April",
	time.May:       "Mei",
	time.June:      "Juni",
	time.July:      "Juli",
	time.August:    "Agustus",
	time.September: "September",
	time.October:   "Oktober",
	time.November:  "November",
	time.December:  "Desember",
}

func formatSaved(e core.Expense) string {
	var b strings.Builder
	b.WriteString("✅ Pengeluaran dicatat!\n\n")
	fmt.Fprintf(&b, "📝 %s\n", e.Description)
	fmt.Fprintf(&b, "💰 %s\n", core.FormatRupiah(e.Amount.Rupiah))
	fmt.Fprintf(&b, "📂 %s\n", e.Category)
	if e.Location != "" && e.Location != "Unknown" {
		fmt.Fprintf(&b, "📍 %s\n", e.Location)
	}
	fmt.Fprintf(&b, "📅 %s", e.Date.Format("2006-01-02"))
	return b.String()
}

func formatSummary(sum core.MonthSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 Ringkasan %s %d\n\n", monthNames[sum.Month], sum.Year)

	if sum.Count == 0 {
		b.WriteString("Belum ada pengeluaran tercatat bulan ini.")
		return b.String()
	}

	fmt.Fprintf(&b, "Total: %s (%d transaksi)\n\n", core.FormatRupiah(sum.Total.Rupiah), sum.Count)
	for _, ca := range sum.ByCategory {
		fmt.Fprintf(&b, "• %s: %s\n", ca.Name, core.FormatRupiah(ca.Amount.Rupiah))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCategories(categories []string) string {
	var b strings.Builder
	b.WriteString("📂 Kategori pengeluaran:\n\n")
	for _, c := range categories {
		fmt.Fprintf(&b, "• %s\n", c)
	}
	return strings.TrimRight(b.String(), "\n")
}
