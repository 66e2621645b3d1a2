package ai

import (
	"fmt"
	"strings"
	"time"
)

// buildExpensePrompt asks for a single strict-JSON object describing the
// expense in a chat message. Amounts are whole rupiah.
func buildExpensePrompt(text string, categories []string, now time.Time) string {
	var b strings.Builder
	b.WriteString("You are an expense extraction engine for an Indonesian personal expense tracker.\n")
	b.WriteString("Extract exactly one expense from the user message below.\n\n")
	fmt.Fprintf(&b, "Today's date is %s.\n", now.Format("2006-01-02"))
	b.WriteString("The message may use Indonesian shorthand: \"ribu\"/\"rb\"/\"k\" mean thousands, \"jt\"/\"juta\" means millions.\n")
	b.WriteString("Relative days like \"kemarin\" (yesterday) or weekday names refer to the most recent such day.\n\n")
	fmt.Fprintf(&b, "Allowed categories: %s.\n\n", strings.Join(categories, ", "))
	b.WriteString("Return ONLY a JSON object with these fields:\n")
	b.WriteString(`{"description": string, "amount": integer rupiah, "category": one of the allowed categories, "location": string or "", "date": "YYYY-MM-DD"}` + "\n")
	b.WriteString("Do NOT use ```json or any Markdown.\n")
	b.WriteString("Output must begin with \"{\" and end with \"}\".\n\n")
	fmt.Fprintf(&b, "User message: %s\n", text)
	return b.String()
}

// buildReceiptPrompt asks for the grand total of an OCR'd shopping receipt.
func buildReceiptPrompt(ocrText string, categories []string, now time.Time) string {
	var b strings.Builder
	b.WriteString("You are a receipt reader for an Indonesian personal expense tracker.\n")
	b.WriteString("The text below is OCR output from a photo of a shopping receipt. It may contain noise.\n")
	b.WriteString("Extract one expense for the whole receipt: use the grand total (look for TOTAL, GRAND TOTAL, JUMLAH), the merchant name as location, and a short description of what was bought.\n\n")
	fmt.Fprintf(&b, "Today's date is %s. Use the receipt's printed date when present, otherwise today.\n", now.Format("2006-01-02"))
	fmt.Fprintf(&b, "Allowed categories: %s.\n\n", strings.Join(categories, ", "))
	b.WriteString("Return ONLY a JSON object with these fields:\n")
	b.WriteString(`{"description": string, "amount": integer rupiah, "category": one of the allowed categories, "location": merchant name or "", "date": "YYYY-MM-DD"}` + "\n")
	b.WriteString("Do NOT use ```json or any Markdown.\n")
	b.WriteString("Output must begin with \"{\" and end with \"}\".\n\n")
	fmt.Fprintf(&b, "Receipt text:\n%s\n", ocrText)
	return b.String()
}
