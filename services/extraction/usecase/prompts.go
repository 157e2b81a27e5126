package usecase

import (
	"fmt"

	"github.com/piresc/kasbot/services/extraction"
)

const systemPrompt = "You are a financial transaction parser for a chat expense tracker.\n\n" +
	"Task:\n" +
	"- Detect ALL financial transactions mentioned in the user message.\n" +
	"- Respond with only a JSON object for a single transaction, or a JSON array of objects for several.\n" +
	"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n\n" +
	"Each object must have these fields:\n" +
	"- \"amount\": number, positive\n" +
	"- \"currency\": string, ISO 4217 code (e.g. \"USD\")\n" +
	"- \"type\": string, one of \"income\", \"expense\", \"transfer\"\n" +
	"- \"description\": string, short summary of the transaction\n" +
	"- \"category\": string or null (e.g. \"Food & Dining\", \"Transportation\")\n" +
	"- \"merchant_name\": string or null\n" +
	"- \"confidence\": number between 0.0 and 1.0\n\n" +
	"Rules:\n" +
	"- If no currency is mentioned, use the default currency given below.\n" +
	"- If the message contains no financial transaction, respond with an empty JSON array.\n" +
	"- Do NOT wrap the response in code fences.\n" +
	"- Do NOT use ```json or any Markdown.\n"

// buildTextMessages builds the role-tagged prompt for text extraction
func buildTextMessages(text, defaultCurrency string) []extraction.ChatMessage {
	return []extraction.ChatMessage{
		{Role: "system", Content: systemPrompt + fmt.Sprintf("\nDefault currency: %s\n", defaultCurrency)},
		{Role: "user", Content: text},
	}
}

// buildVisionPrompt builds the prompt for receipt photo extraction
func buildVisionPrompt(defaultCurrency string) string {
	return systemPrompt +
		fmt.Sprintf("\nDefault currency: %s\n", defaultCurrency) +
		"\nThe attached image is a receipt or a photo of a financial document. " +
		"Extract the transaction(s) it shows. Use the receipt total, not the line items, " +
		"unless the items clearly belong to separate transactions.\n"
}
