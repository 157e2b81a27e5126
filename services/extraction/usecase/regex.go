package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/services/currency"
	"github.com/piresc/kasbot/services/extraction"
)

// regexConfidence is the fixed confidence assigned by the
// deterministic parser to signal reduced trust.
const regexConfidence = 0.6

const maxRegexDescription = 50

var (
	// symbol before the number, e.g. "R$25", "$ 12.50"
	symbolAmountRe = regexp.MustCompile(`(R\$|Rp|US\$|S\$|\$|€|£|¥|₹|₩|₽)\s*([0-9]+(?:[.,][0-9]{1,2})?)`)
	// bare number, currency resolved from code cues or the default
	plainAmountRe = regexp.MustCompile(`\b([0-9]+(?:[.,][0-9]{1,2})?)\b`)
	// ISO code mentioned anywhere in the text
	currencyCodeRe = regexp.MustCompile(`(?i)\b(USD|EUR|GBP|BRL|IDR|JPY|CNY|INR|KRW|RUB|CAD|AUD|CHF|SGD|MXN)\b`)
	// capitalized merchant after "at" or "from"
	merchantRe = regexp.MustCompile(`(?:\bat\b|\bfrom\b)\s+([A-Z][A-Za-z0-9&'-]*(?:\s+[A-Z][A-Za-z0-9&'-]*)*)`)
)

var expenseKeywords = []string{
	"spent", "spend", "paid", "pay", "bought", "buy", "purchased", "purchase", "cost", "expense",
}

var incomeKeywords = []string{
	"received", "receive", "earned", "earn", "salary", "income", "refund", "refunded", "deposit", "sold",
}

var transferKeywords = []string{
	"transferred", "transfer", "moved", "sent",
}

// strippedTokens are dropped when deriving the description
var strippedTokens = map[string]bool{
	"on": true, "for": true, "of": true, "a": true, "an": true, "the": true, "i": true,
}

type categoryRule struct {
	name     string
	keywords []string
}

// categoryRules is the fixed category vocabulary; first keyword hit wins
var categoryRules = []categoryRule{
	{name: "Food & Dining", keywords: []string{"groceries", "grocery", "lunch", "dinner", "breakfast", "coffee", "restaurant", "food", "meal", "pizza", "snack"}},
	{name: "Transportation", keywords: []string{"gas", "fuel", "uber", "taxi", "bus", "train", "parking", "toll"}},
	{name: "Shopping", keywords: []string{"clothes", "shoes", "amazon", "shopping", "electronics"}},
	{name: "Entertainment", keywords: []string{"movie", "cinema", "netflix", "spotify", "game", "concert"}},
	{name: "Bills & Utilities", keywords: []string{"rent", "electricity", "internet", "phone", "bill", "subscription"}},
	{name: "Health", keywords: []string{"pharmacy", "doctor", "hospital", "medicine", "dentist"}},
	{name: "Salary", keywords: []string{"salary", "paycheck", "wage"}},
}

// regexParse is the last ladder rung. It never fails with anything
// other than ErrNoTransaction.
func regexParse(text, defaultCurrency string) (models.ParsedTransaction, error) {
	amount, cur, amountMatch := findAmount(text, defaultCurrency)
	if amountMatch == "" {
		return models.ParsedTransaction{}, extraction.ErrNoTransaction
	}

	tx := models.ParsedTransaction{
		Amount:       amount,
		Currency:     cur,
		Type:         classifyType(text),
		Category:     classifyCategory(text),
		MerchantName: findMerchant(text),
		Description:  deriveDescription(text, amountMatch),
		Confidence:   regexConfidence,
	}

	return tx, nil
}

// findAmount locates the first amount in the text and resolves its
// currency from symbol or code cues, defaulting when neither is found.
func findAmount(text, defaultCurrency string) (float64, string, string) {
	if m := symbolAmountRe.FindStringSubmatch(text); m != nil {
		cur := defaultCurrency
		for _, sym := range currency.Symbols {
			if sym.Symbol == m[1] {
				cur = sym.Code
				break
			}
		}
		return parseAmount(m[2]), cur, m[0]
	}

	if m := plainAmountRe.FindStringSubmatch(text); m != nil {
		cur := defaultCurrency
		if code := currencyCodeRe.FindString(text); code != "" {
			cur = strings.ToUpper(code)
		}
		return parseAmount(m[1]), cur, m[0]
	}

	return 0, "", ""
}

func parseAmount(s string) float64 {
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// classifyType picks the transaction type from keyword sets. Explicit
// expense keywords win the tie-break.
func classifyType(text string) models.TransactionType {
	lower := strings.ToLower(text)

	for _, kw := range expenseKeywords {
		if containsWord(lower, kw) {
			return models.TransactionTypeExpense
		}
	}
	for _, kw := range incomeKeywords {
		if containsWord(lower, kw) {
			return models.TransactionTypeIncome
		}
	}
	for _, kw := range transferKeywords {
		if containsWord(lower, kw) {
			return models.TransactionTypeTransfer
		}
	}

	return models.TransactionTypeExpense
}

// classifyCategory assigns one of the fixed categories, or empty when
// nothing matches
func classifyCategory(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if containsWord(lower, kw) {
				return rule.name
			}
		}
	}
	return ""
}

func findMerchant(text string) string {
	if m := merchantRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// deriveDescription strips the matched amount, classification verbs
// and filler prepositions from the original text
func deriveDescription(text, amountMatch string) string {
	s := strings.Replace(text, amountMatch, " ", 1)

	verbs := map[string]bool{}
	for _, kw := range expenseKeywords {
		verbs[kw] = true
	}
	for _, kw := range incomeKeywords {
		verbs[kw] = true
	}
	for _, kw := range transferKeywords {
		verbs[kw] = true
	}

	var kept []string
	for _, tok := range strings.Fields(s) {
		lower := strings.ToLower(strings.Trim(tok, ".,!?"))
		if verbs[lower] || strippedTokens[lower] {
			continue
		}
		kept = append(kept, tok)
	}

	desc := strings.TrimSpace(strings.Join(kept, " "))
	if len(desc) > maxRegexDescription {
		desc = strings.TrimSpace(desc[:maxRegexDescription])
	}
	if desc == "" {
		desc = "Transaction"
	}
	return desc
}

func containsWord(text, word string) bool {
	idx := strings.Index(text, word)
	for idx != -1 {
		before := idx == 0 || !isWordChar(text[idx-1])
		afterIdx := idx + len(word)
		after := afterIdx >= len(text) || !isWordChar(text[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(text[idx+1:], word)
		if next == -1 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
