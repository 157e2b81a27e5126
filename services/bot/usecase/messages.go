package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/piresc/kasbot/internal/pkg/constants"
	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/internal/utils"
)

const (
	msgWelcome = "Hi! I track your finances right here in chat.\n" +
		"Just tell me what you spent or earned, e.g. \"Spent $50 on groceries at Walmart\".\n" +
		"Voice notes and receipt photos work too. Type /help for more."

	msgHelp = "Send me a message describing a transaction and I'll pick up the details:\n" +
		"• \"Spent $50 on groceries at Walmart\"\n" +
		"• \"Got paid 3000 EUR salary\"\n" +
		"• a voice note or a photo of a receipt\n\n" +
		"Commands:\n" +
		"/start — introduction\n" +
		"/setup — configure this group (groups only)\n" +
		"/cancel — abort the current setup\n" +
		"/help — this message"

	msgLinkAccount = "I don't recognize you yet. Please link your account first, " +
		"then send your transaction again."

	msgApology = "Sorry, something went wrong on my side. Please try again."

	msgNoTransaction = "I couldn't find a transaction in that. Try something like " +
		"\"Spent $20 on lunch\"."

	msgExpired = "That one has expired. Please send the transaction again."

	msgSessionExpired = "The setup session has expired. Remove and re-add me to the " +
		"group, or run /setup to start over."

	msgNotAllowed = "Only group admins may record transactions here."

	msgEditPrompt = "Okay, discarded. Send the transaction again with the corrected details."

	msgCancelled = "Cancelled. Nothing was saved."

	msgSetupCancelled = "Setup cancelled. Run /setup whenever you want to pick it up again."

	msgSetupGroupOnly = "/setup only works in group chats. In a private chat I track " +
		"your personal context automatically."

	msgLowConfidence = "I think I spotted a transaction but I'm not confident about the " +
		"details. Could you resend it with the amount and what it was for?"

	msgNeedsReview = "I couldn't read that receipt clearly. Please send the amount and " +
		"description as a text message and I'll record it."
)

// formatCandidate renders one candidate for the confirmation prompt
func formatCandidate(tx *models.ParsedTransaction) string {
	var b strings.Builder
	b.WriteString("Is this right?\n\n")
	fmt.Fprintf(&b, "%s %s %.2f", typeLabel(tx.Type), tx.Currency, tx.Amount)
	if tx.OriginalCurrency != "" && tx.OriginalCurrency != tx.Currency {
		fmt.Fprintf(&b, " (from %s %.2f @ %.4f)", tx.OriginalCurrency, tx.OriginalAmount, tx.ExchangeRate)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Description: %s\n", tx.Description)
	if tx.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", tx.Category)
	}
	if tx.MerchantName != "" {
		fmt.Fprintf(&b, "Merchant: %s\n", tx.MerchantName)
	}
	return b.String()
}

// formatSaved renders the post-confirm summary
func formatSaved(tx *models.Transaction) string {
	return fmt.Sprintf("Saved: %s %s %.2f — %s", typeLabel(tx.Type), tx.Currency, tx.Amount, tx.Description)
}

// formatBatchPrompt renders the multi-candidate confirmation listing
func formatBatchPrompt(batch *models.PendingBatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found %d transactions:\n\n", len(batch.Candidates))
	for i, tx := range batch.Candidates {
		fmt.Fprintf(&b, "%d. %s %s %.2f — %s\n", i+1, typeLabel(tx.Type), tx.Currency, tx.Amount, utils.Truncate(tx.Description, 60))
	}
	b.WriteString("\nConfirm all of them?")
	return b.String()
}

// formatBatchReview renders the detailed per-candidate listing for the
// Review action, including category and confidence.
func formatBatchReview(batch *models.PendingBatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Reviewing %d transactions:\n\n", len(batch.Candidates))
	for i, tx := range batch.Candidates {
		fmt.Fprintf(&b, "%d. %s %s %.2f — %s\n", i+1, typeLabel(tx.Type), tx.Currency, tx.Amount, utils.Truncate(tx.Description, 60))
		if tx.MerchantName != "" {
			fmt.Fprintf(&b, "   Merchant: %s\n", tx.MerchantName)
		}
		if tx.Category != "" {
			fmt.Fprintf(&b, "   Category: %s\n", tx.Category)
		}
		fmt.Fprintf(&b, "   Confidence: %.0f%%\n", tx.Confidence*100)
	}
	b.WriteString("\nConfirm all of them?")
	return b.String()
}

// formatBatchResult renders the confirm-all tally. Failures name the
// candidates that could not be saved; totals are per currency.
func formatBatchResult(batch *models.PendingBatch, failedIdx []int) string {
	var b strings.Builder
	saved := len(batch.Candidates) - len(failedIdx)
	fmt.Fprintf(&b, "Saved %d of %d transactions.\n", saved, len(batch.Candidates))

	failedSet := make(map[int]bool, len(failedIdx))
	for _, i := range failedIdx {
		failedSet[i] = true
	}
	if len(failedIdx) > 0 {
		b.WriteString("Could not save:\n")
		for _, i := range failedIdx {
			fmt.Fprintf(&b, "• %s\n", batch.Candidates[i].Description)
		}
	}

	totals := make(map[string]float64)
	for i, tx := range batch.Candidates {
		if failedSet[i] {
			continue
		}
		switch tx.Type {
		case models.TransactionTypeIncome:
			totals[tx.Currency] += tx.Amount
		default:
			totals[tx.Currency] -= tx.Amount
		}
	}
	if len(totals) > 0 {
		b.WriteString("Net totals:")
		codes := make([]string, 0, len(totals))
		for code := range totals {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			fmt.Fprintf(&b, " %s %+.2f", code, totals[code])
		}
	}
	return b.String()
}

func typeLabel(t models.TransactionType) string {
	switch t {
	case models.TransactionTypeIncome:
		return "Income:"
	case models.TransactionTypeTransfer:
		return "Transfer:"
	default:
		return "Expense:"
	}
}

// confirmKeyboard builds the single-candidate Confirm/Edit/Cancel row
func confirmKeyboard(tempID string) models.InlineKeyboard {
	return models.InlineKeyboard{
		Rows: [][]models.InlineButton{{
			{Text: "✅ Confirm", CallbackData: constants.CallbackConfirm + tempID},
			{Text: "✏️ Edit", CallbackData: constants.CallbackEdit + tempID},
			{Text: "❌ Cancel", CallbackData: constants.CallbackCancel + tempID},
		}},
	}
}

// batchKeyboard builds the batch Confirm-all/Review/Cancel-all row
func batchKeyboard(batchID string) models.InlineKeyboard {
	return models.InlineKeyboard{
		Rows: [][]models.InlineButton{{
			{Text: "✅ Confirm all", CallbackData: constants.CallbackConfirmBatch + batchID},
			{Text: "🔍 Review", CallbackData: constants.CallbackReviewBatch + batchID},
			{Text: "❌ Cancel all", CallbackData: constants.CallbackCancelBatch + batchID},
		}},
	}
}

// setupTypeKeyboard offers the context type choices
func setupTypeKeyboard() models.InlineKeyboard {
	return models.InlineKeyboard{
		Rows: [][]models.InlineButton{
			{
				{Text: "👪 Family", CallbackData: constants.CallbackSetupType + string(models.ContextTypeFamily)},
				{Text: "👥 Group", CallbackData: constants.CallbackSetupType + string(models.ContextTypeGroup)},
			},
			{
				{Text: "💼 Business", CallbackData: constants.CallbackSetupType + string(models.ContextTypeBusiness)},
			},
		},
	}
}

// setupTypeConfirmKeyboard is the confirmation sub-step after a type is
// tapped but before the wizard advances.
func setupTypeConfirmKeyboard(t models.ContextType) models.InlineKeyboard {
	return models.InlineKeyboard{
		Rows: [][]models.InlineButton{{
			{Text: "Yes, continue", CallbackData: constants.CallbackSetupTypeOK + string(t)},
			{Text: "Back", CallbackData: constants.CallbackSetupBack + string(models.SetupStepType)},
		}},
	}
}

// setupPermKeyboard offers the transaction policy choices
func setupPermKeyboard() models.InlineKeyboard {
	return models.InlineKeyboard{
		Rows: [][]models.InlineButton{
			{
				{Text: "Everyone", CallbackData: constants.CallbackSetupPerm + string(models.PolicyEveryone)},
				{Text: "Admins only", CallbackData: constants.CallbackSetupPerm + string(models.PolicyAdmins)},
			},
			{
				{Text: "Back", CallbackData: constants.CallbackSetupBack + string(models.SetupStepPermissions)},
			},
		},
	}
}

// setupCurrencyKeyboard offers the common default currencies
func setupCurrencyKeyboard() models.InlineKeyboard {
	codes := []string{"USD", "EUR", "GBP", "BRL", "IDR", "JPY"}
	row := make([]models.InlineButton, 0, 3)
	rows := make([][]models.InlineButton, 0, 3)
	for _, code := range codes {
		row = append(row, models.InlineButton{Text: code, CallbackData: constants.CallbackSetupCur + code})
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	rows = append(rows, []models.InlineButton{
		{Text: "Back", CallbackData: constants.CallbackSetupBack + string(models.SetupStepCurrency)},
	})
	return models.InlineKeyboard{Rows: rows}
}
