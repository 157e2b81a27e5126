package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/internal/utils"
	"github.com/piresc/kasbot/services/currency"
)

// candidateDTO mirrors the JSON shape the models are instructed to
// return. Values are validated before they become ParsedTransactions;
// nothing off the wire is trusted directly.
type candidateDTO struct {
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	Type         string  `json:"type"`
	Description  string  `json:"description"`
	Category     string  `json:"category"`
	MerchantName string  `json:"merchant_name"`
	Confidence   float64 `json:"confidence"`
	Date         string  `json:"date"`
}

// cleanModelJSON strips markdown fences and surrounding junk, keeping
// only the outermost JSON value.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	// Remove trailing ``` if present.
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	// If there's still junk around the JSON, keep only from the first
	// opening bracket to its matching last closing bracket.
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")

	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		if end := strings.LastIndex(s, "]"); end > arrStart {
			return strings.TrimSpace(s[arrStart : end+1])
		}
	}
	if objStart != -1 {
		if end := strings.LastIndex(s, "}"); end > objStart {
			return strings.TrimSpace(s[objStart : end+1])
		}
	}

	return s
}

// decodeCandidates decodes a completion into candidate DTOs. Accepts
// either a single object or an array of objects.
func decodeCandidates(completion string) ([]candidateDTO, error) {
	clean := cleanModelJSON(completion)
	if clean == "" {
		return nil, fmt.Errorf("empty completion")
	}

	if strings.HasPrefix(clean, "[") {
		var list []candidateDTO
		if err := json.Unmarshal([]byte(clean), &list); err != nil {
			return nil, fmt.Errorf("failed to decode candidate array: %w", err)
		}
		return list, nil
	}

	var one candidateDTO
	if err := json.Unmarshal([]byte(clean), &one); err != nil {
		return nil, fmt.Errorf("failed to decode candidate object: %w", err)
	}
	return []candidateDTO{one}, nil
}

// validateCandidate enforces the strict shape contract on a decoded
// candidate
func validateCandidate(dto candidateDTO) error {
	if dto.Amount <= 0 {
		return fmt.Errorf("amount must be positive, got %v", dto.Amount)
	}
	if !currency.IsSupported(strings.ToUpper(dto.Currency)) {
		return fmt.Errorf("unsupported currency %q", dto.Currency)
	}
	if !models.ValidTransactionType(models.TransactionType(dto.Type)) {
		return fmt.Errorf("invalid transaction type %q", dto.Type)
	}
	if strings.TrimSpace(dto.Description) == "" {
		return fmt.Errorf("description must not be empty")
	}
	if len(dto.Description) > 500 {
		return fmt.Errorf("description exceeds 500 characters")
	}
	if dto.Confidence < 0 || dto.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", dto.Confidence)
	}
	return nil
}

// toParsedTransaction converts a validated DTO into the domain model
func toParsedTransaction(dto candidateDTO) models.ParsedTransaction {
	tx := models.ParsedTransaction{
		Amount:       dto.Amount,
		Currency:     strings.ToUpper(dto.Currency),
		Type:         models.TransactionType(dto.Type),
		Description:  utils.SanitizeString(dto.Description),
		Category:     utils.SanitizeString(dto.Category),
		MerchantName: utils.SanitizeString(dto.MerchantName),
		Confidence:   dto.Confidence,
	}

	if dto.Date != "" {
		if d, err := time.Parse("2006-01-02", dto.Date); err == nil {
			tx.Date = &d
		}
	}

	return tx
}
