package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/piresc/kasbot/internal/pkg/logger"
	"github.com/piresc/kasbot/internal/pkg/models"
	"github.com/piresc/kasbot/services/extraction"
)

// textStrategy is one rung of the extraction ladder
type textStrategy struct {
	name string
	run  func(ctx context.Context, text, defaultCurrency string) ([]models.ParsedTransaction, error)
}

// ExtractorUC implements the tiered extraction pipeline. Strategies
// are tried in order and the first success wins; the deterministic
// regex parser at the bottom guarantees an answer when the input
// contains an amount at all.
type ExtractorUC struct {
	cfg         *models.Config
	modelClient extraction.ModelClient
	vision      extraction.VisionClient
	transcriber extraction.Transcriber
	registrar   extraction.Registrar
	strategies  []textStrategy
}

// NewExtractorUC creates the extraction pipeline
func NewExtractorUC(
	cfg *models.Config,
	modelClient extraction.ModelClient,
	vision extraction.VisionClient,
	transcriber extraction.Transcriber,
	registrar extraction.Registrar,
) *ExtractorUC {
	uc := &ExtractorUC{
		cfg:         cfg,
		modelClient: modelClient,
		vision:      vision,
		transcriber: transcriber,
		registrar:   registrar,
	}

	for _, model := range []string{cfg.AI.PrimaryModel, cfg.AI.SecondaryModel, cfg.AI.TertiaryModel} {
		if model == "" {
			continue
		}
		m := model
		uc.strategies = append(uc.strategies, textStrategy{
			name: m,
			run: func(ctx context.Context, text, defaultCurrency string) ([]models.ParsedTransaction, error) {
				return uc.modelAttempt(ctx, m, text, defaultCurrency)
			},
		})
	}

	uc.strategies = append(uc.strategies, textStrategy{
		name: "regex",
		run: func(ctx context.Context, text, defaultCurrency string) ([]models.ParsedTransaction, error) {
			tx, err := regexParse(text, defaultCurrency)
			if err != nil {
				return nil, err
			}
			return []models.ParsedTransaction{tx}, nil
		},
	})

	return uc
}

// ExtractText runs the strategy ladder over a text message
func (uc *ExtractorUC) ExtractText(ctx context.Context, text, defaultCurrency string) ([]models.ParsedTransaction, error) {
	var lastErr error

	for _, strategy := range uc.strategies {
		txs, err := strategy.run(ctx, text, defaultCurrency)
		if err != nil {
			if err != extraction.ErrNoTransaction {
				logger.Warn("Extraction strategy failed",
					logger.String("strategy", strategy.name),
					logger.Err(err))
			}
			lastErr = err
			continue
		}
		if len(txs) == 0 {
			lastErr = extraction.ErrNoTransaction
			continue
		}

		return uc.register(ctx, txs)
	}

	if lastErr == nil {
		lastErr = extraction.ErrNoTransaction
	}
	return nil, lastErr
}

// ExtractVoice transcribes a voice note and re-enters the text ladder
func (uc *ExtractorUC) ExtractVoice(ctx context.Context, audio []byte, defaultCurrency string) ([]models.ParsedTransaction, error) {
	tctx, cancel := context.WithTimeout(ctx, uc.mediaTimeout())
	defer cancel()

	text, err := uc.transcriber.Transcribe(tctx, audio)
	if err != nil {
		return nil, fmt.Errorf("failed to transcribe voice note: %w", err)
	}
	if text == "" {
		return nil, extraction.ErrNoTransaction
	}

	return uc.ExtractText(ctx, text, defaultCurrency)
}

// ExtractPhoto extracts transactions from a receipt image. A failed
// vision call degrades to a single placeholder candidate flagged for
// manual correction instead of a hard failure.
func (uc *ExtractorUC) ExtractPhoto(ctx context.Context, image []byte, defaultCurrency string) ([]models.ParsedTransaction, error) {
	vctx, cancel := context.WithTimeout(ctx, uc.mediaTimeout())
	defer cancel()

	completion, err := uc.vision.ExtractFromImage(vctx, image, buildVisionPrompt(defaultCurrency))
	if err == nil {
		if txs, perr := uc.candidatesFromCompletion(completion); perr == nil && len(txs) > 0 {
			return uc.register(ctx, txs)
		} else if perr != nil {
			err = perr
		} else {
			err = extraction.ErrNoTransaction
		}
	}

	logger.Warn("Vision extraction failed, producing placeholder", logger.Err(err))

	placeholder := models.ParsedTransaction{
		Amount:      0,
		Currency:    defaultCurrency,
		Type:        models.TransactionTypeExpense,
		Description: "Receipt (details unreadable)",
		Confidence:  0.3,
		NeedsReview: true,
	}

	return uc.register(ctx, []models.ParsedTransaction{placeholder})
}

// modelAttempt runs one model tier with its own timeout and strict
// validation of the completion
func (uc *ExtractorUC) modelAttempt(ctx context.Context, model, text, defaultCurrency string) ([]models.ParsedTransaction, error) {
	mctx, cancel := context.WithTimeout(ctx, uc.textTimeout())
	defer cancel()

	completion, err := uc.modelClient.Complete(mctx, model, buildTextMessages(text, defaultCurrency))
	if err != nil {
		return nil, fmt.Errorf("model %s failed: %w", model, err)
	}
	if completion == "" {
		return nil, fmt.Errorf("model %s returned empty completion", model)
	}

	return uc.candidatesFromCompletion(completion)
}

// candidatesFromCompletion decodes and validates a model completion.
// Invalid candidates are dropped; an all-invalid completion fails the
// rung.
func (uc *ExtractorUC) candidatesFromCompletion(completion string) ([]models.ParsedTransaction, error) {
	dtos, err := decodeCandidates(completion)
	if err != nil {
		return nil, err
	}

	var txs []models.ParsedTransaction
	for _, dto := range dtos {
		if verr := validateCandidate(dto); verr != nil {
			logger.Debug("Dropping invalid candidate", logger.Err(verr))
			continue
		}
		txs = append(txs, toParsedTransaction(dto))
	}

	if len(txs) == 0 && len(dtos) > 0 {
		return nil, fmt.Errorf("completion contained no valid candidates")
	}

	return txs, nil
}

// register assigns temp ids and stores candidates in the pending
// store before returning them
func (uc *ExtractorUC) register(ctx context.Context, txs []models.ParsedTransaction) ([]models.ParsedTransaction, error) {
	for i := range txs {
		txs[i].TempID = uuid.NewString()
		if err := uc.registrar.StorePending(ctx, txs[i]); err != nil {
			return nil, fmt.Errorf("failed to store pending candidate: %w", err)
		}
	}
	return txs, nil
}

func (uc *ExtractorUC) textTimeout() time.Duration {
	if uc.cfg.AI.TextTimeout > 0 {
		return time.Duration(uc.cfg.AI.TextTimeout) * time.Second
	}
	return 10 * time.Second
}

func (uc *ExtractorUC) mediaTimeout() time.Duration {
	if uc.cfg.AI.MediaTimeout > 0 {
		return time.Duration(uc.cfg.AI.MediaTimeout) * time.Second
	}
	return 30 * time.Second
}
