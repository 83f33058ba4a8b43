package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jdvries/transportdesk/internal/logger"
	"github.com/jdvries/transportdesk/internal/models"
)

// ErrServiceOverloaded is returned once the suggestion backend keeps failing
// transiently after all retries.
var ErrServiceOverloaded = errors.New("suggestion service overloaded")

// ErrNoRateFound is returned when the model cannot find a usable rate in the
// supplied document.
var ErrNoRateFound = errors.New("no rate found in document")

const (
	suggestMaxAttempts = 3
	suggestRetryDelay  = 2 * time.Second
)

// RateSuggestionService extracts a weekly rate from free-text rate documents
// (diesel-surcharge circulars, carrier e-mails) via an LLM. It is a
// best-effort convenience on the data-entry side: its output lands as a
// WeeklyRate with Source "suggested", to be confirmed by a human, and it is
// never consulted by the deterministic invoice engine directly.
type RateSuggestionService struct {
	client *openai.Client
	model  string
	db     *gorm.DB
	log    zerolog.Logger
}

func NewRateSuggestionService(client *openai.Client, model string, db *gorm.DB) *RateSuggestionService {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &RateSuggestionService{
		client: client,
		model:  model,
		db:     db,
		log:    logger.WithComponent("rate-suggestion"),
	}
}

type suggestedRate struct {
	Found bool    `json:"found"`
	Value float64 `json:"value"`
}

// SuggestWeeklyRate asks the model for the week's rate value in the document
// and stores it as a suggested WeeklyRate for (customerID, weekID),
// overwriting an earlier suggestion but never a manual entry. Transient API
// failures are retried up to 3 times with a fixed 2 second delay.
func (s *RateSuggestionService) SuggestWeeklyRate(ctx context.Context, customer *models.Customer, weekID, document string) (*models.WeeklyRate, error) {
	weekID = models.NormalizeWeekID(weekID)

	value, err := s.extract(ctx, customer.MileageRateType, document)
	if err != nil {
		return nil, err
	}

	rate := &models.WeeklyRate{
		CustomerID: customer.ID,
		WeekID:     weekID,
		Value:      value,
		Source:     models.WeeklyRateSuggested,
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}, {Name: "week_id"}},
			Where:     clause.Where{Exprs: []clause.Expression{clause.Eq{Column: "weekly_rates.source", Value: string(models.WeeklyRateSuggested)}}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(rate).Error
	if err != nil {
		return nil, fmt.Errorf("store suggested rate: %w", err)
	}

	// A manual entry wins the conflict, so reload to report what is stored.
	stored := &models.WeeklyRate{}
	if err := s.db.WithContext(ctx).
		Where("customer_id = ? AND week_id = ?", customer.ID, weekID).
		First(stored).Error; err != nil {
		return nil, fmt.Errorf("reload weekly rate: %w", err)
	}

	s.log.Info().
		Uint("customer_id", customer.ID).
		Str("week_id", weekID).
		Float64("value", value).
		Str("stored_source", string(stored.Source)).
		Msg("weekly rate suggestion stored")
	return stored, nil
}

func (s *RateSuggestionService) extract(ctx context.Context, rateType models.MileageRateType, document string) (float64, error) {
	prompt := buildRatePrompt(rateType, document)

	var lastErr error
	for attempt := 1; attempt <= suggestMaxAttempts; attempt++ {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       s.model,
			Temperature: 0,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: ratePromptSystem},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		if err != nil {
			if !isTransient(err) {
				return 0, fmt.Errorf("rate extraction: %w", err)
			}
			lastErr = err
			s.log.Warn().Err(err).Int("attempt", attempt).Msg("transient suggestion failure, retrying")
			if attempt < suggestMaxAttempts {
				select {
				case <-time.After(suggestRetryDelay):
				case <-ctx.Done():
					return 0, ctx.Err()
				}
			}
			continue
		}
		if len(resp.Choices) == 0 {
			return 0, ErrNoRateFound
		}
		return parseSuggestion(resp.Choices[0].Message.Content)
	}
	return 0, fmt.Errorf("%w: %v", ErrServiceOverloaded, lastErr)
}

const ratePromptSystem = `You extract freight rate figures from Dutch and English rate documents. ` +
	`Respond with JSON only: {"found": bool, "value": number}. No prose.`

func buildRatePrompt(rateType models.MileageRateType, document string) string {
	var what string
	switch rateType {
	case models.MileageRateDOT:
		what = "the diesel surcharge percentage for the week (e.g. 12.5 for 12.5%)"
	case models.MileageRateVariable:
		what = "the kilometer price in euros (e.g. 0.61)"
	default:
		what = "the rate value for the week"
	}
	return fmt.Sprintf("Extract %s from the document below. If it is not present, return found=false.\n\n---\n%s", what, document)
}

// parseSuggestion reads the model's JSON answer, tolerating a fenced code
// block around it.
func parseSuggestion(content string) (float64, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var parsed suggestedRate
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &parsed); err != nil {
		return 0, fmt.Errorf("%w: unparseable answer", ErrNoRateFound)
	}
	if !parsed.Found {
		return 0, ErrNoRateFound
	}
	return parsed.Value, nil
}

// isTransient reports whether the API error is worth retrying: rate limits
// and 5xx-class upstream failures.
func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500
	}
	return false
}
