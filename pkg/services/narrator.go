package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	config "retail-insight-api/configs"
	"retail-insight-api/pkg/llm"
	"retail-insight-api/pkg/models"
)

// NarratorService phrases computed answers as natural language.
type NarratorService struct {
	oracleStage
}

// NewNarratorService creates a narrator. With a nil oracle every answer is
// returned as computed.
func NewNarratorService(oracle llm.Oracle, prompts *config.PromptConfig, logger *zap.Logger) *NarratorService {
	return &NarratorService{oracleStage{oracle: oracle, prompts: prompts, logger: logger.Named("narrator")}}
}

// Narrate wraps a raw result in a sentence that answers question. Failed
// results and any oracle failure fall back to the raw text.
func (s *NarratorService) Narrate(ctx context.Context, question string, raw models.RawResult) string {
	rawText := raw.Text()
	if raw.Failed() || !s.configured() {
		return rawText
	}

	text, err := s.call(ctx, config.PromptNarrate, map[string]string{
		"Message": question,
		"Answer":  rawText,
	})
	if err != nil {
		return rawText
	}
	return strings.TrimSpace(text)
}

// SummarizeForecast writes a short commentary on a forecast. Without an
// oracle it uses a fixed template.
func (s *NarratorService) SummarizeForecast(ctx context.Context, historical, forecast []float64, salesCol string) string {
	if len(historical) == 0 || len(forecast) == 0 {
		return ""
	}
	last := historical[len(historical)-1]
	first := forecast[0]

	if s.configured() {
		text, err := s.call(ctx, config.PromptForecastSummary, map[string]string{
			"SalesColumn":    salesCol,
			"LastHistorical": formatAmount(last),
			"FirstForecast":  formatAmount(first),
			"LastForecast":   formatAmount(forecast[len(forecast)-1]),
		})
		if err == nil {
			return strings.TrimSpace(text)
		}
	}
	return fallbackForecastSummary(last, first)
}

func fallbackForecastSummary(last, next float64) string {
	if last == 0 {
		return fmt.Sprintf("Forecast complete. The model predicts sales for the next month to be %s.", formatAmount(next))
	}
	pct := (next - last) / last * 100
	return fmt.Sprintf("Forecast complete. The model predicts sales for the next month to be %s, a %s%% change from the last known month.",
		formatAmount(next), formatPercent(pct))
}
