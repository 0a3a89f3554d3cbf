package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"retail-insight-api/pkg/apperrors"
	"retail-insight-api/pkg/llm"
	"retail-insight-api/pkg/models"
)

func TestNarrateUsesOracle(t *testing.T) {
	oracle := llm.NewMockOracle("  The total sales in Chennai were 300.00.  ")
	narrator := NewNarratorService(oracle, testPrompts(t), zap.NewNop())

	got := narrator.Narrate(context.Background(), "Chennai sales?", models.RawResult{Scalar: "300.00"})
	assert.Equal(t, "The total sales in Chennai were 300.00.", got)
	assert.Contains(t, oracle.Prompts[0], "300.00")
	assert.Contains(t, oracle.Prompts[0], "Chennai sales?")
}

func TestNarrateFailedResultSkipsOracle(t *testing.T) {
	oracle := llm.NewMockOracle("should not be used")
	narrator := NewNarratorService(oracle, testPrompts(t), zap.NewNop())

	raw := models.FailedResult(apperrors.ColumnNotFound("Revenue"))
	got := narrator.Narrate(context.Background(), "revenue?", raw)
	assert.Equal(t, "I'm sorry, I couldn't find a column in your file that matches 'Revenue'.", got)
	assert.Zero(t, oracle.Calls())
}

func TestNarrateFallsBackToRawText(t *testing.T) {
	raw := models.RawResult{Scalar: "42"}

	narrator := NewNarratorService(nil, testPrompts(t), zap.NewNop())
	assert.Equal(t, "42", narrator.Narrate(context.Background(), "q", raw))

	narrator = NewNarratorService(&llm.MockOracle{Err: errors.New("timeout")}, testPrompts(t), zap.NewNop())
	assert.Equal(t, "42", narrator.Narrate(context.Background(), "q", raw))
}

func TestSummarizeForecastFallback(t *testing.T) {
	narrator := NewNarratorService(nil, testPrompts(t), zap.NewNop())

	got := narrator.SummarizeForecast(context.Background(), []float64{1000, 1000}, []float64{1042, 1100}, "Sales")
	assert.Equal(t, "Forecast complete. The model predicts sales for the next month to be 1,042.00, a +4.20% change from the last known month.", got)

	got = narrator.SummarizeForecast(context.Background(), []float64{0}, []float64{10}, "Sales")
	assert.Equal(t, "Forecast complete. The model predicts sales for the next month to be 10.00.", got)
}

func TestSummarizeForecastWithOracle(t *testing.T) {
	oracle := llm.NewMockOracle("Sales are expected to grow steadily.")
	narrator := NewNarratorService(oracle, testPrompts(t), zap.NewNop())

	got := narrator.SummarizeForecast(context.Background(), []float64{1000}, []float64{1100, 1250}, "Revenue")
	assert.Equal(t, "Sales are expected to grow steadily.", got)
	assert.Contains(t, oracle.Prompts[0], "Revenue")
	assert.Contains(t, oracle.Prompts[0], "1,250.00")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "45,123.50", formatAmount(45123.5))
	assert.Equal(t, "-1,000.00", formatAmount(-1000))
	assert.Equal(t, "0.00", formatAmount(0))
	assert.Equal(t, "+4.20", formatPercent(4.2))
	assert.Equal(t, "-12.50", formatPercent(-12.5))
}
