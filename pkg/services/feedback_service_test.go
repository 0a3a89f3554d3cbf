package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retail-insight-api/pkg/apperrors"
	"retail-insight-api/pkg/llm"
	"retail-insight-api/pkg/models"
)

const sentimentReply = "```json\n" + `{
  "overall_sentiment": "Positive, with concerns about delivery times.",
  "sentiment_color": "success",
  "positive_themes": ["Friendly staff"],
  "areas_for_improvement": ["Delivery speed"],
  "sentiment_distribution": {"positive": 7, "negative": 2, "neutral": 1}
}` + "\n```"

func TestFeedbackAnalyzeOnce(t *testing.T) {
	env := newTestEnv(t)
	oracle := llm.NewMockOracle(sentimentReply)
	feedback := NewFeedbackService(oracle, env.prompts, env.files, env.store, zap.NewNop())

	rec, result, err := feedback.UploadAndAnalyze(context.Background(), "reviews.txt",
		strings.NewReader("Staff were friendly.\nDelivery took two weeks."))
	require.NoError(t, err)
	require.NotNil(t, result.Sentiment)
	assert.Equal(t, "success", result.Sentiment.SentimentColor)
	assert.Equal(t, 7, result.Sentiment.SentimentDistribution.Positive)
	assert.Contains(t, oracle.Prompts[0], "Delivery took two weeks.")

	again, err := feedback.Analyze(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, result.ID, again.ID)
	assert.Equal(t, 1, oracle.Calls())
}

func TestFeedbackParseFailureIsStored(t *testing.T) {
	env := newTestEnv(t)
	oracle := llm.NewMockOracle(`{"overall_sentiment": "Mixed", "sentiment_color": "blue",
		"positive_themes": [], "areas_for_improvement": [], "sentiment_distribution": {"positive": 1, "negative": 1, "neutral": 0}}`)
	feedback := NewFeedbackService(oracle, env.prompts, env.files, env.store, zap.NewNop())

	rec, result, err := feedback.UploadAndAnalyze(context.Background(), "reviews.csv", strings.NewReader("Comment\nok\n"))
	require.NoError(t, err)
	assert.Nil(t, result.Sentiment)
	assert.NotEmpty(t, result.Error)

	stored, err := env.store.GetAnalysis(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Error, stored.Error)
}

func TestFeedbackWithoutOracle(t *testing.T) {
	env := newTestEnv(t)
	feedback := NewFeedbackService(nil, env.prompts, env.files, env.store, zap.NewNop())

	_, _, err := feedback.UploadAndAnalyze(context.Background(), "reviews.txt", strings.NewReader("fine"))
	assert.ErrorIs(t, err, apperrors.ErrOracleNotConfigured)

	files, err := env.files.List(models.FileKindFeedback)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFeedbackRetailFileIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.upload(t, models.FileKindRetail, "sales.csv", salesCSV)
	feedback := NewFeedbackService(llm.NewMockOracle(), env.prompts, env.files, env.store, zap.NewNop())

	_, err := feedback.Analyze(context.Background(), rec.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
