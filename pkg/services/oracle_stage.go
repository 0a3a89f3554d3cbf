package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	config "retail-insight-api/configs"
	"retail-insight-api/pkg/apperrors"
	"retail-insight-api/pkg/llm"
)

// oracleStage renders one prompt template and makes exactly one oracle call.
type oracleStage struct {
	oracle  llm.Oracle
	prompts *config.PromptConfig
	logger  *zap.Logger
}

func (s *oracleStage) configured() bool {
	return s.oracle != nil
}

func (s *oracleStage) call(ctx context.Context, stage string, data any) (string, error) {
	if s.oracle == nil {
		return "", apperrors.NotConfigured()
	}

	prompt, err := s.prompts.Render(stage, data)
	if err != nil {
		return "", apperrors.New(apperrors.KindConfiguration, "The AI prompt templates are invalid.", err)
	}

	start := time.Now()
	text, err := s.oracle.Generate(ctx, prompt)
	OracleCalls.WithLabelValues(stage, outcome(err)).Inc()
	if err != nil {
		s.logger.Warn("Oracle call failed",
			zap.String("stage", stage),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", apperrors.New(apperrors.KindOracle, "The AI service could not be reached. Please try again later.", err)
	}

	s.logger.Debug("Oracle call completed",
		zap.String("stage", stage),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_len", len(text)))
	return text, nil
}
