package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	config "retail-insight-api/configs"
	"retail-insight-api/pkg/apperrors"
	"retail-insight-api/pkg/dataset"
	"retail-insight-api/pkg/llm"
	"retail-insight-api/pkg/models"
	"retail-insight-api/pkg/store"
)

var sentimentColors = map[string]bool{"success": true, "warning": true, "danger": true}

// FeedbackService analyses customer feedback documents.
type FeedbackService struct {
	oracleStage
	files *FileService
	store *store.Store
}

// NewFeedbackService creates a FeedbackService.
func NewFeedbackService(oracle llm.Oracle, prompts *config.PromptConfig, files *FileService, st *store.Store, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{
		oracleStage: oracleStage{oracle: oracle, prompts: prompts, logger: logger.Named("feedback")},
		files:       files,
		store:       st,
	}
}

// UploadAndAnalyze stores a feedback document and analyses it.
func (s *FeedbackService) UploadAndAnalyze(ctx context.Context, filename string, r io.Reader) (*models.UploadedFile, *models.AnalysisResult, error) {
	if !s.configured() {
		return nil, nil, apperrors.NotConfigured()
	}
	rec, err := s.files.Upload(models.FileKindFeedback, filename, r)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.Analyze(ctx, rec.ID)
	if err != nil {
		return rec, nil, err
	}
	return rec, result, nil
}

// Analyze returns the analysis of a feedback file, creating it on first
// use. Oracle and parse failures are stored as an error result.
func (s *FeedbackService) Analyze(ctx context.Context, fileID string) (*models.AnalysisResult, error) {
	rec, err := s.files.Get(models.FileKindFeedback, fileID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetAnalysis(fileID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	if !s.configured() {
		return nil, apperrors.NotConfigured()
	}

	data, err := s.files.Content(rec)
	if err != nil {
		return nil, err
	}
	text, err := dataset.ExtractText(rec.Filename, data)
	if err != nil {
		return nil, apperrors.New(apperrors.KindParse, "Error reading file. It may be corrupted.", err)
	}

	result := &models.AnalysisResult{
		ID:        uuid.NewString(),
		FileID:    fileID,
		CreatedAt: time.Now().UTC(),
	}
	sentiment, err := s.analyzeText(ctx, text)
	if err != nil {
		s.logger.Warn("Feedback analysis failed", zap.String("file_id", fileID), zap.Error(err))
		result.Error = apperrors.UserMessage(err)
	} else {
		result.Sentiment = sentiment
	}

	if err := s.store.CreateAnalysis(result); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return s.store.GetAnalysis(fileID)
		}
		return nil, err
	}
	return result, nil
}

// Get returns a feedback file and its analysis, if one was stored.
func (s *FeedbackService) Get(fileID string) (*models.UploadedFile, *models.AnalysisResult, error) {
	rec, err := s.files.Get(models.FileKindFeedback, fileID)
	if err != nil {
		return nil, nil, err
	}
	analysis, err := s.store.GetAnalysis(fileID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return rec, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return rec, analysis, nil
}

func (s *FeedbackService) analyzeText(ctx context.Context, text string) (*models.SentimentAnalysis, error) {
	resp, err := s.call(ctx, config.PromptFeedback, map[string]string{"Text": text})
	if err != nil {
		return nil, err
	}

	sentiment, err := llm.DecodeStrict[models.SentimentAnalysis](resp)
	if err == nil && !sentimentColors[sentiment.SentimentColor] {
		err = fmt.Errorf("unknown sentiment_color %q", sentiment.SentimentColor)
	}
	if err != nil {
		return nil, apperrors.New(apperrors.KindParse, "The AI returned an analysis that could not be read.", err)
	}
	return &sentiment, nil
}
