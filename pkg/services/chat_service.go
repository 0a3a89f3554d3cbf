package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	config "retail-insight-api/configs"
	"retail-insight-api/pkg/apperrors"
	"retail-insight-api/pkg/models"
	"retail-insight-api/pkg/store"
)

// ChatService answers questions about a retail table:
// classify → plan → validate → execute → narrate.
type ChatService struct {
	files        *FileService
	store        *store.Store
	planner      *PlannerService
	narrator     *NarratorService
	prompts      *config.PromptConfig
	historyLimit int
	logger       *zap.Logger
}

// NewChatService creates a ChatService. historyLimit caps how many past
// turns are shown to the planner.
func NewChatService(files *FileService, st *store.Store, planner *PlannerService, narrator *NarratorService,
	prompts *config.PromptConfig, historyLimit int, logger *zap.Logger) *ChatService {
	return &ChatService{
		files:        files,
		store:        st,
		planner:      planner,
		narrator:     narrator,
		prompts:      prompts,
		historyLimit: historyLimit,
		logger:       logger.Named("chat"),
	}
}

// Ask runs one chat turn and appends it to the transcript. Pipeline
// failures are answered in the response text; only lookup and storage
// failures are returned as errors.
func (s *ChatService) Ask(ctx context.Context, fileID, message string) (*models.ChatResponse, error) {
	file, err := s.files.Get(models.FileKindRetail, fileID)
	if err != nil {
		return nil, err
	}

	resp := s.answer(ctx, file, message)
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)

	turn := &models.ChatMessage{
		ID:        uuid.NewString(),
		FileID:    fileID,
		Request:   message,
		RawResult: resp.RawResult,
		Response:  resp.Response,
		CreatedAt: time.Now().UTC(),
	}
	if resp.Plan != nil {
		turn.PlanJSON = resp.Plan.JSON()
	}
	if err := s.store.AppendChat(turn); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *ChatService) answer(ctx context.Context, file *models.UploadedFile, message string) *models.ChatResponse {
	if ok, reply := s.prompts.MatchGreeting(message); ok {
		return &models.ChatResponse{Intent: string(IntentGreeting), Response: reply}
	}

	intent, err := s.planner.ClassifyIntent(ctx, message)
	if err != nil {
		return failedTurn(IntentUnknown, err)
	}

	switch intent {
	case IntentGreeting:
		return &models.ChatResponse{Intent: string(intent), Response: s.prompts.Assistant.DefaultGreeting}
	case IntentUnknown:
		return &models.ChatResponse{Intent: string(intent), Response: s.prompts.Assistant.UnclearIntent}
	}

	history, err := s.store.ListChat(file.ID, s.historyLimit)
	if err != nil {
		return failedTurn(intent, err)
	}

	plan, err := s.planner.GeneratePlan(ctx, file.Schema, history, message)
	if err != nil {
		return failedTurn(intent, err)
	}

	resp := &models.ChatResponse{Intent: string(intent), Plan: &plan}
	if plan.Operation == models.OpClarify {
		resp.Response = plan.Message
		return resp
	}

	_, table, err := s.files.RetailTable(file.ID)
	if err != nil {
		resp.Response = apperrors.UserMessage(err)
		resp.ErrorKind = string(apperrors.KindOf(err))
		return resp
	}

	raw, err := ExecutePlan(table, plan)
	if err != nil {
		s.logger.Info("Plan execution failed", zap.String("plan", plan.JSON()), zap.Error(err))
		raw = models.FailedResult(err)
		resp.ErrorKind = string(apperrors.KindOf(err))
	}
	resp.RawResult = raw.Text()
	resp.Response = s.narrator.Narrate(ctx, message, raw)
	return resp
}

func failedTurn(intent Intent, err error) *models.ChatResponse {
	return &models.ChatResponse{
		Intent:    string(intent),
		Response:  apperrors.UserMessage(err),
		ErrorKind: string(apperrors.KindOf(err)),
	}
}

// History returns the full transcript of a retail file, oldest first.
func (s *ChatService) History(fileID string) ([]models.ChatMessage, error) {
	if _, err := s.files.Get(models.FileKindRetail, fileID); err != nil {
		return nil, err
	}
	return s.store.ListChat(fileID, 0)
}
