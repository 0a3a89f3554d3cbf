package models

import "time"

// FileKind distinguishes the two upload flows.
type FileKind string

const (
	FileKindFeedback FileKind = "feedback" // customer feedback document
	FileKindRetail   FileKind = "retail"   // sales table
)

// UploadedFile is the persisted record of an upload.
type UploadedFile struct {
	ID         string    `json:"id"`
	Kind       FileKind  `json:"kind"`
	Filename   string    `json:"filename"`
	StoredPath string    `json:"stored_path"`
	Size       int64     `json:"size"`
	Schema     Schema    `json:"schema,omitempty"` // retail only, fixed at upload
	UploadedAt time.Time `json:"uploaded_at"`
}

// SentimentDistribution is the share of positive, negative and neutral feedback.
type SentimentDistribution struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// SentimentAnalysis is the oracle's structured reading of a feedback document.
type SentimentAnalysis struct {
	OverallSentiment      string                `json:"overall_sentiment"`
	SentimentColor        string                `json:"sentiment_color"` // success / warning / danger
	PositiveThemes        []string              `json:"positive_themes"`
	AreasForImprovement   []string              `json:"areas_for_improvement"`
	SentimentDistribution SentimentDistribution `json:"sentiment_distribution"`
}

// AnalysisResult is the single feedback analysis of a file.
type AnalysisResult struct {
	ID        string             `json:"id"`
	FileID    string             `json:"file_id"`
	Sentiment *SentimentAnalysis `json:"sentiment,omitempty"`
	Error     string             `json:"error,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// ChatMessage is one persisted chat turn.
type ChatMessage struct {
	ID        string    `json:"id"`
	FileID    string    `json:"file_id"`
	Request   string    `json:"request"`
	PlanJSON  string    `json:"plan_json,omitempty"`
	RawResult string    `json:"raw_result,omitempty"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest represents an incoming chat request
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse represents the response from the chat API
type ChatResponse struct {
	Response  string `json:"response"`
	Intent    string `json:"intent"`
	Plan      *Plan  `json:"plan,omitempty"`
	RawResult string `json:"raw_result,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
	Timestamp string `json:"timestamp"`
}
