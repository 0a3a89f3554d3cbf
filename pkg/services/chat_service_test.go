package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"retail-insight-api/pkg/apperrors"
	"retail-insight-api/pkg/llm"
	"retail-insight-api/pkg/models"
)

func newChatService(env *testEnv, oracle llm.Oracle) *ChatService {
	planner := NewPlannerService(oracle, env.prompts, zap.NewNop())
	narrator := NewNarratorService(oracle, env.prompts, zap.NewNop())
	return NewChatService(env.files, env.store, planner, narrator, env.prompts, 10, zap.NewNop())
}

func TestChatGreetingBypassesOracle(t *testing.T) {
	env := newTestEnv(t)
	rec := env.upload(t, models.FileKindRetail, "sales.csv", salesCSV)
	oracle := llm.NewMockOracle()

	resp, err := newChatService(env, oracle).Ask(context.Background(), rec.ID, "Vanakkam!")
	require.NoError(t, err)
	assert.Equal(t, "Vanakkam! Unga data pathi enna kelvi iruku?", resp.Response)
	assert.Equal(t, string(IntentGreeting), resp.Intent)
	assert.Zero(t, oracle.Calls())
}

func TestChatEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	rec := env.upload(t, models.FileKindRetail, "sales.csv", salesCSV)
	oracle := llm.NewMockOracle(
		"DATA_QUERY",
		`{"operation": "sum", "agg_col": "Sales", "filters": [{"column": "city", "value": "Chennai"}]}`,
		"The total sales in Chennai are 300.00.",
	)

	resp, err := newChatService(env, oracle).Ask(context.Background(), rec.ID, "What are the total sales in Chennai?")
	require.NoError(t, err)
	assert.Equal(t, "The total sales in Chennai are 300.00.", resp.Response)
	assert.Equal(t, "300.00", resp.RawResult)
	require.NotNil(t, resp.Plan)
	assert.Equal(t, models.OpSum, resp.Plan.Operation)
	assert.Empty(t, resp.ErrorKind)
	assert.NotEmpty(t, resp.Timestamp)
	assert.Equal(t, 3, oracle.Calls())

	turns, err := env.store.ListChat(rec.ID, 0)
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "What are the total sales in Chennai?", turns[0].Request)
	assert.Equal(t, "300.00", turns[0].RawResult)
	assert.Contains(t, turns[0].PlanJSON, `"agg_col":"Sales"`)
}

func TestChatClarifyAndHistory(t *testing.T) {
	env := newTestEnv(t)
	rec := env.upload(t, models.FileKindRetail, "sales.csv", salesCSV)
	oracle := llm.NewMockOracle(
		"DATA_QUERY",
		`{"operation": "clarify", "message": "Which column holds profit?"}`,
		"DATA_QUERY",
		`{"operation": "count"}`,
		"There are 4 orders.",
	)
	chat := newChatService(env, oracle)

	resp, err := chat.Ask(context.Background(), rec.ID, "What was the profit?")
	require.NoError(t, err)
	assert.Equal(t, "Which column holds profit?", resp.Response)

	resp, err = chat.Ask(context.Background(), rec.ID, "How many orders?")
	require.NoError(t, err)
	assert.Equal(t, "There are 4 orders.", resp.Response)
	assert.Contains(t, oracle.Prompts[3], "User: What was the profit?\nAI: Which column holds profit?")

	history, err := chat.History(rec.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "How many orders?", history[1].Request)
}

func TestChatColumnErrorIsAnsweredVerbatim(t *testing.T) {
	env := newTestEnv(t)
	rec := env.upload(t, models.FileKindRetail, "sales.csv", salesCSV)
	oracle := llm.NewMockOracle("DATA_QUERY", `{"operation": "sum", "agg_col": "Revenue"}`)

	resp, err := newChatService(env, oracle).Ask(context.Background(), rec.ID, "Total revenue?")
	require.NoError(t, err)
	assert.Equal(t, "I'm sorry, I couldn't find a column in your file that matches 'Revenue'.", resp.Response)
	assert.Equal(t, string(apperrors.KindColumnNotFound), resp.ErrorKind)
	assert.Equal(t, 2, oracle.Calls())
}

func TestChatUnknownIntent(t *testing.T) {
	env := newTestEnv(t)
	rec := env.upload(t, models.FileKindRetail, "sales.csv", salesCSV)

	resp, err := newChatService(env, llm.NewMockOracle("UNKNOWN")).Ask(context.Background(), rec.ID, "blorp")
	require.NoError(t, err)
	assert.Equal(t, env.prompts.Assistant.UnclearIntent, resp.Response)
}

func TestChatWithoutOracle(t *testing.T) {
	env := newTestEnv(t)
	rec := env.upload(t, models.FileKindRetail, "sales.csv", salesCSV)

	resp, err := newChatService(env, nil).Ask(context.Background(), rec.ID, "Total sales?")
	require.NoError(t, err)
	assert.Equal(t, string(apperrors.KindConfiguration), resp.ErrorKind)

	turns, err := env.store.ListChat(rec.ID, 0)
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}

func TestChatUnknownFile(t *testing.T) {
	env := newTestEnv(t)
	_, err := newChatService(env, nil).Ask(context.Background(), "missing", "hi")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
