package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	config "retail-insight-api/configs"
	"retail-insight-api/pkg/apperrors"
	"retail-insight-api/pkg/llm"
	"retail-insight-api/pkg/models"
)

// Intent is the classifier's reading of a chat message.
type Intent string

const (
	IntentGreeting  Intent = "GREETING"
	IntentDataQuery Intent = "DATA_QUERY"
	IntentUnknown   Intent = "UNKNOWN"
)

// MaxDashboardCharts caps the number of charts kept from a layout.
const MaxDashboardCharts = 6

// PlannerService turns questions and schemas into structured plans.
type PlannerService struct {
	oracleStage
}

// NewPlannerService creates a planner. A nil oracle makes every call fail
// with a configuration error.
func NewPlannerService(oracle llm.Oracle, prompts *config.PromptConfig, logger *zap.Logger) *PlannerService {
	return &PlannerService{oracleStage{oracle: oracle, prompts: prompts, logger: logger.Named("planner")}}
}

// ClassifyIntent decides whether a message is small talk or a data question.
func (s *PlannerService) ClassifyIntent(ctx context.Context, message string) (Intent, error) {
	text, err := s.call(ctx, config.PromptClassify, map[string]string{"Message": message})
	if err != nil {
		return IntentUnknown, err
	}

	upper := strings.ToUpper(text)
	switch {
	case strings.Contains(upper, string(IntentDataQuery)):
		return IntentDataQuery, nil
	case strings.Contains(upper, string(IntentGreeting)):
		return IntentGreeting, nil
	}
	return IntentUnknown, nil
}

// GeneratePlan asks the oracle for a query plan and validates it strictly.
func (s *PlannerService) GeneratePlan(ctx context.Context, schema models.Schema, history []models.ChatMessage, message string) (models.Plan, error) {
	text, err := s.call(ctx, config.PromptPlan, map[string]string{
		"Schema":  schema.PromptLines(),
		"History": formatHistory(history),
		"Message": message,
	})
	if err != nil {
		return models.Plan{}, err
	}

	plan, err := llm.DecodeStrict[models.Plan](text)
	if err == nil {
		err = plan.Validate()
	}
	if err != nil {
		s.logger.Warn("Rejected query plan", zap.String("response", text), zap.Error(err))
		return models.Plan{}, apperrors.New(apperrors.KindParse,
			"I'm sorry, I had trouble understanding that. Could you rephrase your question?", err)
	}
	return plan, nil
}

// GenerateDashboardLayout asks the oracle for up to six chart specs.
func (s *PlannerService) GenerateDashboardLayout(ctx context.Context, schema models.Schema) ([]models.ChartSpec, error) {
	text, err := s.call(ctx, config.PromptDashboard, map[string]string{"Schema": schema.PromptLines()})
	if err != nil {
		return nil, err
	}

	layout, err := llm.DecodeStrict[models.DashboardLayout](text)
	if err == nil && len(layout.Charts) == 0 {
		err = fmt.Errorf("layout has no charts")
	}
	if err != nil {
		s.logger.Warn("Rejected dashboard layout", zap.String("response", text), zap.Error(err))
		return nil, apperrors.New(apperrors.KindParse, "The AI failed to generate a valid dashboard plan.", err)
	}

	charts := layout.Charts
	if len(charts) > MaxDashboardCharts {
		charts = charts[:MaxDashboardCharts]
	}
	for i := range charts {
		if charts[i].Title == "" {
			charts[i].Title = "Untitled Chart"
		}
		if charts[i].ChartType == "" {
			charts[i].ChartType = models.ChartBar
		}
		if charts[i].AggFunc == "" {
			charts[i].AggFunc = models.AggSum
		}
	}
	return charts, nil
}

// IdentifyForecastColumns asks the oracle which columns hold month, year and sales.
func (s *PlannerService) IdentifyForecastColumns(ctx context.Context, schema models.Schema) (models.ForecastColumns, error) {
	text, err := s.call(ctx, config.PromptForecastColumns, map[string]string{"Schema": schema.PromptLines()})
	if err != nil {
		return models.ForecastColumns{}, err
	}

	cols, err := llm.DecodeStrict[models.ForecastColumns](text)
	if err != nil {
		s.logger.Warn("Rejected forecast columns", zap.String("response", text), zap.Error(err))
		return models.ForecastColumns{}, apperrors.New(apperrors.KindParse,
			"The AI could not identify the forecast columns.", err)
	}
	if cols.MonthCol == "" || cols.SalesCol == "" {
		return models.ForecastColumns{}, apperrors.Newf(apperrors.KindParse,
			"The AI could not identify the required Month or Sales columns. It found: month=%q, sales=%q.",
			cols.MonthCol, cols.SalesCol)
	}
	if cols.YearCol != nil && strings.TrimSpace(*cols.YearCol) == "" {
		cols.YearCol = nil
	}
	return cols, nil
}

// formatHistory renders chat turns oldest first as "User: …\nAI: …".
func formatHistory(history []models.ChatMessage) string {
	if len(history) == 0 {
		return "(no previous messages)"
	}
	var sb strings.Builder
	for i, m := range history {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "User: %s\nAI: %s", m.Request, m.Response)
	}
	return sb.String()
}
