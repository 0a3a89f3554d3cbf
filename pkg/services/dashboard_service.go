package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"retail-insight-api/pkg/apperrors"
	"retail-insight-api/pkg/dataset"
	"retail-insight-api/pkg/models"
)

// Chart sizes.
const (
	BarChartLimit = 10
	PieChartLimit = 5
)

// DashboardService plans and draws a dashboard for a retail table.
type DashboardService struct {
	planner *PlannerService
	files   *FileService
	logger  *zap.Logger
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(planner *PlannerService, files *FileService, logger *zap.Logger) *DashboardService {
	return &DashboardService{planner: planner, files: files, logger: logger.Named("dashboard")}
}

// BuildForFile builds the dashboard of the retail file fileID.
func (s *DashboardService) BuildForFile(ctx context.Context, fileID string) ([]models.ChartData, error) {
	file, table, err := s.files.RetailTable(fileID)
	if err != nil {
		return nil, err
	}
	return s.Build(ctx, file.Schema, table)
}

// Build asks for a layout once, then executes each chart independently.
// A failing chart becomes an error placeholder.
func (s *DashboardService) Build(ctx context.Context, schema models.Schema, t *dataset.Table) ([]models.ChartData, error) {
	specs, err := s.planner.GenerateDashboardLayout(ctx, schema)
	if err != nil {
		return nil, err
	}

	charts := make([]models.ChartData, 0, len(specs))
	for _, spec := range specs {
		chart, err := ExecuteChart(t, spec)
		DashboardCharts.WithLabelValues(outcome(err)).Inc()
		if err != nil {
			s.logger.Warn("Skipping chart", zap.String("title", spec.Title), zap.Error(err))
			chart = models.ChartData{
				Title:        spec.Title + " (Failed)",
				ChartType:    models.ChartError,
				ErrorMessage: apperrors.UserMessage(err),
			}
		}
		charts = append(charts, chart)
	}
	return charts, nil
}

// ExecuteChart aggregates y by x for one chart spec.
func ExecuteChart(t *dataset.Table, spec models.ChartSpec) (models.ChartData, error) {
	switch spec.ChartType {
	case models.ChartBar, models.ChartPie, models.ChartLine:
	default:
		return models.ChartData{}, apperrors.Newf(apperrors.KindExecution, "Unsupported chart type '%s'.", spec.ChartType)
	}

	xCol, err := chartColumn(t, spec.XCol)
	if err != nil {
		return models.ChartData{}, err
	}
	yCol, err := chartColumn(t, spec.YCol)
	if err != nil {
		return models.ChartData{}, err
	}

	var key func(string) string
	if spec.ChartType == models.ChartLine && monthAxis(t, xCol) {
		key = monthLabel
	}
	points, err := aggregateChart(t, xCol, yCol, spec.AggFunc, key)
	if err != nil {
		return models.ChartData{}, err
	}

	switch spec.ChartType {
	case models.ChartLine:
		points = orderForLine(points)
	case models.ChartBar:
		points = topN(points, BarChartLimit)
	case models.ChartPie:
		points = topN(points, PieChartLimit)
	}

	chart := models.ChartData{
		Title:     spec.Title,
		ChartType: spec.ChartType,
		Labels:    make([]string, len(points)),
		Values:    make([]float64, len(points)),
	}
	for i, p := range points {
		chart.Labels[i] = p.Label
		chart.Values[i] = p.Value
	}
	return chart, nil
}

func chartColumn(t *dataset.Table, name string) (int, error) {
	col, ok := dataset.ResolveColumn(t.Columns, name)
	if !ok {
		return -1, &apperrors.Error{
			Kind:    apperrors.KindColumnNotFound,
			Column:  name,
			Message: fmt.Sprintf("AI planned to use column '%s', but it wasn't found in the file.", name),
		}
	}
	return t.ColumnIndex(col), nil
}

// monthAxis reports whether every present x label is an English month name.
func monthAxis(t *dataset.Table, xCol int) bool {
	seen := false
	for _, row := range t.Rows {
		label := strings.TrimSpace(row[xCol])
		if dataset.IsMissing(label) {
			continue
		}
		if _, ok := monthNames[strings.ToLower(label)]; !ok {
			return false
		}
		seen = true
	}
	return seen
}

// monthLabel maps "jan", "Jan" and "January" to "January".
func monthLabel(label string) string {
	if m, ok := monthNames[strings.ToLower(label)]; ok {
		return m.String()
	}
	return label
}

func aggregateChart(t *dataset.Table, xCol, yCol int, aggFunc string, key func(string) string) ([]models.SeriesPoint, error) {
	rows := make([]int, t.Len())
	for i := range rows {
		rows[i] = i
	}

	if aggFunc == models.AggCount {
		counts := map[string]int{}
		var order []string
		for _, r := range rows {
			label := strings.TrimSpace(t.Rows[r][xCol])
			if dataset.IsMissing(label) {
				continue
			}
			if key != nil {
				label = key(label)
			}
			if _, ok := counts[label]; !ok {
				order = append(order, label)
				counts[label] = 0
			}
			if !dataset.IsMissing(t.Rows[r][yCol]) {
				counts[label]++
			}
		}
		points := make([]models.SeriesPoint, len(order))
		for i, label := range order {
			points[i] = models.SeriesPoint{Label: label, Value: float64(counts[label])}
		}
		return points, nil
	}

	var reduce func([]float64) float64
	switch aggFunc {
	case models.AggSum:
		reduce = sum
	case models.AggMean:
		reduce = calculateMean
	default:
		return nil, apperrors.Newf(apperrors.KindExecution, "Unsupported aggregation '%s'.", aggFunc)
	}

	groups, err := groupValues(t, rows, xCol, yCol, key)
	if err != nil {
		return nil, err
	}
	points := make([]models.SeriesPoint, 0, len(groups))
	for _, g := range groups {
		if aggFunc == models.AggMean && len(g.values) == 0 {
			continue
		}
		points = append(points, models.SeriesPoint{Label: g.label, Value: reduce(g.values)})
	}
	return points, nil
}

func topN(points []models.SeriesPoint, n int) []models.SeriesPoint {
	rankDescending(points)
	if len(points) > n {
		points = points[:n]
	}
	return points
}

// orderForLine puts English month labels on a January..December axis
// (missing months are zero). Labels must already be merged per month by
// monthLabel. Other labels are sorted naturally.
func orderForLine(points []models.SeriesPoint) []models.SeriesPoint {
	byMonth := map[time.Month]float64{}
	allMonths := len(points) > 0
	for _, p := range points {
		m, ok := monthNames[strings.ToLower(p.Label)]
		if !ok {
			allMonths = false
			break
		}
		byMonth[m] = p.Value
	}
	if allMonths {
		out := make([]models.SeriesPoint, 12)
		for m := time.January; m <= time.December; m++ {
			out[m-1] = models.SeriesPoint{Label: m.String(), Value: byMonth[m]}
		}
		return out
	}

	numeric := true
	keys := make([]float64, len(points))
	for i, p := range points {
		v, ok := dataset.ParseNumber(p.Label)
		if !ok {
			numeric = false
			break
		}
		keys[i] = v
	}

	idx := make([]int, len(points))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if numeric {
			return keys[idx[a]] < keys[idx[b]]
		}
		return points[idx[a]].Label < points[idx[b]].Label
	})
	out := make([]models.SeriesPoint, len(points))
	for i, j := range idx {
		out[i] = points[j]
	}
	return out
}
