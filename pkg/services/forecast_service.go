package services

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"retail-insight-api/pkg/apperrors"
	"retail-insight-api/pkg/dataset"
	"retail-insight-api/pkg/models"
)

const (
	// MinForecastMonths is the shortest monthly history a forecast accepts.
	MinForecastMonths = 24
	// ForecastHorizon is the number of months predicted.
	ForecastHorizon = 12
	// ForecastConfidence is the two-sided interval level.
	ForecastConfidence = 0.95
)

// ForecastService builds 12-month sales forecasts for retail tables.
type ForecastService struct {
	planner  *PlannerService
	narrator *NarratorService
	files    *FileService
	logger   *zap.Logger
}

// NewForecastService creates a ForecastService.
func NewForecastService(planner *PlannerService, narrator *NarratorService, files *FileService, logger *zap.Logger) *ForecastService {
	return &ForecastService{
		planner:  planner,
		narrator: narrator,
		files:    files,
		logger:   logger.Named("forecast"),
	}
}

// Run forecasts the retail file fileID. Columns given in override are used
// as-is; when both month and sales are supplied the oracle is not asked.
func (s *ForecastService) Run(ctx context.Context, fileID string, override models.ForecastColumns) (*models.ForecastResult, error) {
	file, table, err := s.files.RetailTable(fileID)
	if err != nil {
		return nil, err
	}

	cols := override
	if override.MonthCol == "" || override.SalesCol == "" {
		identified, err := s.planner.IdentifyForecastColumns(ctx, file.Schema)
		if err != nil {
			return nil, err
		}
		cols = mergeForecastColumns(identified, override)
	}
	s.logger.Info("Forecast columns", zap.String("file_id", fileID), zap.String("columns", formatForecastColumns(cols)))

	return s.Forecast(ctx, table, cols)
}

func mergeForecastColumns(base, override models.ForecastColumns) models.ForecastColumns {
	if override.MonthCol != "" {
		base.MonthCol = override.MonthCol
	}
	if override.SalesCol != "" {
		base.SalesCol = override.SalesCol
	}
	if override.YearCol != nil {
		base.YearCol = override.YearCol
	}
	return base
}

// Forecast prepares the monthly series, fits the model and narrates it.
func (s *ForecastService) Forecast(ctx context.Context, t *dataset.Table, cols models.ForecastColumns) (result *models.ForecastResult, err error) {
	defer func() { ForecastRuns.WithLabelValues(outcome(err)).Inc() }()

	labels, values, err := monthlySeries(t, cols)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Fitting forecast model",
		zap.String("sales_col", cols.SalesCol),
		zap.Int("months", len(values)))

	model, err := fitSARIMA(values)
	if err != nil {
		return nil, apperrors.New(apperrors.KindExecution, "The forecast model could not be fitted to this data.", err)
	}
	mean, lower, upper := model.forecast(ForecastHorizon, ForecastConfidence)
	for i := range mean {
		if !isFinite(mean[i]) || !isFinite(lower[i]) || !isFinite(upper[i]) {
			return nil, apperrors.Newf(apperrors.KindExecution, "The forecast model produced invalid values for this data.")
		}
	}

	last, _ := time.Parse(monthLabelLayout, labels[len(labels)-1])
	forecastLabels := make([]string, ForecastHorizon)
	for i := range forecastLabels {
		forecastLabels[i] = last.AddDate(0, i+1, 0).Format(monthLabelLayout)
	}

	return &models.ForecastResult{
		Summary:          s.narrator.SummarizeForecast(ctx, values, mean, cols.SalesCol),
		HistoricalLabels: labels,
		HistoricalValues: values,
		ForecastLabels:   forecastLabels,
		ForecastValues:   mean,
		LowerCI:          lower,
		UpperCI:          upper,
	}, nil
}

const monthLabelLayout = "2006-01"

// monthlySeries sums sales per calendar month over the full span of the
// data. Months without rows count as zero.
func monthlySeries(t *dataset.Table, cols models.ForecastColumns) ([]string, []float64, error) {
	resolve := func(name string) (int, error) {
		col, ok := dataset.ResolveColumn(t.Columns, name)
		if !ok {
			return -1, &apperrors.Error{
				Kind:    apperrors.KindColumnNotFound,
				Column:  name,
				Message: fmt.Sprintf("The AI picked a column that doesn't exist: '%s'. Please check your file.", name),
			}
		}
		return t.ColumnIndex(col), nil
	}

	monthCol, err := resolve(cols.MonthCol)
	if err != nil {
		return nil, nil, err
	}
	yearCol := -1
	if cols.YearCol != nil {
		if yearCol, err = resolve(*cols.YearCol); err != nil {
			return nil, nil, err
		}
	}
	salesCol, err := resolve(cols.SalesCol)
	if err != nil {
		return nil, nil, err
	}

	totals := map[time.Time]float64{}
	var first, last time.Time
	for _, row := range t.Rows {
		var date time.Time
		var ok bool
		if yearCol >= 0 {
			date, ok = parseYearMonth(row[yearCol], row[monthCol])
		} else {
			date, ok = dataset.ParseDate(row[monthCol])
		}
		if !ok {
			continue
		}
		if dataset.IsMissing(row[salesCol]) {
			continue
		}
		sales, ok := dataset.ParseNumber(row[salesCol])
		if !ok {
			continue
		}

		month := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
		if len(totals) == 0 || month.Before(first) {
			first = month
		}
		if len(totals) == 0 || month.After(last) {
			last = month
		}
		totals[month] += sales
	}

	if len(totals) == 0 {
		return nil, nil, apperrors.Newf(apperrors.KindInsufficientData,
			"The data was empty after cleaning. Check the date and sales columns.")
	}

	var labels []string
	var values []float64
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		labels = append(labels, m.Format(monthLabelLayout))
		values = append(values, totals[m])
	}

	if len(values) < MinForecastMonths {
		return nil, nil, apperrors.Newf(apperrors.KindInsufficientData,
			"Not enough data for a reliable forecast. Need at least %d months of data, but found only %d.",
			MinForecastMonths, len(values))
	}
	return labels, values, nil
}

var monthNames = map[string]time.Month{}

func init() {
	for m := time.January; m <= time.December; m++ {
		name := strings.ToLower(m.String())
		monthNames[name] = m
		monthNames[name[:3]] = m
	}
	monthNames["sept"] = time.September
}

// parseMonth accepts a full or abbreviated English month name in any case,
// or a month number.
func parseMonth(s string) (time.Month, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if m, ok := monthNames[s]; ok {
		return m, true
	}
	if n, ok := dataset.ParseNumber(s); ok && n == math.Trunc(n) && n >= 1 && n <= 12 {
		return time.Month(int(n)), true
	}
	return 0, false
}

func parseYearMonth(year, month string) (time.Time, bool) {
	y, ok := dataset.ParseNumber(year)
	if !ok || y != math.Trunc(y) || y < 1 || y > 9999 {
		return time.Time{}, false
	}
	m, ok := parseMonth(month)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(int(y), m, 1, 0, 0, 0, 0, time.UTC), true
}

func formatForecastColumns(c models.ForecastColumns) string {
	year := "null"
	if c.YearCol != nil {
		year = strconv.Quote(*c.YearCol)
	}
	return fmt.Sprintf("month=%q year=%s sales=%q", c.MonthCol, year, c.SalesCol)
}
