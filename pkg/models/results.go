package models

import (
	"strings"

	"retail-insight-api/pkg/apperrors"
)

// SeriesPoint is one labelled value of a grouped result.
type SeriesPoint struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// RawResult is the executor's answer before narration. Exactly one of
// Scalar, Series or Err is meaningful.
type RawResult struct {
	Scalar  string        `json:"scalar,omitempty"`
	Heading string        `json:"heading,omitempty"`
	Series  []SeriesPoint `json:"series,omitempty"`
	Err     error         `json:"-"`
}

// FailedResult wraps an error as a raw result.
func FailedResult(err error) RawResult {
	return RawResult{Err: err}
}

// Failed reports whether execution failed.
func (r RawResult) Failed() bool {
	return r.Err != nil
}

// Text renders the result as plain text.
func (r RawResult) Text() string {
	if r.Err != nil {
		return apperrors.UserMessage(r.Err)
	}
	if r.Series == nil {
		return r.Scalar
	}

	var sb strings.Builder
	sb.WriteString(r.Heading)
	for _, p := range r.Series {
		sb.WriteString("\n")
		sb.WriteString(p.Label)
		sb.WriteString(": ")
		sb.WriteString(p.Display)
	}
	return sb.String()
}

// ChartSpec is one planned dashboard chart.
type ChartSpec struct {
	Title     string `json:"title"`
	ChartType string `json:"chart_type"`
	XCol      string `json:"x_col"`
	YCol      string `json:"y_col"`
	AggFunc   string `json:"agg_func"`
}

// DashboardLayout is the wire form of a dashboard plan.
type DashboardLayout struct {
	Charts []ChartSpec `json:"charts"`
}

// Chart types.
const (
	ChartBar   = "bar"
	ChartPie   = "pie"
	ChartLine  = "line"
	ChartError = "error"
)

// ChartData is an executed chart, or an error placeholder.
type ChartData struct {
	Title        string    `json:"title"`
	ChartType    string    `json:"chart_type"`
	Labels       []string  `json:"labels,omitempty"`
	Values       []float64 `json:"values,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
}

// ForecastColumns names the columns a forecast is built from.
// YearCol is nil when MonthCol holds full dates.
type ForecastColumns struct {
	MonthCol string  `json:"month_col"`
	YearCol  *string `json:"year_col"`
	SalesCol string  `json:"sales_col"`
}

// ForecastResult is a 12-month forecast with its 95% interval.
type ForecastResult struct {
	Summary          string    `json:"summary"`
	HistoricalLabels []string  `json:"historical_labels"`
	HistoricalValues []float64 `json:"historical_values"`
	ForecastLabels   []string  `json:"forecast_labels"`
	ForecastValues   []float64 `json:"forecast_values"`
	LowerCI          []float64 `json:"lower_ci"`
	UpperCI          []float64 `json:"upper_ci"`
}
