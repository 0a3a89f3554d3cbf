package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OracleCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retail_insight_oracle_calls_total", Help: "Oracle calls by pipeline stage and outcome.",
	}, []string{"stage", "result"})

	PlanExecutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retail_insight_plan_executions_total", Help: "Executed query plans by operation and outcome.",
	}, []string{"operation", "result"})

	DashboardCharts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retail_insight_dashboard_charts_total", Help: "Dashboard charts built by outcome.",
	}, []string{"result"})

	ForecastRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "retail_insight_forecast_runs_total", Help: "Forecast runs by outcome.",
	}, []string{"result"})
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
