package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"retail-insight-api/pkg/apperrors"
	"retail-insight-api/pkg/dataset"
	"retail-insight-api/pkg/models"
)

// TopGroups is how many groups a ranked group aggregate returns.
const TopGroups = 5

// ExecutePlan runs a validated plan against t. The table is never modified.
func ExecutePlan(t *dataset.Table, plan models.Plan) (res models.RawResult, err error) {
	defer func() {
		PlanExecutions.WithLabelValues(string(plan.Operation), outcome(err)).Inc()
	}()

	if plan.Operation == models.OpClarify {
		return res, apperrors.Newf(apperrors.KindExecution, "A clarification request cannot be executed.")
	}

	rows, err := filterRows(t, plan.Filters)
	if err != nil {
		return res, err
	}

	switch plan.Operation {
	case models.OpCount:
		return models.RawResult{Scalar: strconv.Itoa(len(rows))}, nil

	case models.OpSum, models.OpMean:
		col, err := resolveIndex(t, plan.AggCol)
		if err != nil {
			return res, err
		}
		values, err := numericValues(t, rows, col)
		if err != nil {
			return res, err
		}
		if plan.Operation == models.OpSum {
			return models.RawResult{Scalar: formatAmount(sum(values))}, nil
		}
		if len(values) == 0 {
			return res, apperrors.Newf(apperrors.KindExecution,
				"There are no values in '%s' to average for this selection.", t.Columns[col])
		}
		return models.RawResult{Scalar: formatAmount(calculateMean(values))}, nil

	case models.OpGroupByAgg:
		return groupAggregate(t, rows, plan)
	}

	return res, apperrors.Newf(apperrors.KindExecution, "Unsupported operation '%s'.", plan.Operation)
}

func resolveIndex(t *dataset.Table, name string) (int, error) {
	col, ok := dataset.ResolveColumn(t.Columns, name)
	if !ok {
		return -1, apperrors.ColumnNotFound(name)
	}
	return t.ColumnIndex(col), nil
}

// filterRows applies equality filters in order over a private index slice.
func filterRows(t *dataset.Table, filters []models.Filter) ([]int, error) {
	rows := make([]int, t.Len())
	for i := range rows {
		rows[i] = i
	}

	for _, f := range filters {
		col, err := resolveIndex(t, f.Column)
		if err != nil {
			return nil, err
		}
		want := strings.ToLower(strings.TrimSpace(string(f.Value)))
		kept := make([]int, 0, len(rows))
		for _, r := range rows {
			if strings.ToLower(strings.TrimSpace(t.Rows[r][col])) == want {
				kept = append(kept, r)
			}
		}
		rows = kept
	}
	return rows, nil
}

// numericValues parses column col for rows, skipping missing cells.
func numericValues(t *dataset.Table, rows []int, col int) ([]float64, error) {
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		cell := t.Rows[r][col]
		if dataset.IsMissing(cell) {
			continue
		}
		v, ok := dataset.ParseNumber(cell)
		if !ok {
			return nil, apperrors.Newf(apperrors.KindExecution,
				"The column '%s' contains a non-numeric value ('%s'), so it can't be calculated.", t.Columns[col], cell)
		}
		values = append(values, v)
	}
	return values, nil
}

type group struct {
	label  string
	values []float64
}

// groupValues collects numeric values per present label, in first-seen
// order. A non-nil key maps each label to the one it is grouped under.
func groupValues(t *dataset.Table, rows []int, keyCol, valCol int, key func(string) string) ([]*group, error) {
	index := map[string]*group{}
	var groups []*group
	for _, r := range rows {
		label := strings.TrimSpace(t.Rows[r][keyCol])
		if dataset.IsMissing(label) {
			continue
		}
		if key != nil {
			label = key(label)
		}
		g, ok := index[label]
		if !ok {
			g = &group{label: label}
			index[label] = g
			groups = append(groups, g)
		}

		cell := t.Rows[r][valCol]
		if dataset.IsMissing(cell) {
			continue
		}
		v, ok := dataset.ParseNumber(cell)
		if !ok {
			return nil, apperrors.Newf(apperrors.KindExecution,
				"The column '%s' contains a non-numeric value ('%s'), so it can't be calculated.", t.Columns[valCol], cell)
		}
		g.values = append(g.values, v)
	}
	return groups, nil
}

func groupAggregate(t *dataset.Table, rows []int, plan models.Plan) (models.RawResult, error) {
	keyCol, err := resolveIndex(t, plan.GroupByCol)
	if err != nil {
		return models.RawResult{}, err
	}
	valCol, err := resolveIndex(t, plan.AggCol)
	if err != nil {
		return models.RawResult{}, err
	}

	groups, err := groupValues(t, rows, keyCol, valCol, nil)
	if err != nil {
		return models.RawResult{}, err
	}

	reduce := sum
	if plan.AggFunc == models.AggMean {
		reduce = calculateMean
	}

	var points []models.SeriesPoint
	for _, g := range groups {
		if plan.AggFunc == models.AggMean && len(g.values) == 0 {
			continue
		}
		points = append(points, models.SeriesPoint{Label: g.label, Value: reduce(g.values)})
	}
	if len(points) == 0 {
		return models.RawResult{}, apperrors.Newf(apperrors.KindExecution,
			"No groups were found in '%s' for this selection.", t.Columns[keyCol])
	}
	rankDescending(points)

	if plan.AggFunc == models.AggIdxMax {
		return models.RawResult{Scalar: points[0].Label}, nil
	}

	if len(points) > TopGroups {
		points = points[:TopGroups]
	}
	for i := range points {
		points[i].Display = formatAmount(points[i].Value)
	}
	return models.RawResult{
		Heading: fmt.Sprintf("Here are the Top %d %s by %s:", TopGroups, t.Columns[keyCol], t.Columns[valCol]),
		Series:  points,
	}, nil
}

// rankDescending orders by value, high to low, breaking ties by label.
func rankDescending(points []models.SeriesPoint) {
	sort.SliceStable(points, func(i, j int) bool {
		if points[i].Value != points[j].Value {
			return points[i].Value > points[j].Value
		}
		return points[i].Label < points[j].Label
	})
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
