package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retail-insight-api/pkg/apperrors"
	"retail-insight-api/pkg/models"
)

func cityTable(t *testing.T) [][]string {
	t.Helper()
	return [][]string{
		{"City", "Category", "Sales"},
		{"Chennai", "Clothing", "100"},
		{" chennai ", "Electronics", "200"},
		{"Madurai", "Clothing", "50"},
	}
}

func TestExecuteSumWithFilter(t *testing.T) {
	table := newTable(t, cityTable(t)...)
	plan := models.Plan{
		Operation: models.OpSum,
		AggCol:    "sales",
		Filters:   []models.Filter{{Column: "city", Value: "CHENNAI"}},
	}

	res, err := ExecutePlan(table, plan)
	require.NoError(t, err)
	assert.Equal(t, "300.00", res.Text())
}

func TestExecuteUnknownColumn(t *testing.T) {
	table := newTable(t, cityTable(t)...)
	plan := models.Plan{Operation: models.OpSum, AggCol: "Revenue"}

	_, err := ExecutePlan(table, plan)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindColumnNotFound, apperrors.KindOf(err))
	assert.Equal(t, "I'm sorry, I couldn't find a column in your file that matches 'Revenue'.", apperrors.UserMessage(err))
}

func TestExecuteFirstUnresolvedFilterAborts(t *testing.T) {
	table := newTable(t, cityTable(t)...)
	plan := models.Plan{
		Operation: models.OpCount,
		Filters: []models.Filter{
			{Column: "Region", Value: "South"},
			{Column: "Store", Value: "1"},
		},
	}

	_, err := ExecutePlan(table, plan)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Region", appErr.Column)
}

func TestExecuteCountAndMean(t *testing.T) {
	table := newTable(t, cityTable(t)...)

	res, err := ExecutePlan(table, models.Plan{
		Operation: models.OpCount,
		Filters:   []models.Filter{{Column: "Category", Value: "clothing"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "2", res.Text())

	res, err = ExecutePlan(table, models.Plan{Operation: models.OpMean, AggCol: "Sales"})
	require.NoError(t, err)
	assert.Equal(t, "116.67", res.Text())
}

func TestExecuteSumOfNoRowsIsZero(t *testing.T) {
	table := newTable(t, cityTable(t)...)
	res, err := ExecutePlan(table, models.Plan{
		Operation: models.OpSum,
		AggCol:    "Sales",
		Filters:   []models.Filter{{Column: "City", Value: "Salem"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "0.00", res.Text())

	_, err = ExecutePlan(table, models.Plan{
		Operation: models.OpMean,
		AggCol:    "Sales",
		Filters:   []models.Filter{{Column: "City", Value: "Salem"}},
	})
	assert.Equal(t, apperrors.KindExecution, apperrors.KindOf(err))
}

func TestExecuteThousandsSeparator(t *testing.T) {
	table := newTable(t,
		[]string{"Store", "Revenue"},
		[]string{"A", "45000"},
		[]string{"B", "123.5"},
	)
	res, err := ExecutePlan(table, models.Plan{Operation: models.OpSum, AggCol: "Revenue"})
	require.NoError(t, err)
	assert.Equal(t, "45,123.50", res.Scalar)
}

func TestExecuteGroupTopFive(t *testing.T) {
	rows := [][]string{{"Brand", "Total Price"}}
	for _, r := range [][]string{
		{"A", "10"}, {"B", "70"}, {"C", "30"}, {"D", "40"},
		{"E", "50"}, {"F", "60"}, {"G", "20"}, {"B", "5"}, {"", "1000"},
	} {
		rows = append(rows, r)
	}
	table := newTable(t, rows...)

	res, err := ExecutePlan(table, models.Plan{
		Operation:  models.OpGroupByAgg,
		GroupByCol: "brand",
		AggCol:     "total price",
		AggFunc:    models.AggSum,
	})
	require.NoError(t, err)
	assert.Equal(t, "Here are the Top 5 Brand by Total Price:\nB: 75.00\nF: 60.00\nE: 50.00\nD: 40.00\nC: 30.00", res.Text())
}

func TestExecuteIdxMaxTieTakesSmallestLabel(t *testing.T) {
	table := newTable(t,
		[]string{"Brand", "Sales"},
		[]string{"Zeta", "10"},
		[]string{"Alpha", "4"},
		[]string{"Alpha", "6"},
		[]string{"Mid", "3"},
	)
	res, err := ExecutePlan(table, models.Plan{
		Operation:  models.OpGroupByAgg,
		GroupByCol: "Brand",
		AggCol:     "Sales",
		AggFunc:    models.AggIdxMax,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alpha", res.Text())
}

func TestExecuteNonNumericColumn(t *testing.T) {
	table := newTable(t, cityTable(t)...)
	_, err := ExecutePlan(table, models.Plan{Operation: models.OpSum, AggCol: "Category"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindExecution, apperrors.KindOf(err))
	assert.Contains(t, apperrors.UserMessage(err), "'Category'")
}

func TestExecuteRejectsClarify(t *testing.T) {
	table := newTable(t, cityTable(t)...)
	_, err := ExecutePlan(table, models.Plan{Operation: models.OpClarify, Message: "Which column?"})
	assert.Equal(t, apperrors.KindExecution, apperrors.KindOf(err))
}

func TestExecuteDoesNotModifyTable(t *testing.T) {
	table := newTable(t, cityTable(t)...)
	before := len(table.Rows)
	_, err := ExecutePlan(table, models.Plan{
		Operation: models.OpCount,
		Filters:   []models.Filter{{Column: "City", Value: "Madurai"}},
	})
	require.NoError(t, err)
	assert.Len(t, table.Rows, before)
	assert.Equal(t, " chennai ", table.Rows[1][0])
}

func TestExecuteSkipsMissingValues(t *testing.T) {
	for _, marker := range []string{"", "NaN", "nan", "N/A", "NA", "null", "None", "#N/A"} {
		t.Run("marker "+marker, func(t *testing.T) {
			table := newTable(t,
				[]string{"City", "Sales"},
				[]string{"Chennai", "100"},
				[]string{"Chennai", marker},
				[]string{"Mumbai", "50"},
			)
			chennai := []models.Filter{{Column: "City", Value: "chennai"}}

			res, err := ExecutePlan(table, models.Plan{Operation: models.OpSum, AggCol: "Sales", Filters: chennai})
			require.NoError(t, err)
			assert.Equal(t, "100.00", res.Text())

			res, err = ExecutePlan(table, models.Plan{Operation: models.OpMean, AggCol: "Sales", Filters: chennai})
			require.NoError(t, err)
			assert.Equal(t, "100.00", res.Text())

			res, err = ExecutePlan(table, models.Plan{Operation: models.OpGroupByAgg, GroupByCol: "City", AggCol: "Sales", AggFunc: models.AggMean})
			require.NoError(t, err)
			assert.Contains(t, res.Text(), "Chennai: 100.00")
			assert.Contains(t, res.Text(), "Mumbai: 50.00")
		})
	}
}

func TestExecuteRejectsNonFiniteSpellings(t *testing.T) {
	for _, cell := range []string{"inf", "-Infinity", "0x1p-2", "1e999"} {
		t.Run(cell, func(t *testing.T) {
			table := newTable(t,
				[]string{"City", "Sales"},
				[]string{"Chennai", "100"},
				[]string{"Chennai", cell},
			)
			_, err := ExecutePlan(table, models.Plan{Operation: models.OpSum, AggCol: "Sales"})
			require.Error(t, err)
			assert.Equal(t, apperrors.KindExecution, apperrors.KindOf(err))
		})
	}
}

func TestExecuteFiltersNeverIncreaseCount(t *testing.T) {
	table := newTable(t, cityTable(t)...)
	tests := []struct {
		name    string
		filters []models.Filter
	}{
		{name: "no filters"},
		{name: "city", filters: []models.Filter{{Column: "City", Value: "chennai"}}},
		{name: "city and category", filters: []models.Filter{
			{Column: "City", Value: "chennai"},
			{Column: "Category", Value: "clothing"},
		}},
		{name: "city category and sales", filters: []models.Filter{
			{Column: "City", Value: "chennai"},
			{Column: "Category", Value: "clothing"},
			{Column: "Sales", Value: "999"},
		}},
	}

	want := []string{"3", "2", "1", "0"}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ExecutePlan(table, models.Plan{Operation: models.OpCount, Filters: tt.filters})
			require.NoError(t, err)
			assert.Equal(t, want[i], res.Text())
		})
	}
}
