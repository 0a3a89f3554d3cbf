package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Operation is the kind of query a plan performs.
type Operation string

const (
	OpSum        Operation = "sum"
	OpMean       Operation = "mean"
	OpCount      Operation = "count"
	OpGroupByAgg Operation = "groupby_agg"
	OpClarify    Operation = "clarify"

	opGroupAggregateAlias Operation = "group_aggregate"
)

// Group reductions accepted by groupby_agg.
const (
	AggSum    = "sum"
	AggMean   = "mean"
	AggIdxMax = "idxmax"
	AggCount  = "count" // charts only
)

// Plan is the structured query produced from a user question.
type Plan struct {
	Operation  Operation `json:"operation"`
	AggCol     string    `json:"agg_col,omitempty"`
	GroupByCol string    `json:"groupby_col,omitempty"`
	AggFunc    string    `json:"agg_func,omitempty"`
	Filters    []Filter  `json:"filters,omitempty"`
	Message    string    `json:"message,omitempty"`
}

// Filter is an equality predicate on one column.
type Filter struct {
	Column string      `json:"column"`
	Value  FilterValue `json:"value"`
}

// FilterValue accepts a JSON string, number or boolean and keeps its text.
type FilterValue string

func (v *FilterValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return errors.New("filter value is missing")
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FilterValue(s)
	case 't', 'f':
		b, err := strconv.ParseBool(string(data))
		if err != nil {
			return fmt.Errorf("invalid filter value %s", data)
		}
		*v = FilterValue(strconv.FormatBool(b))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("filter value must be a string, number or boolean, got %s", data)
		}
		*v = FilterValue(n.String())
	}
	return nil
}

// Validate normalizes the operation alias and checks that exactly the fields
// the operation needs are present.
func (p *Plan) Validate() error {
	if p.Operation == opGroupAggregateAlias {
		p.Operation = OpGroupByAgg
	}

	for i, f := range p.Filters {
		if f.Column == "" {
			return fmt.Errorf("filter %d has no column", i)
		}
	}

	switch p.Operation {
	case OpSum, OpMean:
		if p.AggCol == "" {
			return fmt.Errorf("%s requires agg_col", p.Operation)
		}
		if p.GroupByCol != "" || p.AggFunc != "" || p.Message != "" {
			return fmt.Errorf("%s does not take groupby_col, agg_func or message", p.Operation)
		}
	case OpCount:
		if p.GroupByCol != "" || p.AggFunc != "" || p.Message != "" {
			return fmt.Errorf("count does not take groupby_col, agg_func or message")
		}
	case OpGroupByAgg:
		if p.GroupByCol == "" || p.AggCol == "" {
			return fmt.Errorf("groupby_agg requires groupby_col and agg_col")
		}
		switch p.AggFunc {
		case AggSum, AggMean, AggIdxMax:
		default:
			return fmt.Errorf("unsupported agg_func %q", p.AggFunc)
		}
		if p.Message != "" {
			return fmt.Errorf("groupby_agg does not take message")
		}
	case OpClarify:
		if p.Message == "" {
			return fmt.Errorf("clarify requires message")
		}
		if p.AggCol != "" || p.GroupByCol != "" || p.AggFunc != "" || len(p.Filters) > 0 {
			return fmt.Errorf("clarify takes only message")
		}
	case "":
		return fmt.Errorf("operation is missing")
	default:
		return fmt.Errorf("unsupported operation %q", p.Operation)
	}
	return nil
}

// JSON returns the compact wire form of the plan.
func (p Plan) JSON() string {
	b, err := json.Marshal(p)
	if err != nil {
		return ""
	}
	return string(b)
}
