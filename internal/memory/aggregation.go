package memory

import (
	"fmt"
	"strings"

	"nadico/internal/nadico"
)

// Aggregation selects how the values of matching slots are combined.
type Aggregation int

const (
	AggregationCount Aggregation = iota + 1
	AggregationSum
	AggregationMean
)

func (a Aggregation) String() string {
	switch a {
	case AggregationCount:
		return "count"
	case AggregationSum:
		return "sum"
	case AggregationMean:
		return "mean"
	}
	return fmt.Sprintf("Aggregation(%d)", int(a))
}

func (a Aggregation) valid() bool {
	return a >= AggregationCount && a <= AggregationMean
}

// ParseAggregation parses "count", "sum" or "mean"; empty selects sum.
func ParseAggregation(s string) (Aggregation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sum":
		return AggregationSum, nil
	case "count":
		return AggregationCount, nil
	case "mean":
		return AggregationMean, nil
	}
	return 0, fmt.Errorf("unknown value aggregation %q: %w", s, nadico.ErrInvalidInput)
}

// countSum accumulates matches before the final aggregation.
type countSum struct {
	count int
	sum   float64
}

func (c countSum) value(a Aggregation) float64 {
	switch a {
	case AggregationCount:
		return float64(c.count)
	case AggregationMean:
		return c.sum / float64(c.count)
	}
	return c.sum
}
