package generalizer

import (
	"fmt"
	"strings"

	"nadico/internal/nadico"
)

// Strategy decides the deontic value of a generalized group from its
// instances.
type Strategy string

const (
	// StrategySum keeps the sum of instance valences.
	StrategySum Strategy = "sum"
	// StrategyMean divides the sum by the number of instances.
	StrategyMean Strategy = "mean"
	// StrategyOpportunistic picks the instance valence furthest from the
	// normative center.
	StrategyOpportunistic Strategy = "opportunistic"
)

// ParseStrategy accepts sum, mean or opportunistic in any case. Empty
// selects StrategySum.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategySum:
		return StrategySum, nil
	case StrategyMean:
		return StrategyMean, nil
	case StrategyOpportunistic:
		return StrategyOpportunistic, nil
	}
	return "", fmt.Errorf("unknown aggregation strategy %q: %w", s, nadico.ErrInvalidInput)
}
