package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"nadico/internal/generalizer"
	"nadico/internal/nadico"
	"nadico/internal/scenario"
)

var (
	generalizeLevel int
	generalizeAgent string
)

// generalizeCmd prints the generalized, aggregated expressions of one agent
var generalizeCmd = &cobra.Command{
	Use:   "generalize FILE",
	Short: "Show generalized expressions with aggregated deontic values",
	Long: `Generalizes the observations of one agent and prints every generalized
expression with its aggregated deontic value and instance count. Level 0
erases individual markers; higher levels group by subsets of social markers
of the given size.

Example:
  nadico generalize market.yaml --agent alpha --level 1`,
	Args: cobra.ExactArgs(1),
	RunE: runGeneralize,
}

func init() {
	generalizeCmd.Flags().IntVarP(&generalizeLevel, "level", "l", 0, "Generalization level")
	generalizeCmd.Flags().StringVarP(&generalizeAgent, "agent", "a", "", "Agent name (defaults to the first agent)")
}

func pickAgent(f *scenario.File, name string) (*scenario.Agent, error) {
	if name == "" {
		if len(f.Agents) == 0 {
			return nil, fmt.Errorf("%w: file lists no agents", nadico.ErrInvalidInput)
		}
		return &f.Agents[0], nil
	}
	a, ok := f.Agent(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown agent %q", nadico.ErrInvalidInput, name)
	}
	return a, nil
}

func runGeneralize(cmd *cobra.Command, args []string) error {
	f, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	agent, err := pickAgent(f, generalizeAgent)
	if err != nil {
		return err
	}
	g, err := newGeneralizer(cfg, agent.Name, f.Context)
	if err != nil {
		return err
	}
	obs, err := agent.Expressions(g.Factory())
	if err != nil {
		return err
	}

	var m *nadico.ExpressionMap
	if generalizeLevel == 0 {
		m, err = g.GeneralizeValencedExpressions(obs)
	} else {
		m, err = g.GeneralizeValencedExpressionsOnHigherLevel(obs, generalizeLevel)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s level %d (%s): %d groups, range %s\n", agent.Name, generalizeLevel, g.Strategy(), m.Len(), g.Range())
	for _, line := range generalizer.StringifiedNAdicoStatementAndDeonticValue(m.Keys(), false, true, nil) {
		fmt.Fprintf(out, "  %s = %g\n", line.Label, line.Value)
	}
	return nil
}
