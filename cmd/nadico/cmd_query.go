package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"nadico/internal/memory"
	"nadico/internal/nadico"
	"nadico/internal/scenario"
)

var (
	queryAgent       string
	queryActivity    string
	queryAfter       string
	queryAggregation string
	queryGeneralize  bool
	queryStrict      bool
)

// queryCmd answers action memory queries over an agent's observations
var queryCmd = &cobra.Command{
	Use:   "query FILE",
	Short: "Query the action memory of one agent",
	Long: `Memorizes the observations of one agent. With --activity the chains ending
in that activity are listed; with --after the chains in which the activity
precedes another action, cut after that action. Otherwise the ranked
generalized memory is printed.

Example:
  nadico query market.yaml --agent alpha --activity sell
  nadico query market.yaml --agent alpha --after ask
  nadico query market.yaml --agent alpha`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryAgent, "agent", "a", "", "Agent name (defaults to the first agent)")
	queryCmd.Flags().StringVar(&queryActivity, "activity", "", "Activity of the last action")
	queryCmd.Flags().StringVar(&queryAfter, "after", "", "Activity of a preceding action")
	queryCmd.Flags().StringVar(&queryAggregation, "aggregation", "", "Value aggregation: count, sum, mean (defaults to memory.aggregation)")
	queryCmd.Flags().BoolVar(&queryGeneralize, "generalize", false, "Compare generalized expressions")
	queryCmd.Flags().BoolVar(&queryStrict, "strict", false, "Require exact condition matches")
}

func runQuery(cmd *cobra.Command, args []string) error {
	f, err := scenario.Load(args[0])
	if err != nil {
		return err
	}
	agent, err := pickAgent(f, queryAgent)
	if err != nil {
		return err
	}
	aggName := queryAggregation
	if aggName == "" {
		aggName = cfg.Memory.Aggregation
	}
	agg, err := memory.ParseAggregation(aggName)
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
	mem, err := memory.New(cfg.Memory.Capacity, agent.Name, g)
	if err != nil {
		return err
	}
	for _, o := range obs {
		if err := mem.Memorize(o.Expression, o.Valence); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if queryActivity == "" && queryAfter == "" {
		ranked, err := mem.RankedExpressions(agg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d of %d slots used, ranked by %s\n", agent.Name, mem.Len(), mem.Capacity(), agg)
		printEntries(out, ranked)
		return nil
	}

	q := memory.Query{
		Generalize:  queryGeneralize,
		Strict:      queryStrict,
		Aggregation: agg,
	}
	search := mem.ExpressionsAsLastExpression
	activity := queryActivity
	if activity == "" {
		search = mem.ExpressionsAsPreviousExpression
		activity = queryAfter
	}
	stmt, err := g.Factory().CreateActionWithEmptyInstances(nadico.NewAttributes("", ""), nadico.NewAim(activity))
	if err != nil {
		return err
	}
	results, err := search(stmt, q)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %d matches for %s\n", agent.Name, len(results), stmt.AICString())
	printEntries(out, results)
	return nil
}

func printEntries(w io.Writer, entries memory.Results) {
	for _, e := range entries {
		fmt.Fprintf(w, "  %8.3f  %s\n", e.Value, e.Key.AICString())
	}
}
