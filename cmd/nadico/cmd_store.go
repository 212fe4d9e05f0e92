package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"nadico/internal/report"
	"nadico/internal/scenario"
)

var (
	runsOwner string
	showPlain bool
)

// importCmd stores observations for later derivation
var importCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Import observations into the database",
	Long: `Appends the observations of every agent to the database so that they
can be derived later with "nadico derive --stored AGENT".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

// runsCmd lists stored runs
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored derivation runs",
	Args:  cobra.NoArgs,
	RunE:  runListRuns,
}

// showCmd prints one stored run
var showCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Show a stored derivation run",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	runsCmd.Flags().StringVar(&runsOwner, "owner", "", "Only list runs of this agent")
	showCmd.Flags().BoolVar(&showPlain, "plain", false, "Disable colors")
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	for _, p := range args {
		f, err := scenario.Load(p)
		if err != nil {
			return err
		}
		for _, a := range f.Agents {
			n, err := st.ImportObservations(ctx, a.Name, a.Observations)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: imported %d observations for %s\n", p, n, a.Name)
		}
	}
	return nil
}

func runListRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(commandContext(cmd), runsOwner)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs stored.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintln(cmd.OutOrStdout(), report.Summary(r))
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.LoadRun(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	var opts []report.Option
	if showPlain {
		opts = append(opts, report.WithPlain())
	}
	r, err := report.New(opts...)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), r.Table(run))
	return nil
}
