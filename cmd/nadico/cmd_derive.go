package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"nadico/internal/generalizer"
	"nadico/internal/nadico"
	"nadico/internal/report"
	"nadico/internal/scenario"
)

var (
	deriveSave   bool
	deriveStored bool
	derivePlain  bool
)

// deriveCmd derives norms for every agent of the given files
var deriveCmd = &cobra.Command{
	Use:   "derive FILE...",
	Short: "Derive nADICO statements for every agent",
	Long: `Generalizes the observations of every agent in the given files and
derives "monitored, or else consequential" statements. Agents are processed
concurrently, each with its own generalizer.

With --stored the arguments are agent names whose observations were
previously imported into the database.

Example:
  nadico derive market.yaml --save
  nadico derive --stored alpha beta`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDerive,
}

func init() {
	deriveCmd.Flags().BoolVar(&deriveSave, "save", false, "Store derived runs in the database")
	deriveCmd.Flags().BoolVar(&deriveStored, "stored", false, "Read observations of the named agents from the database")
	deriveCmd.Flags().BoolVar(&derivePlain, "plain", false, "Disable colors")
}

func runDerive(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	var jobs []agentJob
	var err error
	if deriveStored {
		jobs, err = storedJobs(ctx, args)
	} else {
		jobs, err = loadJobs(args)
	}
	if err != nil {
		return err
	}

	results, err := deriveAll(ctx, cfg, jobs)
	if err != nil {
		return err
	}
	if err := printResults(cmd.OutOrStdout(), results, derivePlain); err != nil {
		return err
	}
	if deriveSave {
		return saveResults(ctx, cmd.OutOrStdout(), results)
	}
	return nil
}

func storedJobs(ctx context.Context, owners []string) ([]agentJob, error) {
	st, err := openStore()
	if err != nil {
		return nil, err
	}
	defer st.Close()

	jobs := make([]agentJob, 0, len(owners))
	for _, owner := range owners {
		stored, err := st.Observations(ctx, owner)
		if err != nil {
			return nil, err
		}
		obs := make([]scenario.Observation, 0, len(stored))
		for _, s := range stored {
			obs = append(obs, *s.Observation)
		}
		agent := &scenario.Agent{Name: owner, Observations: obs}
		jobs = append(jobs, agentJob{
			owner:   owner,
			subject: agent.SubjectAttributes(),
			build: func(f *nadico.Factory) ([]generalizer.Observation, error) {
				return agent.Expressions(f)
			},
		})
	}
	return jobs, nil
}

func printResults(w io.Writer, results []*agentResult, plain bool) error {
	var opts []report.Option
	if plain {
		opts = append(opts, report.WithPlain())
	}
	r, err := report.New(opts...)
	if err != nil {
		return err
	}
	for _, res := range results {
		if len(res.runs) == 0 {
			fmt.Fprintf(w, "%s: no observations\n\n", res.owner)
			continue
		}
		for _, run := range res.runs {
			fmt.Fprintln(w, r.Table(run))
			fmt.Fprintln(w)
		}
	}
	return nil
}

func saveResults(ctx context.Context, w io.Writer, results []*agentResult) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	for _, res := range results {
		for _, run := range res.runs {
			id, err := st.SaveRun(ctx, run)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "saved run %s (%s, level %d)\n", id, run.Owner, run.Level)
		}
	}
	return nil
}
