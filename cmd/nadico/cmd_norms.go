package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/mangle/factstore"
	"github.com/spf13/cobra"

	"nadico/internal/deontic"
	"nadico/internal/facts"
	"nadico/internal/nadico"
)

var (
	normsOwner string
	normsTerm  string
)

// normsCmd loads derived norms into a Mangle fact store and queries it
var normsCmd = &cobra.Command{
	Use:   "norms FILE...",
	Short: "Query derived norms through a Mangle fact store",
	Long: `Derives level 0 norms for every agent, loads them as norm/6 and or_else/4
facts into an in-memory Mangle store and lists the norms held for each owner,
each followed by its consequence.

Example:
  nadico norms market.yaml --owner alpha
  nadico norms market.yaml --term "should not"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNorms,
}

func init() {
	normsCmd.Flags().StringVar(&normsOwner, "owner", "", "Only query norms of this agent")
	normsCmd.Flags().StringVar(&normsTerm, "term", "", "Only list norms classified as this deontic term")
}

func parseTerm(s string) (deontic.Term, error) {
	if s == "" {
		return "", nil
	}
	t := deontic.Term(strings.ToUpper(strings.ReplaceAll(strings.TrimPrefix(s, "/"), "_", " ")))
	if !t.Valid() {
		return "", fmt.Errorf("unknown deontic term %q: %w", s, nadico.ErrInvalidInput)
	}
	return t, nil
}

func runNorms(cmd *cobra.Command, args []string) error {
	term, err := parseTerm(normsTerm)
	if err != nil {
		return err
	}
	jobs, err := loadJobs(args)
	if err != nil {
		return err
	}
	results, err := deriveAll(commandContext(cmd), cfg, jobs)
	if err != nil {
		return err
	}

	var owners []string
	var all []facts.Fact
	for _, res := range results {
		if normsOwner != "" && res.owner != normsOwner {
			continue
		}
		owners = append(owners, res.owner)
		all = append(all, facts.FromStatements(res.owner, res.gen.Range(), res.statements[0])...)
	}
	if normsOwner != "" && len(owners) == 0 {
		return fmt.Errorf("no agent named %q", normsOwner)
	}
	store, err := facts.NewStore(all)
	if err != nil {
		return err
	}
	return writeNorms(cmd.OutOrStdout(), store, owners, term)
}

func writeNorms(w io.Writer, store factstore.ReadOnlyFactStore, owners []string, term deontic.Term) error {
	for _, owner := range owners {
		norms, err := facts.NormsFor(store, owner)
		if err != nil {
			return fmt.Errorf("querying norms of %s: %w", owner, err)
		}
		orElse, err := facts.OrElseFor(store, owner)
		if err != nil {
			return fmt.Errorf("querying consequences of %s: %w", owner, err)
		}

		var lines []string
		listed := 0
		for _, a := range norms {
			if term != "" && !facts.HasTerm(a, term) {
				continue
			}
			listed++
			lines = append(lines, "  "+a.String())
			if pos, ok := facts.Position(a); ok {
				if c, ok := orElse[pos]; ok {
					lines = append(lines, "    or else "+c.String())
				}
			}
		}
		fmt.Fprintf(w, "%s: %d norms\n", owner, listed)
		for _, l := range lines {
			fmt.Fprintln(w, l)
		}
	}
	return nil
}
