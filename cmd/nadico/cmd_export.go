package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"nadico/internal/facts"
	"nadico/internal/report"
)

var (
	exportFormat string
	exportRender bool
)

// exportCmd derives norms and writes them as Mangle facts or markdown
var exportCmd = &cobra.Command{
	Use:   "export FILE...",
	Short: "Export derived norms as Mangle facts or markdown",
	Long: `Derives norms for every agent and writes them to stdout.

Formats:
  mangle    norm/6 and or_else/4 facts of level 0, with declarations
  markdown  one table per agent and level

Example:
  nadico export market.yaml --format mangle > norms.mg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "mangle", "Output format: mangle or markdown")
	exportCmd.Flags().BoolVar(&exportRender, "render", false, "Render markdown for the terminal")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	jobs, err := loadJobs(args)
	if err != nil {
		return err
	}
	results, err := deriveAll(ctx, cfg, jobs)
	if err != nil {
		return err
	}
	return writeExport(cmd.OutOrStdout(), results, exportFormat, exportRender)
}

func writeExport(w io.Writer, results []*agentResult, format string, render bool) error {
	switch strings.ToLower(format) {
	case "mangle", "mg":
		var all []facts.Fact
		for _, res := range results {
			all = append(all, facts.FromStatements(res.owner, res.gen.Range(), res.statements[0])...)
		}
		return facts.Render(w, all)
	case "markdown", "md":
		var r *report.Renderer
		if render {
			var err error
			if r, err = report.New(); err != nil {
				return err
			}
		}
		for _, res := range results {
			for _, run := range res.runs {
				if r == nil {
					fmt.Fprintln(w, report.Markdown(run))
					continue
				}
				out, err := r.Markdown(run)
				if err != nil {
					return err
				}
				fmt.Fprint(w, out)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown export format %q (valid: mangle, markdown)", format)
}
