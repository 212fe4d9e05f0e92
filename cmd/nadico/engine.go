package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"nadico/internal/config"
	"nadico/internal/generalizer"
	"nadico/internal/logging"
	"nadico/internal/nadico"
	"nadico/internal/scenario"
	"nadico/internal/store"
)

// agentJob is one agent's observations ready for derivation.
type agentJob struct {
	owner   string
	context string
	subject *nadico.Attributes
	build   func(f *nadico.Factory) ([]generalizer.Observation, error)
}

// agentResult holds the runs derived for one agent, level 0 first.
type agentResult struct {
	owner      string
	gen        *generalizer.Generalizer
	runs       []*store.Run
	statements map[int][]*nadico.Expression
}

func (r *agentResult) add(level int, stmts []*nadico.Expression, job agentJob) {
	r.statements[level] = stmts
	r.runs = append(r.runs, store.NewRun(job.owner, job.context, r.gen.Strategy(), level, r.gen.Range(), stmts))
}

func jobsFromFile(f *scenario.File) []agentJob {
	jobs := make([]agentJob, 0, len(f.Agents))
	for i := range f.Agents {
		a := &f.Agents[i]
		jobs = append(jobs, agentJob{
			owner:   a.Name,
			context: f.Context,
			subject: a.SubjectAttributes(),
			build:   a.Expressions,
		})
	}
	return jobs
}

func newGeneralizer(c *config.Config, owner, ctxName string) (*generalizer.Generalizer, error) {
	opts, err := c.GeneralizerOptions()
	if err != nil {
		return nil, err
	}
	return generalizer.New(owner, ctxName, c.RangeConfig(), opts...)
}

// deriveAgent generalizes the job's observations and derives statements
// for level 0 and every configured higher level. Higher levels stop at the
// first one exceeding the available social markers.
func deriveAgent(c *config.Config, job agentJob) (*agentResult, error) {
	g, err := newGeneralizer(c, job.owner, job.context)
	if err != nil {
		return nil, err
	}
	obs, err := job.build(g.Factory())
	if err != nil {
		return nil, err
	}
	res := &agentResult{owner: job.owner, gen: g, statements: make(map[int][]*nadico.Expression)}
	if len(obs) == 0 {
		logging.CLI("%s: no observations", job.owner)
		return res, nil
	}

	m, err := g.GeneralizeValencedExpressions(obs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", job.owner, err)
	}
	stmts, err := g.DeriveADICStatementsFrom(m, c.Generalizer.RequireDifferingAttributes, job.subject)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", job.owner, err)
	}
	res.add(0, stmts, job)

	for level := 1; level <= c.Generalizer.MaxLevel; level++ {
		if _, err := g.GeneralizeValencedExpressionsOnHigherLevel(obs, level); err != nil {
			if errors.Is(err, generalizer.ErrGeneralizationDepth) {
				break
			}
			return nil, fmt.Errorf("%s level %d: %w", job.owner, level, err)
		}
		stmts, err := g.DeriveADICStatementsAtLevel(level, job.subject)
		if err != nil {
			return nil, fmt.Errorf("%s level %d: %w", job.owner, level, err)
		}
		res.add(level, stmts, job)
	}
	return res, nil
}

// deriveAll runs deriveAgent for every job concurrently, one generalizer
// per agent. Results keep the order of jobs.
func deriveAll(ctx context.Context, c *config.Config, jobs []agentJob) ([]*agentResult, error) {
	results := make([]*agentResult, len(jobs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, job := range jobs {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			res, err := deriveAgent(c, job)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func loadJobs(paths []string) ([]agentJob, error) {
	var jobs []agentJob
	for _, p := range paths {
		f, err := scenario.Load(p)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, jobsFromFile(f)...)
	}
	return jobs, nil
}

func openStore() (*store.NormStore, error) {
	return store.NewNormStore(cfg.Store.DatabasePath)
}
