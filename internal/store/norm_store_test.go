package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nadico/internal/deontic"
	"nadico/internal/generalizer"
	"nadico/internal/nadico"
	"nadico/internal/scenario"
)

const observationsYAML = `
agents:
  - name: alpha
    observations:
      - valence: 1
        chain:
          - attributes: {individual: {NAME: beta}, social: {ROLE: buyer}}
            activity: ask
          - attributes: {individual: {NAME: alpha}, social: {ROLE: trader}}
            activity: sell
      - valence: -0.5
        chain:
          - attributes: {social: {ROLE: trader}}
            activity: steal
`

func newTestStore(t *testing.T) *NormStore {
	t.Helper()
	s, err := NewNormStore(filepath.Join(t.TempDir(), "db", "norms.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func derivedRun(t *testing.T) *Run {
	t.Helper()
	f, err := scenario.Decode(strings.NewReader(observationsYAML))
	require.NoError(t, err)
	alpha, _ := f.Agent("alpha")

	g, err := generalizer.New("alpha", "store", deontic.DefaultRangeConfig())
	require.NoError(t, err)
	obs, err := alpha.Expressions(g.Factory())
	require.NoError(t, err)
	_, err = g.GeneralizeValencedExpressions(obs)
	require.NoError(t, err)
	stmts, err := g.DeriveADICStatements(alpha.SubjectAttributes())
	require.NoError(t, err)
	require.NotEmpty(t, stmts)

	return NewRun("alpha", "store", g.Strategy(), 0, g.Range(), stmts)
}

func TestSchemaVersion(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, CurrentSchemaVersion, GetSchemaVersion(s.db))
	assert.True(t, columnExists(s.db, "norms", "level"))
	assert.True(t, columnExists(s.db, "runs", "strategy"))
	assert.False(t, columnExists(s.db, "runs", "missing"))

	// Re-running is a no-op.
	require.NoError(t, RunMigrations(s.db))
	assert.Equal(t, CurrentSchemaVersion, GetSchemaVersion(s.db))
}

func TestSaveAndLoadRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run := derivedRun(t)
	id, err := s.SaveRun(ctx, run)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.LoadRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Owner)
	assert.Equal(t, "store", got.Context)
	assert.Equal(t, string(generalizer.StrategySum), got.Strategy)
	require.Len(t, got.Norms, len(run.Norms))
	for i := range run.Norms {
		assert.Equal(t, run.Norms[i].Statement, got.Norms[i].Statement)
		assert.Equal(t, run.Norms[i].Term, got.Norms[i].Term)
		assert.Equal(t, run.Norms[i].Count, got.Norms[i].Count)
		assert.Equal(t, run.Norms[i].Inverted, got.Norms[i].Inverted)
		assert.Equal(t, run.Norms[i].OrElse, got.Norms[i].OrElse)
		assert.InDelta(t, run.Norms[i].Deontic, got.Norms[i].Deontic, 1e-9)
	}
	assert.WithinDuration(t, run.CreatedAt, got.CreatedAt, time.Second)
}

func TestLoadRunNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LoadRun(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestSaveRunRejectsDuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	run := &Run{ID: "fixed", Owner: "alpha"}
	_, err := s.SaveRun(ctx, run)
	require.NoError(t, err)
	_, err = s.SaveRun(ctx, &Run{ID: "fixed", Owner: "alpha"})
	assert.Error(t, err)
}

func TestListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, owner := range []string{"alpha", "beta", "alpha"} {
		_, err := s.SaveRun(ctx, &Run{Owner: owner, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	alpha, err := s.ListRuns(ctx, "alpha")
	require.NoError(t, err)
	require.Len(t, alpha, 2)
	assert.True(t, alpha[0].CreatedAt.After(alpha[1].CreatedAt), "newest first")

	all, err := s.ListRuns(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestNewRunCarriesOrElse(t *testing.T) {
	rng, err := deontic.NewRange("o", "c", deontic.DefaultRangeConfig())
	require.NoError(t, err)
	f := nadico.NewFactory(rng)
	d, c := 1.0, -1.0
	cons, err := f.CreateStatement(nadico.NewAttributes("", "").AddSocialMarker("ROLE", "r"), &c, nadico.NewAim("x"), nadico.NewConditions(), nil)
	require.NoError(t, err)
	cons.DeonticInverted = true
	mon, err := f.CreateStatement(nadico.NewAttributes("", "").AddSocialMarker("ROLE", "s"), &d, nadico.NewAim("y"), nadico.NewConditions(), cons)
	require.NoError(t, err)

	run := NewRun("o", "c", generalizer.StrategyMean, 2, rng, []*nadico.Expression{mon, nil})
	require.Len(t, run.Norms, 1)
	n := run.Norms[0]
	assert.True(t, n.Inverted)
	require.NotNil(t, n.OrElseDeontic)
	assert.Equal(t, -1.0, *n.OrElseDeontic)
	assert.NotEmpty(t, n.OrElse)
	assert.Equal(t, 2, run.Level)

	s := newTestStore(t)
	id, err := s.SaveRun(context.Background(), run)
	require.NoError(t, err)
	got, err := s.LoadRun(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Level)
	require.NotNil(t, got.Norms[0].OrElseDeontic)
	assert.Equal(t, -1.0, *got.Norms[0].OrElseDeontic)
}

func TestImportObservations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	f, err := scenario.Decode(strings.NewReader(observationsYAML))
	require.NoError(t, err)
	alpha, _ := f.Agent("alpha")

	n, err := s.ImportObservations(ctx, "alpha", alpha.Observations)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = s.ImportObservations(ctx, "alpha", alpha.Observations[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := s.Observations(ctx, "alpha")
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{stored[0].Position, stored[1].Position, stored[2].Position})
	assert.Equal(t, -0.5, stored[1].Observation.Valence)
	assert.Equal(t, "sell", stored[2].Observation.Chain[1].Activity)

	none, err := s.Observations(ctx, "beta")
	require.NoError(t, err)
	assert.Empty(t, none)
}
