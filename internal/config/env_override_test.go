package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nadico/internal/deontic"
)

func TestEnvOverrides_Range(t *testing.T) {
	t.Run("NADICO_RANGE_TYPE is upper-cased", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NADICO_RANGE_TYPE", "expanding_min_max")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, string(deontic.ExpandingMinMax), cfg.Range.Type)
		require.NoError(t, cfg.Validate())
	})

	t.Run("NADICO_MAPPER is lower-cased", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NADICO_MAPPER", "SYMMETRIC")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, string(deontic.SymmetricMapperKind), cfg.Range.Mapper)
	})

	t.Run("invalid NADICO_HISTORY_LENGTH is ignored", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NADICO_HISTORY_LENGTH", "many")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 100, cfg.Range.HistoryLength)
	})

	t.Run("NADICO_HISTORY_LENGTH", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("NADICO_HISTORY_LENGTH", "12")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, 12, cfg.Range.HistoryLength)
	})
}

func TestEnvOverrides_Generalizer(t *testing.T) {
	clearEnv(t)
	t.Setenv("NADICO_AGGREGATION", "MEAN")

	cfg := DefaultConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "mean", cfg.Generalizer.Aggregation)
}

func TestEnvOverrides_StoreAndLogging(t *testing.T) {
	clearEnv(t)
	t.Setenv("NADICO_DB", "/tmp/norms.db")
	t.Setenv("NADICO_LOG_LEVEL", "debug")

	cfg := &Config{}
	cfg.applyEnvOverrides()

	assert.Equal(t, "/tmp/norms.db", cfg.Store.DatabasePath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.DebugMode, "log level override turns on debug mode")
}

func TestEnvOverrides_AppliedOnLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv("NADICO_DB", "env.db")

	cfg, err := Load(t.TempDir() + "/missing.yaml")
	require.NoError(t, err)
	assert.Equal(t, "env.db", cfg.Store.DatabasePath)
}
