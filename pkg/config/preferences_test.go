package config_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soren-n/dusk/pkg/config"
	"github.com/soren-n/dusk/pkg/query"
)

func TestPreferencesRoundTrip(t *testing.T) {
	originalUserConfigDirectory := config.UserConfigDirectory
	defer func() { config.UserConfigDirectory = originalUserConfigDirectory }()

	dir := t.TempDir()
	config.UserConfigDirectory = func() (string, error) {
		return dir, nil
	}

	t.Run("LoadPreferences returns zero value when no file exists", func(t *testing.T) {
		prefs, err := config.LoadPreferences()
		require.NoError(t, err)
		assert.Equal(t, config.Preferences{}, prefs)
	})

	t.Run("SavePreferences then LoadPreferences round-trips", func(t *testing.T) {
		want := config.Preferences{
			DefaultRoot:         "/home/user/projects",
			DefaultSizeOperator: "gt",
			DefaultSizeBytes:    1024,
		}
		require.NoError(t, config.SavePreferences(want))

		_, file, err := config.CliPath()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, config.DuskCLIConfigDirectory, config.DuskCLIConfigFile), file)

		got, err := config.LoadPreferences()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestPreferencesSizeFilter(t *testing.T) {
	t.Run("returns ok=false when no default operator is set", func(t *testing.T) {
		_, ok := config.Preferences{}.SizeFilter()
		assert.False(t, ok)
	})

	t.Run("maps each operator string to the matching query.SizeOperator", func(t *testing.T) {
		cases := map[string]query.SizeOperator{
			"gt":  query.GreaterThan,
			"gte": query.GreaterThanOrEqual,
			"lt":  query.LessThan,
			"lte": query.LessThanOrEqual,
		}
		for op, want := range cases {
			prefs := config.Preferences{DefaultSizeOperator: op, DefaultSizeBytes: 4096}
			filter, ok := prefs.SizeFilter()
			require.True(t, ok, op)
			assert.Equal(t, want, filter.Operator, op)
			assert.Equal(t, uint64(4096), filter.Bytes, op)
		}
	})

	t.Run("unknown operator string is rejected", func(t *testing.T) {
		_, ok := config.Preferences{DefaultSizeOperator: "between"}.SizeFilter()
		assert.False(t, ok)
	})
}
