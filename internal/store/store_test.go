package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/nameplate-cli/internal/config"
)

func TestNew_SQLite(t *testing.T) {
	ctx := context.Background()
	st, err := New(ctx, config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "runs.db"),
	})
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	assert.IsType(t, &SQLiteStore{}, st)

	run, err := st.CreateRun(ctx, "a.txt")
	require.NoError(t, err)
	_, err = st.GetRun(ctx, run.ID)
	require.NoError(t, err)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(context.Background(), config.StoreConfig{Driver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported driver "mysql"`)
}

func TestNew_PostgresBadURL(t *testing.T) {
	_, err := New(context.Background(), config.StoreConfig{Driver: "postgres", DatabaseURL: "://bad"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: parse config")
}

func TestRunFilter_Limit(t *testing.T) {
	assert.Equal(t, defaultListLimit, RunFilter{}.limit())
	assert.Equal(t, 5, RunFilter{Limit: 5}.limit())
}
