package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terralab/landcover-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "LC09_L2SP_044034")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "LC09_L2SP_044034", got.Scene)
	assert.Equal(t, model.RunStatusRunning, got.Status)
	assert.Nil(t, got.Result)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get run")
}

func TestSQLite_UpdateRunStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "scene-a")
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusFailed))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
}

func TestSQLite_UpdateRunStatus_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateRunStatus(context.Background(), "nonexistent", model.RunStatusFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_UpdateRunResult(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "scene-a")
	require.NoError(t, err)

	result := &model.RunResult{
		TrainingRecords:  240,
		TrainingAccuracy: 0.96,
		ClassCounts:      map[string]int64{"forest": 900, "water": 100},
		ClassAreaM2:      map[string]float64{"forest": 810000, "water": 90000},
		ModelPath:        "output/scene-a_model.json",
		DurationSecs:     12.3,
	}
	require.NoError(t, st.UpdateRunResult(ctx, run.ID, result))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, 240, got.Result.TrainingRecords)
	assert.Equal(t, int64(900), got.Result.ClassCounts["forest"])
	assert.InDelta(t, 0.96, got.Result.TrainingAccuracy, 1e-9)
}

func TestSQLite_ListRuns_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a, err := st.CreateRun(ctx, "scene-a")
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "scene-b")
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunStatus(ctx, a.ID, model.RunStatusFailed))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	failed, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, a.ID, failed[0].ID)

	byScene, err := st.ListRuns(ctx, RunFilter{Scene: "scene-b"})
	require.NoError(t, err)
	require.Len(t, byScene, 1)
	assert.Equal(t, "scene-b", byScene[0].Scene)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLite_Phases(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "scene-a")
	require.NoError(t, err)

	ph, err := st.CreatePhase(ctx, run.ID, model.PhaseTrain)
	require.NoError(t, err)
	assert.Equal(t, PhaseStatusRunning, ph.Status)
	assert.Equal(t, run.ID, ph.RunID)

	require.NoError(t, st.CompletePhase(ctx, ph.ID, PhaseStatusComplete, "depth 3, 5 leaves"))

	err = st.CompletePhase(ctx, "nonexistent", PhaseStatusComplete, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestOpen_SQLiteDefault(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, testStoreConfig(t))
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	// Open runs migrations, so the store is immediately usable.
	_, err = st.CreateRun(ctx, "scene-a")
	assert.NoError(t, err)
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := testStoreConfig(t)
	cfg.Driver = "oracle"
	_, err := Open(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown driver")
}
