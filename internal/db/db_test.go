package db

import (
	"context"
	"io/fs"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/shockcooling/internal/model"
	"github.com/banshee-data/shockcooling/internal/monitoring"
	"github.com/banshee-data/shockcooling/internal/sweep"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	monitoring.SetLogger(t.Logf)
	t.Cleanup(func() { monitoring.SetLogger(nil) })

	db, err := NewDB(filepath.Join(t.TempDir(), "sweeps.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func runTestSweep(t *testing.T, times []float64, candidates []model.Params) (*model.SapirWaxmanRSG, []sweep.Result) {
	t.Helper()
	m, err := model.NewSapirWaxmanRSG(1.0)
	require.NoError(t, err)
	results, err := sweep.NewRunner(m, times, 2).Run(context.Background(), candidates)
	require.NoError(t, err)
	return m, results
}

func TestEmbeddedMigrationsFS(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "000001_create_sweep_tables.down.sql", entries[0].Name())
	assert.Equal(t, "000001_create_sweep_tables.up.sql", entries[1].Name())
}

func TestNewDBAppliesMigrations(t *testing.T) {
	db := setupTestDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// A second MigrateUp is a no-op.
	require.NoError(t, db.MigrateUp())

	for _, table := range []string{"sweep_runs", "sweep_candidates", "sweep_curve_points"} {
		var n int
		err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 1, n, table)
	}
}

func TestMigrateDown(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.MigrateDown())
	version, _, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE name='sweep_runs'`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestInMemoryDB(t *testing.T) {
	db, err := NewDB(":memory:")
	require.NoError(t, err)
	defer db.Close()

	runs, err := db.Runs()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRecordRunRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	times := []float64{0, 1, 2}
	candidates := []model.Params{
		{Re: 2, Me: 0.5, Ve: 2},
		{Re: 2, Me: 0, Ve: 2, Off: 0.01},
	}
	m, results := runTestSweep(t, times, candidates)

	runID, err := db.RecordRun(m, times, results)
	require.NoError(t, err)
	assert.Len(t, runID, 36)

	runs, err := db.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, "sw_rsg", runs[0].Model)
	assert.Equal(t, "Sapir & Waxman (2017) [n = 1.5]", runs[0].DisplayName)
	assert.Equal(t, 1.0, runs[0].Mcore)
	assert.Equal(t, 0.34, runs[0].Kappa)
	assert.Equal(t, times, runs[0].Times)
	assert.False(t, runs[0].CreatedAt.IsZero())

	cands, err := db.Candidates(runID)
	require.NoError(t, err)
	require.Len(t, cands, 2)

	assert.Equal(t, "ok", cands[0].Status)
	assert.False(t, cands[0].Rejected)
	assert.Equal(t, candidates[0], cands[0].Params)
	// t = 0 makes the curve statistics NaN, stored as NULL
	assert.True(t, math.IsNaN(cands[0].Summary.MeanRadius))

	assert.Equal(t, "rejected", cands[1].Status)
	assert.True(t, cands[1].Rejected)
	assert.Contains(t, cands[1].Reason, "me")
	assert.True(t, math.IsNaN(cands[1].Summary.PeakTemperature))

	curve, err := db.Curve(runID, 0)
	require.NoError(t, err)
	require.Equal(t, 3, curve.Len())
	assert.Equal(t, times, curve.Time)
	assert.True(t, math.IsNaN(curve.Temperature[0]))
	assert.InEpsilon(t, results[0].Curve.Radius[1], curve.Radius[1], 1e-12)
	assert.InEpsilon(t, results[0].Curve.Temperature[2], curve.Temperature[2], 1e-12)

	empty, err := db.Curve(runID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}

func TestRecordRunHeaderFromModel(t *testing.T) {
	db := setupTestDB(t)
	m, err := model.NewSapirWaxmanRSG(2.5, model.WithKappa(0.68))
	require.NoError(t, err)
	times := []float64{1, 2}
	results, err := sweep.NewRunner(m, times, 1).Run(context.Background(), []model.Params{{Re: 2, Me: 0.5, Ve: 2}})
	require.NoError(t, err)

	_, err = db.RecordRun(m, times, results)
	require.NoError(t, err)

	runs, err := db.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2.5, runs[0].Mcore)
	assert.Equal(t, 0.68, runs[0].Kappa)
}

func TestRecordRunSummaryValues(t *testing.T) {
	db := setupTestDB(t)
	times := []float64{1, 2, 4}
	m, results := runTestSweep(t, times, []model.Params{{Re: 3, Me: 1, Ve: 1.5}})

	runID, err := db.RecordRun(m, times, results)
	require.NoError(t, err)

	cands, err := db.Candidates(runID)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	want := results[0].Summary
	got := cands[0].Summary
	assert.InEpsilon(t, want.PeakTemperature, got.PeakTemperature, 1e-12)
	assert.InEpsilon(t, want.MinTemperature, got.MinTemperature, 1e-12)
	assert.InEpsilon(t, want.MeanRadius, got.MeanRadius, 1e-12)
	assert.InEpsilon(t, want.RadiusStdDev, got.RadiusStdDev, 1e-12)
}

func TestDeleteRunCascades(t *testing.T) {
	db := setupTestDB(t)
	times := []float64{1, 2}
	m, results := runTestSweep(t, times, []model.Params{{Re: 2, Me: 0.5, Ve: 2}})

	runID, err := db.RecordRun(m, times, results)
	require.NoError(t, err)
	require.NoError(t, db.DeleteRun(runID))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sweep_curve_points`).Scan(&n))
	assert.Equal(t, 0, n)
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sweep_candidates`).Scan(&n))
	assert.Equal(t, 0, n)

	assert.Error(t, db.DeleteRun(runID))
}
