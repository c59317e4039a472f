package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immoprice/server/internal/models"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndRecentPredictions(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	batch := []*models.Prediction{
		{ID: "p1", Category: "House", Subtype: "Villa", PostalCode: 1000, Price: 500000, CreatedAt: base},
		{ID: "p2", Category: "Apartment", Subtype: "Loft", PostalCode: 9000, Price: 250000, CreatedAt: base.Add(time.Minute)},
		{ID: "p3", Category: "House", Subtype: "House", PostalCode: 3700, Price: 300000, CreatedAt: base.Add(2 * time.Minute)},
	}
	require.NoError(t, InsertPredictions(db.GetDB(), batch))

	recent, err := db.RecentPredictions(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "p3", recent[0].ID)
	assert.Equal(t, "p2", recent[1].ID)

	all, err := db.RecentPredictions(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestInsertPredictionsSkipsExistingIDs(t *testing.T) {
	db := setupTestDB(t)
	batch := []*models.Prediction{{ID: "same", Category: "House", Subtype: "Villa", PostalCode: 1000, Price: 1}}

	require.NoError(t, InsertPredictions(db.GetDB(), batch))
	require.NoError(t, InsertPredictions(db.GetDB(), batch))

	n, err := db.CountPredictions()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.NoError(t, InsertPredictions(db.GetDB(), nil))
}

func TestTrainingRuns(t *testing.T) {
	db := setupTestDB(t)

	latest, err := db.LatestTrainingRun()
	require.NoError(t, err)
	assert.Nil(t, latest)

	first := &models.TrainingRun{CorpusRows: 100, TrainRows: 72, TestRows: 18, Features: 65, CreatedAt: time.Now().Add(-time.Hour)}
	second := &models.TrainingRun{
		CorpusRows: 120,
		TrainRows:  80,
		TestRows:   20,
		Features:   65,
		Train:      models.Metrics{R2: 0.71, MAE: 80000},
		Test:       models.Metrics{R2: 0.68, MAE: 85000},
		CreatedAt:  time.Now(),
	}
	require.NoError(t, db.SaveTrainingRun(first))
	require.NoError(t, db.SaveTrainingRun(second))
	assert.NotZero(t, second.ID)

	latest, err = db.LatestTrainingRun()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 120, latest.CorpusRows)
	assert.InDelta(t, 0.68, latest.Test.R2, 1e-9)
	assert.InDelta(t, 80000, latest.Train.MAE, 1e-9)
}

func TestNewDatabaseCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "estimates.db")
	db, err := NewDatabase(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.RunMigrations())
	assert.FileExists(t, path)
}
