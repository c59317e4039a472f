package processor

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immoprice/server/internal/database"
	"immoprice/server/internal/models"
	"immoprice/server/internal/queue"
)

func setupTestDB(t *testing.T) *database.Database {
	db, err := database.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBatchProcessingIntegration(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig(3)
	logger := logrus.New()

	predictionQueue := queue.NewPredictionQueue(cfg.BatchProcessing.QueueSize, logger)
	processor := NewBatchProcessor(db.GetDB(), predictionQueue, cfg, logger)
	processor.Start()
	predictionQueue.Start()
	defer processor.Stop()

	batch := []*models.Prediction{
		{ID: "p-1", Category: "House", Subtype: "Villa", PostalCode: 1000, Price: 500000, CreatedAt: time.Now()},
		{ID: "p-2", Category: "Apartment", Subtype: "Loft", PostalCode: 9000, Price: 250000, CreatedAt: time.Now()},
	}
	require.NoError(t, predictionQueue.Push(batch))

	// Close waits for queued batches to be handled
	require.NoError(t, predictionQueue.Close())

	for _, expected := range batch {
		var stored models.Prediction
		result := db.GetDB().Where("id = ?", expected.ID).First(&stored)
		assert.NoError(t, result.Error)
		assert.Equal(t, expected.PostalCode, stored.PostalCode)
		assert.Equal(t, expected.Price, stored.Price)
		assert.Equal(t, expected.Subtype, stored.Subtype)
	}
}

func TestBatchProcessingWithConcurrency(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig(3)
	cfg.BatchProcessing.QueueSize = 50
	logger := logrus.New()

	predictionQueue := queue.NewPredictionQueue(cfg.BatchProcessing.QueueSize, logger)
	processor := NewBatchProcessor(db.GetDB(), predictionQueue, cfg, logger)
	processor.Start()
	predictionQueue.Start()
	defer processor.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 4; j++ {
				batch := make([]*models.Prediction, 5)
				for k := range batch {
					batch[k] = &models.Prediction{
						ID:         fmt.Sprintf("p-%d-%d-%d", i, j, k),
						Category:   "House",
						Subtype:    "House",
						PostalCode: 1000 + i,
						Price:      float64(300000 + k*1000),
						CreatedAt:  time.Now(),
					}
				}
				assert.NoError(t, predictionQueue.Push(batch))
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, predictionQueue.Close())

	n, err := db.CountPredictions()
	require.NoError(t, err)
	assert.Equal(t, int64(100), n) // 5 producers * 4 batches * 5 predictions
}
