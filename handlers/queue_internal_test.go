package handlers

import (
	"testing"

	"restaurant-platform-api/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestNextQueueNumber(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.DailyQueueCounter{}))

	mint := func(date string) int {
		var n int
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			var err error
			n, err = nextQueueNumber(tx, date)
			return err
		}))
		return n
	}

	assert.Equal(t, 1, mint("2026-09-01"))
	assert.Equal(t, 2, mint("2026-09-01"))
	assert.Equal(t, 3, mint("2026-09-01"))

	// Dates do not share counters.
	assert.Equal(t, 1, mint("2026-09-02"))

	var counter models.DailyQueueCounter
	require.NoError(t, db.Where("queue_date = ?", "2026-09-01").First(&counter).Error)
	assert.Equal(t, 3, counter.LastNumber)
}

func TestNextQueueNumberRollbackLeavesCounterUntouched(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.DailyQueueCounter{}))

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		_, err := nextQueueNumber(tx, "2026-09-01")
		return err
	}))

	sentinel := assert.AnError
	err = db.Transaction(func(tx *gorm.DB) error {
		if _, err := nextQueueNumber(tx, "2026-09-01"); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	var counter models.DailyQueueCounter
	require.NoError(t, db.Where("queue_date = ?", "2026-09-01").First(&counter).Error)
	assert.Equal(t, 1, counter.LastNumber, "rolled-back increment must not persist")
}
