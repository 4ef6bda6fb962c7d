package handlers

import (
	"errors"

	"restaurant-platform-api/models"

	"gorm.io/gorm"
)

// nextQueueNumber mints the next queue number for a calendar date. It must
// run inside the caller's transaction: the counter row is locked FOR UPDATE
// until that transaction commits, which linearizes all reservations for the
// date. Counters for different dates never contend.
//
// The counter row is created lazily on the first reservation of the day.
// If two transactions race past the not-found check, the loser's insert
// hits the primary key and the duplicate error propagates up, where the
// reservation handler reports it as a retryable conflict.
func nextQueueNumber(tx *gorm.DB, queueDate string) (int, error) {
	var counter models.DailyQueueCounter
	err := forUpdate(tx).Where("queue_date = ?", queueDate).First(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		counter = models.DailyQueueCounter{QueueDate: queueDate, LastNumber: 0}
		if err := tx.Create(&counter).Error; err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	counter.LastNumber++
	if err := tx.Model(&models.DailyQueueCounter{}).
		Where("queue_date = ?", queueDate).
		Update("last_number", counter.LastNumber).Error; err != nil {
		return 0, err
	}
	return counter.LastNumber, nil
}
