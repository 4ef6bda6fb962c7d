package models

import "time"

// ReservationStatus values are admin-controlled. Any value may move to any
// other value — there is deliberately no transition adjacency here.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// ValidReservationStatus checks the three-value domain.
func ValidReservationStatus(s ReservationStatus) bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCancelled:
		return true
	}
	return false
}

// DailyQueueCounter holds the last queue number handed out for a calendar
// date. One row per day, created lazily on the first reservation, locked
// FOR UPDATE to mint each number. This row is the single source of queue
// ordering truth for its date and must never be sharded.
type DailyQueueCounter struct {
	QueueDate  string `json:"queue_date" gorm:"primaryKey;size:10"`
	LastNumber int    `json:"last_number" gorm:"not null;default:0"`
}

func (DailyQueueCounter) TableName() string { return "daily_queue_counters" }

// Reservation is a queue entry for a calendar date. The queue number is
// assigned once at creation and unique per (date, number). An optional
// one-to-one link ties it to the draft order that was confirmed with it.
type Reservation struct {
	ID              uint              `json:"id" gorm:"primaryKey"`
	OrderID         *uint             `json:"order_id" gorm:"uniqueIndex"`
	Order           *Order            `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	CustomerName    string            `json:"customer_name" gorm:"not null"`
	Phone           string            `json:"phone" gorm:"size:20"`
	Pax             int               `json:"pax" gorm:"not null;default:1"`
	ReservationDate string            `json:"reservation_date" gorm:"size:10;not null;index;uniqueIndex:uq_reservations_daily_queue"`
	ReservationTime string            `json:"reservation_time" gorm:"size:5;not null"`
	LocationID      uint              `json:"location_id" gorm:"not null;index"`
	Location        Location          `json:"location,omitempty" gorm:"foreignKey:LocationID"`
	QueueNumber     int               `json:"queue_number" gorm:"not null;uniqueIndex:uq_reservations_daily_queue"`
	Status          ReservationStatus `json:"status" gorm:"not null;default:'pending'"`
	CreatedAt       time.Time         `json:"created_at"`
}

// OrderItemSummary is the title+quantity view attached to admin listings.
type OrderItemSummary struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

// ItemSummaries flattens the linked order's items for display. Requires the
// Order.Items.MenuItem associations to be preloaded; walk-in reservations
// (no order) yield an empty slice.
func (r *Reservation) ItemSummaries() []OrderItemSummary {
	summaries := []OrderItemSummary{}
	if r.Order == nil {
		return summaries
	}
	for _, item := range r.Order.Items {
		summaries = append(summaries, OrderItemSummary{
			Title:    item.MenuItem.Title,
			Quantity: item.Quantity,
		})
	}
	return summaries
}
