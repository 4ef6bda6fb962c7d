package handlers

import (
	"errors"
	"net/http"
	"time"

	"restaurant-platform-api/config"
	"restaurant-platform-api/models"
	"restaurant-platform-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	errActiveDraftNotFound = errors.New("Active draft order not found or expired")
	errOrderHasReservation = errors.New("Order already has a reservation")
)

type createReservationRequest struct {
	CustomerName    string `json:"customer_name" binding:"required,min=2,max=100"`
	Phone           string `json:"phone" binding:"omitempty,max=20"`
	Pax             int    `json:"pax" binding:"required,min=1,max=20"`
	ReservationDate string `json:"reservation_date" binding:"required"`
	ReservationTime string `json:"reservation_time" binding:"required"`
	LocationID      uint   `json:"location_id" binding:"required"`
	OrderID         *uint  `json:"order_id"`
}

// CreateReservation books a queue slot for a calendar date, optionally
// consuming a draft order. Everything happens in one transaction: the
// linked draft (if any) is locked, the day's counter is locked and
// incremented, the reservation is inserted, and the draft flips to
// confirmed. Either all of it persists or none of it does.
func CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	queueDate, err := parseDate(req.ReservationDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reservation_date must be YYYY-MM-DD"})
		return
	}
	clock, err := parseClock(req.ReservationTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reservation_time must be HH:MM"})
		return
	}

	now := time.Now().UTC()
	var created models.Reservation

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var order *models.Order
		if req.OrderID != nil {
			var o models.Order
			err := forUpdate(tx).
				Where("id = ? AND status = ? AND expires_at > ?", *req.OrderID, models.OrderDraft, now).
				First(&o).Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errActiveDraftNotFound
				}
				return err
			}

			// One reservation per order; the unique index on order_id is
			// the final guard if two requests race past this check.
			var linked int64
			if err := tx.Model(&models.Reservation{}).Where("order_id = ?", o.ID).Count(&linked).Error; err != nil {
				return err
			}
			if linked > 0 {
				return errOrderHasReservation
			}
			order = &o
		}

		queueNumber, err := nextQueueNumber(tx, queueDate)
		if err != nil {
			return err
		}

		created = models.Reservation{
			OrderID:         req.OrderID,
			CustomerName:    req.CustomerName,
			Phone:           req.Phone,
			Pax:             req.Pax,
			ReservationDate: queueDate,
			ReservationTime: clock,
			LocationID:      req.LocationID,
			QueueNumber:     queueNumber,
			Status:          models.ReservationPending,
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		if order != nil {
			if err := statemachine.CanTransition(order.Status, models.OrderConfirmed); err != nil {
				return err
			}
			if err := tx.Model(order).Update("status", models.OrderConfirmed).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, errActiveDraftNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, errOrderHasReservation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, gorm.ErrDuplicatedKey):
			// Counter insert race or duplicate (date, number) slot despite
			// the lock. The whole transaction rolled back; the client can
			// simply retry.
			c.JSON(http.StatusConflict, gin.H{"error": "Failed to create reservation, please retry"})
		default:
			logrus.WithError(err).Error("reservation creation failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reservation"})
		}
		return
	}

	if err := config.DB.Preload("Order.Items.MenuItem").First(&created, created.ID).Error; err != nil {
		logrus.WithError(err).Error("reservation reload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reservation"})
		return
	}
	c.JSON(http.StatusCreated, reservationOut(&created))
}

// ListReservations is the admin queue view. Only supplied filters
// constrain the result. Most recent day first; within a day, strict
// queue order.
func ListReservations(c *gin.Context) {
	query := config.DB.Preload("Order.Items.MenuItem")

	if date := c.Query("reservation_date"); date != "" {
		normalized, err := parseDate(date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "reservation_date must be YYYY-MM-DD"})
			return
		}
		query = query.Where("reservation_date = ?", normalized)
	}
	if locationID := c.Query("location_id"); locationID != "" {
		query = query.Where("location_id = ?", locationID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var reservations []models.Reservation
	if err := query.Order("reservation_date desc, queue_number asc").Find(&reservations).Error; err != nil {
		logrus.WithError(err).Error("reservation listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reservations"})
		return
	}

	out := make([]gin.H, 0, len(reservations))
	for i := range reservations {
		out = append(out, reservationOut(&reservations[i]))
	}
	c.JSON(http.StatusOK, out)
}

// UpdateReservationStatus sets any of the three statuses. There are no
// adjacency rules between reservation statuses; the admin may move any
// value to any other.
func UpdateReservationStatus(c *gin.Context) {
	reservationID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	status := models.ReservationStatus(c.Query("status"))
	if status == "" {
		var body struct {
			Status models.ReservationStatus `json:"status"`
		}
		if err := c.ShouldBindJSON(&body); err == nil {
			status = body.Status
		}
	}
	if !models.ValidReservationStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var reservation models.Reservation
	if err := config.DB.First(&reservation, reservationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Reservation not found"})
			return
		}
		logrus.WithError(err).Error("reservation lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reservation"})
		return
	}

	if err := config.DB.Model(&reservation).Update("status", status).Error; err != nil {
		logrus.WithError(err).Error("reservation status update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update reservation"})
		return
	}

	if err := config.DB.Preload("Order.Items.MenuItem").First(&reservation, reservation.ID).Error; err != nil {
		logrus.WithError(err).Error("reservation reload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reservation"})
		return
	}
	c.JSON(http.StatusOK, reservationOut(&reservation))
}

// AdminCheck lets the dashboard probe whether its key is still valid.
func AdminCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func reservationOut(r *models.Reservation) gin.H {
	return gin.H{
		"id":               r.ID,
		"order_id":         r.OrderID,
		"location_id":      r.LocationID,
		"customer_name":    r.CustomerName,
		"phone":            r.Phone,
		"pax":              r.Pax,
		"reservation_date": r.ReservationDate,
		"reservation_time": r.ReservationTime,
		"queue_number":     r.QueueNumber,
		"status":           r.Status,
		"created_at":       r.CreatedAt,
		"order_items":      r.ItemSummaries(),
	}
}

// parseDate normalizes an ISO calendar date.
func parseDate(s string) (string, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02"), nil
}

// parseClock accepts HH:MM or HH:MM:SS and normalizes to HH:MM.
func parseClock(s string) (string, error) {
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04"), nil
	}
	t, err := time.Parse("15:04:05", s)
	if err != nil {
		return "", err
	}
	return t.Format("15:04"), nil
}
