package handlers

import (
	"errors"
	"net/http"
	"time"

	"restaurant-platform-api/config"
	"restaurant-platform-api/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// resolveEventStatus derives the status from the date range. Dates are ISO
// strings, so plain comparison is chronological.
func resolveEventStatus(startDate, endDate string) string {
	today := time.Now().UTC().Format("2006-01-02")
	switch {
	case today < startDate:
		return models.EventUpcoming
	case today <= endDate:
		return models.EventOngoing
	default:
		return models.EventPast
	}
}

// ListEvents returns active events in chronological order (public).
func ListEvents(c *gin.Context) {
	var events []models.Event
	err := config.DB.
		Where("is_active = ?", true).
		Order("start_date asc").
		Find(&events).Error
	if err != nil {
		logrus.WithError(err).Error("event listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
		return
	}
	c.JSON(http.StatusOK, events)
}

// FilterEvents narrows the public listing to one derived status.
func FilterEvents(c *gin.Context) {
	status := c.Query("status")
	switch status {
	case models.EventUpcoming, models.EventOngoing, models.EventPast:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var events []models.Event
	err := config.DB.
		Where("is_active = ? AND status = ?", true, status).
		Order("start_date asc").
		Find(&events).Error
	if err != nil {
		logrus.WithError(err).Error("event listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
		return
	}
	c.JSON(http.StatusOK, events)
}

type createEventRequest struct {
	Title       string `json:"title" binding:"required,max=150"`
	Description string `json:"description"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	DetailLink  string `json:"detail_link"`
	CoverImage  string `json:"cover_image"`
	IsFeatured  bool   `json:"is_featured"`
}

// CreateEvent adds an event (admin). The status is derived, never supplied.
func CreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
		return
	}
	if endDate < startDate {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End date must be after start date"})
		return
	}
	if req.CoverImage == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cover_image is required. Upload image first."})
		return
	}

	event := models.Event{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   startDate,
		EndDate:     endDate,
		Status:      resolveEventStatus(startDate, endDate),
		DetailLink:  req.DetailLink,
		CoverImage:  req.CoverImage,
		IsActive:    true,
		IsFeatured:  req.IsFeatured,
	}
	if err := config.DB.Create(&event).Error; err != nil {
		logrus.WithError(err).Error("event creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}
	c.JSON(http.StatusCreated, event)
}

type updateEventRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=150"`
	Description *string `json:"description"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	DetailLink  *string `json:"detail_link"`
	CoverImage  *string `json:"cover_image"`
	IsActive    *bool   `json:"is_active"`
	IsFeatured  *bool   `json:"is_featured"`
}

// UpdateEvent applies only the fields present in the request body and
// re-derives the status when either date changes.
func UpdateEvent(c *gin.Context) {
	eventID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req updateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var event models.Event
	if err := config.DB.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		logrus.WithError(err).Error("event lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event"})
		return
	}

	datesChanged := false
	if req.StartDate != nil {
		startDate, err := parseDate(*req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "start_date must be YYYY-MM-DD"})
			return
		}
		event.StartDate = startDate
		datesChanged = true
	}
	if req.EndDate != nil {
		endDate, err := parseDate(*req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be YYYY-MM-DD"})
			return
		}
		event.EndDate = endDate
		datesChanged = true
	}
	if datesChanged {
		if event.EndDate < event.StartDate {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range"})
			return
		}
		event.Status = resolveEventStatus(event.StartDate, event.EndDate)
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.DetailLink != nil {
		event.DetailLink = *req.DetailLink
	}
	if req.CoverImage != nil {
		event.CoverImage = *req.CoverImage
	}
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		event.IsFeatured = *req.IsFeatured
	}

	if err := config.DB.Save(&event).Error; err != nil {
		logrus.WithError(err).Error("event update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}
	c.JSON(http.StatusOK, event)
}

// DeleteEvent hides the event from public listings.
func DeleteEvent(c *gin.Context) {
	eventID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var event models.Event
	if err := config.DB.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		logrus.WithError(err).Error("event lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event"})
		return
	}

	if err := config.DB.Model(&event).Update("is_active", false).Error; err != nil {
		logrus.WithError(err).Error("event deactivation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
