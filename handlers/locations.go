package handlers

import (
	"errors"
	"net/http"

	"restaurant-platform-api/config"
	"restaurant-platform-api/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ListLocations returns all active locations (public).
func ListLocations(c *gin.Context) {
	var locations []models.Location
	if err := config.DB.Where("is_active = ?", true).Find(&locations).Error; err != nil {
		logrus.WithError(err).Error("location listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load locations"})
		return
	}
	c.JSON(http.StatusOK, locations)
}

type createLocationRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=300"`
	PhoneNumber string   `json:"phone_number" binding:"omitempty,max=30"`
	Lat         *float64 `json:"lat" binding:"required,gte=-90,lte=90"`
	Lng         *float64 `json:"lng" binding:"required,gte=-180,lte=180"`
	Address     string   `json:"address" binding:"required,min=2,max=255"`
	Hours       string   `json:"hours" binding:"omitempty,max=100"`
	ImageURL    string   `json:"image_url" binding:"omitempty,max=255"`
	MapsURL     string   `json:"maps_url" binding:"omitempty,max=255"`
}

// CreateLocation adds a restaurant location (admin).
func CreateLocation(c *gin.Context) {
	var req createLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	location := models.Location{
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		Lat:         *req.Lat,
		Lng:         *req.Lng,
		Address:     req.Address,
		Hours:       req.Hours,
		ImageURL:    req.ImageURL,
		MapsURL:     req.MapsURL,
		IsActive:    true,
	}
	if err := config.DB.Create(&location).Error; err != nil {
		logrus.WithError(err).Error("location creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create location"})
		return
	}
	c.JSON(http.StatusCreated, location)
}

type updateLocationRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=300"`
	PhoneNumber *string  `json:"phone_number" binding:"omitempty,max=30"`
	Lat         *float64 `json:"lat" binding:"omitempty,gte=-90,lte=90"`
	Lng         *float64 `json:"lng" binding:"omitempty,gte=-180,lte=180"`
	Address     *string  `json:"address" binding:"omitempty,min=2,max=255"`
	Hours       *string  `json:"hours" binding:"omitempty,max=100"`
	ImageURL    *string  `json:"image_url" binding:"omitempty,max=255"`
	MapsURL     *string  `json:"maps_url" binding:"omitempty,max=255"`
	Rating      *float64 `json:"rating" binding:"omitempty,gte=0,lte=5"`
	Reviews     *int     `json:"reviews" binding:"omitempty,gte=0"`
}

// UpdateLocation applies only the fields present in the request body.
func UpdateLocation(c *gin.Context) {
	locationID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req updateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var location models.Location
	if err := config.DB.First(&location, locationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
			return
		}
		logrus.WithError(err).Error("location lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load location"})
		return
	}

	if req.Name != nil {
		location.Name = *req.Name
	}
	if req.PhoneNumber != nil {
		location.PhoneNumber = *req.PhoneNumber
	}
	if req.Lat != nil {
		location.Lat = *req.Lat
	}
	if req.Lng != nil {
		location.Lng = *req.Lng
	}
	if req.Address != nil {
		location.Address = *req.Address
	}
	if req.Hours != nil {
		location.Hours = *req.Hours
	}
	if req.ImageURL != nil {
		location.ImageURL = *req.ImageURL
	}
	if req.MapsURL != nil {
		location.MapsURL = *req.MapsURL
	}
	if req.Rating != nil {
		location.Rating = *req.Rating
	}
	if req.Reviews != nil {
		location.Reviews = *req.Reviews
	}

	if err := config.DB.Save(&location).Error; err != nil {
		logrus.WithError(err).Error("location update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update location"})
		return
	}
	c.JSON(http.StatusOK, location)
}

// DeleteLocation soft-deletes: reservations keep their location reference.
func DeleteLocation(c *gin.Context) {
	locationID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var location models.Location
	if err := config.DB.First(&location, locationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
			return
		}
		logrus.WithError(err).Error("location lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load location"})
		return
	}

	if err := config.DB.Model(&location).Update("is_active", false).Error; err != nil {
		logrus.WithError(err).Error("location deactivation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete location"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
