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

// GetMenu returns active menu items grouped by category name, shaped for
// the public frontend.
func GetMenu(c *gin.Context) {
	var items []models.MenuItem
	err := config.DB.
		Preload("Category").
		Where("is_active = ?", true).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		logrus.WithError(err).Error("menu listing failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load menu"})
		return
	}

	result := map[string][]gin.H{}
	for _, item := range items {
		cat := item.Category.Name
		if cat == "" {
			cat = "Uncategorized"
		}
		result[cat] = append(result[cat], gin.H{
			"id":    item.ID,
			"title": item.Title,
			"desc":  item.Description,
			"price": item.Price,
			"image": item.ImageURL,
		})
	}
	c.JSON(http.StatusOK, result)
}

type createMenuRequest struct {
	Title    string `json:"title" binding:"required,min=2,max=100"`
	Desc     string `json:"desc" binding:"omitempty,max=255"`
	Price    int    `json:"price" binding:"required,gt=0"`
	ImageURL string `json:"image_url" binding:"omitempty,max=255"`
	Category string `json:"category" binding:"required"`
}

// CreateMenu adds a menu item, creating its category on first use.
func CreateMenu(c *gin.Context) {
	var req createMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category, err := findOrCreateCategory(req.Category)
	if err != nil {
		logrus.WithError(err).Error("category lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create menu item"})
		return
	}

	item := models.MenuItem{
		CategoryID:  category.ID,
		Title:       req.Title,
		Description: req.Desc,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		IsActive:    true,
	}
	if err := config.DB.Create(&item).Error; err != nil {
		logrus.WithError(err).Error("menu item creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create menu item"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "created", "id": item.ID})
}

type updateMenuRequest struct {
	Title    *string `json:"title" binding:"omitempty,min=2,max=100"`
	Desc     *string `json:"desc" binding:"omitempty,max=255"`
	Price    *int    `json:"price" binding:"omitempty,gt=0"`
	ImageURL *string `json:"image_url" binding:"omitempty,max=255"`
	Category *string `json:"category"`
}

// UpdateMenu applies only the fields present in the request body.
func UpdateMenu(c *gin.Context) {
	menuID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req updateMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var item models.MenuItem
	if err := config.DB.First(&item, menuID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}
		logrus.WithError(err).Error("menu item lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load menu item"})
		return
	}

	if req.Category != nil && *req.Category != "" {
		category, err := findOrCreateCategory(*req.Category)
		if err != nil {
			logrus.WithError(err).Error("category lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update menu item"})
			return
		}
		item.CategoryID = category.ID
	}
	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Desc != nil {
		item.Description = *req.Desc
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
	}

	if err := config.DB.Save(&item).Error; err != nil {
		logrus.WithError(err).Error("menu item update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update menu item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// DeleteMenu hides the item instead of removing the row: order items hold
// non-cascading references to it.
func DeleteMenu(c *gin.Context) {
	menuID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var item models.MenuItem
	if err := config.DB.First(&item, menuID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
			return
		}
		logrus.WithError(err).Error("menu item lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load menu item"})
		return
	}

	if err := config.DB.Model(&item).Update("is_active", false).Error; err != nil {
		logrus.WithError(err).Error("menu item deactivation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete menu item"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "message": "Item is now inactive"})
}

func findOrCreateCategory(name string) (*models.MenuCategory, error) {
	var category models.MenuCategory
	err := config.DB.Where("name = ?", name).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		category = models.MenuCategory{Name: name}
		err = config.DB.Create(&category).Error
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}
