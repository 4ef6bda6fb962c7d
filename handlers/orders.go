package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"restaurant-platform-api/config"
	"restaurant-platform-api/middleware"
	"restaurant-platform-api/models"
	"restaurant-platform-api/statemachine"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sentinel errors returned from inside transactions so the handler boundary
// can pick the status code after the rollback has happened.
//
// Ownership, expiry and wrong-status failures all collapse into the same
// not-found message on purpose: a caller without the right token must not
// learn whether the cart exists.
var (
	errDraftNotFound    = errors.New("Draft order not found or expired")
	errMenuItemNotFound = errors.New("Menu item not found")
	errItemNotFound     = errors.New("Item not found or order locked")
	errOrderEmpty       = errors.New("Order is empty")
)

// forUpdate adds a row-level SELECT ... FOR UPDATE lock on Postgres.
// sqlite has no FOR UPDATE syntax; its single-writer model already
// serializes these transactions, so the clause is skipped there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// GetOrCreateDraft reuses the visitor's active draft or mints a fresh one.
// This never fails with a client-visible error: an expired or foreign token
// simply yields a brand-new draft with a new token.
func GetOrCreateDraft(c *gin.Context) {
	now := time.Now().UTC()

	if token, ok := middleware.VisitorTokenOptional(c); ok {
		var order models.Order
		err := config.DB.
			Where("visitor_token = ? AND status = ? AND expires_at > ?", token, models.OrderDraft, now).
			First(&order).Error
		if err == nil {
			c.JSON(http.StatusCreated, gin.H{
				"order_id":      order.ID,
				"visitor_token": order.VisitorToken,
				"expires_at":    order.ExpiresAt,
			})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logrus.WithError(err).Error("draft lookup failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create draft order"})
			return
		}
	}

	order := models.Order{
		VisitorToken: uuid.New(),
		Status:       models.OrderDraft,
		ExpiresAt:    now.Add(config.App.DraftTTL),
	}
	if err := config.DB.Create(&order).Error; err != nil {
		logrus.WithError(err).Error("draft creation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create draft order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order_id":      order.ID,
		"visitor_token": order.VisitorToken,
		"expires_at":    order.ExpiresAt,
	})
}

// AddItem puts one unit of a menu item into the visitor's draft. The order
// row and the matching item row (if any) are locked for the duration of
// the transaction so concurrent add/inc/dec calls against the same cart
// cannot lose updates.
func AddItem(c *gin.Context) {
	token, ok := middleware.VisitorTokenRequired(c)
	if !ok {
		return
	}
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	menuItemID, ok := paramUint(c, "menuItemId")
	if !ok {
		return
	}

	now := time.Now().UTC()
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		order, err := lockActiveDraft(tx, orderID, token, now)
		if err != nil {
			return err
		}

		var menuItem models.MenuItem
		if err := tx.Where("id = ? AND is_active = ?", menuItemID, true).First(&menuItem).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errMenuItemNotFound
			}
			return err
		}

		var item models.OrderItem
		err = forUpdate(tx).
			Where("order_id = ? AND menu_item_id = ?", order.ID, menuItem.ID).
			First(&item).Error
		switch {
		case err == nil:
			return tx.Model(&item).Update("quantity", item.Quantity+1).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&models.OrderItem{
				OrderID:    order.ID,
				MenuItemID: menuItem.ID,
				Quantity:   1,
			}).Error
		default:
			return err
		}
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "added"})
}

// IncreaseQty adds one unit to an item already in the draft.
func IncreaseQty(c *gin.Context) {
	mutateQty(c, func(tx *gorm.DB, item *models.OrderItem) error {
		return tx.Model(item).Update("quantity", item.Quantity+1).Error
	})
}

// DecreaseQty removes one unit; an item at quantity 1 is deleted outright
// so a zero quantity is never persisted.
func DecreaseQty(c *gin.Context) {
	mutateQty(c, func(tx *gorm.DB, item *models.OrderItem) error {
		if item.Quantity <= 1 {
			return tx.Delete(item).Error
		}
		return tx.Model(item).Update("quantity", item.Quantity-1).Error
	})
}

// mutateQty locates the item through its order with the full
// ownership/draft/expiry predicate, locked for update, and applies fn.
func mutateQty(c *gin.Context, fn func(tx *gorm.DB, item *models.OrderItem) error) {
	token, ok := middleware.VisitorTokenRequired(c)
	if !ok {
		return
	}
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	menuItemID, ok := paramUint(c, "menuItemId")
	if !ok {
		return
	}

	now := time.Now().UTC()
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var item models.OrderItem
		err := forUpdate(tx).
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("orders.id = ? AND orders.visitor_token = ? AND orders.status = ? AND orders.expires_at > ? AND order_items.menu_item_id = ?",
				orderID, token, models.OrderDraft, now, menuItemID).
			First(&item).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errItemNotFound
			}
			return err
		}
		return fn(tx, &item)
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetOrder returns the cart view with per-line subtotals. A confirmed or
// cancelled order answers 403 — existence is confirmed but reading a
// finalized cart through the visitor surface is disallowed.
func GetOrder(c *gin.Context) {
	token, ok := middleware.VisitorTokenRequired(c)
	if !ok {
		return
	}
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	now := time.Now().UTC()
	var order models.Order
	err := config.DB.
		Preload("Items.MenuItem").
		Where("id = ? AND visitor_token = ? AND expires_at > ?", orderID, token, now).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		logrus.WithError(err).Error("order lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return
	}

	if order.Status != models.OrderDraft {
		c.JSON(http.StatusForbidden, gin.H{"error": "Order already confirmed"})
		return
	}

	items := make([]gin.H, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, gin.H{
			"menu_item_id": item.MenuItemID,
			"title":        item.MenuItem.Title,
			"price":        item.MenuItem.Price,
			"quantity":     item.Quantity,
			"subtotal":     item.MenuItem.Price * item.Quantity,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         order.ID,
		"status":     order.Status,
		"expires_at": order.ExpiresAt,
		"items":      items,
	})
}

// ConfirmOrder irreversibly finalizes a non-empty draft. There is no
// un-confirm path through this surface.
func ConfirmOrder(c *gin.Context) {
	token, ok := middleware.VisitorTokenRequired(c)
	if !ok {
		return
	}
	orderID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	now := time.Now().UTC()
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		order, err := lockActiveDraft(tx, orderID, token, now)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return errOrderEmpty
		}

		if err := statemachine.CanTransition(order.Status, models.OrderConfirmed); err != nil {
			return err
		}
		return tx.Model(order).Update("status", models.OrderConfirmed).Error
	})
	if err != nil {
		if errors.Is(err, errOrderEmpty) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errOrderEmpty.Error()})
			return
		}
		respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "confirmed"})
}

// lockActiveDraft fetches the order FOR UPDATE, matched on the full
// (id, token, draft, unexpired) predicate. Any miss is errDraftNotFound.
func lockActiveDraft(tx *gorm.DB, orderID uint, token uuid.UUID, now time.Time) (*models.Order, error) {
	var order models.Order
	err := forUpdate(tx).
		Where("id = ? AND visitor_token = ? AND status = ? AND expires_at > ?",
			orderID, token, models.OrderDraft, now).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errDraftNotFound
		}
		return nil, err
	}
	return &order, nil
}

func respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errDraftNotFound), errors.Is(err, errMenuItemNotFound), errors.Is(err, errItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logrus.WithError(err).Error("order operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

// paramUint parses a numeric path parameter, answering 400 on garbage.
func paramUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(v), true
}
