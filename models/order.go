package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus represents the lifecycle of a visitor's draft order
type OrderStatus string

const (
	OrderDraft     OrderStatus = "draft"
	OrderConfirmed OrderStatus = "confirmed"
	OrderCancelled OrderStatus = "cancelled"
)

// Order is a time-limited cart scoped to one opaque visitor token.
// The token is the only credential for cart operations — the order row
// itself acts as the visitor's session. Expiry is evaluated lazily by
// timestamp comparison; expired drafts are never swept.
type Order struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	VisitorToken uuid.UUID   `json:"visitor_token" gorm:"type:uuid;uniqueIndex;not null"`
	OrderName    string      `json:"order_name" gorm:"default:'Draft Order'"`
	Status       OrderStatus `json:"status" gorm:"not null;default:'draft';index"`
	ExpiresAt    time.Time   `json:"expires_at" gorm:"not null;index"`
	CreatedAt    time.Time   `json:"created_at"`

	Items       []OrderItem  `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Reservation *Reservation `json:"reservation,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem is one menu item line in a draft order. The (order, menu item)
// pair is unique — adding the same item again increments quantity instead of
// inserting a second row, and quantity is never persisted as zero.
type OrderItem struct {
	ID         uint     `json:"id" gorm:"primaryKey"`
	OrderID    uint     `json:"order_id" gorm:"not null;uniqueIndex:uq_order_items_order_menu"`
	MenuItemID uint     `json:"menu_item_id" gorm:"not null;uniqueIndex:uq_order_items_order_menu"`
	MenuItem   MenuItem `json:"menu_item,omitempty" gorm:"foreignKey:MenuItemID;constraint:OnDelete:RESTRICT"`
	Quantity   int      `json:"quantity" gorm:"not null;default:1"`
}
