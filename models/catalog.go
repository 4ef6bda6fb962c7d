package models

import "time"

type MenuCategory struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null"`

	Items []MenuItem `json:"items,omitempty" gorm:"foreignKey:CategoryID"`
}

type MenuItem struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	CategoryID  uint         `json:"category_id" gorm:"not null;index"`
	Category    MenuCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	Title       string       `json:"title" gorm:"not null"`
	Description string       `json:"description"`
	Price       int          `json:"price" gorm:"not null"` // smallest currency unit, must be > 0
	ImageURL    string       `json:"image_url"`
	// No column default on the is_active flags: GORM would swallow an
	// explicit false on insert because false is the zero value for bool.
	// Creators set the flag themselves.
	IsActive    bool         `json:"is_active" gorm:"not null"`
}

type Location struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"not null"`
	PhoneNumber string  `json:"phone_number"`
	Lat         float64 `json:"lat" gorm:"not null"`
	Lng         float64 `json:"lng" gorm:"not null"`
	Address     string  `json:"address" gorm:"not null"`
	Hours       string  `json:"hours"`
	Rating      float64 `json:"rating"`
	Reviews     int     `json:"reviews" gorm:"default:0"`
	ImageURL    string  `json:"image_url"`
	MapsURL     string  `json:"maps_url"`
	IsActive    bool    `json:"is_active" gorm:"not null"`
}

// EventStatus is derived from the event's date range, never set by clients.
const (
	EventUpcoming = "upcoming"
	EventOngoing  = "ongoing"
	EventPast     = "past"
)

// Event dates are ISO "YYYY-MM-DD" strings so lexicographic order matches
// chronological order on every driver.
type Event struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:150;not null"`
	Description string    `json:"description"`
	StartDate   string    `json:"start_date" gorm:"size:10;not null"`
	EndDate     string    `json:"end_date" gorm:"size:10;not null"`
	Status      string    `json:"status" gorm:"size:20;not null;default:'upcoming'"`
	DetailLink  string    `json:"detail_link"`
	CoverImage  string    `json:"cover_image"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
	IsFeatured  bool      `json:"is_featured" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
