package model

import (
	"time"
)

const (
	// DefaultStatus is applied when a bottle is created without one.
	DefaultStatus = "sealed"
	// DefaultCurrency is applied when a bottle is created without one.
	DefaultCurrency = "USD"
	// DefaultQuantity is applied when a bottle is created without one.
	DefaultQuantity = 1
)

// Bottle is a single inventory item. OwnerID may carry the normalized
// "owner:" prefix produced by the credential resolver.
type Bottle struct {
	ID           string    `gorm:"primarykey;type:varchar(64)" json:"id"`
	OwnerID      string    `gorm:"index;not null" json:"owner_id"`
	Brand        string    `gorm:"not null" json:"brand"`
	ProductName  string    `gorm:"not null" json:"product_name"`
	BaseSpirit   string    `json:"base_spirit"`
	Style        string    `json:"style"`
	Category     string    `json:"category"`
	ABV          *float64  `json:"abv"`
	VolumeML     *float64  `json:"volume_ml"`
	Quantity     int       `gorm:"default:1" json:"quantity"`
	Status       string    `gorm:"type:varchar(50)" json:"status"`
	PurchaseDate string    `json:"purchase_date"`
	PriceCents   *int64    `json:"price_cents"`
	Currency     string    `gorm:"type:varchar(10)" json:"currency"`
	Location     string    `json:"location"`
	Notes        string    `gorm:"type:text" json:"notes"`
	ImageURL     string    `json:"image_url"`
	UPC          string    `gorm:"type:varchar(20)" json:"upc"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `gorm:"index" json:"updated_at"`
}

func (Bottle) TableName() string {
	return "bottles"
}
