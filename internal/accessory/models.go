package accessory

import (
	"time"

	"github.com/google/uuid"

	"printstock/internal/catalog"
	"printstock/internal/common"
)

// Usage type values. Consumable accessories deplete by count; durable
// accessories are consumed by being checked out for exclusive use.
const (
	UsageTypeConsumable = "consumable"
	UsageTypeDurable    = "durable"
)

// Accessory represents one printer accessory owned by a user
type Accessory struct {
	common.BaseModel
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	CategoryID uuid.UUID `json:"category_id" gorm:"type:uuid;not null"`

	Name  string `json:"name" gorm:"size:255;not null"`
	Brand string `json:"brand,omitempty" gorm:"size:100"`
	Model string `json:"model,omitempty" gorm:"size:100"`

	Price       float64    `json:"price" gorm:"type:decimal(10,2)"`
	PurchasedAt *time.Time `json:"purchased_at,omitempty"`

	Quantity          int `json:"quantity" gorm:"not null;default:1"`
	RemainingQuantity int `json:"remaining_quantity" gorm:"not null;default:1"`

	ReplacementCycleDays *int       `json:"replacement_cycle_days,omitempty"`
	LastReplacedAt       *time.Time `json:"last_replaced_at,omitempty"`
	LowStockThreshold    *int       `json:"low_stock_threshold,omitempty"`

	UsageType      string     `json:"usage_type" gorm:"size:20;not null;default:'consumable'"`
	InUseStartedAt *time.Time `json:"in_use_started_at,omitempty"`

	Notes string `json:"notes,omitempty" gorm:"type:text"`

	// Derived, populated before every response
	Status string `json:"status" gorm:"-"`

	// Relations
	Category catalog.AccessoryCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// AccessoryUsage is one entry in an accessory's usage ledger. Count
// consumption carries a quantity; a closed exclusive-use session
// carries the elapsed duration instead.
type AccessoryUsage struct {
	common.BaseModel
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	AccessoryID uuid.UUID `json:"accessory_id" gorm:"type:uuid;not null;index"`

	UsedAt          time.Time `json:"used_at" gorm:"not null"`
	Quantity        int       `json:"quantity" gorm:"not null;default:0"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
	Purpose         string    `json:"purpose,omitempty" gorm:"size:255"`
}

// CreateAccessoryRequest represents the request to register an accessory
type CreateAccessoryRequest struct {
	CategoryID           uuid.UUID  `json:"category_id" binding:"required"`
	Name                 string     `json:"name" binding:"required"`
	Brand                string     `json:"brand"`
	Model                string     `json:"model"`
	Price                float64    `json:"price"`
	PurchasedAt          *time.Time `json:"purchased_at"`
	Quantity             int        `json:"quantity"`
	ReplacementCycleDays *int       `json:"replacement_cycle_days"`
	LowStockThreshold    *int       `json:"low_stock_threshold"`
	UsageType            string     `json:"usage_type"`
	Notes                string     `json:"notes"`
}

// RecordUsageRequest consumes stock from one accessory
type RecordUsageRequest struct {
	Quantity int        `json:"quantity" binding:"required,min=1"`
	UsedAt   *time.Time `json:"used_at"`
	Purpose  string     `json:"purpose"`
}

// StopUsingRequest closes an exclusive-use session
type StopUsingRequest struct {
	Notes string `json:"notes"`
}

// RestockRequest adds units to an accessory
type RestockRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// MarkReplacedRequest records a replacement, optionally backdated
type MarkReplacedRequest struct {
	ReplacedAt *time.Time `json:"replaced_at"`
}

// UsageResult carries the full accessory state after a mutation plus
// the ledger entry it produced, when one was produced.
type UsageResult struct {
	Accessory *Accessory      `json:"accessory"`
	Usage     *AccessoryUsage `json:"usage,omitempty"`
}

// Alert flags one accessory needing attention
type Alert struct {
	Accessory Accessory `json:"accessory"`
	Reason    string    `json:"reason"`
}

// Alert reasons
const (
	AlertReplacementDue = "replacement_due"
	AlertLowStock       = "low_stock"
	AlertDepleted       = "depleted"
)

// AlertsResponse is the read-only alert projection for one owner
type AlertsResponse struct {
	ReplacementDue []Alert `json:"replacement_due"`
	StockAlerts    []Alert `json:"stock_alerts"`
}
