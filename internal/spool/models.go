package spool

import (
	"time"

	"github.com/google/uuid"

	"printstock/internal/catalog"
	"printstock/internal/common"
)

// Spool status values. Status is derived from is_opened and
// remaining_weight_grams, never set directly.
const (
	StatusUnopened = "unopened"
	StatusOpened   = "opened"
	StatusDepleted = "depleted"
)

// Spool represents one filament spool owned by a user
type Spool struct {
	common.BaseModel
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	BrandID    uuid.UUID `json:"brand_id" gorm:"type:uuid;not null"`
	MaterialID uuid.UUID `json:"material_id" gorm:"type:uuid;not null"`

	ColorName string `json:"color_name" gorm:"size:100;not null"`
	// ColorHex may hold several comma-joined hex codes for multicolor filament
	ColorHex string `json:"color_hex,omitempty" gorm:"size:100"`

	TotalWeightGrams     float64 `json:"total_weight_grams" gorm:"type:decimal(10,2);not null"`
	RemainingWeightGrams float64 `json:"remaining_weight_grams" gorm:"type:decimal(10,2);not null"`

	Price       float64    `json:"price" gorm:"type:decimal(10,2)"`
	PurchasedAt *time.Time `json:"purchased_at,omitempty"`

	IsOpened   bool       `json:"is_opened" gorm:"not null;default:false"`
	OpenedAt   *time.Time `json:"opened_at,omitempty"`
	DepletedAt *time.Time `json:"depleted_at,omitempty"`

	Notes string `json:"notes,omitempty" gorm:"type:text"`

	// Derived, populated before every response
	Status string `json:"status" gorm:"-"`

	// Relations
	Brand    catalog.Brand    `json:"brand,omitempty" gorm:"foreignKey:BrandID"`
	Material catalog.Material `json:"material,omitempty" gorm:"foreignKey:MaterialID"`
}

// DeriveStatus computes the lifecycle status from the authoritative
// fields. A spool with zero remaining weight is depleted no matter
// whether it was ever explicitly opened.
func (s *Spool) DeriveStatus() string {
	if s.RemainingWeightGrams <= 0 {
		return StatusDepleted
	}
	if s.IsOpened {
		return StatusOpened
	}
	return StatusUnopened
}

// SpoolUsage is one entry in a spool's usage ledger
type SpoolUsage struct {
	common.BaseModel
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	SpoolID     uuid.UUID `json:"spool_id" gorm:"type:uuid;not null;index"`
	AmountGrams float64   `json:"amount_grams" gorm:"type:decimal(10,2);not null"`
	UsedAt      time.Time `json:"used_at" gorm:"not null"`
	Project     string    `json:"project,omitempty" gorm:"size:255"`
}

// CreateSpoolRequest represents the request to register one spool
type CreateSpoolRequest struct {
	BrandID     uuid.UUID  `json:"brand_id" binding:"required"`
	MaterialID  uuid.UUID  `json:"material_id" binding:"required"`
	ColorName   string     `json:"color_name" binding:"required"`
	ColorHex    string     `json:"color_hex"`
	WeightGrams float64    `json:"weight_grams" binding:"required,gt=0"`
	Price       float64    `json:"price"`
	PurchasedAt *time.Time `json:"purchased_at"`
	IsOpened    bool       `json:"is_opened"`
	OpenedAt    *time.Time `json:"opened_at"`
	Notes       string     `json:"notes"`
}

// BatchCreateRequest registers several identical spools in one call
type BatchCreateRequest struct {
	CreateSpoolRequest
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// RecordUsageRequest appends a ledger entry to one spool
type RecordUsageRequest struct {
	AmountGrams float64    `json:"amount_grams" binding:"required,gt=0"`
	UsedAt      *time.Time `json:"used_at"`
	Project     string     `json:"project"`
}

// UpdateUsageRequest edits an existing ledger entry
type UpdateUsageRequest struct {
	AmountGrams *float64   `json:"amount_grams"`
	UsedAt      *time.Time `json:"used_at"`
	Project     *string    `json:"project"`
}

// MarkOpenedRequest marks a spool as opened, optionally backdated
type MarkOpenedRequest struct {
	OpenedAt *time.Time `json:"opened_at"`
}

// UsageResult carries the full spool state after a ledger mutation,
// plus the soft over-consumption warning when one applies.
type UsageResult struct {
	Spool   *Spool      `json:"spool"`
	Usage   *SpoolUsage `json:"usage,omitempty"`
	Warning string      `json:"warning,omitempty"`
}
