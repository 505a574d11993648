package catalog

import (
	"github.com/google/uuid"

	"printstock/internal/common"
)

// Brand represents a filament manufacturer known to one user
type Brand struct {
	common.BaseModel
	UserID  uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Name    string    `json:"name" gorm:"size:100;not null"`
	Website string    `json:"website,omitempty" gorm:"size:255"`
}

// Material represents a filament type (PLA, PETG, ABS, TPU...)
type Material struct {
	common.BaseModel
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Name   string    `json:"name" gorm:"size:100;not null"`
	// Typical print/bed temperatures, informational only
	PrintTempC int `json:"print_temp_c,omitempty"`
	BedTempC   int `json:"bed_temp_c,omitempty"`
}

// AccessoryCategory classifies printer accessories (nozzle, belt,
// build plate...)
type AccessoryCategory struct {
	common.BaseModel
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Name   string    `json:"name" gorm:"size:100;not null"`
}

// CreateBrandRequest represents the request to add a brand
type CreateBrandRequest struct {
	Name    string `json:"name" binding:"required"`
	Website string `json:"website"`
}

// CreateMaterialRequest represents the request to add a material
type CreateMaterialRequest struct {
	Name       string `json:"name" binding:"required"`
	PrintTempC int    `json:"print_temp_c"`
	BedTempC   int    `json:"bed_temp_c"`
}

// CreateCategoryRequest represents the request to add a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}
