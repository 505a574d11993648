package catalog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"printstock/internal/common"
)

// Service handles reference data owned by a single user. The inventory
// engines depend on the Resolve helpers to validate brand, material and
// category references inside their own transactions.
type Service struct {
	db *gorm.DB
}

// NewService creates a new catalog service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ResolveBrand checks that the brand exists for this owner.
func ResolveBrand(tx *gorm.DB, userID, brandID uuid.UUID) (*Brand, error) {
	var brand Brand
	if err := tx.Where("id = ? AND user_id = ?", brandID, userID).First(&brand).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFoundf("brand not found")
		}
		return nil, fmt.Errorf("failed to resolve brand: %w", err)
	}
	return &brand, nil
}

// ResolveMaterial checks that the material exists for this owner.
func ResolveMaterial(tx *gorm.DB, userID, materialID uuid.UUID) (*Material, error) {
	var material Material
	if err := tx.Where("id = ? AND user_id = ?", materialID, userID).First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFoundf("material not found")
		}
		return nil, fmt.Errorf("failed to resolve material: %w", err)
	}
	return &material, nil
}

// ResolveCategory checks that the accessory category exists for this owner.
func ResolveCategory(tx *gorm.DB, userID, categoryID uuid.UUID) (*AccessoryCategory, error) {
	var category AccessoryCategory
	if err := tx.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFoundf("category not found")
		}
		return nil, fmt.Errorf("failed to resolve category: %w", err)
	}
	return &category, nil
}

// CreateBrand adds a brand for this owner.
func (s *Service) CreateBrand(userID uuid.UUID, req *CreateBrandRequest) (*Brand, error) {
	brand := Brand{UserID: userID, Name: req.Name, Website: req.Website}
	if err := s.db.Create(&brand).Error; err != nil {
		return nil, fmt.Errorf("failed to create brand: %w", err)
	}
	return &brand, nil
}

// ListBrands returns all brands for this owner.
func (s *Service) ListBrands(userID uuid.UUID) ([]Brand, error) {
	var brands []Brand
	if err := s.db.Where("user_id = ?", userID).Order("name").Find(&brands).Error; err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	return brands, nil
}

// DeleteBrand removes a brand for this owner.
func (s *Service) DeleteBrand(userID, brandID uuid.UUID) error {
	res := s.db.Where("id = ? AND user_id = ?", brandID, userID).Delete(&Brand{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete brand: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.NotFoundf("brand not found")
	}
	return nil
}

// CreateMaterial adds a material for this owner.
func (s *Service) CreateMaterial(userID uuid.UUID, req *CreateMaterialRequest) (*Material, error) {
	material := Material{
		UserID:     userID,
		Name:       req.Name,
		PrintTempC: req.PrintTempC,
		BedTempC:   req.BedTempC,
	}
	if err := s.db.Create(&material).Error; err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}
	return &material, nil
}

// ListMaterials returns all materials for this owner.
func (s *Service) ListMaterials(userID uuid.UUID) ([]Material, error) {
	var materials []Material
	if err := s.db.Where("user_id = ?", userID).Order("name").Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return materials, nil
}

// DeleteMaterial removes a material for this owner.
func (s *Service) DeleteMaterial(userID, materialID uuid.UUID) error {
	res := s.db.Where("id = ? AND user_id = ?", materialID, userID).Delete(&Material{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete material: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.NotFoundf("material not found")
	}
	return nil
}

// CreateCategory adds an accessory category for this owner.
func (s *Service) CreateCategory(userID uuid.UUID, req *CreateCategoryRequest) (*AccessoryCategory, error) {
	category := AccessoryCategory{UserID: userID, Name: req.Name}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return &category, nil
}

// ListCategories returns all accessory categories for this owner.
func (s *Service) ListCategories(userID uuid.UUID) ([]AccessoryCategory, error) {
	var categories []AccessoryCategory
	if err := s.db.Where("user_id = ?", userID).Order("name").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// DeleteCategory removes an accessory category for this owner.
func (s *Service) DeleteCategory(userID, categoryID uuid.UUID) error {
	res := s.db.Where("id = ? AND user_id = ?", categoryID, userID).Delete(&AccessoryCategory{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.NotFoundf("category not found")
	}
	return nil
}
