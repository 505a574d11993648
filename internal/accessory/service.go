package accessory

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"printstock/internal/catalog"
	"printstock/internal/common"
	"printstock/internal/ledger"
)

// Service handles accessory lifecycle business logic. Unlike filament
// weight, accessory stock is authoritative: consuming more than remains
// is a hard error, and the check and decrement happen under one row
// lock so concurrent callers cannot overdraw together.
type Service struct {
	db     *gorm.DB
	policy ledger.HardReject
}

// NewService creates a new accessory service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create registers an accessory. Quantity establishes both capacity
// and initial remaining stock; usage type defaults to consumable.
func (s *Service) Create(userID uuid.UUID, req *CreateAccessoryRequest) (*Accessory, error) {
	if req.Name == "" {
		return nil, common.Validationf("name is required")
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 1 {
		return nil, common.Validationf("quantity must be at least 1")
	}
	usageType := req.UsageType
	if usageType == "" {
		usageType = UsageTypeConsumable
	}
	if usageType != UsageTypeConsumable && usageType != UsageTypeDurable {
		return nil, common.Validationf("usage type must be %q or %q", UsageTypeConsumable, UsageTypeDurable)
	}
	if req.LowStockThreshold != nil && *req.LowStockThreshold < 0 {
		return nil, common.Validationf("low stock threshold cannot be negative")
	}
	if req.ReplacementCycleDays != nil && *req.ReplacementCycleDays < 1 {
		return nil, common.Validationf("replacement cycle must be at least 1 day")
	}

	var accessory Accessory
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := catalog.ResolveCategory(tx, userID, req.CategoryID); err != nil {
			return err
		}

		accessory = Accessory{
			UserID:               userID,
			CategoryID:           req.CategoryID,
			Name:                 req.Name,
			Brand:                req.Brand,
			Model:                req.Model,
			Price:                req.Price,
			PurchasedAt:          req.PurchasedAt,
			Quantity:             quantity,
			RemainingQuantity:    quantity,
			ReplacementCycleDays: req.ReplacementCycleDays,
			LowStockThreshold:    req.LowStockThreshold,
			UsageType:            usageType,
			Notes:                req.Notes,
		}
		if err := tx.Create(&accessory).Error; err != nil {
			return fmt.Errorf("failed to create accessory: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(userID, accessory.ID)
}

// List returns all accessories for this owner.
func (s *Service) List(userID uuid.UUID) ([]Accessory, error) {
	var accessories []Accessory
	if err := s.db.Preload("Category").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&accessories).Error; err != nil {
		return nil, fmt.Errorf("failed to list accessories: %w", err)
	}
	for i := range accessories {
		accessories[i].Status = DeriveStatus(accessories[i].RemainingQuantity, accessories[i].LowStockThreshold, accessories[i].InUseStartedAt)
	}
	return accessories, nil
}

// Get returns one accessory for this owner.
func (s *Service) Get(userID, accessoryID uuid.UUID) (*Accessory, error) {
	return s.reload(userID, accessoryID)
}

// RecordUsage consumes stock. The remaining-quantity check and the
// decrement are one atomic unit under the row lock; a quantity beyond
// remaining stock fails without writing anything.
func (s *Service) RecordUsage(userID, accessoryID uuid.UUID, req *RecordUsageRequest) (*UsageResult, error) {
	var usage AccessoryUsage
	err := s.db.Transaction(func(tx *gorm.DB) error {
		accessory, err := s.lockAccessory(tx, userID, accessoryID)
		if err != nil {
			return err
		}

		if err := s.policy.Check(accessory.RemainingQuantity, req.Quantity); err != nil {
			return err
		}

		usedAt := time.Now()
		if req.UsedAt != nil {
			usedAt = *req.UsedAt
		}
		usage = AccessoryUsage{
			UserID:      userID,
			AccessoryID: accessory.ID,
			UsedAt:      usedAt,
			Quantity:    req.Quantity,
			Purpose:     req.Purpose,
		}
		if err := tx.Create(&usage).Error; err != nil {
			return fmt.Errorf("failed to create usage record: %w", err)
		}

		accessory.RemainingQuantity -= req.Quantity
		if err := tx.Save(accessory).Error; err != nil {
			return fmt.Errorf("failed to update accessory: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	accessory, err := s.reload(userID, accessoryID)
	if err != nil {
		return nil, err
	}
	return &UsageResult{Accessory: accessory, Usage: &usage}, nil
}

// ListUsage returns the usage ledger for one accessory.
func (s *Service) ListUsage(userID, accessoryID uuid.UUID) ([]AccessoryUsage, error) {
	if _, err := s.reload(userID, accessoryID); err != nil {
		return nil, err
	}
	var records []AccessoryUsage
	if err := s.db.Where("accessory_id = ? AND user_id = ?", accessoryID, userID).
		Order("used_at DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list usage records: %w", err)
	}
	return records, nil
}

// StartUsing opens an exclusive-use session. Only durable accessories
// can be checked out, and only from the available state.
func (s *Service) StartUsing(userID, accessoryID uuid.UUID) (*Accessory, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		accessory, err := s.lockAccessory(tx, userID, accessoryID)
		if err != nil {
			return err
		}

		if accessory.UsageType != UsageTypeDurable {
			return common.Conflictf("Only durable accessories can be marked as in use")
		}

		status := DeriveStatus(accessory.RemainingQuantity, accessory.LowStockThreshold, accessory.InUseStartedAt)
		if status == StatusInUse {
			return common.Conflictf("Accessory is already in use")
		}
		if !canTransition(status, StatusInUse) {
			return common.Conflictf("Accessory is not available")
		}

		now := time.Now()
		accessory.InUseStartedAt = &now
		if err := tx.Save(accessory).Error; err != nil {
			return fmt.Errorf("failed to start using accessory: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(userID, accessoryID)
}

// StopUsing closes the session, records exactly one ledger entry with
// the elapsed duration, and returns the accessory to count-derived
// status.
func (s *Service) StopUsing(userID, accessoryID uuid.UUID, req *StopUsingRequest) (*UsageResult, error) {
	var usage AccessoryUsage
	err := s.db.Transaction(func(tx *gorm.DB) error {
		accessory, err := s.lockAccessory(tx, userID, accessoryID)
		if err != nil {
			return err
		}

		if accessory.InUseStartedAt == nil {
			return common.Conflictf("Accessory is not in use")
		}

		now := time.Now()
		duration := int(now.Sub(*accessory.InUseStartedAt).Minutes())
		if duration < 0 {
			duration = 0
		}

		usage = AccessoryUsage{
			UserID:          userID,
			AccessoryID:     accessory.ID,
			UsedAt:          now,
			DurationMinutes: &duration,
			Purpose:         req.Notes,
		}
		if err := tx.Create(&usage).Error; err != nil {
			return fmt.Errorf("failed to create session record: %w", err)
		}

		accessory.InUseStartedAt = nil
		// Save skips nil-ing the column via struct updates, so clear it
		// explicitly.
		if err := tx.Model(accessory).Update("in_use_started_at", nil).Error; err != nil {
			return fmt.Errorf("failed to stop using accessory: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	accessory, err := s.reload(userID, accessoryID)
	if err != nil {
		return nil, err
	}
	return &UsageResult{Accessory: accessory, Usage: &usage}, nil
}

// Restock adds units, raising both capacity and remaining stock, and
// brings low-stock or depleted accessories back toward available.
func (s *Service) Restock(userID, accessoryID uuid.UUID, req *RestockRequest) (*Accessory, error) {
	if req.Quantity < 1 {
		return nil, common.Validationf("restock quantity must be at least 1")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		accessory, err := s.lockAccessory(tx, userID, accessoryID)
		if err != nil {
			return err
		}

		if accessory.InUseStartedAt != nil {
			return common.Conflictf("Cannot restock accessory that is in use")
		}

		accessory.Quantity += req.Quantity
		accessory.RemainingQuantity += req.Quantity
		if err := tx.Save(accessory).Error; err != nil {
			return fmt.Errorf("failed to restock accessory: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(userID, accessoryID)
}

// MarkReplaced records that the accessory was replaced, anchoring the
// replacement-cycle alert.
func (s *Service) MarkReplaced(userID, accessoryID uuid.UUID, req *MarkReplacedRequest) (*Accessory, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		accessory, err := s.lockAccessory(tx, userID, accessoryID)
		if err != nil {
			return err
		}

		replacedAt := time.Now()
		if req.ReplacedAt != nil {
			replacedAt = *req.ReplacedAt
		}
		accessory.LastReplacedAt = &replacedAt
		if err := tx.Save(accessory).Error; err != nil {
			return fmt.Errorf("failed to mark accessory replaced: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(userID, accessoryID)
}

// Delete removes an accessory and its usage history. An accessory that
// is checked out cannot be deleted, whatever its usage type.
func (s *Service) Delete(userID, accessoryID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		accessory, err := s.lockAccessory(tx, userID, accessoryID)
		if err != nil {
			return err
		}

		if accessory.InUseStartedAt != nil {
			return common.Conflictf("Cannot delete accessory that is in use")
		}

		if err := tx.Where("accessory_id = ?", accessory.ID).Delete(&AccessoryUsage{}).Error; err != nil {
			return fmt.Errorf("failed to delete usage records: %w", err)
		}
		if err := tx.Delete(accessory).Error; err != nil {
			return fmt.Errorf("failed to delete accessory: %w", err)
		}
		return nil
	})
}

// Alerts is a read-only projection over all of the owner's
// accessories: replacement cycles that have elapsed, and stock at or
// below the low-stock threshold. No side effects.
func (s *Service) Alerts(userID uuid.UUID) (*AlertsResponse, error) {
	var accessories []Accessory
	if err := s.db.Preload("Category").
		Where("user_id = ?", userID).
		Find(&accessories).Error; err != nil {
		return nil, fmt.Errorf("failed to load accessories: %w", err)
	}

	now := time.Now()
	resp := &AlertsResponse{
		ReplacementDue: []Alert{},
		StockAlerts:    []Alert{},
	}
	for i := range accessories {
		a := &accessories[i]
		a.Status = DeriveStatus(a.RemainingQuantity, a.LowStockThreshold, a.InUseStartedAt)

		if a.ReplacementCycleDays != nil {
			anchor := a.CreatedAt
			if a.LastReplacedAt != nil {
				anchor = *a.LastReplacedAt
			}
			if !now.Before(anchor.AddDate(0, 0, *a.ReplacementCycleDays)) {
				resp.ReplacementDue = append(resp.ReplacementDue, Alert{Accessory: *a, Reason: AlertReplacementDue})
			}
		}

		switch a.Status {
		case StatusLowStock:
			resp.StockAlerts = append(resp.StockAlerts, Alert{Accessory: *a, Reason: AlertLowStock})
		case StatusDepleted:
			resp.StockAlerts = append(resp.StockAlerts, Alert{Accessory: *a, Reason: AlertDepleted})
		}
	}
	return resp, nil
}

// Helper methods

// lockAccessory loads an accessory under a row lock scoped to its owner.
func (s *Service) lockAccessory(tx *gorm.DB, userID, accessoryID uuid.UUID) (*Accessory, error) {
	var accessory Accessory
	if err := common.LockForUpdate(tx).
		Where("id = ? AND user_id = ?", accessoryID, userID).
		First(&accessory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFoundf("accessory not found")
		}
		return nil, fmt.Errorf("failed to find accessory: %w", err)
	}
	return &accessory, nil
}

// reload fetches the current accessory state with relations and the
// derived status filled in.
func (s *Service) reload(userID, accessoryID uuid.UUID) (*Accessory, error) {
	var accessory Accessory
	if err := s.db.Preload("Category").
		Where("id = ? AND user_id = ?", accessoryID, userID).
		First(&accessory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFoundf("accessory not found")
		}
		return nil, fmt.Errorf("failed to load accessory: %w", err)
	}
	accessory.Status = DeriveStatus(accessory.RemainingQuantity, accessory.LowStockThreshold, accessory.InUseStartedAt)
	return &accessory, nil
}
