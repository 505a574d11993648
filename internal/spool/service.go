package spool

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

// Service handles filament spool business logic. Remaining weight is
// always recomputed by replaying the spool's full usage ledger, so
// create, update and delete of usage records share one code path.
type Service struct {
	db     *gorm.DB
	policy ledger.SoftClamp
}

// NewService creates a new spool service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create registers one spool. Brand and material references are
// resolved under the same owner; an unknown reference fails the call.
func (s *Service) Create(userID uuid.UUID, req *CreateSpoolRequest) (*Spool, error) {
	if req.WeightGrams <= 0 {
		return nil, common.Validationf("weight must be positive")
	}

	var spool *Spool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		built, err := s.buildSpool(tx, userID, req)
		if err != nil {
			return err
		}
		if err := tx.Create(built).Error; err != nil {
			return fmt.Errorf("failed to create spool: %w", err)
		}
		spool = built
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(userID, spool.ID)
}

// BatchCreate registers several identical spools atomically: either
// all quantity rows are created or none are.
func (s *Service) BatchCreate(userID uuid.UUID, req *BatchCreateRequest) ([]Spool, error) {
	if req.Quantity < 1 {
		return nil, common.Validationf("quantity must be at least 1")
	}
	if req.WeightGrams <= 0 {
		return nil, common.Validationf("weight must be positive")
	}

	var created []Spool
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Resolve references once, inside the transaction that writes
		// the rows, so a stale reference rolls the whole batch back.
		if _, err := catalog.ResolveBrand(tx, userID, req.BrandID); err != nil {
			return err
		}
		if _, err := catalog.ResolveMaterial(tx, userID, req.MaterialID); err != nil {
			return err
		}

		for i := 0; i < req.Quantity; i++ {
			built, err := s.buildSpool(tx, userID, &req.CreateSpoolRequest)
			if err != nil {
				return err
			}
			if err := tx.Create(built).Error; err != nil {
				return fmt.Errorf("failed to create spool %d of %d: %w", i+1, req.Quantity, err)
			}
			created = append(created, *built)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range created {
		created[i].Status = created[i].DeriveStatus()
	}
	return created, nil
}

// List returns all spools for this owner.
func (s *Service) List(userID uuid.UUID) ([]Spool, error) {
	var spools []Spool
	if err := s.db.Preload("Brand").Preload("Material").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&spools).Error; err != nil {
		return nil, fmt.Errorf("failed to list spools: %w", err)
	}
	for i := range spools {
		spools[i].Status = spools[i].DeriveStatus()
	}
	return spools, nil
}

// Get returns one spool for this owner.
func (s *Service) Get(userID, spoolID uuid.UUID) (*Spool, error) {
	return s.reload(userID, spoolID)
}

// Delete removes a spool and its usage ledger.
func (s *Service) Delete(userID, spoolID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var spool Spool
		if err := common.LockForUpdate(tx).
			Where("id = ? AND user_id = ?", spoolID, userID).
			First(&spool).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.NotFoundf("spool not found")
			}
			return fmt.Errorf("failed to find spool: %w", err)
		}
		if err := tx.Where("spool_id = ?", spool.ID).Delete(&SpoolUsage{}).Error; err != nil {
			return fmt.Errorf("failed to delete usage records: %w", err)
		}
		if err := tx.Delete(&spool).Error; err != nil {
			return fmt.Errorf("failed to delete spool: %w", err)
		}
		return nil
	})
}

// RecordUsage appends a ledger entry and recomputes remaining weight.
// Over-consumption never fails: remaining clamps at zero and the
// result carries a warning instead.
func (s *Service) RecordUsage(userID, spoolID uuid.UUID, req *RecordUsageRequest) (*UsageResult, error) {
	if req.AmountGrams <= 0 {
		return nil, common.Validationf("usage amount must be positive")
	}

	var usage SpoolUsage
	var warning string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		spool, err := s.lockSpool(tx, userID, spoolID)
		if err != nil {
			return err
		}

		usedAt := time.Now()
		if req.UsedAt != nil {
			usedAt = *req.UsedAt
		}
		usage = SpoolUsage{
			UserID:      userID,
			SpoolID:     spool.ID,
			AmountGrams: req.AmountGrams,
			UsedAt:      usedAt,
			Project:     req.Project,
		}
		if err := tx.Create(&usage).Error; err != nil {
			return fmt.Errorf("failed to create usage record: %w", err)
		}

		warning, err = s.recompute(tx, spool)
		return err
	})
	if err != nil {
		return nil, err
	}

	spool, err := s.reload(userID, spoolID)
	if err != nil {
		return nil, err
	}
	return &UsageResult{Spool: spool, Usage: &usage, Warning: warning}, nil
}

// UpdateUsage edits a ledger entry and recomputes the parent spool by
// replaying the full, current ledger.
func (s *Service) UpdateUsage(userID, usageID uuid.UUID, req *UpdateUsageRequest) (*UsageResult, error) {
	if req.AmountGrams != nil && *req.AmountGrams <= 0 {
		return nil, common.Validationf("usage amount must be positive")
	}

	var usage SpoolUsage
	var spoolID uuid.UUID
	var warning string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", usageID, userID).First(&usage).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.NotFoundf("usage record not found")
			}
			return fmt.Errorf("failed to find usage record: %w", err)
		}
		spoolID = usage.SpoolID

		spool, err := s.lockSpool(tx, userID, spoolID)
		if err != nil {
			return err
		}

		if req.AmountGrams != nil {
			usage.AmountGrams = *req.AmountGrams
		}
		if req.UsedAt != nil {
			usage.UsedAt = *req.UsedAt
		}
		if req.Project != nil {
			usage.Project = *req.Project
		}
		if err := tx.Save(&usage).Error; err != nil {
			return fmt.Errorf("failed to update usage record: %w", err)
		}

		warning, err = s.recompute(tx, spool)
		return err
	})
	if err != nil {
		return nil, err
	}

	spool, err := s.reload(userID, spoolID)
	if err != nil {
		return nil, err
	}
	return &UsageResult{Spool: spool, Usage: &usage, Warning: warning}, nil
}

// DeleteUsage removes a ledger entry and recomputes the parent spool.
// Replay means the restored remaining weight can never exceed the
// spool's total weight.
func (s *Service) DeleteUsage(userID, usageID uuid.UUID) (*UsageResult, error) {
	var spoolID uuid.UUID
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var usage SpoolUsage
		if err := tx.Where("id = ? AND user_id = ?", usageID, userID).First(&usage).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.NotFoundf("usage record not found")
			}
			return fmt.Errorf("failed to find usage record: %w", err)
		}
		spoolID = usage.SpoolID

		spool, err := s.lockSpool(tx, userID, spoolID)
		if err != nil {
			return err
		}

		if err := tx.Delete(&usage).Error; err != nil {
			return fmt.Errorf("failed to delete usage record: %w", err)
		}

		_, err = s.recompute(tx, spool)
		return err
	})
	if err != nil {
		return nil, err
	}

	spool, err := s.reload(userID, spoolID)
	if err != nil {
		return nil, err
	}
	return &UsageResult{Spool: spool}, nil
}

// ListUsage returns the usage ledger for one spool.
func (s *Service) ListUsage(userID, spoolID uuid.UUID) ([]SpoolUsage, error) {
	if _, err := s.reload(userID, spoolID); err != nil {
		return nil, err
	}
	var records []SpoolUsage
	if err := s.db.Where("spool_id = ? AND user_id = ?", spoolID, userID).
		Order("used_at DESC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list usage records: %w", err)
	}
	return records, nil
}

// MarkOpened marks a spool as opened. A spool never transitions back
// to unopened. Calling it again with an explicit date overwrites the
// stored opened date; calling it again without one is a no-op.
func (s *Service) MarkOpened(userID, spoolID uuid.UUID, req *MarkOpenedRequest) (*Spool, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		spool, err := s.lockSpool(tx, userID, spoolID)
		if err != nil {
			return err
		}

		if spool.IsOpened && req.OpenedAt == nil {
			return nil
		}

		openedAt := time.Now()
		if req.OpenedAt != nil {
			openedAt = *req.OpenedAt
		}
		spool.IsOpened = true
		spool.OpenedAt = &openedAt
		if err := tx.Save(spool).Error; err != nil {
			return fmt.Errorf("failed to mark spool opened: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.reload(userID, spoolID)
}

// Helper methods

// buildSpool validates references and assembles a new spool row.
func (s *Service) buildSpool(tx *gorm.DB, userID uuid.UUID, req *CreateSpoolRequest) (*Spool, error) {
	if _, err := catalog.ResolveBrand(tx, userID, req.BrandID); err != nil {
		return nil, err
	}
	if _, err := catalog.ResolveMaterial(tx, userID, req.MaterialID); err != nil {
		return nil, err
	}

	spool := Spool{
		UserID:               userID,
		BrandID:              req.BrandID,
		MaterialID:           req.MaterialID,
		ColorName:            req.ColorName,
		ColorHex:             req.ColorHex,
		TotalWeightGrams:     req.WeightGrams,
		RemainingWeightGrams: req.WeightGrams,
		Price:                req.Price,
		PurchasedAt:          req.PurchasedAt,
		Notes:                req.Notes,
	}

	// isOpened == false <=> openedAt == nil. Opened without an explicit
	// date defaults to today's calendar date.
	if req.IsOpened || req.OpenedAt != nil {
		spool.IsOpened = true
		openedAt := calendarDate(time.Now())
		if req.OpenedAt != nil {
			openedAt = *req.OpenedAt
		}
		spool.OpenedAt = &openedAt
	}

	// Each spool in a batch gets its own identity here rather than in
	// BeforeCreate, so the returned slice is usable without reloading.
	spool.ID = uuid.New()
	return &spool, nil
}

// lockSpool loads a spool under a row lock scoped to its owner.
func (s *Service) lockSpool(tx *gorm.DB, userID, spoolID uuid.UUID) (*Spool, error) {
	var spool Spool
	if err := common.LockForUpdate(tx).
		Where("id = ? AND user_id = ?", spoolID, userID).
		First(&spool).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFoundf("spool not found")
		}
		return nil, fmt.Errorf("failed to find spool: %w", err)
	}
	return &spool, nil
}

// recompute replays the spool's full ledger, updates remaining weight
// and the depletion timestamp, and persists the spool. The depletion
// timestamp is captured the first time remaining reaches zero and is
// cleared only when remaining rises above zero again.
func (s *Service) recompute(tx *gorm.DB, spool *Spool) (string, error) {
	var amounts []float64
	if err := tx.Model(&SpoolUsage{}).
		Where("spool_id = ?", spool.ID).
		Pluck("amount_grams", &amounts).Error; err != nil {
		return "", fmt.Errorf("failed to load usage ledger: %w", err)
	}

	remaining, warning := s.policy.Apply(spool.TotalWeightGrams, amounts)
	spool.RemainingWeightGrams = remaining

	if remaining <= 0 {
		if spool.DepletedAt == nil {
			now := time.Now()
			spool.DepletedAt = &now
		}
	} else {
		spool.DepletedAt = nil
	}

	if err := tx.Save(spool).Error; err != nil {
		return "", fmt.Errorf("failed to update spool: %w", err)
	}
	return warning, nil
}

// reload fetches the current spool state with relations and the
// derived status filled in.
func (s *Service) reload(userID, spoolID uuid.UUID) (*Spool, error) {
	var spool Spool
	if err := s.db.Preload("Brand").Preload("Material").
		Where("id = ? AND user_id = ?", spoolID, userID).
		First(&spool).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFoundf("spool not found")
		}
		return nil, fmt.Errorf("failed to load spool: %w", err)
	}
	spool.Status = spool.DeriveStatus()
	return &spool, nil
}

// calendarDate truncates a timestamp to its local calendar date.
func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
