package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"printstock/internal/accessory"
	"printstock/internal/catalog"
	"printstock/internal/spool"
)

// Service builds JSON snapshots of one owner's full inventory and
// uploads them to the object store.
type Service struct {
	db    *gorm.DB
	store *ObjectStore
}

// NewService creates a new export service
func NewService(db *gorm.DB, store *ObjectStore) *Service {
	return &Service{db: db, store: store}
}

// Enabled reports whether an object store is configured.
func (s *Service) Enabled() bool {
	return s.store != nil
}

// Snapshot is the exported document layout
type Snapshot struct {
	ExportedAt  time.Time                   `json:"exported_at"`
	UserID      uuid.UUID                   `json:"user_id"`
	Brands      []catalog.Brand             `json:"brands"`
	Materials   []catalog.Material          `json:"materials"`
	Categories  []catalog.AccessoryCategory `json:"categories"`
	Spools      []spool.Spool               `json:"spools"`
	SpoolUsage  []spool.SpoolUsage          `json:"spool_usage"`
	Accessories []accessory.Accessory       `json:"accessories"`
	AccUsage    []accessory.AccessoryUsage  `json:"accessory_usage"`
}

// Result describes one completed export
type Result struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	SizeBytes   int    `json:"size_bytes"`
	Spools      int    `json:"spools"`
	Accessories int    `json:"accessories"`
}

// Export serializes the owner's inventory and uploads it.
func (s *Service) Export(ctx context.Context, userID uuid.UUID) (*Result, error) {
	snapshot := Snapshot{
		ExportedAt: time.Now(),
		UserID:     userID,
	}

	if err := s.db.Where("user_id = ?", userID).Find(&snapshot.Brands).Error; err != nil {
		return nil, fmt.Errorf("failed to load brands: %w", err)
	}
	if err := s.db.Where("user_id = ?", userID).Find(&snapshot.Materials).Error; err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}
	if err := s.db.Where("user_id = ?", userID).Find(&snapshot.Categories).Error; err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if err := s.db.Where("user_id = ?", userID).Find(&snapshot.Spools).Error; err != nil {
		return nil, fmt.Errorf("failed to load spools: %w", err)
	}
	if err := s.db.Where("user_id = ?", userID).Find(&snapshot.SpoolUsage).Error; err != nil {
		return nil, fmt.Errorf("failed to load spool usage: %w", err)
	}
	if err := s.db.Where("user_id = ?", userID).Find(&snapshot.Accessories).Error; err != nil {
		return nil, fmt.Errorf("failed to load accessories: %w", err)
	}
	if err := s.db.Where("user_id = ?", userID).Find(&snapshot.AccUsage).Error; err != nil {
		return nil, fmt.Errorf("failed to load accessory usage: %w", err)
	}

	for i := range snapshot.Spools {
		snapshot.Spools[i].Status = snapshot.Spools[i].DeriveStatus()
	}
	for i := range snapshot.Accessories {
		a := &snapshot.Accessories[i]
		a.Status = accessory.DeriveStatus(a.RemainingQuantity, a.LowStockThreshold, a.InUseStartedAt)
	}

	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", userID, time.Now().UTC().Format("20060102-150405"))
	if err := s.store.Put(ctx, key, body, "application/json"); err != nil {
		return nil, err
	}

	return &Result{
		Bucket:      s.store.Bucket(),
		Key:         key,
		SizeBytes:   len(body),
		Spools:      len(snapshot.Spools),
		Accessories: len(snapshot.Accessories),
	}, nil
}
