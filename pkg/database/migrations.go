package database

import (
	"printstock/internal/accessory"
	"printstock/internal/auth"
	"printstock/internal/catalog"
	"printstock/internal/spool"

	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB) error {
	// Auto-migrate all models
	err := db.AutoMigrate(
		&auth.User{},
		// Catalog models
		&catalog.Brand{},
		&catalog.Material{},
		&catalog.AccessoryCategory{},
		// Spool models
		&spool.Spool{},
		&spool.SpoolUsage{},
		// Accessory models
		&accessory.Accessory{},
		&accessory.AccessoryUsage{},
	)
	if err != nil {
		return err
	}

	if err := createInventoryIndexes(db); err != nil {
		return err
	}

	return createLedgerIndexes(db)
}

// Inventory-specific database indexes
func createInventoryIndexes(db *gorm.DB) error {
	// Index for spools by owner
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_spools_user
		ON spools (user_id, created_at DESC)
	`).Error; err != nil {
		return err
	}

	// Index for accessories by owner
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_accessories_user
		ON accessories (user_id, created_at DESC)
	`).Error; err != nil {
		return err
	}

	// Index for the replacement-cycle alert scan
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_accessories_replacement
		ON accessories (user_id, replacement_cycle_days)
		WHERE replacement_cycle_days IS NOT NULL
	`).Error; err != nil {
		return err
	}

	return nil
}

// Ledger-specific database indexes
func createLedgerIndexes(db *gorm.DB) error {
	// Replay reads one spool's full ledger on every mutation
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_spool_usages_spool
		ON spool_usages (spool_id, used_at DESC)
	`).Error; err != nil {
		return err
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_accessory_usages_accessory
		ON accessory_usages (accessory_id, used_at DESC)
	`).Error; err != nil {
		return err
	}

	return nil
}
