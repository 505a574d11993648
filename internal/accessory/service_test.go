package accessory

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"printstock/internal/catalog"
	"printstock/internal/common"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalog.AccessoryCategory{}, &Accessory{}, &AccessoryUsage{}))
	return db
}

func seedCategory(t *testing.T, db *gorm.DB, userID uuid.UUID) uuid.UUID {
	t.Helper()
	category := catalog.AccessoryCategory{UserID: userID, Name: "Nozzles"}
	require.NoError(t, db.Create(&category).Error)
	return category.ID
}

func createAccessory(t *testing.T, svc *Service, userID uuid.UUID, req *CreateAccessoryRequest) *Accessory {
	t.Helper()
	accessory, err := svc.Create(userID, req)
	require.NoError(t, err)
	return accessory
}

func TestCreateAccessoryDefaults(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID := uuid.New()
	categoryID := seedCategory(t, db, userID)

	accessory := createAccessory(t, svc, userID, &CreateAccessoryRequest{
		CategoryID: categoryID,
		Name:       "0.4mm brass nozzle",
	})

	assert.Equal(t, 1, accessory.Quantity)
	assert.Equal(t, 1, accessory.RemainingQuantity)
	assert.Equal(t, UsageTypeConsumable, accessory.UsageType)
	assert.Equal(t, StatusAvailable, accessory.Status)
	assert.Equal(t, "Nozzles", accessory.Category.Name)
}

func TestCreateAccessoryValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID := uuid.New()
	categoryID := seedCategory(t, db, userID)

	_, err := svc.Create(userID, &CreateAccessoryRequest{CategoryID: categoryID})
	assert.True(t, errors.Is(err, common.ErrValidation))

	_, err = svc.Create(userID, &CreateAccessoryRequest{
		CategoryID: categoryID,
		Name:       "nozzle",
		UsageType:  "rental",
	})
	assert.True(t, errors.Is(err, common.ErrValidation))

	_, err = svc.Create(userID, &CreateAccessoryRequest{
		CategoryID: uuid.New(),
		Name:       "nozzle",
	})
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestRecordUsageEnforcesStock(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID := uuid.New()
	categoryID := seedCategory(t, db, userID)
	accessory := createAccessory(t, svc, userID, &CreateAccessoryRequest{
		CategoryID:        categoryID,
		Name:              "PTFE tube clip",
		Quantity:          10,
		LowStockThreshold: intPtr(3),
	})

	res, err := svc.RecordUsage(userID, accessory.ID, &RecordUsageRequest{Quantity: 7})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Accessory.RemainingQuantity)
	assert.Equal(t, StatusLowStock, res.Accessory.Status)

	res, err = svc.RecordUsage(userID, accessory.ID, &RecordUsageRequest{Quantity: 3})
	require.NoError(t, err)
	assert.Zero(t, res.Accessory.RemainingQuantity)
	assert.Equal(t, StatusDepleted, res.Accessory.Status)

	// Consuming beyond remaining stock is a hard error and writes nothing
	_, err = svc.RecordUsage(userID, accessory.ID, &RecordUsageRequest{Quantity: 1})
	assert.True(t, errors.Is(err, common.ErrConflict))

	got, err := svc.Get(userID, accessory.ID)
	require.NoError(t, err)
	assert.Zero(t, got.RemainingQuantity)

	records, err := svc.ListUsage(userID, accessory.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestRecordUsageRejectedNotPartial(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID := uuid.New()
	categoryID := seedCategory(t, db, userID)
	accessory := createAccessory(t, svc, userID, &CreateAccessoryRequest{
		CategoryID: categoryID,
		Name:       "glue stick",
		Quantity:   5,
	})

	_, err := svc.RecordUsage(userID, accessory.ID, &RecordUsageRequest{Quantity: 6})
	assert.True(t, errors.Is(err, common.ErrConflict))

	got, err := svc.Get(userID, accessory.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.RemainingQuantity, "a rejected usage must not consume anything")

	records, err := svc.ListUsage(userID, accessory.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestStartStopSession(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID := uuid.New()
	categoryID := seedCategory(t, db, userID)
	accessory := createAccessory(t, svc, userID, &CreateAccessoryRequest{
		CategoryID: categoryID,
		Name:       "hardened steel nozzle",
		UsageType:  UsageTypeDurable,
	})

	started, err := svc.StartUsing(userID, accessory.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusInUse, started.Status)
	require.NotNil(t, started.InUseStartedAt)

	// A second checkout of the same accessory is rejected
	_, err = svc.StartUsing(userID, accessory.ID)
	assert.True(t, errors.Is(err, common.ErrConflict))

	res, err := svc.StopUsing(userID, accessory.ID, &StopUsingRequest{Notes: "benchy"})
	require.NoError(t, err)
	assert.Equal(t, StatusAvailable, res.Accessory.Status)
	assert.Nil(t, res.Accessory.InUseStartedAt)

	// Exactly one session record, with a non-negative duration
	require.NotNil(t, res.Usage)
	require.NotNil(t, res.Usage.DurationMinutes)
	assert.GreaterOrEqual(t, *res.Usage.DurationMinutes, 0)
	assert.Equal(t, "benchy", res.Usage.Purpose)

	records, err := svc.ListUsage(userID, accessory.ID)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	_, err = svc.StopUsing(userID, accessory.ID, &StopUsingRequest{})
	assert.True(t, errors.Is(err, common.ErrConflict))
}

func TestStartUsingGuards(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID := uuid.New()
	categoryID := seedCategory(t, db, userID)

	consumable := createAccessory(t, svc, userID, &CreateAccessoryRequest{
		CategoryID: categoryID,
		Name:       "glue stick",
		Quantity:   5,
	})
	_, err := svc.StartUsing(userID, consumable.ID)
	assert.True(t, errors.Is(err, common.ErrConflict), "consumables cannot be checked out")

	durable := createAccessory(t, svc, userID, &CreateAccessoryRequest{
		CategoryID: categoryID,
		Name:       "flexible build plate",
		UsageType:  UsageTypeDurable,
	})
	_, err = svc.RecordUsage(userID, durable.ID, &RecordUsageRequest{Quantity: 1})
	require.NoError(t, err)

	// Depleted durables are not available for checkout
	_, err = svc.StartUsing(userID, durable.ID)
	assert.True(t, errors.Is(err, common.ErrConflict))
}

func TestRestock(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID := uuid.New()
	categoryID := seedCategory(t, db, userID)
	accessory := createAccessory(t, svc, userID, &CreateAccessoryRequest{
		CategoryID:        categoryID,
		Name:              "PTFE tube clip",
		Quantity:          4,
		LowStockThreshold: intPtr(2),
	})

	_, err := svc.RecordUsage(userID, accessory.ID, &RecordUsageRequest{Quantity: 4})
	require.NoError(t, err)

	restocked, err := svc.Restock(userID, accessory.ID, &RestockRequest{Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 9, restocked.Quantity)
	assert.Equal(t, 5, restocked.RemainingQuantity)
	assert.Equal(t, StatusAvailable, restocked.Status)
}

func TestRestockRejectedWhileInUse(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID := uuid.New()
	categoryID := seedCategory(t, db, userID)
	accessory := createAccessory(t, svc, userID, &CreateAccessoryRequest{
		CategoryID: categoryID,
		Name:       "hardened steel nozzle",
		UsageType:  UsageTypeDurable,
	})

	_, err := svc.StartUsing(userID, accessory.ID)
	require.NoError(t, err)

	_, err = svc.Restock(userID, accessory.ID, &RestockRequest{Quantity: 1})
	assert.True(t, errors.Is(err, common.ErrConflict))
}

func TestDeleteGuardedByOpenSession(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID := uuid.New()
	categoryID := seedCategory(t, db, userID)
	accessory := createAccessory(t, svc, userID, &CreateAccessoryRequest{
		CategoryID: categoryID,
		Name:       "hardened steel nozzle",
		UsageType:  UsageTypeDurable,
	})

	_, err := svc.StartUsing(userID, accessory.ID)
	require.NoError(t, err)

	err = svc.Delete(userID, accessory.ID)
	assert.True(t, errors.Is(err, common.ErrConflict))

	_, err = svc.Get(userID, accessory.ID)
	require.NoError(t, err, "a guarded delete must not remove the accessory")

	_, err = svc.StopUsing(userID, accessory.ID, &StopUsingRequest{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(userID, accessory.ID))

	_, err = svc.Get(userID, accessory.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	var count int64
	require.NoError(t, db.Model(&AccessoryUsage{}).Where("accessory_id = ?", accessory.ID).Count(&count).Error)
	assert.Zero(t, count, "usage history goes with the accessory")
}

func TestAlerts(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID := uuid.New()
	categoryID := seedCategory(t, db, userID)

	healthy := createAccessory(t, svc, userID, &CreateAccessoryRequest{
		CategoryID:        categoryID,
		Name:              "fresh nozzle",
		Quantity:          10,
		LowStockThreshold: intPtr(3),
	})

	low := createAccessory(t, svc, userID, &CreateAccessoryRequest{
		CategoryID:        categoryID,
		Name:              "clip",
		Quantity:          10,
		LowStockThreshold: intPtr(3),
	})
	_, err := svc.RecordUsage(userID, low.ID, &RecordUsageRequest{Quantity: 7})
	require.NoError(t, err)

	empty := createAccessory(t, svc, userID, &CreateAccessoryRequest{
		CategoryID: categoryID,
		Name:       "glue stick",
		Quantity:   2,
	})
	_, err = svc.RecordUsage(userID, empty.ID, &RecordUsageRequest{Quantity: 2})
	require.NoError(t, err)

	worn := createAccessory(t, svc, userID, &CreateAccessoryRequest{
		CategoryID:           categoryID,
		Name:                 "worn belt",
		ReplacementCycleDays: intPtr(30),
	})
	// Backdate the anchor so the cycle has elapsed
	past := time.Now().AddDate(0, 0, -45)
	require.NoError(t, db.Model(&Accessory{}).Where("id = ?", worn.ID).Update("created_at", past).Error)

	resp, err := svc.Alerts(userID)
	require.NoError(t, err)

	require.Len(t, resp.ReplacementDue, 1)
	assert.Equal(t, worn.ID, resp.ReplacementDue[0].Accessory.ID)
	assert.Equal(t, AlertReplacementDue, resp.ReplacementDue[0].Reason)

	require.Len(t, resp.StockAlerts, 2)
	reasons := map[uuid.UUID]string{}
	for _, alert := range resp.StockAlerts {
		reasons[alert.Accessory.ID] = alert.Reason
	}
	assert.Equal(t, AlertLowStock, reasons[low.ID])
	assert.Equal(t, AlertDepleted, reasons[empty.ID])
	assert.NotContains(t, reasons, healthy.ID)

	// Marking the worn accessory replaced re-anchors the cycle
	_, err = svc.MarkReplaced(userID, worn.ID, &MarkReplacedRequest{})
	require.NoError(t, err)

	resp, err = svc.Alerts(userID)
	require.NoError(t, err)
	assert.Empty(t, resp.ReplacementDue)
}

func TestAccessoryOwnerScoping(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	owner := uuid.New()
	stranger := uuid.New()
	categoryID := seedCategory(t, db, owner)
	accessory := createAccessory(t, svc, owner, &CreateAccessoryRequest{
		CategoryID: categoryID,
		Name:       "nozzle",
		Quantity:   5,
	})

	_, err := svc.Get(stranger, accessory.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	_, err = svc.RecordUsage(stranger, accessory.ID, &RecordUsageRequest{Quantity: 1})
	assert.True(t, errors.Is(err, common.ErrNotFound))

	err = svc.Delete(stranger, accessory.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
