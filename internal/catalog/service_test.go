package catalog

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"printstock/internal/common"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Brand{}, &Material{}, &AccessoryCategory{}))
	return db
}

func TestBrandLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID := uuid.New()

	brand, err := svc.CreateBrand(userID, &CreateBrandRequest{Name: "Prusament", Website: "https://prusament.com"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, brand.ID)

	resolved, err := ResolveBrand(db, userID, brand.ID)
	require.NoError(t, err)
	assert.Equal(t, "Prusament", resolved.Name)

	brands, err := svc.ListBrands(userID)
	require.NoError(t, err)
	assert.Len(t, brands, 1)

	require.NoError(t, svc.DeleteBrand(userID, brand.ID))
	assert.True(t, errors.Is(svc.DeleteBrand(userID, brand.ID), common.ErrNotFound))
}

func TestResolveScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	owner := uuid.New()
	stranger := uuid.New()

	brand, err := svc.CreateBrand(owner, &CreateBrandRequest{Name: "eSun"})
	require.NoError(t, err)
	material, err := svc.CreateMaterial(owner, &CreateMaterialRequest{Name: "PETG", PrintTempC: 240, BedTempC: 80})
	require.NoError(t, err)
	category, err := svc.CreateCategory(owner, &CreateCategoryRequest{Name: "Belts"})
	require.NoError(t, err)

	_, err = ResolveBrand(db, stranger, brand.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
	_, err = ResolveMaterial(db, stranger, material.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))
	_, err = ResolveCategory(db, stranger, category.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	// Lists are owner-scoped as well
	materials, err := svc.ListMaterials(stranger)
	require.NoError(t, err)
	assert.Empty(t, materials)
}

func TestDeleteUnknownReferences(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	userID := uuid.New()

	assert.True(t, errors.Is(svc.DeleteMaterial(userID, uuid.New()), common.ErrNotFound))
	assert.True(t, errors.Is(svc.DeleteCategory(userID, uuid.New()), common.ErrNotFound))
}
