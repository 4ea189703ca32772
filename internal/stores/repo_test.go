package stores

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sijangmap/marketmap-backend/pkg/db/models"
)

func setupStoresTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	storesTable := `
CREATE TABLE IF NOT EXISTS stores (
  store_id INTEGER PRIMARY KEY AUTOINCREMENT,
  store_name TEXT NOT NULL,
  store_code TEXT,
  zone_number INTEGER,
  phone_number TEXT,
  address TEXT,
  detail_address TEXT,
  x_coordinate INTEGER NOT NULL,
  y_coordinate INTEGER NOT NULL,
  marker_radius INTEGER NOT NULL DEFAULT 10,
  business_hours TEXT,
  description TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_by INTEGER,
  created_at DATETIME,
  updated_at DATETIME
);`
	imagesTable := `
CREATE TABLE IF NOT EXISTS store_images (
  image_id INTEGER PRIMARY KEY AUTOINCREMENT,
  store_id INTEGER NOT NULL,
  image_url TEXT NOT NULL,
  image_type TEXT NOT NULL DEFAULT 'SUB',
  display_order INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  uploaded_at DATETIME
);`
	require.NoError(t, db.Exec(storesTable).Error)
	require.NoError(t, db.Exec(imagesTable).Error)
	return db
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func seedStore(t *testing.T, repo *Repository, dto CreateStoreDTO) *models.Store {
	t.Helper()
	store, err := repo.Create(context.Background(), dto)
	require.NoError(t, err)
	return store
}

func TestListActiveDirectoryOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupStoresTestDB(t))

	seedStore(t, repo, CreateStoreDTO{Name: "Produce Corner", Code: strPtr("B-02"), ZoneNumber: intPtr(2), X: 10, Y: 10})
	seedStore(t, repo, CreateStoreDTO{Name: "Fish Stall", Code: strPtr("A-01"), ZoneNumber: intPtr(1), X: 20, Y: 20})
	seedStore(t, repo, CreateStoreDTO{Name: "Rice Cakes", Code: strPtr("A-03"), ZoneNumber: intPtr(1), X: 30, Y: 30})
	seedStore(t, repo, CreateStoreDTO{Name: "Unzoned Kiosk", X: 40, Y: 40})

	rows, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Fish Stall", rows[0].StoreName)
	assert.Equal(t, "Rice Cakes", rows[1].StoreName)
	assert.Equal(t, "Produce Corner", rows[2].StoreName)
	assert.Equal(t, "Unzoned Kiosk", rows[3].StoreName)
}

func TestListByZone(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupStoresTestDB(t))

	seedStore(t, repo, CreateStoreDTO{Name: "Zone One", ZoneNumber: intPtr(1), X: 10, Y: 10})
	seedStore(t, repo, CreateStoreDTO{Name: "Zone Two", ZoneNumber: intPtr(2), X: 20, Y: 20})

	rows, err := repo.ListByZone(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Zone One", rows[0].StoreName)

	rows, err = repo.ListByZone(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSoftDeleteHidesFromQueries(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupStoresTestDB(t))

	store := seedStore(t, repo, CreateStoreDTO{Name: "Closing Down", Code: strPtr("Z-09"), ZoneNumber: intPtr(3), X: 50, Y: 50})

	require.NoError(t, repo.SoftDelete(ctx, store.StoreID))

	rows, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = repo.FindNearest(ctx, 50, 50)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindActiveByCode(ctx, "Z-09")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Lookup by id still resolves the soft-deleted row.
	found, err := repo.FindByID(ctx, store.StoreID)
	require.NoError(t, err)
	assert.False(t, found.IsActive)
}

func TestSoftDeleteMissingStore(t *testing.T) {
	repo := NewRepository(setupStoresTestDB(t))
	err := repo.SoftDelete(context.Background(), 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindNearestTieBreaksToLowestID(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupStoresTestDB(t))

	first := seedStore(t, repo, CreateStoreDTO{Name: "West Stall", X: 100, Y: 100})
	seedStore(t, repo, CreateStoreDTO{Name: "East Stall", X: 110, Y: 100})

	// (105,100) is 25 squared units from both stores.
	nearest, err := repo.FindNearest(ctx, 105, 100)
	require.NoError(t, err)
	assert.Equal(t, first.StoreID, nearest.StoreID)
}

func TestFindNearestPrefersCloserStore(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupStoresTestDB(t))

	seedStore(t, repo, CreateStoreDTO{Name: "Far Stall", X: 300, Y: 300})
	closest := seedStore(t, repo, CreateStoreDTO{Name: "Close Stall", X: 105, Y: 105})

	nearest, err := repo.FindNearest(ctx, 100, 100)
	require.NoError(t, err)
	assert.Equal(t, closest.StoreID, nearest.StoreID)
}

func TestFindWithinRadiusWindowAndOrdering(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupStoresTestDB(t))

	corner := seedStore(t, repo, CreateStoreDTO{Name: "Corner", X: 140, Y: 140})
	center := seedStore(t, repo, CreateStoreDTO{Name: "Center", X: 101, Y: 100})
	seedStore(t, repo, CreateStoreDTO{Name: "Outside", X: 200, Y: 100})

	rows, err := repo.FindWithinRadius(ctx, 100, 100, 50)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Nearest first; the corner store sits inside the square window even
	// though its euclidean distance exceeds the radius.
	assert.Equal(t, center.StoreID, rows[0].StoreID)
	assert.Equal(t, corner.StoreID, rows[1].StoreID)
}

func TestSearchKeywordMatchesNameCodeDescription(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupStoresTestDB(t))

	seedStore(t, repo, CreateStoreDTO{Name: "Kimchi House", ZoneNumber: intPtr(2), X: 10, Y: 10})
	seedStore(t, repo, CreateStoreDTO{Name: "Dried Goods", Code: strPtr("Kimchi-B1"), ZoneNumber: intPtr(1), X: 20, Y: 20})
	seedStore(t, repo, CreateStoreDTO{Name: "Side Dishes", Description: strPtr("Homemade Kimchi daily"), ZoneNumber: intPtr(3), X: 30, Y: 30})
	seedStore(t, repo, CreateStoreDTO{Name: "Butcher", X: 40, Y: 40})

	rows, err := repo.SearchKeyword(ctx, "Kimchi")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	// Directory order: zone 1 code match, then zone 2 name match, then zone 3.
	assert.Equal(t, "Dried Goods", rows[0].StoreName)
	assert.Equal(t, "Kimchi House", rows[1].StoreName)
	assert.Equal(t, "Side Dishes", rows[2].StoreName)
}

func TestSearchKeywordEscapesLikeMetacharacters(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupStoresTestDB(t))

	seedStore(t, repo, CreateStoreDTO{Name: "100% Juice", X: 10, Y: 10})
	seedStore(t, repo, CreateStoreDTO{Name: "100x Juice", X: 20, Y: 20})

	rows, err := repo.SearchKeyword(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "100% Juice", rows[0].StoreName)
}

func TestSearchNameAndPhoneScopeSingleField(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupStoresTestDB(t))

	seedStore(t, repo, CreateStoreDTO{Name: "Noodle Bar", PhoneNumber: strPtr("02-1234-5678"), X: 10, Y: 10})
	seedStore(t, repo, CreateStoreDTO{Name: "Phone Repair", Description: strPtr("Noodle themed decor"), X: 20, Y: 20})

	rows, err := repo.SearchName(ctx, "Noodle")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Noodle Bar", rows[0].StoreName)

	rows, err = repo.SearchPhone(ctx, "1234")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Noodle Bar", rows[0].StoreName)
}

func TestCodeTakenByOther(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupStoresTestDB(t))

	owner := seedStore(t, repo, CreateStoreDTO{Name: "Owner", Code: strPtr("A-01"), X: 10, Y: 10})
	retired := seedStore(t, repo, CreateStoreDTO{Name: "Retired", Code: strPtr("B-02"), X: 20, Y: 20})
	require.NoError(t, repo.SoftDelete(ctx, retired.StoreID))

	taken, err := repo.CodeTakenByOther(ctx, "A-01", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	// The owner updating its own code is not a collision.
	taken, err = repo.CodeTakenByOther(ctx, "A-01", owner.StoreID)
	require.NoError(t, err)
	assert.False(t, taken)

	// Codes held only by soft-deleted stores are free again.
	taken, err = repo.CodeTakenByOther(ctx, "B-02", 0)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestCountActiveAndByZone(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupStoresTestDB(t))

	seedStore(t, repo, CreateStoreDTO{Name: "One", ZoneNumber: intPtr(1), X: 10, Y: 10})
	seedStore(t, repo, CreateStoreDTO{Name: "Two", ZoneNumber: intPtr(1), X: 20, Y: 20})
	seedStore(t, repo, CreateStoreDTO{Name: "Three", ZoneNumber: intPtr(4), X: 30, Y: 30})
	gone := seedStore(t, repo, CreateStoreDTO{Name: "Gone", ZoneNumber: intPtr(4), X: 40, Y: 40})
	require.NoError(t, repo.SoftDelete(ctx, gone.StoreID))

	total, err := repo.CountActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	byZone, err := repo.CountByZone(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[int]int64{1: 2, 4: 1}, byZone)
}

func TestUpdatePersistsChanges(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(setupStoresTestDB(t))

	store := seedStore(t, repo, CreateStoreDTO{Name: "Old Name", X: 10, Y: 10})
	store.StoreName = "New Name"
	store.XCoordinate = 77

	require.NoError(t, repo.Update(ctx, store))

	found, err := repo.FindByID(ctx, store.StoreID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", found.StoreName)
	assert.Equal(t, 77, found.XCoordinate)
}

func TestPurgeRemovesStoreAndImages(t *testing.T) {
	ctx := context.Background()
	db := setupStoresTestDB(t)
	repo := NewRepository(db)

	store := seedStore(t, repo, CreateStoreDTO{Name: "Doomed", X: 10, Y: 10})
	require.NoError(t, db.Create(&models.StoreImage{StoreID: store.StoreID, ImageURL: "/uploads/a.png"}).Error)
	require.NoError(t, db.Create(&models.StoreImage{StoreID: store.StoreID, ImageURL: "/uploads/b.png"}).Error)

	urls, err := repo.Purge(ctx, store.StoreID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/uploads/a.png", "/uploads/b.png"}, urls)

	_, err = repo.FindByID(ctx, store.StoreID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var imageCount int64
	require.NoError(t, db.Model(&models.StoreImage{}).Where("store_id = ?", store.StoreID).Count(&imageCount).Error)
	assert.Zero(t, imageCount)
}

func TestPurgeMissingStore(t *testing.T) {
	repo := NewRepository(setupStoresTestDB(t))
	_, err := repo.Purge(context.Background(), 4242)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
