package maps

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sijangmap/marketmap-backend/pkg/db/models"
	pkgerrors "github.com/sijangmap/marketmap-backend/pkg/errors"
)

func setupMapsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	table := `
CREATE TABLE IF NOT EXISTS market_maps (
  map_id INTEGER PRIMARY KEY AUTOINCREMENT,
  map_name TEXT NOT NULL,
  map_image_url TEXT NOT NULL,
  map_width INTEGER NOT NULL,
  map_height INTEGER NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(table).Error)
	return db
}

func newTestService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, setupMapsTestDB(t))
	ctx := context.Background()

	cases := []struct {
		name string
		dto  CreateMapDTO
	}{
		{"missing name", CreateMapDTO{ImageURL: "/maps/a.png", Width: 800, Height: 600}},
		{"missing url", CreateMapDTO{Name: "Main Hall", Width: 800, Height: 600}},
		{"zero width", CreateMapDTO{Name: "Main Hall", ImageURL: "/maps/a.png", Height: 600}},
		{"negative height", CreateMapDTO{Name: "Main Hall", ImageURL: "/maps/a.png", Width: 800, Height: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.dto)
			appErr := pkgerrors.As(err)
			require.NotNil(t, appErr)
			assert.Equal(t, pkgerrors.CodeValidation, appErr.Code())
		})
	}
}

func TestActiveMapFirstCreatedWins(t *testing.T) {
	ctx := context.Background()
	db := setupMapsTestDB(t)
	svc := newTestService(t, db)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.MarketMap{MapName: "Old", MapImageURL: "/maps/old.png", MapWidth: 800, MapHeight: 600, IsActive: true, CreatedAt: base}).Error)
	require.NoError(t, db.Create(&models.MarketMap{MapName: "New", MapImageURL: "/maps/new.png", MapWidth: 800, MapHeight: 600, IsActive: true, CreatedAt: base.Add(time.Hour)}).Error)

	active, err := svc.ActiveMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Old", active.Name)
}

func TestActiveMapSkipsInactive(t *testing.T) {
	ctx := context.Background()
	db := setupMapsTestDB(t)
	svc := newTestService(t, db)

	created, err := svc.Create(ctx, CreateMapDTO{Name: "Main Hall", ImageURL: "/maps/a.png", Width: 800, Height: 600})
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(ctx, created.ID, false))

	_, err = svc.ActiveMap(ctx)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestSetActiveUnknownMap(t *testing.T) {
	svc := newTestService(t, setupMapsTestDB(t))

	err := svc.SetActive(context.Background(), 999, true)
	appErr := pkgerrors.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestListOldestFirst(t *testing.T) {
	ctx := context.Background()
	db := setupMapsTestDB(t)
	svc := newTestService(t, db)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&models.MarketMap{MapName: "B", MapImageURL: "/maps/b.png", MapWidth: 1, MapHeight: 1, CreatedAt: base.Add(time.Hour)}).Error)
	require.NoError(t, db.Create(&models.MarketMap{MapName: "A", MapImageURL: "/maps/a.png", MapWidth: 1, MapHeight: 1, CreatedAt: base}).Error)

	rows, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A", rows[0].Name)
	assert.Equal(t, "B", rows[1].Name)
}
