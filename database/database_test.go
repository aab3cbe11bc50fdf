package database

import (
	"bytes"
	"log/slog"
	"testing"

	"menufic/config"
	"menufic/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openMemory(t *testing.T, dsn, level string) *gorm.DB {
	t.Helper()
	db, err := Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn, MaxOpenConns: 1, LogLevel: level})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	db := openMemory(t, "file::memory:", "silent")

	require.NoError(t, Migrate(db))
	for _, m := range Models {
		assert.True(t, db.Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, db.Migrator().HasIndex(&model.User{}, "Email"))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestParentForeignKeys(t *testing.T) {
	db := openMemory(t, "file::memory:?_pragma=foreign_keys(1)", "silent")
	require.NoError(t, Migrate(db))

	orphan := model.Menu{Name: "Lunch", RestaurantID: "missing", UserID: "u1"}
	assert.Error(t, db.Create(&orphan).Error, "menus need an existing restaurant")

	r := model.Restaurant{Name: "Cafe", UserID: "u1", ImageID: ptr("not-uploaded-yet")}
	require.NoError(t, db.Omit("Image", "Banners", "Menus").Create(&r).Error, "cover images carry no foreign key")

	menu := model.Menu{Name: "Lunch", RestaurantID: r.ID, UserID: "u1"}
	require.NoError(t, db.Omit("Categories").Create(&menu).Error)
	assert.Error(t, db.Create(&model.Category{Name: "Mains", MenuID: "missing", UserID: "u1"}).Error)
	category := model.Category{Name: "Mains", MenuID: menu.ID, UserID: "u1"}
	require.NoError(t, db.Omit("Items").Create(&category).Error)
	assert.Error(t, db.Omit("Image").Create(&model.MenuItem{Name: "Rice", CategoryID: "missing", MenuID: menu.ID, UserID: "u1"}).Error)

	assert.Error(t, db.Delete(&model.Restaurant{}, "id = ?", r.ID).Error, "children are deleted first")
}

func TestSQLLogGoesThroughSlog(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	db := openMemory(t, "file::memory:", "info")
	require.NoError(t, db.Exec("SELECT 42").Error)
	assert.Contains(t, buf.String(), "SELECT 42")
	assert.Contains(t, buf.String(), "level=INFO")
}

func ptr(s string) *string { return &s }
