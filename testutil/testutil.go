// Package testutil provides an isolated in-memory database and fixture
// builders shared by package tests.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"menufic/database"
	"menufic/model"

	"github.com/glebarez/sqlite"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated sqlite database private to t. A single
// connection keeps the in-memory database alive for the test's duration.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", ulid.Make().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Logger discards output unless the test runs verbose.
func Logger(t testing.TB) *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testWriter struct{ t testing.TB }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func User(t testing.TB, db *gorm.DB, email string) model.User {
	t.Helper()
	u := model.User{Email: email, Name: email, Password: "x"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func Image(t testing.TB, db *gorm.DB, id string) *model.Image {
	t.Helper()
	img := model.Image{ID: id, Path: "/uploads/" + id, BlurHash: "LEHV6nWB2yk8", Color: "#aabbcc"}
	require.NoError(t, db.Create(&img).Error)
	return &img
}

// Restaurant creates a restaurant with an optional cover image.
func Restaurant(t testing.TB, db *gorm.DB, userID, name string, imageID *string) model.Restaurant {
	t.Helper()
	r := model.Restaurant{Name: name, Location: "Colombo", UserID: userID, ImageID: imageID}
	require.NoError(t, db.Create(&r).Error)
	return r
}

func Banner(t testing.TB, db *gorm.DB, restaurantID, id string) model.Image {
	t.Helper()
	img := model.Image{ID: id, Path: "/uploads/" + id, RestaurantID: &restaurantID}
	require.NoError(t, db.Create(&img).Error)
	return img
}

func Menu(t testing.TB, db *gorm.DB, r model.Restaurant, name string, position int) model.Menu {
	t.Helper()
	m := model.Menu{Name: name, Position: position, RestaurantID: r.ID, UserID: r.UserID}
	require.NoError(t, db.Create(&m).Error)
	return m
}

func Category(t testing.TB, db *gorm.DB, m model.Menu, name string, position int) model.Category {
	t.Helper()
	c := model.Category{Name: name, Position: position, MenuID: m.ID, UserID: m.UserID}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func Item(t testing.TB, db *gorm.DB, c model.Category, name string, position int, imageID *string) model.MenuItem {
	t.Helper()
	i := model.MenuItem{
		Name:       name,
		Price:      "10.00",
		Position:   position,
		ImageID:    imageID,
		CategoryID: c.ID,
		MenuID:     c.MenuID,
		UserID:     c.UserID,
	}
	require.NoError(t, db.Create(&i).Error)
	return i
}

func Ptr[T any](v T) *T { return &v }

// Count returns the number of rows in the table backing m.
func Count(t testing.TB, db *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}
