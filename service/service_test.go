package service_test

import (
	"context"
	"testing"

	"menufic/config"
	"menufic/model"
	"menufic/service"
	"menufic/storage"
	"menufic/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc   *service.Service
	db    *gorm.DB
	store *storage.MemoryStore
	user  model.User
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	store := storage.NewMemoryStore()
	svc := service.New(db, store, testutil.Logger(t), service.Options{
		Quotas: config.Quotas{
			RestaurantsPerUser:   2,
			MenusPerRestaurant:   3,
			CategoriesPerMenu:    3,
			ItemsPerCategory:     3,
			BannersPerRestaurant: 2,
		},
		MaxUploadBytes: 1 << 10,
	})
	return &fixture{
		svc:   svc,
		db:    db,
		store: store,
		user:  testutil.User(t, db, "owner@example.com"),
		ctx:   context.Background(),
	}
}

func png() *service.ImageInput {
	return &service.ImageInput{Data: []byte("\x89PNG"), Ext: ".png", BlurHash: "LEHV6nWB2yk8", Color: "#112233"}
}

func (f *fixture) restaurant(t *testing.T) *model.Restaurant {
	t.Helper()
	r, err := f.svc.CreateRestaurant(f.ctx, f.user.ID, service.RestaurantInput{Name: "Cafe", Location: "Kandy"}, nil)
	require.NoError(t, err)
	return r
}

func (f *fixture) menu(t *testing.T, restaurantID, name string) *model.Menu {
	t.Helper()
	m, err := f.svc.CreateMenu(f.ctx, f.user.ID, restaurantID, service.MenuInput{Name: name})
	require.NoError(t, err)
	return m
}

func (f *fixture) category(t *testing.T, menuID, name string) *model.Category {
	t.Helper()
	c, err := f.svc.CreateCategory(f.ctx, f.user.ID, menuID, service.CategoryInput{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) item(t *testing.T, categoryID, name string, img *service.ImageInput) *model.MenuItem {
	t.Helper()
	i, err := f.svc.CreateItem(f.ctx, f.user.ID, categoryID, service.ItemInput{Name: name, Price: "4.50"}, img)
	require.NoError(t, err)
	return i
}
