// Package apitest runs the full HTTP stack against an in-memory database
// and object store.
package apitest

import (
	"net/http/httptest"
	"testing"
	"time"

	"menufic/auth"
	"menufic/config"
	"menufic/controller"
	"menufic/model"
	"menufic/route"
	"menufic/service"
	"menufic/storage"
	"menufic/testutil"
	"menufic/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type Server struct {
	*httptest.Server
	DB      *gorm.DB
	Store   *storage.MemoryStore
	Service *service.Service
	Tokens  *utils.Tokens
}

// Quotas are deliberately small so tests can hit them.
var Quotas = config.Quotas{
	RestaurantsPerUser:   2,
	MenusPerRestaurant:   5,
	CategoriesPerMenu:    5,
	ItemsPerCategory:     5,
	BannersPerRestaurant: 2,
}

const MaxUpload = 1 << 12

func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	store := storage.NewMemoryStore()
	logger := testutil.Logger(t)
	svc := service.New(db, store, logger, service.Options{Quotas: Quotas, MaxUploadBytes: MaxUpload})
	tokens := utils.NewTokens(config.AuthConfig{
		JWTSecret:  "apitest-secret",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: time.Hour,
	})

	router := route.NewRouter(route.Handlers{
		Controller: controller.New(svc, MaxUpload, logger),
		Auth:       auth.NewHandler(svc, tokens),
		Tokens:     tokens,
	}, []string{"http://localhost:3000"}, logger)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &Server{Server: srv, DB: db, Store: store, Service: svc, Tokens: tokens}
}

// Owner creates a user and returns it with a valid access token.
func (s *Server) Owner(t testing.TB, email string) (model.User, string) {
	t.Helper()
	u := testutil.User(t, s.DB, email)
	access, _, err := s.Tokens.GenerateTokens(u.ID)
	require.NoError(t, err)
	return u, access
}
