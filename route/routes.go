package route

import (
	"log/slog"
	"net/http"
	"time"

	"menufic/auth"
	"menufic/controller"
	"menufic/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Controller *controller.Controller
	Auth       *auth.Handler
	Tokens     *utils.Tokens
	// UploadDir is served under /uploads when set.
	UploadDir string
}

// NewRouter builds the engine with recovery, request logging and CORS for
// origins, then registers every route.
func NewRouter(h Handlers, origins []string, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))
	corsConfig := cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))
	router.MaxMultipartMemory = 8 << 20
	Setup(router, h)
	return router
}

func Setup(router *gin.Engine, h Handlers) {
	ctl := h.Controller

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	if h.UploadDir != "" {
		router.Static("/uploads", h.UploadDir)
	}

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
	}

	api.GET("/public/restaurants/:id/menu", ctl.GetPublishedMenu)
	api.GET("/items/import/template", ctl.ImportTemplate)

	owner := api.Group("")
	owner.Use(utils.OwnerMiddleware(h.Tokens))
	{
		owner.GET("/restaurants", ctl.GetMyRestaurants)
		owner.POST("/restaurants", ctl.CreateRestaurant)
		owner.GET("/restaurants/:id", ctl.GetRestaurant)
		owner.PUT("/restaurants/:id", ctl.UpdateRestaurant)
		owner.DELETE("/restaurants/:id", ctl.DeleteRestaurant)
		owner.PATCH("/restaurants/:id/publish", ctl.PublishRestaurant)
		owner.POST("/restaurants/:id/banners", ctl.AddBanner)
		owner.DELETE("/restaurants/:id/banners/*imageId", ctl.DeleteBanner)

		owner.GET("/restaurants/:id/menus", ctl.GetMenus)
		owner.POST("/restaurants/:id/menus", ctl.AddMenu)
		owner.POST("/menus/positions", ctl.UpdateMenuPositions)
		owner.PUT("/menus/:id", ctl.UpdateMenu)
		owner.DELETE("/menus/:id", ctl.DeleteMenu)

		owner.GET("/menus/:id/categories", ctl.GetCategories)
		owner.POST("/menus/:id/categories", ctl.AddCategory)
		owner.POST("/categories/positions", ctl.UpdateCategoryPositions)
		owner.PUT("/categories/:id", ctl.UpdateCategory)
		owner.DELETE("/categories/:id", ctl.DeleteCategory)

		owner.GET("/categories/:id/items", ctl.GetItems)
		owner.POST("/categories/:id/items", ctl.AddItem)
		owner.POST("/categories/:id/items/import", ctl.ImportItems)
		owner.POST("/items/positions", ctl.UpdateItemPositions)
		owner.PUT("/items/:id", ctl.UpdateItem)
		owner.DELETE("/items/:id", ctl.DeleteItem)
	}
}
