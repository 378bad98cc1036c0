package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sticctape/barkeep-backend/config"
	"github.com/sticctape/barkeep-backend/internal/app/controller"
	"github.com/sticctape/barkeep-backend/internal/middleware"
)

type Router struct {
	authController   *controller.AuthController
	bottleController *controller.BottleController
	imageController  *controller.ImageController
	upcController    *controller.UPCController
	authMiddleware   *middleware.AuthMiddleware
	limiter          middleware.Limiter
	config           *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	bottleController *controller.BottleController,
	imageController *controller.ImageController,
	upcController *controller.UPCController,
	authMiddleware *middleware.AuthMiddleware,
	limiter middleware.Limiter,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:   authController,
		bottleController: bottleController,
		imageController:  imageController,
		upcController:    upcController,
		authMiddleware:   authMiddleware,
		limiter:          limiter,
		config:           cfg,
	}
}

// Setup builds the request pipeline: CORS preflight and origin check first,
// then the rate limit (its 429 still carries CORS headers), then credential
// resolution, then dispatch. Writes hang off /api/admin only; reads are
// registered on both prefixes and behave identically.
func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": fmt.Sprintf("%v", recovered),
		})
	}))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(r.config.CORS.AllowedOrigins))
	router.Use(middleware.RateLimitMiddleware(r.limiter, r.config.RateLimit.IPHeader))
	router.Use(r.authMiddleware.Resolve())

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "not found",
		})
	})

	// Reads are identical with or without the admin marker.
	for _, prefix := range []string{"/api", "/api/admin"} {
		group := router.Group(prefix)

		group.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"ok": true})
		})
		group.GET("/auth/check", r.authController.Check)
		group.GET("/bottles", r.authMiddleware.RequireOwnerOrStaff(), r.bottleController.ListBottles)
	}

	// Writes only exist under the admin marker; a write against /api lands
	// in NoRoute and 404s.
	admin := router.Group("/api/admin")
	admin.Use(r.authMiddleware.RequireOwner())
	{
		admin.POST("/bottles", r.bottleController.CreateBottle)
		admin.PUT("/bottles/:id", r.bottleController.UpdateBottle)
		admin.DELETE("/bottles/:id", r.bottleController.DeleteBottle)

		admin.POST("/bottles/:id/image", r.imageController.UploadImage)
		admin.DELETE("/bottles/:id/image", r.imageController.DeleteImage)

		admin.GET("/upc/:code", r.upcController.LookupUPC)
	}

	return router
}
