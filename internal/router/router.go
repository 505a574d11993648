package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"printstock/internal/accessory"
	"printstock/internal/auth"
	"printstock/internal/catalog"
	"printstock/internal/export"
	"printstock/internal/spool"
	"printstock/pkg/middleware"
)

// Config carries the dependencies the route table needs.
type Config struct {
	DB          *gorm.DB
	Redis       *redis.Client
	ObjectStore *export.ObjectStore
	JWTSecret   string
	RateLimit   int
}

// New builds the gin engine with all routes and middleware wired.
func New(cfg Config) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "printstock"})
	})

	authHandler := auth.NewHandler(cfg.DB, cfg.JWTSecret)
	catalogHandler := catalog.NewHandler(catalog.NewService(cfg.DB))
	spoolHandler := spool.NewHandler(spool.NewService(cfg.DB))
	accessoryHandler := accessory.NewHandler(accessory.NewService(cfg.DB))
	exportHandler := export.NewHandler(export.NewService(cfg.DB, cfg.ObjectStore))

	limiter := middleware.NewRateLimiter(cfg.Redis, cfg.RateLimit, time.Minute)

	v1 := r.Group("/api/v1")

	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	protected := v1.Group("")
	protected.Use(auth.RequireAuth(cfg.JWTSecret), limiter.Limit())

	protected.GET("/brands", catalogHandler.ListBrands)
	protected.POST("/brands", catalogHandler.CreateBrand)
	protected.DELETE("/brands/:id", catalogHandler.DeleteBrand)
	protected.GET("/materials", catalogHandler.ListMaterials)
	protected.POST("/materials", catalogHandler.CreateMaterial)
	protected.DELETE("/materials/:id", catalogHandler.DeleteMaterial)
	protected.GET("/categories", catalogHandler.ListCategories)
	protected.POST("/categories", catalogHandler.CreateCategory)
	protected.DELETE("/categories/:id", catalogHandler.DeleteCategory)

	protected.GET("/spools", spoolHandler.List)
	protected.POST("/spools", spoolHandler.Create)
	protected.POST("/spools/batch", spoolHandler.BatchCreate)
	protected.GET("/spools/:id", spoolHandler.Get)
	protected.DELETE("/spools/:id", spoolHandler.Delete)
	protected.POST("/spools/:id/open", spoolHandler.MarkOpened)
	protected.POST("/spools/:id/usage", spoolHandler.RecordUsage)
	protected.GET("/spools/:id/usage", spoolHandler.ListUsage)
	protected.PUT("/spools/usage/:usageId", spoolHandler.UpdateUsage)
	protected.DELETE("/spools/usage/:usageId", spoolHandler.DeleteUsage)

	protected.GET("/accessories", accessoryHandler.List)
	protected.POST("/accessories", accessoryHandler.Create)
	protected.GET("/accessories/alerts", accessoryHandler.Alerts)
	protected.GET("/accessories/:id", accessoryHandler.Get)
	protected.DELETE("/accessories/:id", accessoryHandler.Delete)
	protected.POST("/accessories/:id/usage", accessoryHandler.RecordUsage)
	protected.GET("/accessories/:id/usage", accessoryHandler.ListUsage)
	protected.POST("/accessories/:id/start", accessoryHandler.StartUsing)
	protected.POST("/accessories/:id/stop", accessoryHandler.StopUsing)
	protected.POST("/accessories/:id/restock", accessoryHandler.Restock)
	protected.POST("/accessories/:id/replaced", accessoryHandler.MarkReplaced)

	protected.POST("/export", exportHandler.Export)

	return r
}
