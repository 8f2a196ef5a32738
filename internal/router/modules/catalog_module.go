package modules

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khadamatapp/marketplace-api/internal/container"
	handlers "github.com/khadamatapp/marketplace-api/internal/interface/http"
	"github.com/khadamatapp/marketplace-api/internal/interface/middleware"
	"github.com/khadamatapp/marketplace-api/pkg/helpers"
	"github.com/khadamatapp/marketplace-api/pkg/response"
)

// CatalogModule wires the public catalog (categories, services, providers)
// plus the provider-owned mutations behind auth.
type CatalogModule struct {
	Categories *handlers.CategoryHandler
	Services   *handlers.ServiceHandler
	Providers  *handlers.ProviderHandler
	Reviews    *handlers.ReviewHandler
	JWT        *helpers.JWTManager
}

func NewCatalogModule(c *handlers.CategoryHandler, s *handlers.ServiceHandler, p *handlers.ProviderHandler, r *handlers.ReviewHandler, jwt *helpers.JWTManager) *CatalogModule {
	return &CatalogModule{Categories: c, Services: s, Providers: p, Reviews: r, JWT: jwt}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	readLimiter := middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	searchLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "up"}, "healthy", nil)
	})

	// Public reads
	pub := rg.Group("/")
	pub.Use(readLimiter)
	{
		pub.GET("/categories", m.Categories.List)
		pub.GET("/categories/:slug", m.Categories.Get)
		pub.GET("/services", m.Services.List)
		pub.GET("/services/search", searchLimiter, m.Services.Search)
		pub.GET("/services/:id", m.Services.Get)
		pub.GET("/services/:id/reviews", m.Reviews.ListByService)
		pub.GET("/providers", m.Providers.List)
		pub.GET("/providers/:id", m.Providers.Get)
		pub.GET("/providers/:id/services", m.Providers.Services)
		pub.GET("/providers/:id/reviews", m.Providers.Reviews)
	}

	// Authenticated mutations
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/categories", m.Categories.Create)
		auth.PUT("/categories/:slug", m.Categories.Update)
		auth.DELETE("/categories/:slug", m.Categories.Delete)
		auth.POST("/services", m.Services.Create)
		auth.PUT("/services/:id", m.Services.Update)
		auth.DELETE("/services/:id", m.Services.Delete)
		auth.POST("/providers", m.Providers.Create)
		auth.PUT("/providers/:id", m.Providers.Update)
	}
}
