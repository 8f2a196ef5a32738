package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khadamatapp/marketplace-api/internal/container"
	handlers "github.com/khadamatapp/marketplace-api/internal/interface/http"
	"github.com/khadamatapp/marketplace-api/internal/interface/middleware"
	"github.com/khadamatapp/marketplace-api/pkg/helpers"
)

// OrderModule wires order routes. Everything requires auth; single-order
// reads and writes additionally pass the access guard in the service.
type OrderModule struct {
	Handler *handlers.OrderHandler
	JWT     *helpers.JWTManager
}

func NewOrderModule(h *handlers.OrderHandler, jwt *helpers.JWTManager) *OrderModule {
	return &OrderModule{Handler: h, JWT: jwt}
}

func (m *OrderModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/orders", m.Handler.Create)
		auth.GET("/orders", m.Handler.List)
		auth.GET("/orders/:id", m.Handler.Get)
		auth.PUT("/orders/:id", m.Handler.Update)
	}
}
