package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/khadamatapp/marketplace-api/internal/container"
	handlers "github.com/khadamatapp/marketplace-api/internal/interface/http"
	"github.com/khadamatapp/marketplace-api/internal/interface/middleware"
	"github.com/khadamatapp/marketplace-api/pkg/helpers"
)

// ReviewModule wires review submission. Listing routes live in the catalog
// module under their parent resources.
type ReviewModule struct {
	Handler *handlers.ReviewHandler
	JWT     *helpers.JWTManager
}

func NewReviewModule(h *handlers.ReviewHandler, jwt *helpers.JWTManager) *ReviewModule {
	return &ReviewModule{Handler: h, JWT: jwt}
}

func (m *ReviewModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/reviews", m.Handler.Create)
	}
}
