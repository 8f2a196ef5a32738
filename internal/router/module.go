package router

import "github.com/gin-gonic/gin"

// Module is one routable feature area (auth, catalog, orders, reviews). Each
// module owns its middleware stack, rate limits included.
type Module interface {
	Register(rg *gin.RouterGroup)
}
