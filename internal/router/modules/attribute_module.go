package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/recipe-api/internal/interface/http"
)

// AttributeModule wires /recipie/tags or /recipie/ingredients, named after
// the kind its handler serves.
type AttributeModule struct {
	Handler *handlers.AttributeHandler
	Auth    gin.HandlerFunc
}

func NewAttributeModule(h *handlers.AttributeHandler, auth gin.HandlerFunc) *AttributeModule {
	return &AttributeModule{Handler: h, Auth: auth}
}

func (m *AttributeModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/recipie/" + m.Handler.Svc.Kind().Plural())
	g.Use(m.Auth, userLimiter())
	{
		g.GET("/", m.Handler.List)
		g.POST("/", m.Handler.Create)
		g.GET("/:id/", m.Handler.Get)
		g.PUT("/:id/", m.Handler.Put)
		g.PATCH("/:id/", m.Handler.Patch)
		g.DELETE("/:id/", m.Handler.Delete)
	}
}
