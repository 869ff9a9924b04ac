package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/recipe-api/internal/interface/http"
)

// RecipeModule wires /recipie/recipies and /recipie/search. All routes
// require authentication.
type RecipeModule struct {
	Handler *handlers.RecipeHandler
	Auth    gin.HandlerFunc
}

func NewRecipeModule(h *handlers.RecipeHandler, auth gin.HandlerFunc) *RecipeModule {
	return &RecipeModule{Handler: h, Auth: auth}
}

func (m *RecipeModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/recipie")
	g.Use(m.Auth, userLimiter())
	{
		g.GET("/recipies/", m.Handler.List)
		g.POST("/recipies/", m.Handler.Create)
		g.GET("/recipies/:id/", m.Handler.Get)
		g.PUT("/recipies/:id/", m.Handler.Put)
		g.PATCH("/recipies/:id/", m.Handler.Patch)
		g.DELETE("/recipies/:id/", m.Handler.Delete)
		g.POST("/recipies/:id/upload-image", m.Handler.UploadImage)
		g.GET("/search/", m.Handler.Search)
	}
}
