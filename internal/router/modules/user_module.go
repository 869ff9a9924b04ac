package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/recipe-api/internal/container"
	handlers "github.com/oksasatya/recipe-api/internal/interface/http"
	"github.com/oksasatya/recipe-api/internal/interface/middleware"
)

// UserModule wires account routes.
// Public: POST /user/create, POST /user/token
// Protected: GET/PATCH/PUT /user/me, POST /user/logout
type UserModule struct {
	Handler *handlers.UserHandler
	Auth    gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, auth gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Auth: auth}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	createLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	tokenLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/user/create", createLimiter, m.Handler.Create)
	rg.POST("/user/token", tokenLimiter, m.Handler.Token)

	auth := rg.Group("/user")
	auth.Use(m.Auth, userLimiter())
	{
		auth.GET("/me", m.Handler.Me)
		auth.PATCH("/me", m.Handler.PatchMe)
		auth.PUT("/me", m.Handler.PutMe)
		auth.POST("/logout", m.Handler.Logout)
	}
}

// userLimiter applies RATE_LIMIT_PER_MINUTE per authenticated user.
func userLimiter() gin.HandlerFunc {
	return middleware.RateLimit(container.GetRedis(), container.GetConfig().RateLimitPerMinute, time.Minute, middleware.KeyByUserID(), nil)
}
