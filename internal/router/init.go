package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/recipe-api/internal/application"
	"github.com/oksasatya/recipe-api/internal/container"
	"github.com/oksasatya/recipe-api/internal/domain/repository"
	"github.com/oksasatya/recipe-api/internal/infrastructure/search"
	"github.com/oksasatya/recipe-api/internal/infrastructure/session"
	handlers "github.com/oksasatya/recipe-api/internal/interface/http"
	"github.com/oksasatya/recipe-api/internal/interface/middleware"
	"github.com/oksasatya/recipe-api/internal/router/modules"
)

func buildUserService() *application.UserService {
	var sessions application.SessionStore
	if rdb := container.GetRedis(); rdb != nil {
		sessions = session.NewRedisStore(rdb)
	}
	var mail application.MailPublisher
	if pub := container.GetRabbitPub(); pub != nil && container.GetConfig().MailEnabled() {
		mail = pub
	}
	return application.NewUserService(
		container.GetStore().Users,
		container.GetJWT(),
		sessions,
		mail,
		container.GetConfig(),
		container.GetLogger(),
	)
}

func buildRecipeService() *application.RecipeService {
	var index application.RecipeIndex
	if es := container.GetES(); es != nil {
		index = search.NewRecipeIndex(es, container.GetConfig().ESRecipesIndex)
	}
	return application.NewRecipeService(container.GetStore(), container.GetImages(), index, container.GetLogger())
}

// InitModules initializes all application modules and registers them with the router registry.
// This function should be called once during application startup, after the container is populated.
func InitModules(r *Registry) {
	logger := container.GetLogger()
	store := container.GetStore()

	userSvc := buildUserService()
	auth := middleware.Auth(container.GetJWT(), userSvc)

	r.AddRoot(modules.NewHealthModule(handlers.NewHealthHandler(store.Health, logger)))
	if container.GetConfig().DebugMetricsEnabled {
		r.AddRoot(modules.NewDebugModule())
	}

	r.Add(modules.NewUserModule(handlers.NewUserHandler(userSvc, logger), auth))
	r.Add(modules.NewRecipeModule(handlers.NewRecipeHandler(buildRecipeService(), logger), auth))
	for _, attrs := range []repository.AttributeRepository{store.Tags, store.Ingredients} {
		svc := application.NewAttributeService(attrs, store.Tx)
		r.Add(modules.NewAttributeModule(handlers.NewAttributeHandler(svc, logger), auth))
	}
}

// NewEngine builds the gin engine with global middleware and every module
// registered from the container.
func NewEngine() *gin.Engine {
	cfg := container.GetConfig()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	if cfg.HTTPLogEnabled {
		r.Use(middleware.AccessLog(container.GetLogger()))
	}

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		corsCfg.AllowOrigins = origins
		corsCfg.AllowCredentials = true
	} else {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	reg := NewRegistry(r, cfg.APIPrefix)
	InitModules(reg)
	reg.RegisterAll()
	return r
}
