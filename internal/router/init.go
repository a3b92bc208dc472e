package router

import (
	"time"

	appuser "github.com/oksasatya/go-user-service/internal/application"
	"github.com/oksasatya/go-user-service/internal/container"
	handlers "github.com/oksasatya/go-user-service/internal/interface/http"
	"github.com/oksasatya/go-user-service/internal/interface/middleware"
	"github.com/oksasatya/go-user-service/internal/router/modules"
)

type UserModuleDeps struct {
	Service *appuser.Service
	Handler *handlers.UserHandler
}

func buildUserDeps() UserModuleDeps {
	service := appuser.NewService(
		container.GetUserRepository(),
		container.GetPublisher(),
		container.GetLogger(),
	)
	handler := handlers.NewUserHandler(service, container.GetLogger())
	return UserModuleDeps{Service: service, Handler: handler}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	// one per-IP budget for the whole API, health checks excluded
	r.Use(middleware.RateLimit(
		container.GetRedis(),
		cfg.RateLimitPerMinute,
		time.Minute,
		middleware.KeyByIP(),
		middleware.SkipPaths("/api/health"),
	))

	userDeps := buildUserDeps()
	r.Add(modules.NewUserModule(userDeps.Handler))
	r.Add(modules.NewHealthModule())
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
