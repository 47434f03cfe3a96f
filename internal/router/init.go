package router

import (
	"github.com/oksasatya/go-auth-service/internal/application"
	"github.com/oksasatya/go-auth-service/internal/container"
	pginfra "github.com/oksasatya/go-auth-service/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-auth-service/internal/interface/http"
	"github.com/oksasatya/go-auth-service/internal/router/modules"
	"github.com/oksasatya/go-auth-service/pkg/mailer"
)

func buildService() *application.Service {
	repo := pginfra.NewUserRepository(container.GetPGPool())
	notifier := mailer.NewQueueNotifier(container.GetRabbitPub(), container.GetConfig())

	return application.NewService(
		repo,
		container.GetHasher(),
		container.GetJWT(),
		notifier,
		container.GetConfig(),
		container.GetLogger(),
		container.GetGCS(),
		container.GetES(),
		container.GetRedis(),
	)
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	svc := buildService()

	authHandler := handlers.NewAuthHandler(svc, container.GetLogger(), container.GetConfig())
	userHandler := handlers.NewUserHandler(svc, container.GetLogger())

	r.Add(modules.NewAuthModule(authHandler, svc))
	r.Add(modules.NewUserModule(userHandler, svc))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
