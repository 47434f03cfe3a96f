package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-auth-service/internal/application"
	"github.com/oksasatya/go-auth-service/internal/container"
	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	handlers "github.com/oksasatya/go-auth-service/internal/interface/http"
	"github.com/oksasatya/go-auth-service/internal/interface/middleware"
)

// UserModule wires profile and admin user management into routes.
// Protected: GET/PATCH/DELETE /api/profile, POST /api/profile/avatar
// Admin only: /api/users CRUD and /api/users/search

type UserModule struct {
	Handler *handlers.UserHandler
	Svc     *application.Service
}

func NewUserModule(h *handlers.UserHandler, svc *application.Service) *UserModule {
	return &UserModule{Handler: h, Svc: svc}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Protect(m.Svc))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PATCH("/profile", m.Handler.UpdateProfile)
		auth.DELETE("/profile", m.Handler.Deactivate)
		auth.POST("/profile/avatar", m.Handler.UploadAvatar)
	}

	admin := auth.Group("/")
	admin.Use(middleware.RestrictTo(entity.RoleAdmin))
	{
		admin.GET("/users", m.Handler.ListUsers)
		admin.GET("/users/search", m.Handler.Search)
		admin.GET("/users/:id", m.Handler.GetUser)
		admin.PATCH("/users/:id", m.Handler.UpdateUser)
		admin.DELETE("/users/:id", m.Handler.DeleteUser)
	}
}
