package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-auth-service/internal/application"
	"github.com/oksasatya/go-auth-service/internal/container"
	handlers "github.com/oksasatya/go-auth-service/internal/interface/http"
	"github.com/oksasatya/go-auth-service/internal/interface/middleware"
)

// AuthModule wires signup/login and the token flows into routes.
// Public: POST /api/auth/signup, /auth/login, /auth/logout,
//         /auth/verify/confirm, /auth/password/forgot, /auth/password/reset
// Protected: POST /api/auth/verify/resend, PATCH /api/auth/password

type AuthModule struct {
	Handler *handlers.AuthHandler
	Svc     *application.Service
}

func NewAuthModule(h *handlers.AuthHandler, svc *application.Service) *AuthModule {
	return &AuthModule{Handler: h, Svc: svc}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	signupLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	verifyConfirmLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)
	forgotLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/signup", signupLimiter, m.Handler.Signup)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/logout", m.Handler.Logout)
	rg.POST("/auth/verify/confirm", verifyConfirmLimiter, m.Handler.VerifyConfirm)
	rg.POST("/auth/password/forgot", forgotLimiter, m.Handler.ForgotPassword)
	rg.POST("/auth/password/reset", resetLimiter, m.Handler.ResetPassword)

	// Protected, with user-based rate limit on resend
	auth := rg.Group("/")
	auth.Use(middleware.Protect(m.Svc))
	{
		resendLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByUserID(), nil)
		auth.POST("/auth/verify/resend", resendLimiter, m.Handler.VerifyResend)
		auth.PATCH("/auth/password", m.Handler.UpdatePassword)
	}
}
