package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/config"
	"github.com/oksasatya/go-auth-service/internal/application"
	"github.com/oksasatya/go-auth-service/internal/interface/middleware"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
	"github.com/oksasatya/go-auth-service/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.Service
	Logger  *logrus.Logger
	Cfg     *config.Config
	Cookies *helpers.CookieManager
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		Svc:     svc,
		Logger:  logger,
		Cfg:     cfg,
		Cookies: helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure, cfg.CookieTTL),
	}
}

type signupRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,pwd"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type verifyConfirmRequest struct {
	Token string `json:"token" binding:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	Password        string `json:"password" binding:"required,pwd"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	Password        string `json:"password" binding:"required,pwd"`
	PasswordConfirm string `json:"password_confirm" binding:"required"`
}

// Signup POST /api/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, err := h.Svc.Signup(c.Request.Context(), application.SignupInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		// the account may exist at this point (notification failure does
		// not roll signup back); the client learns the distinct kind either way
		failErr(c, h.Logger, err)
		return
	}

	h.Cookies.SetSession(c, token)
	success(c, http.StatusCreated, gin.H{"token": token, "user": serializeUser(u)}, "account created", nil)
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failErr(c, h.Logger, err)
		return
	}

	h.Cookies.SetSession(c, token)
	success(c, http.StatusOK, gin.H{"token": token, "user": serializeUser(u)}, "login successful", nil)
}

// Logout POST /api/auth/logout
// Clears the session cookie only; the token itself stays valid until its
// natural expiry since no revocation list exists.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	success(c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// VerifyConfirm POST /api/auth/verify/confirm {token}
func (h *AuthHandler) VerifyConfirm(c *gin.Context) {
	var req verifyConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.VerifyEmail(c.Request.Context(), req.Token)
	if err != nil {
		failErr(c, h.Logger, err)
		return
	}
	success(c, http.StatusOK, gin.H{"user": serializeUser(u)}, "email verified", nil)
}

// VerifyResend POST /api/auth/verify/resend (auth required)
func (h *AuthHandler) VerifyResend(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	already, err := h.Svc.ResendVerification(c.Request.Context(), u)
	if err != nil {
		failErr(c, h.Logger, err)
		return
	}
	if already {
		success(c, http.StatusOK, gin.H{"already_verified": true}, "already verified", nil)
		return
	}
	success(c, http.StatusOK, gin.H{"sent": true}, "verification email sent", nil)
}

// ForgotPassword POST /api/auth/password/forgot {email}
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		failErr(c, h.Logger, err)
		return
	}
	success(c, http.StatusOK, gin.H{"sent": true}, "reset token sent to email", nil)
}

// ResetPassword POST /api/auth/password/reset {token, password, password_confirm}
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, token, err := h.Svc.ResetPassword(c.Request.Context(), req.Token, req.Password, req.PasswordConfirm)
	if err != nil {
		failErr(c, h.Logger, err)
		return
	}

	h.Cookies.SetSession(c, token)
	success(c, http.StatusOK, gin.H{"token": token, "user": serializeUser(u)}, "password updated", nil)
}

// UpdatePassword PATCH /api/auth/password (auth required)
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	token, err := h.Svc.UpdatePassword(c.Request.Context(), u, req.CurrentPassword, req.Password, req.PasswordConfirm)
	if err != nil {
		failErr(c, h.Logger, err)
		return
	}

	h.Cookies.SetSession(c, token)
	success(c, http.StatusOK, gin.H{"token": token}, "password updated", nil)
}
