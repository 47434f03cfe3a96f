package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/internal/application"
	"github.com/oksasatya/go-auth-service/internal/interface/middleware"
	"github.com/oksasatya/go-auth-service/pkg/validation"
)

type UserHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// GetProfile GET /api/profile (auth required)
func (h *UserHandler) GetProfile(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	success(c, http.StatusOK, serializeUser(u), "profile", nil)
}

// UpdateProfile PATCH /api/profile (auth required)
// The body is decoded as a raw map so a smuggled password/role key is
// rejected by the engine instead of silently ignored by struct binding.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	updated, err := h.Svc.UpdateProfile(c.Request.Context(), u.ID, fields)
	if err != nil {
		failErr(c, h.Logger, err)
		return
	}
	success(c, http.StatusOK, serializeUser(updated), "profile updated", nil)
}

// UploadAvatar POST /api/profile/avatar (auth required, multipart)
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	fh, err := c.FormFile("avatar")
	if err != nil {
		fail(c, http.StatusBadRequest, "avatar file is required", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "cannot read avatar file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), u.ID, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		failErr(c, h.Logger, err)
		return
	}
	success(c, http.StatusOK, gin.H{"avatar_url": url}, "avatar uploaded", nil)
}

// Deactivate DELETE /api/profile (auth required)
// Soft-delete: the record stays, default lookups exclude it.
func (h *UserHandler) Deactivate(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	if err := h.Svc.Deactivate(c.Request.Context(), u.ID); err != nil {
		failErr(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Admin endpoints, gated by RestrictTo(admin).

// ListUsers GET /api/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.Svc.ListUsers(c.Request.Context())
	if err != nil {
		failErr(c, h.Logger, err)
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, u := range users {
		out = append(out, serializeUser(u))
	}
	success(c, http.StatusOK, out, "users", gin.H{"result": len(out)})
}

// GetUser GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, h.Logger, err)
		return
	}
	success(c, http.StatusOK, serializeUser(u), "user", nil)
}

// UpdateUser PATCH /api/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.AdminUpdateUser(c.Request.Context(), c.Param("id"), fields)
	if err != nil {
		failErr(c, h.Logger, err)
		return
	}
	success(c, http.StatusOK, serializeUser(u), "user updated", nil)
}

// DeleteUser DELETE /api/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.Svc.AdminDeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Search GET /api/users/search?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		fail(c, http.StatusBadRequest, "q is required", nil)
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		failErr(c, h.Logger, err)
		return
	}
	success(c, http.StatusOK, hits, "search results", gin.H{"result": len(hits)})
}
