package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	"github.com/oksasatya/go-auth-service/pkg/apperr"
	"github.com/oksasatya/go-auth-service/pkg/response"
)

func success(c *gin.Context, status int, data any, message string, meta any) {
	resp := response.Success(c, status, data, message, meta)
	c.JSON(resp.Status, resp)
}

func fail(c *gin.Context, status int, message string, details any) {
	resp := response.Error[any](c, status, message, details)
	c.JSON(resp.Status, resp)
}

// failErr maps operational errors to their status and safe message; anything
// else is logged in full and answered with a generic 500.
func failErr(c *gin.Context, logger *logrus.Logger, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		if ae.Status >= http.StatusInternalServerError && logger != nil {
			logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("request failed")
		}
		fail(c, ae.Status, ae.Message, ae.Code)
		return
	}
	if logger != nil {
		logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error("unexpected error")
	}
	fail(c, http.StatusInternalServerError, "something went wrong", nil)
}

// serializeUser is the only shape a user record leaves the service in; the
// password hash and one-time token fields never appear here.
func serializeUser(u *entity.User) gin.H {
	return gin.H{
		"id":          u.ID,
		"email":       u.Email,
		"name":        u.Name,
		"role":        u.Role,
		"avatar_url":  u.AvatarURL,
		"is_verified": u.IsVerified,
		"created_at":  u.CreatedAt,
		"updated_at":  u.UpdatedAt,
	}
}
