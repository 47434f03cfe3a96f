package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-auth-service/internal/application"
	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	"github.com/oksasatya/go-auth-service/pkg/apperr"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
	"github.com/oksasatya/go-auth-service/pkg/response"
)

const (
	// CtxUserKey holds the resolved *entity.User for downstream handlers.
	CtxUserKey = "currentUser"
	// CtxUserIDKey mirrors the user id for logging and rate-limit keys.
	CtxUserIDKey = "userID"
)

// bearerToken extracts the credential from the Authorization header, falling
// back to the session cookie.
func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return helpers.SessionFromCookie(c)
}

// Protect verifies the session token, resolves its subject against the store
// and attaches the user to the request context. Requests fail closed: no
// credential, bad signature, expiry, a deleted/deactivated subject, or a
// password change after token issuance all abort with their specific kind.
func Protect(svc *application.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abortWith(c, apperr.ErrNotAuthenticated)
			return
		}

		u, err := svc.ResolveToken(c.Request.Context(), token)
		if err != nil {
			var ae *apperr.Error
			if !errors.As(err, &ae) {
				ae = apperr.ErrInvalidToken
			}
			abortWith(c, ae)
			return
		}

		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, u.ID)
		c.Next()
	}
}

// CurrentUser returns the user attached by Protect.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok
}

func abortWith(c *gin.Context, ae *apperr.Error) {
	resp := response.Error[any](c, ae.Status, ae.Message, ae.Code)
	c.AbortWithStatusJSON(resp.Status, resp)
}
