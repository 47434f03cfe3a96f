package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-auth-service/internal/domain/entity"
	"github.com/oksasatya/go-auth-service/pkg/apperr"
)

// RestrictTo authorizes the user attached by Protect against an allowed role
// set. It must be composed after Protect; a missing context user is treated
// as unauthenticated, not as a server fault.
func RestrictTo(roles ...entity.Role) gin.HandlerFunc {
	allowed := make(map[entity.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			abortWith(c, apperr.ErrNotAuthenticated)
			return
		}
		if !allowed[u.Role] {
			abortWith(c, apperr.ErrForbidden)
			return
		}
		c.Next()
	}
}
