package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const sessionCookieName = "token"

// CookieManager writes and clears the http-only session cookie. The cookie
// is a transport convenience next to the Authorization header; clearing it
// on logout does not invalidate the token itself, which stays valid until
// its natural expiry (no server-side revocation list).
type CookieManager struct {
	Domain string
	Secure bool
	TTL    time.Duration
}

func NewCookie(domain string, secure bool, ttl time.Duration) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure, TTL: ttl}
}

func (m *CookieManager) SetSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sessionCookieName, token, int(m.TTL.Seconds()), "/", m.Domain, m.Secure, true)
}

func (m *CookieManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sessionCookieName, "", -1, "/", m.Domain, m.Secure, true)
}

// SessionFromCookie reads the session cookie, returning "" when absent.
func SessionFromCookie(c *gin.Context) string {
	v, err := c.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return v
}
