package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey    = "userID"
	userEmailKey = "userEmail"
)

// SessionResolver maps an opaque session token to a user. It returns a
// non-nil error when the token does not resolve.
type SessionResolver func(ctx context.Context, token string) (userID, email string, err error)

// Session resolves the caller's session from the named cookie, or from an
// "Authorization: Bearer <token>" header for non-browser clients. A resolved
// user is stored under "userID" and "userEmail". Requests without a valid
// session continue anonymously; RequireUser rejects them where needed.
func Session(cookieName string, resolve SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c, cookieName)
		if token == "" || resolve == nil {
			c.Next()
			return
		}
		uid, email, err := resolve(c.Request.Context(), token)
		if err == nil && uid != "" {
			c.Set(userIDKey, uid)
			c.Set(userEmailKey, email)
		}
		c.Next()
	}
}

// SessionToken returns the session token carried by the request, preferring
// the cookie over the Authorization header.
func SessionToken(c *gin.Context, cookieName string) string {
	if v, err := c.Cookie(cookieName); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireUser aborts with 401 unless Session resolved a user.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Unauthorized.")
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's ID, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	v, _ := c.Get(userIDKey)
	return asString(v)
}

// UserEmail returns the authenticated user's email, or "".
func UserEmail(c *gin.Context) string {
	v, _ := c.Get(userEmailKey)
	return asString(v)
}
