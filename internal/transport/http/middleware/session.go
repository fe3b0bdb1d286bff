package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sick-fits/internal/core/auth"
	"sick-fits/internal/domain"
	resp "sick-fits/internal/transport/http/response"
)

const KeyUserID = "userId"

type TokenParser interface {
	Parse(token string) (string, error)
}

// Session resolves the caller from the "token" cookie, falling back to an
// Authorization bearer header. Requests without a valid token continue
// anonymously; handlers decide whether a session is required.
func Session(p TokenParser, l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, _ := c.Cookie(auth.CookieName)
		if tok == "" {
			if ah := c.GetHeader("Authorization"); strings.HasPrefix(ah, "Bearer ") {
				tok = strings.TrimPrefix(ah, "Bearer ")
			}
		}
		if tok != "" {
			uid, err := p.Parse(tok)
			if err != nil {
				l.Debug("ignoring invalid session token", zap.String("rid", c.GetString(KeyRequestID)), zap.Error(err))
			} else {
				c.Set(KeyUserID, uid)
				c.Request = c.Request.WithContext(auth.WithUserID(c.Request.Context(), uid))
			}
		}
		c.Next()
	}
}

// RequireSession rejects anonymous requests.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(KeyUserID) == "" {
			c.AbortWithStatusJSON(http.StatusOK, resp.FromError(domain.AuthRequired()))
			return
		}
		c.Next()
	}
}
