package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const CtxSessionKey = "session_id"

// Middleware makes sure every request carries a session: a valid cookie is
// reused, anything else is replaced with a freshly minted one.
func Middleware(tokens TokenService, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(cookieName); err == nil && raw != "" {
			if claims, err := tokens.Parse(raw); err == nil {
				c.Set(CtxSessionKey, claims.SessionID)
				c.Next()
				return
			}
			logger.Debug("replacing invalid session cookie")
		}

		sid := NewSessionID()
		signed, exp, err := tokens.Sign(sid)
		if err != nil {
			logger.Error("sign session cookie", zap.Error(err))
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     cookieName,
			Value:    signed,
			Path:     "/",
			Expires:  exp,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   c.Request.TLS != nil,
		})
		c.Set(CtxSessionKey, sid)
		c.Next()
	}
}

// GetID returns the session id set by Middleware, or "" outside it.
func GetID(c *gin.Context) string {
	return c.GetString(CtxSessionKey)
}
