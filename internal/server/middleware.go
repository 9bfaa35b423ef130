package server

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
)

const bearerPrefix = "Bearer "

// TokenAuthRequired guards a route with the static API token. The token is
// read from the runtime config so operators can rotate it without a restart;
// AUTH_DISABLE switches the check off. An empty configured token denies
// everything rather than opening the route.
func (s *Server) TokenAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.AuthDisable {
			c.Next()
			return
		}

		expected := s.cfg.AuthToken
		if s.runtimeCfg != nil {
			expected = s.runtimeCfg.Get().AuthToken
		}
		expected = strings.TrimSpace(expected)
		if expected == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if !strings.HasPrefix(header, bearerPrefix) {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Next()
	}
}
