package middleware

import (
	"crypto/subtle"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// AdminAuth guards a route group with HTTP Basic credentials. Failures get a
// 401 with a Basic challenge and a plain "Unauthorized" body.
func AdminAuth(username, password, realm string) gin.HandlerFunc {
	challenge := "Basic realm=" + strconv.Quote(realm)

	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok || !secureEqual(user, username) || !secureEqual(pass, password) {
			c.Header("WWW-Authenticate", challenge)
			c.String(http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}

		c.Set(gin.AuthUserKey, user)
		c.Next()
	}
}

func secureEqual(given, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(given), []byte(expected)) == 1
}
