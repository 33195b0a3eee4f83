package middleware

import (
	"net/http"
	"strings"

	"firmeza/internal/apierror"

	"github.com/gin-gonic/gin"
)

// StatusResponse fills empty 401, 403 and 404 responses with the standard
// error body. Swagger and browser (text/html) requests are left alone.
func StatusResponse() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Size() > 0 {
			return
		}
		switch c.Writer.Status() {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		default:
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/swagger") ||
			strings.Contains(c.GetHeader("Accept"), "text/html") {
			return
		}
		status := c.Writer.Status()
		c.JSON(status, apierror.ForStatus(status, ""))
	}
}
