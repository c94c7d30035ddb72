package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/insurance-quote-service/internal/platform/config"
)

// CORS adds the configured Access-Control-Allow-* headers to every response
// and answers preflight OPTIONS requests with 204. Empty values are omitted.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	headers := [][2]string{
		{"Access-Control-Allow-Origin", cfg.AllowOrigin},
		{"Access-Control-Allow-Headers", cfg.AllowHeaders},
		{"Access-Control-Allow-Methods", cfg.AllowMethods},
	}

	return func(c *gin.Context) {
		for _, h := range headers {
			if h[1] != "" {
				c.Header(h[0], h[1])
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
