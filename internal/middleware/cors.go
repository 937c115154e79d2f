package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns Cross-Origin Resource Sharing middleware for the configured
// origins. An empty list allows every origin without credentials.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = allowedOrigins
		cfg.AllowCredentials = true
	}
	cfg.AddAllowMethods("PATCH")
	cfg.AddAllowHeaders("Authorization", "Accept", "X-Requested-With", "X-Request-ID")
	cfg.AddExposeHeaders("Content-Disposition", "Content-Length", "X-Request-ID")
	return cors.New(cfg)
}
