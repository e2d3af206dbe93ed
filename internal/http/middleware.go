package http

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"jobsy/internal/i18n"
)

const (
	apiKeyHeader   = "X-API-Key"
	languageCookie = "lang"
	languageKey    = "language"
)

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}

// apiKeyMiddleware exige X-API-Key cuando hay una clave configurada.
func apiKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		got := c.GetHeader(apiKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key", "code": "invalid_api_key"})
			return
		}
		c.Next()
	}
}

// languageMiddleware negocia el idioma con la cookie lang y Accept-Language.
func languageMiddleware(catalog *i18n.Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		preferred, _ := c.Cookie(languageCookie)
		c.Set(languageKey, catalog.Negotiate(preferred, c.GetHeader("Accept-Language")))
		c.Next()
	}
}

func requestLanguage(c *gin.Context, catalog *i18n.Catalog) language.Tag {
	if val, ok := c.Get(languageKey); ok {
		if tag, ok := val.(language.Tag); ok {
			return tag
		}
	}
	return catalog.Default()
}

// healthHandler responde GET /healthz.
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// notFoundHandler usa el mismo contrato de error que el resto de la API.
func notFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found", "code": "route_not_found"})
}
