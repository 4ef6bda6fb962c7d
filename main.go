package main

import (
	"net/http"

	"restaurant-platform-api/config"
	"restaurant-platform-api/routes"
	"restaurant-platform-api/storage"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	if err := config.InitDB(cfg); err != nil {
		logrus.WithError(err).Fatal("failed to initialize database")
	}

	// Assign through the concrete type so an unconfigured store leaves the
	// interface nil rather than wrapping a nil pointer.
	var uploader storage.Uploader
	if supa := storage.NewSupabase(cfg); supa != nil {
		uploader = supa
	} else {
		logrus.Warn("image storage not configured, upload endpoints disabled")
	}

	var rdb *rd.Client
	if cfg.RedisAddr != "" {
		rdb = rd.NewClient(&rd.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		logrus.WithField("addr", cfg.RedisAddr).Info("rate limiting enabled")
	}

	// Default middleware: request logger + recovery
	r := gin.Default()
	r.Use(corsMiddleware(cfg.AllowedOrigins))
	r.Use(securityHeaders())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.SetupRoutes(r, uploader, rdb, cfg)

	logrus.WithField("port", cfg.Port).Info("server starting")
	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

// corsMiddleware allows only the configured frontend origins.
func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, X-API-Key, X-Visitor-Token")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Next()
	}
}
