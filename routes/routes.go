package routes

import (
	"restaurant-platform-api/config"
	"restaurant-platform-api/handlers"
	"restaurant-platform-api/middleware"
	"restaurant-platform-api/storage"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
)

// SetupRoutes registers all HTTP routes. The rate limiter only guards the
// public write endpoints and only when Redis is configured.
func SetupRoutes(r *gin.Engine, uploader storage.Uploader, rdb *rd.Client, cfg config.AppConfig) {
	limiter := func(c *gin.Context) { c.Next() }
	if rdb != nil {
		limiter = middleware.RedisRateLimit(rdb, cfg.RateLimit, cfg.RateWindow)
	}

	// ── Menu catalog ───────────────────────────────────────────────
	menu := r.Group("/menu")
	{
		menu.GET("/", handlers.GetMenu)
	}
	menuAdmin := menu.Group("")
	menuAdmin.Use(middleware.AdminRequired())
	{
		menuAdmin.POST("/", handlers.CreateMenu)
		menuAdmin.PUT("/:id", handlers.UpdateMenu)
		menuAdmin.DELETE("/:id", handlers.DeleteMenu)
		menuAdmin.POST("/upload", handlers.UploadImage(uploader))
		menuAdmin.GET("/admin/check", handlers.AdminCheck)
	}

	// ── Locations ──────────────────────────────────────────────────
	locations := r.Group("/locations")
	{
		locations.GET("/", handlers.ListLocations)
	}
	locationsAdmin := locations.Group("")
	locationsAdmin.Use(middleware.AdminRequired())
	{
		locationsAdmin.POST("/", handlers.CreateLocation)
		locationsAdmin.PUT("/:id", handlers.UpdateLocation)
		locationsAdmin.DELETE("/:id", handlers.DeleteLocation)
		locationsAdmin.POST("/upload", handlers.UploadImage(uploader))
		locationsAdmin.GET("/admin/check", handlers.AdminCheck)
	}

	// ── Events ─────────────────────────────────────────────────────
	events := r.Group("/events")
	{
		events.GET("/", handlers.ListEvents)
		events.GET("/filter", handlers.FilterEvents)
	}
	eventsAdmin := events.Group("")
	eventsAdmin.Use(middleware.AdminRequired())
	{
		eventsAdmin.POST("/", handlers.CreateEvent)
		eventsAdmin.PUT("/:id", handlers.UpdateEvent)
		eventsAdmin.DELETE("/:id", handlers.DeleteEvent)
		eventsAdmin.POST("/upload", handlers.UploadImage(uploader))
		eventsAdmin.GET("/admin/check", handlers.AdminCheck)
	}

	// ── Draft orders (visitor-token scoped) ────────────────────────
	orders := r.Group("/orders")
	{
		orders.POST("/draft", limiter, handlers.GetOrCreateDraft)
		orders.POST("/:id/add/:menuItemId", handlers.AddItem)
		orders.POST("/:id/inc/:menuItemId", handlers.IncreaseQty)
		orders.POST("/:id/dec/:menuItemId", handlers.DecreaseQty)
		orders.GET("/:id", handlers.GetOrder)
		orders.POST("/:id/confirm", handlers.ConfirmOrder)
	}

	// ── Reservations ───────────────────────────────────────────────
	reservations := r.Group("/reservations")
	{
		reservations.POST("/", limiter, handlers.CreateReservation)
	}
	reservationsAdmin := reservations.Group("")
	reservationsAdmin.Use(middleware.AdminRequired())
	{
		reservationsAdmin.GET("/", handlers.ListReservations)
		reservationsAdmin.PATCH("/:id/status", handlers.UpdateReservationStatus)
		reservationsAdmin.GET("/admin/check", handlers.AdminCheck)
	}
}
