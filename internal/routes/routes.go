package routes

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/luckguide/luckguide-golang/internal/handlers"
	"github.com/luckguide/luckguide-golang/internal/middleware"
)

// CORSMiddleware tells the browser the site frontend may talk to this API.
func CORSMiddleware() gin.HandlerFunc {
	origin := os.Getenv("SITE_ORIGIN")
	if origin == "" {
		origin = "http://localhost:3000"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware())
	router.Use(middleware.LocaleMiddleware())

	v1 := router.Group("/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Public Routes ---
		v1.POST("/register", h.Register)
		v1.POST("/login", h.Login)
		v1.GET("/products", h.ListProducts)
		v1.POST("/contact", h.SubmitContact)

		// --- Provider Webhooks (signature-verified, not JWT) ---
		v1.POST("/webhooks/stripe", h.StripeWebhook)
		v1.POST("/webhooks/airwallex", h.AirwallexWebhook)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware())
		{
			auth.GET("/profile/me", h.GetProfile)

			auth.GET("/credits", h.GetMyCredits)
			auth.GET("/credits/stream", h.StreamCredits)

			auth.POST("/checkout", h.CreateCheckout)
			auth.POST("/checkout/complete", h.CompleteCheckout)

			auth.POST("/readings", h.CreateReading)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware())
		admin.Use(middleware.AdminMiddleware(h.DB))
		{
			admin.GET("/orders", h.ListOrders)
			admin.GET("/users", h.ListUsers)
			admin.PATCH("/users/:id/status", h.UpdateUserStatus)
			admin.GET("/contacts", h.ListContacts)
		}
	}

	return router
}
