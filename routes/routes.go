package routes

import (
	"time"

	"hotelbot/handlers"
	"hotelbot/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterWebhookRoutes registers the Instagram messaging webhook.
func RegisterWebhookRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/webhook", hb.VerifyWebhookHandler)
	r.POST("/webhook", middleware.WebhookSignatureMiddleware(hb.AppSecret), hb.ReceiveWebhookHandler)
}

// RegisterBookingRoutes registers reservation management endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.JWTAuthAdminMiddleware())
		api.GET("", hb.ListBookingsHandler)
		api.POST("", hb.CreateBookingHandler)
		api.GET("/:id", hb.GetBookingHandler)
		api.PUT("/:id", hb.UpdateBookingHandler)
		api.DELETE("/:id", hb.DeleteBookingHandler)
		api.POST("/:id/confirm", hb.ConfirmBookingHandler)
	}
}

// RegisterConversationRoutes registers direct chat and conversation inspection.
func RegisterConversationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.Use(middleware.JWTAuthAdminMiddleware())
		api.POST("/chat", hb.ChatHandler)
		api.GET("/conversations/:userID", hb.GetConversationHandler)
		api.DELETE("/conversations/:userID", hb.ResetConversationHandler)
	}
}

// RegisterPublicRoutes registers root, hotel info, health and metrics.
func RegisterPublicRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/", hb.RootHandler)
	r.GET("/hotel/info", hb.HotelInfoHandler)
	r.GET("/health", hb.HealthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterPublicRoutes(r, hb)
	RegisterWebhookRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterConversationRoutes(r, hb)
}
