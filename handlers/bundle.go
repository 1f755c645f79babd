package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Instagram webhook
	VerifyWebhookHandler  gin.HandlerFunc
	ReceiveWebhookHandler gin.HandlerFunc

	// Bookings REST
	ListBookingsHandler   gin.HandlerFunc
	GetBookingHandler     gin.HandlerFunc
	CreateBookingHandler  gin.HandlerFunc
	UpdateBookingHandler  gin.HandlerFunc
	DeleteBookingHandler  gin.HandlerFunc
	ConfirmBookingHandler gin.HandlerFunc

	// Conversations
	ChatHandler              gin.HandlerFunc
	GetConversationHandler   gin.HandlerFunc
	ResetConversationHandler gin.HandlerFunc

	// Public info
	RootHandler      gin.HandlerFunc
	HotelInfoHandler gin.HandlerFunc
	HealthHandler    gin.HandlerFunc

	// AppSecret signs webhook bodies; empty disables the signature check.
	AppSecret string
}
