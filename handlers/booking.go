package handlers

import (
	"errors"
	"net/http"

	"hotelbot/models"
	"hotelbot/services/booking"
	"hotelbot/utils"

	"github.com/gin-gonic/gin"
)

// BookingHandler exposes reservation management over REST.
type BookingHandler struct {
	Service booking.BookingService
}

func NewBookingHandler(service booking.BookingService) *BookingHandler {
	return &BookingHandler{Service: service}
}

// writeBookingError maps service errors onto HTTP statuses.
func writeBookingError(c *gin.Context, err error, action string) {
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, booking.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	default:
		utils.JSONError(c, http.StatusInternalServerError, "Failed to "+action+" booking", err)
	}
}

// ListBookingsHandler returns all bookings, optionally filtered by guest_email.
func (h *BookingHandler) ListBookingsHandler(c *gin.Context) {
	filter := models.BookingFilter{GuestEmail: c.Query("guest_email")}
	bookings, err := h.Service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		writeBookingError(c, err, "list")
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) GetBookingHandler(c *gin.Context) {
	b, err := h.Service.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeBookingError(c, err, "get")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) CreateBookingHandler(c *gin.Context) {
	var input models.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	b, err := h.Service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		writeBookingError(c, err, "create")
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) UpdateBookingHandler(c *gin.Context) {
	var patch models.BookingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	b, err := h.Service.UpdateBooking(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeBookingError(c, err, "update")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) DeleteBookingHandler(c *gin.Context) {
	deleted, err := h.Service.DeleteBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeBookingError(c, err, "delete")
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking deleted successfully"})
}

// ConfirmBookingHandler marks a pending booking confirmed.
func (h *BookingHandler) ConfirmBookingHandler(c *gin.Context) {
	b, err := h.Service.ConfirmBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeBookingError(c, err, "confirm")
		return
	}
	c.JSON(http.StatusOK, b)
}
