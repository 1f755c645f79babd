package handlers

import (
	"net/http"

	"hotelbot/config"
	"hotelbot/utils"

	"github.com/gin-gonic/gin"
)

const apiVersion = "1.0.0"

// HotelHandler serves the static hotel description.
type HotelHandler struct {
	Hotel config.HotelFacts
}

func NewHotelHandler(hotel config.HotelFacts) *HotelHandler {
	return &HotelHandler{Hotel: hotel}
}

func (h *HotelHandler) RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Hotel Booking Assistant API",
		"hotel":   h.Hotel.Name,
		"version": apiVersion,
	})
}

func (h *HotelHandler) HotelInfoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.Hotel)
}

// HealthHandler reports the last dependency health snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	state := "ok"
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "dependencies": status})
}
