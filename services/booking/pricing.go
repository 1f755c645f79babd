package booking

import (
	"strconv"
	"strings"

	"hotelbot/config"
	"hotelbot/models"
)

// validateInput checks the reservation rules and resolves the room type from the catalog.
func (s *DefaultBookingService) validateInput(input models.BookingInput) (config.RoomType, error) {
	if !models.DateOnly(input.CheckOutDate).After(models.DateOnly(input.CheckInDate)) {
		return config.RoomType{}, NewValidationError("check_out_date", "Check-out date must be after check-in date")
	}
	if strings.TrimSpace(input.Guest.Email) == "" {
		return config.RoomType{}, NewValidationError("guest.email", "Guest email is required")
	}
	if input.NumAdults < 1 {
		return config.RoomType{}, NewValidationError("num_adults", "At least one adult guest is required")
	}
	if input.NumChildren < 0 {
		return config.RoomType{}, NewValidationError("num_children", "Number of children cannot be negative")
	}
	rt, ok := s.Hotel.RoomType(input.RoomType)
	if !ok {
		return config.RoomType{}, NewValidationError("room_type", "Unknown room type "+input.RoomType)
	}
	if rt.MaxOccupancy > 0 && input.NumAdults+input.NumChildren > rt.MaxOccupancy {
		return config.RoomType{}, NewValidationError("room_type", rt.Name+" sleeps at most "+strconv.Itoa(rt.MaxOccupancy)+" guests")
	}
	return rt, nil
}

// QuoteStay prices a stay of the given room type without creating anything.
func QuoteStay(rt config.RoomType, r models.DateRange) float64 {
	return rt.Rate * float64(r.Nights())
}
