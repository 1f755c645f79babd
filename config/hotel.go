package config

import (
	"strings"
	"time"
)

// RoomType is one entry of the bookable room catalog.
type RoomType struct {
	Key          string  `mapstructure:"KEY" json:"key"`
	Name         string  `mapstructure:"NAME" json:"name"`
	Rate         float64 `mapstructure:"RATE" json:"rate"`
	MaxOccupancy int     `mapstructure:"MAX_OCCUPANCY" json:"maxOccupancy"`
}

// HotelFacts is the static hotel description used for inquiries, prompts and pricing.
type HotelFacts struct {
	Name         string            `mapstructure:"NAME" json:"name"`
	Address      string            `mapstructure:"ADDRESS" json:"address"`
	CheckInTime  string            `mapstructure:"CHECK_IN_TIME" json:"checkInTime"`
	CheckOutTime string            `mapstructure:"CHECK_OUT_TIME" json:"checkOutTime"`
	Timezone     string            `mapstructure:"TIMEZONE" json:"timezone"`
	Amenities    []string          `mapstructure:"AMENITIES" json:"amenities"`
	Policies     map[string]string `mapstructure:"POLICIES" json:"policies"`
	RoomTypes    []RoomType        `mapstructure:"ROOM_TYPES" json:"roomTypes"`
}

// DefaultHotel returns the built-in hotel description.
func DefaultHotel() HotelFacts {
	return HotelFacts{
		Name:         "Powersmy Luxury Hotel",
		Address:      "123 Main Street, Cityville",
		CheckInTime:  "15:00",
		CheckOutTime: "11:00",
		Timezone:     "UTC",
		Amenities: []string{
			"Free Wi-Fi",
			"Swimming Pool",
			"Fitness Center",
			"Spa",
			"Restaurant",
			"24/7 Room Service",
			"Business Center",
			"Parking",
		},
		Policies: map[string]string{
			"cancellation": "Free cancellation up to 24 hours before check-in",
			"pets":         "Pet-friendly hotel with additional cleaning fee",
			"smoking":      "Non-smoking property",
			"payment":      "Credit card required for reservation",
		},
		RoomTypes: []RoomType{
			{Key: "standard", Name: "Standard Room", Rate: 120, MaxOccupancy: 2},
			{Key: "deluxe", Name: "Deluxe Room", Rate: 180, MaxOccupancy: 3},
			{Key: "suite", Name: "Executive Suite", Rate: 320, MaxOccupancy: 4},
			{Key: "presidential", Name: "Presidential Suite", Rate: 950, MaxOccupancy: 6},
		},
	}
}

func (h HotelFacts) withDefaults() HotelFacts {
	def := DefaultHotel()
	if h.Name == "" {
		h.Name = def.Name
	}
	if h.Address == "" {
		h.Address = def.Address
	}
	if h.CheckInTime == "" {
		h.CheckInTime = def.CheckInTime
	}
	if h.CheckOutTime == "" {
		h.CheckOutTime = def.CheckOutTime
	}
	if h.Timezone == "" {
		h.Timezone = def.Timezone
	}
	if len(h.Amenities) == 0 {
		h.Amenities = def.Amenities
	}
	if len(h.Policies) == 0 {
		h.Policies = def.Policies
	}
	if len(h.RoomTypes) == 0 {
		h.RoomTypes = def.RoomTypes
	}
	return h
}

// RoomType looks a catalog entry up by key, case-insensitively.
func (h HotelFacts) RoomType(key string) (RoomType, bool) {
	for _, rt := range h.RoomTypes {
		if strings.EqualFold(rt.Key, key) {
			return rt, true
		}
	}
	return RoomType{}, false
}

// Location resolves the configured timezone, falling back to UTC.
func (h HotelFacts) Location() *time.Location {
	if h.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
