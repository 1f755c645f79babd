package models

import "time"

// Guest holds the contact details of the person the reservation is for.
type Guest struct {
	Name        string            `bson:"name" json:"name"`
	Email       string            `bson:"email" json:"email"`
	Phone       string            `bson:"phone,omitempty" json:"phone,omitempty"`
	Preferences map[string]string `bson:"preferences,omitempty" json:"preferences,omitempty"`
}

// RoomDetails describes what was booked and at which nightly rate.
type RoomDetails struct {
	RoomType        string  `bson:"room_type" json:"room_type"`
	Rate            float64 `bson:"rate" json:"rate"`
	NumAdults       int     `bson:"num_adults" json:"num_adults"`
	NumChildren     int     `bson:"num_children" json:"num_children"`
	SpecialRequests string  `bson:"special_requests,omitempty" json:"special_requests,omitempty"`
}

// BookingStatus tracks confirmation, payment and check-in progress.
type BookingStatus struct {
	IsConfirmed   bool      `bson:"is_confirmed" json:"is_confirmed"`
	IsPaid        bool      `bson:"is_paid" json:"is_paid"`
	PaymentStatus string    `bson:"payment_status" json:"payment_status"` // e.g. "pending", "paid"
	CheckInStatus string    `bson:"check_in_status" json:"check_in_status"`
	LastUpdated   time.Time `bson:"last_updated" json:"last_updated"`
}

// Booking represents a reservation record.
type Booking struct {
	ID           string        `bson:"id" json:"id"` // UUID
	Guest        Guest         `bson:"guest" json:"guest"`
	Room         RoomDetails   `bson:"room" json:"room"`
	CheckInDate  time.Time     `bson:"check_in_date" json:"check_in_date"`
	CheckOutDate time.Time     `bson:"check_out_date" json:"check_out_date"`
	Status       BookingStatus `bson:"status" json:"status"`
	TotalAmount  float64       `bson:"total_amount" json:"total_amount"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
}

// Nights is the stay length in whole days.
func (b *Booking) Nights() int {
	return DaysBetween(b.CheckInDate, b.CheckOutDate)
}

// RecalculateTotal derives TotalAmount from the nightly rate and stay length.
func (b *Booking) RecalculateTotal() {
	b.TotalAmount = b.Room.Rate * float64(b.Nights())
}

// BookingInput is what a completed booking conversation (or the REST API) hands
// to the booking service.
type BookingInput struct {
	Guest           Guest     `json:"guest"`
	RoomType        string    `json:"room_type"`
	NumAdults       int       `json:"num_adults"`
	NumChildren     int       `json:"num_children"`
	CheckInDate     time.Time `json:"check_in_date"`
	CheckOutDate    time.Time `json:"check_out_date"`
	SpecialRequests string    `json:"special_requests,omitempty"`
}

// BookingPatch carries the fields to change on an existing booking; nil means unchanged.
type BookingPatch struct {
	Guest        *Guest     `json:"guest,omitempty"`
	RoomType     *string    `json:"room_type,omitempty"`
	NumAdults    *int       `json:"num_adults,omitempty"`
	NumChildren  *int       `json:"num_children,omitempty"`
	CheckInDate  *time.Time `json:"check_in_date,omitempty"`
	CheckOutDate *time.Time `json:"check_out_date,omitempty"`
}

// BookingFilter narrows List queries. Empty fields match everything.
type BookingFilter struct {
	GuestEmail string `json:"guest_email,omitempty"`
}
