package dialogue

import (
	"context"

	"hotelbot/config"
	"hotelbot/models"
)

// IntentClassifier maps one free-text message onto the fixed intent set.
type IntentClassifier interface {
	ClassifyIntent(ctx context.Context, text string) (models.Intent, error)
}

// BookingCollaborator is the part of the booking service the engine drives.
// CreateBooking and UpdateBooking report rule violations as *booking.ValidationError;
// GetBooking and UpdateBooking report unknown IDs as booking.ErrBookingNotFound.
type BookingCollaborator interface {
	CreateBooking(ctx context.Context, input models.BookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	UpdateBooking(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) (bool, error)
	GenerateConfirmationText(ctx context.Context, booking *models.Booking) (string, error)
}

// InquiryAnswerer answers a free-text question about the hotel.
type InquiryAnswerer interface {
	AnswerInquiry(ctx context.Context, question string, facts config.HotelFacts) (string, error)
}
