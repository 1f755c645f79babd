package booking

import (
	"context"
	"time"

	"hotelbot/config"
	bookingRepo "hotelbot/database/repository/booking"
	"hotelbot/models"
	ai "hotelbot/services/intelligence"

	"go.uber.org/zap"
)

// BookingService owns reservation identity, validation, pricing and persistence.
type BookingService interface {
	CreateBooking(ctx context.Context, input models.BookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	UpdateBooking(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) (bool, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	ConfirmBooking(ctx context.Context, id string) (*models.Booking, error)
	GenerateConfirmationText(ctx context.Context, booking *models.Booking) (string, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo   bookingRepo.BookingRepository
	Hotel  config.HotelFacts
	Writer ai.TextGenerator // optional; confirmation text falls back to a template
	Logger *zap.Logger
	Now    func() time.Time
}

func NewDefaultBookingService(repo bookingRepo.BookingRepository, hotel config.HotelFacts, writer ai.TextGenerator, logger *zap.Logger) *DefaultBookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultBookingService{
		Repo:   repo,
		Hotel:  hotel,
		Writer: writer,
		Logger: logger,
		Now:    time.Now,
	}
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
