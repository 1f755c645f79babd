package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "hotelbot/database/repository/booking"
	"hotelbot/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateBooking validates the input, prices the stay and stores a new booking.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, input models.BookingInput) (*models.Booking, error) {
	rt, err := s.validateInput(input)
	if err != nil {
		return nil, err
	}

	now := s.now()
	booking := &models.Booking{
		ID:    uuid.New().String(),
		Guest: input.Guest,
		Room: models.RoomDetails{
			RoomType:        rt.Key,
			Rate:            rt.Rate,
			NumAdults:       input.NumAdults,
			NumChildren:     input.NumChildren,
			SpecialRequests: input.SpecialRequests,
		},
		CheckInDate:  models.DateOnly(input.CheckInDate),
		CheckOutDate: models.DateOnly(input.CheckOutDate),
		Status: models.BookingStatus{
			PaymentStatus: "pending",
			CheckInStatus: "pending",
			LastUpdated:   now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	booking.RecalculateTotal()

	if err := s.Repo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("CreateBooking: %w", err)
	}
	s.Logger.Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.String("room_type", booking.Room.RoomType),
		zap.Int("nights", booking.Nights()),
		zap.Float64("total", booking.TotalAmount))
	return booking, nil
}

// GetBooking returns a booking by ID or ErrBookingNotFound.
func (s *DefaultBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetBooking: %w", err)
	}
	return booking, nil
}

// UpdateBooking applies the patch, re-validates and re-prices the booking.
func (s *DefaultBookingService) UpdateBooking(ctx context.Context, id string, patch models.BookingPatch) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Guest != nil {
		booking.Guest = *patch.Guest
	}
	if patch.RoomType != nil {
		booking.Room.RoomType = *patch.RoomType
	}
	if patch.NumAdults != nil {
		booking.Room.NumAdults = *patch.NumAdults
	}
	if patch.NumChildren != nil {
		booking.Room.NumChildren = *patch.NumChildren
	}
	if patch.CheckInDate != nil {
		booking.CheckInDate = models.DateOnly(*patch.CheckInDate)
	}
	if patch.CheckOutDate != nil {
		booking.CheckOutDate = models.DateOnly(*patch.CheckOutDate)
	}

	rt, err := s.validateInput(models.BookingInput{
		Guest:        booking.Guest,
		RoomType:     booking.Room.RoomType,
		NumAdults:    booking.Room.NumAdults,
		NumChildren:  booking.Room.NumChildren,
		CheckInDate:  booking.CheckInDate,
		CheckOutDate: booking.CheckOutDate,
	})
	if err != nil {
		return nil, err
	}
	booking.Room.RoomType = rt.Key
	booking.Room.Rate = rt.Rate
	booking.RecalculateTotal()

	now := s.now()
	booking.Status.LastUpdated = now
	booking.UpdatedAt = now

	if err := s.Repo.Update(ctx, booking); err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("UpdateBooking: %w", err)
	}
	s.Logger.Info("Booking updated", zap.String("booking_id", booking.ID), zap.Float64("total", booking.TotalAmount))
	return booking, nil
}

// DeleteBooking removes a booking and reports whether it existed.
func (s *DefaultBookingService) DeleteBooking(ctx context.Context, id string) (bool, error) {
	deleted, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("DeleteBooking: %w", err)
	}
	if deleted {
		s.Logger.Info("Booking deleted", zap.String("booking_id", id))
	}
	return deleted, nil
}

// ListBookings returns bookings, optionally filtered by guest email.
func (s *DefaultBookingService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	bookings, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ListBookings: %w", err)
	}
	return bookings, nil
}

// ConfirmBooking marks a booking as confirmed.
func (s *DefaultBookingService) ConfirmBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	booking.Status.IsConfirmed = true
	booking.Status.LastUpdated = now
	booking.UpdatedAt = now

	if err := s.Repo.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("ConfirmBooking: %w", err)
	}
	return booking, nil
}
