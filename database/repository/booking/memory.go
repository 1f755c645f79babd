package bookingRepo

import (
	"context"
	"sort"
	"strings"
	"sync"

	"hotelbot/models"
)

// MemoryBookingRepo keeps bookings in process memory. Used when no database is
// configured and in tests.
type MemoryBookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]models.Booking
}

func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{bookings: make(map[string]models.Booking)}
}

func (r *MemoryBookingRepo) Create(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings[booking.ID] = *booking
	return nil
}

func (r *MemoryBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *MemoryBookingRepo) Update(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[booking.ID]; !ok {
		return ErrNotFound
	}
	r.bookings[booking.ID] = *booking
	return nil
}

func (r *MemoryBookingRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return false, nil
	}
	delete(r.bookings, id)
	return true, nil
}

func (r *MemoryBookingRepo) List(_ context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Booking{}
	for _, b := range r.bookings {
		if filter.GuestEmail != "" && !strings.EqualFold(b.Guest.Email, filter.GuestEmail) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CheckInDate.Before(out[j].CheckInDate) })
	return out, nil
}
