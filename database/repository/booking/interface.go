package bookingRepo

import (
	"context"
	"errors"

	"hotelbot/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrNotFound is returned when no booking carries the requested ID.
var ErrNotFound = errors.New("booking not found")

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Update(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
}

type mongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo returns a BookingRepository backed by the "bookings" collection.
func NewMongoBookingRepo(db *mongo.Database) BookingRepository {
	return &mongoBookingRepo{
		coll: db.Collection("bookings"),
	}
}
