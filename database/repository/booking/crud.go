package bookingRepo

import (
	"context"
	"errors"
	"fmt"

	"hotelbot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create inserts a new booking document.
func (r *mongoBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("error creating booking: %w", err)
	}
	return nil
}

// GetByID returns a booking by its ID.
func (r *mongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching booking %s: %w", id, err)
	}
	return &booking, nil
}

// Update replaces the stored document with the given booking.
func (r *mongoBookingRepo) Update(ctx context.Context, booking *models.Booking) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"id": booking.ID}, booking)
	if err != nil {
		return fmt.Errorf("error updating booking %s: %w", booking.ID, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a booking by ID and reports whether anything was removed.
func (r *mongoBookingRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return false, fmt.Errorf("error deleting booking %s: %w", id, err)
	}
	return res.DeletedCount > 0, nil
}

// List returns bookings matching the filter, earliest check-in first.
func (r *mongoBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	query := bson.M{}
	if filter.GuestEmail != "" {
		query["guest.email"] = filter.GuestEmail
	}
	opts := options.Find().SetSort(bson.D{{Key: "check_in_date", Value: 1}})

	cursor, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("error decoding bookings: %w", err)
	}
	return bookings, nil
}
