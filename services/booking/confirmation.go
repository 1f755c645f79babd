package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotelbot/models"
	ai "hotelbot/services/intelligence"

	"go.uber.org/zap"
)

// BookingSummary renders the facts of a booking as plain text. The booking ID
// is always part of the summary.
func BookingSummary(b *models.Booking, hotelName string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Hotel: %s\n", hotelName)
	fmt.Fprintf(&sb, "Booking ID: %s\n", b.ID)
	fmt.Fprintf(&sb, "Guest: %s (%s)\n", b.Guest.Name, b.Guest.Email)
	fmt.Fprintf(&sb, "Room: %s\n", b.Room.RoomType)
	fmt.Fprintf(&sb, "Check-in: %s\n", b.CheckInDate.Format(models.DateLayout))
	fmt.Fprintf(&sb, "Check-out: %s\n", b.CheckOutDate.Format(models.DateLayout))
	fmt.Fprintf(&sb, "Nights: %d\n", b.Nights())
	fmt.Fprintf(&sb, "Guests: %d adult(s), %d child(ren)\n", b.Room.NumAdults, b.Room.NumChildren)
	fmt.Fprintf(&sb, "Total: $%.2f", b.TotalAmount)
	return sb.String()
}

// TemplateConfirmation is the confirmation message used when no writer is configured.
func TemplateConfirmation(b *models.Booking, hotelName string) string {
	return fmt.Sprintf(
		"Your booking is confirmed! Booking ID: %s. %s, %s to %s (%d night(s)) at %s. Total: $%.2f. We look forward to welcoming you, %s.",
		b.ID,
		b.Room.RoomType,
		b.CheckInDate.Format(models.DateLayout),
		b.CheckOutDate.Format(models.DateLayout),
		b.Nights(),
		hotelName,
		b.TotalAmount,
		b.Guest.Name,
	)
}

// GenerateConfirmationText produces a guest-facing confirmation. A configured
// writer is asked first; its reply is only used when it mentions the booking ID.
func (s *DefaultBookingService) GenerateConfirmationText(ctx context.Context, b *models.Booking) (string, error) {
	if b == nil {
		return "", fmt.Errorf("GenerateConfirmationText: nil booking")
	}
	if s.Writer == nil {
		return TemplateConfirmation(b, s.Hotel.Name), nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	text, err := s.Writer.GenerateContent(ctx, ai.BuildConfirmationPrompt(BookingSummary(b, s.Hotel.Name)))
	if err != nil {
		s.Logger.Warn("Confirmation writer failed, using template", zap.String("booking_id", b.ID), zap.Error(err))
		return TemplateConfirmation(b, s.Hotel.Name), nil
	}
	text = strings.TrimSpace(text)
	if text == "" || !strings.Contains(text, b.ID) {
		return TemplateConfirmation(b, s.Hotel.Name), nil
	}
	return text, nil
}
