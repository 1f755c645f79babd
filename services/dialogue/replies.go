package dialogue

import (
	"fmt"
	"strings"

	"hotelbot/config"
	"hotelbot/models"
	"hotelbot/services/booking"
)

const (
	replyUnavailable = "Sorry, I'm having trouble right now. Please try again in a moment."
	replyAbandoned   = "No problem, I've dropped that request. How else can I help?"
	replyEmpty       = "Sorry, I didn't catch that. Could you say it again?"
	replyKeptBooking = "Okay, your booking is unchanged. Anything else I can help with?"
)

func (e *Engine) helpReply() string {
	return fmt.Sprintf("I'm the booking assistant for %s. I can book a room, change the dates of a booking, cancel a booking, or answer questions about the hotel. What would you like to do?", e.hotel.Name)
}

// slotPrompt is the plain question for a booking slot.
func (e *Engine) slotPrompt(slot models.SlotName) string {
	switch slot {
	case models.SlotDates:
		return `What dates would you like to stay? You can say something like "tomorrow for 2 nights" or "2025-07-01 to 2025-07-04".`
	case models.SlotRoomType:
		return fmt.Sprintf("Which room type would you like? We offer: %s.", e.validator.RoomList())
	case models.SlotGuestInfo:
		return "Please send the guest's full name and email address. A phone number and the number of adults and children are optional."
	case models.SlotNewDates:
		return `What new dates would you like? For example "next week" or "2025-07-01 to 2025-07-04".`
	}
	return "Could you give me a bit more detail?"
}

func (e *Engine) extractionReply(slot models.SlotName) string {
	switch slot {
	case models.SlotDates, models.SlotNewDates:
		return "I couldn't find any dates in that. " + e.slotPrompt(slot)
	case models.SlotRoomType:
		return "I couldn't tell which room you'd like. " + e.slotPrompt(slot)
	case models.SlotGuestInfo:
		return "I couldn't find your details in that. " + e.slotPrompt(slot)
	}
	return e.slotPrompt(slot)
}

func refPrompt(intent models.Intent, lastRef string) string {
	action := "change"
	if intent == models.IntentCancellation {
		action = "cancel"
	}
	msg := fmt.Sprintf("Sure, I can help you %s a booking. What's your booking reference?", action)
	if lastRef != "" {
		msg += fmt.Sprintf(" (Your most recent booking was %s.)", lastRef)
	}
	return msg
}

func refExtractionReply(intent models.Intent, lastRef string) string {
	return "I couldn't find a booking reference in that. " + refPrompt(intent, lastRef)
}

func notFoundReply(ref string) string {
	return fmt.Sprintf("I couldn't find a booking with reference %s. Please check the reference and try again.", ref)
}

// quoteAck confirms the chosen room with the price of the stay collected so far.
func quoteAck(rt config.RoomType, r models.DateRange) string {
	nights := r.Nights()
	unit := "nights"
	if nights == 1 {
		unit = "night"
	}
	return fmt.Sprintf("%s it is, $%.0f for %d %s.", rt.Name, booking.QuoteStay(rt, r), nights, unit)
}

func formatRange(r models.DateRange) string {
	return fmt.Sprintf("%s to %s (%d night(s))",
		r.CheckIn.Format(models.DateLayout), r.CheckOut.Format(models.DateLayout), r.Nights())
}

func bookingLine(b *models.Booking) string {
	return fmt.Sprintf("booking %s: %s, %s to %s",
		b.ID, b.Room.RoomType, b.CheckInDate.Format(models.DateLayout), b.CheckOutDate.Format(models.DateLayout))
}

func cancelConfirmPrompt(b *models.Booking) string {
	return fmt.Sprintf("I found %s. Are you sure you want to cancel it? Please answer yes or no.", bookingLine(b))
}

func rescheduledReply(b *models.Booking) string {
	return fmt.Sprintf("Done! Your %s. New total: $%.2f.", bookingLine(b), b.TotalAmount)
}

func cancelledReply(ref string) string {
	return fmt.Sprintf("Your booking %s has been cancelled.", ref)
}

// localConfirmation is used when the collaborator cannot write one.
func (e *Engine) localConfirmation(b *models.Booking) string {
	return fmt.Sprintf("Your booking at %s is confirmed! Booking ID: %s. %s to %s, %s room, total $%.2f.",
		e.hotel.Name, b.ID,
		b.CheckInDate.Format(models.DateLayout), b.CheckOutDate.Format(models.DateLayout),
		b.Room.RoomType, b.TotalAmount)
}

func withBookingID(text string, b *models.Booking) string {
	if strings.Contains(text, b.ID) {
		return text
	}
	return fmt.Sprintf("%s\nBooking ID: %s", text, b.ID)
}
