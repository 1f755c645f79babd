package ai

import (
	"fmt"
	"sort"
	"strings"

	"hotelbot/config"
)

const intentClassifierPrompt = `Analyze the user's message and determine their primary intent.
Possible intents:
- booking: User wants to make a new booking
- rescheduling: User wants to change the dates of an existing booking
- cancellation: User wants to cancel a booking
- inquiry: User has questions about the hotel
- unknown: None of the above

User message: %s

Respond only with JSON of the form {"intent": "<intent>", "confidence": <0..1>}.`

const inquiryPrompt = `You are the booking assistant for %s.
Based on the following hotel information, please answer the user's question briefly and politely.
If the answer is not in the information, say you are not sure and suggest contacting the front desk.

Hotel Information:
%s
User's question: %s`

const confirmationPrompt = `Write a short, friendly message confirming this hotel reservation to the guest.
Keep every detail exactly as given and always include the booking ID.

%s`

// HotelFactsText renders the hotel facts as a plain-text block for prompts.
func HotelFactsText(h config.HotelFacts) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- Name: %s\n", h.Name)
	fmt.Fprintf(&sb, "- Address: %s\n", h.Address)
	fmt.Fprintf(&sb, "- Check-in time: %s\n", h.CheckInTime)
	fmt.Fprintf(&sb, "- Check-out time: %s\n", h.CheckOutTime)
	if len(h.Amenities) > 0 {
		fmt.Fprintf(&sb, "- Amenities: %s\n", strings.Join(h.Amenities, ", "))
	}
	if len(h.RoomTypes) > 0 {
		sb.WriteString("- Room types:\n")
		for _, rt := range h.RoomTypes {
			fmt.Fprintf(&sb, "  - %s: $%.2f per night, up to %d guests\n", rt.Name, rt.Rate, rt.MaxOccupancy)
		}
	}
	if len(h.Policies) > 0 {
		sb.WriteString("- Policies:\n")
		keys := make([]string, 0, len(h.Policies))
		for k := range h.Policies {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "  - %s: %s\n", k, h.Policies[k])
		}
	}
	return sb.String()
}

func buildIntentPrompt(message string) string {
	return fmt.Sprintf(intentClassifierPrompt, message)
}

func buildInquiryPrompt(question string, h config.HotelFacts) string {
	return fmt.Sprintf(inquiryPrompt, h.Name, HotelFactsText(h), question)
}

// BuildConfirmationPrompt wraps a booking summary in the confirmation instructions.
func BuildConfirmationPrompt(summary string) string {
	return fmt.Sprintf(confirmationPrompt, summary)
}
