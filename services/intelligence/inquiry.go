package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"hotelbot/config"

	"go.uber.org/zap"
)

// GeminiInquiryAnswerer answers free-text questions grounded on the hotel facts.
type GeminiInquiryAnswerer struct {
	gen    TextGenerator
	logger *zap.Logger
}

func NewGeminiInquiryAnswerer(gen TextGenerator, logger *zap.Logger) *GeminiInquiryAnswerer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiInquiryAnswerer{gen: gen, logger: logger}
}

func (a *GeminiInquiryAnswerer) AnswerInquiry(ctx context.Context, question string, facts config.HotelFacts) (string, error) {
	answer, err := a.gen.GenerateContent(ctx, buildInquiryPrompt(question, facts))
	if err != nil {
		return "", fmt.Errorf("%w: answer inquiry: %v", ErrUnavailable, err)
	}
	if strings.TrimSpace(answer) == "" {
		a.logger.Warn("Empty inquiry answer from model, using facts answer")
		return FactsAnswerer{}.AnswerInquiry(ctx, question, facts)
	}
	return answer, nil
}

// FactsAnswerer answers common questions straight from the hotel facts.
// Used when no language model is configured.
type FactsAnswerer struct{}

func (FactsAnswerer) AnswerInquiry(_ context.Context, question string, h config.HotelFacts) (string, error) {
	q := strings.ToLower(question)
	var parts []string

	if containsAny(q, "check-in", "check in", "checkin", "arrive", "arrival") {
		parts = append(parts, fmt.Sprintf("Check-in is from %s.", h.CheckInTime))
	}
	if containsAny(q, "check-out", "check out", "checkout", "leave", "departure") {
		parts = append(parts, fmt.Sprintf("Check-out is until %s.", h.CheckOutTime))
	}
	if containsAny(q, "where", "address", "located", "location") {
		parts = append(parts, fmt.Sprintf("We are located at %s.", h.Address))
	}
	if containsAny(q, "room", "price", "rate", "cost", "how much") {
		var rooms []string
		for _, rt := range h.RoomTypes {
			rooms = append(rooms, fmt.Sprintf("%s ($%.2f/night)", rt.Name, rt.Rate))
		}
		if len(rooms) > 0 {
			parts = append(parts, "Our rooms: "+strings.Join(rooms, ", ")+".")
		}
	}
	for _, amenity := range h.Amenities {
		if strings.Contains(q, strings.ToLower(amenity)) || containsAny(q, amenityAliases(amenity)...) {
			parts = append(parts, fmt.Sprintf("Yes, we offer %s.", amenity))
		}
	}
	if containsAny(q, "amenit", "facilit", "offer") {
		parts = append(parts, "Amenities: "+strings.Join(h.Amenities, ", ")+".")
	}

	keys := make([]string, 0, len(h.Policies))
	for k := range h.Policies {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(q, strings.TrimSuffix(k, "s")) || (k == "cancellation" && strings.Contains(q, "refund")) {
			parts = append(parts, h.Policies[k]+".")
		}
	}

	if len(parts) == 0 {
		return fmt.Sprintf("Thanks for your question! %s is at %s; check-in is from %s and check-out until %s. "+
			"For anything else, our front desk will be happy to help.", h.Name, h.Address, h.CheckInTime, h.CheckOutTime), nil
	}
	return strings.Join(parts, " "), nil
}

func amenityAliases(amenity string) []string {
	switch strings.ToLower(amenity) {
	case "free wi-fi":
		return []string{"wifi", "wi-fi", "internet"}
	case "swimming pool":
		return []string{"pool", "swim"}
	case "fitness center":
		return []string{"gym", "fitness"}
	case "parking":
		return []string{"park", "car"}
	case "restaurant":
		return []string{"restaurant", "dinner", "breakfast", "food"}
	}
	return nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
