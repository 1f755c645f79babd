package dialogue

import (
	"fmt"
	"strings"
	"time"

	"hotelbot/config"
	"hotelbot/models"
)

// Limits bound the stays the assistant will accept.
type Limits struct {
	MinNights   int
	MaxNights   int
	MaxLeadDays int
}

func DefaultLimits() Limits {
	return Limits{MinNights: 1, MaxNights: 30, MaxLeadDays: 365}
}

// ValidationResult is the outcome of checking one slot value. Reason is shown
// to the guest verbatim when OK is false.
type ValidationResult struct {
	OK     bool
	Kind   ErrorKind
	Reason string
}

func pass() ValidationResult {
	return ValidationResult{OK: true}
}

func fail(reason string) ValidationResult {
	return ValidationResult{Kind: KindValidationFailure, Reason: reason}
}

// ValidationContext carries what a check needs besides the value itself.
type ValidationContext struct {
	Today time.Time
}

// Validator checks slot values against the stay rules and the room catalog.
type Validator struct {
	limits Limits
	rooms  []config.RoomType
}

func NewValidator(limits Limits, rooms []config.RoomType) *Validator {
	def := DefaultLimits()
	if limits.MinNights <= 0 {
		limits.MinNights = def.MinNights
	}
	if limits.MaxNights <= 0 {
		limits.MaxNights = def.MaxNights
	}
	if limits.MaxLeadDays <= 0 {
		limits.MaxLeadDays = def.MaxLeadDays
	}
	return &Validator{limits: limits, rooms: rooms}
}

// Validate dispatches on the slot name. Values of the wrong type fail rather than panic.
func (v *Validator) Validate(slot models.SlotName, value any, vctx ValidationContext) ValidationResult {
	switch slot {
	case models.SlotDates, models.SlotNewDates:
		switch r := value.(type) {
		case models.DateRange:
			return v.ValidateDates(r, vctx.Today)
		case *models.DateRange:
			if r != nil {
				return v.ValidateDates(*r, vctx.Today)
			}
		}
		return fail("I couldn't read those dates.")
	case models.SlotRoomType:
		if s, ok := value.(string); ok {
			_, res := v.ValidateRoomType(s)
			return res
		}
		return fail("I couldn't tell which room you'd like.")
	case models.SlotGuestInfo:
		switch g := value.(type) {
		case models.GuestInfo:
			return v.ValidateGuestInfo(g)
		case *models.GuestInfo:
			if g != nil {
				return v.ValidateGuestInfo(*g)
			}
		}
		return fail("I need your name and email address.")
	}
	return fail(fmt.Sprintf("Unknown detail %q.", slot))
}

// ValidateDates applies, in order: not in the past, check-out after check-in,
// stay length within limits, check-in within the booking horizon.
func (v *Validator) ValidateDates(r models.DateRange, today time.Time) ValidationResult {
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return fail("I need both a check-in and a check-out date.")
	}
	if models.DaysBetween(today, r.CheckIn) < 0 {
		return fail("The check-in date can't be in the past.")
	}
	nights := r.Nights()
	if nights <= 0 {
		return fail("The check-out date must be after the check-in date.")
	}
	if nights < v.limits.MinNights {
		return fail(fmt.Sprintf("The minimum stay is %d night(s).", v.limits.MinNights))
	}
	if nights > v.limits.MaxNights {
		return fail(fmt.Sprintf("The maximum stay is %d nights.", v.limits.MaxNights))
	}
	if models.DaysBetween(today, r.CheckIn) > v.limits.MaxLeadDays {
		return fail(fmt.Sprintf("We only take reservations up to %d days in advance.", v.limits.MaxLeadDays))
	}
	return pass()
}

// MatchRoomType finds a catalog entry named in text, by key or display name.
// The longest match wins so "executive suite" beats "suite".
func (v *Validator) MatchRoomType(text string) (config.RoomType, bool) {
	lower := " " + strings.ToLower(strings.TrimSpace(text)) + " "
	var best config.RoomType
	bestLen := 0
	for _, rt := range v.rooms {
		for _, name := range []string{rt.Key, rt.Name} {
			n := strings.ToLower(strings.TrimSpace(name))
			if n == "" || len(n) <= bestLen {
				continue
			}
			if containsWord(lower, n) {
				best, bestLen = rt, len(n)
			}
		}
	}
	return best, bestLen > 0
}

// ValidateRoomType accepts a catalog key or display name, case-insensitively.
func (v *Validator) ValidateRoomType(value string) (config.RoomType, ValidationResult) {
	value = strings.TrimSpace(value)
	for _, rt := range v.rooms {
		if strings.EqualFold(rt.Key, value) || strings.EqualFold(rt.Name, value) {
			return rt, pass()
		}
	}
	return config.RoomType{}, fail(fmt.Sprintf("Sorry, we don't have a room type called %q. We offer: %s.", value, v.RoomList()))
}

// ValidateGuestInfo requires a name and an email-shaped address; phone is optional.
func (v *Validator) ValidateGuestInfo(g models.GuestInfo) ValidationResult {
	if strings.TrimSpace(g.Name) == "" {
		return fail("Please include the name the reservation should be under.")
	}
	if !isEmailShaped(g.Email) {
		return fail("Please include a valid email address (like name@example.com).")
	}
	if g.Adults < 1 {
		return fail("At least one adult must be staying.")
	}
	if g.Children < 0 {
		return fail("The number of children can't be negative.")
	}
	return pass()
}

// ValidateBooking re-checks the filled slots together before the booking is
// created and names the first slot that no longer holds. A party larger than
// the room sleeps is charged to room_type so the guest picks another room.
func (v *Validator) ValidateBooking(slots models.CollectedSlots, today time.Time) (models.SlotName, ValidationResult) {
	if slot, missing := slots.FirstMissing(models.BookingSlotOrder); missing {
		return slot, fail("Some booking details are still missing.")
	}
	if res := v.ValidateDates(*slots.Dates, today); !res.OK {
		return models.SlotDates, res
	}
	rt, res := v.ValidateRoomType(slots.RoomType)
	if !res.OK {
		return models.SlotRoomType, res
	}
	g := slots.Guest
	if res := v.ValidateGuestInfo(*g); !res.OK {
		return models.SlotGuestInfo, res
	}
	if party := g.Adults + g.Children; rt.MaxOccupancy > 0 && party > rt.MaxOccupancy {
		return models.SlotRoomType, fail(fmt.Sprintf("The %s sleeps at most %d guests, and your party is %d.", rt.Name, rt.MaxOccupancy, party))
	}
	return "", pass()
}

// RoomList renders the catalog for prompts.
func (v *Validator) RoomList() string {
	names := make([]string, 0, len(v.rooms))
	for _, rt := range v.rooms {
		names = append(names, fmt.Sprintf("%s ($%.0f/night)", rt.Name, rt.Rate))
	}
	return strings.Join(names, ", ")
}

// containsWord reports whether needle occurs in padded haystack on word boundaries.
func containsWord(padded, needle string) bool {
	idx := 0
	for {
		i := strings.Index(padded[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		if !isWordByte(padded[start-1]) && (end >= len(padded) || !isWordByte(padded[end])) {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
