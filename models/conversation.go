package models

import (
	"strings"
	"time"
)

// Intent is the request a conversation is currently serving.
type Intent string

const (
	IntentNone         Intent = "none"
	IntentBooking      Intent = "booking"
	IntentRescheduling Intent = "rescheduling"
	IntentCancellation Intent = "cancellation"
	IntentInquiry      Intent = "inquiry"
	IntentUnknown      Intent = "unknown"
)

// ParseIntent maps a classifier label onto the fixed intent set.
// Anything outside the set becomes IntentUnknown.
func ParseIntent(label string) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(label))) {
	case IntentBooking, "book", "new_booking":
		return IntentBooking
	case IntentRescheduling, "reschedule", "modify", "modification":
		return IntentRescheduling
	case IntentCancellation, "cancel":
		return IntentCancellation
	case IntentInquiry, "question", "info":
		return IntentInquiry
	default:
		return IntentUnknown
	}
}

// SlotName identifies one piece of information a flow collects.
type SlotName string

const (
	SlotDates       SlotName = "dates"
	SlotRoomType    SlotName = "room_type"
	SlotGuestInfo   SlotName = "guest_info"
	SlotNewDates    SlotName = "new_dates"
	SlotBookingRef  SlotName = "booking_ref"
	SlotCancelCheck SlotName = "cancel_confirmation"
)

// BookingSlotOrder is the fixed order in which the booking flow fills slots.
var BookingSlotOrder = []SlotName{SlotDates, SlotRoomType, SlotGuestInfo}

// DateRange is a check-in/check-out pair of calendar dates.
type DateRange struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// Nights is the stay length in whole days.
func (r DateRange) Nights() int {
	return DaysBetween(r.CheckIn, r.CheckOut)
}

// GuestInfo is the guest_info slot: who is staying and how to reach them.
type GuestInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Adults   int    `json:"adults"`
	Children int    `json:"children"`
}

// CollectedSlots holds the values gathered so far for the active flow.
type CollectedSlots struct {
	Dates    *DateRange `json:"dates,omitempty"`
	RoomType string     `json:"room_type,omitempty"`
	Guest    *GuestInfo `json:"guest_info,omitempty"`
	NewDates *DateRange `json:"new_dates,omitempty"`
}

// Empty reports whether no slot holds a value.
func (s CollectedSlots) Empty() bool {
	return s.Dates == nil && s.RoomType == "" && s.Guest == nil && s.NewDates == nil
}

// Has reports whether the named slot holds a value.
func (s CollectedSlots) Has(name SlotName) bool {
	switch name {
	case SlotDates:
		return s.Dates != nil
	case SlotRoomType:
		return s.RoomType != ""
	case SlotGuestInfo:
		return s.Guest != nil
	case SlotNewDates:
		return s.NewDates != nil
	}
	return false
}

// Clear drops the named slot.
func (s *CollectedSlots) Clear(name SlotName) {
	switch name {
	case SlotDates:
		s.Dates = nil
	case SlotRoomType:
		s.RoomType = ""
	case SlotGuestInfo:
		s.Guest = nil
	case SlotNewDates:
		s.NewDates = nil
	}
}

// FirstMissing returns the first slot in order that has no value.
func (s CollectedSlots) FirstMissing(order []SlotName) (SlotName, bool) {
	for _, name := range order {
		if !s.Has(name) {
			return name, true
		}
	}
	return "", false
}

// ConversationState is the per-user dialogue state.
//
// CurrentIntent == IntentNone implies Slots is empty and ActiveBookingRef is unset.
type ConversationState struct {
	UserID           string         `json:"user_id"`
	CurrentIntent    Intent         `json:"current_intent"`
	Slots            CollectedSlots `json:"collected_slots"`
	ActiveBookingRef string         `json:"active_booking_ref,omitempty"`
	LastError        string         `json:"last_error,omitempty"`
	// LastBookingRef remembers the most recent reservation made in this
	// conversation so later reschedule or cancel prompts can suggest it.
	LastBookingRef string    `json:"last_booking_ref,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewConversationState returns a fresh state with no intent.
func NewConversationState(userID string, now time.Time) *ConversationState {
	return &ConversationState{
		UserID:        userID,
		CurrentIntent: IntentNone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Reset returns the conversation to IntentNone, dropping all flow data.
func (c *ConversationState) Reset() {
	c.CurrentIntent = IntentNone
	c.Slots = CollectedSlots{}
	c.ActiveBookingRef = ""
	c.LastError = ""
}

// Clone returns a deep copy.
func (c *ConversationState) Clone() *ConversationState {
	out := *c
	if c.Slots.Dates != nil {
		d := *c.Slots.Dates
		out.Slots.Dates = &d
	}
	if c.Slots.NewDates != nil {
		d := *c.Slots.NewDates
		out.Slots.NewDates = &d
	}
	if c.Slots.Guest != nil {
		g := *c.Slots.Guest
		out.Slots.Guest = &g
	}
	return &out
}
