package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotelbot/models"
	"hotelbot/services/booking"
	"hotelbot/utils"

	"go.uber.org/zap"
)

// bookingFlow fills at most one slot per turn, in BookingSlotOrder, then
// creates the booking once nothing is missing.
func (e *Engine) bookingFlow(ctx context.Context, t *turn) outcome {
	st := t.state
	slot, missing := st.Slots.FirstMissing(models.BookingSlotOrder)
	if !missing {
		return e.completeBooking(ctx, t)
	}

	vctx := ValidationContext{Today: t.today}
	var ack string
	switch slot {
	case models.SlotDates:
		r, ok := ExtractDates(t.text, t.today)
		if !ok {
			return e.slotMiss(t, slot)
		}
		if res := e.validator.Validate(slot, r, vctx); !res.OK {
			return e.slotInvalid(slot, res)
		}
		st.Slots.Dates = &r
		ack = "Got it: " + formatRange(r) + "."
	case models.SlotRoomType:
		rt, ok := e.validator.MatchRoomType(t.text)
		if !ok {
			return e.slotMiss(t, slot)
		}
		if res := e.validator.Validate(slot, rt.Key, vctx); !res.OK {
			return e.slotInvalid(slot, res)
		}
		st.Slots.RoomType = rt.Key
		ack = quoteAck(rt, *st.Slots.Dates)
	case models.SlotGuestInfo:
		g, ok := ParseGuestInfo(t.text)
		if !ok {
			return e.slotMiss(t, slot)
		}
		if res := e.validator.Validate(slot, g, vctx); !res.OK {
			return e.slotInvalid(slot, res)
		}
		st.Slots.Guest = &g
	}
	st.LastError = ""

	if next, more := st.Slots.FirstMissing(models.BookingSlotOrder); more {
		return outcome{reply: ack + " " + e.slotPrompt(next)}
	}
	return e.completeBooking(ctx, t)
}

func (e *Engine) slotMiss(t *turn, slot models.SlotName) outcome {
	if t.fresh {
		return outcome{reply: e.slotPrompt(slot)}
	}
	return outcome{reply: e.extractionReply(slot), kind: KindExtractionFailure}
}

func (e *Engine) slotInvalid(slot models.SlotName, res ValidationResult) outcome {
	return outcome{reply: res.Reason + " " + e.slotPrompt(slot), kind: KindValidationFailure}
}

// completeBooking is the booking terminal action.
func (e *Engine) completeBooking(ctx context.Context, t *turn) outcome {
	st := t.state
	if slot, res := e.validator.ValidateBooking(st.Slots, t.today); !res.OK {
		st.LastError = res.Reason
		st.Slots.Clear(slot)
		return outcome{reply: res.Reason + " " + e.slotPrompt(slot), kind: KindValidationFailure}
	}

	g := st.Slots.Guest
	input := models.BookingInput{
		Guest: models.Guest{
			Name:  g.Name,
			Email: g.Email,
			Phone: g.Phone,
		},
		RoomType:     st.Slots.RoomType,
		NumAdults:    g.Adults,
		NumChildren:  g.Children,
		CheckInDate:  st.Slots.Dates.CheckIn,
		CheckOutDate: st.Slots.Dates.CheckOut,
	}

	created, err := e.bookings.CreateBooking(ctx, input)
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.TerminalActionsTotal.WithLabelValues("create", "rejected").Inc()
		slot := slotForField(verr.Field)
		st.LastError = verr.Message
		st.Slots.Clear(slot)
		return outcome{reply: verr.Message + ". " + e.slotPrompt(slot), kind: KindValidationFailure}
	case err != nil:
		utils.TerminalActionsTotal.WithLabelValues("create", "failed").Inc()
		return e.unavailable(t, "booking.create", err)
	}
	utils.TerminalActionsTotal.WithLabelValues("create", "ok").Inc()

	st.LastBookingRef = created.ID
	st.Reset()

	text, err := e.bookings.GenerateConfirmationText(ctx, created)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			e.logger.Warn("Confirmation text failed, using local template", zap.String("booking_id", created.ID), zap.Error(err))
		}
		text = e.localConfirmation(created)
	}
	return outcome{reply: withBookingID(text, created), sideEffect: true}
}

// slotForField maps a collaborator validation field onto the slot that feeds it.
func slotForField(field string) models.SlotName {
	f := strings.ToLower(field)
	switch {
	case strings.Contains(f, "date"), strings.Contains(f, "night"):
		return models.SlotDates
	case strings.Contains(f, "room"):
		return models.SlotRoomType
	}
	return models.SlotGuestInfo
}

// resolveRef binds the conversation to an existing booking named in the
// message. done is true when the turn ends here; b is nil unless resolved.
func (e *Engine) resolveRef(ctx context.Context, t *turn) (b *models.Booking, rest string, out outcome, done bool) {
	st := t.state
	ref, ok := ExtractBookingRef(t.text)
	if !ok {
		return nil, "", outcome{reply: refExtractionReply(st.CurrentIntent, st.LastBookingRef), kind: KindExtractionFailure}, true
	}

	b, err := e.bookings.GetBooking(ctx, ref)
	if errors.Is(err, booking.ErrBookingNotFound) {
		st.Reset()
		return nil, "", outcome{reply: notFoundReply(ref), kind: KindNotFound}, true
	}
	if err != nil {
		return nil, "", e.unavailable(t, "booking.get", err), true
	}

	st.ActiveBookingRef = b.ID
	rest = strings.TrimSpace(strings.Replace(strings.ToLower(t.text), strings.ToLower(ref), " ", 1))
	return b, rest, outcome{}, false
}

func (e *Engine) rescheduleFlow(ctx context.Context, t *turn) outcome {
	st := t.state
	text := t.text
	justResolved := false
	if st.ActiveBookingRef == "" {
		_, rest, out, done := e.resolveRef(ctx, t)
		if done {
			return out
		}
		text, justResolved = rest, true
	}

	r, ok := ExtractDates(text, t.today)
	if !ok {
		if justResolved {
			return outcome{reply: "Found it. " + e.slotPrompt(models.SlotNewDates)}
		}
		return outcome{reply: e.extractionReply(models.SlotNewDates), kind: KindExtractionFailure}
	}
	if res := e.validator.Validate(models.SlotNewDates, r, ValidationContext{Today: t.today}); !res.OK {
		return e.slotInvalid(models.SlotNewDates, res)
	}
	st.Slots.NewDates = &r

	ref := st.ActiveBookingRef
	updated, err := e.bookings.UpdateBooking(ctx, ref, models.BookingPatch{
		CheckInDate:  &r.CheckIn,
		CheckOutDate: &r.CheckOut,
	})
	var verr *booking.ValidationError
	switch {
	case errors.Is(err, booking.ErrBookingNotFound):
		utils.TerminalActionsTotal.WithLabelValues("update", "not_found").Inc()
		st.Reset()
		return outcome{reply: notFoundReply(ref), kind: KindNotFound}
	case errors.As(err, &verr):
		utils.TerminalActionsTotal.WithLabelValues("update", "rejected").Inc()
		st.LastError = verr.Message
		st.Slots.NewDates = nil
		return outcome{reply: verr.Message + ". " + e.slotPrompt(models.SlotNewDates), kind: KindValidationFailure}
	case err != nil:
		utils.TerminalActionsTotal.WithLabelValues("update", "failed").Inc()
		return e.unavailable(t, "booking.update", err)
	}
	utils.TerminalActionsTotal.WithLabelValues("update", "ok").Inc()

	st.Reset()
	return outcome{reply: rescheduledReply(updated), sideEffect: true}
}

// cancellationFlow resolves the reference, asks for an explicit yes, then deletes.
func (e *Engine) cancellationFlow(ctx context.Context, t *turn) outcome {
	st := t.state
	if st.ActiveBookingRef == "" {
		b, _, out, done := e.resolveRef(ctx, t)
		if done {
			return out
		}
		return outcome{reply: cancelConfirmPrompt(b)}
	}

	ref := st.ActiveBookingRef
	switch {
	case isAffirmative(t.text):
		deleted, err := e.bookings.DeleteBooking(ctx, ref)
		if err != nil {
			utils.TerminalActionsTotal.WithLabelValues("delete", "failed").Inc()
			return e.unavailable(t, "booking.delete", err)
		}
		st.Reset()
		if !deleted {
			utils.TerminalActionsTotal.WithLabelValues("delete", "not_found").Inc()
			return outcome{reply: notFoundReply(ref), kind: KindNotFound}
		}
		utils.TerminalActionsTotal.WithLabelValues("delete", "ok").Inc()
		if st.LastBookingRef == ref {
			st.LastBookingRef = ""
		}
		return outcome{reply: cancelledReply(ref), sideEffect: true}
	case isNegative(t.text):
		st.Reset()
		return outcome{reply: replyKeptBooking, label: "declined"}
	}
	return outcome{reply: fmt.Sprintf("Please answer yes to cancel booking %s, or no to keep it.", ref), kind: KindExtractionFailure}
}

// inquiryFlow answers in one shot and always returns to no intent.
func (e *Engine) inquiryFlow(ctx context.Context, t *turn) outcome {
	answer, err := e.answerer.AnswerInquiry(ctx, t.text, e.hotel)
	if err != nil {
		return e.unavailable(t, "inquiry", err)
	}
	t.state.Reset()
	return outcome{reply: answer}
}
