package dialogue

import (
	"regexp"
	"strings"

	"hotelbot/models"
)

var (
	emailRe      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe      = regexp.MustCompile(`\+?\d[\d\s().\-]{6,}\d`)
	adultsRe     = regexp.MustCompile(`(?i)\b` + countPattern + `\s+adults?\b`)
	childrenRe   = regexp.MustCompile(`(?i)\b` + countPattern + `\s+(?:children|child|kids?)\b`)
	uuidRe       = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)
	bookingRefRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]{3,63}$`)
)

var nameFillers = map[string]bool{
	"my": true, "name": true, "is": true, "i'm": true, "im": true, "i": true, "am": true,
	"it's": true, "its": true, "this": true, "the": true, "and": true, "email": true,
	"e-mail": true, "mail": true, "phone": true, "number": true, "tel": true, "mobile": true,
	"for": true, "with": true, "under": true, "at": true, "booking": true, "reservation": true,
	"please": true, "thanks": true, "thank": true, "you": true, "no": true, "adults": true,
	"adult": true, "children": true, "child": true, "kids": true, "kid": true,
}

// ParseGuestInfo pulls contact details out of a free-text reply. The name is
// whatever words remain once the email, phone, party size and filler words are
// removed. Adults default to 1.
func ParseGuestInfo(text string) (models.GuestInfo, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.GuestInfo{}, false
	}
	info := models.GuestInfo{Adults: 1}

	rest := text
	if loc := emailRe.FindStringIndex(rest); loc != nil {
		info.Email = rest[loc[0]:loc[1]]
		rest = rest[:loc[0]] + " " + rest[loc[1]:]
	}
	if m := adultsRe.FindStringSubmatchIndex(rest); m != nil {
		if n, ok := parseCount(strings.ToLower(rest[m[2]:m[3]])); ok {
			info.Adults = n
		}
		rest = rest[:m[0]] + " " + rest[m[1]:]
	}
	if m := childrenRe.FindStringSubmatchIndex(rest); m != nil {
		if n, ok := parseCount(strings.ToLower(rest[m[2]:m[3]])); ok {
			info.Children = n
		}
		rest = rest[:m[0]] + " " + rest[m[1]:]
	}
	if loc := phoneRe.FindStringIndex(rest); loc != nil {
		info.Phone = strings.TrimSpace(rest[loc[0]:loc[1]])
		rest = rest[:loc[0]] + " " + rest[loc[1]:]
	}

	var name []string
	for _, w := range strings.FieldsFunc(rest, func(r rune) bool {
		return r == ' ' || r == ',' || r == ';' || r == ':' || r == '\n' || r == '\t'
	}) {
		w = strings.Trim(w, ".!?()\"")
		if w == "" || nameFillers[strings.ToLower(w)] {
			continue
		}
		name = append(name, w)
	}
	info.Name = strings.Join(name, " ")

	return info, info.Email != "" || info.Name != ""
}

// isEmailShaped requires an @ with a dot somewhere after it.
func isEmailShaped(s string) bool {
	at := strings.Index(s, "@")
	if at <= 0 {
		return false
	}
	dot := strings.LastIndex(s, ".")
	return dot > at+1 && dot < len(s)-1
}

func isDateToken(tok string) bool {
	for _, re := range []*regexp.Regexp{isoDateRe, slashDateRe} {
		if loc := re.FindStringIndex(tok); loc != nil && loc[0] == 0 && loc[1] == len(tok) {
			return true
		}
	}
	return false
}

func findBookingID(text string) string {
	return uuidRe.FindString(text)
}

// ExtractBookingRef returns a reservation reference from a reply: a UUID
// anywhere in the text, or a single reference-looking token that contains a
// digit and is not a date.
func ExtractBookingRef(text string) (string, bool) {
	if id := findBookingID(text); id != "" {
		return strings.ToLower(id), true
	}
	fields := strings.Fields(text)
	if len(fields) != 1 {
		return "", false
	}
	tok := strings.Trim(fields[0], ".,!?#")
	if !bookingRefRe.MatchString(tok) || !strings.ContainsAny(tok, "0123456789") {
		return "", false
	}
	if isDateToken(tok) {
		return "", false
	}
	return tok, true
}

var (
	affirmatives = map[string]bool{
		"yes": true, "y": true, "yeah": true, "yep": true, "sure": true, "ok": true, "okay": true,
		"confirm": true, "confirmed": true, "please do": true, "do it": true, "yes please": true,
		"go ahead": true, "correct": true,
	}
	negatives = map[string]bool{
		"no": true, "n": true, "nope": true, "nah": true, "don't": true, "dont": true,
		"no thanks": true, "keep it": true, "keep": true,
	}
	abandonWords = map[string]bool{
		"cancel": true, "stop": true, "abort": true, "quit": true, "start over": true,
		"never mind": true, "nevermind": true, "forget it": true, "reset": true,
	}
)

func normalizeReply(text string) string {
	return strings.Trim(strings.ToLower(strings.Join(strings.Fields(text), " ")), ".!?,")
}

func isAffirmative(text string) bool {
	return affirmatives[normalizeReply(text)]
}

func isNegative(text string) bool {
	return negatives[normalizeReply(text)]
}

// isAbandon reports whether the whole message asks to drop the current flow.
// During a cancellation "cancel" means the flow itself, not abandonment.
func isAbandon(text string, intent models.Intent) bool {
	w := normalizeReply(text)
	if intent == models.IntentCancellation && w == "cancel" {
		return false
	}
	return abandonWords[w]
}
