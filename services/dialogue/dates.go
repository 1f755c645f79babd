package dialogue

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"hotelbot/models"
)

var countWords = map[string]int{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11,
	"twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15, "sixteen": 16,
	"seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20, "thirty": 30,
}

const countPattern = `(\d{1,3}|an|a|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|twenty|thirty)`

const monthPattern = `(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)`

var monthByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// relativeRule resolves one relative phrase against today.
type relativeRule struct {
	re      *regexp.Regexp
	resolve func(m []string, today time.Time) (time.Time, bool)
}

func fixedOffset(days int) func([]string, time.Time) (time.Time, bool) {
	return func(_ []string, today time.Time) (time.Time, bool) {
		return today.AddDate(0, 0, days), true
	}
}

// Order matters: longer phrases claim their span before shorter ones can.
var relativeRules = []relativeRule{
	{re: regexp.MustCompile(`\bday after tomorrow\b`), resolve: fixedOffset(2)},
	{re: regexp.MustCompile(`\btoday\b`), resolve: fixedOffset(0)},
	{re: regexp.MustCompile(`\btomorrow\b`), resolve: fixedOffset(1)},
	{re: regexp.MustCompile(`\bnext week\b`), resolve: fixedOffset(7)},
	{re: regexp.MustCompile(`\bnext month\b`), resolve: func(_ []string, today time.Time) (time.Time, bool) {
		return today.AddDate(0, 1, 0), true
	}},
	{
		re: regexp.MustCompile(`\b(?:in\s+` + countPattern + `\s+(day|week|month)s?|` + countPattern + `\s+(day|week|month)s?\s+from\s+(?:now|today))\b`),
		resolve: func(m []string, today time.Time) (time.Time, bool) {
			count, unit := m[1], m[2]
			if count == "" {
				count, unit = m[3], m[4]
			}
			n, ok := parseCount(count)
			if !ok {
				return time.Time{}, false
			}
			return addUnits(today, n, unit), true
		},
	},
}

var (
	isoDateRe   = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	slashDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	monthDayRe  = regexp.MustCompile(`\b` + monthPattern + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
	dayMonthRe  = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?` + monthPattern + `\.?,?\s+(\d{4})\b`)
	nightsRe    = regexp.MustCompile(`\b(?:for\s+)?` + countPattern + `\s+nights?\b`)
)

type span struct{ start, end int }

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

type dateToken struct {
	pos  span
	date time.Time
}

// ExtractDates finds a check-in/check-out pair in free text. Relative phrases
// resolve against today. Unparseable fragments are skipped; ok is false only
// when no date was recognised at all.
func ExtractDates(text string, today time.Time) (models.DateRange, bool) {
	today = models.DateOnly(today)
	lower := strings.ToLower(text)

	tokens := scanDates(lower, today)
	if len(tokens) == 0 {
		return models.DateRange{}, false
	}

	dates := make([]time.Time, 0, len(tokens))
	for _, t := range tokens {
		dates = append(dates, t.date)
	}
	sort.SliceStable(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	if len(dates) >= 2 {
		return models.DateRange{CheckIn: dates[0], CheckOut: dates[1]}, true
	}

	nights := 1
	if m := nightsRe.FindStringSubmatch(lower); m != nil {
		if n, ok := parseCount(m[1]); ok && n > 0 {
			nights = n
		}
	}
	return models.DateRange{CheckIn: dates[0], CheckOut: dates[0].AddDate(0, 0, nights)}, true
}

func scanDates(lower string, today time.Time) []dateToken {
	var claimed []span
	var tokens []dateToken

	free := func(s span) bool {
		for _, c := range claimed {
			if c.overlaps(s) {
				return false
			}
		}
		return true
	}

	for _, rule := range relativeRules {
		for _, idx := range rule.re.FindAllStringSubmatchIndex(lower, -1) {
			s := span{idx[0], idx[1]}
			if !free(s) {
				continue
			}
			d, ok := rule.resolve(submatches(lower, idx), today)
			if !ok {
				continue
			}
			claimed = append(claimed, s)
			tokens = append(tokens, dateToken{pos: s, date: d})
		}
	}

	var explicit []dateToken
	explicit = appendMatches(explicit, lower, isoDateRe, func(m []string) (time.Time, bool) {
		return calendarDate(m[1], m[2], m[3], today.Location())
	})
	explicit = appendMatches(explicit, lower, slashDateRe, func(m []string) (time.Time, bool) {
		return calendarDate(m[3], m[2], m[1], today.Location())
	})
	explicit = appendMatches(explicit, lower, monthDayRe, func(m []string) (time.Time, bool) {
		return namedDate(m[3], m[1], m[2], today.Location())
	})
	explicit = appendMatches(explicit, lower, dayMonthRe, func(m []string) (time.Time, bool) {
		return namedDate(m[3], m[2], m[1], today.Location())
	})
	sort.SliceStable(explicit, func(i, j int) bool { return explicit[i].pos.start < explicit[j].pos.start })

	for _, t := range explicit {
		if !free(t.pos) {
			continue
		}
		claimed = append(claimed, t.pos)
		tokens = append(tokens, t)
	}

	sort.SliceStable(tokens, func(i, j int) bool { return tokens[i].pos.start < tokens[j].pos.start })
	return tokens
}

func appendMatches(dst []dateToken, lower string, re *regexp.Regexp, build func([]string) (time.Time, bool)) []dateToken {
	for _, idx := range re.FindAllStringSubmatchIndex(lower, -1) {
		d, ok := build(submatches(lower, idx))
		if !ok {
			continue
		}
		dst = append(dst, dateToken{pos: span{idx[0], idx[1]}, date: d})
	}
	return dst
}

func submatches(s string, idx []int) []string {
	out := make([]string, len(idx)/2)
	for i := range out {
		if idx[2*i] >= 0 {
			out[i] = s[idx[2*i]:idx[2*i+1]]
		}
	}
	return out
}

// calendarDate builds a date and rejects values that do not round-trip (31/02).
func calendarDate(year, month, day string, loc *time.Location) (time.Time, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	return validDate(y, time.Month(m), d, loc)
}

func namedDate(year, month, day string, loc *time.Location) (time.Time, bool) {
	m, ok := monthByName[month]
	if !ok {
		return time.Time{}, false
	}
	y, err1 := strconv.Atoi(year)
	d, err2 := strconv.Atoi(day)
	if err1 != nil || err2 != nil {
		return time.Time{}, false
	}
	return validDate(y, m, d, loc)
}

func validDate(y int, m time.Month, d int, loc *time.Location) (time.Time, bool) {
	if m < time.January || m > time.December || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if t.Year() != y || t.Month() != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func parseCount(s string) (int, bool) {
	if n, ok := countWords[s]; ok {
		return n, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func addUnits(t time.Time, n int, unit string) time.Time {
	switch unit {
	case "week":
		return t.AddDate(0, 0, 7*n)
	case "month":
		return t.AddDate(0, n, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}
