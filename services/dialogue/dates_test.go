package dialogue

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func ymd(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExtractDates(t *testing.T) {
	cases := []struct {
		text     string
		checkIn  time.Time
		checkOut time.Time
	}{
		{"tomorrow", ymd(2025, 6, 2), ymd(2025, 6, 3)},
		{"today please", ymd(2025, 6, 1), ymd(2025, 6, 2)},
		{"tomorrow for 2 nights", ymd(2025, 6, 2), ymd(2025, 6, 4)},
		{"Tomorrow, for three nights", ymd(2025, 6, 2), ymd(2025, 6, 5)},
		{"the day after tomorrow", ymd(2025, 6, 3), ymd(2025, 6, 4)},
		{"next week", ymd(2025, 6, 8), ymd(2025, 6, 9)},
		{"next month", ymd(2025, 7, 1), ymd(2025, 7, 2)},
		{"3 days from now", ymd(2025, 6, 4), ymd(2025, 6, 5)},
		{"in two weeks", ymd(2025, 6, 15), ymd(2025, 6, 16)},
		{"in 2 months", ymd(2025, 8, 1), ymd(2025, 8, 2)},
		{"from 2025-07-10 to 2025-07-05", ymd(2025, 7, 5), ymd(2025, 7, 10)},
		{"10/07/2025 - 12/07/2025", ymd(2025, 7, 10), ymd(2025, 7, 12)},
		{"July 4, 2025 until July 6th 2025", ymd(2025, 7, 4), ymd(2025, 7, 6)},
		{"Jul 4 2025 to Jul 9 2025", ymd(2025, 7, 4), ymd(2025, 7, 9)},
		{"4 July 2025 to 6th of July 2025", ymd(2025, 7, 4), ymd(2025, 7, 6)},
		{"tomorrow until 2025-06-05", ymd(2025, 6, 2), ymd(2025, 6, 5)},
		{"2025-09-01, 2025-08-01 or 2025-08-03", ymd(2025, 8, 1), ymd(2025, 8, 3)},
		{"31/02/2025 or maybe 2025-08-01", ymd(2025, 8, 1), ymd(2025, 8, 2)},
		{"2025-08-01 for 4 nights", ymd(2025, 8, 1), ymd(2025, 8, 5)},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			r, ok := ExtractDates(tc.text, testToday)
			require.True(t, ok)
			assert.Equal(t, tc.checkIn, r.CheckIn)
			assert.Equal(t, tc.checkOut, r.CheckOut)
		})
	}
}

func TestExtractDates_NoDates(t *testing.T) {
	for _, text := range []string{
		"",
		"I want to book a room",
		"standard",
		"Jane Doe jane@example.com",
		"31/02/2025",
		"2025-13-01",
		"for 2 nights",
	} {
		_, ok := ExtractDates(text, testToday)
		assert.False(t, ok, text)
	}
}

func TestExtractDates_TwoDatesAnyOrder(t *testing.T) {
	base := ymd(2025, 7, 1)
	for i := 0; i < 40; i++ {
		d1 := base.AddDate(0, 0, i)
		d2 := d1.AddDate(0, 0, 1+i%9)
		for _, text := range []string{
			fmt.Sprintf("%s to %s", d1.Format("2006-01-02"), d2.Format("2006-01-02")),
			fmt.Sprintf("%s to %s", d2.Format("2006-01-02"), d1.Format("2006-01-02")),
			fmt.Sprintf("%s and %s", d2.Format("02/01/2006"), d1.Format("January 2, 2006")),
		} {
			r, ok := ExtractDates(text, testToday)
			require.True(t, ok, text)
			assert.Equal(t, d1, r.CheckIn, text)
			assert.Equal(t, d2, r.CheckOut, text)
		}
	}
}

func TestExtractDates_UsesTodayLocation(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	today := time.Date(2025, 6, 1, 23, 30, 0, 0, loc)
	r, ok := ExtractDates("tomorrow", today)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, loc), r.CheckIn)
}
