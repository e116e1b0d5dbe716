package logbook

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"malaskkn/lib/timezone"
)

var monthNames = map[string]time.Month{
	"januari":   time.January,
	"februari":  time.February,
	"maret":     time.March,
	"april":     time.April,
	"mei":       time.May,
	"juni":      time.June,
	"juli":      time.July,
	"agustus":   time.August,
	"september": time.September,
	"oktober":   time.October,
	"november":  time.November,
	"desember":  time.December,
}

// e.g. "8 juli 2025 19:00 s.d 9 juli 2025 00:00"
var overnightRegex = regexp.MustCompile(
	`(\d{1,2})\s+([a-z]+)\s+(\d{4})\s+(\d{2}):(\d{2})\s+s\.d\s+(\d{1,2})\s+([a-z]+)\s+(\d{4})\s+(\d{2}):(\d{2})`,
)

// e.g. "2 juli 2025 13:00 - 16:00"
var samedayRegex = regexp.MustCompile(
	`(\d{1,2})\s+([a-z]+)\s+(\d{4})\s+(\d{2}):(\d{2})\s+-\s+(\d{2}):(\d{2})`,
)

// ParseDatetimeRange parses the two literal datetime-range formats the
// portal emits, in WIB. Anything else returns ok == false and the
// caller must treat the event as unscheduled rather than erroring.
func ParseDatetimeRange(s string) (start, end time.Time, ok bool) {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "wib", "")
	s = strings.TrimSpace(s)

	if groups := overnightRegex.FindStringSubmatch(s); groups != nil {
		start, ok = makeTime(groups[1], groups[2], groups[3], groups[4], groups[5])
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		end, ok = makeTime(groups[6], groups[7], groups[8], groups[9], groups[10])
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		return start, end, true
	}

	if groups := samedayRegex.FindStringSubmatch(s); groups != nil {
		start, ok = makeTime(groups[1], groups[2], groups[3], groups[4], groups[5])
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		end, ok = makeTime(groups[1], groups[2], groups[3], groups[6], groups[7])
		if !ok {
			return time.Time{}, time.Time{}, false
		}
		return start, end, true
	}

	return time.Time{}, time.Time{}, false
}

func makeTime(day, month, year, hour, minute string) (time.Time, bool) {
	m, knownMonth := monthNames[month]
	if !knownMonth {
		return time.Time{}, false
	}
	d, _ := strconv.Atoi(day)
	y, _ := strconv.Atoi(year)
	h, _ := strconv.Atoi(hour)
	min, _ := strconv.Atoi(minute)
	return time.Date(y, m, d, h, min, 0, 0, timezone.Location), true
}
