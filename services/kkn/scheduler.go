package kkn

import (
	"time"

	"github.com/mazen160/go-random"

	"malaskkn/lib/timezone"
)

// The portal only accepts the daily check-in in the morning, and
// posting at the exact same second every day is a fingerprint. Run
// times are drawn uniformly from this window instead.
const (
	windowOpenHour  = 4
	windowCloseHour = 10
)

// NextRunTime picks a uniformly random instant inside the next
// check-in window. Before today's window opens the pick lands today;
// any later and it lands tomorrow. The result is always after now.
func NextRunTime(now time.Time) (time.Time, error) {
	now = now.In(timezone.Location)

	day := now
	open := time.Date(day.Year(), day.Month(), day.Day(), windowOpenHour, 0, 0, 0, timezone.Location)
	if !now.Before(open) {
		day = now.AddDate(0, 0, 1)
		open = time.Date(day.Year(), day.Month(), day.Day(), windowOpenHour, 0, 0, 0, timezone.Location)
	}

	windowSeconds := (windowCloseHour - windowOpenHour) * 60 * 60
	offset, err := random.IntRange(0, windowSeconds)
	if err != nil {
		return time.Time{}, err
	}
	return open.Add(time.Duration(offset) * time.Second), nil
}
