package queue

import (
	"fmt"
	"time"
)

// Schedule computes the next run time of a periodic task.
type Schedule interface {
	Next(after time.Time) time.Time
	String() string
}

type intervalSchedule struct {
	interval time.Duration
}

// Every runs a task at a fixed interval. Non-positive intervals fall back to one minute.
func Every(d time.Duration) Schedule {
	if d <= 0 {
		d = time.Minute
	}
	return intervalSchedule{interval: d}
}

func (s intervalSchedule) Next(after time.Time) time.Time { return after.Add(s.interval) }
func (s intervalSchedule) String() string                 { return "every " + s.interval.String() }

type hourlySchedule struct {
	minute int
}

// Hourly runs a task once an hour at the given minute.
func Hourly(minute int) Schedule {
	return hourlySchedule{minute: clamp(minute, 0, 59)}
}

func (s hourlySchedule) Next(after time.Time) time.Time {
	next := after.Truncate(time.Hour).Add(time.Duration(s.minute) * time.Minute)
	if !next.After(after) {
		next = next.Add(time.Hour)
	}
	return next
}

func (s hourlySchedule) String() string { return fmt.Sprintf("hourly at :%02d", s.minute) }

type dailySchedule struct {
	hour, minute int
}

// Daily runs a task once a day at hour:minute in the location of the
// reference time passed to Next.
func Daily(hour, minute int) Schedule {
	return dailySchedule{hour: clamp(hour, 0, 23), minute: clamp(minute, 0, 59)}
}

func (s dailySchedule) Next(after time.Time) time.Time {
	y, m, d := after.Date()
	next := time.Date(y, m, d, s.hour, s.minute, 0, 0, after.Location())
	if !next.After(after) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (s dailySchedule) String() string { return fmt.Sprintf("daily at %02d:%02d", s.hour, s.minute) }

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
