package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// Trigger computes fire times for a scheduled job.
type Trigger interface {
	// Next returns the first fire time strictly after the given instant,
	// or the zero time when the trigger will never fire again.
	Next(after time.Time) time.Time
	// String describes the trigger for logs and status listings.
	String() string
}

// CronTrigger fires when the wall clock matches every non-nil field.
// A nil field matches any value. Weekday uses Go's convention with
// Sunday as 0. When both Day and Weekday are set, both must match.
type CronTrigger struct {
	Minute  *int
	Hour    *int
	Day     *int
	Month   *int
	Weekday *int
}

// Daily returns a cron trigger that fires once a day at the given time.
func Daily(hour, minute int) CronTrigger {
	h, m := hour, minute
	return CronTrigger{Hour: &h, Minute: &m}
}

// Next scans forward at minute granularity, skipping whole months, days,
// and hours that cannot match. The scan gives up two years out so an
// impossible field combination yields the zero time instead of spinning.
func (t CronTrigger) Next(after time.Time) time.Time {
	loc := after.Location()
	candidate := time.Date(after.Year(), after.Month(), after.Day(), after.Hour(), after.Minute()+1, 0, 0, loc)
	limit := after.AddDate(2, 0, 0)
	for candidate.Before(limit) {
		switch {
		case t.Month != nil && int(candidate.Month()) != *t.Month:
			candidate = time.Date(candidate.Year(), candidate.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, 1, 0)
		case !t.dayMatches(candidate):
			candidate = time.Date(candidate.Year(), candidate.Month(), candidate.Day()+1, 0, 0, 0, 0, loc)
		case t.Hour != nil && candidate.Hour() != *t.Hour:
			candidate = time.Date(candidate.Year(), candidate.Month(), candidate.Day(), candidate.Hour()+1, 0, 0, 0, loc)
		case t.Minute != nil && candidate.Minute() != *t.Minute:
			candidate = candidate.Add(time.Minute)
		default:
			return candidate
		}
	}
	return time.Time{}
}

func (t CronTrigger) dayMatches(candidate time.Time) bool {
	if t.Day != nil && candidate.Day() != *t.Day {
		return false
	}
	if t.Weekday != nil && int(candidate.Weekday()) != *t.Weekday {
		return false
	}
	return true
}

func (t CronTrigger) String() string {
	parts := make([]string, 0, 5)
	appendField := func(name string, value *int) {
		if value != nil {
			parts = append(parts, fmt.Sprintf("%s=%d", name, *value))
		}
	}
	appendField("minute", t.Minute)
	appendField("hour", t.Hour)
	appendField("day", t.Day)
	appendField("month", t.Month)
	appendField("weekday", t.Weekday)
	if len(parts) == 0 {
		return "cron every minute"
	}
	return "cron " + strings.Join(parts, " ")
}

// IntervalTrigger fires a fixed period after the previous fire time. The
// first fire lands one period after the job's loop starts.
type IntervalTrigger struct {
	Every time.Duration
}

// Every returns an interval trigger with the given period.
func Every(period time.Duration) IntervalTrigger {
	return IntervalTrigger{Every: period}
}

func (t IntervalTrigger) Next(after time.Time) time.Time {
	if t.Every <= 0 {
		return time.Time{}
	}
	return after.Add(t.Every)
}

func (t IntervalTrigger) String() string {
	return "every " + t.Every.String()
}
