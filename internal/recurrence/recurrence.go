// Package recurrence computes trigger times for repeating reminders.
//
// The normal continuation path (NextTrigger) uses fixed durations, including
// the 30/365 day approximations for monthly and yearly, so a chain stays
// phase-locked to its original schedule. The recovery path
// (NextAppropriateTrigger) is calendar-aligned and always returns a time in
// the future, no matter how many cycles elapsed.
package recurrence

import (
	"time"

	"github.com/teambition/rrule-go"

	"github.com/remindkit/reminderd/internal/models"
)

const (
	dayInterval     = 24 * time.Hour
	weekInterval    = 7 * dayInterval
	monthInterval   = 30 * dayInterval // approximate, not calendar months
	yearInterval    = 365 * dayInterval
	maxSafeMonthDay = 28 // every month has at least 28 days
)

// Interval returns the fixed duration between occurrences for a repeat
// type. ok is false for none and unrecognized values.
func Interval(rt models.RepeatType) (d time.Duration, ok bool) {
	switch rt {
	case models.RepeatDaily:
		return dayInterval, true
	case models.RepeatWeekly:
		return weekInterval, true
	case models.RepeatMonthly:
		return monthInterval, true
	case models.RepeatYearly:
		return yearInterval, true
	}
	return 0, false
}

// NextTrigger returns the trigger time of the occurrence after t. ok is
// false when the reminder has no successor (repeat type none, or anything
// unrecognized, which is treated as terminal rather than crashing callers).
func NextTrigger(t time.Time, rt models.RepeatType) (next time.Time, ok bool) {
	d, ok := Interval(rt)
	if !ok {
		return time.Time{}, false
	}
	return t.Add(d), true
}

// NextAppropriateTrigger returns the first occurrence strictly after now
// that stays aligned to the original schedule: same time-of-day for daily,
// same weekday for weekly, same day-of-month (clamped to 28) for monthly,
// same calendar date for yearly. When the calendar computation is
// infeasible it falls back to now plus the fixed interval.
func NextAppropriateTrigger(original time.Time, rt models.RepeatType, now time.Time) (next time.Time, ok bool) {
	d, ok := Interval(rt)
	if !ok {
		return time.Time{}, false
	}

	rule, err := alignmentRule(original.UTC(), rt)
	if err != nil {
		return now.Add(d), true
	}
	next = rule.After(now.UTC(), false)
	if next.IsZero() || !next.After(now) {
		return now.Add(d), true
	}
	// A Feb 29 anchor only matches leap years, which would push the next
	// yearly occurrence several years out. Treat that as infeasible.
	if rt == models.RepeatYearly && next.Sub(now) > 366*dayInterval {
		return now.Add(d), true
	}
	return next, true
}

func alignmentRule(original time.Time, rt models.RepeatType) (*rrule.RRule, error) {
	opt := rrule.ROption{Dtstart: original}
	switch rt {
	case models.RepeatDaily:
		opt.Freq = rrule.DAILY
	case models.RepeatWeekly:
		opt.Freq = rrule.WEEKLY
	case models.RepeatMonthly:
		opt.Freq = rrule.MONTHLY
		day := original.Day()
		if day > maxSafeMonthDay {
			day = maxSafeMonthDay
		}
		opt.Bymonthday = []int{day}
	case models.RepeatYearly:
		opt.Freq = rrule.YEARLY
	}
	return rrule.NewRRule(opt)
}
