package usecase

import (
	"fmt"
	"time"

	"disability-services-api/internal/domain/entity"
)

// weekSchedule is the nominal weekly operating pattern of a site: which
// weekdays it opens and how its daily slots are laid out.
type weekSchedule struct {
	days            map[time.Weekday]bool
	openTime        string // HH:MM, first slot start
	closeTime       string // HH:MM, no slot may end after this
	intervalMinutes int
}

// eligibleSlots applies the slot calendar rules for one date.
//
// Past dates are never eligible. On the current day, slots whose start time
// has already passed are dropped; when none remain the whole date reports
// unavailable. All other eligible dates return the full nominal slot list
// in chronological order.
func eligibleSlots(date time.Time, sched weekSchedule, now time.Time) (bool, string, []string) {
	if dateInPast(date, now) {
		return false, "date is in the past", nil
	}

	if !sched.days[date.Weekday()] {
		return false, fmt.Sprintf("not open on %ss", date.Weekday()), nil
	}

	slots := nominalSlots(sched.openTime, sched.closeTime, sched.intervalMinutes)
	if len(slots) == 0 {
		return false, "no time slots scheduled", nil
	}

	if sameDay(date, now) {
		slots = futureSlots(slots, now)
		if len(slots) == 0 {
			return false, "no remaining time slots today", nil
		}
	}

	return true, "", slots
}

// nominalSlots generates slot start labels from openTime with a fixed step,
// keeping only slots that end at or before closeTime.
func nominalSlots(openTime, closeTime string, intervalMinutes int) []string {
	open, err := time.Parse(entity.TimeFormat, openTime)
	if err != nil {
		return nil
	}
	closing, err := time.Parse(entity.TimeFormat, closeTime)
	if err != nil {
		return nil
	}
	if intervalMinutes <= 0 {
		return nil
	}

	step := time.Duration(intervalMinutes) * time.Minute
	var slots []string
	for t := open; t.Before(closing); t = t.Add(step) {
		if t.Add(step).After(closing) {
			break
		}
		slots = append(slots, t.Format(entity.TimeFormat))
	}
	return slots
}

// futureSlots keeps slots whose start time is still ahead of now. Only
// meaningful when the requested date is today.
func futureSlots(slots []string, now time.Time) []string {
	cutoff := now.Format(entity.TimeFormat)
	var remaining []string
	for _, slot := range slots {
		// HH:MM labels sort lexicographically in time order.
		if slot > cutoff {
			remaining = append(remaining, slot)
		}
	}
	return remaining
}

func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// dateInPast compares calendar days only, ignoring the time component.
func dateInPast(date, now time.Time) bool {
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}

func weekdaySet(days []time.Weekday) map[time.Weekday]bool {
	set := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		set[d] = true
	}
	return set
}

func outreachWeekdaySet(location *entity.OutreachLocation) map[time.Weekday]bool {
	set := make(map[time.Weekday]bool)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if location.OperatesOn(d) {
			set[d] = true
		}
	}
	return set
}
