package usecase

import (
	"reflect"
	"testing"
	"time"
)

func standardSchedule() weekSchedule {
	return weekSchedule{
		days:            map[time.Weekday]bool{time.Tuesday: true, time.Thursday: true},
		openTime:        "09:00",
		closeTime:       "16:00",
		intervalMinutes: 60,
	}
}

func TestNominalSlots(t *testing.T) {
	tests := []struct {
		name     string
		open     string
		close    string
		interval int
		want     []string
	}{
		{
			name:     "hourly nine to four",
			open:     "09:00",
			close:    "16:00",
			interval: 60,
			want:     []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00"},
		},
		{
			name:     "slot may not run past closing",
			open:     "09:00",
			close:    "12:30",
			interval: 60,
			want:     []string{"09:00", "10:00", "11:00"},
		},
		{
			name:     "thirty minute interval",
			open:     "14:00",
			close:    "16:00",
			interval: 30,
			want:     []string{"14:00", "14:30", "15:00", "15:30"},
		},
		{
			name:     "open equals close",
			open:     "09:00",
			close:    "09:00",
			interval: 60,
			want:     nil,
		},
		{
			name:     "zero interval",
			open:     "09:00",
			close:    "16:00",
			interval: 0,
			want:     nil,
		},
		{
			name:     "malformed open time",
			open:     "9am",
			close:    "16:00",
			interval: 60,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nominalSlots(tt.open, tt.close, tt.interval)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("nominalSlots(%q, %q, %d) = %v, want %v", tt.open, tt.close, tt.interval, got, tt.want)
			}
		})
	}
}

func TestEligibleSlots(t *testing.T) {
	// 2026-09-01 is a Tuesday.
	tuesday := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	wednesday := time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)
	morningBefore := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		date       time.Time
		now        time.Time
		wantOK     bool
		wantReason string
		wantSlots  int
	}{
		{
			name:      "future open weekday returns full day",
			date:      tuesday,
			now:       morningBefore,
			wantOK:    true,
			wantSlots: 7,
		},
		{
			name:       "past date",
			date:       tuesday,
			now:        time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC),
			wantOK:     false,
			wantReason: "date is in the past",
		},
		{
			name:       "closed weekday",
			date:       wednesday,
			now:        morningBefore,
			wantOK:     false,
			wantReason: "not open on Wednesdays",
		},
		{
			name:      "same day drops elapsed slots",
			date:      tuesday,
			now:       time.Date(2026, 9, 1, 13, 30, 0, 0, time.UTC),
			wantOK:    true,
			wantSlots: 2, // 14:00 and 15:00 remain
		},
		{
			name:      "same day at a slot boundary excludes that slot",
			date:      tuesday,
			now:       time.Date(2026, 9, 1, 14, 0, 0, 0, time.UTC),
			wantOK:    true,
			wantSlots: 1, // only 15:00
		},
		{
			name:       "same day after last slot",
			date:       tuesday,
			now:        time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC),
			wantOK:     false,
			wantReason: "no remaining time slots today",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason, slots := eligibleSlots(tt.date, standardSchedule(), tt.now)
			if ok != tt.wantOK {
				t.Fatalf("eligibleSlots() ok = %t, want %t (reason %q)", ok, tt.wantOK, reason)
			}
			if !ok && reason != tt.wantReason {
				t.Errorf("eligibleSlots() reason = %q, want %q", reason, tt.wantReason)
			}
			if ok && len(slots) != tt.wantSlots {
				t.Errorf("eligibleSlots() returned %d slots %v, want %d", len(slots), slots, tt.wantSlots)
			}
		})
	}
}

func TestEligibleSlotsChronologicalOrder(t *testing.T) {
	tuesday := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)

	ok, _, slots := eligibleSlots(tuesday, standardSchedule(), now)
	if !ok {
		t.Fatal("expected date to be eligible")
	}
	for i := 1; i < len(slots); i++ {
		if slots[i-1] >= slots[i] {
			t.Errorf("slots out of order: %q before %q", slots[i-1], slots[i])
		}
	}
}

func TestDateInPast(t *testing.T) {
	now := time.Date(2026, 9, 1, 23, 59, 0, 0, time.UTC)

	if dateInPast(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), now) {
		t.Error("today should not count as past regardless of clock time")
	}
	if !dateInPast(time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC), now) {
		t.Error("yesterday should count as past")
	}
	if dateInPast(time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), now) {
		t.Error("tomorrow should not count as past")
	}
}
