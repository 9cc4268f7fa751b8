package entity

// TimeSlot is a derived availability value computed per request from
// appointment rows and the slot calendar. Not persisted.
type TimeSlot struct {
	Time                 string    `json:"time"`
	Available            bool      `json:"available"`
	SlotCount            int       `json:"slot_count"` // remaining spots
	AvailableForAgeGroup *AgeGroup `json:"available_for_age_group,omitempty"`
}

// DayAvailability is the full availability answer for one date+location.
type DayAvailability struct {
	DateAvailable bool       `json:"date_available"`
	Reason        string     `json:"reason,omitempty"`
	Slots         []TimeSlot `json:"slots"`
}
