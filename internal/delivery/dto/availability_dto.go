package dto

type AvailabilityRequest struct {
	Date               string `json:"date" validate:"required,dateonly"`
	LocationType       string `json:"location_type" validate:"required,locationtype"`
	OutreachLocationID string `json:"outreach_location_id" validate:"omitempty,uuid"`
	AgeGroup           string `json:"age_group" validate:"omitempty,agegroup"`
}

type SlotResponse struct {
	Time                 string `json:"time"`
	Available            bool   `json:"available"`
	SlotCount            int    `json:"slot_count"`
	AvailableForAgeGroup string `json:"available_for_age_group,omitempty"`
}

type AvailabilityResponse struct {
	Date          string         `json:"date"`
	DateAvailable bool           `json:"date_available"`
	Reason        string         `json:"reason,omitempty"`
	Slots         []SlotResponse `json:"slots"`
}
