package dto

type OutreachLocationRequest struct {
	Name                string `json:"name" validate:"required,max=255"`
	County              string `json:"county" validate:"required,max=100"`
	SubCounty           string `json:"sub_county" validate:"omitempty,max=100"`
	Ward                string `json:"ward" validate:"omitempty,max=100"`
	Address             string `json:"address" validate:"omitempty,max=1000"`
	Weekdays            string `json:"weekdays" validate:"required"`
	OpenTime            string `json:"open_time" validate:"required,timeslot"`
	CloseTime           string `json:"close_time" validate:"required,timeslot"`
	SlotIntervalMinutes int    `json:"slot_interval_minutes" validate:"omitempty,min=15,max=240"`
	CapacityPerSlot     int    `json:"capacity_per_slot" validate:"omitempty,min=1,max=100"`
}

type SetActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

type OutreachLocationResponse struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	County              string `json:"county"`
	SubCounty           string `json:"sub_county,omitempty"`
	Ward                string `json:"ward,omitempty"`
	Address             string `json:"address,omitempty"`
	Weekdays            string `json:"weekdays"`
	OpenTime            string `json:"open_time"`
	CloseTime           string `json:"close_time"`
	SlotIntervalMinutes int    `json:"slot_interval_minutes"`
	CapacityPerSlot     int    `json:"capacity_per_slot"`
	Active              bool   `json:"active"`
}
