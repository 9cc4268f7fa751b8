package dto

type BookAppointmentRequest struct {
	Date               string `json:"date" validate:"required,dateonly"`
	Time               string `json:"time" validate:"required,timeslot"`
	LocationType       string `json:"location_type" validate:"required,locationtype"`
	OutreachLocationID string `json:"outreach_location_id" validate:"omitempty,uuid"`
	Purpose            string `json:"purpose" validate:"required,max=500"`
	Notes              string `json:"notes" validate:"omitempty,max=1000"`
	AgeGroup           string `json:"age_group" validate:"omitempty,agegroup"`
}

type RescheduleAppointmentRequest struct {
	NewDate string `json:"new_date" validate:"required,dateonly"`
	NewTime string `json:"new_time" validate:"required,timeslot"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING CONFIRMED RESCHEDULED CHECKED_IN CHECKED_OUT COMPLETED CANCELLED NO_SHOW"`
}

type AppointmentResponse struct {
	ID                 string `json:"id"`
	UserID             string `json:"user_id"`
	Date               string `json:"date"`
	Time               string `json:"time"`
	LocationType       string `json:"location_type"`
	Location           string `json:"location"`
	OutreachLocationID string `json:"outreach_location_id,omitempty"`
	County             string `json:"county,omitempty"`
	Purpose            string `json:"purpose"`
	Notes              string `json:"notes,omitempty"`
	AgeGroup           string `json:"age_group,omitempty"`
	Status             string `json:"status"`
	ServiceFee         string `json:"service_fee,omitempty"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type AuditLogResponse struct {
	ID            int64                  `json:"id"`
	ActorID       string                 `json:"actor_id,omitempty"`
	AppointmentID string                 `json:"appointment_id,omitempty"`
	Action        string                 `json:"action"`
	Metadata      map[string]interface{} `json:"metadata"`
	CreatedAt     string                 `json:"created_at"`
}
