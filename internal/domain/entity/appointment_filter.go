package entity

// AppointmentFilter is a domain-level filter for admin appointment listing.
// Used by the repository layer to avoid coupling with delivery DTOs.
type AppointmentFilter struct {
	StartDate    string // YYYY-MM-DD, inclusive
	EndDate      string // YYYY-MM-DD, inclusive
	Status       string
	LocationType string
	County       string // matched against the outreach location's county
}
