package usecase

import (
	"disability-services-api/config"
	"disability-services-api/internal/domain/entity"
)

// slotCapacity resolves the configured capacity for a slot cohort. The
// outreach location's own capacity wins when set; a nil ageGroup means the
// undivided slot.
func slotCapacity(booking config.BookingConfig, locationType entity.LocationType, location *entity.OutreachLocation, ageGroup *entity.AgeGroup) int {
	if locationType == entity.LocationOutreach {
		if location != nil && location.CapacityPerSlot > 0 {
			return location.CapacityPerSlot
		}
		return booking.OutreachCapacity
	}

	if ageGroup != nil {
		switch *ageGroup {
		case entity.AgeGroupUnder15:
			if booking.Under15Capacity > 0 {
				return booking.Under15Capacity
			}
		case entity.AgeGroup15Plus:
			if booking.Over15Capacity > 0 {
				return booking.Over15Capacity
			}
		}
	}
	return booking.ResourceCenterCapacity
}
