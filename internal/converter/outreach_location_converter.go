package converter

import (
	"disability-services-api/internal/delivery/dto"
	"disability-services-api/internal/domain/entity"
)

func OutreachLocationToResponse(location *entity.OutreachLocation) *dto.OutreachLocationResponse {
	resp := &dto.OutreachLocationResponse{
		ID:                  location.ID.String(),
		Name:                location.Name,
		County:              location.County,
		Weekdays:            location.Weekdays,
		OpenTime:            location.OpenTime,
		CloseTime:           location.CloseTime,
		SlotIntervalMinutes: location.SlotIntervalMinutes,
		CapacityPerSlot:     location.CapacityPerSlot,
		Active:              location.Active,
	}
	if location.SubCounty != nil {
		resp.SubCounty = *location.SubCounty
	}
	if location.Ward != nil {
		resp.Ward = *location.Ward
	}
	if location.Address != nil {
		resp.Address = *location.Address
	}
	return resp
}

func OutreachLocationsToResponses(locations []entity.OutreachLocation) []dto.OutreachLocationResponse {
	responses := make([]dto.OutreachLocationResponse, 0, len(locations))
	for i := range locations {
		responses = append(responses, *OutreachLocationToResponse(&locations[i]))
	}
	return responses
}
