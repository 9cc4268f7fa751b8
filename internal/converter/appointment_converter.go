package converter

import (
	"time"

	"disability-services-api/internal/delivery/dto"
	"disability-services-api/internal/domain/entity"
)

func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	resp := &dto.AppointmentResponse{
		ID:           appointment.ID.String(),
		UserID:       appointment.UserID.String(),
		Date:         appointment.AppointmentDate.Format(entity.DateFormat),
		Time:         appointment.AppointmentTime,
		LocationType: string(appointment.LocationType),
		Location:     appointment.Location,
		Purpose:      appointment.Purpose,
		Status:       string(appointment.Status),
		CreatedAt:    appointment.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    appointment.UpdatedAt.Format(time.RFC3339),
	}
	if appointment.OutreachLocationID != nil {
		resp.OutreachLocationID = appointment.OutreachLocationID.String()
	}
	if appointment.OutreachLocation != nil {
		resp.County = appointment.OutreachLocation.County
	}
	if appointment.Notes != nil {
		resp.Notes = *appointment.Notes
	}
	if appointment.AgeGroup != nil {
		resp.AgeGroup = string(*appointment.AgeGroup)
	}
	if appointment.ServiceFee != nil {
		resp.ServiceFee = appointment.ServiceFee.StringFixed(2)
	}
	return resp
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, 0, len(appointments))
	for i := range appointments {
		responses = append(responses, *AppointmentToResponse(&appointments[i]))
	}
	return responses
}

func SlotsToResponses(slots []entity.TimeSlot) []dto.SlotResponse {
	responses := make([]dto.SlotResponse, 0, len(slots))
	for _, slot := range slots {
		resp := dto.SlotResponse{
			Time:      slot.Time,
			Available: slot.Available,
			SlotCount: slot.SlotCount,
		}
		if slot.AvailableForAgeGroup != nil {
			resp.AvailableForAgeGroup = string(*slot.AvailableForAgeGroup)
		}
		responses = append(responses, resp)
	}
	return responses
}

func AuditLogsToResponses(logs []entity.AuditLog) []dto.AuditLogResponse {
	responses := make([]dto.AuditLogResponse, 0, len(logs))
	for _, auditLog := range logs {
		resp := dto.AuditLogResponse{
			ID:        auditLog.ID,
			Action:    auditLog.Action,
			Metadata:  auditLog.Metadata,
			CreatedAt: auditLog.CreatedAt.Format(time.RFC3339),
		}
		if auditLog.ActorID != nil {
			resp.ActorID = auditLog.ActorID.String()
		}
		if auditLog.AppointmentID != nil {
			resp.AppointmentID = auditLog.AppointmentID.String()
		}
		responses = append(responses, resp)
	}
	return responses
}
