package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"disability-services-api/internal/delivery/dto"
	"disability-services-api/internal/domain/entity"
	"disability-services-api/internal/usecase"
	"disability-services-api/pkg/response"
	"disability-services-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AppointmentAdminHandler struct {
	adminUsecase usecase.AppointmentAdminUsecase
	validator    *validator.CustomValidator
}

func NewAppointmentAdminHandler(adminUsecase usecase.AppointmentAdminUsecase, validator *validator.CustomValidator) *AppointmentAdminHandler {
	return &AppointmentAdminHandler{
		adminUsecase: adminUsecase,
		validator:    validator,
	}
}

func (h *AppointmentAdminHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	var req dto.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.adminUsecase.UpdateStatus(r.Context(), appointmentID, &req)
	if err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		case entity.ErrInvalidTransition:
			response.UnprocessableEntity(w, "Status transition is not allowed")
		case usecase.ErrStatusConflict:
			response.Error(w, http.StatusConflict, "Appointment status changed concurrently, retry", nil)
		default:
			response.InternalServerError(w, "Failed to update appointment status")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment status updated successfully", appointment)
}

// ListAppointments supports filtering by date range, status, location type
// and county via query params.
func (h *AppointmentAdminHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := &entity.AppointmentFilter{
		StartDate:    query.Get("start_date"),
		EndDate:      query.Get("end_date"),
		Status:       query.Get("status"),
		LocationType: query.Get("location_type"),
		County:       query.Get("county"),
	}

	appointments, err := h.adminUsecase.FindAll(r.Context(), filter)
	if err != nil {
		response.InternalServerError(w, "Failed to list appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentAdminHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var appointmentID *uuid.UUID
	if raw := query.Get("appointment_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
			return
		}
		appointmentID = &id
	}

	limit := 100
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 1000 {
			response.Error(w, http.StatusBadRequest, "Limit must be between 1 and 1000", nil)
			return
		}
		limit = parsed
	}

	logs, err := h.adminUsecase.FindAuditLogs(r.Context(), appointmentID, limit)
	if err != nil {
		response.InternalServerError(w, "Failed to list audit logs")
		return
	}

	response.Success(w, http.StatusOK, "Audit logs retrieved successfully", logs)
}
