package handler

import (
	"encoding/json"
	"net/http"

	"disability-services-api/internal/delivery/dto"
	"disability-services-api/internal/domain/entity"
	"disability-services-api/internal/usecase"
	"disability-services-api/pkg/response"
	"disability-services-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	bookingUsecase usecase.BookingUsecase
	validator      *validator.CustomValidator
}

func NewAppointmentHandler(bookingUsecase usecase.BookingUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

func (h *AppointmentHandler) GetMyAppointments(w http.ResponseWriter, r *http.Request) {
	appointments, err := h.bookingUsecase.GetMyAppointments(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}

func (h *AppointmentHandler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.bookingUsecase.Book(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrInvalidLocation:
			response.Error(w, http.StatusBadRequest, "Invalid or inactive location", nil)
		case usecase.ErrLocationNotFound:
			response.NotFound(w, "Outreach location not found")
		case usecase.ErrInvalidDate:
			response.Error(w, http.StatusBadRequest, "Appointment date must not be in the past", nil)
		case usecase.ErrEmptyPurpose:
			response.Error(w, http.StatusBadRequest, "Purpose must not be empty", nil)
		case usecase.ErrSlotUnavailable:
			response.Error(w, http.StatusConflict, "Requested slot is not available", nil)
		case usecase.ErrAlreadyBooked:
			response.Error(w, http.StatusConflict, "You already have an appointment at this time", nil)
		default:
			response.InternalServerError(w, "Failed to book appointment")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked successfully", appointment)
}

func (h *AppointmentHandler) RescheduleAppointment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	var req dto.RescheduleAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	appointment, err := h.bookingUsecase.Reschedule(r.Context(), appointmentID, &req)
	if err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		case usecase.ErrNotOwned:
			response.Forbidden(w, "Appointment does not belong to you")
		case usecase.ErrNotReschedulable:
			response.UnprocessableEntity(w, "Appointment can no longer be rescheduled")
		case usecase.ErrInvalidDate:
			response.Error(w, http.StatusBadRequest, "New date must not be in the past", nil)
		case usecase.ErrSlotUnavailable:
			response.Error(w, http.StatusConflict, "Requested slot is not available", nil)
		case usecase.ErrAlreadyBooked:
			response.Error(w, http.StatusConflict, "You already have an appointment at this time", nil)
		default:
			response.InternalServerError(w, "Failed to reschedule appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment rescheduled successfully", appointment)
}

func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	appointmentID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid appointment ID", nil)
		return
	}

	err = h.bookingUsecase.Cancel(r.Context(), appointmentID)
	if err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		case usecase.ErrNotOwned:
			response.Forbidden(w, "Appointment does not belong to you")
		case usecase.ErrAlreadyCancelled:
			response.Error(w, http.StatusConflict, "Appointment is already cancelled", nil)
		case entity.ErrInvalidTransition:
			response.UnprocessableEntity(w, "Appointment can no longer be cancelled")
		default:
			response.InternalServerError(w, "Failed to cancel appointment")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointment cancelled successfully", nil)
}
