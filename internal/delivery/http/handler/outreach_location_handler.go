package handler

import (
	"encoding/json"
	"net/http"

	"disability-services-api/internal/delivery/dto"
	"disability-services-api/internal/usecase"
	"disability-services-api/pkg/response"
	"disability-services-api/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type OutreachLocationHandler struct {
	locationUsecase usecase.OutreachLocationUsecase
	validator       *validator.CustomValidator
}

func NewOutreachLocationHandler(locationUsecase usecase.OutreachLocationUsecase, validator *validator.CustomValidator) *OutreachLocationHandler {
	return &OutreachLocationHandler{
		locationUsecase: locationUsecase,
		validator:       validator,
	}
}

// ListActiveLocations is the public listing used by the booking UI.
func (h *OutreachLocationHandler) ListActiveLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.locationUsecase.FindActive(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to list outreach locations")
		return
	}

	response.Success(w, http.StatusOK, "Outreach locations retrieved successfully", locations)
}

func (h *OutreachLocationHandler) ListAllLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.locationUsecase.FindAll(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to list outreach locations")
		return
	}

	response.Success(w, http.StatusOK, "Outreach locations retrieved successfully", locations)
}

func (h *OutreachLocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req dto.OutreachLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	location, err := h.locationUsecase.Create(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrInvalidSchedule:
			response.Error(w, http.StatusBadRequest, "Location schedule is incomplete", nil)
		default:
			response.InternalServerError(w, "Failed to create outreach location")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Outreach location created successfully", location)
}

func (h *OutreachLocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	locationID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid location ID", nil)
		return
	}

	var req dto.OutreachLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	location, err := h.locationUsecase.Update(r.Context(), locationID, &req)
	if err != nil {
		switch err {
		case usecase.ErrLocationNotFound:
			response.NotFound(w, "Outreach location not found")
		case usecase.ErrInvalidSchedule:
			response.Error(w, http.StatusBadRequest, "Location schedule is incomplete", nil)
		default:
			response.InternalServerError(w, "Failed to update outreach location")
		}
		return
	}

	response.Success(w, http.StatusOK, "Outreach location updated successfully", location)
}

func (h *OutreachLocationHandler) SetLocationActive(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	locationID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid location ID", nil)
		return
	}

	var req dto.SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	err = h.locationUsecase.SetActive(r.Context(), locationID, *req.Active)
	if err != nil {
		switch err {
		case usecase.ErrLocationNotFound:
			response.NotFound(w, "Outreach location not found")
		default:
			response.InternalServerError(w, "Failed to update outreach location")
		}
		return
	}

	response.Success(w, http.StatusOK, "Outreach location updated successfully", nil)
}
