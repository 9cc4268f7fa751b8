package handler

import (
	"net/http"

	"disability-services-api/internal/delivery/dto"
	"disability-services-api/internal/usecase"
	"disability-services-api/pkg/response"
	"disability-services-api/pkg/validator"
)

type AvailabilityHandler struct {
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewAvailabilityHandler(availabilityUsecase usecase.AvailabilityUsecase, validator *validator.CustomValidator) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

// GetAvailability returns the day's slot list for a location. Query params:
// date, location_type, outreach_location_id, age_group.
func (h *AvailabilityHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := dto.AvailabilityRequest{
		Date:               query.Get("date"),
		LocationType:       query.Get("location_type"),
		OutreachLocationID: query.Get("outreach_location_id"),
		AgeGroup:           query.Get("age_group"),
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	availability, err := h.availabilityUsecase.GetAvailability(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrInvalidDate:
			response.Error(w, http.StatusBadRequest, "Invalid or past date", nil)
		case usecase.ErrInvalidLocation:
			response.Error(w, http.StatusBadRequest, "Invalid location", nil)
		case usecase.ErrLocationNotFound:
			response.NotFound(w, "Outreach location not found")
		default:
			response.InternalServerError(w, "Failed to get availability")
		}
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", availability)
}
