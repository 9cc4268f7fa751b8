package usecase

import (
	"context"
	"errors"
	"strings"

	"disability-services-api/internal/converter"
	"disability-services-api/internal/delivery/dto"
	"disability-services-api/internal/domain/entity"
	"disability-services-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrInvalidSchedule = errors.New("location schedule is incomplete")

type OutreachLocationUsecase interface {
	Create(ctx context.Context, req *dto.OutreachLocationRequest) (*dto.OutreachLocationResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.OutreachLocationRequest) (*dto.OutreachLocationResponse, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	FindAll(ctx context.Context) ([]dto.OutreachLocationResponse, error)
	FindActive(ctx context.Context) ([]dto.OutreachLocationResponse, error)
}

type outreachLocationUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	locationRepo repository.OutreachLocationRepository
}

func NewOutreachLocationUsecase(db *gorm.DB, log *logrus.Logger, locationRepo repository.OutreachLocationRepository) OutreachLocationUsecase {
	return &outreachLocationUsecase{
		db:           db,
		log:          log,
		locationRepo: locationRepo,
	}
}

func (u *outreachLocationUsecase) Create(ctx context.Context, req *dto.OutreachLocationRequest) (*dto.OutreachLocationResponse, error) {
	location := locationFromRequest(req)
	if !location.HasSchedule() {
		return nil, ErrInvalidSchedule
	}

	if err := u.locationRepo.Create(u.db.WithContext(ctx), location); err != nil {
		u.log.Warnf("Failed to create outreach location: %+v", err)
		return nil, err
	}

	u.log.Infof("Outreach location created: id=%s, name=%s", location.ID, location.Name)
	return converter.OutreachLocationToResponse(location), nil
}

func (u *outreachLocationUsecase) Update(ctx context.Context, id uuid.UUID, req *dto.OutreachLocationRequest) (*dto.OutreachLocationResponse, error) {
	existing, err := u.locationRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find outreach location %s: %+v", id, err)
		return nil, err
	}
	if existing == nil {
		return nil, ErrLocationNotFound
	}

	updated := locationFromRequest(req)
	if !updated.HasSchedule() {
		return nil, ErrInvalidSchedule
	}
	updated.ID = existing.ID
	updated.Active = existing.Active
	updated.CreatedAt = existing.CreatedAt

	if err := u.locationRepo.Update(u.db.WithContext(ctx), updated); err != nil {
		u.log.Warnf("Failed to update outreach location %s: %+v", id, err)
		return nil, err
	}

	u.log.Infof("Outreach location updated: id=%s", id)
	return converter.OutreachLocationToResponse(updated), nil
}

func (u *outreachLocationUsecase) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	affected, err := u.locationRepo.SetActive(u.db.WithContext(ctx), id, active)
	if err != nil {
		u.log.Warnf("Failed to set active=%t on outreach location %s: %+v", active, id, err)
		return err
	}
	if affected == 0 {
		return ErrLocationNotFound
	}

	u.log.Infof("Outreach location active flag set: id=%s, active=%t", id, active)
	return nil
}

func (u *outreachLocationUsecase) FindAll(ctx context.Context) ([]dto.OutreachLocationResponse, error) {
	locations, err := u.locationRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list outreach locations: %+v", err)
		return nil, err
	}
	return converter.OutreachLocationsToResponses(locations), nil
}

func (u *outreachLocationUsecase) FindActive(ctx context.Context) ([]dto.OutreachLocationResponse, error) {
	locations, err := u.locationRepo.FindActive(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list active outreach locations: %+v", err)
		return nil, err
	}
	return converter.OutreachLocationsToResponses(locations), nil
}

func locationFromRequest(req *dto.OutreachLocationRequest) *entity.OutreachLocation {
	location := &entity.OutreachLocation{
		Name:                strings.TrimSpace(req.Name),
		County:              strings.TrimSpace(req.County),
		Weekdays:            req.Weekdays,
		OpenTime:            req.OpenTime,
		CloseTime:           req.CloseTime,
		SlotIntervalMinutes: req.SlotIntervalMinutes,
		CapacityPerSlot:     req.CapacityPerSlot,
		Active:              true,
	}
	if req.SubCounty != "" {
		v := req.SubCounty
		location.SubCounty = &v
	}
	if req.Ward != "" {
		v := req.Ward
		location.Ward = &v
	}
	if req.Address != "" {
		v := req.Address
		location.Address = &v
	}
	return location
}
