package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"disability-services-api/config"
	"disability-services-api/internal/delivery/dto"
	"disability-services-api/internal/delivery/http/middleware"
	"disability-services-api/internal/domain/entity"
	"disability-services-api/internal/service"
	"disability-services-api/pkg/clock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeSlotQuota records every reservation and restore. reserveErrs is a
// queue of per-call results; an empty queue means success.
type fakeSlotQuota struct {
	reserveErrs []error
	reserved    []service.SlotRef
	restored    []service.SlotRef
	resyncs     int
	resyncErr   error
}

func (f *fakeSlotQuota) Reserve(_ context.Context, ref service.SlotRef, _ int) error {
	f.reserved = append(f.reserved, ref)
	if len(f.reserveErrs) == 0 {
		return nil
	}
	err := f.reserveErrs[0]
	f.reserveErrs = f.reserveErrs[1:]
	return err
}

func (f *fakeSlotQuota) Restore(_ context.Context, ref service.SlotRef) error {
	f.restored = append(f.restored, ref)
	return nil
}

func (f *fakeSlotQuota) Resync(_ context.Context, _ service.SlotRef, _ int) error {
	f.resyncs++
	return f.resyncErr
}

type fakeNotifier struct {
	kinds []entity.SmsKind
}

func (f *fakeNotifier) NotifyAppointment(_ uuid.UUID, _ string, kind entity.SmsKind, _ *entity.Appointment) {
	f.kinds = append(f.kinds, kind)
}

type noopAudit struct{}

func (noopAudit) LogStatusChange(_ *gorm.DB, _ *uuid.UUID, _ uuid.UUID, _, _ entity.AppointmentStatus) error {
	return nil
}

func (noopAudit) LogReschedule(_ *gorm.DB, _ *uuid.UUID, _ uuid.UUID, _, _, _, _ string) error {
	return nil
}

type stubAvailability struct {
	day *entity.DayAvailability
	err error
}

func (s *stubAvailability) GetAvailability(_ context.Context, _ *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error) {
	return nil, nil
}

func (s *stubAvailability) DayAvailability(_ context.Context, _ time.Time, _ entity.LocationType, _ *entity.OutreachLocation, _ *entity.AgeGroup) (*entity.DayAvailability, error) {
	return s.day, s.err
}

type stubLocationRepo struct {
	location *entity.OutreachLocation
}

func (s *stubLocationRepo) Create(_ *gorm.DB, _ *entity.OutreachLocation) error { return nil }
func (s *stubLocationRepo) FindByID(_ *gorm.DB, _ uuid.UUID) (*entity.OutreachLocation, error) {
	return s.location, nil
}
func (s *stubLocationRepo) FindActive(_ *gorm.DB) ([]entity.OutreachLocation, error) {
	return nil, nil
}
func (s *stubLocationRepo) FindAll(_ *gorm.DB) ([]entity.OutreachLocation, error) { return nil, nil }
func (s *stubLocationRepo) Update(_ *gorm.DB, _ *entity.OutreachLocation) error   { return nil }
func (s *stubLocationRepo) SetActive(_ *gorm.DB, _ uuid.UUID, _ bool) (int64, error) {
	return 0, nil
}

// fakeBookingRepo keeps appointments in a map and lets tests dial the
// row counts of the conditional updates.
type fakeBookingRepo struct {
	stubAppointmentRepo
	byID         map[uuid.UUID]*entity.Appointment
	activeAtSlot *entity.Appointment
	createErr    error
	created      *entity.Appointment
	scheduleRows int64
	statusRows   int64
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		byID:         map[uuid.UUID]*entity.Appointment{},
		scheduleRows: 1,
		statusRows:   1,
	}
}

func (f *fakeBookingRepo) Create(_ *gorm.DB, appointment *entity.Appointment) error {
	if f.createErr != nil {
		return f.createErr
	}
	appointment.ID = uuid.New()
	f.created = appointment
	f.byID[appointment.ID] = appointment
	return nil
}

func (f *fakeBookingRepo) FindByID(_ *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	return f.byID[id], nil
}

func (f *fakeBookingRepo) FindActiveByUserAndSlot(_ *gorm.DB, _ uuid.UUID, _ string, _ string) (*entity.Appointment, error) {
	return f.activeAtSlot, nil
}

func (f *fakeBookingRepo) UpdateSchedule(_ *gorm.DB, id uuid.UUID, newDate, newTime string, newStatus, _ entity.AppointmentStatus) (int64, error) {
	if f.scheduleRows == 0 {
		return 0, nil
	}
	if appointment, ok := f.byID[id]; ok {
		date, _ := time.Parse(entity.DateFormat, newDate)
		appointment.AppointmentDate = date
		appointment.AppointmentTime = newTime
		appointment.Status = newStatus
	}
	return f.scheduleRows, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ *gorm.DB, id uuid.UUID, newStatus, _ entity.AppointmentStatus) (int64, error) {
	if f.statusRows > 0 {
		if appointment, ok := f.byID[id]; ok {
			appointment.Status = newStatus
		}
	}
	return f.statusRows, nil
}

type bookingFixture struct {
	repo     *fakeBookingRepo
	quota    *fakeSlotQuota
	notifier *fakeNotifier
	usecase  BookingUsecase
}

func newBookingFixture(day *entity.DayAvailability, location *entity.OutreachLocation, cfg config.BookingConfig, now time.Time) *bookingFixture {
	f := &bookingFixture{
		repo:     newFakeBookingRepo(),
		quota:    &fakeSlotQuota{},
		notifier: &fakeNotifier{},
	}
	db := &gorm.DB{Config: &gorm.Config{}, Statement: &gorm.Statement{}}
	f.usecase = NewBookingUsecase(
		db, quietLogger(), f.repo, &stubLocationRepo{location: location},
		&stubAvailability{day: day}, f.quota, f.notifier, noopAudit{},
		cfg, clock.Fixed(now),
	)
	return f
}

func authCtx(userID uuid.UUID) context.Context {
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, userID)
	return context.WithValue(ctx, middleware.UserPhoneKey, "+254700000001")
}

func openDay(times ...string) *entity.DayAvailability {
	day := &entity.DayAvailability{DateAvailable: true}
	for _, timeLabel := range times {
		day.Slots = append(day.Slots, entity.TimeSlot{Time: timeLabel, Available: true, SlotCount: 1})
	}
	return day
}

func seedAppointment(repo *fakeBookingRepo, userID uuid.UUID, status entity.AppointmentStatus) *entity.Appointment {
	appointment := &entity.Appointment{
		ID:              uuid.New(),
		UserID:          userID,
		AppointmentDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		AppointmentTime: "09:00",
		LocationType:    entity.LocationResourceCenter,
		Location:        "Resource Center",
		Purpose:         "Physiotherapy assessment",
		Status:          status,
	}
	repo.byID[appointment.ID] = appointment
	return appointment
}

var testNow = time.Date(2026, 8, 20, 8, 0, 0, 0, time.UTC)

func TestBookValidationOrder(t *testing.T) {
	userID := uuid.New()
	inactive := &entity.OutreachLocation{ID: uuid.New(), Name: "Kisumu Outreach", Active: false}

	tests := []struct {
		name     string
		req      dto.BookAppointmentRequest
		location *entity.OutreachLocation
		existing bool
		want     error
	}{
		{
			// Everything is wrong; the location type check fires first.
			name: "unrecognized location type",
			req:  dto.BookAppointmentRequest{Date: "2026-08-01", Time: "09:00", LocationType: "HOME"},
			want: ErrInvalidLocation,
		},
		{
			name: "malformed outreach location id",
			req:  dto.BookAppointmentRequest{Date: "2026-09-01", Time: "09:00", LocationType: "OUTREACH", OutreachLocationID: "not-a-uuid", Purpose: "Checkup"},
			want: ErrInvalidLocation,
		},
		{
			name:     "inactive outreach location",
			req:      dto.BookAppointmentRequest{Date: "2026-09-01", Time: "09:00", LocationType: "OUTREACH", OutreachLocationID: uuid.NewString(), Purpose: "Checkup"},
			location: inactive,
			want:     ErrInvalidLocation,
		},
		{
			// Date is checked before the blank purpose.
			name: "past date",
			req:  dto.BookAppointmentRequest{Date: "2026-08-01", Time: "09:00", LocationType: "RESOURCE_CENTER"},
			want: ErrInvalidDate,
		},
		{
			name: "blank purpose",
			req:  dto.BookAppointmentRequest{Date: "2026-09-01", Time: "09:00", LocationType: "RESOURCE_CENTER", Purpose: "   "},
			want: ErrEmptyPurpose,
		},
		{
			name: "time outside the day's slots",
			req:  dto.BookAppointmentRequest{Date: "2026-09-01", Time: "14:00", LocationType: "RESOURCE_CENTER", Purpose: "Checkup"},
			want: ErrSlotUnavailable,
		},
		{
			name:     "existing appointment at the same time",
			req:      dto.BookAppointmentRequest{Date: "2026-09-01", Time: "09:00", LocationType: "RESOURCE_CENTER", Purpose: "Checkup"},
			existing: true,
			want:     ErrAlreadyBooked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(openDay("09:00", "10:00"), tt.location, testBooking(), testNow)
			if tt.existing {
				f.repo.activeAtSlot = seedAppointment(f.repo, userID, entity.StatusConfirmed)
			}

			_, err := f.usecase.Book(authCtx(userID), &tt.req)
			if err != tt.want {
				t.Fatalf("Book() error = %v, want %v", err, tt.want)
			}
			if len(f.quota.reserved) != 0 {
				t.Errorf("rejected booking must not reserve a spot, got %d reservations", len(f.quota.reserved))
			}
		})
	}
}

func TestBookResourceCenter(t *testing.T) {
	cfg := testBooking()
	cfg.ResourceCenterFee = 500

	f := newBookingFixture(openDay("09:00", "10:00"), nil, cfg, testNow)
	userID := uuid.New()

	resp, err := f.usecase.Book(authCtx(userID), &dto.BookAppointmentRequest{
		Date:         "2026-09-01",
		Time:         "09:00",
		LocationType: "RESOURCE_CENTER",
		Purpose:      "Physiotherapy assessment",
	})
	if err != nil {
		t.Fatalf("Book() failed: %v", err)
	}

	if resp.Status != string(entity.StatusPending) {
		t.Errorf("status = %q, want PENDING", resp.Status)
	}
	if resp.ServiceFee != "500.00" {
		t.Errorf("service fee = %q, want 500.00", resp.ServiceFee)
	}
	if resp.Location != "Resource Center" {
		t.Errorf("location = %q", resp.Location)
	}

	if len(f.quota.reserved) != 1 {
		t.Fatalf("expected 1 reservation, got %d", len(f.quota.reserved))
	}
	ref := f.quota.reserved[0]
	if ref.Date != "2026-09-01" || ref.Time != "09:00" || ref.LocationType != entity.LocationResourceCenter {
		t.Errorf("reserved ref = %+v", ref)
	}
	if ref.AgeGroup != nil {
		t.Errorf("no cohort split configured, ref must not carry an age group")
	}

	if len(f.notifier.kinds) != 1 || f.notifier.kinds[0] != entity.SmsKindBooked {
		t.Errorf("notifications = %v, want one booked SMS", f.notifier.kinds)
	}
}

func TestBookSlotExhausted(t *testing.T) {
	f := newBookingFixture(openDay("09:00"), nil, testBooking(), testNow)
	// Reservation fails, the resync does not yield a spot either.
	f.quota.reserveErrs = []error{service.ErrSlotFull, service.ErrSlotFull}

	_, err := f.usecase.Book(authCtx(uuid.New()), &dto.BookAppointmentRequest{
		Date:         "2026-09-01",
		Time:         "09:00",
		LocationType: "RESOURCE_CENTER",
		Purpose:      "Checkup",
	})
	if err != ErrSlotUnavailable {
		t.Fatalf("Book() error = %v, want ErrSlotUnavailable", err)
	}
	if f.quota.resyncs != 1 {
		t.Errorf("expected exactly one resync before giving up, got %d", f.quota.resyncs)
	}
	if len(f.quota.reserved) != 2 {
		t.Errorf("expected 2 reservation attempts, got %d", len(f.quota.reserved))
	}
	if f.repo.created != nil {
		t.Error("no row must be inserted when the slot is full")
	}
}

func TestBookCompensatesFailedInsert(t *testing.T) {
	f := newBookingFixture(openDay("09:00"), nil, testBooking(), testNow)
	f.repo.createErr = errors.New("insert failed")

	_, err := f.usecase.Book(authCtx(uuid.New()), &dto.BookAppointmentRequest{
		Date:         "2026-09-01",
		Time:         "09:00",
		LocationType: "RESOURCE_CENTER",
		Purpose:      "Checkup",
	})
	if err == nil {
		t.Fatal("Book() should surface the insert failure")
	}
	if len(f.quota.restored) != 1 {
		t.Fatalf("expected the reservation to be compensated, got %d restores", len(f.quota.restored))
	}
	if f.quota.restored[0].Key() != f.quota.reserved[0].Key() {
		t.Errorf("compensated %s, reserved %s", f.quota.restored[0].Key(), f.quota.reserved[0].Key())
	}
	if len(f.notifier.kinds) != 0 {
		t.Error("failed booking must not notify")
	}
}

func TestRescheduleFrozenStatuses(t *testing.T) {
	frozen := []entity.AppointmentStatus{
		entity.StatusCheckedIn,
		entity.StatusCheckedOut,
		entity.StatusCompleted,
		entity.StatusCancelled,
		entity.StatusNoShow,
	}

	for _, status := range frozen {
		t.Run(string(status), func(t *testing.T) {
			f := newBookingFixture(openDay("10:00"), nil, testBooking(), testNow)
			userID := uuid.New()
			appointment := seedAppointment(f.repo, userID, status)

			_, err := f.usecase.Reschedule(authCtx(userID), appointment.ID, &dto.RescheduleAppointmentRequest{
				NewDate: "2026-09-03",
				NewTime: "10:00",
			})
			if err != ErrNotReschedulable {
				t.Fatalf("Reschedule() error = %v, want ErrNotReschedulable", err)
			}
			if len(f.quota.reserved) != 0 {
				t.Error("frozen appointment must not reserve a new slot")
			}
			if appointment.AppointmentTime != "09:00" || appointment.Status != status {
				t.Errorf("appointment changed: %+v", appointment)
			}
		})
	}
}

func TestRescheduleNotOwned(t *testing.T) {
	f := newBookingFixture(openDay("10:00"), nil, testBooking(), testNow)
	appointment := seedAppointment(f.repo, uuid.New(), entity.StatusConfirmed)

	_, err := f.usecase.Reschedule(authCtx(uuid.New()), appointment.ID, &dto.RescheduleAppointmentRequest{
		NewDate: "2026-09-03",
		NewTime: "10:00",
	})
	if err != ErrNotOwned {
		t.Fatalf("Reschedule() error = %v, want ErrNotOwned", err)
	}
}

func TestRescheduleDuplicateSlot(t *testing.T) {
	f := newBookingFixture(openDay("10:00"), nil, testBooking(), testNow)
	userID := uuid.New()
	appointment := seedAppointment(f.repo, userID, entity.StatusConfirmed)

	// Another active appointment of the same user already sits at the
	// target time.
	other := seedAppointment(f.repo, userID, entity.StatusConfirmed)
	other.AppointmentDate = time.Date(2026, 9, 3, 0, 0, 0, 0, time.UTC)
	other.AppointmentTime = "10:00"
	f.repo.activeAtSlot = other

	_, err := f.usecase.Reschedule(authCtx(userID), appointment.ID, &dto.RescheduleAppointmentRequest{
		NewDate: "2026-09-03",
		NewTime: "10:00",
	})
	if err != ErrAlreadyBooked {
		t.Fatalf("Reschedule() error = %v, want ErrAlreadyBooked", err)
	}
	if len(f.quota.reserved) != 0 {
		t.Error("conflicting reschedule must not reserve a spot")
	}
	if appointment.AppointmentTime != "09:00" {
		t.Errorf("appointment moved to %s", appointment.AppointmentTime)
	}
}

func TestRescheduleOntoOwnSlot(t *testing.T) {
	f := newBookingFixture(openDay("09:00"), nil, testBooking(), testNow)
	userID := uuid.New()
	appointment := seedAppointment(f.repo, userID, entity.StatusConfirmed)
	// The duplicate lookup finds the appointment being moved itself.
	f.repo.activeAtSlot = appointment

	resp, err := f.usecase.Reschedule(authCtx(userID), appointment.ID, &dto.RescheduleAppointmentRequest{
		NewDate: "2026-09-01",
		NewTime: "09:00",
	})
	if err != nil {
		t.Fatalf("Reschedule() failed: %v", err)
	}
	if resp.Status != string(entity.StatusRescheduled) {
		t.Errorf("status = %q, want RESCHEDULED", resp.Status)
	}
}

func TestRescheduleConflictLeavesScheduleUnchanged(t *testing.T) {
	f := newBookingFixture(openDay("10:00"), nil, testBooking(), testNow)
	userID := uuid.New()
	appointment := seedAppointment(f.repo, userID, entity.StatusConfirmed)
	// A concurrent writer wins the conditional update.
	f.repo.scheduleRows = 0

	_, err := f.usecase.Reschedule(authCtx(userID), appointment.ID, &dto.RescheduleAppointmentRequest{
		NewDate: "2026-09-03",
		NewTime: "10:00",
	})
	if err != ErrNotReschedulable {
		t.Fatalf("Reschedule() error = %v, want ErrNotReschedulable", err)
	}

	if appointment.AppointmentTime != "09:00" || appointment.AppointmentDate.Day() != 1 {
		t.Errorf("lost conditional update must leave the schedule unchanged, got %s %s",
			appointment.AppointmentDate.Format(entity.DateFormat), appointment.AppointmentTime)
	}
	if len(f.quota.reserved) != 1 || len(f.quota.restored) != 1 {
		t.Fatalf("reservation must be compensated: reserved=%d restored=%d",
			len(f.quota.reserved), len(f.quota.restored))
	}
	if f.quota.restored[0].Key() != f.quota.reserved[0].Key() {
		t.Errorf("compensated the wrong slot: %s", f.quota.restored[0].Key())
	}
}

func TestRescheduleRestoresOldSlot(t *testing.T) {
	f := newBookingFixture(openDay("10:00"), nil, testBooking(), testNow)
	userID := uuid.New()
	appointment := seedAppointment(f.repo, userID, entity.StatusConfirmed)

	resp, err := f.usecase.Reschedule(authCtx(userID), appointment.ID, &dto.RescheduleAppointmentRequest{
		NewDate: "2026-09-03",
		NewTime: "10:00",
	})
	if err != nil {
		t.Fatalf("Reschedule() failed: %v", err)
	}

	if resp.Date != "2026-09-03" || resp.Time != "10:00" {
		t.Errorf("moved to %s %s", resp.Date, resp.Time)
	}
	if len(f.quota.reserved) != 1 || f.quota.reserved[0].Time != "10:00" {
		t.Errorf("new slot must be reserved, got %+v", f.quota.reserved)
	}
	if len(f.quota.restored) != 1 || f.quota.restored[0].Time != "09:00" {
		t.Errorf("old slot must be restored, got %+v", f.quota.restored)
	}
	if len(f.notifier.kinds) != 1 || f.notifier.kinds[0] != entity.SmsKindRescheduled {
		t.Errorf("notifications = %v, want one rescheduled SMS", f.notifier.kinds)
	}
}

func TestCancelRestoresSlot(t *testing.T) {
	f := newBookingFixture(openDay("09:00"), nil, testBooking(), testNow)
	userID := uuid.New()
	appointment := seedAppointment(f.repo, userID, entity.StatusConfirmed)

	if err := f.usecase.Cancel(authCtx(userID), appointment.ID); err != nil {
		t.Fatalf("Cancel() failed: %v", err)
	}
	if appointment.Status != entity.StatusCancelled {
		t.Errorf("status = %s, want CANCELLED", appointment.Status)
	}
	if len(f.quota.restored) != 1 || f.quota.restored[0].Time != "09:00" {
		t.Errorf("slot must be restored, got %+v", f.quota.restored)
	}
	if len(f.notifier.kinds) != 1 || f.notifier.kinds[0] != entity.SmsKindCancelled {
		t.Errorf("notifications = %v, want one cancelled SMS", f.notifier.kinds)
	}
}

func TestCancelAlreadyCancelled(t *testing.T) {
	f := newBookingFixture(openDay("09:00"), nil, testBooking(), testNow)
	userID := uuid.New()
	appointment := seedAppointment(f.repo, userID, entity.StatusCancelled)

	if err := f.usecase.Cancel(authCtx(userID), appointment.ID); err != ErrAlreadyCancelled {
		t.Fatalf("Cancel() error = %v, want ErrAlreadyCancelled", err)
	}
	if len(f.quota.restored) != 0 {
		t.Error("cancelled appointment must not restore quota again")
	}
}
