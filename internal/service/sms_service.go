package service

import (
	"context"
	"fmt"
	"time"

	"disability-services-api/internal/domain/entity"
	"disability-services-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SmsSender delivers a message to one recipient. The production gateway
// lives behind this interface; the simulator below just logs.
type SmsSender interface {
	Send(ctx context.Context, to string, body string) error
	ProviderID() string
}

// SimulatedSender logs the message instead of delivering it.
type SimulatedSender struct {
	log      *logrus.Logger
	senderID string
}

func NewSimulatedSender(log *logrus.Logger, senderID string) *SimulatedSender {
	return &SimulatedSender{log: log, senderID: senderID}
}

func (s *SimulatedSender) ProviderID() string {
	return "sms-simulator"
}

func (s *SimulatedSender) Send(_ context.Context, to string, body string) error {
	s.log.WithFields(logrus.Fields{
		"sender_id": s.senderID,
		"to":        to,
		"body":      body,
	}).Info("Simulated SMS delivery")
	return nil
}

// SmsService sends booking lifecycle messages fire-and-forget and records
// every attempt in the delivery log. A delivery failure never propagates to
// the appointment write that triggered it.
type SmsService struct {
	db      *gorm.DB
	log     *logrus.Logger
	sender  SmsSender
	smsRepo repository.SmsNotificationRepository
}

func NewSmsService(db *gorm.DB, log *logrus.Logger, sender SmsSender, smsRepo repository.SmsNotificationRepository) *SmsService {
	return &SmsService{
		db:      db,
		log:     log,
		sender:  sender,
		smsRepo: smsRepo,
	}
}

// NotifyAppointment dispatches the message in a goroutine detached from the
// request context so a slow gateway cannot hold the response.
func (s *SmsService) NotifyAppointment(userID uuid.UUID, phone string, kind entity.SmsKind, appointment *entity.Appointment) {
	body := s.composeBody(kind, appointment)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		record := &entity.SmsNotification{
			UserID:    userID,
			Recipient: phone,
			Kind:      kind,
			Body:      body,
		}

		if err := s.sender.Send(ctx, phone, body); err != nil {
			s.log.Warnf("SMS delivery failed via %s for user %s: %+v", s.sender.ProviderID(), userID, err)
			msg := err.Error()
			record.Status = entity.SmsStatusFailed
			record.Error = &msg
		} else {
			now := time.Now()
			record.Status = entity.SmsStatusSent
			record.SentAt = &now
		}

		if err := s.smsRepo.Create(s.db.WithContext(ctx), record); err != nil {
			s.log.Warnf("Failed to record SMS delivery log for user %s: %+v", userID, err)
		}
	}()
}

func (s *SmsService) composeBody(kind entity.SmsKind, appointment *entity.Appointment) string {
	date := appointment.AppointmentDate.Format(entity.DateFormat)
	place := appointment.Location
	if appointment.OutreachLocation != nil {
		place = appointment.OutreachLocation.Name
	}

	switch kind {
	case entity.SmsKindBooked:
		return fmt.Sprintf("Your appointment on %s at %s (%s) has been received. We will confirm shortly.",
			date, appointment.AppointmentTime, place)
	case entity.SmsKindRescheduled:
		return fmt.Sprintf("Your appointment has been moved to %s at %s (%s).",
			date, appointment.AppointmentTime, place)
	case entity.SmsKindCancelled:
		return fmt.Sprintf("Your appointment on %s at %s has been cancelled.",
			date, appointment.AppointmentTime)
	default:
		return fmt.Sprintf("Update for your appointment on %s at %s.", date, appointment.AppointmentTime)
	}
}
