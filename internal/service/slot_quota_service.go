package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"disability-services-api/config"
	"disability-services-api/internal/domain/entity"
	"disability-services-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ErrSlotFull is returned when a slot has no remaining capacity.
var ErrSlotFull = errors.New("slot capacity is exhausted")

// reserveScript atomically takes one spot from a quota key.
// Redis Go client automatically uses EVALSHA after the first call.
//
// Logic:
// 1. If the key does not exist, return -2 (caller must initialize from the DB first)
// 2. DECR the key
// 3. If result < 0 → INCR back (rollback) and return -1 (slot full)
// 4. Otherwise return remaining spots
var reserveScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return -2
	end
	local remaining = redis.call('DECR', KEYS[1])
	if remaining < 0 then
		redis.call('INCR', KEYS[1])
		return -1
	end
	return remaining
`)

// restoreScript gives a spot back, but only when the key exists. INCR on a
// missing key would fabricate a quota of 1; a missing key is re-initialized
// from the DB count on the next reservation, which already reflects the
// cancellation.
var restoreScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return 0
	end
	return redis.call('INCR', KEYS[1])
`)

const (
	slotQuotaKeyPrefix = "slot:quota:"

	// Batch size for startup sync - 500 rows per query and 500 SETs per
	// pipeline round trip.
	syncBatchSize = 500

	// Interval for cleaning up stale per-slot mutexes
	mutexCleanupInterval = 10 * time.Minute

	// How long a mutex must be unused before cleanup
	mutexStaleThreshold = 10 * time.Minute
)

// SlotRef identifies one bookable slot including its optional age-group
// sub-partition.
type SlotRef struct {
	Date               string // YYYY-MM-DD
	Time               string // HH:MM
	LocationType       entity.LocationType
	OutreachLocationID *uuid.UUID
	AgeGroup           *entity.AgeGroup
}

// Key returns the Redis quota key for the slot.
func (s SlotRef) Key() string {
	loc := "rc"
	if s.OutreachLocationID != nil {
		loc = s.OutreachLocationID.String()
	}
	cohort := "any"
	if s.AgeGroup != nil {
		cohort = string(*s.AgeGroup)
	}
	return fmt.Sprintf("%s%s:%s:%s:%s:%s", slotQuotaKeyPrefix, s.LocationType, loc, s.Date, s.Time, cohort)
}

// CohortSplit reports whether capacity at the location type is partitioned
// into under-15 and 15-plus cohorts. Only the Resource Center splits, and
// only when both cohort capacities are configured.
func CohortSplit(booking config.BookingConfig, locationType entity.LocationType) bool {
	return locationType == entity.LocationResourceCenter &&
		booking.Under15Capacity > 0 && booking.Over15Capacity > 0
}

// NewSlotRef builds the quota reference for a slot. The cohort becomes
// part of the key only where an age-group split is configured; elsewhere
// the whole slot shares one quota regardless of the appointment's age tag.
// Every reservation and restore must build its ref here so both paths hit
// the same key.
func NewSlotRef(booking config.BookingConfig, date, timeLabel string, locationType entity.LocationType, outreachLocationID *uuid.UUID, ageGroup *entity.AgeGroup) SlotRef {
	ref := SlotRef{
		Date:               date,
		Time:               timeLabel,
		LocationType:       locationType,
		OutreachLocationID: outreachLocationID,
	}
	if ageGroup != nil && CohortSplit(booking, locationType) {
		ref.AgeGroup = ageGroup
	}
	return ref
}

// SlotQuotaService guards per-slot capacity with Redis so two concurrent
// bookings for the last spot cannot both succeed.
//
// Quota keys are initialized lazily from a DB count under a per-slot mutex,
// re-synced in batches at startup, and expire the day after the slot date.
// A failed DB insert after a reservation is compensated with Restore.
type SlotQuotaService struct {
	db              *gorm.DB
	redisClient     *redis.Client
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	booking         config.BookingConfig

	// Per-slot mutex for lazy initialization and restore
	slotMu sync.Map // map[string]*mutexWithTimestamp

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// mutexWithTimestamp tracks mutex usage for cleanup
type mutexWithTimestamp struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix timestamp
}

// NewSlotQuotaService creates the service and starts the background mutex
// cleanup goroutine. Call Stop() during graceful shutdown.
func NewSlotQuotaService(db *gorm.DB, redisClient *redis.Client, log *logrus.Logger, appointmentRepo repository.AppointmentRepository, booking config.BookingConfig) *SlotQuotaService {
	svc := &SlotQuotaService{
		db:              db,
		redisClient:     redisClient,
		log:             log,
		appointmentRepo: appointmentRepo,
		booking:         booking,
		stopChan:        make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupMutexMapLoop()

	return svc
}

// Stop gracefully shuts down the service. Safe to call multiple times.
func (s *SlotQuotaService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("SlotQuotaService stopped")
	}
}

// Reserve atomically takes one spot in the slot. Returns ErrSlotFull when
// no capacity remains. capacity is the configured total for the slot's
// cohort; it is only consulted when the quota key has to be initialized.
func (s *SlotQuotaService) Reserve(ctx context.Context, ref SlotRef, capacity int) error {
	key := ref.Key()

	result, err := reserveScript.Run(ctx, s.redisClient, []string{key}).Int()
	if err != nil {
		return fmt.Errorf("reserve slot %s: %w", key, err)
	}

	if result == -2 {
		// Key missing: initialize from the DB count, then try once more.
		if err := s.initQuotaKey(ctx, ref, capacity); err != nil {
			return err
		}
		result, err = reserveScript.Run(ctx, s.redisClient, []string{key}).Int()
		if err != nil {
			return fmt.Errorf("reserve slot %s after init: %w", key, err)
		}
	}

	if result < 0 {
		return ErrSlotFull
	}

	s.log.Debugf("Reserved spot in slot %s: remaining=%d", key, result)
	return nil
}

// Restore gives a spot back after a cancellation, a reschedule away from
// the slot, or a failed DB insert.
func (s *SlotQuotaService) Restore(ctx context.Context, ref SlotRef) error {
	mt := s.getSlotMutex(ref.Key())
	mt.mu.Lock()
	defer mt.mu.Unlock()

	if err := restoreScript.Run(ctx, s.redisClient, []string{ref.Key()}).Err(); err != nil {
		s.log.Warnf("Failed to restore quota for slot %s: %+v", ref.Key(), err)
		return fmt.Errorf("restore slot %s: %w", ref.Key(), err)
	}

	s.log.Debugf("Restored spot in slot %s", ref.Key())
	return nil
}

// Resync overwrites the quota key with the remaining capacity computed
// from the DB count. Used once per booking attempt when a reservation
// loses a race that the preceding availability read did not predict.
func (s *SlotQuotaService) Resync(ctx context.Context, ref SlotRef, capacity int) error {
	mt := s.getSlotMutex(ref.Key())
	mt.mu.Lock()
	defer mt.mu.Unlock()

	remaining, err := s.remainingFromDB(ref, capacity)
	if err != nil {
		return err
	}

	ttl := s.calculateTTL(ref.Date)
	if err := s.redisClient.Set(ctx, ref.Key(), remaining, ttl).Err(); err != nil {
		return fmt.Errorf("resync slot %s: %w", ref.Key(), err)
	}

	s.log.Debugf("Resynced slot %s: remaining=%d", ref.Key(), remaining)
	return nil
}

// SyncOnStartup re-seeds quota keys for every upcoming slot that already
// has at least one non-cancelled appointment. Slots with no bookings are
// initialized lazily on first reservation. Should be called before
// accepting traffic.
//
// The query groups by age_group, but refs go through NewSlotRef, so when
// the cohort split is disabled rows for the same slot collapse onto one
// key and their counts are summed before writing.
func (s *SlotQuotaService) SyncOnStartup(ctx context.Context) error {
	s.log.Info("Starting slot quota re-sync from database...")
	startTime := time.Now()

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		s.log.Warnf("Redis is not available, skipping sync: %+v", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}

	type occupiedSlot struct {
		AppointmentDate    time.Time
		AppointmentTime    string
		LocationType       entity.LocationType
		OutreachLocationID *uuid.UUID
		AgeGroup           *entity.AgeGroup
		BookedCount        int64
		LocationCapacity   int
	}

	type slotAggregate struct {
		ref              SlotRef
		booked           int64
		locationCapacity int
	}

	today := time.Now().UTC().Truncate(24 * time.Hour).Format(entity.DateFormat)
	offset := 0
	aggregates := make(map[string]*slotAggregate)

	for {
		var rows []occupiedSlot

		err := s.db.WithContext(ctx).Model(&entity.Appointment{}).
			Select(`
				appointments.appointment_date,
				appointments.appointment_time,
				appointments.location_type,
				appointments.outreach_location_id,
				appointments.age_group,
				COUNT(*) as booked_count,
				COALESCE(MAX(outreach_locations.capacity_per_slot), 0) as location_capacity
			`).
			Joins("LEFT JOIN outreach_locations ON outreach_locations.id = appointments.outreach_location_id").
			Where("appointments.appointment_date >= ? AND appointments.status NOT IN ?", today, []entity.AppointmentStatus{entity.StatusCancelled, entity.StatusNoShow}).
			Group("appointments.appointment_date, appointments.appointment_time, appointments.location_type, appointments.outreach_location_id, appointments.age_group").
			Order("appointments.appointment_date, appointments.appointment_time").
			Limit(syncBatchSize).
			Offset(offset).
			Scan(&rows).Error
		if err != nil {
			return fmt.Errorf("query occupied slots at offset %d: %w", offset, err)
		}

		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			ref := NewSlotRef(s.booking, row.AppointmentDate.Format(entity.DateFormat), row.AppointmentTime,
				row.LocationType, row.OutreachLocationID, row.AgeGroup)
			key := ref.Key()

			agg, ok := aggregates[key]
			if !ok {
				agg = &slotAggregate{ref: ref}
				aggregates[key] = agg
			}
			agg.booked += row.BookedCount
			if row.LocationCapacity > agg.locationCapacity {
				agg.locationCapacity = row.LocationCapacity
			}
		}

		if len(rows) < syncBatchSize {
			break
		}
		offset += syncBatchSize

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	if len(aggregates) == 0 {
		s.log.Info("No upcoming appointments found for quota sync")
		return nil
	}

	// New pipeline per batch so a large backlog does not pile up in one
	// round trip.
	pipe := s.redisClient.TxPipeline()
	inBatch := 0
	for _, agg := range aggregates {
		capacity := s.capacityFor(agg.ref, agg.locationCapacity)
		remaining := capacity - int(agg.booked)
		if remaining < 0 {
			remaining = 0
		}

		pipe.Set(ctx, agg.ref.Key(), remaining, s.calculateTTL(agg.ref.Date))
		inBatch++

		if inBatch == syncBatchSize {
			if _, err := pipe.Exec(ctx); err != nil {
				return fmt.Errorf("pipeline exec: %w", err)
			}
			pipe = s.redisClient.TxPipeline()
			inBatch = 0
		}
	}
	if inBatch > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("pipeline exec: %w", err)
		}
	}

	s.log.Infof("Slot quota re-sync completed: %d slots synced in %v", len(aggregates), time.Since(startTime))
	return nil
}

// initQuotaKey seeds a missing quota key from the DB count. SETNX keeps a
// concurrent initializer from overwriting a key that already took
// reservations.
func (s *SlotQuotaService) initQuotaKey(ctx context.Context, ref SlotRef, capacity int) error {
	mt := s.getSlotMutex(ref.Key())
	mt.mu.Lock()
	defer mt.mu.Unlock()

	remaining, err := s.remainingFromDB(ref, capacity)
	if err != nil {
		return err
	}

	ttl := s.calculateTTL(ref.Date)
	if err := s.redisClient.SetNX(ctx, ref.Key(), remaining, ttl).Err(); err != nil {
		return fmt.Errorf("init quota key %s: %w", ref.Key(), err)
	}

	s.log.Debugf("Initialized slot %s: remaining=%d", ref.Key(), remaining)
	return nil
}

func (s *SlotQuotaService) remainingFromDB(ref SlotRef, capacity int) (int, error) {
	count, err := s.appointmentRepo.CountActiveForSlot(s.db, ref.Date, ref.Time, ref.LocationType, ref.OutreachLocationID, ref.AgeGroup)
	if err != nil {
		return 0, fmt.Errorf("count bookings for slot %s: %w", ref.Key(), err)
	}

	remaining := capacity - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// capacityFor resolves the configured capacity for a slot cohort. The
// outreach location's own capacity wins when set.
func (s *SlotQuotaService) capacityFor(ref SlotRef, locationCapacity int) int {
	if ref.LocationType == entity.LocationOutreach {
		if locationCapacity > 0 {
			return locationCapacity
		}
		return s.booking.OutreachCapacity
	}

	if ref.AgeGroup != nil {
		switch *ref.AgeGroup {
		case entity.AgeGroupUnder15:
			if s.booking.Under15Capacity > 0 {
				return s.booking.Under15Capacity
			}
		case entity.AgeGroup15Plus:
			if s.booking.Over15Capacity > 0 {
				return s.booking.Over15Capacity
			}
		}
	}
	return s.booking.ResourceCenterCapacity
}

// getSlotMutex returns the mutex for a quota key
func (s *SlotQuotaService) getSlotMutex(key string) *mutexWithTimestamp {
	mt, _ := s.slotMu.LoadOrStore(key, &mutexWithTimestamp{})
	result := mt.(*mutexWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

// cleanupMutexMapLoop runs in background to clean stale mutexes
func (s *SlotQuotaService) cleanupMutexMapLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(mutexCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Slot mutex cleanup goroutine stopping")
			return
		case <-ticker.C:
			s.cleanupStaleMutexes()
		}
	}
}

// cleanupStaleMutexes removes unused mutexes. TryLock first; the lastUsed
// check happens inside the lock so a concurrent user cannot slip between
// the check and the delete.
func (s *SlotQuotaService) cleanupStaleMutexes() {
	cutoffTime := time.Now().Add(-mutexStaleThreshold).Unix()
	var cleaned int

	s.slotMu.Range(func(key, value any) bool {
		mt, ok := value.(*mutexWithTimestamp)
		if !ok {
			return true
		}

		if mt.mu.TryLock() {
			if mt.lastUsed.Load() < cutoffTime {
				s.slotMu.Delete(key)
				cleaned++
			}
			mt.mu.Unlock()
		}
		return true
	})

	if cleaned > 0 {
		s.log.Debugf("Cleaned up %d stale slot mutexes", cleaned)
	}
}

// calculateTTL returns a TTL expiring 24 hours after the slot date.
func (s *SlotQuotaService) calculateTTL(date string) time.Duration {
	day, err := time.Parse(entity.DateFormat, date)
	if err != nil {
		return 24 * time.Hour
	}

	ttl := time.Until(day.AddDate(0, 0, 1))
	if ttl <= 0 {
		// Past date - short TTL for cleanup
		return 1 * time.Minute
	}
	return ttl
}
