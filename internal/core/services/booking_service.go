package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/ports"
)

const (
	bookingWriteLockKey = "booking:write"
	occupancyGenKey     = "occupancy:gen"
)

// occupancyKey names the cached result for one range under one generation.
// Every write bumps the generation, so a result computed before a write is
// stored under a key no reader asks for and only lives until its TTL.
func occupancyKey(gen, field string) string {
	return "occupancy:" + gen + ":" + field
}

type CreateBookingRequest struct {
	CustomerID int    `json:"customer_id" validate:"required,gt=0"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type ModifyBookingRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type Options struct {
	LockTTL          time.Duration
	CacheTTL         time.Duration
	NoShowCutoffHour int
}

func DefaultOptions() Options {
	return Options{
		LockTTL:          5 * time.Second,
		CacheTTL:         time.Minute,
		NoShowCutoffHour: 18,
	}
}

// BookingService is the application boundary around BookingManager. Every
// write runs under one Locker lease so the availability check and the store
// write cannot interleave with another writer. redisClient may be nil, which
// turns the occupancy cache off.
type BookingService struct {
	manager     *BookingManager
	bookingRepo ports.BookingRepository
	locker      ports.Locker
	publisher   ports.EventPublisher
	redisClient *redis.Client
	clock       ports.Clock
	log         *slog.Logger
	opts        Options
}

func NewBookingService(
	manager *BookingManager,
	bookingRepo ports.BookingRepository,
	locker ports.Locker,
	publisher ports.EventPublisher,
	redisClient *redis.Client,
	clock ports.Clock,
	logger *slog.Logger,
	opts Options,
) *BookingService {
	return &BookingService{
		manager:     manager,
		bookingRepo: bookingRepo,
		locker:      locker,
		publisher:   publisher,
		redisClient: redisClient,
		clock:       clock,
		log:         logger,
		opts:        opts,
	}
}

func (s *BookingService) Book(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	booking := domain.NewBooking(req.CustomerID, start, end)

	err = s.withWriteLock(ctx, func() error {
		ok, err := s.manager.CreateBooking(ctx, booking)
		if err != nil {
			return err
		}

		if !ok {
			return domain.ErrNoRoomAvailable
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, domain.EventBookingCreated, *booking)
	s.log.Info("booking created", "booking_id", booking.ID, "room_id", booking.RoomID, "customer_id", booking.CustomerID)

	return booking, nil
}

// Modify moves a pending booking to new dates, possibly into another room.
func (s *BookingService) Modify(ctx context.Context, bookingID int, req ModifyBookingRequest) (*domain.Booking, error) {
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	var booking *domain.Booking
	err = s.withWriteLock(ctx, func() error {
		existing, err := s.bookingRepo.Get(ctx, bookingID)
		if err != nil {
			return err
		}
		booking = existing

		if state := booking.State(); state != domain.BookingPending {
			return fmt.Errorf("%w: modify from %s", domain.ErrInvalidTransition, state)
		}

		booking.StartDate, booking.EndDate = start, end

		ok, err := s.manager.ModifyBooking(ctx, booking)
		if err != nil {
			return err
		}

		if !ok {
			return domain.ErrNoRoomAvailable
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, domain.EventBookingModified, *booking)
	s.log.Info("booking modified", "booking_id", booking.ID, "room_id", booking.RoomID)

	return booking, nil
}

func (s *BookingService) Cancel(ctx context.Context, bookingID int) (*domain.Booking, error) {
	return s.apply(ctx, bookingID, domain.ActionCancel, domain.EventBookingCancelled)
}

func (s *BookingService) CheckIn(ctx context.Context, bookingID int) (*domain.Booking, error) {
	return s.apply(ctx, bookingID, domain.ActionCheckIn, domain.EventBookingCheckedIn)
}

func (s *BookingService) CheckOut(ctx context.Context, bookingID int) (*domain.Booking, error) {
	return s.apply(ctx, bookingID, domain.ActionCheckOut, domain.EventBookingCheckedOut)
}

func (s *BookingService) Get(ctx context.Context, bookingID int) (*domain.Booking, error) {
	return s.bookingRepo.Get(ctx, bookingID)
}

func (s *BookingService) AvailableRoom(ctx context.Context, start, end time.Time) (int, error) {
	return s.manager.FindAvailableRoom(ctx, start, end)
}

// OccupiedDates reads through the Redis occupancy cache. Cache failures are
// logged and never fail the call.
func (s *BookingService) OccupiedDates(ctx context.Context, start, end time.Time) ([]time.Time, error) {
	field := domain.FormatDate(start) + ":" + domain.FormatDate(end)

	var key string
	if s.redisClient != nil {
		key = s.cachedOccupancyKey(ctx, field)
	}

	if key != "" {
		raw, err := s.redisClient.Get(ctx, key).Result()
		switch {
		case err == nil:
			if dates, derr := decodeDates(raw); derr == nil {
				return dates, nil
			}
		case errors.Is(err, redis.Nil):
		default:
			s.log.Warn("occupancy cache read failed", "key", key, "err", err)
		}
	}

	dates, err := s.manager.GetFullyOccupiedDates(ctx, start, end)
	if err != nil {
		return nil, err
	}

	if key != "" {
		s.storeOccupancy(ctx, key, dates)
	}

	return dates, nil
}

// cachedOccupancyKey reads the current generation before anything is computed.
// It returns "" when the generation cannot be read, which skips the cache.
func (s *BookingService) cachedOccupancyKey(ctx context.Context, field string) string {
	gen, err := s.redisClient.Get(ctx, occupancyGenKey).Result()
	switch {
	case err == nil:
	case errors.Is(err, redis.Nil):
		gen = "0"
	default:
		s.log.Warn("occupancy cache generation read failed", "err", err)
		return ""
	}

	return occupancyKey(gen, field)
}

func (s *BookingService) storeOccupancy(ctx context.Context, key string, dates []time.Time) {
	raw, err := encodeDates(dates)
	if err != nil {
		s.log.Warn("occupancy cache encode failed", "err", err)
		return
	}

	if err := s.redisClient.Set(ctx, key, raw, s.opts.CacheTTL).Err(); err != nil {
		s.log.Warn("occupancy cache write failed", "key", key, "err", err)
	}
}

func (s *BookingService) apply(ctx context.Context, bookingID int, action domain.BookingAction, eventType domain.EventType) (*domain.Booking, error) {
	var updated domain.Booking

	err := s.withWriteLock(ctx, func() error {
		booking, err := s.bookingRepo.Get(ctx, bookingID)
		if err != nil {
			return err
		}

		updated, err = domain.Transition(*booking, action, s.clock.Now())
		if err != nil {
			return err
		}

		return s.bookingRepo.Edit(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(ctx, eventType, updated)
	s.log.Info("booking transitioned", "booking_id", updated.ID, "action", action, "status", updated.Status)

	return &updated, nil
}

func (s *BookingService) withWriteLock(ctx context.Context, fn func() error) error {
	lease, err := s.locker.Acquire(ctx, bookingWriteLockKey, s.opts.LockTTL)
	if err != nil {
		return err
	}

	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("failed to release booking lock", "err", err)
		}
	}()

	return fn()
}

func (s *BookingService) afterWrite(ctx context.Context, eventType domain.EventType, booking domain.Booking) {
	if s.redisClient != nil {
		if err := s.redisClient.Incr(ctx, occupancyGenKey).Err(); err != nil {
			s.log.Warn("occupancy cache invalidation failed", "err", err)
		}
	}

	event := domain.NewBookingEvent(eventType, booking, s.clock.Now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Error("failed to publish booking event", "event", eventType, "booking_id", booking.ID, "err", err)
	}
}

// RunNoShowSweep cancels pending bookings whose guest never arrived, every interval.
func (s *BookingService) RunNoShowSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("no-show worker started", "interval", interval.String())

	for {
		select {
		case <-ctx.Done():
			s.log.Info("no-show worker stopped")
			return
		case <-ticker.C:
			if _, err := s.ProcessNoShows(ctx); err != nil {
				s.log.Error("no-show sweep failed", "err", err)
			}
		}
	}
}

// ProcessNoShows cancels every pending booking that started before today, or
// starts today and the cutoff hour has passed. It returns how many were cancelled.
func (s *BookingService) ProcessNoShows(ctx context.Context) (int, error) {
	now := s.clock.Now()
	today := domain.DateOf(now)

	bookings, err := s.bookingRepo.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, b := range bookings {
		if b.State() != domain.BookingPending || b.StartDate.After(today) {
			continue
		}

		if b.StartDate.Equal(today) && now.Hour() < s.opts.NoShowCutoffHour {
			continue
		}

		if _, err := s.apply(ctx, b.ID, domain.ActionNoShow, domain.EventBookingCancelled); err != nil {
			s.log.Error("failed to cancel no-show booking", "booking_id", b.ID, "err", err)
			continue
		}

		cancelled++
	}

	if cancelled > 0 {
		s.log.Info("no-show bookings cancelled", "count", cancelled)
	}

	return cancelled, nil
}

func parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := domain.ParseDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	end, err := domain.ParseDate(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, end, nil
}

func encodeDates(dates []time.Time) (string, error) {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = domain.FormatDate(d)
	}

	raw, err := json.Marshal(out)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

func decodeDates(raw string) ([]time.Time, error) {
	var in []string
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, len(in))
	for _, s := range in {
		d, err := domain.ParseDate(s)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}

	return dates, nil
}
