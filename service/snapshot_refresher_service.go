package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/codeGROOVE-dev/retry"

	"roomrec-server/dao"
	"roomrec-server/metrics"
	"roomrec-server/models"
	"roomrec-server/recommender"
)

// SnapshotSource hands out the snapshot requests should run against.
type SnapshotSource interface {
	Current() *recommender.Snapshot
}

// SnapshotRefresherService rebuilds the room data snapshot from the store and swaps it in
// atomically. Requests holding the previous snapshot keep reading it until they finish.
type SnapshotRefresherService struct {
	roomDao dao.RoomDAO
	metrics *metrics.Metrics
	logger  *log.Logger

	current atomic.Pointer[recommender.Snapshot]

	mu        sync.Mutex // serialises refreshes
	listeners []func(*recommender.Snapshot)

	attempts uint
	delay    time.Duration
}

// NewSnapshotRefresherService constructs a refresher reading from roomDao.
func NewSnapshotRefresherService(roomDao dao.RoomDAO, m *metrics.Metrics, logger *log.Logger) *SnapshotRefresherService {
	if logger == nil {
		logger = log.Default()
	}
	return &SnapshotRefresherService{
		roomDao:  roomDao,
		metrics:  m,
		logger:   logger.WithPrefix("SnapshotRefresherService"),
		attempts: 5,
		delay:    time.Second,
	}
}

// WithRetry overrides the load retry policy.
func (sr *SnapshotRefresherService) WithRetry(attempts uint, delay time.Duration) *SnapshotRefresherService {
	sr.attempts = attempts
	sr.delay = delay
	return sr
}

// OnSwap registers fn to run after every successful swap, with the new snapshot.
func (sr *SnapshotRefresherService) OnSwap(fn func(*recommender.Snapshot)) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.listeners = append(sr.listeners, fn)
}

// Current returns the latest snapshot, or nil before the first successful refresh.
func (sr *SnapshotRefresherService) Current() *recommender.Snapshot {
	return sr.current.Load()
}

// Refresh loads agenda, facilities and readings, retrying transient store failures, and
// swaps in a new snapshot. On failure the previous snapshot stays in place.
func (sr *SnapshotRefresherService) Refresh(ctx context.Context) (*recommender.Snapshot, error) {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	var (
		agenda     []models.AgendaEntry
		facilities []models.Facility
		readings   []models.SensorReading
	)
	err := retry.Do(
		func() error {
			var err error
			if agenda, err = sr.roomDao.ListAgenda(ctx); err != nil {
				return fmt.Errorf("agenda: %w", err)
			}
			if facilities, err = sr.roomDao.ListFacilities(ctx); err != nil {
				return fmt.Errorf("facilities: %w", err)
			}
			if readings, err = sr.roomDao.ListReadings(ctx); err != nil {
				return fmt.Errorf("sensor readings: %w", err)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(sr.attempts),
		retry.Delay(sr.delay),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			sr.logger.Warn("retrying snapshot load", "attempt", n+1, "err", err)
		}),
	)
	if err != nil {
		sr.metrics.SnapshotRefreshed(false, 0, 0, 0, 0)
		sr.logger.Error("snapshot refresh failed", "err", err)
		return nil, fmt.Errorf("failed to load room data: %w", err)
	}

	snap := recommender.NewSnapshot(agenda, facilities, readings)
	sr.swap(snap)
	return snap, nil
}

func (sr *SnapshotRefresherService) swap(snap *recommender.Snapshot) {
	sr.current.Store(snap)

	info := snap.Info()
	sr.metrics.SnapshotRefreshed(true, info.AgendaEntries, info.BusyIntervals, info.Facilities, info.Readings)
	if invalid := snap.InvalidAgenda(); len(invalid) > 0 {
		sr.logger.Warn("agenda entries with invalid time slots were ignored", "count", len(invalid))
	}
	sr.logger.Info("snapshot swapped",
		"snapshot_id", info.ID,
		"agenda", info.AgendaEntries,
		"busy_intervals", info.BusyIntervals,
		"facilities", info.Facilities,
		"readings", info.Readings)

	for _, fn := range sr.listeners {
		fn(snap)
	}
}

// StartPeriodicJob launches the background refresh loop at the given interval. The loop
// ends when ctx is cancelled.
func (sr *SnapshotRefresherService) StartPeriodicJob(ctx context.Context, interval time.Duration) {
	go sr.startPeriodicJob(ctx, interval)
}

func (sr *SnapshotRefresherService) startPeriodicJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sr.logger.Info("periodic refresher stopped")
			return
		case <-ticker.C:
			sr.logger.Debug("running periodic snapshot refresh")
			if _, err := sr.Refresh(ctx); err != nil {
				sr.logger.Error("periodic refresh returned error", "err", err)
			}
		}
	}
}
