package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/scribe/internal/scribe/store"
)

// HousekeepingService periodically clears expired one-time secrets and
// deletes invitations that were never accepted.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Clock    Clock

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to one hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		done:     make(chan struct{}),
	}
}

// Start runs one cleanup immediately and then one per interval until ctx is
// cancelled or Stop is called.
func (s *HousekeepingService) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)
	s.Logger.Info("housekeeping started", slog.Duration("interval", s.Interval))
}

// Stop waits for an in-progress cleanup to finish. It is safe to call more
// than once.
func (s *HousekeepingService) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel == nil {
			return
		}
		s.cancel()
		<-s.done
		s.Logger.Info("housekeeping stopped")
	})
}

func (s *HousekeepingService) loop(ctx context.Context) {
	defer close(s.done)

	tick := time.NewTicker(s.Interval)
	defer tick.Stop()

	for {
		s.Cleanup(ctx)
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
	}
}

// Cleanup performs one pass. A failing step does not skip the others.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := s.Clock.now()

	secrets, err := s.Store.Users().ClearExpiredSecrets(ctx, now)
	if err != nil {
		s.Logger.Error("clear expired secrets", slog.Any("error", err))
	}

	invites, err := s.Store.Members().DeleteExpiredInvites(ctx, now)
	if err != nil {
		s.Logger.Error("delete expired invites", slog.Any("error", err))
	}

	if secrets > 0 || invites > 0 {
		s.Logger.Info("housekeeping pass",
			slog.Int64("cleared_secrets", secrets),
			slog.Int64("deleted_invites", invites),
		)
	}
}
