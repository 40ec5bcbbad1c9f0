package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/auspex/internal/interfaces"
	"github.com/ternarybob/auspex/internal/models"
)

// Service refreshes the stored ticker corpus on a cron schedule so chat
// requests mostly hit warm data.
type Service struct {
	storage   interfaces.StorageManager
	collector interfaces.Collector
	logger    arbor.ILogger
	cron      *cron.Cron

	mu           sync.Mutex // protects isProcessing
	isProcessing bool
	running      bool
}

// NewService creates a new scheduler service
func NewService(storage interfaces.StorageManager, collector interfaces.Collector, logger arbor.ILogger) *Service {
	return &Service{
		storage:   storage,
		collector: collector,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start begins the scheduler with the given cron expression
func (s *Service) Start(cronExpr string) error {
	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	if cronExpr == "" {
		cronExpr = "0 */6 * * *" // Default: every 6 hours
	}

	if _, err := s.cron.AddFunc(cronExpr, s.runRefresh); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("cron_expr", cronExpr).
		Msg("Scheduler started")

	return nil
}

// Stop halts the scheduler and waits for a running refresh to finish.
func (s *Service) Stop() {
	if !s.running {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false

	s.logger.Info().Msg("Scheduler stopped")
}

// TriggerRefresh runs one refresh pass immediately, outside the schedule.
func (s *Service) TriggerRefresh(ctx context.Context) error {
	return s.refresh(ctx)
}

// runRefresh is the cron entry point. Overlapping runs are skipped rather
// than queued; a long provider stall must not pile up refresh passes.
func (s *Service) runRefresh() {
	s.mu.Lock()
	if s.isProcessing {
		s.mu.Unlock()
		s.logger.Warn().Msg("Previous refresh still running, skipping this cycle")
		return
	}
	s.isProcessing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isProcessing = false
		s.mu.Unlock()
	}()

	if err := s.refresh(context.Background()); err != nil {
		s.logger.Warn().Err(err).Msg("Scheduled refresh failed")
	}
}

// refresh collects fresh data for every stored ticker. One symbol's failure
// is logged and the rest still run.
func (s *Service) refresh(ctx context.Context) error {
	start := time.Now()

	tickers, err := s.storage.Store().ListTickers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tickers: %w", err)
	}

	if len(tickers) == 0 {
		s.logger.Debug().Msg("No tickers stored, nothing to refresh")
		return nil
	}

	// Progress events have no audience during a background run.
	sink := interfaces.EventSinkFunc(func(models.Event) error { return nil })

	failed := 0
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.collector.Collect(ctx, ticker.Symbol, sink); err != nil {
			failed++
			s.logger.Warn().
				Err(err).
				Str("symbol", ticker.Symbol).
				Msg("Ticker refresh failed")
		}
	}

	s.logger.Info().
		Int("tickers", len(tickers)).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("Corpus refresh complete")

	return nil
}
