package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/efreitasn/gotrade/internal/broker"
	"github.com/efreitasn/gotrade/internal/domain"
)

const topQuoteCount = 5

// MarketSummaryService serves a cached market summary that at most one
// caller per interval recomputes; everyone else reads the last snapshot
// without blocking.
type MarketSummaryService struct {
	quotes    QuoteStore
	publisher EventPublisher
	interval  time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	nextDue  atomic.Int64
	snapshot atomic.Pointer[domain.MarketSummary]
}

// NewMarketSummaryService builds the summary service. interval zero means
// recompute on every call; a negative interval disables recomputation and
// serves whatever snapshot exists.
func NewMarketSummaryService(quotes QuoteStore, publisher EventPublisher, interval time.Duration, logger *slog.Logger) *MarketSummaryService {
	s := &MarketSummaryService{
		quotes:    quotes,
		publisher: publisher,
		interval:  interval,
		logger:    logger,
	}
	s.nextDue.Store(time.Now().UnixMilli())
	return s
}

// GetMarketSummary returns the current market summary. With a positive
// interval, the first caller past the deadline recomputes while
// concurrent callers get the previous snapshot immediately.
func (s *MarketSummaryService) GetMarketSummary(ctx context.Context) (*domain.MarketSummary, error) {
	if s.interval == 0 {
		return s.Refresh(ctx)
	}
	if s.interval < 0 {
		return s.snapshot.Load(), nil
	}

	now := time.Now().UnixMilli()
	due := s.nextDue.Load()
	if now < due {
		return s.snapshot.Load(), nil
	}

	s.mu.Lock()
	if s.nextDue.Load() != due {
		// Another caller already claimed this interval.
		s.mu.Unlock()
		return s.snapshot.Load(), nil
	}
	next := due + s.interval.Milliseconds()
	if next <= now {
		// The service idled across several intervals; re-base off now
		// instead of replaying missed deadlines.
		next = now + s.interval.Milliseconds()
	}
	s.nextDue.Store(next)
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// Refresh recomputes the summary from the quote store, replaces the
// snapshot and publishes it. Publish failures are logged, not returned.
func (s *MarketSummaryService) Refresh(ctx context.Context) (*domain.MarketSummary, error) {
	gainers, err := s.quotes.TopGainers(topQuoteCount)
	if err != nil {
		return nil, err
	}
	losers, err := s.quotes.TopLosers(topQuoteCount)
	if err != nil {
		return nil, err
	}
	tsia, openTSIA, volume, err := s.quotes.Aggregates()
	if err != nil {
		return nil, err
	}

	summary := &domain.MarketSummary{
		TSIA:        tsia,
		OpenTSIA:    openTSIA,
		Volume:      volume,
		TopGainers:  gainers,
		TopLosers:   losers,
		SummaryDate: time.Now(),
	}
	s.snapshot.Store(summary)

	if err := s.publisher.PublishMarketSummary(ctx, broker.NewMarketSummaryUpdate(summary)); err != nil {
		s.logger.Error("market summary publish failed", "error", err)
	}
	return summary, nil
}
