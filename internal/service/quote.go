package service

import (
	"context"
	"log/slog"

	"github.com/efreitasn/gotrade/internal/broker"
	"github.com/efreitasn/gotrade/internal/domain"
	"github.com/shopspring/decimal"
)

// EventPublisher fans domain events out to the streamer.
type EventPublisher interface {
	PublishQuotePriceChange(ctx context.Context, msg broker.QuotePriceChange) error
	PublishPriceChangeList(ctx context.Context, msg broker.PriceChangeListUpdate) error
	PublishMarketSummary(ctx context.Context, msg broker.MarketSummaryUpdate) error
}

// QuoteService applies price changes to quotes and maintains the recent
// price change list.
type QuoteService struct {
	quotes       QuoteStore
	publisher    EventPublisher
	recent       *domain.RecentPriceChangeList
	updatePrices bool
	publish      bool
	logger       *slog.Logger
}

// NewQuoteService builds a quote service. updatePrices false turns
// UpdatePriceVolume into a no-op; publish false suppresses streamer
// events while keeping the price updates themselves.
func NewQuoteService(quotes QuoteStore, publisher EventPublisher, recent *domain.RecentPriceChangeList, updatePrices, publish bool, logger *slog.Logger) *QuoteService {
	return &QuoteService{
		quotes:       quotes,
		publisher:    publisher,
		recent:       recent,
		updatePrices: updatePrices,
		publish:      publish,
		logger:       logger,
	}
}

// UpdatePriceVolume applies a change factor and traded share count to the
// quote for symbol. The factor is first adjusted by the price guard rules:
// penny stocks recover, overpriced stocks split. Publish failures are
// logged and do not fail the update.
func (s *QuoteService) UpdatePriceVolume(ctx context.Context, symbol string, factor decimal.Decimal, sharesTraded float64) (*domain.Quote, error) {
	if !s.updatePrices {
		return &domain.Quote{}, nil
	}

	var oldPrice decimal.Decimal
	quote, err := s.quotes.Apply(symbol, func(q *domain.Quote) {
		oldPrice = q.Price
		factor = domain.ApplyPriceRules(oldPrice, factor)
		newPrice := domain.NewPrice(oldPrice, factor)

		q.Price = newPrice
		if newPrice.LessThan(q.Low) {
			q.Low = newPrice
		}
		if newPrice.GreaterThan(q.High) {
			q.High = newPrice
		}
		q.Change, _ = newPrice.Sub(q.Open).Float64()
		q.Volume += sharesTraded
	})
	if err != nil {
		return nil, err
	}

	if s.publish {
		msg := broker.NewQuotePriceChange(quote, oldPrice.String(), factor.String(), sharesTraded)
		if err := s.publisher.PublishQuotePriceChange(ctx, msg); err != nil {
			s.logger.Error("price change publish failed", "symbol", symbol, "error", err)
		}
	}

	s.recent.Add(quote)
	return quote, nil
}

// RecentPriceChanges returns the current recent price change list, newest
// first.
func (s *QuoteService) RecentPriceChanges() []*domain.Quote {
	return s.recent.Recent()
}
