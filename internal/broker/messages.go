package broker

import (
	"fmt"
	"time"

	"github.com/efreitasn/gotrade/internal/domain"
	"github.com/google/uuid"
)

// Commands carried in the Command field of broker messages.
const (
	CommandNewOrder        = "neworder"
	CommandUpdateQuote     = "updateQuote"
	CommandPriceChangeList = "priceChangeList"
	CommandMarketSummary   = "marketSummaryUpdate"
)

// OrderMessage asks a consumer to complete an open order.
type OrderMessage struct {
	MessageID   string `json:"message_id"`
	Command     string `json:"command"`
	OrderID     int    `json:"order_id"`
	TwoPhase    bool   `json:"two_phase"`
	PublishTime int64  `json:"publish_time"`
	Text        string `json:"text"`
}

// NewOrderMessage builds the completion request for an order.
func NewOrderMessage(orderID int, twoPhase bool) OrderMessage {
	return OrderMessage{
		MessageID:   uuid.NewString(),
		Command:     CommandNewOrder,
		OrderID:     orderID,
		TwoPhase:    twoPhase,
		PublishTime: time.Now().UnixMilli(),
		Text:        fmt.Sprintf("neworder: orderID=%d", orderID),
	}
}

// QuotePriceChange announces a single quote price update on the streamer.
type QuotePriceChange struct {
	MessageID    string  `json:"message_id"`
	Command      string  `json:"command"`
	Symbol       string  `json:"symbol"`
	CompanyName  string  `json:"company_name"`
	Price        string  `json:"price"`
	OldPrice     string  `json:"old_price"`
	Open         string  `json:"open"`
	Low          string  `json:"low"`
	High         string  `json:"high"`
	Volume       float64 `json:"volume"`
	SharesTraded float64 `json:"shares_traded"`
	ChangeFactor string  `json:"change_factor"`
	PublishTime  int64   `json:"publish_time"`
	Text         string  `json:"text"`
}

// NewQuotePriceChange captures a quote after a price update. oldPrice is the
// price before the update and factor the multiplier that produced the new one.
func NewQuotePriceChange(q *domain.Quote, oldPrice, factor string, sharesTraded float64) QuotePriceChange {
	return QuotePriceChange{
		MessageID:    uuid.NewString(),
		Command:      CommandUpdateQuote,
		Symbol:       q.Symbol,
		CompanyName:  q.CompanyName,
		Price:        q.Price.String(),
		OldPrice:     oldPrice,
		Open:         q.Open.String(),
		Low:          q.Low.String(),
		High:         q.High.String(),
		Volume:       q.Volume,
		SharesTraded: sharesTraded,
		ChangeFactor: factor,
		PublishTime:  time.Now().UnixMilli(),
		Text:         fmt.Sprintf("Update Stock price for %s old price = %s new price = %s", q.Symbol, oldPrice, q.Price.String()),
	}
}

// PriceChangeListUpdate announces that a symbol entered the recent price
// change list.
type PriceChangeListUpdate struct {
	MessageID   string `json:"message_id"`
	Command     string `json:"command"`
	Symbol      string `json:"symbol"`
	PublishTime int64  `json:"publish_time"`
}

// NewPriceChangeListUpdate builds the recent-list event for symbol.
func NewPriceChangeListUpdate(symbol string) PriceChangeListUpdate {
	return PriceChangeListUpdate{
		MessageID:   uuid.NewString(),
		Command:     CommandPriceChangeList,
		Symbol:      symbol,
		PublishTime: time.Now().UnixMilli(),
	}
}

// MarketSummaryUpdate announces a freshly computed market summary.
type MarketSummaryUpdate struct {
	MessageID   string   `json:"message_id"`
	Command     string   `json:"command"`
	TSIA        string   `json:"tsia"`
	OpenTSIA    string   `json:"open_tsia"`
	Volume      float64  `json:"volume"`
	TopGainers  []string `json:"top_gainers"`
	TopLosers   []string `json:"top_losers"`
	SummaryDate int64    `json:"summary_date"`
	PublishTime int64    `json:"publish_time"`
}

// NewMarketSummaryUpdate builds the streamer event for a summary snapshot.
func NewMarketSummaryUpdate(s *domain.MarketSummary) MarketSummaryUpdate {
	gainers := make([]string, 0, len(s.TopGainers))
	for _, q := range s.TopGainers {
		gainers = append(gainers, q.Symbol)
	}
	losers := make([]string, 0, len(s.TopLosers))
	for _, q := range s.TopLosers {
		losers = append(losers, q.Symbol)
	}
	return MarketSummaryUpdate{
		MessageID:   uuid.NewString(),
		Command:     CommandMarketSummary,
		TSIA:        s.TSIA.String(),
		OpenTSIA:    s.OpenTSIA.String(),
		Volume:      s.Volume,
		TopGainers:  gainers,
		TopLosers:   losers,
		SummaryDate: s.SummaryDate.UnixMilli(),
		PublishTime: time.Now().UnixMilli(),
	}
}
