package handler

import (
	"time"

	"github.com/efreitasn/gotrade/internal/domain"
)

// accountView is the JSON shape of an account. Passwords never leave the
// server.
type accountView struct {
	ID           int        `json:"id"`
	UserID       string     `json:"user_id"`
	FullName     string     `json:"full_name"`
	Address      string     `json:"address"`
	Email        string     `json:"email"`
	CreditCard   string     `json:"credit_card"`
	Balance      string     `json:"balance"`
	OpenBalance  string     `json:"open_balance"`
	LoginCount   int        `json:"login_count"`
	LogoutCount  int        `json:"logout_count"`
	CreationDate time.Time  `json:"creation_date"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

func toAccountView(a *domain.Account) accountView {
	return accountView{
		ID:           a.ID,
		UserID:       a.UserID,
		FullName:     a.FullName,
		Address:      a.Address,
		Email:        a.Email,
		CreditCard:   a.CreditCard,
		Balance:      a.Balance.String(),
		OpenBalance:  a.OpenBalance.String(),
		LoginCount:   a.LoginCount,
		LogoutCount:  a.LogoutCount,
		CreationDate: a.CreationDate,
		LastLogin:    a.LastLogin,
	}
}

type orderView struct {
	ID             int        `json:"id"`
	Type           string     `json:"type"`
	Status         string     `json:"status"`
	OpenDate       time.Time  `json:"open_date"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	Quantity       float64    `json:"quantity"`
	Price          string     `json:"price"`
	Fee            string     `json:"fee"`
	AccountID      int        `json:"account_id"`
	Symbol         string     `json:"symbol"`
	HoldingID      *int       `json:"holding_id,omitempty"`
}

func toOrderView(o *domain.Order) orderView {
	return orderView{
		ID:             o.ID,
		Type:           string(o.Type),
		Status:         string(o.Status),
		OpenDate:       o.OpenDate,
		CompletionDate: o.CompletionDate,
		Quantity:       o.Quantity,
		Price:          o.Price.String(),
		Fee:            o.Fee.String(),
		AccountID:      o.AccountID,
		Symbol:         o.Symbol,
		HoldingID:      o.HoldingID,
	}
}

func toOrderViews(orders []*domain.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderView(o))
	}
	return out
}

type holdingView struct {
	ID            int       `json:"id"`
	Symbol        string    `json:"symbol"`
	Quantity      float64   `json:"quantity"`
	PurchasePrice string    `json:"purchase_price"`
	PurchaseDate  time.Time `json:"purchase_date"`
	AccountID     int       `json:"account_id"`
}

func toHoldingView(h *domain.Holding) holdingView {
	return holdingView{
		ID:            h.ID,
		Symbol:        h.Symbol,
		Quantity:      h.Quantity,
		PurchasePrice: h.PurchasePrice.String(),
		PurchaseDate:  h.PurchaseDate,
		AccountID:     h.AccountID,
	}
}

type quoteView struct {
	Symbol      string  `json:"symbol"`
	CompanyName string  `json:"company_name"`
	Price       string  `json:"price"`
	Open        string  `json:"open"`
	Low         string  `json:"low"`
	High        string  `json:"high"`
	Change      float64 `json:"change"`
	Volume      float64 `json:"volume"`
}

func toQuoteView(q *domain.Quote) quoteView {
	return quoteView{
		Symbol:      q.Symbol,
		CompanyName: q.CompanyName,
		Price:       q.Price.String(),
		Open:        q.Open.String(),
		Low:         q.Low.String(),
		High:        q.High.String(),
		Change:      q.Change,
		Volume:      q.Volume,
	}
}

func toQuoteViews(quotes []*domain.Quote) []quoteView {
	out := make([]quoteView, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, toQuoteView(q))
	}
	return out
}

type summaryView struct {
	TSIA        string      `json:"tsia"`
	OpenTSIA    string      `json:"open_tsia"`
	GainPercent string      `json:"gain_percent"`
	Volume      float64     `json:"volume"`
	TopGainers  []quoteView `json:"top_gainers"`
	TopLosers   []quoteView `json:"top_losers"`
	SummaryDate time.Time   `json:"summary_date"`
}

func toSummaryView(s *domain.MarketSummary) summaryView {
	return summaryView{
		TSIA:        s.TSIA.String(),
		OpenTSIA:    s.OpenTSIA.String(),
		GainPercent: s.GainPercent().String(),
		Volume:      s.Volume,
		TopGainers:  toQuoteViews(s.TopGainers),
		TopLosers:   toQuoteViews(s.TopLosers),
		SummaryDate: s.SummaryDate,
	}
}
