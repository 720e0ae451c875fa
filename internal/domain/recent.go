package domain

import (
	"strconv"
	"sync"
)

// recentPriceChangeMax bounds the list to the five most recent changes.
const recentPriceChangeMax = 5

// RecentPriceChangeList holds the most recent quote price changes, newest
// first. It is presentation state, not authoritative market data.
//
// Appends are gated: only symbols whose numeric suffix falls below
// maxQuotes × frequency% make the list, so a configured fraction of the
// symbol universe publishes list updates. Each accepted append invokes
// onChange with the symbol.
type RecentPriceChangeList struct {
	mu        sync.RWMutex
	quotes    []*Quote
	maxQuotes int
	frequency int
	onChange  func(symbol string)
}

// NewRecentPriceChangeList creates an empty list. frequency is a percentage
// of maxQuotes; onChange may be nil.
func NewRecentPriceChangeList(maxQuotes, frequency int, onChange func(symbol string)) *RecentPriceChangeList {
	return &RecentPriceChangeList{
		maxQuotes: maxQuotes,
		frequency: frequency,
		onChange:  onChange,
	}
}

// Add appends a copy of the quote at the head of the list if its symbol
// passes the suffix gate, evicting the oldest entry when the list is full.
// It reports whether the quote made the list.
func (l *RecentPriceChangeList) Add(q *Quote) bool {
	n, ok := symbolSuffix(q.Symbol)
	if !ok || float64(n) >= float64(l.maxQuotes)*float64(l.frequency)*0.01 {
		return false
	}

	l.mu.Lock()
	l.quotes = append([]*Quote{q.Clone()}, l.quotes...)
	if len(l.quotes) > recentPriceChangeMax {
		l.quotes = l.quotes[:recentPriceChangeMax]
	}
	l.mu.Unlock()

	if l.onChange != nil {
		l.onChange(q.Symbol)
	}
	return true
}

// Recent returns a copy of the list, newest first.
func (l *RecentPriceChangeList) Recent() []*Quote {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Quote, len(l.quotes))
	copy(out, l.quotes)
	return out
}

// IsEmpty reports whether no price change has made the list yet.
func (l *RecentPriceChangeList) IsEmpty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.quotes) == 0
}

// symbolSuffix extracts the trailing decimal number of a symbol such as
// "s:120" or "GO42". Symbols without a numeric suffix never make the list.
func symbolSuffix(symbol string) (int, bool) {
	i := len(symbol)
	for i > 0 && symbol[i-1] >= '0' && symbol[i-1] <= '9' {
		i--
	}
	if i == len(symbol) {
		return 0, false
	}
	n, err := strconv.Atoi(symbol[i:])
	if err != nil {
		return 0, false
	}
	return n, true
}
