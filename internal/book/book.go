// Package book maintains the merged top-of-book view across venues.
package book

import (
	"time"

	"github.com/BullionBear/obagg/internal/venue"
	"github.com/shopspring/decimal"
)

// Level is a single price level contributed by one venue.
type Level struct {
	Venue  venue.Tag
	Price  decimal.Decimal
	Amount decimal.Decimal
}

// Orderbook is one venue's depth-of-book update, already trimmed to the
// depth that venue's adapter reports.
type Orderbook struct {
	Venue      venue.Tag
	ExchangeTS uint64
	Bids       []Level
	Asks       []Level
}

// Snapshot is the merged, bounded view handed to subscribers.
type Snapshot struct {
	Spread decimal.Decimal
	Bids   []Level
	Asks   []Level
	// LastUpdate records, per venue, the time its most recent Update
	// was applied — surfaced by the admin HTTP surface as a
	// per-venue last-update age.
	LastUpdate map[venue.Tag]time.Time
}

// CombinedBook merges per-venue depth updates into one bounded,
// sorted view. It has a single owner: the Processor's drive loop
// (see internal/processor). update is never safe to call
// concurrently with itself.
type CombinedBook struct {
	snapshot  Snapshot
	maxOrders int
}

// New creates an empty CombinedBook capped at maxOrders levels per side.
func New(maxOrders int) *CombinedBook {
	return &CombinedBook{
		snapshot: Snapshot{
			Spread:     decimal.Zero,
			Bids:       nil,
			Asks:       nil,
			LastUpdate: make(map[venue.Tag]time.Time),
		},
		maxOrders: maxOrders,
	}
}

// Update folds a venue's fresh depth update into the combined view:
// every existing level from that venue is discarded, then the
// remaining combined levels and the incoming levels are merged in
// sorted order, capped at maxOrders. Cost is O(maxOrders) per call —
// no heap or tree, since both inputs are already sorted top-N slices.
func (b *CombinedBook) Update(ob Orderbook) {
	incoming := ob.Venue

	b.snapshot.Bids = dropVenue(b.snapshot.Bids, incoming)
	b.snapshot.Asks = dropVenue(b.snapshot.Asks, incoming)

	b.snapshot.Bids = mergeLevels(b.snapshot.Bids, ob.Bids, b.maxOrders, bidBetter)
	b.snapshot.Asks = mergeLevels(b.snapshot.Asks, ob.Asks, b.maxOrders, askBetter)
	b.snapshot.LastUpdate[incoming] = time.Now()

	if len(b.snapshot.Bids) > 0 && len(b.snapshot.Asks) > 0 {
		b.snapshot.Spread = b.snapshot.Asks[0].Price.Sub(b.snapshot.Bids[0].Price)
	} else {
		b.snapshot.Spread = decimal.Zero
	}
}

// Snapshot returns a copy of the current merged view. Like Update, it
// must only be called from the book's owning goroutine; the returned
// copy is independent of any later Update.
func (b *CombinedBook) Snapshot() Snapshot {
	bids := make([]Level, len(b.snapshot.Bids))
	copy(bids, b.snapshot.Bids)
	asks := make([]Level, len(b.snapshot.Asks))
	copy(asks, b.snapshot.Asks)
	lastUpdate := make(map[venue.Tag]time.Time, len(b.snapshot.LastUpdate))
	for v, t := range b.snapshot.LastUpdate {
		lastUpdate[v] = t
	}
	return Snapshot{Spread: b.snapshot.Spread, Bids: bids, Asks: asks, LastUpdate: lastUpdate}
}

func dropVenue(levels []Level, v venue.Tag) []Level {
	out := levels[:0:0]
	for _, l := range levels {
		if l.Venue != v {
			out = append(out, l)
		}
	}
	return out
}

// bidBetter reports whether a should sort ahead of b on the bid side:
// higher price first, ties broken by higher amount.
func bidBetter(a, b Level) bool {
	if !a.Price.Equal(b.Price) {
		return a.Price.GreaterThan(b.Price)
	}
	return a.Amount.GreaterThan(b.Amount)
}

// askBetter reports whether a should sort ahead of b on the ask side:
// lower price first, ties broken by higher amount.
func askBetter(a, b Level) bool {
	if !a.Price.Equal(b.Price) {
		return a.Price.LessThan(b.Price)
	}
	return a.Amount.GreaterThan(b.Amount)
}

// mergeLevels performs a bounded two-way merge of two already-sorted
// slices (existing combined levels and a fresh venue update),
// preferring the slot whichever source's head is better, capped at
// maxOrders results.
func mergeLevels(existing, incoming []Level, maxOrders int, better func(a, b Level) bool) []Level {
	result := make([]Level, 0, maxOrders)
	i, j := 0, 0
	for len(result) < maxOrders {
		switch {
		case i < len(existing) && j < len(incoming):
			if better(incoming[j], existing[i]) {
				result = append(result, incoming[j])
				j++
			} else {
				result = append(result, existing[i])
				i++
			}
		case i < len(existing):
			result = append(result, existing[i])
			i++
		case j < len(incoming):
			result = append(result, incoming[j])
			j++
		default:
			return result
		}
	}
	return result
}
