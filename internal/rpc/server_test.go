package rpc

import (
	"testing"

	"github.com/BullionBear/obagg/internal/book"
	"github.com/BullionBear/obagg/internal/venue"
	"github.com/shopspring/decimal"
)

func TestToSummaryPreservesVenuePriceAmount(t *testing.T) {
	snap := book.Snapshot{
		Spread: decimal.RequireFromString("1.25"),
		Bids:   []book.Level{{Venue: venue.Binance, Price: decimal.RequireFromString("100"), Amount: decimal.RequireFromString("2.5")}},
		Asks:   []book.Level{{Venue: venue.Bitstamp, Price: decimal.RequireFromString("101.25"), Amount: decimal.RequireFromString("1")}},
	}

	summary := toSummary(snap)

	if summary.Spread != 1.25 {
		t.Errorf("spread = %v, want 1.25", summary.Spread)
	}
	if len(summary.Bids) != 1 || summary.Bids[0].Exchange != "Binance" || summary.Bids[0].Price != 100 || summary.Bids[0].Amount != 2.5 {
		t.Errorf("bids = %+v", summary.Bids)
	}
	if len(summary.Asks) != 1 || summary.Asks[0].Exchange != "Bitstamp" || summary.Asks[0].Price != 101.25 {
		t.Errorf("asks = %+v", summary.Asks)
	}
}
