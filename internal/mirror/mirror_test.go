package mirror

import (
	"encoding/json"
	"testing"

	"github.com/BullionBear/obagg/internal/book"
	"github.com/BullionBear/obagg/internal/venue"
	"github.com/shopspring/decimal"
)

func TestToWireRoundTripsThroughJSON(t *testing.T) {
	snap := book.Snapshot{
		Spread: decimal.RequireFromString("0.5"),
		Bids:   []book.Level{{Venue: venue.Binance, Price: decimal.RequireFromString("100"), Amount: decimal.RequireFromString("1.5")}},
		Asks:   []book.Level{{Venue: venue.Bitstamp, Price: decimal.RequireFromString("100.5"), Amount: decimal.RequireFromString("2")}},
	}

	payload, err := json.Marshal(toWire(snap))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded wireSnapshot
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Spread.Equal(snap.Spread) {
		t.Errorf("spread = %s, want %s", decoded.Spread, snap.Spread)
	}
	if len(decoded.Bids) != 1 || decoded.Bids[0].Venue != "Binance" {
		t.Errorf("bids = %+v", decoded.Bids)
	}
	if len(decoded.Asks) != 1 || decoded.Asks[0].Venue != "Bitstamp" {
		t.Errorf("asks = %+v", decoded.Asks)
	}
}
