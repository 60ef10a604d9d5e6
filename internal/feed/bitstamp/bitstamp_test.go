package bitstamp

import (
	"testing"

	"github.com/BullionBear/obagg/internal/venue"
	"github.com/shopspring/decimal"
)

func TestToOrderbook(t *testing.T) {
	frame := orderbookFrame{
		Microtimestamp: "1234567890123456",
		Bids:           [][]string{{"100.5", "1.2"}},
		Asks:           [][]string{{"101.0", "0.5"}, {"101.5", "2.0"}},
	}

	ob, err := toOrderbook(frame)
	if err != nil {
		t.Fatalf("toOrderbook: %v", err)
	}
	if ob.Venue != venue.Bitstamp {
		t.Errorf("venue = %v, want Bitstamp", ob.Venue)
	}
	if ob.ExchangeTS != 1234567890123456 {
		t.Errorf("exchange ts = %d, want 1234567890123456", ob.ExchangeTS)
	}
	if len(ob.Bids) != 1 || len(ob.Asks) != 2 {
		t.Fatalf("bids/asks = %d/%d, want 1/2", len(ob.Bids), len(ob.Asks))
	}
	if !ob.Asks[1].Amount.Equal(decimal.RequireFromString("2.0")) {
		t.Errorf("ask[1].Amount = %s, want 2.0", ob.Asks[1].Amount)
	}
}

func TestToOrderbookRejectsBadQuantity(t *testing.T) {
	_, err := toOrderbook(orderbookFrame{Asks: [][]string{{"101.0", "nope"}}})
	if err == nil {
		t.Fatal("expected a conversion error for a non-numeric quantity")
	}
}
