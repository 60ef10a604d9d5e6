package book

import (
	"testing"

	"github.com/BullionBear/obagg/internal/venue"
	"github.com/shopspring/decimal"
)

func lvl(v venue.Tag, price, amount string) Level {
	return Level{Venue: v, Price: decimal.RequireFromString(price), Amount: decimal.RequireFromString(amount)}
}

func TestUpdateExceedingMaxOrders(t *testing.T) {
	b := New(3)
	b.Update(Orderbook{
		Venue:      venue.Binance,
		ExchangeTS: 1234567890,
		Bids: []Level{
			lvl(venue.Binance, "100", "1"),
			lvl(venue.Binance, "99", "2"),
			lvl(venue.Binance, "98", "1.5"),
			lvl(venue.Binance, "97", "0.5"),
		},
		Asks: []Level{
			lvl(venue.Binance, "101", "1"),
			lvl(venue.Binance, "102", "2"),
			lvl(venue.Binance, "103", "1.5"),
			lvl(venue.Binance, "104", "0.5"),
		},
	})

	snap := b.Snapshot()
	if len(snap.Bids) != 3 || len(snap.Asks) != 3 {
		t.Fatalf("expected 3/3 levels, got %d/%d", len(snap.Bids), len(snap.Asks))
	}
	if !snap.Bids[0].Price.Equal(decimal.RequireFromString("100")) {
		t.Errorf("best bid = %s, want 100", snap.Bids[0].Price)
	}
	if !snap.Asks[0].Price.Equal(decimal.RequireFromString("101")) {
		t.Errorf("best ask = %s, want 101", snap.Asks[0].Price)
	}
	if !snap.Bids[2].Price.Equal(decimal.RequireFromString("98")) {
		t.Errorf("third bid = %s, want 98", snap.Bids[2].Price)
	}
	if !snap.Asks[2].Price.Equal(decimal.RequireFromString("103")) {
		t.Errorf("third ask = %s, want 103", snap.Asks[2].Price)
	}
}

func TestUpdateReplacementOfStaleOrders(t *testing.T) {
	b := New(3)
	b.snapshot.Bids = []Level{
		lvl(venue.Bitstamp, "100", "1"),
		lvl(venue.Bitstamp, "99", "2"),
		lvl(venue.Bitstamp, "98", "1.5"),
	}
	b.snapshot.Asks = []Level{
		lvl(venue.Bitstamp, "101", "1"),
		lvl(venue.Bitstamp, "102", "2"),
		lvl(venue.Bitstamp, "103", "1.5"),
	}

	b.Update(Orderbook{
		Venue:      venue.Bitstamp,
		ExchangeTS: 1234567890,
		Bids: []Level{
			lvl(venue.Bitstamp, "101", "1.5"),
			lvl(venue.Bitstamp, "99.5", "2.5"),
		},
		Asks: []Level{
			lvl(venue.Bitstamp, "100.5", "1.5"),
			lvl(venue.Bitstamp, "103", "1"),
		},
	})

	snap := b.Snapshot()
	if len(snap.Bids) != 2 || len(snap.Asks) != 2 {
		t.Fatalf("expected 2/2 levels, got %d/%d", len(snap.Bids), len(snap.Asks))
	}
	if !snap.Bids[0].Price.Equal(decimal.RequireFromString("101")) {
		t.Errorf("best bid = %s, want 101", snap.Bids[0].Price)
	}
	if !snap.Asks[0].Price.Equal(decimal.RequireFromString("100.5")) {
		t.Errorf("best ask = %s, want 100.5", snap.Asks[0].Price)
	}
	if !snap.Spread.Equal(decimal.RequireFromString("-0.5")) {
		t.Errorf("spread = %s, want -0.5", snap.Spread)
	}
}

func TestUpdateEmptyCombinedBook(t *testing.T) {
	b := New(10)
	b.Update(Orderbook{
		Venue:      venue.Binance,
		ExchangeTS: 1234567890,
		Bids: []Level{
			lvl(venue.Binance, "100", "1"),
			lvl(venue.Binance, "99", "2"),
			lvl(venue.Binance, "98", "1.5"),
		},
		Asks: []Level{
			lvl(venue.Binance, "101", "1"),
			lvl(venue.Binance, "102", "2"),
			lvl(venue.Binance, "103", "1.5"),
		},
	})

	snap := b.Snapshot()
	if len(snap.Bids) != 3 || len(snap.Asks) != 3 {
		t.Fatalf("expected 3/3 levels, got %d/%d", len(snap.Bids), len(snap.Asks))
	}
	if !snap.Spread.Equal(decimal.RequireFromString("1")) {
		t.Errorf("spread = %s, want 1", snap.Spread)
	}
}

func TestUpdateExistingCombinedBook(t *testing.T) {
	b := New(10)
	b.snapshot.Bids = []Level{
		lvl(venue.Bitstamp, "100", "1"),
		lvl(venue.Bitstamp, "99", "2"),
	}
	b.snapshot.Asks = []Level{
		lvl(venue.Bitstamp, "101", "1"),
		lvl(venue.Bitstamp, "102", "2"),
	}

	b.Update(Orderbook{
		Venue:      venue.Bitstamp,
		ExchangeTS: 1234567890,
		Bids: []Level{
			lvl(venue.Bitstamp, "101", "1.5"),
			lvl(venue.Bitstamp, "99.5", "2.5"),
		},
		Asks: []Level{
			lvl(venue.Bitstamp, "100.5", "1.5"),
			lvl(venue.Bitstamp, "103", "1"),
		},
	})

	snap := b.Snapshot()
	if !snap.Bids[0].Price.Equal(decimal.RequireFromString("101")) {
		t.Errorf("best bid = %s, want 101", snap.Bids[0].Price)
	}
	if !snap.Asks[0].Price.Equal(decimal.RequireFromString("100.5")) {
		t.Errorf("best ask = %s, want 100.5", snap.Asks[0].Price)
	}
	if !snap.Spread.Equal(decimal.RequireFromString("-0.5")) {
		t.Errorf("spread = %s, want -0.5", snap.Spread)
	}
}

func TestUpdateExistingMixedBook(t *testing.T) {
	b := New(10)
	b.snapshot.Bids = []Level{
		lvl(venue.Binance, "100", "1"),
		lvl(venue.Bitstamp, "100", "0.5"),
		lvl(venue.Binance, "99", "2"),
	}
	b.snapshot.Asks = []Level{
		lvl(venue.Bitstamp, "101", "1"),
		lvl(venue.Bitstamp, "102", "4"),
		lvl(venue.Binance, "102", "2"),
	}

	b.Update(Orderbook{
		Venue:      venue.Binance,
		ExchangeTS: 1234567890,
		Bids: []Level{
			lvl(venue.Binance, "100", "0.3"),
			lvl(venue.Binance, "99.5", "2.5"),
		},
		Asks: []Level{
			lvl(venue.Binance, "100.5", "1.5"),
			lvl(venue.Binance, "102", "5"),
		},
	})

	snap := b.Snapshot()
	if len(snap.Bids) != 3 {
		t.Fatalf("expected 3 bids, got %d", len(snap.Bids))
	}
	if len(snap.Asks) != 4 {
		t.Fatalf("expected 4 asks, got %d", len(snap.Asks))
	}

	if !snap.Bids[0].Price.Equal(decimal.RequireFromString("100")) || !snap.Bids[0].Amount.Equal(decimal.RequireFromString("0.5")) || snap.Bids[0].Venue != venue.Bitstamp {
		t.Errorf("bid[0] = %+v, want {Bitstamp 100 0.5}", snap.Bids[0])
	}
	if !snap.Asks[0].Price.Equal(decimal.RequireFromString("100.5")) || snap.Asks[0].Venue != venue.Binance {
		t.Errorf("ask[0] = %+v, want {Binance 100.5 1.5}", snap.Asks[0])
	}
	if !snap.Bids[1].Price.Equal(decimal.RequireFromString("100")) || !snap.Bids[1].Amount.Equal(decimal.RequireFromString("0.3")) || snap.Bids[1].Venue != venue.Binance {
		t.Errorf("bid[1] = %+v, want {Binance 100 0.3}", snap.Bids[1])
	}
	if !snap.Bids[2].Price.Equal(decimal.RequireFromString("99.5")) {
		t.Errorf("bid[2].Price = %s, want 99.5", snap.Bids[2].Price)
	}
	if !snap.Asks[2].Price.Equal(decimal.RequireFromString("102")) || !snap.Asks[2].Amount.Equal(decimal.RequireFromString("5")) || snap.Asks[2].Venue != venue.Binance {
		t.Errorf("ask[2] = %+v, want {Binance 102 5}", snap.Asks[2])
	}
	if !snap.Asks[3].Price.Equal(decimal.RequireFromString("102")) || !snap.Asks[3].Amount.Equal(decimal.RequireFromString("4")) || snap.Asks[3].Venue != venue.Bitstamp {
		t.Errorf("ask[3] = %+v, want {Bitstamp 102 4}", snap.Asks[3])
	}
	if !snap.Spread.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("spread = %s, want 0.5", snap.Spread)
	}
}

func TestUpdateNoBidsOrAsksLeavesSpreadZero(t *testing.T) {
	b := New(5)
	b.Update(Orderbook{Venue: venue.Binance, Asks: []Level{lvl(venue.Binance, "101", "1")}})

	snap := b.Snapshot()
	if len(snap.Bids) != 0 {
		t.Fatalf("expected no bids, got %d", len(snap.Bids))
	}
	if !snap.Spread.Equal(decimal.Zero) {
		t.Errorf("spread = %s, want 0", snap.Spread)
	}
}
