package processor

import (
	"context"
	"testing"
	"time"

	"github.com/BullionBear/obagg/internal/book"
	"github.com/BullionBear/obagg/internal/feed"
	"github.com/BullionBear/obagg/internal/venue"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// fakeAdapter is a feed.Adapter driven entirely by test code, standing
// in for a real venue connection.
type fakeAdapter struct {
	v  venue.Tag
	ch chan feed.Result
}

func newFakeAdapter(v venue.Tag) *fakeAdapter {
	return &fakeAdapter{v: v, ch: make(chan feed.Result, 4)}
}

func (f *fakeAdapter) Venue() venue.Tag                 { return f.v }
func (f *fakeAdapter) Initialise(ctx context.Context) error { return nil }
func (f *fakeAdapter) Updates() <-chan feed.Result      { return f.ch }

func lvl(v venue.Tag, price string) book.Level {
	return book.Level{Venue: v, Price: decimal.RequireFromString(price), Amount: decimal.RequireFromString("1")}
}

func TestDriveAndBroadcastAppliesUpdatesAndPublishes(t *testing.T) {
	binance := newFakeAdapter(venue.Binance)
	bitstamp := newFakeAdapter(venue.Bitstamp)
	p := New([]feed.Adapter{binance, bitstamp}, 5, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := p.Subscribe()
	errCh := make(chan error, 1)
	go func() { errCh <- p.DriveAndBroadcast(ctx) }()

	binance.ch <- feed.Result{Orderbook: book.Orderbook{
		Venue: venue.Binance,
		Bids:  []book.Level{lvl(venue.Binance, "100")},
		Asks:  []book.Level{lvl(venue.Binance, "101")},
	}}

	snap, err := sub.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(snap.Bids) != 1 || !snap.Bids[0].Price.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("unexpected snapshot bids: %+v", snap.Bids)
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(time.Second):
		t.Fatal("DriveAndBroadcast did not return after cancellation")
	}
}

func TestDriveAndBroadcastSkipsErrorResults(t *testing.T) {
	binance := newFakeAdapter(venue.Binance)
	p := New([]feed.Adapter{binance}, 5, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := p.Subscribe()
	go p.DriveAndBroadcast(ctx)

	binance.ch <- feed.Result{Err: &feed.ParsingError{Venue: venue.Binance}}
	binance.ch <- feed.Result{Orderbook: book.Orderbook{
		Venue: venue.Binance,
		Bids:  []book.Level{lvl(venue.Binance, "50")},
	}}

	snap, err := sub.Receive(context.Background())
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(snap.Bids) != 1 || !snap.Bids[0].Price.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected the error result to be skipped, got %+v", snap.Bids)
	}
}
