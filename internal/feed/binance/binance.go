// Package binance implements a feed.Adapter over Binance's partial
// depth stream.
package binance

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BullionBear/obagg/internal/book"
	"github.com/BullionBear/obagg/internal/feed"
	"github.com/BullionBear/obagg/internal/venue"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const baseURL = "wss://stream.binance.com:9443/ws/"

// depthEvent mirrors Binance's @depth20@1000ms partial-book payload.
type depthEvent struct {
	LastUpdateID uint64     `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

// Adapter streams Binance partial-book depth for one trading pair.
type Adapter struct {
	pair string
	log  zerolog.Logger

	conn    *websocket.Conn
	updates chan feed.Result
}

var _ feed.Adapter = (*Adapter)(nil)

// New creates a Binance adapter for the given lowercase trading pair
// (e.g. "ethbtc"). Initialise must be called before Updates() produces
// anything.
func New(pair string, log zerolog.Logger) *Adapter {
	return &Adapter{
		pair: pair,
		log:  log.With().Str("venue", venue.Binance.String()).Logger(),
	}
}

func (a *Adapter) Venue() venue.Tag { return venue.Binance }

func (a *Adapter) Initialise(ctx context.Context) error {
	url := baseURL + a.pair + "@depth20@1000ms"
	dialer := websocket.DefaultDialer
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return &feed.InitError{Venue: venue.Binance, Err: err}
	}
	a.conn = conn
	a.updates = make(chan feed.Result, 16)
	go a.readLoop(ctx)
	return nil
}

func (a *Adapter) Updates() <-chan feed.Result { return a.updates }

func (a *Adapter) readLoop(ctx context.Context) {
	defer close(a.updates)
	defer a.conn.Close()
	for {
		_, raw, err := a.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			a.send(feed.Result{Err: &feed.TransportError{Venue: venue.Binance, Err: err}})
			return
		}

		var evt depthEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			a.send(feed.Result{Err: &feed.ParsingError{Venue: venue.Binance, Err: err}})
			continue
		}

		ob, err := toOrderbook(evt)
		if err != nil {
			a.send(feed.Result{Err: err})
			continue
		}
		a.send(feed.Result{Orderbook: ob})
	}
}

func (a *Adapter) send(r feed.Result) {
	select {
	case a.updates <- r:
	default:
		a.log.Debug().Msg("update dropped: subscriber not keeping up")
	}
}

func toOrderbook(evt depthEvent) (book.Orderbook, error) {
	bids, err := toLevels(evt.Bids)
	if err != nil {
		return book.Orderbook{}, &feed.ConversionError{Venue: venue.Binance, Field: "bids", Err: err}
	}
	asks, err := toLevels(evt.Asks)
	if err != nil {
		return book.Orderbook{}, &feed.ConversionError{Venue: venue.Binance, Field: "asks", Err: err}
	}
	return book.Orderbook{
		Venue:      venue.Binance,
		ExchangeTS: evt.LastUpdateID,
		Bids:       bids,
		Asks:       asks,
	}, nil
}

func toLevels(raw [][]string) ([]book.Level, error) {
	if len(raw) > feed.MaxDepth {
		raw = raw[:feed.MaxDepth]
	}
	levels := make([]book.Level, 0, len(raw))
	for _, entry := range raw {
		if len(entry) != 2 {
			return nil, fmt.Errorf("expected [price, quantity] pair, got %d fields", len(entry))
		}
		price, err := decimal.NewFromString(entry[0])
		if err != nil {
			return nil, fmt.Errorf("price %q: %w", entry[0], err)
		}
		amount, err := decimal.NewFromString(entry[1])
		if err != nil {
			return nil, fmt.Errorf("quantity %q: %w", entry[1], err)
		}
		levels = append(levels, book.Level{Venue: venue.Binance, Price: price, Amount: amount})
	}
	return levels, nil
}
