// Package bitstamp implements a feed.Adapter over Bitstamp's live
// order book WebSocket channel.
package bitstamp

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

const wsURL = "wss://ws.bitstamp.net/"

type subscribeMessage struct {
	Event string       `json:"event"`
	Data  channelField `json:"data"`
}

type channelField struct {
	Channel string `json:"channel"`
}

// orderbookEvent mirrors Bitstamp's "order_book_<pair>" channel frame.
type orderbookEvent struct {
	Event   string         `json:"event"`
	Channel string         `json:"channel"`
	Data    orderbookFrame `json:"data"`
}

type orderbookFrame struct {
	Microtimestamp string     `json:"microtimestamp"`
	Bids           [][]string `json:"bids"`
	Asks           [][]string `json:"asks"`
}

// Adapter streams Bitstamp live order book depth for one trading pair.
type Adapter struct {
	pair string
	log  zerolog.Logger

	conn    *websocket.Conn
	updates chan feed.Result
}

var _ feed.Adapter = (*Adapter)(nil)

// New creates a Bitstamp adapter for the given lowercase trading pair
// (e.g. "ethbtc").
func New(pair string, log zerolog.Logger) *Adapter {
	return &Adapter{
		pair: pair,
		log:  log.With().Str("venue", venue.Bitstamp.String()).Logger(),
	}
}

func (a *Adapter) Venue() venue.Tag { return venue.Bitstamp }

func (a *Adapter) Initialise(ctx context.Context) error {
	dialer := websocket.DefaultDialer
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return &feed.InitError{Venue: venue.Bitstamp, Err: err}
	}

	sub := subscribeMessage{
		Event: "bts:subscribe",
		Data:  channelField{Channel: "order_book_" + a.pair},
	}
	if err := conn.WriteJSON(sub); err != nil {
		conn.Close()
		return &feed.InitError{Venue: venue.Bitstamp, Err: err}
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
			a.send(feed.Result{Err: &feed.TransportError{Venue: venue.Bitstamp, Err: err}})
			return
		}

		var evt orderbookEvent
		if err := json.Unmarshal(raw, &evt); err != nil {
			a.send(feed.Result{Err: &feed.ParsingError{Venue: venue.Bitstamp, Err: err}})
			continue
		}
		// Subscription acks and heartbeats carry no book data; skip them.
		if evt.Event != "data" {
			continue
		}

		ob, err := toOrderbook(evt.Data)
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

func toOrderbook(frame orderbookFrame) (book.Orderbook, error) {
	var ts uint64
	if frame.Microtimestamp != "" {
		if _, err := fmt.Sscanf(frame.Microtimestamp, "%d", &ts); err != nil {
			return book.Orderbook{}, &feed.ConversionError{Venue: venue.Bitstamp, Field: "microtimestamp", Err: err}
		}
	}

	bids, err := toLevels(frame.Bids)
	if err != nil {
		return book.Orderbook{}, &feed.ConversionError{Venue: venue.Bitstamp, Field: "bids", Err: err}
	}
	asks, err := toLevels(frame.Asks)
	if err != nil {
		return book.Orderbook{}, &feed.ConversionError{Venue: venue.Bitstamp, Field: "asks", Err: err}
	}
	return book.Orderbook{
		Venue:      venue.Bitstamp,
		ExchangeTS: ts,
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
		levels = append(levels, book.Level{Venue: venue.Bitstamp, Price: price, Amount: amount})
	}
	return levels, nil
}
