// Package mirror publishes a best-effort copy of every CombinedBook
// snapshot onto a NATS subject, for consumers that would rather tail a
// subject than hold open a gRPC stream. It is purely additive: nothing
// here can block or alter the core drive loop or the gRPC contract.
package mirror

import (
	"encoding/json"

	"github.com/BullionBear/obagg/internal/book"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// wireSnapshot is the JSON shape published to the mirror subject.
type wireSnapshot struct {
	Spread decimal.Decimal `json:"spread"`
	Bids   []wireLevel     `json:"bids"`
	Asks   []wireLevel     `json:"asks"`
}

type wireLevel struct {
	Venue  string          `json:"venue"`
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
}

// Mirror owns a NATS connection and publishes snapshots to one
// subject on a bounded, drop-oldest-on-full queue so a stalled broker
// never slows the caller.
type Mirror struct {
	conn    *nats.Conn
	subject string
	log     zerolog.Logger
	queue   chan book.Snapshot
	done    chan struct{}
}

// Connect dials url and returns a Mirror publishing to subject. A
// connection failure is logged and returns a nil *Mirror, never an
// error — the mirror is never fatal to the core pipeline.
func Connect(url, subject string, log zerolog.Logger) *Mirror {
	conn, err := nats.Connect(url)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("snapshot mirror disabled: could not connect to NATS")
		return nil
	}
	m := &Mirror{
		conn:    conn,
		subject: subject,
		log:     log,
		queue:   make(chan book.Snapshot, 64),
		done:    make(chan struct{}),
	}
	go m.run()
	return m
}

// Offer enqueues snap for publication. If the queue is full the
// oldest pending snapshot is dropped to make room — staleness is
// preferable to blocking the drive loop.
func (m *Mirror) Offer(snap book.Snapshot) {
	select {
	case m.queue <- snap:
	default:
		select {
		case <-m.queue:
		default:
		}
		select {
		case m.queue <- snap:
		default:
		}
	}
}

func (m *Mirror) run() {
	defer close(m.done)
	for snap := range m.queue {
		payload, err := json.Marshal(toWire(snap))
		if err != nil {
			m.log.Debug().Err(err).Msg("snapshot mirror: marshal failed")
			continue
		}
		if err := m.conn.Publish(m.subject, payload); err != nil {
			m.log.Debug().Err(err).Msg("snapshot mirror: publish failed")
		}
	}
}

// Close stops accepting snapshots and drains the underlying
// connection. Safe to call once during shutdown.
func (m *Mirror) Close() {
	close(m.queue)
	<-m.done
	m.conn.Close()
}

func toWire(snap book.Snapshot) wireSnapshot {
	bids := make([]wireLevel, len(snap.Bids))
	for i, l := range snap.Bids {
		bids[i] = wireLevel{Venue: l.Venue.String(), Price: l.Price, Amount: l.Amount}
	}
	asks := make([]wireLevel, len(snap.Asks))
	for i, l := range snap.Asks {
		asks[i] = wireLevel{Venue: l.Venue.String(), Price: l.Price, Amount: l.Amount}
	}
	return wireSnapshot{Spread: snap.Spread, Bids: bids, Asks: asks}
}
