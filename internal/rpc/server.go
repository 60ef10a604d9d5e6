// Package rpc implements the OrderbookAggregator gRPC service over a
// processor.Processor's fanout.Hub.
package rpc

import (
	"github.com/BullionBear/obagg/internal/book"
	"github.com/BullionBear/obagg/internal/fanout"
	"github.com/BullionBear/obagg/internal/rpc/orderbookpb"
	"github.com/rs/zerolog"
)

// Subscribable is satisfied by *processor.Processor.
type Subscribable interface {
	Subscribe() *fanout.Subscriber
}

// Server implements orderbookpb.OrderbookAggregatorServer. Each client
// stream acquires its own fanout.Subscriber on connect and lets it go
// out of scope on disconnect, per the spec's fan-out contract — a
// subscriber that stops reading never blocks the publisher.
type Server struct {
	orderbookpb.UnimplementedOrderbookAggregatorServer
	proc Subscribable
	log  zerolog.Logger
}

// NewServer builds a Server whose BookSummary implementation pulls
// from a fresh Processor subscription for every client connection.
func NewServer(proc Subscribable, log zerolog.Logger) *Server {
	return &Server{proc: proc, log: log}
}

// BookSummary streams a Summary every time the processor publishes a
// new CombinedBook snapshot, until the client disconnects.
func (s *Server) BookSummary(_ *orderbookpb.Empty, stream orderbookpb.OrderbookAggregator_BookSummaryServer) error {
	sub := s.proc.Subscribe()
	ctx := stream.Context()
	s.log.Debug().Str("subscriber", sub.ID().String()).Msg("book summary subscriber connected")
	defer s.log.Debug().Str("subscriber", sub.ID().String()).Msg("book summary subscriber disconnected")

	for {
		snap, err := sub.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := stream.Send(toSummary(snap)); err != nil {
			return err
		}
	}
}

func toSummary(snap book.Snapshot) *orderbookpb.Summary {
	bids := make([]*orderbookpb.Level, len(snap.Bids))
	for i, l := range snap.Bids {
		bids[i] = &orderbookpb.Level{Exchange: l.Venue.String(), Price: l.Price.InexactFloat64(), Amount: l.Amount.InexactFloat64()}
	}
	asks := make([]*orderbookpb.Level, len(snap.Asks))
	for i, l := range snap.Asks {
		asks[i] = &orderbookpb.Level{Exchange: l.Venue.String(), Price: l.Price.InexactFloat64(), Amount: l.Amount.InexactFloat64()}
	}
	spread, _ := snap.Spread.Float64()
	return &orderbookpb.Summary{Spread: spread, Bids: bids, Asks: asks}
}
