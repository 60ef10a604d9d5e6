// Package processor drives one CombinedBook from a fixed set of venue
// adapters and broadcasts each resulting snapshot through a fanout.Hub.
package processor

import (
	"context"
	"fmt"
	"reflect"

	"github.com/BullionBear/obagg/internal/book"
	"github.com/BullionBear/obagg/internal/fanout"
	"github.com/BullionBear/obagg/internal/feed"
	"github.com/BullionBear/obagg/internal/mirror"
	"github.com/BullionBear/obagg/internal/venue"
	"github.com/rs/zerolog"
)

// Processor owns one CombinedBook exclusively: Update is only ever
// called from DriveAndBroadcast's goroutine.
type Processor struct {
	adapters  []feed.Adapter
	book      *book.CombinedBook
	hub       *fanout.Hub
	mirror    *mirror.Mirror // nil disables the supplemental NATS mirror
	log       zerolog.Logger
	rotations int // rotates the case order reflect.Select sees, for fairness
}

// New creates a Processor over the given adapters, bounded at
// maxOrders levels per side. mirror may be nil.
func New(adapters []feed.Adapter, maxOrders int, m *mirror.Mirror, log zerolog.Logger) *Processor {
	return &Processor{
		adapters: adapters,
		book:     book.New(maxOrders),
		hub:      fanout.NewHub(),
		mirror:   m,
		log:      log,
	}
}

// InitialiseExchanges calls Initialise on every adapter in order,
// stopping at the first failure (fatal at startup, per the error
// taxonomy — an adapter that never got to run its goroutine is safe to
// abandon).
func (p *Processor) InitialiseExchanges(ctx context.Context) error {
	for _, a := range p.adapters {
		if err := a.Initialise(ctx); err != nil {
			return fmt.Errorf("initialise %s: %w", a.Venue(), err)
		}
	}
	return nil
}

// Subscribe returns a new Subscriber that receives the latest snapshot
// broadcast by DriveAndBroadcast; a reader slower than the publisher
// skips intermediate snapshots.
func (p *Processor) Subscribe() *fanout.Subscriber {
	return p.hub.Subscribe()
}

// Hub exposes the underlying fanout.Hub for poll-style readers (the
// admin HTTP surface) that want the latest snapshot without
// registering a Subscriber.
func (p *Processor) Hub() *fanout.Hub {
	return p.hub
}

// DriveAndBroadcast multiplexes every adapter's Updates() channel with
// reflect.Select, applies each successfully-parsed Orderbook to the
// owned CombinedBook, and publishes the resulting snapshot. It returns
// when ctx is done or every adapter channel has closed.
func (p *Processor) DriveAndBroadcast(ctx context.Context) error {
	for {
		cases, venues := p.buildCases(ctx)
		if len(cases) == 1 { // only ctx.Done() left: every adapter closed
			return nil
		}

		chosen, value, ok := reflect.Select(cases)
		if chosen == 0 {
			return ctx.Err()
		}
		if !ok {
			// That adapter's channel closed; drop it and keep driving
			// the rest. Rotation index doesn't need adjustment since
			// buildCases rebuilds from p.adapters every iteration.
			p.removeAdapter(venues[chosen-1])
			continue
		}

		result := value.Interface().(feed.Result)
		if result.Err != nil {
			p.log.Warn().Err(result.Err).Msg("feed adapter reported an error")
			continue
		}

		p.book.Update(result.Orderbook)
		snap := p.book.Snapshot()
		p.hub.Publish(snap)
		if p.mirror != nil {
			p.mirror.Offer(snap)
		}
	}
}

// buildCases rebuilds the reflect.Select case list each call so a
// closed adapter can be dropped, and rotates the starting offset so no
// single venue's channel is always evaluated first when several are
// ready (fairness, since reflect.Select itself already picks uniformly
// among ready cases but a fixed case order still biases which channel
// is read first when the set is rebuilt after a close).
func (p *Processor) buildCases(ctx context.Context) ([]reflect.SelectCase, []venue.Tag) {
	n := len(p.adapters)
	cases := make([]reflect.SelectCase, 0, n+1)
	venues := make([]venue.Tag, 0, n)
	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})

	p.rotations = (p.rotations + 1) % max(n, 1)
	for i := 0; i < n; i++ {
		a := p.adapters[(p.rotations+i)%n]
		cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(a.Updates())})
		venues = append(venues, a.Venue())
	}
	return cases, venues
}

func (p *Processor) removeAdapter(v venue.Tag) {
	out := p.adapters[:0]
	for _, a := range p.adapters {
		if a.Venue() != v {
			out = append(out, a)
		}
	}
	p.adapters = out
}
