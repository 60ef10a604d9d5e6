// Package feed defines the venue depth-feed adapter contract shared by
// internal/feed/binance and internal/feed/bitstamp.
package feed

import (
	"context"
	"fmt"

	"github.com/BullionBear/obagg/internal/book"
	"github.com/BullionBear/obagg/internal/venue"
)

// Adapter streams depth-of-book updates for one venue. Initialise must
// be idempotent on failure: if it returns an error, no goroutine
// feeding Updates() has been started, so the caller can retry or give
// up without leaking a socket.
type Adapter interface {
	Venue() venue.Tag
	Initialise(ctx context.Context) error
	Updates() <-chan Result
}

// Result is one item of an adapter's update sequence: either a parsed
// Orderbook or a non-fatal error describing why one particular message
// could not be turned into one. The channel itself closes when the
// underlying transport closes; it never sends after that.
type Result struct {
	Orderbook book.Orderbook
	Err       error
}

// TransportError wraps a failure reading from or writing to the
// underlying connection (socket reset, read timeout). Failures while
// connecting or subscribing are reported as InitError instead.
type TransportError struct {
	Venue venue.Tag
	Err   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Venue, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError wraps a message that did not match the venue's
// documented wire shape (e.g. an unexpected event/channel field).
type ProtocolError struct {
	Venue   venue.Tag
	Message string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s: protocol error: %s", e.Venue, e.Message)
}

// ParsingError wraps a JSON decode failure on an otherwise well-formed
// transport frame.
type ParsingError struct {
	Venue venue.Tag
	Err   error
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("%s: parsing error: %v", e.Venue, e.Err)
}

func (e *ParsingError) Unwrap() error { return e.Err }

// ConversionError wraps a failure turning a successfully-parsed
// message into book.Orderbook (typically a non-numeric price/amount
// string).
type ConversionError struct {
	Venue venue.Tag
	Field string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: conversion error on %s: %v", e.Venue, e.Field, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// InitError wraps a fatal failure during Initialise (connect or
// subscribe handshake failed). It is always returned from Initialise,
// never sent on the Updates() channel.
type InitError struct {
	Venue venue.Tag
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("%s: init error: %v", e.Venue, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// MaxDepth is the number of levels per side every adapter trims its
// venue's raw update to before it reaches CombinedBook. Both upstream
// feeds carry more levels than this (Binance's @depth20 stream,
// Bitstamp's full order_book channel), so the cut is made client-side.
const MaxDepth = 10
