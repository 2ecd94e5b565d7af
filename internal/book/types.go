// Package book implements a single-instrument, price/time-priority limit
// order book matching engine. Each side of the book is backed by a
// art.Tree keyed on price, so price levels stay ordered without a
// separate sort step; everything above that — buckets, the order index,
// best-price cursors, and the matching core itself — is plain Go.
package book

import (
	"fmt"

	"github.com/google/uuid"
)

// Price is an unsigned tick-unit price. Ordering is unsigned numeric;
// there is no floating-point price anywhere in the engine.
type Price = uint64

// OrderId uniquely identifies an order across the book's lifetime.
type OrderId = uint64

// Side distinguishes resting/incoming order direction.
type Side uint8

const (
	Ask Side = iota
	Bid
)

func (s Side) String() string {
	switch s {
	case Ask:
		return "ASK"
	case Bid:
		return "BID"
	default:
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
}

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

// OrderCommand is the engine's only input type (spec.md §6). The caller
// assigns id, timestamp, and symbol; the engine records but never
// interprets timestamp or symbol.
type OrderCommand struct {
	ID        OrderId
	Side      Side
	Price     Price
	Size      uint64
	UID       uint64
	Timestamp uint64
	Symbol    uint32
}

// RejectReason enumerates the only two recoverable rejections the core
// can emit (spec.md §7). Everything else is a fatal contract violation.
type RejectReason uint8

const (
	DuplicateId RejectReason = iota
	InvalidSize
)

func (r RejectReason) String() string {
	switch r {
	case DuplicateId:
		return "DuplicateId"
	case InvalidSize:
		return "InvalidSize"
	default:
		return fmt.Sprintf("RejectReason(%d)", uint8(r))
	}
}

// Trade is emitted once per maker touched while filling an incoming
// order. TradeID has no durable meaning across restarts — persistence is
// out of scope — so it is a fresh UUIDv4 rather than a counter the
// teacher's chain-backed engine could afford to persist.
type Trade struct {
	TradeID   string
	MakerID   OrderId
	TakerID   OrderId
	Price     Price
	Size      uint64
	TakerSide Side
	Timestamp uint64
}

func newTradeID() string {
	return uuid.NewString()
}

// Reject is emitted instead of any Trade events when a command cannot be
// admitted; the book is left unchanged.
type Reject struct {
	ID     OrderId
	Reason RejectReason
}

// PriceLevel is a read-only snapshot of one resting price, returned by
// BestBid/BestAsk.
type PriceLevel struct {
	Price  Price
	Volume uint64
}
