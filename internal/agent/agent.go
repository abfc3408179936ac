// Package agent defines the participant capability consumed by the
// simulation driver and the built-in strategies. The driver only depends
// on the Agent interface; concrete strategies are pluggable.
package agent

import "github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/book"

// Agent is one market participant. Act may call SubmitLimit, SubmitMarket,
// and Cancel on the book zero or more times. OnFill is invoked by the
// driver once per fill addressed to this participant, after the tick's
// matching is complete; strategies must not apply fills to any account
// state themselves, the driver routes every fill to the owner's ledger
// exactly once.
type Agent interface {
	ID() int
	Act(b *book.OrderBook, timestamp int64)
	OnFill(f book.Fill)
}
