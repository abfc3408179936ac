// Package sim drives the simulation: one tick lets every agent act on the
// book, then routes the tick's fills to the owning ledgers and agents,
// clears the fill buffer, and reports each account to the configured
// sinks. Everything runs on the calling goroutine; the book and ledgers
// rely on that serialization.
package sim

import (
	"context"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/agent"
	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/book"
	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/ledger"
	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/report"
	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/tape"
)

// Config tunes the driver.
type Config struct {
	// StartingCash is deposited into every participant's ledger on
	// registration.
	StartingCash float64
	// Quiet suppresses the per-tick progress log.
	Quiet bool
}

// Simulator owns the book, the agents, and one ledger per agent.
type Simulator struct {
	cfg     Config
	book    *book.OrderBook
	agents  []agent.Agent
	byID    map[int]agent.Agent
	ledgers map[int]*ledger.Ledger
	sinks   []report.Sink
	tape    *tape.Writer

	timestamp int64
}

func New(cfg Config) *Simulator {
	return &Simulator{
		cfg:     cfg,
		book:    book.NewOrderBook(),
		byID:    make(map[int]agent.Agent),
		ledgers: make(map[int]*ledger.Ledger),
	}
}

// Book exposes the order book, e.g. for inspection after a run.
func (s *Simulator) Book() *book.OrderBook { return s.book }

// Ledger returns the ledger owned by the given participant.
func (s *Simulator) Ledger(participantID int) (*ledger.Ledger, bool) {
	led, ok := s.ledgers[participantID]
	return led, ok
}

// AddAgent registers an agent and opens its ledger. Agents act in
// registration order every tick. Duplicate ids are rejected.
func (s *Simulator) AddAgent(a agent.Agent) error {
	if a == nil || a.ID() <= 0 {
		return errors.New("invalid agent id")
	}
	if _, ok := s.byID[a.ID()]; ok {
		return errors.Errorf("duplicate agent id %d", a.ID())
	}
	led := ledger.New(a.ID())
	led.Deposit(s.cfg.StartingCash)
	s.agents = append(s.agents, a)
	s.byID[a.ID()] = a
	s.ledgers[a.ID()] = led
	return nil
}

// AddSink attaches a reporting sink. Sinks receive every tick and are
// closed by Close.
func (s *Simulator) AddSink(sink report.Sink) {
	if sink != nil {
		s.sinks = append(s.sinks, sink)
	}
}

// SetTape attaches a fill tape. Every routed fill is appended in routing
// order.
func (s *Simulator) SetTape(w *tape.Writer) { s.tape = w }

// Step runs one tick: agents act in fixed order, fills drain to ledgers
// and agents in generation order, the buffer clears, and sinks receive
// the tick's rows.
func (s *Simulator) Step() error {
	ts := s.timestamp
	for _, a := range s.agents {
		a.Act(s.book, ts)
	}

	fills := s.book.Fills()
	for _, f := range fills {
		if led, ok := s.ledgers[f.ParticipantID]; ok {
			led.ApplyFill(f)
		}
		if s.tape != nil {
			if err := s.tape.Append(f); err != nil {
				return err
			}
		}
	}
	for _, f := range fills {
		if a, ok := s.byID[f.ParticipantID]; ok {
			a.OnFill(f)
		}
	}
	s.book.ClearFills()

	if err := s.report(ts); err != nil {
		return err
	}
	s.timestamp++
	return nil
}

// Run executes the given number of ticks, stopping early when the context
// is cancelled.
func (s *Simulator) Run(ctx context.Context, steps int) error {
	if steps <= 0 {
		return errors.New("steps must be > 0")
	}
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			logs.Warnf("simulation interrupted at tick %d", s.timestamp)
			return err
		}
		if err := s.Step(); err != nil {
			return err
		}
		if !s.cfg.Quiet {
			logs.Infof("tick %d done, mid=%.2f, resting=%d", s.timestamp-1, s.book.MidPrice(), s.book.Len())
		}
	}
	return nil
}

// Close flushes the tape and closes every sink.
func (s *Simulator) Close() error {
	var firstErr error
	if s.tape != nil {
		if err := s.tape.Close(); err != nil {
			firstErr = err
		}
	}
	for _, sink := range s.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Rows builds the current report rows in agent registration order.
func (s *Simulator) Rows() []report.Row {
	mark := s.book.MidPrice()
	rows := make([]report.Row, 0, len(s.agents))
	for _, a := range s.agents {
		led := s.ledgers[a.ID()]
		unrealized := led.UnrealizedPnL(mark)
		rows = append(rows, report.Row{
			ParticipantID:      a.ID(),
			Cash:               led.Cash(),
			AvailableCash:      led.AvailableCash(),
			Inventory:          led.Inventory(),
			AvailableInventory: led.AvailableInventory(),
			RealizedPnL:        led.RealizedPnL(),
			UnrealizedPnL:      unrealized,
			TotalPnL:           led.RealizedPnL() + unrealized,
			MarketPrice:        mark,
		})
	}
	return rows
}

func (s *Simulator) report(ts int64) error {
	if len(s.sinks) == 0 {
		return nil
	}
	rows := s.Rows()
	for _, sink := range s.sinks {
		if err := sink.WriteTick(ts, rows); err != nil {
			return errors.Wrap(err, "report tick")
		}
	}
	return nil
}
