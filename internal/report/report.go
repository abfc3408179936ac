// Package report carries per-tick account summaries to pluggable sinks.
// The driver builds one Row per participant per tick; where the rows go
// (CSV file, Postgres, console) is a sink concern.
package report

// Row is one participant's account summary at one tick.
type Row struct {
	ParticipantID      int
	Cash               float64
	AvailableCash      float64
	Inventory          int64
	AvailableInventory int64
	RealizedPnL        float64
	UnrealizedPnL      float64
	TotalPnL           float64
	MarketPrice        float64
}

// Sink receives every participant's Row once per tick, in participant
// enumeration order.
type Sink interface {
	WriteTick(timestamp int64, rows []Row) error
	Close() error
}
