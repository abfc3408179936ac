package report

import "github.com/yanun0323/logs"

// LogSink prints each participant's summary through the structured logger.
type LogSink struct{}

func NewLogSink() *LogSink { return &LogSink{} }

func (*LogSink) WriteTick(timestamp int64, rows []Row) error {
	for _, row := range rows {
		logs.Infof(
			"tick %d participant %d cash=%.2f avail=%.2f inv=%d availInv=%d realized=%.2f unrealized=%.2f total=%.2f mark=%.2f",
			timestamp,
			row.ParticipantID,
			row.Cash,
			row.AvailableCash,
			row.Inventory,
			row.AvailableInventory,
			row.RealizedPnL,
			row.UnrealizedPnL,
			row.TotalPnL,
			row.MarketPrice,
		)
	}
	return nil
}

func (*LogSink) Close() error { return nil }
