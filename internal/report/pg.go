package report

import (
	"github.com/yanun0323/errors"

	"github.com/thewhitelisted/Agent-Based-Market-Simulator/pkg/conn"
)

// TickRow is the persisted form of a Row.
type TickRow struct {
	ID                 uint64  `gorm:"primaryKey;autoIncrement"`
	Timestamp          int64   `gorm:"index"`
	ParticipantID      int     `gorm:"index"`
	Cash               float64
	AvailableCash      float64
	Inventory          int64
	AvailableInventory int64
	RealizedPnL        float64
	UnrealizedPnL      float64
	TotalPnL           float64
	MarketPrice        float64
}

func (TickRow) TableName() string { return "simulation_ticks" }

// PostgresSink batches each tick's rows into Postgres.
type PostgresSink struct {
	client *conn.Client
}

// NewPostgresSink migrates the tick table and returns a ready sink.
func NewPostgresSink(client *conn.Client) (*PostgresSink, error) {
	if client == nil || client.DB() == nil {
		return nil, errors.New("nil postgres client")
	}
	if err := client.DB().AutoMigrate(&TickRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate tick table")
	}
	return &PostgresSink{client: client}, nil
}

func (s *PostgresSink) WriteTick(timestamp int64, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	records := make([]TickRow, 0, len(rows))
	for _, row := range rows {
		records = append(records, TickRow{
			Timestamp:          timestamp,
			ParticipantID:      row.ParticipantID,
			Cash:               row.Cash,
			AvailableCash:      row.AvailableCash,
			Inventory:          row.Inventory,
			AvailableInventory: row.AvailableInventory,
			RealizedPnL:        row.RealizedPnL,
			UnrealizedPnL:      row.UnrealizedPnL,
			TotalPnL:           row.TotalPnL,
			MarketPrice:        row.MarketPrice,
		})
	}
	return errors.Wrap(s.client.DB().Create(&records).Error, "insert tick rows")
}

func (s *PostgresSink) Close() error {
	return errors.Wrap(s.client.Close(), "close postgres sink")
}
