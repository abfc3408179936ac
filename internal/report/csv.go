package report

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yanun0323/errors"
)

const csvHeader = "timestamp,participant_id,cash,available_cash,inventory,available_inventory,realized_pnl,unrealized_pnl,total_pnl,market_price\n"

// CSVSink appends one row per participant per tick to a CSV file.
type CSVSink struct {
	f *os.File
	w *bufio.Writer
}

// NewCSVSink creates the target directory if needed, truncates the file,
// and writes the header line.
func NewCSVSink(path string) (*CSVSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create report directory")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "create report file")
	}
	w := bufio.NewWriter(f)
	if _, err := w.WriteString(csvHeader); err != nil {
		_ = f.Close()
		return nil, errors.Wrap(err, "write report header")
	}
	return &CSVSink{f: f, w: w}, nil
}

func (s *CSVSink) WriteTick(timestamp int64, rows []Row) error {
	buf := make([]byte, 0, 128)
	for _, row := range rows {
		buf = buf[:0]
		buf = strconv.AppendInt(buf, timestamp, 10)
		buf = append(buf, ',')
		buf = strconv.AppendInt(buf, int64(row.ParticipantID), 10)
		buf = append(buf, ',')
		buf = appendFloat(buf, row.Cash)
		buf = append(buf, ',')
		buf = appendFloat(buf, row.AvailableCash)
		buf = append(buf, ',')
		buf = strconv.AppendInt(buf, row.Inventory, 10)
		buf = append(buf, ',')
		buf = strconv.AppendInt(buf, row.AvailableInventory, 10)
		buf = append(buf, ',')
		buf = appendFloat(buf, row.RealizedPnL)
		buf = append(buf, ',')
		buf = appendFloat(buf, row.UnrealizedPnL)
		buf = append(buf, ',')
		buf = appendFloat(buf, row.TotalPnL)
		buf = append(buf, ',')
		buf = appendFloat(buf, row.MarketPrice)
		buf = append(buf, '\n')
		if _, err := s.w.Write(buf); err != nil {
			return errors.Wrap(err, "write report row")
		}
	}
	return nil
}

// Close flushes buffered rows and closes the file.
func (s *CSVSink) Close() error {
	if err := s.w.Flush(); err != nil {
		_ = s.f.Close()
		return errors.Wrap(err, "flush report")
	}
	return errors.Wrap(s.f.Close(), "close report")
}

func appendFloat(buf []byte, v float64) []byte {
	return strconv.AppendFloat(buf, v, 'f', -1, 64)
}
