package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVSinkWritesRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.csv")
	sink, err := NewCSVSink(path)
	require.NoError(t, err)

	rows := []Row{
		{
			ParticipantID:      1,
			Cash:               9500,
			AvailableCash:      9300.5,
			Inventory:          5,
			AvailableInventory: 3,
			RealizedPnL:        40,
			UnrealizedPnL:      -2.5,
			TotalPnL:           37.5,
			MarketPrice:        101.25,
		},
		{ParticipantID: 2, Cash: 10000, AvailableCash: 10000, MarketPrice: 101.25},
	}
	require.NoError(t, sink.WriteTick(0, rows))
	require.NoError(t, sink.WriteTick(1, rows[:1]))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "timestamp,participant_id,cash,available_cash,inventory,available_inventory,realized_pnl,unrealized_pnl,total_pnl,market_price", lines[0])
	assert.Equal(t, "0,1,9500,9300.5,5,3,40,-2.5,37.5,101.25", lines[1])
	assert.Equal(t, "0,2,10000,10000,0,0,0,0,0,101.25", lines[2])
	assert.True(t, strings.HasPrefix(lines[3], "1,1,"))
}

func TestCSVSinkEmptyTick(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	sink, err := NewCSVSink(path)
	require.NoError(t, err)
	require.NoError(t, sink.WriteTick(0, nil))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, csvHeader, string(data))
}

func TestLogSink(t *testing.T) {
	sink := NewLogSink()
	assert.NoError(t, sink.WriteTick(0, []Row{{ParticipantID: 1}}))
	assert.NoError(t, sink.Close())
}
