// Package tape persists the simulation's fill stream as an append-only
// binary log, one fixed-size checksummed record per fill. Replaying the
// tape through fresh ledgers reproduces every account, which is how runs
// are verified after the fact.
package tape

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"math"

	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/book"
)

const (
	recordVersion uint16 = 1
	recordSize           = 48
	bodySize             = recordSize - 4 // crc excluded
)

const (
	flagSell uint16 = 1 << iota
	flagReservation
	flagCancellation
	flagMaker
)

var (
	recordMagic = [4]byte{'T', 'A', 'P', '1'}
	crcTable    = crc32.MakeTable(crc32.Castagnoli)
)

var (
	ErrInvalidMagic       = errors.New("tape: invalid magic")
	ErrUnsupportedVersion = errors.New("tape: unsupported record version")
	ErrChecksumMismatch   = errors.New("tape: checksum mismatch")
	ErrTruncatedRecord    = errors.New("tape: truncated record")
)

// Record is one fill with its position in the tape.
type Record struct {
	Seq  uint64
	Fill book.Fill
}

func encodeRecord(dst []byte, seq uint64, f book.Fill) {
	_ = dst[recordSize-1]
	copy(dst[0:4], recordMagic[:])
	binary.LittleEndian.PutUint16(dst[4:6], recordVersion)
	binary.LittleEndian.PutUint16(dst[6:8], encodeFlags(f))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(f.ParticipantID))
	binary.LittleEndian.PutUint64(dst[12:20], uint64(f.Quantity))
	binary.LittleEndian.PutUint64(dst[20:28], math.Float64bits(f.Price))
	binary.LittleEndian.PutUint64(dst[28:36], uint64(f.Timestamp))
	binary.LittleEndian.PutUint64(dst[36:44], seq)
	binary.LittleEndian.PutUint32(dst[44:48], crc32.Checksum(dst[:bodySize], crcTable))
}

func decodeRecord(src []byte) (Record, error) {
	if len(src) < recordSize {
		return Record{}, ErrTruncatedRecord
	}
	if [4]byte(src[0:4]) != recordMagic {
		return Record{}, ErrInvalidMagic
	}
	if binary.LittleEndian.Uint16(src[4:6]) != recordVersion {
		return Record{}, ErrUnsupportedVersion
	}
	if binary.LittleEndian.Uint32(src[44:48]) != crc32.Checksum(src[:bodySize], crcTable) {
		return Record{}, ErrChecksumMismatch
	}

	flags := binary.LittleEndian.Uint16(src[6:8])
	f := book.Fill{
		ParticipantID: int(binary.LittleEndian.Uint32(src[8:12])),
		Quantity:      int64(binary.LittleEndian.Uint64(src[12:20])),
		Price:         math.Float64frombits(binary.LittleEndian.Uint64(src[20:28])),
		Timestamp:     int64(binary.LittleEndian.Uint64(src[28:36])),
		Side:          book.Buy,
		Reservation:   flags&flagReservation != 0,
		Cancellation:  flags&flagCancellation != 0,
		Maker:         flags&flagMaker != 0,
	}
	if flags&flagSell != 0 {
		f.Side = book.Sell
	}
	return Record{
		Seq:  binary.LittleEndian.Uint64(src[36:44]),
		Fill: f,
	}, nil
}

func encodeFlags(f book.Fill) uint16 {
	var flags uint16
	if f.Side == book.Sell {
		flags |= flagSell
	}
	if f.Reservation {
		flags |= flagReservation
	}
	if f.Cancellation {
		flags |= flagCancellation
	}
	if f.Maker {
		flags |= flagMaker
	}
	return flags
}
