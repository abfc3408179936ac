package tape

import (
	"bufio"
	"io"
	"os"

	"github.com/yanun0323/errors"

	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/ledger"
)

// Reader iterates tape records in append order.
type Reader struct {
	f   *os.File
	r   *bufio.Reader
	buf [recordSize]byte
}

func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open tape file")
	}
	return &Reader{f: f, r: bufio.NewReader(f)}, nil
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	if _, err := io.ReadFull(r.r, r.buf[:]); err != nil {
		if err == io.EOF {
			return Record{}, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return Record{}, ErrTruncatedRecord
		}
		return Record{}, errors.Wrap(err, "read tape record")
	}
	return decodeRecord(r.buf[:])
}

func (r *Reader) Close() error {
	return errors.Wrap(r.f.Close(), "close tape reader")
}

// Replay streams every record of a tape file through fn in order.
func Replay(path string, fn func(Record) error) error {
	r, err := NewReader(path)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	for {
		rec, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// Rebuild replays a tape into fresh ledgers, one per participant seen on
// the tape. Rebuilt accounts start flat, so they match the live ledgers
// of the run that produced the tape up to initial deposits.
func Rebuild(path string) (map[int]*ledger.Ledger, error) {
	ledgers := make(map[int]*ledger.Ledger)
	err := Replay(path, func(rec Record) error {
		led, ok := ledgers[rec.Fill.ParticipantID]
		if !ok {
			led = ledger.New(rec.Fill.ParticipantID)
			ledgers[rec.Fill.ParticipantID] = led
		}
		led.ApplyFill(rec.Fill)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ledgers, nil
}
