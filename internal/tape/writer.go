package tape

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/yanun0323/errors"

	"github.com/thewhitelisted/Agent-Based-Market-Simulator/internal/book"
)

// Writer appends fill records to a single tape file. It is driven by the
// simulation thread and does no buffering beyond bufio, so Close (or
// Flush) makes everything written so far durable in file order.
type Writer struct {
	f      *os.File
	w      *bufio.Writer
	seq    uint64
	buf    [recordSize]byte
	closed bool
}

// NewWriter creates the tape directory if needed and truncates the file.
func NewWriter(path string) (*Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create tape directory")
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "create tape file")
	}
	return &Writer{f: f, w: bufio.NewWriter(f)}, nil
}

// Append writes one fill record. Records receive sequence numbers in
// append order starting from one.
func (w *Writer) Append(f book.Fill) error {
	if w.closed {
		return errors.New("tape writer closed")
	}
	w.seq++
	encodeRecord(w.buf[:], w.seq, f)
	_, err := w.w.Write(w.buf[:])
	return errors.Wrap(err, "append tape record")
}

// Seq returns the sequence number of the last appended record.
func (w *Writer) Seq() uint64 { return w.seq }

// Flush pushes buffered records to the file.
func (w *Writer) Flush() error {
	return errors.Wrap(w.w.Flush(), "flush tape")
}

// Close flushes and closes the tape file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.w.Flush(); err != nil {
		_ = w.f.Close()
		return errors.Wrap(err, "flush tape")
	}
	return errors.Wrap(w.f.Close(), "close tape")
}
