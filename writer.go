package streamcsv

import (
	"io"
	"log/slog"
)

// Writer writes records as delimited text.
//
// Each call to Write encodes one record into an internal buffer and hands it
// to the underlying io.Writer in a single Write call, so at most one record
// is held back. Flush forwards to the destination's own Flush method when it
// has one (a *bufio.Writer, for example). Any error is sticky and reported by
// Error and every later call.
//
// Records need not share a field count.
type Writer struct {
	dst io.Writer
	q   *quoter
	buf []byte
	log *slog.Logger
	err error
}

// flusher is implemented by buffered destinations.
type flusher interface {
	Flush() error
}

// NewWriter returns a new Writer with DefaultWriterOptions that writes to w.
func NewWriter(w io.Writer) *Writer {
	writer, err := NewWriterWithOptions(w, DefaultWriterOptions())
	if err != nil {
		panic(err) // defaults are always valid
	}
	return writer
}

// NewWriterWithOptions creates a Writer with the given options. An invalid
// quote style or inconsistent dialect fails with KindInvalidConfiguration.
func NewWriterWithOptions(w io.Writer, opts WriterOptions) (*Writer, error) {
	d, err := opts.dialect()
	if err != nil {
		return nil, err
	}
	return &Writer{
		dst: w,
		q:   newQuoter(d, opts.QuoteStyle),
		buf: make([]byte, 0, 256),
		log: loggerOrDiscard(opts.Logger),
	}, nil
}

// Write writes a single record along with any necessary quoting, followed
// by the terminator.
func (w *Writer) Write(record []string) error {
	if w.err != nil {
		return w.err
	}
	w.buf = w.q.appendRecord(w.buf[:0], record)
	if _, err := w.dst.Write(w.buf); err != nil {
		return w.fail(ioError("write", err))
	}
	return nil
}

// WriteAll writes multiple records using Write and then calls Flush,
// returning any error from the Flush.
func (w *Writer) WriteAll(records [][]string) error {
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush forces written records through a buffered destination. All records
// written before Flush returns nil are visible to readers of the destination.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if f, ok := w.dst.(flusher); ok {
		if err := f.Flush(); err != nil {
			return w.fail(ioError("flush", err))
		}
	}
	return nil
}

// Error reports any error that has occurred during a previous Write or Flush.
func (w *Writer) Error() error {
	return w.err
}

func (w *Writer) fail(err error) error {
	w.err = err
	w.log.Debug("streamcsv: writer stopped", slog.Any("error", err))
	return err
}
