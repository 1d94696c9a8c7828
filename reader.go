// Package streamcsv reads and writes delimited text records from byte streams.
//
// A Reader splits a stream into records of UTF-8 fields, honoring a
// configurable delimiter byte, a multi-byte record terminator, quoted fields
// and doubled-quote or escape-byte unescaping. Every record of one Reader must
// have the width of the first. Malformed input stops the Reader with an
// [*Error] that locates the fault by byte offset, line and record index.
//
// A Writer is the inverse: it quotes and escapes fields according to a
// [QuoteStyle] so that reading the output back with the same configuration
// reproduces the records.
package streamcsv

import (
	"io"
	"iter"
	"log/slog"
)

// Reader reads records from a delimited byte stream.
//
// A Reader is not safe for concurrent use. Once Read has returned an error
// other than io.EOF, every later call returns the same error.
type Reader struct {
	parser *fieldParser
	width  widthValidator
	log    *slog.Logger
	err    error

	// closer is set when the Reader opened its source itself.
	closer io.Closer
}

// NewReader returns a new Reader with DefaultReaderOptions that reads from r.
func NewReader(r io.Reader) *Reader {
	reader, err := NewReaderWithOptions(r, DefaultReaderOptions())
	if err != nil {
		panic(err) // defaults are always valid
	}
	return reader
}

// NewReaderWithOptions creates a Reader with the given options. Invalid
// options fail with a KindInvalidConfiguration error before any I/O.
func NewReaderWithOptions(r io.Reader, opts ReaderOptions) (*Reader, error) {
	d, err := opts.dialect()
	if err != nil {
		return nil, err
	}
	return &Reader{
		parser: newFieldParser(r, d, opts.BufferSize),
		log:    loggerOrDiscard(opts.Logger),
	}, nil
}

// Read reads one record (a slice of fields) from r.
// If there is no data left to be read, Read returns nil, io.EOF.
// The returned slice is owned by the caller.
func (r *Reader) Read() (record []string, err error) {
	if r.err != nil {
		return nil, r.err
	}

	rr, err := r.parser.next()
	if err != nil {
		return nil, r.fail(err)
	}
	record, err = buildRecord(rr)
	if err != nil {
		return nil, r.fail(err)
	}
	if err := r.width.check(len(record), rr.start); err != nil {
		return nil, r.fail(err)
	}
	return record, nil
}

// fail makes err sticky.
func (r *Reader) fail(err error) error {
	r.err = err
	if err != io.EOF {
		r.log.Debug("streamcsv: reader stopped", slog.Any("error", err), slog.String("position", r.Position().String()))
	}
	return err
}

// ReadAll reads all the remaining records from r.
// A successful call returns err == nil, not err == io.EOF.
// On error, the records read so far are returned with it.
func (r *Reader) ReadAll() (records [][]string, err error) {
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
}

// Records returns an iterator over the remaining records. Iteration stops
// after the first error, which is yielded with a nil record.
//
//	for record, err := range r.Records() {
//		if err != nil {
//			return err
//		}
//		...
//	}
func (r *Reader) Records() iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		for {
			record, err := r.Read()
			if err == io.EOF {
				return
			}
			if !yield(record, err) || err != nil {
				return
			}
		}
	}
}

// Position returns the current input position: the bytes and lines consumed
// so far and the number of records completed.
func (r *Reader) Position() Position {
	return r.parser.track.snapshot()
}

// Width returns the field count fixed by the first record, and false if no
// record has been read yet.
func (r *Reader) Width() (int, bool) {
	return r.width.width()
}

// Close closes the underlying source if the Reader opened it (see Open).
// Otherwise it is a no-op.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	return c.Close()
}
