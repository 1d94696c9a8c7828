package streamcsv

import (
	"bytes"
	"io"
)

// ============================================================================
// Public API - Direct Parsing
// ============================================================================

// ParseBytes parses a complete byte slice with opts.
// Returns all records, or the records read before the first error along
// with that error.
func ParseBytes(data []byte, opts ReaderOptions) ([][]string, error) {
	if len(data) == 0 {
		if _, err := opts.dialect(); err != nil {
			return nil, err
		}
		return nil, nil
	}
	r, err := NewReaderWithOptions(bytes.NewReader(data), opts)
	if err != nil {
		return nil, err
	}
	return r.ReadAll()
}

// ParseBytesStreaming parses data using a streaming callback function.
// The callback is invoked for each record. If it returns an error, parsing
// stops and that error is returned unchanged.
func ParseBytesStreaming(data []byte, opts ReaderOptions, callback func([]string) error) error {
	r, err := NewReaderWithOptions(bytes.NewReader(data), opts)
	if err != nil {
		return err
	}
	for {
		record, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := callback(record); err != nil {
			return err
		}
	}
}

// FormatRecords encodes records with opts and returns the bytes.
func FormatRecords(records [][]string, opts WriterOptions) ([]byte, error) {
	var buf bytes.Buffer
	w, err := NewWriterWithOptions(&buf, opts)
	if err != nil {
		return nil, err
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
