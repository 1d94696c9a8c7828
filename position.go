package streamcsv

import (
	"bytes"
	"fmt"
)

// Position locates a point in the input stream.
type Position struct {
	Byte   uint64 // bytes consumed from the start of the stream
	Line   uint64 // 1-based; every raw '\n' advances it, quoted or not
	Record uint64 // records completed before the one being parsed (0-based)
}

// String formats the position for error messages.
func (p Position) String() string {
	return fmt.Sprintf("byte %d, line %d, record %d", p.Byte, p.Line, p.Record)
}

// tracker counts consumed bytes, newlines and completed records.
type tracker struct {
	byte   uint64
	lines  uint64
	record uint64
}

// consume advances the byte and line counters over p.
func (t *tracker) consume(p []byte) {
	t.byte += uint64(len(p))
	t.lines += uint64(bytes.Count(p, newline))
}

// completeRecord marks the record being parsed as closed.
func (t *tracker) completeRecord() {
	t.record++
}

func (t *tracker) snapshot() Position {
	return Position{Byte: t.byte, Line: t.lines + 1, Record: t.record}
}

var newline = []byte{'\n'}
