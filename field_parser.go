package streamcsv

import (
	"bytes"
	"io"
)

// =============================================================================
// Parser State Machine
// =============================================================================
//
// The field parser is a byte-level state machine over a refilling buffer:
//
//   FIELD_START  ---(quote)------------->  QUOTED
//   FIELD_START  ---(anything else)----->  UNQUOTED   (byte not consumed)
//   UNQUOTED     ---(delimiter)--------->  FIELD_START
//   UNQUOTED     ---(terminator)-------->  record complete
//   QUOTED       ---(quote)------------->  MAYBE_CLOSING_QUOTE
//   QUOTED       ---(escape, next byte)->  QUOTED     (only without double quoting)
//   MAYBE_CLOSING_QUOTE ---(quote)------>  QUOTED     (only with double quoting)
//   MAYBE_CLOSING_QUOTE ---(delimiter)-->  FIELD_START
//   MAYBE_CLOSING_QUOTE ---(terminator)->  record complete
//
// In QUOTED state delimiters, terminators and newlines are field content.
// A quote after the first byte of an unquoted field is content too.
// Any other byte after a closing quote is a quoting error.
//
// =============================================================================

// parserState is the tokenizer state between two bytes.
type parserState uint8

const (
	stateFieldStart parserState = iota
	stateUnquoted
	stateQuoted
	stateMaybeClosingQuote
)

// maxEmptyReads bounds consecutive (0, nil) reads before giving up.
const maxEmptyReads = 100

// rawRecord is one tokenized record. Unescaped field contents are
// concatenated in data; ends[i] is the end offset of field i. start is the
// tracker snapshot taken where the record began.
type rawRecord struct {
	data  []byte
	ends  []int
	start Position
}

// fieldCount returns the number of fields in the record.
func (rr *rawRecord) fieldCount() int {
	return len(rr.ends)
}

// field returns the raw bytes of field i.
func (rr *rawRecord) field(i int) []byte {
	start := 0
	if i > 0 {
		start = rr.ends[i-1]
	}
	return rr.data[start:rr.ends[i]]
}

// fieldParser splits a byte stream into raw records.
type fieldParser struct {
	src    io.Reader
	d      dialect
	buf    []byte
	pos    int // next unread byte in buf
	end    int // end of buffered data in buf
	srcErr error

	track tracker
	rec   rawRecord
}

// newFieldParser creates a parser reading from src.
func newFieldParser(src io.Reader, d dialect, bufSize int) *fieldParser {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}
	bufSize = max(bufSize, len(d.terminator))
	return &fieldParser{
		src: src,
		d:   d,
		buf: make([]byte, bufSize),
		rec: rawRecord{
			data: make([]byte, 0, 512),
			ends: make([]int, 0, 32),
		},
	}
}

// next returns the next record, or io.EOF when the stream is exhausted.
// The returned record is only valid until the following call.
func (p *fieldParser) next() (*rawRecord, error) {
	rec := &p.rec
	rec.data = rec.data[:0]
	rec.ends = rec.ends[:0]
	rec.start = p.track.snapshot()

	state := stateFieldStart
	for {
		if !p.fill(1) {
			if p.srcErr != io.EOF {
				return nil, ioError("read", p.srcErr)
			}
			return p.finishAtEOF(state)
		}
		b := p.buf[p.pos]

		switch state {
		case stateFieldStart:
			if b == p.d.quote {
				p.consume(1)
				state = stateQuoted
				continue
			}
			if len(rec.ends) == 0 && b == p.d.terminator[0] && p.atTerminator() {
				// Blank line: no record, but bytes and lines still count.
				p.consume(len(p.d.terminator))
				rec.start = p.track.snapshot()
				continue
			}
			state = stateUnquoted

		case stateUnquoted:
			switch {
			case b == p.d.delimiter:
				p.consume(1)
				p.endField()
				state = stateFieldStart
			case b == p.d.terminator[0] && p.atTerminator():
				return p.endRecord(), nil
			default:
				p.appendRun(b, p.d.delimiter, p.d.terminator[0])
			}

		case stateQuoted:
			switch {
			case b == p.d.quote:
				p.consume(1)
				state = stateMaybeClosingQuote
			case !p.d.doubleQuote && b == p.d.escape:
				if !p.fill(2) {
					p.consume(1)
					if p.srcErr != io.EOF {
						return nil, ioError("read", p.srcErr)
					}
					return nil, p.quoteError("unterminated quoted field")
				}
				rec.data = append(rec.data, p.buf[p.pos+1])
				p.consume(2)
			default:
				stop := p.d.quote
				if !p.d.doubleQuote {
					stop = p.d.escape
				}
				p.appendRun(b, p.d.quote, stop)
			}

		case stateMaybeClosingQuote:
			switch {
			case p.d.doubleQuote && b == p.d.quote:
				rec.data = append(rec.data, b)
				p.consume(1)
				state = stateQuoted
			case b == p.d.delimiter:
				p.consume(1)
				p.endField()
				state = stateFieldStart
			case b == p.d.terminator[0] && p.atTerminator():
				return p.endRecord(), nil
			default:
				return nil, p.quoteError("unexpected %q after closing quote", b)
			}
		}
	}
}

// finishAtEOF closes the pending record at end of stream.
func (p *fieldParser) finishAtEOF(state parserState) (*rawRecord, error) {
	switch state {
	case stateQuoted:
		return nil, p.quoteError("unterminated quoted field")
	case stateFieldStart:
		if len(p.rec.ends) == 0 {
			return nil, io.EOF
		}
	}
	p.endField()
	p.track.completeRecord()
	return &p.rec, nil
}

// endRecord consumes the terminator under the cursor and closes the record.
func (p *fieldParser) endRecord() *rawRecord {
	p.consume(len(p.d.terminator))
	p.endField()
	p.track.completeRecord()
	return &p.rec
}

// endField closes the field being accumulated.
func (p *fieldParser) endField() {
	p.rec.ends = append(p.rec.ends, len(p.rec.data))
}

// appendRun appends the content byte under the cursor plus every following
// buffered byte up to the next stopA or stopB byte. The byte under the
// cursor is always taken, even when it equals a stop byte (a partial
// terminator match is content).
func (p *fieldParser) appendRun(first, stopA, stopB byte) {
	n := 1
	if first != stopA && first != stopB {
		if i := indexEither(p.buf[p.pos+1:p.end], stopA, stopB); i >= 0 {
			n += i
		} else {
			n = p.end - p.pos
		}
	}
	p.rec.data = append(p.rec.data, p.buf[p.pos:p.pos+n]...)
	p.consume(n)
}

// atTerminator reports whether the full terminator starts at the cursor.
func (p *fieldParser) atTerminator() bool {
	t := p.d.terminator
	if len(t) == 1 {
		return true // caller already compared the first byte
	}
	if !p.fill(len(t)) {
		return false
	}
	return bytes.HasPrefix(p.buf[p.pos:p.end], t)
}

// consume advances the cursor by n buffered bytes.
func (p *fieldParser) consume(n int) {
	p.track.consume(p.buf[p.pos : p.pos+n])
	p.pos += n
}

// fill ensures at least n unread bytes are buffered. It returns false if the
// source ends or fails first; p.srcErr then holds the cause.
func (p *fieldParser) fill(n int) bool {
	empty := 0
	for p.end-p.pos < n {
		if p.srcErr != nil {
			return false
		}
		if p.pos > 0 {
			copy(p.buf, p.buf[p.pos:p.end])
			p.end -= p.pos
			p.pos = 0
		}
		if n > len(p.buf) {
			grown := make([]byte, max(n, 2*len(p.buf)))
			copy(grown, p.buf[:p.end])
			p.buf = grown
		}
		m, err := p.src.Read(p.buf[p.end:])
		if m > 0 {
			p.end += m
			empty = 0
		}
		if err != nil {
			p.srcErr = err
			continue
		}
		if m == 0 {
			empty++
			if empty >= maxEmptyReads {
				p.srcErr = io.ErrNoProgress
			}
		}
	}
	return true
}

// quoteError reports a quoting error at the cursor.
func (p *fieldParser) quoteError(format string, args ...any) error {
	pos := p.track.snapshot()
	return newError(KindMalformedQuoting, &pos, format, args...)
}
