package streamcsv

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
)

// DefaultBufferSize is the default read buffer size (64KB).
const DefaultBufferSize = 64 * 1024

// QuoteStyle selects when the Writer wraps a field in quotes.
type QuoteStyle int

const (
	// QuoteNecessary quotes a field only if it contains the delimiter, a
	// terminator byte, the quote character, '\r' or '\n'.
	QuoteNecessary QuoteStyle = iota
	// QuoteAlways quotes every field.
	QuoteAlways
	// QuoteNever writes every field verbatim. Output may not be readable back.
	QuoteNever
	// QuoteNonNumeric quotes every field that is not an integer or float.
	QuoteNonNumeric
)

// String returns the name accepted by ParseQuoteStyle.
func (s QuoteStyle) String() string {
	switch s {
	case QuoteNecessary:
		return "necessary"
	case QuoteAlways:
		return "always"
	case QuoteNever:
		return "never"
	case QuoteNonNumeric:
		return "non_numeric"
	default:
		return "QuoteStyle(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseQuoteStyle parses "never", "necessary", "always" or "non_numeric".
// Matching is case-insensitive.
func ParseQuoteStyle(s string) (QuoteStyle, error) {
	switch strings.ToLower(s) {
	case "necessary":
		return QuoteNecessary, nil
	case "always":
		return QuoteAlways, nil
	case "never":
		return QuoteNever, nil
	case "non_numeric", "non-numeric", "nonnumeric":
		return QuoteNonNumeric, nil
	}
	return 0, configError("invalid quote style %q", s)
}

func (s QuoteStyle) valid() bool {
	return s >= QuoteNecessary && s <= QuoteNonNumeric
}

// ReaderOptions configures a Reader. Start from DefaultReaderOptions; the zero
// value is not usable because Terminator is empty.
type ReaderOptions struct {
	// Delimiter separates fields outside quotes. Default ','.
	Delimiter byte
	// Terminator ends a record outside quotes. It may be several bytes long
	// and is matched atomically. Default "\n".
	Terminator []byte
	// Quote opens and closes quoted fields. Default '"'.
	Quote byte
	// Escape makes the next byte literal inside a quoted field when
	// DoubleQuote is false. Default '\\'.
	Escape byte
	// DoubleQuote reads a doubled quote inside a quoted field as one literal
	// quote. Default true.
	DoubleQuote bool
	// BufferSize is the read buffer size in bytes. Default DefaultBufferSize.
	BufferSize int
	// Logger receives debug events. Nil discards them.
	Logger *slog.Logger
}

// DefaultReaderOptions returns the default reader configuration.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{
		Delimiter:   ',',
		Terminator:  []byte{'\n'},
		Quote:       '"',
		Escape:      '\\',
		DoubleQuote: true,
		BufferSize:  DefaultBufferSize,
	}
}

// WriterOptions configures a Writer. Start from DefaultWriterOptions.
type WriterOptions struct {
	// Delimiter separates fields. Default ','.
	Delimiter byte
	// Terminator is appended after the last field of every record. Default "\n".
	Terminator []byte
	// Quote wraps quoted fields. Default '"'.
	Quote byte
	// Escape precedes quote (and escape) bytes inside quoted fields when
	// DoubleQuote is false. Default '\\'.
	Escape byte
	// DoubleQuote doubles quote bytes inside quoted fields. Default true.
	DoubleQuote bool
	// QuoteStyle selects which fields are quoted. Default QuoteNecessary.
	QuoteStyle QuoteStyle
	// Logger receives debug events. Nil discards them.
	Logger *slog.Logger
}

// DefaultWriterOptions returns the default writer configuration.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{
		Delimiter:   ',',
		Terminator:  []byte{'\n'},
		Quote:       '"',
		Escape:      '\\',
		DoubleQuote: true,
		QuoteStyle:  QuoteNecessary,
	}
}

// dialect is the validated, immutable configuration shared by both directions.
type dialect struct {
	delimiter   byte
	terminator  []byte
	quote       byte
	escape      byte
	doubleQuote bool
}

func newDialect(delimiter byte, terminator []byte, quote, escape byte, doubleQuote bool) (dialect, error) {
	switch {
	case len(terminator) == 0:
		return dialect{}, configError("terminator must not be empty")
	case delimiter == quote:
		return dialect{}, configError("delimiter and quote must differ (both %q)", delimiter)
	case bytes.IndexByte(terminator, delimiter) >= 0:
		return dialect{}, configError("terminator %q contains the delimiter %q", terminator, delimiter)
	case bytes.IndexByte(terminator, quote) >= 0:
		return dialect{}, configError("terminator %q contains the quote %q", terminator, quote)
	case !doubleQuote && escape == quote:
		return dialect{}, configError("escape and quote must differ when double quoting is off (both %q)", quote)
	}
	return dialect{
		delimiter:   delimiter,
		terminator:  bytes.Clone(terminator),
		quote:       quote,
		escape:      escape,
		doubleQuote: doubleQuote,
	}, nil
}

func (o ReaderOptions) dialect() (dialect, error) {
	if o.BufferSize < 0 {
		return dialect{}, configError("buffer size must not be negative, got %d", o.BufferSize)
	}
	return newDialect(o.Delimiter, o.Terminator, o.Quote, o.Escape, o.DoubleQuote)
}

func (o WriterOptions) dialect() (dialect, error) {
	if !o.QuoteStyle.valid() {
		return dialect{}, configError("invalid quote style %v", o.QuoteStyle)
	}
	return newDialect(o.Delimiter, o.Terminator, o.Quote, o.Escape, o.DoubleQuote)
}

func loggerOrDiscard(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
