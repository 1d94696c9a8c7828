package streamcsv

import "strconv"

// =============================================================================
// Quoting Policy
// =============================================================================

// quoter decides whether a field is quoted and encodes it.
type quoter struct {
	d     dialect
	style QuoteStyle

	// special marks bytes that force quoting under QuoteNecessary.
	special [256]bool
}

// newQuoter builds the quoting tables for d.
func newQuoter(d dialect, style QuoteStyle) *quoter {
	q := &quoter{d: d, style: style}
	q.special[d.delimiter] = true
	q.special[d.quote] = true
	q.special['\r'] = true
	q.special['\n'] = true
	for _, b := range d.terminator {
		q.special[b] = true
	}
	return q
}

// fieldNeedsQuotes reports whether field must be wrapped in quotes.
func (q *quoter) fieldNeedsQuotes(field string) bool {
	switch q.style {
	case QuoteAlways:
		return true
	case QuoteNever:
		return false
	case QuoteNonNumeric:
		if !isNumeric(field) {
			return true
		}
	}
	for i := 0; i < len(field); i++ {
		if q.special[field[i]] {
			return true
		}
	}
	return false
}

// isNumeric reports whether field is an integer or floating point literal.
func isNumeric(field string) bool {
	if field == "" {
		return false
	}
	if _, err := strconv.ParseInt(field, 10, 64); err == nil {
		return true
	}
	_, err := strconv.ParseFloat(field, 64)
	return err == nil
}

// appendRecord encodes record followed by the terminator onto dst.
func (q *quoter) appendRecord(dst []byte, record []string) []byte {
	if len(record) == 1 && record[0] == "" && q.style != QuoteNever {
		// A lone empty field would otherwise read back as a skipped blank line.
		dst = append(dst, q.d.quote, q.d.quote)
		return append(dst, q.d.terminator...)
	}
	for i, field := range record {
		if i > 0 {
			dst = append(dst, q.d.delimiter)
		}
		if q.fieldNeedsQuotes(field) {
			dst = q.appendQuoted(dst, field)
		} else {
			dst = append(dst, field...)
		}
	}
	return append(dst, q.d.terminator...)
}

// appendQuoted appends field wrapped in quotes. Each quote byte inside is
// doubled, or with double quoting off, prefixed by the escape byte; the
// escape byte itself is escaped too in that mode.
func (q *quoter) appendQuoted(dst []byte, field string) []byte {
	quote, escape := q.d.quote, q.d.escape
	dst = append(dst, quote)
	start := 0
	for i := 0; i < len(field); i++ {
		c := field[i]
		switch {
		case c == quote && q.d.doubleQuote:
			dst = append(dst, field[start:i]...)
			dst = append(dst, quote, quote)
			start = i + 1
		case c == quote || (c == escape && !q.d.doubleQuote):
			dst = append(dst, field[start:i]...)
			dst = append(dst, escape, c)
			start = i + 1
		}
	}
	dst = append(dst, field[start:]...)
	return append(dst, quote)
}
