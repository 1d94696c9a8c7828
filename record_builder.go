package streamcsv

import (
	"unicode/utf8"
)

// =============================================================================
// Record Building - UTF-8 validation and string conversion
// =============================================================================

// buildRecord validates every field of rr as UTF-8 and converts the record to
// []string with a single string allocation shared by all fields.
//
// On the first invalid field it returns an InvalidUTF8 error positioned at
// the start of the record, with the field index and the valid prefix length.
func buildRecord(rr *rawRecord) ([]string, error) {
	for i := range rr.fieldCount() {
		if err := validateField(rr, i); err != nil {
			return nil, err
		}
	}

	str := string(rr.data)
	record := make([]string, rr.fieldCount())
	prevEnd := 0
	for i, end := range rr.ends {
		record[i] = str[prevEnd:end]
		prevEnd = end
	}
	return record, nil
}

// validateField checks field i of rr.
func validateField(rr *rawRecord, i int) error {
	raw := rr.field(i)
	if utf8.Valid(raw) {
		return nil
	}
	validUpTo := validPrefix(raw)
	pos := rr.start
	err := newError(KindInvalidUTF8, &pos, "invalid UTF-8 in field %d after byte %d", i, validUpTo)
	err.Field = i
	err.Offset = validUpTo
	return err
}

// validPrefix returns the length of the longest valid UTF-8 prefix of p.
func validPrefix(p []byte) int {
	n := 0
	for n < len(p) {
		if p[n] < utf8.RuneSelf {
			n++
			continue
		}
		r, size := utf8.DecodeRune(p[n:])
		if r == utf8.RuneError && size == 1 {
			return n
		}
		n += size
	}
	return n
}
