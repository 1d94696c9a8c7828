package streamcsv

// =============================================================================
// Row Width Validation
// =============================================================================

// widthValidator enforces that every record of one reader has the field
// count of the first record. It never pads or truncates.
type widthValidator struct {
	expected int
	set      bool
}

// check records the width of the first record and compares later ones.
// start is the position where the record began.
func (v *widthValidator) check(fieldCount int, start Position) error {
	if !v.set {
		v.expected = fieldCount
		v.set = true
		return nil
	}
	if fieldCount == v.expected {
		return nil
	}
	return newError(KindWidthMismatch, &start,
		"found record with %d fields, but the previous record has %d fields", fieldCount, v.expected)
}

// width returns the established width and whether it has been set.
func (v *widthValidator) width() (int, bool) {
	return v.expected, v.set
}
