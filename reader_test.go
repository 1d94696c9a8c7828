package streamcsv

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TestRead Tests - Basic Parsing
// =============================================================================

func TestRead_Simple(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "single row single field",
			input: "hello\n",
			want:  [][]string{{"hello"}},
		},
		{
			name:  "multiple rows",
			input: "a,b,c\n1,2,3\nx,y,z\n",
			want:  [][]string{{"a", "b", "c"}, {"1", "2", "3"}, {"x", "y", "z"}},
		},
		{
			name:  "mixed content",
			input: "name,age,city\nAlice,30,Tokyo\nBob,25,Osaka\n",
			want:  [][]string{{"name", "age", "city"}, {"Alice", "30", "Tokyo"}, {"Bob", "25", "Osaka"}},
		},
		{
			name:  "whitespace in fields",
			input: "hello world, foo bar \n",
			want:  [][]string{{"hello world", " foo bar "}},
		},
		{
			name:  "multi-byte UTF-8",
			input: "こんにちは,🐍\n",
			want:  [][]string{{"こんにちは", "🐍"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewReader(strings.NewReader(tt.input)).ReadAll()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestRead_MatchesStdlib runs inputs that encoding/csv reads identically.
func TestRead_MatchesStdlib(t *testing.T) {
	inputs := []string{
		"a,b,c\n1,2,3\n",
		"\"a,b\",c\n\"x\"\"y\",z\n",
		"\"multi\nline\",x\n",
		"a,b\n\nc,d\n",
		",,\n,,\n",
		"last,record",
		string(generateQuotedCSV(20, 3)),
		string(generateEscapedQuotesCSV(20, 3)),
	}
	for _, input := range inputs {
		compareWithStdlib(t, input)
	}
}

func TestRead_ControlByteDialect(t *testing.T) {
	opts := readerOpts(func(o *ReaderOptions) {
		o.Delimiter = '\x01'
		o.Terminator = []byte{'\x02'}
	})
	r, err := NewReaderWithOptions(strings.NewReader("x\x01y\x01z\x02a\x01b\x01c\n\n\x02"), opts)
	require.NoError(t, err)

	got, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x", "y", "z"}, {"a", "b", "c\n\n"}}, got)
	assert.Equal(t, Position{Byte: 14, Line: 3, Record: 2}, r.Position())
}

func TestRead_Empty(t *testing.T) {
	for _, input := range []string{"", "\n", "\n\n"} {
		r := NewReader(strings.NewReader(input))
		record, err := r.Read()
		assert.Nil(t, record)
		assert.Equal(t, io.EOF, err, "input %q", input)
	}
}

func TestRead_ReturnsFreshSlices(t *testing.T) {
	r := NewReader(strings.NewReader("a,b\nc,d\n"))
	first, err := r.Read()
	require.NoError(t, err)
	second, err := r.Read()
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, first)
	assert.Equal(t, []string{"c", "d"}, second)
}

// =============================================================================
// Position Tracking
// =============================================================================

func TestRead_Position(t *testing.T) {
	r := NewReader(strings.NewReader("a\n\nb\n"))
	assert.Equal(t, Position{Byte: 0, Line: 1, Record: 0}, r.Position())

	_, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, Position{Byte: 2, Line: 2, Record: 1}, r.Position())

	_, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, Position{Byte: 5, Line: 4, Record: 2}, r.Position())

	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, Position{Byte: 5, Line: 4, Record: 2}, r.Position())
}

func TestRead_LinesCountedInsideQuotes(t *testing.T) {
	r := NewReader(strings.NewReader("\"a\nb\",c\nd,\xff\n"))

	record, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"a\nb", "c"}, record)

	_, err = r.Read()
	require.ErrorIs(t, err, ErrInvalidUTF8)
	pos, ok := PositionOf(err)
	require.True(t, ok)
	assert.Equal(t, Position{Byte: 8, Line: 3, Record: 1}, pos)
}

func TestRead_LinesCountedWithOtherTerminator(t *testing.T) {
	opts := readerOpts(func(o *ReaderOptions) { o.Terminator = []byte{';'} })
	r, err := NewReaderWithOptions(strings.NewReader("a\nb;c\n\nd;"), opts)
	require.NoError(t, err)

	got, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a\nb"}, {"c\n\nd"}}, got)
	assert.Equal(t, Position{Byte: 9, Line: 4, Record: 2}, r.Position())
}

// =============================================================================
// Validation Errors
// =============================================================================

func TestRead_InvalidUTF8(t *testing.T) {
	input := "valid UTF-8,invalid UTF-8,\nvalid: \xf0\x9f\x90\x8d,invalid: \xa0\xa1,\n"
	r := NewReader(strings.NewReader(input))

	record, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"valid UTF-8", "invalid UTF-8", ""}, record)

	record, err = r.Read()
	assert.Nil(t, record)
	require.Error(t, err)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidUTF8, kind)

	var csvErr *Error
	require.ErrorAs(t, err, &csvErr)
	require.NotNil(t, csvErr.Pos)
	assert.Equal(t, Position{Byte: 27, Line: 2, Record: 1}, *csvErr.Pos)
	assert.Equal(t, 1, csvErr.Field)
	assert.Equal(t, 9, csvErr.Offset)
}

func TestRead_WidthMismatch(t *testing.T) {
	r := NewReader(strings.NewReader("a,b\n1,2,3"))

	record, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, record)

	_, err = r.Read()
	require.ErrorIs(t, err, ErrWidthMismatch)
	pos, ok := PositionOf(err)
	require.True(t, ok)
	assert.Equal(t, Position{Byte: 4, Line: 2, Record: 1}, pos)
}

func TestRead_WidthMatches(t *testing.T) {
	r := NewReader(strings.NewReader("a,b\n1,2"))

	got, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"1", "2"}}, got)

	width, ok := r.Width()
	assert.True(t, ok)
	assert.Equal(t, 2, width)
}

func TestRead_WidthUnset(t *testing.T) {
	r := NewReader(strings.NewReader(""))
	_, ok := r.Width()
	assert.False(t, ok)
}

// =============================================================================
// Error Stickiness and Iteration
// =============================================================================

func TestRead_ErrorIsSticky(t *testing.T) {
	r := NewReader(strings.NewReader("a,b\n1,2,3\nx,y\n"))
	_, err := r.Read()
	require.NoError(t, err)

	_, first := r.Read()
	require.Error(t, first)
	record, second := r.Read()
	assert.Nil(t, record)
	assert.Same(t, first, second)
}

func TestRead_EOFIsSticky(t *testing.T) {
	r := NewReader(strings.NewReader("a\n"))
	_, err := r.Read()
	require.NoError(t, err)
	for range 3 {
		_, err = r.Read()
		assert.Equal(t, io.EOF, err)
	}
}

func TestReadAll_PartialOnError(t *testing.T) {
	records, err := NewReader(strings.NewReader("a\nb\n\"c")).ReadAll()
	assert.Equal(t, [][]string{{"a"}, {"b"}}, records)
	assert.ErrorIs(t, err, ErrMalformedQuoting)
}

func TestRecords(t *testing.T) {
	r := NewReader(strings.NewReader("a,b\nc,d\n"))
	var got [][]string
	for record, err := range r.Records() {
		require.NoError(t, err)
		got = append(got, record)
	}
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, got)
}

func TestRecords_StopsAfterError(t *testing.T) {
	r := NewReader(strings.NewReader("a\nb,c\nd\n"))
	var (
		got  [][]string
		errs []error
	)
	for record, err := range r.Records() {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		got = append(got, record)
	}
	assert.Equal(t, [][]string{{"a"}}, got)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrWidthMismatch)
}

func TestRecords_Break(t *testing.T) {
	r := NewReader(strings.NewReader("a\nb\nc\n"))
	for record, err := range r.Records() {
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, record)
		break
	}
	record, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, record)
}

// =============================================================================
// Chunk Independence and Logging
// =============================================================================

func TestRead_ChunkBoundaries(t *testing.T) {
	input := "id;name;note|||1;\"a||b\";x\r\n|||2;c;\"\"\"q\"\"\"|||"
	opts := readerOpts(func(o *ReaderOptions) {
		o.Delimiter = ';'
		o.Terminator = []byte("|||")
	})
	want := [][]string{
		{"id", "name", "note"},
		{"1", "a||b", "x\r\n"},
		{"2", "c", `"q"`},
	}

	for _, size := range []int{1, 2, 3, 5, 64} {
		small := opts
		small.BufferSize = size
		r, err := NewReaderWithOptions(iotest.OneByteReader(strings.NewReader(input)), small)
		require.NoError(t, err)
		got, err := r.ReadAll()
		require.NoError(t, err)
		assert.Equal(t, want, got, "buffer size %d", size)
	}
}

func TestRead_DebugLogging(t *testing.T) {
	var logs bytes.Buffer
	opts := readerOpts(func(o *ReaderOptions) {
		o.Logger = slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	})
	_, err := readAllWith(t, "a\n\"b", opts)
	require.Error(t, err)
	assert.Contains(t, logs.String(), "reader stopped")
	assert.Contains(t, logs.String(), "unterminated quoted field")
}

func TestNewReaderWithOptions_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opts func(*ReaderOptions)
	}{
		{name: "empty terminator", opts: func(o *ReaderOptions) { o.Terminator = nil }},
		{name: "delimiter equals quote", opts: func(o *ReaderOptions) { o.Delimiter = '"' }},
		{name: "terminator contains delimiter", opts: func(o *ReaderOptions) { o.Terminator = []byte(",\n") }},
		{name: "terminator contains quote", opts: func(o *ReaderOptions) { o.Terminator = []byte("\"\n") }},
		{name: "escape equals quote", opts: func(o *ReaderOptions) { o.DoubleQuote = false; o.Escape = '"' }},
		{name: "negative buffer size", opts: func(o *ReaderOptions) { o.BufferSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReaderWithOptions(strings.NewReader("a\n"), readerOpts(tt.opts))
			assert.Nil(t, r)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
