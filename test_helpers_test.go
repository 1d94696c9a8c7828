package streamcsv

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test Helper Functions
// =============================================================================

// readAllWith reads every record of input with opts.
func readAllWith(t *testing.T, input string, opts ReaderOptions) ([][]string, error) {
	t.Helper()
	r, err := NewReaderWithOptions(strings.NewReader(input), opts)
	require.NoError(t, err)
	return r.ReadAll()
}

// readerOpts returns DefaultReaderOptions modified by fn.
func readerOpts(fn func(*ReaderOptions)) ReaderOptions {
	opts := DefaultReaderOptions()
	if fn != nil {
		fn(&opts)
	}
	return opts
}

// writerOpts returns DefaultWriterOptions modified by fn.
func writerOpts(fn func(*WriterOptions)) WriterOptions {
	opts := DefaultWriterOptions()
	if fn != nil {
		fn(&opts)
	}
	return opts
}

// compareWithStdlib compares streamcsv output with encoding/csv output for
// input in the dialect both understand: ',' delimiter, '\n' terminator, no
// '\r', and no quotes inside unquoted fields.
func compareWithStdlib(t *testing.T, input string) {
	t.Helper()

	stdReader := csv.NewReader(strings.NewReader(input))
	want, stdErr := stdReader.ReadAll()
	require.NoError(t, stdErr, "encoding/csv rejected the input")

	got, err := NewReader(strings.NewReader(input)).ReadAll()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// compareWriterWithStdlib compares streamcsv Writer output with encoding/csv
// Writer output for records without leading spaces or lone empty fields.
func compareWriterWithStdlib(t *testing.T, records [][]string) {
	t.Helper()

	var stdBuf bytes.Buffer
	stdWriter := csv.NewWriter(&stdBuf)
	require.NoError(t, stdWriter.WriteAll(records))

	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteAll(records))

	require.Equal(t, stdBuf.String(), buf.String())
}

// =============================================================================
// Benchmark Data Generators
// =============================================================================

// generateSimpleCSV generates CSV data with simple unquoted fields.
func generateSimpleCSV(numRows, numCols int) []byte {
	var buf bytes.Buffer
	for i := 0; i < numRows; i++ {
		for j := 0; j < numCols; j++ {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString("field")
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// generateQuotedCSV generates CSV data with quoted fields containing commas.
func generateQuotedCSV(numRows, numCols int) []byte {
	var buf bytes.Buffer
	for i := 0; i < numRows; i++ {
		for j := 0; j < numCols; j++ {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(`"field,with,commas"`)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// generateEscapedQuotesCSV generates CSV data with doubled quotes.
func generateEscapedQuotesCSV(numRows, numCols int) []byte {
	var buf bytes.Buffer
	for i := 0; i < numRows; i++ {
		for j := 0; j < numCols; j++ {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(`"he said ""hello"" to me"`)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// generateRecords generates records for writer benchmarks.
func generateRecords(numRows, numCols int) [][]string {
	records := make([][]string, numRows)
	for i := range records {
		record := make([]string, numCols)
		for j := range record {
			switch j % 3 {
			case 0:
				record[j] = "plain"
			case 1:
				record[j] = "with,comma"
			default:
				record[j] = `with "quotes"`
			}
		}
		records[i] = record
	}
	return records
}
