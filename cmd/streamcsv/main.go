// streamcsv - delimited text CLI tool
//
// Usage:
//
//	streamcsv read [options] [file]      Print every record as a quoted tuple
//	streamcsv convert [options] [file]   Re-encode records with another dialect
//	streamcsv version                    Print version info
//
// If no file is given, or file is "-", reads from stdin.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/nnnkkk7/go-streamcsv"
)

const version = "0.1.0"

func main() {
	log.SetFlags(0)
	log.SetPrefix("streamcsv: ")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch cmd := os.Args[1]; cmd {
	case "read":
		err = cmdRead(os.Args[2:], os.Stdout)
	case "convert":
		err = cmdConvert(os.Args[2:], os.Stdout)
	case "version", "--version", "-v":
		fmt.Printf("streamcsv %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "streamcsv: unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(describe(err))
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `streamcsv - read and write delimited text

Usage:
  streamcsv read [options] [file]      Print every record as a quoted tuple
  streamcsv convert [options] [file]   Re-encode records with another dialect
  streamcsv version                    Print version info

Read options (both commands):
  -delimiter c      Field delimiter byte (default ",")
  -terminator s     Record terminator (default "\n"); Go escapes such as \x02 are accepted
  -quote c          Quote byte (default '"')
  -escape c         Escape byte used when -no-double-quote is set (default "\\")
  -no-double-quote  Read quotes inside quoted fields as escaped, not doubled
  -debug            Log reader and writer events to stderr

Convert options:
  -out-delimiter c, -out-terminator s, -out-quote c, -out-escape c
  -out-no-double-quote
  -quote-style s    never, necessary, always or non_numeric (default necessary)

If no file is given, reads from stdin.
`)
}

// dialectFlags holds the flags shared by both directions.
type dialectFlags struct {
	delimiter     string
	terminator    string
	quote         string
	escape        string
	noDoubleQuote bool
}

func (f *dialectFlags) register(fs *flag.FlagSet, prefix string) {
	fs.StringVar(&f.delimiter, prefix+"delimiter", ",", "field delimiter byte")
	fs.StringVar(&f.terminator, prefix+"terminator", `\n`, "record terminator")
	fs.StringVar(&f.quote, prefix+"quote", `"`, "quote byte")
	fs.StringVar(&f.escape, prefix+"escape", `\\`, "escape byte")
	fs.BoolVar(&f.noDoubleQuote, prefix+"no-double-quote", false, "escape quotes instead of doubling them")
}

func (f *dialectFlags) readerOptions(logger *slog.Logger) (streamcsv.ReaderOptions, error) {
	opts := streamcsv.DefaultReaderOptions()
	var err error
	if opts.Delimiter, err = parseByteArg("delimiter", f.delimiter); err != nil {
		return opts, err
	}
	if opts.Terminator, err = parseBytesArg(f.terminator); err != nil {
		return opts, fmt.Errorf("terminator: %w", err)
	}
	if opts.Quote, err = parseByteArg("quote", f.quote); err != nil {
		return opts, err
	}
	if opts.Escape, err = parseByteArg("escape", f.escape); err != nil {
		return opts, err
	}
	opts.DoubleQuote = !f.noDoubleQuote
	opts.Logger = logger
	return opts, nil
}

func (f *dialectFlags) writerOptions(style string, logger *slog.Logger) (streamcsv.WriterOptions, error) {
	ro, err := f.readerOptions(logger)
	if err != nil {
		return streamcsv.WriterOptions{}, err
	}
	qs, err := streamcsv.ParseQuoteStyle(style)
	if err != nil {
		return streamcsv.WriterOptions{}, err
	}
	return streamcsv.WriterOptions{
		Delimiter:   ro.Delimiter,
		Terminator:  ro.Terminator,
		Quote:       ro.Quote,
		Escape:      ro.Escape,
		DoubleQuote: ro.DoubleQuote,
		QuoteStyle:  qs,
		Logger:      logger,
	}, nil
}

func cmdRead(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("read", flag.ContinueOnError)
	var in dialectFlags
	in.register(fs, "")
	debug := fs.Bool("debug", false, "log events to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	opts, err := in.readerOptions(newLogger(*debug))
	if err != nil {
		return err
	}
	r, err := openInput(fs.Arg(0), opts)
	if err != nil {
		return err
	}
	defer r.Close()

	out := bufio.NewWriter(stdout)
	for record, err := range r.Records() {
		if err != nil {
			_ = out.Flush()
			return err
		}
		fmt.Fprintln(out, formatTuple(record))
	}
	return out.Flush()
}

func cmdConvert(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	var in, outFlags dialectFlags
	in.register(fs, "")
	outFlags.register(fs, "out-")
	style := fs.String("quote-style", "necessary", "never, necessary, always or non_numeric")
	debug := fs.Bool("debug", false, "log events to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := newLogger(*debug)
	ropts, err := in.readerOptions(logger)
	if err != nil {
		return err
	}
	wopts, err := outFlags.writerOptions(*style, logger)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(stdout)
	w, err := streamcsv.NewWriterWithOptions(out, wopts)
	if err != nil {
		return err
	}
	r, err := openInput(fs.Arg(0), ropts)
	if err != nil {
		return err
	}
	defer r.Close()

	for record, err := range r.Records() {
		if err != nil {
			_ = w.Flush()
			return err
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Flush()
}

func openInput(name string, opts streamcsv.ReaderOptions) (*streamcsv.Reader, error) {
	if name == "" || name == "-" {
		return streamcsv.Open(os.Stdin, opts)
	}
	return streamcsv.Open(name, opts)
}

func newLogger(debug bool) *slog.Logger {
	if !debug {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// formatTuple renders a record as ("a", "b").
func formatTuple(record []string) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, field := range record {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Quote(field))
	}
	if len(record) == 1 {
		sb.WriteByte(',')
	}
	sb.WriteByte(')')
	return sb.String()
}

// parseBytesArg interprets Go escape sequences such as \n or \x02.
func parseBytesArg(s string) ([]byte, error) {
	if !strings.Contains(s, `\`) {
		return []byte(s), nil
	}
	u, err := strconv.Unquote(`"` + strings.ReplaceAll(s, `"`, `\"`) + `"`)
	if err != nil {
		return nil, fmt.Errorf("invalid escape sequence in %q", s)
	}
	return []byte(u), nil
}

func parseByteArg(name, s string) (byte, error) {
	b, err := parseBytesArg(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if len(b) != 1 {
		return 0, fmt.Errorf("%s: expected a single byte, got %q", name, b)
	}
	return b[0], nil
}

// describe adds the error kind and position to err's message.
func describe(err error) string {
	kind, ok := streamcsv.KindOf(err)
	if !ok {
		if errors.Is(err, flag.ErrHelp) {
			return "usage requested"
		}
		return err.Error()
	}
	return fmt.Sprintf("[%s] %v", kind, err)
}
