package streamcsv

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
)

// Open creates a Reader over resource, which may be:
//   - a string, taken as a filesystem path; the Reader closes the file on Close
//   - a []byte
//   - an io.Reader yielding raw bytes
//
// A missing path fails with KindNotFound. A directory, or any value that is
// not a byte stream (a text-only io.RuneReader, a fmt.Stringer, ...), fails
// with KindInvalidResourceKind. Options are validated before the path is
// opened.
func Open(resource any, opts ReaderOptions) (*Reader, error) {
	if _, err := opts.dialect(); err != nil {
		return nil, err
	}
	log := loggerOrDiscard(opts.Logger)

	switch res := resource.(type) {
	case string:
		f, err := openPath(res, log)
		if err != nil {
			return nil, err
		}
		r, err := NewReaderWithOptions(f, opts)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		r.closer = f
		return r, nil
	case []byte:
		return NewReaderWithOptions(bytes.NewReader(res), opts)
	case io.Reader:
		return NewReaderWithOptions(res, opts)
	default:
		return nil, newError(KindInvalidResourceKind, nil,
			"expected a path, []byte or io.Reader of raw bytes, got %T", resource)
	}
}

// openPath opens path for sequential reading.
func openPath(path string, log *slog.Logger) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Kind: KindNotFound, Msg: "cannot open source", Err: err}
		}
		return nil, &Error{Kind: KindIO, Msg: "cannot open source", Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, &Error{Kind: KindIO, Msg: "cannot stat source", Err: err}
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, newError(KindInvalidResourceKind, nil, "%s is a directory", path)
	}
	if err := adviseSequential(f); err != nil {
		log.Debug("streamcsv: fadvise failed", slog.String("path", path), slog.Any("error", err))
	}
	log.Debug("streamcsv: opened source", slog.String("path", path), slog.Int64("size", info.Size()))
	return f, nil
}
