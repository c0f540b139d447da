package output

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/c360/joli/errors"
)

// File formats
const (
	FormatJSON  = "json"  // one indented document per value
	FormatJSONL = "jsonl" // one compact document per line
	FormatRaw   = "raw"   // strings verbatim, other values compact
)

// File appends values to a file. Writes are buffered; Close flushes.
type File struct {
	path       string
	format     string
	bufferSize int
	pending    int

	file *os.File
	w    *bufio.Writer
	mu   sync.Mutex
}

// NewFile opens cfg.Path, creating parent directories. The file is truncated
// unless cfg.Append is set.
func NewFile(cfg Config) (*File, error) {
	format := cfg.Format
	if format == "" {
		format = FormatJSONL
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, errors.WrapFatal(err, "File", "NewFile", "create output directory")
	}

	flags := os.O_CREATE | os.O_WRONLY
	if cfg.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(cfg.Path, flags, 0o644)
	if err != nil {
		return nil, errors.WrapFatal(err, "File", "NewFile", "open output file")
	}

	return &File{
		path:       cfg.Path,
		format:     format,
		bufferSize: cfg.BufferSize,
		file:       f,
		w:          bufio.NewWriter(f),
	}, nil
}

// Path returns the output file path
func (f *File) Path() string {
	return f.path
}

func (f *File) encode(data any) ([]byte, error) {
	switch f.format {
	case FormatJSON:
		return json.MarshalIndent(data, "", "  ")
	case FormatRaw:
		return Marshal(data, false)
	default:
		return json.Marshal(data)
	}
}

// Output implements Outputter.
func (f *File) Output(_ context.Context, data any) error {
	b, err := f.encode(data)
	if err != nil {
		return errors.WrapInvalid(err, "File", "Output", "encode value")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return errors.WrapFatal(errors.ErrClosed, "File", "Output", "check state")
	}
	if _, err := f.w.Write(append(b, '\n')); err != nil {
		return errors.WrapTransient(err, "File", "Output", "write value")
	}

	f.pending++
	if f.pending >= f.bufferSize {
		f.pending = 0
		if err := f.w.Flush(); err != nil {
			return errors.WrapTransient(err, "File", "Output", "flush buffer")
		}
	}
	return nil
}

// Close flushes buffered values and closes the file.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}

	flushErr := f.w.Flush()
	closeErr := f.file.Close()
	f.file = nil

	if flushErr != nil {
		return errors.WrapTransient(flushErr, "File", "Close", "flush buffer")
	}
	return errors.Wrap(closeErr, "File", "Close", "close file")
}
