package output

import (
	"context"
	"io"
	"sync"

	"github.com/c360/joli/errors"
)

// Console writes each value followed by a newline.
type Console struct {
	w      io.Writer
	indent bool
	mu     sync.Mutex
}

// NewConsole creates a console outputter writing to w.
func NewConsole(w io.Writer, indent bool) *Console {
	return &Console{w: w, indent: indent}
}

// Output implements Outputter.
func (c *Console) Output(_ context.Context, data any) error {
	b, err := Marshal(data, c.indent)
	if err != nil {
		return errors.WrapInvalid(err, "Console", "Output", "marshal value")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.w.Write(append(b, '\n')); err != nil {
		return errors.WrapTransient(err, "Console", "Output", "write value")
	}
	return nil
}
