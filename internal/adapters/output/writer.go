// Package output provides adapters for writing application output.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/kballard/go-shellquote"

	"github.com/MyCarrier-DevOps/build-docs/internal/domain"
)

// Writer echoes commands to the configured output destination.
// By default, it writes to stdout.
type Writer struct {
	out io.Writer
}

// NewWriter creates a new Writer that writes to stdout.
func NewWriter() *Writer {
	return &Writer{out: os.Stdout}
}

// NewWriterWithOutput creates a new Writer with a custom output destination.
// This is useful for testing.
func NewWriterWithOutput(out io.Writer) *Writer {
	return &Writer{out: out}
}

// WriteCommand writes cmd as a single shell-quoted line, so it can be
// copied and rerun by hand.
func (w *Writer) WriteCommand(cmd domain.BuildCommand) error {
	_, err := fmt.Fprintln(w.out, shellquote.Join(cmd...))
	return err
}
