package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter writes to every writer even if some of them fail, so a
// broken log file never silences STDOUT. Unlike io.MultiWriter it does not
// stop at the first error.
type CombinedWriter struct {
	writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		writers: writers,
	}
}

// Write reports len(p) when at least one writer took the whole message.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var err error
	written := false
	for _, w := range cw.writers {
		n, werr := w.Write(p)
		if werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		if n == len(p) {
			written = true
		}
	}

	if !written {
		return 0, err
	}
	return len(p), err
}
