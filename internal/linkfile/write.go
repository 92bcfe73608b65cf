package linkfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sundayezeilo/linkbatch/internal/errx"
	"github.com/sundayezeilo/linkbatch/internal/shortener"
)

// FormatSuccesses writes one "Phone / Short Link / separator" block per outcome.
func FormatSuccesses(w io.Writer, outcomes []shortener.Outcome) error {
	bw := bufio.NewWriter(w)
	for _, o := range outcomes {
		if _, err := fmt.Fprintf(bw, "%s %s\n%s %s\n%s\n",
			PhonePrefix, o.Record.Identifier,
			ShortLinkPrefix, o.ShortURL,
			Separator,
		); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FormatRecords writes one "Phone / Link / separator" block per record, a
// layout Parse reads back.
func FormatRecords(w io.Writer, records []shortener.LinkRecord) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		if _, err := fmt.Fprintf(bw, "%s %s\n%s %s\n%s\n",
			PhonePrefix, r.Identifier,
			LinkPrefix, r.LongURL,
			Separator,
		); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Writer writes result files, always replacing previous content.
type Writer struct {
	atomic bool
	perm   os.FileMode
}

// WriterOptions holds configuration for the Writer.
type WriterOptions struct {
	// Atomic writes to a temp file in the same directory and renames it
	// over the destination. Default true.
	Atomic *bool
	// Perm is the mode of created files. Default 0o644.
	Perm os.FileMode
}

// NewWriter creates a Writer. A nil opts selects the defaults.
func NewWriter(opts *WriterOptions) *Writer {
	if opts == nil {
		opts = &WriterOptions{}
	}
	atomic := true
	if opts.Atomic != nil {
		atomic = *opts.Atomic
	}
	perm := opts.Perm
	if perm == 0 {
		perm = 0o644
	}
	return &Writer{atomic: atomic, perm: perm}
}

// WriteSuccesses replaces path with the success blocks for outcomes.
func (w *Writer) WriteSuccesses(path string, outcomes []shortener.Outcome) error {
	const op = "linkfile.Writer.WriteSuccesses"

	if err := w.write(path, func(out io.Writer) error { return FormatSuccesses(out, outcomes) }); err != nil {
		return errx.E(op, errx.Output, fmt.Errorf("failed to write %q: %w", path, err))
	}
	return nil
}

// WriteRetry replaces path with input-format blocks for records.
func (w *Writer) WriteRetry(path string, records []shortener.LinkRecord) error {
	const op = "linkfile.Writer.WriteRetry"

	if err := w.write(path, func(out io.Writer) error { return FormatRecords(out, records) }); err != nil {
		return errx.E(op, errx.Output, fmt.Errorf("failed to write %q: %w", path, err))
	}
	return nil
}

func (w *Writer) write(dest string, fill func(io.Writer) error) error {
	if w.atomic {
		return w.writeAtomic(dest, fill)
	}
	return w.writeOverwrite(dest, fill)
}

func (w *Writer) writeOverwrite(dest string, fill func(io.Writer) error) error {
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, w.perm)
	if err != nil {
		return err
	}
	if err := fill(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (w *Writer) writeAtomic(dest string, fill func(io.Writer) error) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(dest)+"-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := tmp.Chmod(w.perm); err != nil {
		return fail(err)
	}
	if err := fill(tmp); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
