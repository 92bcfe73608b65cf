// Package linkfile reads and writes the line-oriented link files:
//
//	Phone: <identifier>
//	Link: <long url>
//
// Success files carry "Short Link:" instead of "Link:", and every written
// block ends with a dash separator. Failure files parse back as input.
package linkfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sundayezeilo/linkbatch/internal/errx"
	"github.com/sundayezeilo/linkbatch/internal/shortener"
)

const (
	PhonePrefix     = "Phone:"
	LinkPrefix      = "Link:"
	ShortLinkPrefix = "Short Link:"

	// MaxLineSize is the longest accepted input line (1MB).
	MaxLineSize = 1 << 20

	bom = "\ufeff"
)

// Separator ends every written block.
var Separator = strings.Repeat("-", 30)

// Parse reads records from r. A "Phone:" line sets the pending identifier;
// the next "Link:" line pairs with it and clears it. Everything else,
// including a "Link:" line with nothing pending, is skipped.
func Parse(r io.Reader) ([]shortener.LinkRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	var (
		records []shortener.LinkRecord
		pending string
		first   = true
	)
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, bom)
			first = false
		}
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, PhonePrefix):
			pending = strings.TrimSpace(strings.TrimPrefix(line, PhonePrefix))
		case strings.HasPrefix(line, LinkPrefix) && pending != "":
			records = append(records, shortener.LinkRecord{
				Identifier: pending,
				LongURL:    strings.TrimSpace(strings.TrimPrefix(line, LinkPrefix)),
			})
			pending = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// ReadFile parses the file at path. Any open or read failure is an
// errx.Input error.
func ReadFile(path string) ([]shortener.LinkRecord, error) {
	const op = "linkfile.ReadFile"

	f, err := os.Open(path)
	if err != nil {
		return nil, errx.E(op, errx.Input, fmt.Errorf("failed to open %q: %w", path, err))
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, errx.E(op, errx.Input, fmt.Errorf("failed to read %q: %w", path, err))
	}
	return records, nil
}
