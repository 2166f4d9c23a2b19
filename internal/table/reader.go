// Package table reads the delimited text tables produced by the sequencing
// pipeline. Plain and gzip-compressed files are both accepted.
package table

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Common delimiters.
const (
	Tab   = "\t"
	Comma = ","
)

// Reader reads delimited records one line at a time.
type Reader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	name       string
	delim      string
	lineNumber int
}

// Open opens a table file for reading. A missing file yields an error
// wrapping ErrMissingFile.
func Open(path, delim string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("open table: %w", err)
	}

	r := &Reader{file: file, name: path, delim: delim}

	// Check for gzip magic bytes
	buf := make([]byte, 2)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read table header: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek table: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	} else {
		r.reader = bufio.NewReader(file)
	}

	return r, nil
}

// NewReader creates a table reader over an arbitrary io.Reader. The name is
// used in error messages.
func NewReader(rd io.Reader, name, delim string) *Reader {
	return &Reader{
		reader: bufio.NewReader(rd),
		name:   name,
		delim:  delim,
	}
}

// readLine returns the next raw line without its terminator.
// Returns "", false at end of input.
func (r *Reader) readLine() (string, bool, error) {
	line, err := r.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			if line == "" {
				return "", false, nil
			}
		} else {
			return "", false, fmt.Errorf("read %s: %w", r.name, err)
		}
	}
	r.lineNumber++
	return strings.TrimRight(line, "\r\n"), true, nil
}

// Skip discards the next n lines (typically header lines). Reaching the end
// of input early is not an error.
func (r *Reader) Skip(n int) error {
	for range n {
		if _, ok, err := r.readLine(); err != nil || !ok {
			return err
		}
	}
	return nil
}

// NextLine returns the next non-empty line.
// Returns "", false when there are no more lines.
func (r *Reader) NextLine() (string, bool, error) {
	for {
		line, ok, err := r.readLine()
		if err != nil || !ok {
			return "", false, err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		return line, true, nil
	}
}

// Next reads the next non-empty record split on the reader's delimiter.
// Returns nil, nil when there are no more records.
func (r *Reader) Next() ([]string, error) {
	line, ok, err := r.NextLine()
	if err != nil || !ok {
		return nil, err
	}
	return strings.Split(line, r.delim), nil
}

// Require returns a ParseError if fields has fewer than n entries.
func (r *Reader) Require(fields []string, n int) error {
	if len(fields) < n {
		return r.Errorf("expected at least %d fields, found %d", n, len(fields))
	}
	return nil
}

// Errorf builds a ParseError positioned at the current line.
func (r *Reader) Errorf(format string, args ...any) *ParseError {
	return &ParseError{
		File:    r.name,
		Line:    r.lineNumber,
		Message: fmt.Sprintf(format, args...),
	}
}

// Close closes the reader and underlying file.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// Float parses fields[i] as a float64, returning a ParseError naming the
// column on failure.
func (r *Reader) Float(fields []string, i int, column string) (float64, error) {
	raw := Field(fields, i)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, r.Errorf("invalid %s: %q", column, raw)
	}
	return v, nil
}
