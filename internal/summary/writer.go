package summary

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"echosurvey/internal/survey"
)

// Writer appends records to a summary CSV. Each append opens, writes, syncs,
// and closes the file so a failure on one record leaves earlier rows intact.
type Writer struct {
	path     string
	recorded map[string]struct{}
}

// Open creates the CSV with its header when absent and loads the timestamps
// already recorded. An unterminated final line left by an interrupted write
// is closed off before any further append.
func Open(path string) (*Writer, error) {
	w := &Writer{path: path, recorded: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) || (err == nil && len(bytes.TrimSpace(data)) == 0):
		if err := w.writeHeader(); err != nil {
			return nil, err
		}
		return w, nil
	case err != nil:
		return nil, fmt.Errorf("read summary %s: %w", path, err)
	}

	if data[len(data)-1] != '\n' {
		if err := w.appendBytes([]byte("\n")); err != nil {
			return nil, err
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read summary header %s: %w", path, err)
	}
	if !slices.Equal(header, Header) {
		return nil, fmt.Errorf("summary %s: unexpected header %q", path, strings.Join(header, ","))
	}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A torn row only affects its own timestamp.
			continue
		}
		// Only complete rows count; a torn fragment is rewritten on append.
		if len(row) != len(Header) {
			continue
		}
		if name, err := survey.ParseName(row[0]); err == nil {
			w.recorded[name.Timestamp] = struct{}{}
		}
	}
	return w, nil
}

// Path returns the CSV location.
func (w *Writer) Path() string {
	return w.path
}

// Recorded reports whether a row for timestamp already exists.
func (w *Writer) Recorded(timestamp string) bool {
	_, ok := w.recorded[timestamp]
	return ok
}

// Len reports the number of recorded timestamps.
func (w *Writer) Len() int {
	return len(w.recorded)
}

// Append writes one record for timestamp. A timestamp already recorded is
// not written again and Append reports false.
func (w *Writer) Append(timestamp string, rec Record) (bool, error) {
	if w.Recorded(timestamp) {
		return false, nil
	}
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(rec.Row()); err != nil {
		return false, fmt.Errorf("encode summary row: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return false, fmt.Errorf("encode summary row: %w", err)
	}
	if err := w.appendBytes(buf.Bytes()); err != nil {
		return false, err
	}
	w.recorded[timestamp] = struct{}{}
	return true, nil
}

func (w *Writer) writeHeader() error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create summary dir: %w", err)
	}
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("encode summary header: %w", err)
	}
	cw.Flush()
	if err := os.WriteFile(w.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	return nil
}

func (w *Writer) appendBytes(data []byte) (err error) {
	f, err := os.OpenFile(w.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open summary %s: %w", w.path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close summary %s: %w", w.path, cerr)
		}
	}()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("append summary %s: %w", w.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync summary %s: %w", w.path, err)
	}
	return nil
}
