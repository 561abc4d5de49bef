package survey

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// ScanError reports a file that matched a scan pattern but could not be parsed.
type ScanError struct {
	Path string
	Err  error
}

func (e ScanError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ScanError) Unwrap() error {
	return e.Err
}

// Scan lists the files in dir matching pattern, sorted by path, and parses
// each name. Files whose names do not parse are returned as ScanErrors and
// do not stop the scan. When kinds is non-empty only names of those kinds
// are kept.
func Scan(dir, pattern string, kinds ...Kind) ([]Name, []ScanError, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, nil, fmt.Errorf("scan %s: %w", filepath.Join(dir, pattern), err)
	}
	slices.Sort(matches)

	names := make([]Name, 0, len(matches))
	var scanErrs []ScanError
	for _, match := range matches {
		name, err := ParseName(match)
		if err != nil {
			scanErrs = append(scanErrs, ScanError{Path: match, Err: err})
			continue
		}
		if len(kinds) > 0 && !slices.Contains(kinds, name.Kind) {
			continue
		}
		names = append(names, name)
	}
	return names, scanErrs, nil
}

// SortByTimestamp orders names by timestamp key, then by path.
func SortByTimestamp(names []Name) {
	slices.SortStableFunc(names, func(a, b Name) int {
		if c := strings.Compare(a.Timestamp, b.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
}

// Entry is one timestamp in the merged observation/error timeline. At most
// one of Observation and ErrorLog is set by Merge; an entry with neither
// can only arise from callers building entries by hand.
type Entry struct {
	Timestamp   string
	Observation *Name
	ErrorLog    *Name
}

// Merge builds the timeline of distinct timestamps across observation files
// and error logs, in ascending timestamp order. A timestamp present in both
// sets resolves to the observation.
func Merge(observations, errorLogs []Name) []Entry {
	byTimestamp := make(map[string]*Entry, len(observations)+len(errorLogs))
	for i := range observations {
		name := observations[i]
		entry := entryFor(byTimestamp, name.Timestamp)
		if entry.Observation == nil {
			entry.Observation = &name
		}
	}
	for i := range errorLogs {
		name := errorLogs[i]
		entry := entryFor(byTimestamp, name.Timestamp)
		if entry.Observation == nil && entry.ErrorLog == nil {
			entry.ErrorLog = &name
		}
	}

	entries := make([]Entry, 0, len(byTimestamp))
	for _, entry := range byTimestamp {
		entries = append(entries, *entry)
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Timestamp, b.Timestamp)
	})
	return entries
}

func entryFor(index map[string]*Entry, timestamp string) *Entry {
	entry, ok := index[timestamp]
	if !ok {
		entry = &Entry{Timestamp: timestamp}
		index[timestamp] = entry
	}
	return entry
}
