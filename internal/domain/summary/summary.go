// Package summary validates persisted score records and aggregates the most
// recent ones into a report.
package summary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/okian/taskprio/internal/domain/model"
	"github.com/okian/taskprio/internal/domain/scoring"
)

// DefaultLimit is used when no limit is given.
const DefaultLimit = 100

// File is the raw content of one audit log file.
type File struct {
	Name string
	Data []byte
}

// Stats describes what a Build call saw.
type Stats struct {
	Files   int
	Records int
	Skipped int
}

// ParseLimit parses a limit given as text. An empty string yields def.
func ParseLimit(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, ValidateLimit(def)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidLimit, raw)
	}
	return n, ValidateLimit(n)
}

// ValidateLimit requires a positive limit.
func ValidateLimit(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: %d must be positive", ErrInvalidLimit, n)
	}
	return nil
}

// Decode extracts records from one file. The file may hold a single record
// object, an array of them, or a sequence of objects and arrays such as JSON
// lines or a file grown by shell appends; the sequence is flattened in file
// order. A value that fails to parse after the first is counted as skipped
// and decoding resumes at the next line opening an object or array. Entries
// missing a required field, or whose fields have the wrong type, are skipped
// and counted. A file whose first value is not a JSON object or array yields
// ErrMalformedRecord.
func Decode(data []byte) ([]model.ScoreRecord, int, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, 0, fmt.Errorf("%w: empty file", ErrMalformedRecord)
	}

	var (
		entries []json.RawMessage
		skipped int
		first   = true
	)
	for pos := 0; pos >= 0; {
		dec := json.NewDecoder(bytes.NewReader(data[pos:]))
		next := -1
		for dec.More() {
			start := pos + int(dec.InputOffset())
			var value json.RawMessage
			if err := dec.Decode(&value); err != nil {
				if first {
					return nil, 0, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
				}
				skipped++
				next = nextValueLine(data, start+1)
				break
			}
			switch value[0] {
			case '[':
				var items []json.RawMessage
				if err := json.Unmarshal(value, &items); err != nil {
					return nil, 0, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
				}
				entries = append(entries, items...)
			case '{':
				entries = append(entries, value)
			default:
				if first {
					return nil, 0, fmt.Errorf("%w: not a JSON object or array", ErrMalformedRecord)
				}
				skipped++
			}
			first = false
		}
		pos = next
	}

	records := make([]model.ScoreRecord, 0, len(entries))
	for _, raw := range entries {
		rec, err := decodeRecord(raw)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

// nextValueLine returns the offset of the first line at or after from that
// starts with '{' or '[', or -1.
func nextValueLine(data []byte, from int) int {
	for from < len(data) {
		i := bytes.IndexByte(data[from:], '\n')
		if i < 0 {
			return -1
		}
		from += i + 1
		if from < len(data) && (data[from] == '{' || data[from] == '[') {
			return from
		}
	}
	return -1
}

func decodeRecord(raw json.RawMessage) (model.ScoreRecord, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.ScoreRecord{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	for _, key := range model.RequiredFields() {
		v, ok := fields[key]
		if !ok || string(bytes.TrimSpace(v)) == "null" {
			return model.ScoreRecord{}, fmt.Errorf("%w: missing %s", ErrMalformedRecord, key)
		}
	}
	var rec model.ScoreRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.ScoreRecord{}, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return rec, nil
}

// Build produces the report for the limit most recent records across files.
// Files must be ordered newest first; records within a file are assumed to be
// in append order. Ordering is by timestamp, newest first, across all files;
// ties keep the newest-file, latest-appended record first.
func Build(files []File, limit int) (model.SummaryReport, Stats, error) {
	if err := ValidateLimit(limit); err != nil {
		return model.SummaryReport{}, Stats{}, err
	}

	stats := Stats{Files: len(files)}
	var all []model.ScoreRecord
	for _, f := range files {
		records, skipped, err := Decode(f.Data)
		if err != nil {
			stats.Skipped++
			continue
		}
		stats.Skipped += skipped
		for i := len(records) - 1; i >= 0; i-- {
			all = append(all, records[i])
		}
	}
	stats.Records = len(all)

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})
	if len(all) > limit {
		all = all[:limit]
	}

	report := model.EmptyReport(limit)
	if len(all) == 0 {
		return report, stats, nil
	}
	report.TasksSummarized = len(all)
	report.Tasks = all
	report.ByPriority = CountByLevel(all)
	report.AveragePriorityScore = Average(all)
	return report, stats, nil
}

// CountByLevel counts records per tier. Built-in tiers come first in
// CRITICAL, HIGH, MEDIUM, LOW order; any other level follows in the order it
// first appears. Tiers with no records are omitted.
func CountByLevel(records []model.ScoreRecord) []model.LevelCount {
	known := make([]int, len(scoring.KnownLevels()))
	var unknown []model.LevelCount
	unknownIdx := make(map[scoring.Level]int)

	for _, r := range records {
		if rank, ok := scoring.LevelRank(r.PriorityLevel); ok {
			known[rank]++
			continue
		}
		if i, ok := unknownIdx[r.PriorityLevel]; ok {
			unknown[i].Count++
			continue
		}
		unknownIdx[r.PriorityLevel] = len(unknown)
		unknown = append(unknown, model.LevelCount{Level: r.PriorityLevel, Count: 1})
	}

	out := make([]model.LevelCount, 0, len(known)+len(unknown))
	for i, level := range scoring.KnownLevels() {
		if known[i] > 0 {
			out = append(out, model.LevelCount{Level: level, Count: known[i]})
		}
	}
	return append(out, unknown...)
}

// Average returns the arithmetic mean score rounded to two places, or 0 for
// no records.
func Average(records []model.ScoreRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.PriorityScore
	}
	return scoring.Round2(sum / float64(len(records)))
}
