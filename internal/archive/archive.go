// Package archive implements spec.md §4.4's archive storage engine: an
// append-only log of compacted terminal tasks. Records are never mutated
// after being written; Append only ever grows the file.
package archive

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dexcli/dex/internal/model"
)

const archiveFile = "archive.jsonl"

// Log wraps the archive.jsonl file in a store directory.
type Log struct {
	dir string
}

// Open returns a Log rooted at dir (the same directory as the active
// store — archive.jsonl is a sibling of tasks.jsonl).
func Open(dir string) (*Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, model.StorageIO("create archive directory", err)
	}
	return &Log{dir: dir}, nil
}

func (l *Log) path() string { return filepath.Join(l.dir, archiveFile) }

// Append adds records to the end of archive.jsonl without rewriting the
// file; each record occupies one line. Failures here are surfaced to the
// caller — spec.md §7 requires the active store not be rewritten if this
// fails, since the two-step transfer (internal/compactor) appends first.
func (l *Log) Append(records []*model.ArchivedTask) error {
	if len(records) == 0 {
		return nil
	}
	f, err := os.OpenFile(l.path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return model.StorageIO("open "+archiveFile, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, r := range records {
		line, err := json.Marshal(r)
		if err != nil {
			return model.StorageIO("marshal archived task "+r.ID, err)
		}
		if _, err := w.Write(line); err != nil {
			return model.StorageIO("append "+archiveFile, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return model.StorageIO("append "+archiveFile, err)
		}
	}
	if err := w.Flush(); err != nil {
		return model.StorageIO("flush "+archiveFile, err)
	}
	return f.Sync()
}

// readAll scans every line, validating as it goes (DataCorruption halts
// the read on the first bad line, matching the active store's policy).
func (l *Log) readAll() ([]*model.ArchivedTask, error) {
	f, err := os.Open(l.path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, model.StorageIO("open "+archiveFile, err)
	}
	defer f.Close()

	var out []*model.ArchivedTask
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec model.ArchivedTask
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, model.DataCorruption(
				fmt.Sprintf("malformed archived task on %s line %d: %v", archiveFile, lineNo, err))
		}
		out = append(out, &rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, model.StorageIO("read "+archiveFile, err)
	}
	return out, nil
}

// latestByID collapses the log to the most recent record per id — the
// dedup policy spec.md §9's Open Question 1 leaves ambiguous and this
// implementation resolves by keeping the latest append, since a failure
// between the compactor's append and active-store rewrite can otherwise
// leave duplicate records (spec.md §4.7).
func latestByID(records []*model.ArchivedTask) map[string]*model.ArchivedTask {
	out := make(map[string]*model.ArchivedTask, len(records))
	for _, r := range records {
		out[r.ID] = r
	}
	return out
}

// GetArchived returns the latest record for id, or nil if none exists.
func (l *Log) GetArchived(id string) (*model.ArchivedTask, error) {
	records, err := l.readAll()
	if err != nil {
		return nil, err
	}
	// Walk in reverse so the first hit is the most recent append.
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].ID == id {
			return records[i], nil
		}
	}
	return nil, nil
}

// List performs a full scan, optionally filtering by a case-insensitive
// substring match against name/description/result. Each id appears at
// most once, using its latest record.
func (l *Log) List(query string) ([]*model.ArchivedTask, error) {
	records, err := l.readAll()
	if err != nil {
		return nil, err
	}
	latest := latestByID(records)

	q := strings.ToLower(query)
	out := make([]*model.ArchivedTask, 0, len(latest))
	for _, r := range latest {
		if q == "" || matches(r, q) {
			out = append(out, r)
		}
	}
	return out, nil
}

func matches(r *model.ArchivedTask, q string) bool {
	return strings.Contains(strings.ToLower(r.Name), q) ||
		strings.Contains(strings.ToLower(r.Description), q) ||
		strings.Contains(strings.ToLower(r.Result), q)
}
