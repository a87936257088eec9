// Package store implements spec.md §4.3's active storage engine: a
// directory holding tasks.jsonl (one Task per line), sync-state.json, and
// archive.jsonl (owned by the sibling internal/archive package). Writes
// rewrite tasks.jsonl in full and land atomically via a temp-file-then-
// rename in the same directory. Reads validate every line independently;
// the first malformed line aborts the read with DataCorruption — lines
// are never silently skipped.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dexcli/dex/internal/graph"
	"github.com/dexcli/dex/internal/model"
)

const (
	tasksFile       = "tasks.jsonl"
	legacyTasksFile = "tasks.json"
)

// Store is a durable mapping from a directory (its Identifier) to the
// active task set. There is one logical Store per project; callers
// guarantee serial access (spec.md §5 — no file-level locking here).
type Store struct {
	dir string
}

// Open ensures dir exists and returns a Store rooted there. It does not
// read tasks.jsonl; callers call Read() explicitly.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, model.StorageIO("create store directory", err)
	}
	return &Store{dir: dir}, nil
}

// Identifier returns the canonical path naming this store.
func (s *Store) Identifier() string { return s.dir }

// Read returns the full active task set, migrating a legacy single-file
// format in place on first read if tasks.jsonl is absent.
func (s *Store) Read() (model.TaskSet, error) {
	path := filepath.Join(s.dir, tasksFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if migrated, merr := s.migrateLegacy(); merr != nil {
			return nil, merr
		} else if migrated {
			return s.Read()
		}
		return model.TaskSet{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, model.StorageIO("open "+tasksFile, err)
	}
	defer f.Close()

	set := model.TaskSet{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var t model.Task
		if err := json.Unmarshal(line, &t); err != nil {
			return nil, model.DataCorruption(
				fmt.Sprintf("malformed task on %s line %d: %v", tasksFile, lineNo, err),
				"the store cannot be read until this line is repaired or removed",
			)
		}
		if t.ID == "" {
			return nil, model.DataCorruption(
				fmt.Sprintf("task on %s line %d is missing an id", tasksFile, lineNo),
			)
		}
		set[t.ID] = &t
	}
	if err := scanner.Err(); err != nil {
		return nil, model.StorageIO("read "+tasksFile, err)
	}
	return set, nil
}

// Write performs an atomic full rewrite of tasks.jsonl: tasks are written
// to a temp file in the same directory, then renamed over the target so
// readers never observe a partial file.
func (s *Store) Write(set model.TaskSet) error {
	path := filepath.Join(s.dir, tasksFile)
	tmp, err := os.CreateTemp(s.dir, "tasks-*.jsonl.tmp")
	if err != nil {
		return model.StorageIO("create temp file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	w := bufio.NewWriter(tmp)
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	graph.SortTasks(taskSlice(set, ids))
	for _, id := range ids {
		line, err := json.Marshal(set[id])
		if err != nil {
			tmp.Close()
			return model.StorageIO("marshal task "+id, err)
		}
		if _, err := w.Write(line); err != nil {
			tmp.Close()
			return model.StorageIO("write "+tasksFile, err)
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			return model.StorageIO("write "+tasksFile, err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return model.StorageIO("flush "+tasksFile, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return model.StorageIO("sync "+tasksFile, err)
	}
	if err := tmp.Close(); err != nil {
		return model.StorageIO("close temp file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return model.StorageIO("rename into place", err)
	}
	return nil
}

func taskSlice(set model.TaskSet, ids []string) []*model.Task {
	out := make([]*model.Task, len(ids))
	for i, id := range ids {
		out[i] = set[id]
	}
	return out
}

// migrateLegacy converts a pre-JSONL tasks.json (a JSON array of tasks)
// into tasks.jsonl, re-deriving Children/Blocks edges via internal/graph
// so the bidirectional invariants hold even if the legacy file only
// recorded one side of an edge. It reports whether a migration happened.
func (s *Store) migrateLegacy() (bool, error) {
	legacyPath := filepath.Join(s.dir, legacyTasksFile)
	data, err := os.ReadFile(legacyPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, model.StorageIO("read legacy "+legacyTasksFile, err)
	}

	var tasks []*model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return false, model.DataCorruption("legacy "+legacyTasksFile+" is not a valid task array: " + err.Error())
	}

	set := model.TaskSet{}
	for _, t := range tasks {
		t.Children = nil
		t.Blocks = nil
		set[t.ID] = t
	}
	for _, t := range tasks {
		if t.ParentID != nil {
			if err := graph.SyncParentChild(set, t.ID, "", *t.ParentID); err != nil {
				return false, model.DataCorruption("legacy task " + t.ID + " has a dangling parent_id")
			}
		}
		for _, blockerID := range t.BlockedBy {
			if err := graph.SyncAddBlocker(set, blockerID, t.ID); err != nil {
				return false, model.DataCorruption("legacy task " + t.ID + " has a dangling blocked_by entry")
			}
		}
	}

	if err := s.Write(set); err != nil {
		return false, err
	}
	return true, nil
}

// ReadAsync and WriteAsync wrap the synchronous operations for API
// symmetry with callers running in an async runtime (spec.md §4.3). There
// is no real asynchronous I/O underneath — both run the blocking call
// synchronously and invoke done with its result.
func (s *Store) ReadAsync(done func(model.TaskSet, error)) {
	set, err := s.Read()
	done(set, err)
}

func (s *Store) WriteAsync(set model.TaskSet, done func(error)) {
	done(s.Write(set))
}
