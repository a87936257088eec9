package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/dexcli/dex/internal/model"
)

const syncStateFile = "sync-state.json"

// SyncState is the per-store record spec.md §3.1 names: the last
// successful GitHub sync time, or nil if sync has never succeeded.
type SyncState struct {
	LastSync *string `json:"lastSync"`
}

// ReadSyncState returns the store's sync state, or a zero-value state if
// sync-state.json does not exist yet.
func (s *Store) ReadSyncState() (*SyncState, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, syncStateFile))
	if os.IsNotExist(err) {
		return &SyncState{}, nil
	}
	if err != nil {
		return nil, model.StorageIO("read "+syncStateFile, err)
	}
	var st SyncState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, model.DataCorruption(syncStateFile + " is not valid JSON: " + err.Error())
	}
	return &st, nil
}

// WriteSyncState atomically rewrites sync-state.json. Sync state is
// updated only on a successful GitHub sync (spec.md §4.6).
func (s *Store) WriteSyncState(st *SyncState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return model.StorageIO("marshal "+syncStateFile, err)
	}
	tmp, err := os.CreateTemp(s.dir, "sync-state-*.json.tmp")
	if err != nil {
		return model.StorageIO("create temp file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return model.StorageIO("write "+syncStateFile, err)
	}
	if err := tmp.Close(); err != nil {
		return model.StorageIO("close temp file", err)
	}
	return os.Rename(tmpPath, filepath.Join(s.dir, syncStateFile))
}
