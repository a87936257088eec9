package service

import (
	"context"

	"github.com/dexcli/dex/internal/model"
)

// Archive compacts id's whole lineage into the archive log via the
// injected Archiver and removes it from the active store, cleaning up
// dangling references the same way Delete does (spec.md §4.3, §4.5).
// id need not be a root task: it must be completed, with every
// descendant completed and no incomplete ancestor; the Archiver
// enforces eligibility.
func (s *Service) Archive(ctx context.Context, id string) (*model.ArchivedTask, error) {
	if s.archiver == nil {
		return nil, model.Internal("archive: no archiver configured", nil)
	}
	rec, err := s.archiver.ArchiveRoot(ctx, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}
