package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/rpggio/codegenesis/internal/domain/project"
	"github.com/rpggio/codegenesis/internal/metrics"
	"github.com/rpggio/codegenesis/internal/repository"
)

const (
	// ProjectKeyPrefix prefixes the full record key of every project.
	ProjectKeyPrefix = "codegenesis_project_"
	// IndexKey holds the ordered list of project summaries.
	IndexKey = "codegenesis_index"
)

// ProjectKey returns the key of a project's full record.
func ProjectKey(id string) string {
	return ProjectKeyPrefix + id
}

// ProjectStore persists projects and their summary index. Read faults
// degrade to empty or absent results; write faults are logged and returned
// so callers can observe them, but never panic.
type ProjectStore struct {
	kv      KV
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewProjectStore creates a ProjectStore over the given backend.
func NewProjectStore(kv KV, logger *slog.Logger, m *metrics.Metrics) *ProjectStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ProjectStore{kv: kv, logger: logger, metrics: m}
}

var _ repository.ProjectStore = (*ProjectStore)(nil)

// Index returns the project summaries, most recently updated first.
func (s *ProjectStore) Index(ctx context.Context) []project.ProjectSummary {
	raw, err := s.kv.Get(ctx, IndexKey)
	if errors.Is(err, ErrKeyNotFound) {
		return []project.ProjectSummary{}
	}
	if err != nil {
		s.fault("index", err)
		return []project.ProjectSummary{}
	}
	list, err := decodeIndex(raw)
	if err != nil {
		s.fault("index", err)
		return []project.ProjectSummary{}
	}
	return list
}

// Get loads a full project record. Absent and unreadable records both
// report repository.ErrNotFound.
func (s *ProjectStore) Get(ctx context.Context, id string) (*project.Project, error) {
	raw, err := s.kv.Get(ctx, ProjectKey(id))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		s.fault("get", err)
		return nil, repository.ErrNotFound
	}
	var proj project.Project
	if err := json.Unmarshal([]byte(raw), &proj); err != nil {
		s.fault("get", fmt.Errorf("%w: project %s: %v", repository.ErrCorrupt, id, err))
		return nil, repository.ErrNotFound
	}
	return &proj, nil
}

// Put upserts the full record and moves its summary to the front of the
// index in a single transaction.
func (s *ProjectStore) Put(ctx context.Context, proj *project.Project) error {
	if proj == nil || proj.ID == "" {
		return fmt.Errorf("%w: project without id", project.ErrInvalidInput)
	}
	data, err := json.Marshal(proj)
	if err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}

	err = s.kv.Update(ctx, func(tx Txn) error {
		list, err := s.readIndex(tx)
		if err != nil {
			return err
		}
		list = upsertSummary(list, proj.Summary())
		encoded, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("encoding index: %w", err)
		}
		if err := tx.Set(ProjectKey(proj.ID), string(data)); err != nil {
			return err
		}
		return tx.Set(IndexKey, string(encoded))
	})
	if err != nil {
		s.fault("put", err)
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}

// Delete removes the full record and its index entry in a single
// transaction. Deleting an absent project is not an error.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	err := s.kv.Update(ctx, func(tx Txn) error {
		list, err := s.readIndex(tx)
		if err != nil {
			return err
		}
		kept := list[:0]
		for _, summary := range list {
			if summary.ID != id {
				kept = append(kept, summary)
			}
		}
		encoded, err := json.Marshal(kept)
		if err != nil {
			return fmt.Errorf("encoding index: %w", err)
		}
		if err := tx.Delete(ProjectKey(id)); err != nil {
			return err
		}
		return tx.Set(IndexKey, string(encoded))
	})
	if err != nil {
		s.fault("delete", err)
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

// readIndex treats a missing or corrupt index as empty so that a write can
// repair it. Any other read error aborts the transaction.
func (s *ProjectStore) readIndex(tx Txn) ([]project.ProjectSummary, error) {
	raw, err := tx.Get(IndexKey)
	if errors.Is(err, ErrKeyNotFound) {
		return []project.ProjectSummary{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	list, err := decodeIndex(raw)
	if err != nil {
		s.fault("index", err)
		return []project.ProjectSummary{}, nil
	}
	return list, nil
}

func (s *ProjectStore) fault(op string, err error) {
	s.metrics.StorageFault(op)
	s.logger.Warn("storage fault", "operation", op, "error", err)
}

func decodeIndex(raw string) ([]project.ProjectSummary, error) {
	var list []project.ProjectSummary
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("%w: index: %v", repository.ErrCorrupt, err)
	}
	if list == nil {
		list = []project.ProjectSummary{}
	}
	return list, nil
}

func upsertSummary(list []project.ProjectSummary, summary project.ProjectSummary) []project.ProjectSummary {
	out := make([]project.ProjectSummary, 0, len(list)+1)
	out = append(out, summary)
	for _, existing := range list {
		if existing.ID != summary.ID {
			out = append(out, existing)
		}
	}
	return out
}
