package project

import (
	"fmt"
	"strings"
	"time"
)

// Patch is a partial update to a project. Nil fields are left unchanged.
// AppendMessages and FileUpserts merge on top of whatever state the patch is
// applied to, so a patch computed from an older snapshot does not discard
// edits saved in between.
type Patch struct {
	Name            *string
	Phase           *Phase
	RequirementsDoc *string
	// Files replaces the whole mapping when non-nil.
	Files          map[string]string
	FileUpserts    map[string]string
	AppendMessages []Message
}

// IsZero reports whether the patch changes nothing but the timestamp.
func (p Patch) IsZero() bool {
	return p.Name == nil && p.Phase == nil && p.RequirementsDoc == nil &&
		p.Files == nil && len(p.FileUpserts) == 0 && len(p.AppendMessages) == 0
}

// CanTransition reports whether a project may move from one phase to another.
func CanTransition(from, to Phase) bool {
	if from == to {
		return true
	}
	return from == PhaseInception && to == PhaseConstruction
}

// Apply returns a new project with the patch applied and UpdatedAt stamped
// to now. UpdatedAt never moves backwards. The receiver is not modified.
func (p *Project) Apply(patch Patch, now time.Time) (*Project, error) {
	next := p.Clone()

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidInput)
		}
		next.Name = name
	}

	if patch.Files != nil {
		files, err := NormalizeFiles(patch.Files)
		if err != nil {
			return nil, err
		}
		next.Files = files
	}

	for filePath, content := range patch.FileUpserts {
		key, err := NormalizePath(filePath)
		if err != nil {
			return nil, err
		}
		next.Files[key] = content
	}

	if patch.RequirementsDoc != nil {
		next.RequirementsDoc = *patch.RequirementsDoc
	}

	for _, m := range patch.AppendMessages {
		if m.ID == "" || !m.Role.Valid() {
			return nil, fmt.Errorf("%w: malformed message", ErrInvalidInput)
		}
		next.Messages = append(next.Messages, m)
	}

	if patch.Phase != nil {
		if !patch.Phase.Valid() || !CanTransition(p.Phase, *patch.Phase) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Phase, *patch.Phase)
		}
		next.Phase = *patch.Phase
	}
	if next.Phase == PhaseConstruction && len(next.Files) == 0 {
		return nil, ErrEmptyFileSet
	}

	if now.After(p.UpdatedAt) {
		next.UpdatedAt = now
	}

	return next, nil
}

// StringPtr is a convenience for building patches.
func StringPtr(s string) *string {
	return &s
}

// PhasePtr is a convenience for building patches.
func PhasePtr(p Phase) *Phase {
	return &p
}
