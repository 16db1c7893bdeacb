package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/rpggio/codegenesis/internal/domain/activity"
	"github.com/rpggio/codegenesis/internal/domain/project"
	"github.com/rpggio/codegenesis/internal/metrics"
	"github.com/rpggio/codegenesis/internal/repository"
)

// Config tunes the Manager.
type Config struct {
	// SummarizeEvery controls requirements summarization after Inception
	// replies: 1 summarizes every turn, N every Nth user turn, 0 never.
	SummarizeEvery int
	// Now and NewID default to UTC wall-clock milliseconds and random UUIDs.
	Now   func() time.Time
	NewID func() string
}

// State is the published view of the manager.
type State struct {
	Current *project.Project         `json:"current"`
	Index   []project.ProjectSummary `json:"index"`
	Busy    bool                     `json:"busy"`
}

// Manager is the sole writer of project state. It owns the current project
// and the in-memory index, and applies every mutation through
// project.Patch on top of the latest state of the target project.
type Manager struct {
	store      Store
	generator  Generator
	activities ActivityLog
	metrics    *metrics.Metrics
	logger     *slog.Logger

	summarizeEvery int
	now            func() time.Time
	newID          func() string

	// flight admits one send-message or generate-code operation at a time.
	flight *semaphore.Weighted

	mu      sync.Mutex
	ready   bool
	current *project.Project
	index   []project.ProjectSummary
	busy    bool

	subMu     sync.Mutex
	nextSubID int
	subs      map[int]func(State)
}

// NewManager creates a Manager. activities, m and logger may be nil.
func NewManager(store Store, generator Generator, activities ActivityLog, m *metrics.Metrics, cfg Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := cfg.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
	}
	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	summarizeEvery := cfg.SummarizeEvery
	if summarizeEvery < 0 {
		summarizeEvery = 0
	}
	return &Manager{
		store:          store,
		generator:      generator,
		activities:     activities,
		metrics:        m,
		logger:         logger,
		summarizeEvery: summarizeEvery,
		now:            now,
		newID:          newID,
		flight:         semaphore.NewWeighted(1),
		subs:           map[int]func(State){},
	}
}

// Init loads the index and selects its first readable entry, creating a
// project when there is none. Every other operation initializes lazily.
func (m *Manager) Init(ctx context.Context) State {
	m.mu.Lock()
	m.ensureLocked(ctx)
	m.mu.Unlock()
	m.publish()
	return m.State()
}

// State returns a snapshot of the current project, the index and the busy flag.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// List returns the index, most recently updated first.
func (m *Manager) List(ctx context.Context) []project.ProjectSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLocked(ctx)
	return append([]project.ProjectSummary{}, m.index...)
}

// Current returns a copy of the current project.
func (m *Manager) Current(ctx context.Context) *project.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLocked(ctx)
	return m.current.Clone()
}

// Select makes the stored project current. On failure the selection is
// unchanged.
func (m *Manager) Select(ctx context.Context, id string) (proj *project.Project, err error) {
	defer func() { m.metrics.Operation("select_project", err) }()

	m.mu.Lock()
	m.ensureLocked(ctx)
	if m.current.ID == id {
		proj = m.current.Clone()
		m.mu.Unlock()
		return proj, nil
	}
	loaded, err := m.store.Get(ctx, id)
	if err != nil {
		m.mu.Unlock()
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("loading project: %w", err)
	}
	m.current = loaded
	if !containsSummary(m.index, id) {
		m.index = append(m.index, loaded.Summary())
	}
	proj = loaded.Clone()
	m.mu.Unlock()

	m.publish()
	return proj, nil
}

// Create persists a freshly seeded project, puts it at the front of the
// index and makes it current.
func (m *Manager) Create(ctx context.Context) *project.Project {
	m.mu.Lock()
	m.ensureLocked(ctx)
	proj := m.createLocked(ctx).Clone()
	m.mu.Unlock()

	m.metrics.Operation("create_project", nil)
	m.publish()
	return proj
}

// Delete removes a project and its index entry. When the current project is
// deleted, the first remaining entry is selected or a new project created.
func (m *Manager) Delete(ctx context.Context, id string) (err error) {
	defer func() { m.metrics.Operation("delete_project", err) }()

	m.mu.Lock()
	m.ensureLocked(ctx)
	if !containsSummary(m.index, id) && m.current.ID != id {
		if _, err := m.store.Get(ctx, id); err != nil {
			m.mu.Unlock()
			return ErrProjectNotFound
		}
	}
	// A dropped write is logged by the store; memory still reflects the delete.
	_ = m.store.Delete(context.WithoutCancel(ctx), id)
	m.index = removeSummary(m.index, id)
	if m.current.ID == id {
		m.current = nil
		m.selectFirstLocked(ctx)
	}
	m.mu.Unlock()

	m.record(ctx, id, activity.TypeProjectDeleted, "deleted project", nil)
	m.publish()
	return nil
}

// Update applies a partial update to the current project. It is the single
// path through which every other mutation is persisted.
func (m *Manager) Update(ctx context.Context, patch project.Patch) (proj *project.Project, err error) {
	defer func() { m.metrics.Operation("update_project", err) }()

	proj, err = m.applyCurrent(ctx, patch)
	if err != nil {
		return nil, err
	}
	m.record(ctx, proj.ID, activity.TypeProjectUpdated, "updated project", map[string]any{
		"name":             patch.Name != nil,
		"requirements_doc": patch.RequirementsDoc != nil,
	})
	return proj, nil
}

// Rename changes the current project's name.
func (m *Manager) Rename(ctx context.Context, name string) (*project.Project, error) {
	return m.Update(ctx, project.Patch{Name: &name})
}

// UpdateFile upserts one file of the current project. Content is opaque.
func (m *Manager) UpdateFile(ctx context.Context, path, content string) (proj *project.Project, err error) {
	defer func() { m.metrics.Operation("update_file", err) }()

	proj, err = m.applyCurrent(ctx, project.Patch{FileUpserts: map[string]string{path: content}})
	if err != nil {
		return nil, err
	}
	m.record(ctx, proj.ID, activity.TypeFileUpdated, "updated file", map[string]any{"path": path, "bytes": len(content)})
	return proj, nil
}

// UpdateRequirements replaces the requirements document verbatim.
func (m *Manager) UpdateRequirements(ctx context.Context, text string) (proj *project.Project, err error) {
	defer func() { m.metrics.Operation("update_requirements", err) }()

	proj, err = m.applyCurrent(ctx, project.Patch{RequirementsDoc: &text})
	if err != nil {
		return nil, err
	}
	m.record(ctx, proj.ID, activity.TypeRequirementsUpdated, "edited requirements", map[string]any{"bytes": len(text)})
	return proj, nil
}

// Tree returns the derived folder view of the current project's files.
func (m *Manager) Tree(ctx context.Context) []*project.FileNode {
	return project.BuildTree(m.Current(ctx).Files)
}

// RecentActivity lists the current project's activity, newest first.
func (m *Manager) RecentActivity(ctx context.Context, limit int) ([]activity.ActivityEntry, error) {
	if m.activities == nil {
		return []activity.ActivityEntry{}, nil
	}
	id := m.Current(ctx).ID
	entries, err := m.activities.GetRecentActivity(ctx, activity.ListActivityOptions{ProjectID: id, Limit: limit})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []activity.ActivityEntry{}
	}
	return entries, nil
}

// Subscribe registers fn to receive the state after every change. The
// returned func removes the subscription.
func (m *Manager) Subscribe(fn func(State)) func() {
	m.subMu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) publish() {
	state := m.State()
	m.subMu.Lock()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

func (m *Manager) setBusy(busy bool) {
	m.mu.Lock()
	m.busy = busy
	m.mu.Unlock()
	m.metrics.SetBusy(busy)
	m.publish()
}

func (m *Manager) snapshotLocked() State {
	return State{
		Current: m.current.Clone(),
		Index:   append([]project.ProjectSummary{}, m.index...),
		Busy:    m.busy,
	}
}

func (m *Manager) ensureLocked(ctx context.Context) {
	if !m.ready {
		m.index = m.store.Index(ctx)
		m.ready = true
	}
	if m.current == nil {
		m.selectFirstLocked(ctx)
	}
}

// selectFirstLocked makes the first readable index entry current, or
// creates a project when no entry can be loaded.
func (m *Manager) selectFirstLocked(ctx context.Context) {
	for _, summary := range m.index {
		proj, err := m.store.Get(ctx, summary.ID)
		if err == nil {
			m.current = proj
			return
		}
		m.logger.Warn("skipping unreadable project", "project_id", summary.ID, "error", err)
	}
	m.createLocked(ctx)
}

func (m *Manager) createLocked(ctx context.Context) *project.Project {
	proj := project.New(m.newID(), m.newID(), m.now())
	m.current = proj
	m.saveLocked(ctx, proj)
	m.logger.Info("project created", "project_id", proj.ID, "name", proj.Name)
	m.record(ctx, proj.ID, activity.TypeProjectCreated, "created project", map[string]any{"name": proj.Name})
	return proj
}

func (m *Manager) applyCurrent(ctx context.Context, patch project.Patch) (*project.Project, error) {
	m.mu.Lock()
	m.ensureLocked(ctx)
	proj, err := m.applyLocked(ctx, m.current.ID, patch)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	m.publish()
	return proj, nil
}

// apply merges patch into the latest state of project id, which need not be
// current. A project deleted in the meantime yields ErrProjectNotFound.
func (m *Manager) apply(ctx context.Context, id string, patch project.Patch) (*project.Project, error) {
	m.mu.Lock()
	proj, err := m.applyLocked(ctx, id, patch)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	m.publish()
	return proj, nil
}

func (m *Manager) applyLocked(ctx context.Context, id string, patch project.Patch) (*project.Project, error) {
	base, err := m.latestLocked(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := base.Apply(patch, m.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	m.saveLocked(ctx, next)
	return next.Clone(), nil
}

func (m *Manager) latestLocked(ctx context.Context, id string) (*project.Project, error) {
	if m.current != nil && m.current.ID == id {
		return m.current, nil
	}
	proj, err := m.store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	return proj, nil
}

// saveLocked persists proj and mirrors the store's index ordering in memory.
// Write faults are logged by the store and otherwise dropped.
func (m *Manager) saveLocked(ctx context.Context, proj *project.Project) {
	_ = m.store.Put(context.WithoutCancel(ctx), proj)
	m.index = upsertSummary(m.index, proj.Summary())
	if m.current != nil && m.current.ID == proj.ID {
		m.current = proj
	}
}

func (m *Manager) record(ctx context.Context, projectID string, activityType activity.ActivityType, summary string, details map[string]any) {
	if m.activities == nil {
		return
	}
	entry := &activity.ActivityEntry{
		ProjectID:    projectID,
		ActivityType: activityType,
		Summary:      summary,
		CreatedAt:    m.now(),
	}
	if len(details) > 0 {
		if data, err := json.Marshal(details); err == nil {
			entry.Details = string(data)
		}
	}
	if err := m.activities.LogActivity(context.WithoutCancel(ctx), entry); err != nil {
		m.logger.Warn("failed to record activity", "type", activityType, "project_id", projectID, "error", err)
	}
}

func containsSummary(list []project.ProjectSummary, id string) bool {
	for _, s := range list {
		if s.ID == id {
			return true
		}
	}
	return false
}

func removeSummary(list []project.ProjectSummary, id string) []project.ProjectSummary {
	out := make([]project.ProjectSummary, 0, len(list))
	for _, s := range list {
		if s.ID != id {
			out = append(out, s)
		}
	}
	return out
}

func upsertSummary(list []project.ProjectSummary, summary project.ProjectSummary) []project.ProjectSummary {
	out := make([]project.ProjectSummary, 0, len(list)+1)
	out = append(out, summary)
	for _, s := range list {
		if s.ID != summary.ID {
			out = append(out, s)
		}
	}
	return out
}
