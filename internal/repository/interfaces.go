package repository

import (
	"context"

	"github.com/rpggio/codegenesis/internal/domain/activity"
	"github.com/rpggio/codegenesis/internal/domain/project"
)

// ProjectStore persists full project records together with the summary index.
// Put and Delete touch both collections atomically.
type ProjectStore interface {
	Index(ctx context.Context) []project.ProjectSummary
	Get(ctx context.Context, id string) (*project.Project, error)
	Put(ctx context.Context, proj *project.Project) error
	Delete(ctx context.Context, id string) error
}

// ActivityRepository manages activity log persistence
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
	List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}
