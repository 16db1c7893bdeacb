package lifecycle

import (
	"context"

	"github.com/rpggio/codegenesis/internal/domain/activity"
	"github.com/rpggio/codegenesis/internal/domain/project"
)

// Store persists projects and the summary index.
type Store interface {
	Index(ctx context.Context) []project.ProjectSummary
	Get(ctx context.Context, id string) (*project.Project, error)
	Put(ctx context.Context, proj *project.Project) error
	Delete(ctx context.Context, id string) error
}

// Generator is the external AI generation service.
type Generator interface {
	Converse(ctx context.Context, messages []project.Message, phase project.Phase, requirementsDoc string) (string, error)
	// SummarizeRequirements may return "" to signal no change.
	SummarizeRequirements(ctx context.Context, messages []project.Message) (string, error)
	GenerateProject(ctx context.Context, requirementsDoc string) (map[string]string, error)
}

// ActivityLog records and lists lifecycle events.
type ActivityLog interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}
