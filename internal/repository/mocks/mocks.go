package mocks

import (
	"context"

	"github.com/rpggio/codegenesis/internal/domain/activity"
	"github.com/rpggio/codegenesis/internal/domain/project"
	"github.com/stretchr/testify/mock"
)

// ProjectStore is a mock for repository.ProjectStore.
type ProjectStore struct {
	mock.Mock
}

func (m *ProjectStore) Index(ctx context.Context) []project.ProjectSummary {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]project.ProjectSummary); ok {
		return list
	}
	return nil
}

func (m *ProjectStore) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if proj, ok := args.Get(0).(*project.Project); ok {
		return proj, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectStore) Put(ctx context.Context, proj *project.Project) error {
	args := m.Called(ctx, proj)
	return args.Error(0)
}

func (m *ProjectStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Generator is a mock for lifecycle.Generator.
type Generator struct {
	mock.Mock
}

func (m *Generator) Converse(ctx context.Context, messages []project.Message, phase project.Phase, requirementsDoc string) (string, error) {
	args := m.Called(ctx, messages, phase, requirementsDoc)
	return args.String(0), args.Error(1)
}

func (m *Generator) SummarizeRequirements(ctx context.Context, messages []project.Message) (string, error) {
	args := m.Called(ctx, messages)
	return args.String(0), args.Error(1)
}

func (m *Generator) GenerateProject(ctx context.Context, requirementsDoc string) (map[string]string, error) {
	args := m.Called(ctx, requirementsDoc)
	if files, ok := args.Get(0).(map[string]string); ok {
		return files, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for repository.ActivityRepository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
