package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/codegenesis/internal/domain/activity"
	"github.com/rpggio/codegenesis/internal/domain/lifecycle"
	"github.com/rpggio/codegenesis/internal/domain/project"
	"github.com/rpggio/codegenesis/internal/repository/mocks"
	"github.com/rpggio/codegenesis/internal/sqlite"
	"github.com/rpggio/codegenesis/internal/storage"
)

func newTestManager(t *testing.T) (*lifecycle.Manager, *mocks.Generator) {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	gen := &mocks.Generator{}
	mgr := lifecycle.NewManager(
		storage.NewProjectStore(sqlite.NewKVStore(db), nil, nil),
		gen,
		activity.NewService(sqlite.NewActivityRepository(db), nil),
		nil,
		lifecycle.Config{SummarizeEvery: 1},
		nil,
	)
	mgr.Init(context.Background())
	return mgr, gen
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestHandler_ProjectMethods(t *testing.T) {
	mgr, _ := newTestManager(t)
	handler := NewHandler(mgr)
	ctx := context.Background()

	first := mgr.Current(ctx)

	result, err := handler.Handle(ctx, "create_project", nil)
	require.NoError(t, err)
	created := result.(*project.Project)
	require.NotEqual(t, first.ID, created.ID)

	result, err = handler.Handle(ctx, "list_projects", nil)
	require.NoError(t, err)
	list := result.(ListProjectsResponse)
	require.Equal(t, created.ID, list.CurrentID)
	require.Len(t, list.Projects, 2)

	result, err = handler.Handle(ctx, "select_project", mustJSON(t, SelectProjectParams{ID: first.ID}))
	require.NoError(t, err)
	require.Equal(t, first.ID, result.(*project.Project).ID)

	result, err = handler.Handle(ctx, "rename_project", mustJSON(t, RenameProjectParams{Name: "Shop"}))
	require.NoError(t, err)
	require.Equal(t, "Shop", result.(*project.Project).Name)

	doc := "# Shop"
	result, err = handler.Handle(ctx, "update_project", mustJSON(t, UpdateProjectParams{RequirementsDoc: &doc}))
	require.NoError(t, err)
	require.Equal(t, "Shop", result.(*project.Project).Name)
	require.Equal(t, doc, result.(*project.Project).RequirementsDoc)

	result, err = handler.Handle(ctx, "delete_project", mustJSON(t, DeleteProjectParams{ID: first.ID}))
	require.NoError(t, err)
	deleted := result.(DeleteProjectResponse)
	require.Equal(t, first.ID, deleted.DeletedID)
	require.Equal(t, created.ID, deleted.Current.ID)

	result, err = handler.Handle(ctx, "get_current_project", nil)
	require.NoError(t, err)
	require.Equal(t, created.ID, result.(*project.Project).ID)
}

func TestHandler_FilesAndActivity(t *testing.T) {
	mgr, _ := newTestManager(t)
	handler := NewHandler(mgr)
	ctx := context.Background()

	_, err := handler.Handle(ctx, "update_file", mustJSON(t, UpdateFileParams{Path: "src/App.vue", Content: "<template/>"}))
	require.NoError(t, err)
	_, err = handler.Handle(ctx, "update_requirements", mustJSON(t, UpdateRequirementsParams{Text: "# Notes"}))
	require.NoError(t, err)

	result, err := handler.Handle(ctx, "get_file_tree", nil)
	require.NoError(t, err)
	tree := result.(FileTreeResponse)
	require.Equal(t, mgr.Current(ctx).ID, tree.ProjectID)
	require.Len(t, tree.Tree, 1)
	require.Equal(t, "src", tree.Tree[0].Name)

	result, err = handler.Handle(ctx, "get_recent_activity", mustJSON(t, GetRecentActivityParams{Limit: 1}))
	require.NoError(t, err)
	entries := result.([]activity.ActivityEntry)
	require.Len(t, entries, 1)
	require.Equal(t, activity.TypeRequirementsUpdated, entries[0].ActivityType)
}

func TestHandler_Conversation(t *testing.T) {
	mgr, gen := newTestManager(t)
	handler := NewHandler(mgr)
	ctx := context.Background()

	gen.On("Converse", mock.Anything, mock.Anything, project.PhaseInception, mock.Anything).Return("Who are the users?", nil)
	gen.On("SummarizeRequirements", mock.Anything, mock.Anything).Return("# Todo", nil)
	gen.On("GenerateProject", mock.Anything, "# Todo").Return(map[string]string{"README.md": "# Todo"}, nil)

	result, err := handler.Handle(ctx, "send_message", mustJSON(t, SendMessageParams{Text: "A todo app"}))
	require.NoError(t, err)
	proj := result.(*project.Project)
	require.Equal(t, "# Todo", proj.RequirementsDoc)
	require.Equal(t, "Who are the users?", proj.Messages[len(proj.Messages)-1].Content)

	result, err = handler.Handle(ctx, "generate_code", nil)
	require.NoError(t, err)
	proj = result.(*project.Project)
	require.Equal(t, project.PhaseConstruction, proj.Phase)
	require.Equal(t, map[string]string{"README.md": "# Todo"}, proj.Files)

	_, err = handler.Handle(ctx, "generate_code", nil)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "INVALID_PHASE", apiErr.Code)
}

func TestHandler_Errors(t *testing.T) {
	mgr, _ := newTestManager(t)
	handler := NewHandler(mgr)
	ctx := context.Background()

	tests := []struct {
		name   string
		method string
		params json.RawMessage
		code   string
	}{
		{"unknown project", "select_project", mustJSON(t, SelectProjectParams{ID: "missing"}), "PROJECT_NOT_FOUND"},
		{"delete unknown", "delete_project", mustJSON(t, DeleteProjectParams{ID: "missing"}), "PROJECT_NOT_FOUND"},
		{"blank message", "send_message", mustJSON(t, SendMessageParams{Text: "  "}), "INVALID_INPUT"},
		{"escaping path", "update_file", mustJSON(t, UpdateFileParams{Path: "../x", Content: ""}), "INVALID_PATH"},
		{"malformed params", "rename_project", json.RawMessage(`{"name": 5}`), "INVALID_INPUT"},
		{"unknown method", "activate", nil, "UNKNOWN_METHOD"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := handler.Handle(ctx, tc.method, tc.params)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			require.Equal(t, tc.code, apiErr.Code)
		})
	}
}

func TestMapError(t *testing.T) {
	require.Nil(t, MapError(nil))
	require.Nil(t, MapError(errors.New("boom")))
	require.Equal(t, "BUSY", MapError(lifecycle.ErrBusy).Code)
	require.Equal(t, "MISSING_REQUIREMENTS", MapError(lifecycle.ErrMissingRequirements).Code)

	wrapped := MapError(&APIError{Code: "X", Message: "y"})
	require.Equal(t, "X", wrapped.Code)
}
