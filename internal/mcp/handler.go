package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpggio/codegenesis/internal/domain/activity"
	"github.com/rpggio/codegenesis/internal/domain/lifecycle"
	"github.com/rpggio/codegenesis/internal/domain/project"
)

const defaultActivityLimit = 20

// Lifecycle defines the project operations exposed over MCP and JSON-RPC.
type Lifecycle interface {
	List(ctx context.Context) []project.ProjectSummary
	Current(ctx context.Context) *project.Project
	Select(ctx context.Context, id string) (*project.Project, error)
	Create(ctx context.Context) *project.Project
	Delete(ctx context.Context, id string) error
	Update(ctx context.Context, patch project.Patch) (*project.Project, error)
	Rename(ctx context.Context, name string) (*project.Project, error)
	SendMessage(ctx context.Context, text string) (*project.Project, error)
	GenerateCode(ctx context.Context) (*project.Project, error)
	UpdateFile(ctx context.Context, path, content string) (*project.Project, error)
	UpdateRequirements(ctx context.Context, text string) (*project.Project, error)
	Tree(ctx context.Context) []*project.FileNode
	RecentActivity(ctx context.Context, limit int) ([]activity.ActivityEntry, error)
}

var _ Lifecycle = (*lifecycle.Manager)(nil)

// Handler dispatches named methods to the lifecycle manager. Both the MCP
// tools and the JSON-RPC endpoint go through it.
type Handler struct {
	lifecycle Lifecycle
}

// NewHandler creates a new MCP handler.
func NewHandler(lc Lifecycle) *Handler {
	return &Handler{lifecycle: lc}
}

// Handle runs method with JSON params. Domain errors come back as *APIError.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	result, err := h.dispatch(ctx, method, params)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (h *Handler) dispatch(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "list_projects":
		return ListProjectsResponse{
			CurrentID: h.lifecycle.Current(ctx).ID,
			Projects:  h.lifecycle.List(ctx),
		}, nil
	case "get_current_project":
		return h.lifecycle.Current(ctx), nil
	case "select_project":
		var req SelectProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.lifecycle.Select(ctx, req.ID)
	case "create_project":
		return h.lifecycle.Create(ctx), nil
	case "delete_project":
		var req DeleteProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.lifecycle.Delete(ctx, req.ID); err != nil {
			return nil, err
		}
		return DeleteProjectResponse{DeletedID: req.ID, Current: h.lifecycle.Current(ctx)}, nil
	case "rename_project":
		var req RenameProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.lifecycle.Rename(ctx, req.Name)
	case "update_project":
		var req UpdateProjectParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.lifecycle.Update(ctx, project.Patch{Name: req.Name, RequirementsDoc: req.RequirementsDoc})
	case "send_message":
		var req SendMessageParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.lifecycle.SendMessage(ctx, req.Text)
	case "generate_code":
		return h.lifecycle.GenerateCode(ctx)
	case "update_file":
		var req UpdateFileParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.lifecycle.UpdateFile(ctx, req.Path, req.Content)
	case "update_requirements":
		var req UpdateRequirementsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.lifecycle.UpdateRequirements(ctx, req.Text)
	case "get_file_tree":
		return FileTreeResponse{
			ProjectID: h.lifecycle.Current(ctx).ID,
			Tree:      h.lifecycle.Tree(ctx),
		}, nil
	case "get_recent_activity":
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.Limit <= 0 {
			req.Limit = defaultActivityLimit
		}
		return h.lifecycle.RecentActivity(ctx, req.Limit)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("%w: decode params: %w", lifecycle.ErrInvalidInput, err)
	}
	return nil
}
