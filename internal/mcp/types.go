package mcp

import (
	"github.com/rpggio/codegenesis/internal/domain/project"
)

type NoParams struct{}

type SelectProjectParams struct {
	ID string `json:"id" jsonschema:"Project ID from list_projects"`
}

type DeleteProjectParams struct {
	ID string `json:"id" jsonschema:"Project ID to delete"`
}

type RenameProjectParams struct {
	Name string `json:"name" jsonschema:"New display name for the current project"`
}

type UpdateProjectParams struct {
	Name            *string `json:"name,omitempty" jsonschema:"New display name"`
	RequirementsDoc *string `json:"requirements_doc,omitempty" jsonschema:"Replacement requirements document (Markdown)"`
}

type SendMessageParams struct {
	Text string `json:"text" jsonschema:"Message to send in the current project's conversation"`
}

type UpdateFileParams struct {
	Path    string `json:"path" jsonschema:"Relative file path, for example src/main.js"`
	Content string `json:"content" jsonschema:"Full file content"`
}

type UpdateRequirementsParams struct {
	Text string `json:"text" jsonschema:"Replacement requirements document (Markdown)"`
}

type GetRecentActivityParams struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum entries to return (default 20)"`
}

type ListProjectsResponse struct {
	CurrentID string                   `json:"current_id"`
	Projects  []project.ProjectSummary `json:"projects"`
}

type DeleteProjectResponse struct {
	DeletedID string           `json:"deleted_id"`
	Current   *project.Project `json:"current"`
}

type FileTreeResponse struct {
	ProjectID string              `json:"project_id"`
	Tree      []*project.FileNode `json:"tree"`
}
