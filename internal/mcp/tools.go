package mcp

import (
	"context"
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools exposes every lifecycle method as an MCP tool.
func registerTools(server *sdkmcp.Server, h *Handler) {
	// Projects
	addTool[NoParams](server, h, "list_projects", "List saved projects, most recently updated first, with the current project ID")
	addTool[NoParams](server, h, "get_current_project", "Get the full current project: conversation, requirements document, phase and files")
	addTool[SelectProjectParams](server, h, "select_project", "Make a saved project the current project")
	addTool[NoParams](server, h, "create_project", "Create a new project in the INCEPTION phase and make it current")
	addTool[DeleteProjectParams](server, h, "delete_project", "Delete a project. Deleting the current project selects the most recent remaining one")
	addTool[RenameProjectParams](server, h, "rename_project", "Rename the current project")
	addTool[UpdateProjectParams](server, h, "update_project", "Update the current project's name and/or requirements document")

	// Conversation and generation
	addTool[SendMessageParams](server, h, "send_message", "Send a message to the AI in the current project. During INCEPTION the requirements document is refreshed from the conversation")
	addTool[NoParams](server, h, "generate_code", "Generate the application source from the requirements document and move the project to CONSTRUCTION")

	// Editing
	addTool[UpdateFileParams](server, h, "update_file", "Create or replace one file of the current project")
	addTool[UpdateRequirementsParams](server, h, "update_requirements", "Replace the current project's requirements document")
	addTool[NoParams](server, h, "get_file_tree", "Get the current project's files as a folder tree")
	addTool[GetRecentActivityParams](server, h, "get_recent_activity", "List recent lifecycle events of the current project, newest first")
}

func addTool[In any](server *sdkmcp.Server, h *Handler, name, description string) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{Name: name, Description: description},
		func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
			params, err := json.Marshal(in)
			if err != nil {
				return nil, nil, err
			}
			result, err := h.Handle(ctx, name, params)
			if err != nil {
				return errorResult(err), nil, nil
			}
			return jsonResult(result, false), nil, nil
		})
}

func errorResult(err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	if apiErr == nil {
		apiErr = &APIError{Code: "INTERNAL", Message: err.Error()}
	}
	return jsonResult(apiErr, true)
}

func jsonResult(payload any, isError bool) *sdkmcp.CallToolResult {
	data, err := json.Marshal(payload)
	if err != nil {
		data = []byte(formatPayload(payload))
	}
	return &sdkmcp.CallToolResult{
		IsError: isError,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
