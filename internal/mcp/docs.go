package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `codegenesis turns a conversation about a product into a generated full-stack application.

Core concepts:
- Project: conversation + requirements document + phase + generated files. Exactly one project is current.
- Phase INCEPTION: discuss the product; after each reply the requirements document is refreshed from the conversation.
- Phase CONSTRUCTION: code exists; the AI acts as an advisor. There is no way back to INCEPTION.
- Only one AI call runs at a time. A second send_message/generate_code while one is running fails with BUSY.

Default workflow:
1) Orient: get_current_project (or list_projects + select_project).
2) Elicit: send_message until the requirements document describes the product. Edit it directly with update_requirements if needed.
3) Generate: generate_code. On failure a notice is appended and the project stays in INCEPTION; retry later.
4) Refine: update_file for manual edits, send_message for advice, get_file_tree to browse.

Docs:
- codegenesis://docs/lifecycle
- codegenesis://docs/errors
`

// docResource is a static markdown document served read-only.
type docResource struct {
	URI, Name, Title, Description string
	Content                       string
}

var docResources = []docResource{
	{
		URI:         "codegenesis://docs/lifecycle",
		Name:        "docs_lifecycle",
		Title:       "Project lifecycle",
		Description: "Phases, system notices and what each tool changes.",
		Content: `# Project lifecycle

## Phases

| Phase | Meaning | AI role |
|---|---|---|
| INCEPTION | requirements are being elicited | product manager asking about features, roles and stories |
| CONSTRUCTION | code has been generated | senior developer giving advice |

The only transition is INCEPTION -> CONSTRUCTION, performed by generate_code
after the generator returns a non-empty file set. The file set replaces
files entirely and the phase change happens in the same update.

## Messages

Roles are user, model and system. System messages are lifecycle notices:

- a progress notice when generate_code starts
- a failure notice when no file set was committed
- a notice when a reply could not be produced

A successful generation is announced by a model message with the file count.

System messages are never sent back to the AI as conversation history.

## Index

list_projects returns summaries (id, name, updatedAt) ordered by most
recent update first. Every mutation moves the project to the front.
Deleting the last project creates a fresh one, so there is always a
current project.
`,
	},
	{
		URI:         "codegenesis://docs/errors",
		Name:        "docs_errors",
		Title:       "Error codes",
		Description: "Stable error codes returned by tools and how to recover.",
		Content: `# Error codes

| Code | When | Recovery |
|---|---|---|
| PROJECT_NOT_FOUND | select_project/delete_project with an unknown id | call list_projects |
| BUSY | an AI call is already running | wait and retry |
| INVALID_PHASE | generate_code in CONSTRUCTION | create_project to start over |
| MISSING_REQUIREMENTS | generate_code with an empty requirements document | send_message or update_requirements |
| INVALID_PATH | update_file with an absolute or escaping path | use a relative path |
| INVALID_INPUT | empty message, blank name, malformed arguments | fix the arguments |

A failed reply or failed code generation is not an error: the tool succeeds
and the project carries a system notice describing the failure.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    markdownMIME,
			Size:        int64(len(doc.Content)),
		}, doc.read)
	}
}

const markdownMIME = "text/markdown"

func (d docResource) read(context.Context, *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{{URI: d.URI, MIMEType: markdownMIME, Text: d.Content}},
	}, nil
}
