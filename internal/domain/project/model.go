package project

import "time"

// Phase is the lifecycle stage of a project.
type Phase string

const (
	PhaseInception    Phase = "INCEPTION"
	PhaseConstruction Phase = "CONSTRUCTION"
)

// Valid reports whether the phase is a known value.
func (p Phase) Valid() bool {
	return p == PhaseInception || p == PhaseConstruction
}

// Role identifies the author of a message.
type Role string

const (
	// RoleUser is human input.
	RoleUser Role = "user"
	// RoleModel is an AI-generated reply.
	RoleModel Role = "model"
	// RoleSystem is a lifecycle or status notice. It is not part of the
	// conversation history sent back to the generation service.
	RoleSystem Role = "system"
)

// Valid reports whether the role is a known value.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel || r == RoleSystem
}

// Message is one turn in a project conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Project is the persisted unit combining conversation, requirements,
// phase and generated files.
type Project struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
	Phase           Phase             `json:"phase"`
	Messages        []Message         `json:"messages"`
	RequirementsDoc string            `json:"requirementsDoc"`
	Files           map[string]string `json:"files"`
}

// ProjectSummary is the index projection of a project
type ProjectSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary returns the index entry for the project.
func (p *Project) Summary() ProjectSummary {
	return ProjectSummary{ID: p.ID, Name: p.Name, UpdatedAt: p.UpdatedAt}
}

// Clone returns a deep copy so reducers never alias the caller's slices or maps.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	out := *p
	out.Messages = append([]Message(nil), p.Messages...)
	out.Files = make(map[string]string, len(p.Files))
	for k, v := range p.Files {
		out.Files[k] = v
	}
	return &out
}

// ConversationTurns returns the user and model messages in order, skipping
// system notices.
func (p *Project) ConversationTurns() []Message {
	turns := make([]Message, 0, len(p.Messages))
	for _, m := range p.Messages {
		if m.Role == RoleSystem {
			continue
		}
		turns = append(turns, m)
	}
	return turns
}

// UserTurns counts messages authored by the user.
func (p *Project) UserTurns() int {
	n := 0
	for _, m := range p.Messages {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}
