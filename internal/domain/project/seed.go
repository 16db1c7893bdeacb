package project

import "time"

const (
	// WelcomeMessage seeds every new project conversation.
	WelcomeMessage = "Hi! I'm your AI product architect. We're in the **Inception** phase.\n\n" +
		"Tell me what kind of application you want to build, and I'll help you work out the " +
		"requirements, user stories and business rules."

	// PlaceholderRequirements seeds the requirements document.
	PlaceholderRequirements = "# Project Requirements\n\nTo be filled in..."
)

// New synthesizes an empty INCEPTION project seeded with one model-role
// welcome message and the placeholder requirements document.
func New(id, welcomeID string, now time.Time) *Project {
	return &Project{
		ID:        id,
		Name:      "New Project " + now.Format("15:04:05"),
		CreatedAt: now,
		UpdatedAt: now,
		Phase:     PhaseInception,
		Messages: []Message{{
			ID:        welcomeID,
			Role:      RoleModel,
			Content:   WelcomeMessage,
			Timestamp: now,
		}},
		RequirementsDoc: PlaceholderRequirements,
		Files:           map[string]string{},
	}
}
