package project

import (
	"fmt"
	"time"
)

const (
	transitionNotice = "Generating the project structure from the requirements document... " +
		"This can take a few minutes."
	generationFailedNotice = "Code generation failed. Please try again, and make sure the " +
		"generation API key is configured and the model is available."
	replyFailedNotice = "The AI service could not be reached. Your message was saved; please try again."
)

// NewMessage builds a message with the given identity and timestamp.
func NewMessage(id string, role Role, content string, now time.Time) Message {
	return Message{ID: id, Role: role, Content: content, Timestamp: now}
}

// TransitionNotice announces the start of code generation.
func TransitionNotice(id string, now time.Time) Message {
	return NewMessage(id, RoleSystem, transitionNotice, now)
}

// GenerationSucceededNotice reports a committed file set.
func GenerationSucceededNotice(id string, fileCount int, now time.Time) Message {
	content := fmt.Sprintf("Code generation complete!\nCreated %d files.\n"+
		"Switch to the code workspace to browse, edit or download them.", fileCount)
	return NewMessage(id, RoleModel, content, now)
}

// GenerationFailedNotice reports that no file set was committed.
func GenerationFailedNotice(id string, now time.Time) Message {
	return NewMessage(id, RoleSystem, generationFailedNotice, now)
}

// ReplyFailedNotice reports that a conversational reply could not be produced.
func ReplyFailedNotice(id string, now time.Time) Message {
	return NewMessage(id, RoleSystem, replyFailedNotice, now)
}
