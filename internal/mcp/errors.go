package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/codegenesis/internal/domain/lifecycle"
	"github.com/rpggio/codegenesis/internal/domain/project"
)

// ErrUnknownMethod indicates a method name no tool serves.
var ErrUnknownMethod = errors.New("unknown method")

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Accessors let transports read the code without importing this package.
func (e *APIError) CodeValue() string         { return e.Code }
func (e *APIError) MessageValue() string      { return e.Message }
func (e *APIError) DetailsValue() any         { return e.Details }
func (e *APIError) RecoveryHintValue() string { return e.RecoveryHint }

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, lifecycle.ErrProjectNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for valid IDs"}
	case errors.Is(err, lifecycle.ErrBusy):
		return &APIError{Code: "BUSY", Message: "a generation call is already in progress", RecoveryHint: "Wait for the current reply or generation to finish"}
	case errors.Is(err, lifecycle.ErrInvalidPhase):
		return &APIError{Code: "INVALID_PHASE", Message: "code has already been generated for this project", RecoveryHint: "Create a new project to start over"}
	case errors.Is(err, lifecycle.ErrMissingRequirements):
		return &APIError{Code: "MISSING_REQUIREMENTS", Message: "requirements document is empty", RecoveryHint: "Discuss the product with send_message or call update_requirements"}
	case errors.Is(err, project.ErrInvalidPath), errors.Is(err, project.ErrDuplicatePath):
		return &APIError{Code: "INVALID_PATH", Message: err.Error(), RecoveryHint: "Use a relative path without '..' segments"}
	case errors.Is(err, project.ErrInvalidTransition):
		return &APIError{Code: "INVALID_PHASE", Message: err.Error()}
	case errors.Is(err, lifecycle.ErrInvalidInput), errors.Is(err, project.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: err.Error()}
	case errors.Is(err, ErrUnknownMethod):
		return &APIError{Code: "UNKNOWN_METHOD", Message: err.Error()}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
