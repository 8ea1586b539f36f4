package services

import (
	"context"

	"cutroom/internal/domain/models"
)

// Action names an operation for capability purposes
type Action string

const (
	ActionFolderRead      Action = "folder.read"
	ActionFolderCreate    Action = "folder.create"
	ActionFolderMove      Action = "folder.move"
	ActionFolderDelete    Action = "folder.delete"
	ActionVersionRead     Action = "version.read"
	ActionVersionCreate   Action = "version.create"
	ActionVersionRollback Action = "version.rollback"
	ActionVersionDelete   Action = "version.delete"
)

// AllActions lists every action a policy must cover
var AllActions = []Action{
	ActionFolderRead,
	ActionFolderCreate,
	ActionFolderMove,
	ActionFolderDelete,
	ActionVersionRead,
	ActionVersionCreate,
	ActionVersionRollback,
	ActionVersionDelete,
}

// CapabilityGate answers whether an actor holds one of the required roles on a project.
// A denial is returned as an error wrapping domain.ErrForbidden.
type CapabilityGate interface {
	Check(ctx context.Context, actorID, projectID string, required models.RoleSet) error
}

// Authorizer is the single check every service runs before touching a project's resources
type Authorizer interface {
	Authorize(ctx context.Context, actorID, projectID string, action Action) error
}
