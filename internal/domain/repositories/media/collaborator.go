package media

import (
	"context"

	"cutroom/internal/domain/models"
)

// CollaboratorRepository resolves project membership
type CollaboratorRepository interface {
	// GetRole returns the actor's strongest role on the project, ErrNotFound if not a member
	GetRole(ctx context.Context, projectID, userID string) (models.Role, error)
}
