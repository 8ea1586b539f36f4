package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cutroom/internal/domain"
	"cutroom/internal/domain/models"
	mediaRepo "cutroom/internal/domain/repositories/media"
	"cutroom/internal/domain/services"
)

// RoleGate implements CapabilityGate by resolving the actor's role on the project.
// The project owner holds OWNER; collaborators hold the role on their membership row.
type RoleGate struct {
	collaborators mediaRepo.CollaboratorRepository
	logger        *slog.Logger
}

// NewRoleGate creates a role-based capability gate
func NewRoleGate(collaborators mediaRepo.CollaboratorRepository, logger *slog.Logger) *RoleGate {
	return &RoleGate{
		collaborators: collaborators,
		logger:        logger,
	}
}

var _ services.CapabilityGate = (*RoleGate)(nil)

// Check returns nil when the actor holds one of required on projectID
func (g *RoleGate) Check(ctx context.Context, actorID, projectID string, required models.RoleSet) error {
	if actorID == "" {
		return &domain.UnauthorizedError{Message: "no authenticated actor"}
	}

	role, err := g.collaborators.GetRole(ctx, projectID, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("access denied to project %s: %w", projectID, domain.ErrForbidden)
		}
		return fmt.Errorf("check project access: %w", err)
	}

	if !required.Contains(role) {
		g.logger.Debug("capability denied",
			"actor_id", actorID,
			"project_id", projectID,
			"role", role,
			"required", required.String(),
		)
		return &domain.ForbiddenError{
			Message: fmt.Sprintf("role %s on project %s does not allow this operation (requires %s)", role, projectID, required),
		}
	}

	return nil
}

// PolicyAuthorizer implements Authorizer by looking up the action's roles in a Policy
// and asking the gate whether the actor holds one of them.
type PolicyAuthorizer struct {
	policy *Policy
	gate   services.CapabilityGate
}

// NewPolicyAuthorizer creates an authorizer
func NewPolicyAuthorizer(policy *Policy, gate services.CapabilityGate) *PolicyAuthorizer {
	return &PolicyAuthorizer{
		policy: policy,
		gate:   gate,
	}
}

var _ services.Authorizer = (*PolicyAuthorizer)(nil)

// Authorize checks that actorID may perform action on projectID
func (a *PolicyAuthorizer) Authorize(ctx context.Context, actorID, projectID string, action services.Action) error {
	roles, ok := a.policy.Roles(action)
	if !ok {
		// ParsePolicy guarantees coverage; an unknown action is a programming error
		return fmt.Errorf("no policy for action %q: %w", action, domain.ErrForbidden)
	}
	return a.gate.Check(ctx, actorID, projectID, roles)
}
