package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cutroom/internal/domain"
	"cutroom/internal/domain/models"
	"cutroom/internal/domain/services"
)

func TestDefaultPolicy_CoversEveryAction(t *testing.T) {
	policy, err := DefaultPolicy()
	if err != nil {
		t.Fatalf("DefaultPolicy: %v", err)
	}

	tests := []struct {
		action services.Action
		allow  []models.Role
		deny   []models.Role
	}{
		{services.ActionFolderRead, []models.Role{models.RoleOwner, models.RoleViewer}, nil},
		{services.ActionFolderCreate, []models.Role{models.RoleEditor, models.RoleReviewer}, nil},
		{services.ActionFolderMove, []models.Role{models.RoleOwner, models.RoleEditor}, []models.Role{models.RoleReviewer, models.RoleViewer}},
		{services.ActionFolderDelete, []models.Role{models.RoleOwner, models.RoleEditor}, []models.Role{models.RoleViewer}},
		{services.ActionVersionCreate, []models.Role{models.RoleEditor}, []models.Role{models.RoleReviewer}},
		{services.ActionVersionRollback, []models.Role{models.RoleEditor}, []models.Role{models.RoleViewer}},
		{services.ActionVersionDelete, []models.Role{models.RoleOwner}, []models.Role{models.RoleEditor}},
	}

	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			roles, ok := policy.Roles(tt.action)
			if !ok {
				t.Fatalf("no roles for %s", tt.action)
			}
			for _, r := range tt.allow {
				if !roles.Contains(r) {
					t.Errorf("%s should allow %s", tt.action, r)
				}
			}
			for _, r := range tt.deny {
				if roles.Contains(r) {
					t.Errorf("%s should deny %s", tt.action, r)
				}
			}
		})
	}
}

func TestParsePolicy_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown action",
			yaml:    "actions:\n  folder.explode: [OWNER]\n",
			wantErr: "unknown action",
		},
		{
			name:    "unknown role",
			yaml:    "actions:\n  folder.read: [JANITOR]\n",
			wantErr: "unknown role",
		},
		{
			name:    "empty role list",
			yaml:    "actions:\n  folder.read: []\n",
			wantErr: "allows no roles",
		},
		{
			name:    "missing actions",
			yaml:    "actions:\n  folder.read: [OWNER]\n",
			wantErr: "does not cover",
		},
		{
			name:    "malformed",
			yaml:    "actions: [",
			wantErr: "unmarshal policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePolicy([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadPolicy_FromFile(t *testing.T) {
	var b strings.Builder
	b.WriteString("actions:\n")
	for _, a := range services.AllActions {
		fmt.Fprintf(&b, "  %s: [owner]\n", a)
	}

	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatal(err)
	}

	policy, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	roles, _ := policy.Roles(services.ActionFolderRead)
	if len(roles) != 1 || roles[0] != models.RoleOwner {
		t.Errorf("folder.read roles = %v, want [OWNER]", roles)
	}
}

type fakeCollaborators struct {
	roles map[string]models.Role // key: projectID/userID
	err   error
}

func (f *fakeCollaborators) GetRole(_ context.Context, projectID, userID string) (models.Role, error) {
	if f.err != nil {
		return "", f.err
	}
	role, ok := f.roles[projectID+"/"+userID]
	if !ok {
		return "", fmt.Errorf("membership: %w", domain.ErrNotFound)
	}
	return role, nil
}

func TestPolicyAuthorizer(t *testing.T) {
	policy, err := DefaultPolicy()
	if err != nil {
		t.Fatal(err)
	}
	collaborators := &fakeCollaborators{roles: map[string]models.Role{
		"p1/owner":  models.RoleOwner,
		"p1/editor": models.RoleEditor,
		"p1/viewer": models.RoleViewer,
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	authz := NewPolicyAuthorizer(policy, NewRoleGate(collaborators, logger))

	tests := []struct {
		name    string
		actor   string
		project string
		action  services.Action
		wantErr error
	}{
		{"owner deletes version", "owner", "p1", services.ActionVersionDelete, nil},
		{"editor cannot delete version", "editor", "p1", services.ActionVersionDelete, domain.ErrForbidden},
		{"viewer reads tree", "viewer", "p1", services.ActionFolderRead, nil},
		{"viewer cannot move", "viewer", "p1", services.ActionFolderMove, domain.ErrForbidden},
		{"non-member forbidden", "stranger", "p1", services.ActionFolderRead, domain.ErrForbidden},
		{"member of other project forbidden", "owner", "p2", services.ActionFolderRead, domain.ErrForbidden},
		{"anonymous unauthorized", "", "p1", services.ActionFolderRead, domain.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.Authorize(context.Background(), tt.actor, tt.project, tt.action)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Authorize: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRoleGate_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("connection reset")
	gate := NewRoleGate(&fakeCollaborators{err: boom}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := gate.Check(context.Background(), "u1", "p1", models.RoleSet{models.RoleOwner})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped store error", err)
	}
	if errors.Is(err, domain.ErrForbidden) {
		t.Error("store failure must not be reported as forbidden")
	}
}
