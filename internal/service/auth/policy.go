package auth

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"cutroom/internal/domain/models"
	"cutroom/internal/domain/services"
)

//go:embed policy.yaml
var defaultPolicy []byte

// Policy maps every action to the roles allowed to perform it
type Policy struct {
	Actions map[services.Action]models.RoleSet `yaml:"actions"`
}

// policyFile is the on-disk shape; roles are parsed leniently before validation
type policyFile struct {
	Actions map[string][]string `yaml:"actions"`
}

// DefaultPolicy returns the embedded policy
func DefaultPolicy() (*Policy, error) {
	return ParsePolicy(defaultPolicy)
}

// LoadPolicy reads a policy file, or returns the embedded default when path is empty
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy %s: %w", path, err)
	}

	policy, err := ParsePolicy(data)
	if err != nil {
		return nil, fmt.Errorf("policy %s: %w", path, err)
	}
	return policy, nil
}

// ParsePolicy decodes and validates a YAML policy.
// Every known action must be present with at least one role; unknown actions are rejected.
func ParsePolicy(data []byte) (*Policy, error) {
	var raw policyFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal policy: %w", err)
	}

	known := make(map[services.Action]bool, len(services.AllActions))
	for _, a := range services.AllActions {
		known[a] = true
	}

	policy := &Policy{Actions: make(map[services.Action]models.RoleSet, len(raw.Actions))}
	for name, roleNames := range raw.Actions {
		action := services.Action(name)
		if !known[action] {
			return nil, fmt.Errorf("unknown action %q", name)
		}
		if len(roleNames) == 0 {
			return nil, fmt.Errorf("action %q allows no roles", name)
		}

		roles := make(models.RoleSet, 0, len(roleNames))
		for _, rn := range roleNames {
			role, err := models.ParseRole(rn)
			if err != nil {
				return nil, fmt.Errorf("action %q: %w", name, err)
			}
			if !roles.Contains(role) {
				roles = append(roles, role)
			}
		}
		policy.Actions[action] = roles
	}

	var missing []string
	for _, a := range services.AllActions {
		if _, ok := policy.Actions[a]; !ok {
			missing = append(missing, string(a))
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("policy does not cover: %s", strings.Join(missing, ", "))
	}

	return policy, nil
}

// Roles returns the roles allowed to perform action
func (p *Policy) Roles(action services.Action) (models.RoleSet, bool) {
	roles, ok := p.Actions[action]
	return roles, ok
}
