package auth

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"slices"

	"docsgraph/internal/domain"
	"docsgraph/internal/domain/models"
	"docsgraph/internal/domain/services"
	"docsgraph/internal/httputil"

	"gopkg.in/yaml.v3"
)

//go:embed policy.yaml
var defaultPolicy []byte

// Policy maps GraphQL root fields to the roles allowed to run them.
type Policy struct {
	Public     []string            `yaml:"public"`
	Operations map[string][]string `yaml:"operations"`
}

// ParsePolicy decodes a YAML policy document.
func ParsePolicy(data []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse auth policy: %w", err)
	}
	return &p, nil
}

// LoadPolicy reads the policy at path, or the embedded default for "".
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return ParsePolicy(defaultPolicy)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read auth policy: %w", err)
	}
	return ParsePolicy(data)
}

// RoleAuthorizer implements OperationAuthorizer from a Policy.
type RoleAuthorizer struct {
	policy *Policy
}

// NewRoleAuthorizer creates an authorizer for policy.
func NewRoleAuthorizer(policy *Policy) services.OperationAuthorizer {
	return &RoleAuthorizer{policy: policy}
}

func (a *RoleAuthorizer) Authorize(ctx context.Context, operation string) (*models.User, error) {
	user := httputil.UserFrom(ctx)
	if slices.Contains(a.policy.Public, operation) {
		return user, nil
	}
	if user == nil {
		return nil, &domain.UnauthorizedError{Message: fmt.Sprintf("%s requires an authenticated user", operation)}
	}

	roles := a.policy.Operations[operation]
	if len(roles) == 0 || user.HasAnyRole(roles) {
		return user, nil
	}
	return nil, &domain.ForbiddenError{Message: fmt.Sprintf("%s requires one of the roles %v", operation, roles)}
}
