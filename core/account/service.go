package account

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-analytics/core"
)

var ErrNotFound = core.NotFound("account")

type (
	Repository interface {
		GetAccount(ctx context.Context, id int) (Account, error)
		SetAnalyticsEnabled(ctx context.Context, id int, enabled bool) error
		QueryRoleOverrides(ctx context.Context, accountID int) ([]RoleOverride, error)
		// SaveRoleOverride creates or replaces the override for (account, role, permission).
		SaveRoleOverride(ctx context.Context, o RoleOverride) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Get(ctx context.Context, id int) (Account, error) {
	return svc.repo.GetAccount(ctx, id)
}

// Permissions resolves the role permissions of the account once, for the duration of a request.
func (svc *Service) Permissions(ctx context.Context, accountID int) (RolePermissions, error) {
	overrides, err := svc.repo.QueryRoleOverrides(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "querying role overrides")
	}
	return ResolvePermissions(overrides), nil
}

func (svc *Service) SetAnalyticsEnabled(ctx context.Context, accountID int, enabled bool) error {
	if _, err := svc.repo.GetAccount(ctx, accountID); err != nil {
		return err
	}
	return svc.repo.SetAnalyticsEnabled(ctx, accountID, enabled)
}

// ManageRoleOverride grants (enabled=true) or revokes a permission for a role on the account.
func (svc *Service) ManageRoleOverride(ctx context.Context, accountID int, role Role, perm Permission, enabled bool) error {
	if _, err := svc.repo.GetAccount(ctx, accountID); err != nil {
		return err
	}
	if role == RoleUnknown || perm == 0 {
		return core.NewValidationError(errors.New("invalid role override"))
	}
	return svc.repo.SaveRoleOverride(ctx, RoleOverride{
		AccountID:  accountID,
		Role:       role,
		Permission: perm,
		Enabled:    enabled,
	})
}
