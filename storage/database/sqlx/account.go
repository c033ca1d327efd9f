package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-analytics/core/account"
)

type accountRepository struct {
	db sqlx.ExtContext
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db sqlx.ExtContext) *accountRepository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) GetAccount(ctx context.Context, id int) (account.Account, error) {
	var acct account.Account
	err := sqlx.GetContext(ctx, repo.db, &acct, `SELECT id, name, analytics_enabled FROM account WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return account.Account{}, account.ErrNotFound
	}
	if err != nil {
		return account.Account{}, errors.Wrap(err, "getting account")
	}
	return acct, nil
}

func (repo *accountRepository) SetAnalyticsEnabled(ctx context.Context, id int, enabled bool) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE account SET analytics_enabled = $2 WHERE id = $1`, id, enabled)
	if err != nil {
		return errors.Wrap(err, "updating account")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return account.ErrNotFound
	}
	return nil
}

type roleOverrideRow struct {
	AccountID  int  `db:"account_id"`
	Role       int  `db:"role"`
	Permission int  `db:"permission"`
	Enabled    bool `db:"enabled"`
}

func (repo *accountRepository) QueryRoleOverrides(ctx context.Context, accountID int) ([]account.RoleOverride, error) {
	var rows []roleOverrideRow
	err := sqlx.SelectContext(ctx, repo.db, &rows,
		`SELECT account_id, role, permission, enabled FROM role_override WHERE account_id = $1 ORDER BY role, permission`,
		accountID)
	if err != nil {
		return nil, errors.Wrap(err, "querying role overrides")
	}

	overrides := make([]account.RoleOverride, len(rows))
	for i, row := range rows {
		overrides[i] = account.RoleOverride{
			AccountID:  row.AccountID,
			Role:       account.Role(row.Role),
			Permission: account.Permission(row.Permission),
			Enabled:    row.Enabled,
		}
	}
	return overrides, nil
}

func (repo *accountRepository) SaveRoleOverride(ctx context.Context, o account.RoleOverride) error {
	row := roleOverrideRow{
		AccountID:  o.AccountID,
		Role:       int(o.Role),
		Permission: int(o.Permission),
		Enabled:    o.Enabled,
	}
	_, err := sqlx.NamedExecContext(ctx, repo.db, `INSERT INTO role_override (account_id, role, permission, enabled)
		VALUES (:account_id, :role, :permission, :enabled)
		ON CONFLICT (account_id, role, permission) DO UPDATE SET enabled = EXCLUDED.enabled`, row)
	if err != nil {
		return errors.Wrap(err, "saving role override")
	}
	return nil
}
