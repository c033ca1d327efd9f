package inmemdb

import (
	"context"

	"github.com/trezcool/masomo-analytics/core/account"
)

type accountRepository struct {
	db *DB
}

var _ account.Repository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) *accountRepository {
	return &accountRepository{db: db}
}

func (repo *accountRepository) GetAccount(_ context.Context, id int) (account.Account, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if acct, ok := repo.db.accounts[id]; ok {
		return *acct, nil
	}
	return account.Account{}, account.ErrNotFound
}

func (repo *accountRepository) SetAnalyticsEnabled(_ context.Context, id int, enabled bool) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	acct, ok := repo.db.accounts[id]
	if !ok {
		return account.ErrNotFound
	}
	acct.AnalyticsEnabled = enabled
	return nil
}

func (repo *accountRepository) QueryRoleOverrides(_ context.Context, accountID int) ([]account.RoleOverride, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var overrides []account.RoleOverride
	for _, o := range repo.db.overrides {
		if o.AccountID == accountID {
			overrides = append(overrides, o)
		}
	}
	return overrides, nil
}

func (repo *accountRepository) SaveRoleOverride(_ context.Context, o account.RoleOverride) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for i, existing := range repo.db.overrides {
		if existing.AccountID == o.AccountID && existing.Role == o.Role && existing.Permission == o.Permission {
			repo.db.overrides[i] = o
			return nil
		}
	}
	repo.db.overrides = append(repo.db.overrides, o)
	return nil
}
