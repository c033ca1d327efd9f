package main

import (
	"context"
	"fmt"

	"github.com/trezcool/masomo-analytics/core"
	"github.com/trezcool/masomo-analytics/core/account"
)

func (cli *commandLine) setAnalytics(accountID int, enabled bool) error {
	if err := cli.acctSvc.SetAnalyticsEnabled(context.Background(), accountID, enabled); err != nil {
		return err
	}
	fmt.Printf("account %d: analytics enabled = %t\n", accountID, enabled)
	return nil
}

func (cli *commandLine) override(accountID int, roleName, permName string, enabled bool) error {
	role, err := account.ParseRole(roleName)
	if err != nil {
		return core.NewValidationError(err)
	}
	perm, err := account.ParsePermission(permName)
	if err != nil {
		return core.NewValidationError(err)
	}
	if err = cli.acctSvc.ManageRoleOverride(context.Background(), accountID, role, perm, enabled); err != nil {
		return err
	}
	fmt.Printf("account %d: %s %s = %t\n", accountID, role, perm, enabled)
	return nil
}
