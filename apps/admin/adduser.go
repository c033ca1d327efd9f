package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-analytics/core"
	"github.com/trezcool/masomo-analytics/core/user"
)

// addUser updates or creates a user.User; admins hold their roles on accountID.
func (cli *commandLine) addUser(name, uname, email, pwd string, accountID int, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if tag := user.CheckPassword(pwd, name, uname, email); tag != "" {
		return core.NewValidationError(errors.Errorf("password rejected: %s", tag))
	}

	if isAdmin {
		if _, err := cli.acctSvc.Get(ctx, accountID); err != nil {
			return err
		}
	}

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: uname})
	if core.IsNotFound(err) {
		usr, err = cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: email})
	}
	found := err == nil
	if err != nil && !core.IsNotFound(err) {
		return errors.Wrap(err, "finding user")
	}

	now := time.Now().UTC()
	if !found {
		usr = user.User{Username: uname, Email: email, CreatedAt: now}
	}
	if name != "" {
		usr.Name = name
	}
	if isAdmin {
		usr.Roles = user.AllRoles
		usr.AccountID = accountID
	}
	usr.IsActive = true
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}

	if found {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
		return errors.Wrap(err, "updating user")
	}
	if err = cli.usrRepo.CheckUsernameUniqueness(ctx, uname, email); err != nil {
		return err
	}
	_, err = cli.usrRepo.CreateUser(ctx, usr)
	return errors.Wrap(err, "creating user")
}
