package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/masomo-analytics/core/account"
	"github.com/trezcool/masomo-analytics/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *sql.DB
	usrRepo user.Repository
	acctSvc *account.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command (up, down, status, redo, version...)")
	fmt.Println("  adduser -username USERNAME -email EMAIL [-name NAME] [-admin -account ID] - create or update a user")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset user's password")
	fmt.Println("  analytics -account ID -enable|-disable - toggle the analytics service of an account")
	fmt.Println("  override -account ID -role ROLE -permission PERMISSION [-enabled=false] - grant or revoke a role permission")
}

// promptPassword reads a password from the terminal without echoing it.
func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username.")
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant every admin role on the account.")
	addUserAccount := addUserCmd.Int("account", 0, "The account ID the admin roles apply to.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	analyticsCmd := flag.NewFlagSet("analytics", flag.ContinueOnError)
	analyticsAccount := analyticsCmd.Int("account", 0, "The account ID.")
	analyticsEnable := analyticsCmd.Bool("enable", false, "Enable the analytics service.")
	analyticsDisable := analyticsCmd.Bool("disable", false, "Disable the analytics service.")

	overrideCmd := flag.NewFlagSet("override", flag.ContinueOnError)
	overrideAccount := overrideCmd.Int("account", 0, "The account ID.")
	overrideRole := overrideCmd.String("role", "", "The enrollment role (student, teacher, ta, designer, observer).")
	overridePerm := overrideCmd.String("permission", "", "The permission (read_as_admin, read_roster, view_analytics).")
	overrideEnabled := overrideCmd.Bool("enabled", true, "Grant (true) or revoke (false) the permission.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			fmt.Println("Usage: migrate COMMAND [ARGS]")
			return errHelp
		}
		return cli.migrate(args[2:])

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserEmail == "" || (*addUserAdmin && *addUserAccount <= 0) {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserName, *addUserUname, *addUserEmail, pwd, *addUserAccount, *addUserAdmin)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "analytics":
		if err := analyticsCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *analyticsAccount <= 0 || *analyticsEnable == *analyticsDisable {
			analyticsCmd.Usage()
			return errHelp
		}
		return cli.setAnalytics(*analyticsAccount, *analyticsEnable)

	case "override":
		if err := overrideCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *overrideAccount <= 0 || *overrideRole == "" || *overridePerm == "" {
			overrideCmd.Usage()
			return errHelp
		}
		return cli.override(*overrideAccount, *overrideRole, *overridePerm, *overrideEnabled)

	default:
		cli.printUsage()
		return errHelp
	}
}
