package main

import (
	"context"
	"log"
	"os"

	"github.com/trezcool/masomo-analytics/core"
	"github.com/trezcool/masomo-analytics/core/account"
	"github.com/trezcool/masomo-analytics/storage/database"
	sqlxrepos "github.com/trezcool/masomo-analytics/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	db, err := database.Connect(context.Background(), conf)
	errAndDie(err)

	// start CLI
	cli := commandLine{
		db:      db.DB,
		usrRepo: sqlxrepos.NewUserRepository(db),
		acctSvc: account.NewService(sqlxrepos.NewAccountRepository(db)),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
