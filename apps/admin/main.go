package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/ledger"
	"github.com/trezcool/classsync/core/user"
	"github.com/trezcool/classsync/core/voting"
	emailsvc "github.com/trezcool/classsync/services/email"
	logsvc "github.com/trezcool/classsync/services/logger"
	"github.com/trezcool/classsync/storage/database"
	gormrepos "github.com/trezcool/classsync/storage/database/gorm"
	inmemdb "github.com/trezcool/classsync/storage/database/inmem"
	sqlxrepos "github.com/trezcool/classsync/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	defer logger.Close()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	ledger.InitValidators(validate, translator)

	var (
		db       *sql.DB
		usrRepo  user.Repository
		voteRepo voting.Repository
	)
	if conf.Database.Engine == "memory" {
		mem := inmemdb.Open()
		usrRepo = inmemdb.NewUserRepository(mem)
		voteRepo = inmemdb.NewVotingRepository(mem)
	} else {
		ctx := context.Background()
		sdb, err := database.Open(ctx, conf)
		errAndDie(logger, err)
		defer sdb.Close()
		gdb, err := database.OpenGorm(ctx, conf)
		errAndDie(logger, err)
		defer func() { _ = database.CloseGorm(gdb) }()

		db = sdb.DB
		usrRepo = sqlxrepos.NewUserRepository(sdb)
		voteRepo = gormrepos.NewVotingRepository(gdb)
	}

	usrSvc := user.NewService(usrRepo, validate)
	cli := commandLine{
		db:        db,
		usrSvc:    usrSvc,
		votingSvc: voting.NewService(voteRepo, usrSvc, emailsvc.NewConsoleService(conf, logger), logger, conf),
		out:       os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		logger.Close()
		os.Exit(1)
	}
}

func errAndDie(logger core.Logger, err error) {
	if err != nil {
		logger.Fatal("setting up database", err)
	}
}
