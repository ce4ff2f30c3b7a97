package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/classsync/storage/database"
)

var runMigrationFunc = database.RunMigration // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.db == nil {
		return errors.New("migrations need the postgres engine")
	}
	return runMigrationFunc(context.Background(), cli.db, args[0], args[1:]...)
}
