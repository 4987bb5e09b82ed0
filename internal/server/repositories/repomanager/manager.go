package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/timecapsule/internal/dbx"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/capsules"
	"github.com/dmitrijs2005/timecapsule/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	RollbackMigration(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Capsules(db dbx.DBTX) capsules.Repository
}
