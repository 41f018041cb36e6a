// Package repomanager constructs repositories over a shared database handle
// and runs schema migrations. Repositories take a dbx.DBTX so callers can
// pass either the pool or an open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/mycloud/internal/dbx"
	"github.com/dmitrijs2005/mycloud/internal/server/repositories/files"
	"github.com/dmitrijs2005/mycloud/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
}
