// Package repomanager is the factory for per-entity repositories. Passing a
// dbx.DBTX lets callers obtain repositories bound to either the pool or an
// open transaction.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/techblog/internal/dbx"
	"github.com/dmitrijs2005/techblog/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/techblog/internal/server/repositories/categories"
	"github.com/dmitrijs2005/techblog/internal/server/repositories/loginattempts"
	"github.com/dmitrijs2005/techblog/internal/server/repositories/posts"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	LoginAttempts(db dbx.DBTX) loginattempts.Repository
	Categories(db dbx.DBTX) categories.Repository
	Posts(db dbx.DBTX) posts.Repository
}
