package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/auditlogs"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/categories"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/hardware"
	"github.com/dmitrijs2005/stockkeeper/internal/server/repositories/notes"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Categories(db dbx.DBTX) categories.Repository
	Hardware(db dbx.DBTX) hardware.Repository
	Notes(db dbx.DBTX) notes.Repository
	AuditLogs(db dbx.DBTX) auditlogs.Repository
}
