package storage

import (
	"github.com/dmitrijs2005/stockkeeper/internal/client/repositories/auditlog"
	"github.com/dmitrijs2005/stockkeeper/internal/client/repositories/categories"
	"github.com/dmitrijs2005/stockkeeper/internal/client/repositories/hardware"
	"github.com/dmitrijs2005/stockkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/stockkeeper/internal/client/repositories/notes"
	"github.com/dmitrijs2005/stockkeeper/internal/client/repositories/systemlogs"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code
// runs against the pool or inside dbx.WithTx.
type RepositoryManager interface {
	Categories(db dbx.DBTX) categories.Repository
	Hardware(db dbx.DBTX) hardware.Repository
	Notes(db dbx.DBTX) notes.Repository
	AuditLogs(db dbx.DBTX) auditlog.Repository
	SystemLogs(db dbx.DBTX) systemlogs.Repository
	Metadata(db dbx.DBTX) metadata.Repository
}

// SQLiteRepositoryManager is the RepositoryManager for the local store.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Categories(db dbx.DBTX) categories.Repository {
	return categories.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Hardware(db dbx.DBTX) hardware.Repository {
	return hardware.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Notes(db dbx.DBTX) notes.Repository {
	return notes.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) AuditLogs(db dbx.DBTX) auditlog.Repository {
	return auditlog.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) SystemLogs(db dbx.DBTX) systemlogs.Repository {
	return systemlogs.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Metadata(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}
