package auditlogs

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

var base = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func entry(id string) models.AuditLogEntry {
	return models.AuditLogEntry{ID: id, ItemID: "h1", Username: "ana", ChangeDescription: "Added item: Hammer", CreatedAt: base}
}

func TestUpsertMany_IgnoresExistingIDs(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO audit_logs .* VALUES \(\$1, \$2, \$3, \$4, \$5\) ON CONFLICT \(id\) DO NOTHING`).
		WithArgs("a1", "h1", "ana", "Added item: Hammer", base).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpsertMany(context.Background(), []models.AuditLogEntry{entry("a1")}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMany_PlainInsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO audit_logs .* VALUES \(\$1, \$2, \$3, \$4, \$5\), \(\$6, \$7, \$8, \$9, \$10\)$`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.InsertMany(context.Background(), []models.AuditLogEntry{entry("a1"), entry("a2")}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMany_UniqueViolationMapsToAlreadyExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO audit_logs`).
		WillReturnError(&pgconn.PgError{Code: "23505", Detail: "Key (id)=(a1) already exists."})

	err := repo.InsertMany(context.Background(), []models.AuditLogEntry{entry("a1")})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestInsertMany_OtherError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO audit_logs`).WillReturnError(errors.New("disk full"))

	err := repo.InsertMany(context.Background(), []models.AuditLogEntry{entry("a1")})
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrorAlreadyExists)
	assert.Contains(t, err.Error(), "disk full")
}

func TestSelectAll(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "item_id", "username", "change_description", "created_at"}).
		AddRow("a1", "h1", "ana", "Added item: Hammer", base).
		AddRow("a2", "h1", "ana", "Deleted item: Hammer", base.Add(time.Hour))
	mock.ExpectQuery(`SELECT .* FROM audit_logs ORDER BY created_at, id`).WillReturnRows(rows)

	got, err := repo.SelectAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a2", got[1].ID)
	assert.False(t, got[1].IsSynced)
}
