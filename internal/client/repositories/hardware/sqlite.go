package hardware

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/stockkeeper/internal/common"
	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
	"github.com/dmitrijs2005/stockkeeper/internal/timex"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectColumns = `
	SELECT id, description, category_id, quantity,
		wholesale_price, wholesale_price_unit, retail_price, retail_price_unit,
		is_deleted, updated_by, location, updated_at
	FROM hardware`

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.HardwareItem, error) {
	h, err := scanItem(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("hardware[%s]: %w", id, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hardware[%s]: %w", id, err)
	}
	return h, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, h *models.HardwareItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO hardware (id, description, category_id, quantity,
			wholesale_price, wholesale_price_unit, retail_price, retail_price_unit,
			is_deleted, updated_by, location, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			description = excluded.description,
			category_id = excluded.category_id,
			quantity = excluded.quantity,
			wholesale_price = excluded.wholesale_price,
			wholesale_price_unit = excluded.wholesale_price_unit,
			retail_price = excluded.retail_price,
			retail_price_unit = excluded.retail_price_unit,
			is_deleted = excluded.is_deleted,
			updated_by = excluded.updated_by,
			location = excluded.location,
			updated_at = excluded.updated_at
	`,
		h.ID, h.Description, h.CategoryID, h.Quantity,
		h.WholesalePrice, h.WholesalePriceUnit, h.RetailPrice, h.RetailPriceUnit,
		h.IsDeleted, h.UpdatedBy, h.Location, timex.FormatTimestamp(h.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to put hardware[%s]: %w", h.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, includeDeleted bool) ([]models.HardwareItem, error) {
	query := selectColumns + ` WHERE is_deleted = 0 ORDER BY description`
	if includeDeleted {
		query = selectColumns + ` ORDER BY description`
	}
	return r.query(ctx, "list hardware", query)
}

func (r *SQLiteRepository) ChangedSince(ctx context.Context, since time.Time) ([]models.HardwareItem, error) {
	return r.query(ctx, "select changed hardware",
		selectColumns+` WHERE updated_at > ?`, timex.FormatTimestamp(since))
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM hardware`); err != nil {
		return fmt.Errorf("failed to clear hardware: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) query(ctx context.Context, op, query string, args ...any) ([]models.HardwareItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	result := make([]models.HardwareItem, 0)
	for rows.Next() {
		h, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hardware row: %w", err)
		}
		result = append(result, *h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hardware rows: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner) (*models.HardwareItem, error) {
	var (
		h                         models.HardwareItem
		wholesale, retail         sql.NullFloat64
		wholesaleUnit, retailUnit sql.NullString
		updatedBy                 sql.NullString
		updatedAt                 string
	)
	err := s.Scan(&h.ID, &h.Description, &h.CategoryID, &h.Quantity,
		&wholesale, &wholesaleUnit, &retail, &retailUnit,
		&h.IsDeleted, &updatedBy, &h.Location, &updatedAt)
	if err != nil {
		return nil, err
	}
	ts, err := timex.ParseTimestamp(updatedAt)
	if err != nil {
		return nil, err
	}
	h.WholesalePrice = dbx.Float64Ptr(wholesale)
	h.WholesalePriceUnit = dbx.StringPtr(wholesaleUnit)
	h.RetailPrice = dbx.Float64Ptr(retail)
	h.RetailPriceUnit = dbx.StringPtr(retailUnit)
	h.UpdatedBy = dbx.StringPtr(updatedBy)
	h.UpdatedAt = ts
	return &h, nil
}
