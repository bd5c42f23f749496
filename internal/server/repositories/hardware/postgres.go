package hardware

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/stockkeeper/internal/dbx"
	"github.com/dmitrijs2005/stockkeeper/internal/models"
)

const (
	columns   = 12
	batchSize = 500
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) UpsertMany(ctx context.Context, records []models.HardwareItem) error {
	for start := 0; start < len(records); start += batchSize {
		chunk := records[start:min(start+batchSize, len(records))]

		args := make([]any, 0, len(chunk)*columns)
		for _, h := range chunk {
			args = append(args, h.ID, h.Description, h.CategoryID, h.Quantity,
				h.WholesalePrice, h.WholesalePriceUnit, h.RetailPrice, h.RetailPriceUnit,
				h.IsDeleted, h.UpdatedBy, h.Location, h.UpdatedAt)
		}

		query := `INSERT INTO hardware (id, description, category_id, quantity,
				wholesale_price, wholesale_price_unit, retail_price, retail_price_unit,
				is_deleted, updated_by, location, updated_at)
			VALUES ` + dbx.ValuesPlaceholders(len(chunk), columns) + `
			ON CONFLICT (id) DO UPDATE SET
				description = EXCLUDED.description,
				category_id = EXCLUDED.category_id,
				quantity = EXCLUDED.quantity,
				wholesale_price = EXCLUDED.wholesale_price,
				wholesale_price_unit = EXCLUDED.wholesale_price_unit,
				retail_price = EXCLUDED.retail_price,
				retail_price_unit = EXCLUDED.retail_price_unit,
				is_deleted = EXCLUDED.is_deleted,
				updated_by = EXCLUDED.updated_by,
				location = EXCLUDED.location,
				updated_at = EXCLUDED.updated_at`

		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("db error: upsert hardware: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) SelectAll(ctx context.Context) ([]models.HardwareItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, category_id, quantity,
			wholesale_price, wholesale_price_unit, retail_price, retail_price_unit,
			is_deleted, updated_by, location, updated_at
		FROM hardware ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: select hardware: %w", err)
	}
	defer rows.Close()

	result := make([]models.HardwareItem, 0)
	for rows.Next() {
		var h models.HardwareItem
		err := rows.Scan(&h.ID, &h.Description, &h.CategoryID, &h.Quantity,
			&h.WholesalePrice, &h.WholesalePriceUnit, &h.RetailPrice, &h.RetailPriceUnit,
			&h.IsDeleted, &h.UpdatedBy, &h.Location, &h.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		h.UpdatedAt = h.UpdatedAt.UTC()
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}
