package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"pos-sync/src/models"
)

// -----------------------------------------------------------------------------
// Both LAN backends keep one table per resource with the record as a JSON
// payload keyed by id. fetchResource selects and decodes a whole table.
// -----------------------------------------------------------------------------

func fetchResource[T any](ctx context.Context, db *sql.DB, r models.Resource) ([]T, error) {
	query := fmt.Sprintf(`SELECT payload FROM "%s" ORDER BY id`, r)
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var p []byte
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		var row T
		if err := json.Unmarshal(p, &row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// lowStockFrom derives the low-stock view from the inventory table. The view
// has no table of its own on either backend.
func lowStockFrom(ctx context.Context, db *sql.DB) ([]models.MLowStockItem, error) {
	items, err := fetchResource[models.MInventoryItem](ctx, db, models.ResInventoryItems)
	if err != nil {
		return nil, err
	}
	var out []models.MLowStockItem
	for _, item := range items {
		if item.Quantity <= item.MinThreshold {
			out = append(out, models.MLowStockItem{
				ID:           item.ID,
				Name:         item.Name,
				Quantity:     item.Quantity,
				MinThreshold: item.MinThreshold,
				Unit:         item.Unit,
			})
		}
	}
	return out, nil
}
