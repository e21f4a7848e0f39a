package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"watchmarket/models"
)

const inventoryColumns = `id, dealer_id, reference_number, model_name, brand, buying_price, image_url, created_at`

// ListInventory returns one page of a dealer's inventory matching the
// filters, plus the unpaginated total.
func (s *PostgresStore) ListInventory(ctx context.Context, dealerID uuid.UUID, f models.InventoryFilters, limit, offset int) ([]models.InventoryItem, int, error) {
	conditions := []string{"dealer_id = $1"}
	args := []any{dealerID}
	argNum := 2

	if f.Brand != "" {
		conditions = append(conditions, fmt.Sprintf("lower(brand) = lower($%d)", argNum))
		args = append(args, f.Brand)
		argNum++
	}
	if f.Reference != "" {
		conditions = append(conditions, fmt.Sprintf("reference_number ILIKE '%%' || $%d || '%%'", argNum))
		args = append(args, f.Reference)
		argNum++
	}
	if f.PriceMin != nil {
		conditions = append(conditions, fmt.Sprintf("buying_price >= $%d", argNum))
		args = append(args, *f.PriceMin)
		argNum++
	}
	if f.PriceMax != nil {
		conditions = append(conditions, fmt.Sprintf("buying_price <= $%d", argNum))
		args = append(args, *f.PriceMax)
		argNum++
	}
	if f.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(model_name ILIKE '%%' || $%d || '%%' OR reference_number ILIKE '%%' || $%d || '%%')", argNum, argNum))
		args = append(args, f.Search)
		argNum++
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := `SELECT count(*) FROM inventory_items WHERE ` + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT `+inventoryColumns+`
		FROM inventory_items
		WHERE `+where+`
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`, argNum, argNum+1)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []models.InventoryItem
	for rows.Next() {
		var it models.InventoryItem
		if err := rows.Scan(
			&it.ID, &it.DealerID, &it.ReferenceNumber, &it.ModelName,
			&it.Brand, &it.BuyingPrice, &it.ImageURL, &it.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		items = append(items, it)
	}
	return items, total, rows.Err()
}
