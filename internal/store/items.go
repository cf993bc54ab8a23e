package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/najdeno/internal/model"
)

// Querier is satisfied by *sqlx.DB, *sqlx.Conn and *sqlx.Tx.
type Querier interface {
	sqlx.QueryerContext
	sqlx.ExecerContext
}

// CreatedAtLayout is the ISO-8601 layout of application-set timestamps.
const CreatedAtLayout = "2006-01-02T15:04:05.000000"

const selectItems = `
SELECT i.id, i.type, i.title, i.description, i.category_id, i.location,
       i.contact_info, i.image_path, i.price, i.status, i.created_at,
       c.name AS category_name
FROM items i
LEFT JOIN categories c ON i.category_id = c.id`

const orderItems = `ORDER BY datetime(i.created_at) DESC, i.id DESC LIMIT ? OFFSET ?`

// ListItems returns items matching the filter, newest first.
func ListItems(ctx context.Context, db Querier, filter ItemFilter, page Page) ([]model.Item, error) {
	where, args := filter.where()
	query := strings.Join([]string{selectItems, where, orderItems}, "\n")
	args = append(args, page.Limit, page.Offset)

	items := []model.Item{}
	if err := sqlx.SelectContext(ctx, db, &items, query, args...); err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	return items, nil
}

// SearchItems returns items whose title or description contains keyword,
// ignoring case, newest first. An empty keyword matches every item that has
// a title or description.
func SearchItems(ctx context.Context, db Querier, keyword string, page Page) ([]model.Item, error) {
	pattern := "%" + strings.ToLower(keyword) + "%"
	query := selectItems + `
WHERE LOWER(i.title) LIKE ? OR LOWER(i.description) LIKE ?
` + orderItems

	items := []model.Item{}
	if err := sqlx.SelectContext(ctx, db, &items, query, pattern, pattern, page.Limit, page.Offset); err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	return items, nil
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, db Querier, id int64) (*model.Item, error) {
	var item model.Item
	err := sqlx.GetContext(ctx, db, &item, selectItems+"\nWHERE i.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return &item, nil
}

// CreateItem inserts a new active item stamped with the current time and
// returns it as stored, joined with its category.
func CreateItem(ctx context.Context, db Querier, it model.NewItem) (*model.Item, error) {
	createdAt := time.Now().Format(CreatedAtLayout)

	result, err := db.ExecContext(ctx,
		`INSERT INTO items
		     (type, title, description, category_id, location, contact_info, image_path, price, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		it.Type, it.Title, it.Description, it.CategoryID, it.Location,
		it.ContactInfo, it.ImagePath, it.Price, model.ItemStatusActive, createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	item, err := GetItem(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %d not found after insert", id)
	}
	return item, nil
}
