package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type seedCategory struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

type seedItem struct {
	ID          int64    `db:"id"`
	Type        string   `db:"type"`
	Title       string   `db:"title"`
	Description string   `db:"description"`
	CategoryID  int64    `db:"category_id"`
	Location    string   `db:"location"`
	ContactInfo string   `db:"contact_info"`
	Price       *float64 `db:"price"`
	Status      string   `db:"status"`
	CreatedAt   string   `db:"created_at"`
}

var seedCategories = []seedCategory{
	{1, "Electronics"},
	{2, "Clothing"},
	{3, "Accessories"},
	{4, "Books"},
	{5, "Others"},
}

var laptopPrice = 450.00

var seedItems = []seedItem{
	{
		ID: 1, Type: "lost", Title: "Lost iPhone 13",
		Description: "Black iPhone 13 with cracked screen, lost near campus library",
		CategoryID:  1, Location: "University Library", ContactInfo: "john@email.com",
		Status: "active", CreatedAt: "2024-09-10 10:00:00",
	},
	{
		ID: 2, Type: "found", Title: "Found Car Keys",
		Description: "Set of car keys with Honda keychain found in parking lot",
		CategoryID:  3, Location: "Main Parking Lot", ContactInfo: "mary@email.com",
		Status: "active", CreatedAt: "2024-09-09 14:30:00",
	},
	{
		ID: 3, Type: "sell", Title: "Laptop for Sale",
		Description: "Dell laptop in good condition, 8GB RAM, 256GB SSD",
		CategoryID:  1, Location: "Downtown", ContactInfo: "seller@email.com",
		Price: &laptopPrice, Status: "active", CreatedAt: "2024-09-08 16:45:00",
	},
}

// Seed inserts the fixed categories and example items. Rows whose primary
// key already exists are left untouched, so Seed is safe to run on every start.
func Seed(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	for _, c := range seedCategories {
		if _, err := tx.NamedExecContext(ctx,
			`INSERT OR IGNORE INTO categories (id, name) VALUES (:id, :name)`, c,
		); err != nil {
			return fmt.Errorf("seeding category %q: %w", c.Name, err)
		}
	}

	for _, it := range seedItems {
		if _, err := tx.NamedExecContext(ctx,
			`INSERT OR IGNORE INTO items
			     (id, type, title, description, category_id, location, contact_info, price, status, created_at)
			 VALUES
			     (:id, :type, :title, :description, :category_id, :location, :contact_info, :price, :status, :created_at)`,
			it,
		); err != nil {
			return fmt.Errorf("seeding item %d: %w", it.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}
	return nil
}

// Bootstrap ensures the schema exists and seeds default rows.
func Bootstrap(ctx context.Context, db *sqlx.DB) error {
	if err := EnsureSchema(db); err != nil {
		return err
	}
	return Seed(ctx, db)
}
