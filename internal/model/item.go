package model

import (
	"database/sql"
	"encoding/json"
)

// ItemType classifies a listing.
type ItemType string

// Item types.
const (
	ItemTypeLost  ItemType = "lost"
	ItemTypeFound ItemType = "found"
	ItemTypeSell  ItemType = "sell"
)

// ItemStatusActive is the status every item is created with.
const ItemStatusActive = "active"

// Item is a listing row joined with its category name. Nullable columns are
// kept nullable so that the JSON output mirrors the stored row.
type Item struct {
	ID           int64           `db:"id"`
	Type         sql.NullString  `db:"type"`
	Title        sql.NullString  `db:"title"`
	Description  sql.NullString  `db:"description"`
	CategoryID   sql.NullInt64   `db:"category_id"`
	Location     sql.NullString  `db:"location"`
	ContactInfo  sql.NullString  `db:"contact_info"`
	ImagePath    sql.NullString  `db:"image_path"`
	Price        sql.NullFloat64 `db:"price"`
	Status       sql.NullString  `db:"status"`
	CreatedAt    sql.NullString  `db:"created_at"`
	CategoryName sql.NullString  `db:"category_name"`

	// ImageURL is filled in by the HTTP layer when ImagePath is set.
	ImageURL string `db:"-"`
}

type itemJSON struct {
	ID           int64    `json:"id"`
	Type         *string  `json:"type"`
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	CategoryID   *int64   `json:"category_id"`
	Location     *string  `json:"location"`
	ContactInfo  *string  `json:"contact_info"`
	ImagePath    *string  `json:"image_path"`
	Price        *float64 `json:"price"`
	Status       *string  `json:"status"`
	CreatedAt    *string  `json:"created_at"`
	CategoryName *string  `json:"category_name"`
	ImageURL     string   `json:"image_url,omitempty"`
}

// MarshalJSON renders NULL columns as JSON null.
func (it Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemJSON{
		ID:           it.ID,
		Type:         nullString(it.Type),
		Title:        nullString(it.Title),
		Description:  nullString(it.Description),
		CategoryID:   nullInt64(it.CategoryID),
		Location:     nullString(it.Location),
		ContactInfo:  nullString(it.ContactInfo),
		ImagePath:    nullString(it.ImagePath),
		Price:        nullFloat64(it.Price),
		Status:       nullString(it.Status),
		CreatedAt:    nullString(it.CreatedAt),
		CategoryName: nullString(it.CategoryName),
		ImageURL:     it.ImageURL,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON, used by API clients and tests.
func (it *Item) UnmarshalJSON(data []byte) error {
	var j itemJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	*it = Item{
		ID:           j.ID,
		Type:         toNullString(j.Type),
		Title:        toNullString(j.Title),
		Description:  toNullString(j.Description),
		Location:     toNullString(j.Location),
		ContactInfo:  toNullString(j.ContactInfo),
		ImagePath:    toNullString(j.ImagePath),
		Status:       toNullString(j.Status),
		CreatedAt:    toNullString(j.CreatedAt),
		CategoryName: toNullString(j.CategoryName),
		ImageURL:     j.ImageURL,
	}
	if j.CategoryID != nil {
		it.CategoryID = sql.NullInt64{Int64: *j.CategoryID, Valid: true}
	}
	if j.Price != nil {
		it.Price = sql.NullFloat64{Float64: *j.Price, Valid: true}
	}
	return nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nullInt64(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	return &ni.Int64
}

func nullFloat64(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
