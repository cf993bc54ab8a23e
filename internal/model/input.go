package model

import (
	"database/sql"
	"strconv"
	"strings"
)

// ItemInput holds the raw values submitted for a new item. A nil field was
// not submitted at all.
type ItemInput struct {
	Type        *string
	Title       *string
	Description *string
	CategoryID  *string
	Location    *string
	ContactInfo *string
	Price       *string
}

// NewItem is an item ready to be inserted. Normalization never rejects
// input: absent fields and unusable numbers simply become NULL.
type NewItem struct {
	Type        sql.NullString
	Title       sql.NullString
	Description sql.NullString
	CategoryID  sql.NullInt64
	Location    sql.NullString
	ContactInfo sql.NullString
	ImagePath   sql.NullString
	Price       sql.NullFloat64
}

// Normalize converts raw input into a NewItem. Submitted text is kept as
// given, including empty strings. Numbers that fail to parse are dropped.
func (in ItemInput) Normalize() NewItem {
	return NewItem{
		Type:        parseText(in.Type),
		Title:       parseText(in.Title),
		Description: parseText(in.Description),
		CategoryID:  parseInt(in.CategoryID),
		Location:    parseText(in.Location),
		ContactInfo: parseText(in.ContactInfo),
		Price:       parseFloat(in.Price),
	}
}

func parseText(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func parseInt(s *string) sql.NullInt64 {
	if s == nil {
		return sql.NullInt64{}
	}
	n, err := strconv.ParseInt(strings.TrimSpace(*s), 10, 64)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}

func parseFloat(s *string) sql.NullFloat64 {
	if s == nil {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}
