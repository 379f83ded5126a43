package specification

import (
	"fmt"

	"gorm.io/gorm"
)

// ByID filters by primary key column and value.
type ByID struct {
	Field string
	ID    string
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	field := s.Field
	if field == "" {
		field = "id"
	}
	return db.Where(fmt.Sprintf("%s = ?", field), s.ID)
}

// ByIDs filters by a list of IDs
type ByIDs struct {
	Field string
	IDs   []string
}

func (s ByIDs) Apply(db *gorm.DB) *gorm.DB {
	field := s.Field
	if field == "" {
		field = "id"
	}
	return db.Where(fmt.Sprintf("%s IN ?", field), s.IDs)
}

// OrderBy applies ordering
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}

// FilterBy Generic Filter
type FilterBy struct {
	Field string
	Value interface{}
}

func (s FilterBy) Apply(db *gorm.DB) *gorm.DB {
	query := fmt.Sprintf("%s = ?", s.Field)
	return db.Where(query, s.Value)
}

func Filter(field string, value interface{}) Specification {
	return FilterBy{Field: field, Value: value}
}
