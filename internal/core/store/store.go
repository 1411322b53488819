// Package store is the persistence adapter: one Table per record collection with
// key-value style access (get, put, update, scan, query by secondary index) on top of gorm.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Condition guards a conditional write: the row is only updated while Column still holds Value.
type Condition struct {
	Column string
	Value  interface{}
}

type Table[T any] struct {
	db    *gorm.DB
	order string
}

// NewTable binds a collection to the gorm model T. order is applied to Scan and
// QueryByIndex results; pass "" to leave ordering to the database.
func NewTable[T any](db *gorm.DB, order string) *Table[T] {
	return &Table[T]{db: db, order: order}
}

// DB exposes the underlying handle for repositories that need a query the table does not cover.
func (t *Table[T]) DB(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx)
}

func (t *Table[T]) Get(ctx context.Context, id string) (*T, error) {
	var row T
	err := t.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return &row, nil
}

func (t *Table[T]) Put(ctx context.Context, row *T) error {
	if err := t.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("put: %w", err)
	}
	return nil
}

// Update applies fields to the row keyed by id. ErrNotFound when no row matched.
func (t *Table[T]) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	res := t.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateIf applies fields only while cond holds. It reports whether a row was written;
// false means either the key is absent or the condition no longer matches.
func (t *Table[T]) UpdateIf(ctx context.Context, id string, cond Condition, fields map[string]interface{}) (bool, error) {
	res := t.db.WithContext(ctx).Model(new(T)).
		Where("id = ?", id).
		Where(fmt.Sprintf("%s = ?", cond.Column), cond.Value).
		Updates(fields)
	if res.Error != nil {
		return false, fmt.Errorf("conditional update %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (t *Table[T]) Scan(ctx context.Context) ([]*T, error) {
	var rows []*T
	q := t.db.WithContext(ctx)
	if t.order != "" {
		q = q.Order(t.order)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	return rows, nil
}

func (t *Table[T]) QueryByIndex(ctx context.Context, column string, value interface{}) ([]*T, error) {
	var rows []*T
	q := t.db.WithContext(ctx).Where(fmt.Sprintf("%s = ?", column), value)
	if t.order != "" {
		q = q.Order(t.order)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query %s: %w", column, err)
	}
	return rows, nil
}

// GetByIndex returns the single row for a unique secondary index.
func (t *Table[T]) GetByIndex(ctx context.Context, column string, value interface{}) (*T, error) {
	var row T
	err := t.db.WithContext(ctx).Where(fmt.Sprintf("%s = ?", column), value).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get by %s: %w", column, err)
	}
	return &row, nil
}
