// Package repository provides a generic gorm-backed persistence layer,
// plus the Job/ExportJob repositories layered on top of it.
package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository is the generic CRUD surface shared by every record type this
// service persists.
type Repository[T any] interface {
	Create(ctx context.Context, entity *T) error
	FindByID(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]T, error)
}

// BaseRepository implements Repository[T] over a gorm.DB handle.
type BaseRepository[T any] struct {
	db *gorm.DB
}

// NewBaseRepository constructs a BaseRepository for the given model type.
func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db}
}

func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Create(entity).Error
}

func (r *BaseRepository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *BaseRepository[T]) Update(ctx context.Context, entity *T) error {
	return r.db.WithContext(ctx).Save(entity).Error
}

func (r *BaseRepository[T]) Delete(ctx context.Context, id string) error {
	var entity T
	return r.db.WithContext(ctx).Delete(&entity, "id = ?", id).Error
}

func (r *BaseRepository[T]) List(ctx context.Context, limit, offset int) ([]T, error) {
	var entities []T
	q := r.db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}
