package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/D0Nater/organization-manager/pkg/pagination"
	"github.com/D0Nater/organization-manager/pkg/spec"
)

type store[E any] struct {
	db *gorm.DB
}

// ProvideStore builds a generic store bound to db.
func ProvideStore[E any](db *gorm.DB) Repository[E] {
	return &store[E]{db: db}
}

func (r *store[E]) WithTx(tx *gorm.DB) Repository[E] {
	return &store[E]{db: tx}
}

func (r *store[E]) Create(ctx context.Context, entity *E) (*E, error) {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *store[E]) GetByID(ctx context.Context, id uuid.UUID) (*E, error) {
	var result E
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

// Update saves the whole entity by primary key. Partial patches are the
// caller's job: load, merge, save.
func (r *store[E]) Update(ctx context.Context, entity *E) (*E, error) {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *store[E]) Delete(ctx context.Context, id uuid.UUID) error {
	var dummy E
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&dummy).Error
}

func (r *store[E]) GetList(ctx context.Context, p pagination.Request, specs []*spec.Field, sorts []*spec.Sort, filters []spec.Filter) ([]*E, error) {
	stmt, err := r.buildQuery(ctx, specs, sorts, filters)
	if err != nil {
		return nil, err
	}
	var result []*E
	if err := p.Apply(stmt).Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// GetCount counts matching rows. Sorts never participate: they cannot
// change the count.
func (r *store[E]) GetCount(ctx context.Context, specs []*spec.Field, filters []spec.Filter) (int64, error) {
	stmt, err := r.buildQuery(ctx, specs, nil, filters)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := stmt.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GetPage runs the list and the count as two independent queries over the
// same specifications and filters, so the total reflects every matching
// row regardless of the requested page.
func (r *store[E]) GetPage(ctx context.Context, p pagination.Request, specs []*spec.Field, sorts []*spec.Sort, filters []spec.Filter) (pagination.Page[*E], error) {
	items, err := r.GetList(ctx, p, specs, sorts, filters)
	if err != nil {
		return pagination.Page[*E]{}, err
	}
	total, err := r.GetCount(ctx, specs, filters)
	if err != nil {
		return pagination.Page[*E]{}, err
	}
	return pagination.NewPage(items, total, p), nil
}

func (r *store[E]) BatchCreate(ctx context.Context, entities []*E) error {
	if len(entities) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entities).Error
}

func (r *store[E]) buildQuery(ctx context.Context, specs []*spec.Field, sorts []*spec.Sort, filters []spec.Filter) (*gorm.DB, error) {
	stmt := r.db.WithContext(ctx).Model(new(E))

	stmt, err := spec.Apply(stmt, specs)
	if err != nil {
		return nil, err
	}
	stmt, err = spec.ApplySort(stmt, sorts)
	if err != nil {
		return nil, err
	}
	return spec.ApplyFilters(stmt, filters), nil
}
