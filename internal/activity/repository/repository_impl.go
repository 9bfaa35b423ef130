package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/D0Nater/organization-manager/internal/activity/domain"
	"github.com/D0Nater/organization-manager/pkg/repository"
)

type activityRepository struct {
	repository.Repository[domain.Activity]
	db *gorm.DB
}

// NewRepository builds the activity store.
func NewRepository(db *gorm.DB) domain.Repository {
	return &activityRepository{
		Repository: repository.ProvideStore[domain.Activity](db),
		db:         db,
	}
}

// UNION rather than UNION ALL so the traversal terminates even if the
// parent chain is ever corrupted into a cycle.
const descendantsQuery = `
WITH RECURSIVE activity_tree AS (
	SELECT id, parent_id FROM activities WHERE id IN ?
	UNION
	SELECT a.id, a.parent_id FROM activities a
	JOIN activity_tree t ON a.parent_id = t.id
)
SELECT id FROM activity_tree`

func (r *activityRepository) ExpandDescendants(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var expanded []uuid.UUID
	if err := r.db.WithContext(ctx).Raw(descendantsQuery, ids).Scan(&expanded).Error; err != nil {
		return nil, err
	}
	return expanded, nil
}
