package repository

import (
	"gorm.io/gorm"

	"github.com/D0Nater/organization-manager/internal/building/domain"
	"github.com/D0Nater/organization-manager/pkg/repository"
)

type buildingRepository struct {
	repository.Repository[domain.Building]
}

// NewRepository builds the building store.
func NewRepository(db *gorm.DB) domain.Repository {
	return &buildingRepository{
		Repository: repository.ProvideStore[domain.Building](db),
	}
}
