package domain

import (
	"github.com/D0Nater/organization-manager/pkg/repository"
)

// Repository provides building persistence.
type Repository interface {
	repository.Repository[Building]
}
