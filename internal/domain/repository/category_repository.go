package repository

import "github.com/khadamatapp/marketplace-api/internal/domain/entity"

// CategoryUpdate carries the allow-listed mutable fields of a category.
// Nil pointers leave the stored value untouched.
type CategoryUpdate struct {
	Title         *string
	TitleAr       *string
	Description   *string
	DescriptionAr *string
	ImageSrc      *string
}

type CategoryRepository interface {
	Create(c *entity.Category) error
	GetBySlug(slug string) (*entity.Category, error)
	List() ([]*entity.Category, error)
	UpdateBySlug(slug string, upd CategoryUpdate) (*entity.Category, error)
	DeleteBySlug(slug string) error
}
