package postgres

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/techcart/internal/domain"
)

type CategoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var c domain.Category
	s := strings.ToLower(strings.TrimSpace(slug))
	if s == "" {
		return nil, domain.ErrNotFound
	}
	if err := r.db.WithContext(ctx).First(&c, "slug = ?", s).Error; err != nil {
		return nil, translate(err, "category "+s, domain.ReasonSlugTaken)
	}
	return &c, nil
}

func (r *CategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err, "category "+id.String(), domain.ReasonSlugTaken)
	}
	return &c, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	list := []domain.Category{}
	if err := r.db.WithContext(ctx).Order("name asc, id asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *CategoryRepo) Save(ctx context.Context, c *domain.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Slug = strings.ToLower(c.Slug)
	return translate(r.db.WithContext(ctx).Save(c).Error, "category slug "+c.Slug, domain.ReasonSlugTaken)
}
