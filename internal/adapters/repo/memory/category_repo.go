package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/techcart/internal/domain"
)

type CategoryRepo struct{ s *Store }

func (r *CategoryRepo) FindBySlug(_ context.Context, slug string) (*domain.Category, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.categories {
		if slug != "" && c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("category %s: %w", slug, domain.ErrNotFound)
}

func (r *CategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		list = append(list, *c)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return idLess(list[i].ID, list[j].ID)
	})
	return list, nil
}

func (r *CategoryRepo) Save(_ context.Context, c *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Slug = strings.ToLower(c.Slug)
	for id, other := range r.s.categories {
		if id != c.ID && other.Slug == c.Slug {
			return fmt.Errorf("category slug %s: %w", c.Slug, domain.NewConflict(domain.ReasonSlugTaken))
		}
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.s.now()
	}
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

var _ domain.CategoryRepo = (*CategoryRepo)(nil)
