package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/techcart/internal/domain"
)

// SearchVector is the document the catalog full-text search runs against.
// The GIN index created at migration time uses the identical expression.
const SearchVector = "to_tsvector('simple', coalesce(name, '') || ' ' || coalesce(description, '') || ' ' || coalesce(brand, '') || ' ' || coalesce(tags::text, ''))"

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

// counters only move through UpdateReviews and RecordSale.
var counters = []string{"average_rating", "total_reviews", "total_sales"}

func (r *ProductRepo) Save(ctx context.Context, p *domain.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Omit(append([]string{clause.Associations}, counters...)...).Save(p).Error
	return translate(err, "product sku "+p.SKU, domain.ReasonSKUTaken)
}

func (r *ProductRepo) UpdateFields(ctx context.Context, p *domain.Product, fields ...string) error {
	for _, f := range fields {
		if !domain.IsEditableField(f) {
			return fmt.Errorf("product field %q is not editable", f)
		}
	}
	res := r.db.WithContext(ctx).Model(p).Select(append([]string{"updated_at"}, fields...)).Updates(p)
	if res.Error != nil {
		return translate(res.Error, "product "+p.ID.String(), domain.ReasonSKUTaken)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *ProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc, id asc") }).
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "product "+id.String(), domain.ReasonSKUTaken)
	}
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	list := []domain.Product{}
	if f.MatchNone {
		return list, 0, nil
	}

	q := r.db.WithContext(ctx).Model(&domain.Product{}).Where("is_active = ?", true)
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if len(f.Brands) > 0 {
		q = q.Where("brand IN ?", f.Brands)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinRating != nil {
		q = q.Where("average_rating >= ?", *f.MinRating)
	}
	if f.InStock {
		q = q.Where("stock > 0")
	}
	if f.Search != "" {
		q = q.Where(SearchVector+" @@ plainto_tsquery('simple', ?)", f.Search)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = orderBy(q, f)
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 12
	}
	if err := q.Offset(f.Offset()).Limit(f.PageSize).Preload("Category").Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// orderBy applies the sort key. Every ordering ends on id so pages are stable.
func orderBy(q *gorm.DB, f domain.ProductFilter) *gorm.DB {
	switch f.Sort {
	case domain.SortPriceAsc:
		return q.Order("price asc, id asc")
	case domain.SortPriceDesc:
		return q.Order("price desc, id asc")
	case domain.SortRating:
		return q.Order("average_rating desc, id asc")
	case domain.SortPopular:
		return q.Order("total_sales desc, id asc")
	case domain.SortRelevance:
		if f.Search != "" {
			return q.Clauses(clause.OrderBy{Expression: clause.Expr{
				SQL:                "ts_rank(" + SearchVector + ", plainto_tsquery('simple', ?)) DESC, id ASC",
				Vars:               []any{f.Search},
				WithoutParentheses: true,
			}})
		}
	}
	return q.Order("created_at desc, id asc")
}

func (r *ProductRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *ProductRepo) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOr(ctx, id, domain.NewValidationError("stock cannot go below 0"))
	}
	return nil
}

func (r *ProductRepo) RecordSale(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumns(map[string]any{
			"stock":       gorm.Expr("stock - ?", qty),
			"total_sales": gorm.Expr("total_sales + ?", qty),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missingOr(ctx, id, domain.NewValidationError("insufficient stock"))
	}
	return nil
}

func (r *ProductRepo) UpdateReviews(ctx context.Context, id uuid.UUID, fn func(p *domain.Product) error) (*domain.Product, error) {
	var out domain.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Product
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error; err != nil {
			return translate(err, "product "+id.String(), domain.ReasonReviewed)
		}
		if err := tx.Where("product_id = ?", id).Order("created_at asc, id asc").Find(&p.Reviews).Error; err != nil {
			return err
		}
		known := make(map[uuid.UUID]struct{}, len(p.Reviews))
		for _, rv := range p.Reviews {
			known[rv.ID] = struct{}{}
		}

		if err := fn(&p); err != nil {
			return err
		}

		var added []domain.Review
		for _, rv := range p.Reviews {
			if _, ok := known[rv.ID]; !ok {
				rv.ProductID = p.ID
				added = append(added, rv)
			}
		}
		if len(added) > 0 {
			if err := tx.Create(&added).Error; err != nil {
				return translate(err, "review", domain.ReasonReviewed)
			}
		}
		err := tx.Model(&domain.Product{}).Where("id = ?", p.ID).UpdateColumns(map[string]any{
			"average_rating": p.AverageRating,
			"total_reviews":  p.TotalReviews,
		}).Error
		if err != nil {
			return err
		}

		if p.CategoryID != uuid.Nil {
			var c domain.Category
			if err := tx.First(&c, "id = ?", p.CategoryID).Error; err == nil {
				p.Category = &c
			}
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ProductRepo) DistinctBrands(ctx context.Context) ([]string, error) {
	brands := []string{}
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Distinct("brand").Where("brand <> '' AND is_active = ?", true).Order("brand asc").Pluck("brand", &brands).Error; err != nil {
		return nil, err
	}
	return brands, nil
}

func (r *ProductRepo) missingOr(ctx context.Context, id uuid.UUID, otherwise error) error {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return otherwise
}

var _ domain.ProductRepo = (*ProductRepo)(nil)
