package postgres

import (
	"context"

	"github.com/phenrril/techcart/internal/domain"
)

// Featured returns active, featured, in-stock products, best sellers first.
func (r *ProductRepo) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	list := []domain.Product{}
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_featured = ? AND stock > 0", true, true).
		Order("total_sales desc, average_rating desc, id asc").
		Limit(limit).
		Preload("Category").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Deals returns active, discounted, in-stock products, deepest discount first.
func (r *ProductRepo) Deals(ctx context.Context, limit int) ([]domain.Product, error) {
	list := []domain.Product{}
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND discount > 0 AND stock > 0", true).
		Order("discount desc, total_sales desc, id asc").
		Limit(limit).
		Preload("Category").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
