package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/techcart/internal/adapters/repo/memory"
	"github.com/phenrril/techcart/internal/domain"
	"github.com/phenrril/techcart/internal/usecase"
)

type fixture struct {
	store     *memory.Store
	products  *usecase.ProductUC
	reviews   *usecase.ReviewUC
	carts     *usecase.CartUC
	wishlists *usecase.WishlistUC
	category  *domain.Category
}

type stubWriter struct{ got []domain.Product }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	f := &fixture{
		store:     s,
		products:  &usecase.ProductUC{Products: s.Products(), Categories: s.Categories()},
		reviews:   &usecase.ReviewUC{Products: s.Products()},
		carts:     &usecase.CartUC{Carts: s.Carts(), Products: s.Products()},
		wishlists: &usecase.WishlistUC{Wishlists: s.Wishlists(), Products: s.Products()},
	}
	cat, err := f.products.CreateCategory(context.Background(), usecase.CategoryInput{Name: "Phones"})
	require.NoError(t, err)
	f.category = cat
	return f
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// put stores a product directly so tests control every field, created n minutes after base.
func (f *fixture) put(t *testing.T, n int, mutate func(p *domain.Product)) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID:                uuid.New(),
		Name:              "Product",
		Description:       "A product for tests",
		Price:             10,
		CategoryID:        f.category.ID,
		Brand:             "Acme",
		SKU:               uuid.NewString(),
		Stock:             5,
		LowStockThreshold: 10,
		IsActive:          true,
		CreatedAt:         base.Add(time.Duration(n) * time.Minute),
	}
	if mutate != nil {
		mutate(p)
	}
	require.NoError(t, f.store.Products().Save(context.Background(), p))
	return p
}

func usecasePatchActive(active bool) usecase.ProductPatch {
	return usecase.ProductPatch{IsActive: &active}
}
