package usecase_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phenrril/techcart/internal/domain"
	"github.com/phenrril/techcart/internal/usecase"
)

func (w *stubWriter) WriteCatalog(out io.Writer, products []domain.Product) error {
	w.got = products
	_, err := fmt.Fprintf(out, "%d products", len(products))
	return err
}

func TestProductUC_ListScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a := f.put(t, 1, func(p *domain.Product) { p.Price = 100 })
	f.put(t, 2, func(p *domain.Product) { p.Price = 200; p.IsActive = false })

	_, err := f.reviews.Add(ctx, a.ID, "u1", usecase.ReviewInput{Rating: 4, Comment: "good"})
	require.NoError(t, err)
	_, err = f.reviews.Add(ctx, a.ID, "u2", usecase.ReviewInput{Rating: 5, Comment: "great"})
	require.NoError(t, err)

	page, err := f.products.List(ctx, usecase.QueryParams{Sort: "price_asc", Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, a.ID, page.Products[0].ID)
	assert.Equal(t, 4.5, page.Products[0].AverageRating)
	assert.Equal(t, 2, page.Products[0].TotalReviews)
	assert.Nil(t, page.Products[0].Reviews)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	require.NotNil(t, page.Products[0].Category)
	assert.Equal(t, "phones", page.Products[0].Category.Slug)
}

func TestProductUC_PaginationIsStable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	want := map[uuid.UUID]bool{}
	for i := 0; i < 23; i++ {
		// equal prices and timestamps force the id tie-break
		p := f.put(t, i%3, func(p *domain.Product) { p.Price = float64(10 * (i % 4)) })
		want[p.ID] = true
	}
	f.put(t, 0, func(p *domain.Product) { p.IsActive = false })

	for _, sort := range []string{"price_asc", "price_desc", "newest", "rating", "popular"} {
		seen := map[uuid.UUID]bool{}
		var total int64
		for page := 1; page <= 5; page++ {
			res, err := f.products.List(ctx, usecase.QueryParams{Sort: sort, Page: page, PageSize: 5})
			require.NoError(t, err)
			assert.LessOrEqual(t, len(res.Products), 5)
			assert.Equal(t, 5, res.TotalPages)
			total = res.Total
			for _, p := range res.Products {
				assert.False(t, seen[p.ID], "duplicate %s with sort %s", p.ID, sort)
				seen[p.ID] = true
			}
		}
		assert.EqualValues(t, len(want), total, sort)
		assert.Equal(t, want, seen, sort)
	}
}

func TestProductUC_ListFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	other, err := f.products.CreateCategory(ctx, usecase.CategoryInput{Name: "Laptops"})
	require.NoError(t, err)

	cheap := f.put(t, 1, func(p *domain.Product) { p.Price = 50; p.Brand = "Acme"; p.Name = "Budget phone" })
	mid := f.put(t, 2, func(p *domain.Product) { p.Price = 150; p.Brand = "Zen"; p.Stock = 0; p.Tags = []string{"gaming"} })
	laptop := f.put(t, 3, func(p *domain.Product) {
		p.Price = 900
		p.Brand = "Zen"
		p.CategoryID = other.ID
		p.Name = "Gaming laptop"
		p.AverageRating = 4.2
	})

	ids := func(page usecase.Page) []uuid.UUID {
		var out []uuid.UUID
		for _, p := range page.Products {
			out = append(out, p.ID)
		}
		return out
	}
	list := func(q usecase.QueryParams) usecase.Page {
		t.Helper()
		page, err := f.products.List(ctx, q)
		require.NoError(t, err)
		return page
	}

	assert.Equal(t, []uuid.UUID{laptop.ID}, ids(list(usecase.QueryParams{Category: "LAPTOPS"})))
	assert.Empty(t, list(usecase.QueryParams{Category: "nope"}).Products)
	assert.Zero(t, list(usecase.QueryParams{Category: "nope"}).Total)
	assert.ElementsMatch(t, []uuid.UUID{mid.ID, laptop.ID}, ids(list(usecase.QueryParams{Brand: "Zen"})))
	assert.ElementsMatch(t, []uuid.UUID{cheap.ID, laptop.ID}, ids(list(usecase.QueryParams{InStock: true})))
	assert.Equal(t, []uuid.UUID{mid.ID}, ids(list(usecase.QueryParams{MinPrice: fp(100), MaxPrice: fp(150)})))
	assert.Equal(t, []uuid.UUID{laptop.ID}, ids(list(usecase.QueryParams{MinRating: fp(4)})))
	assert.ElementsMatch(t, []uuid.UUID{mid.ID, laptop.ID}, ids(list(usecase.QueryParams{Search: "GAMING"})))
	assert.Equal(t, []uuid.UUID{cheap.ID, mid.ID, laptop.ID}, ids(list(usecase.QueryParams{Sort: "price_asc"})))
	assert.Equal(t, []uuid.UUID{laptop.ID, mid.ID, cheap.ID}, ids(list(usecase.QueryParams{})))
}

func fp(v float64) *float64 { return &v }

func TestProductUC_ShowcaseLists(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	top := f.put(t, 1, func(p *domain.Product) { p.IsFeatured = true; p.TotalSales = 50; p.Discount = 5 })
	second := f.put(t, 2, func(p *domain.Product) { p.IsFeatured = true; p.TotalSales = 10; p.Discount = 40 })
	f.put(t, 3, func(p *domain.Product) { p.IsFeatured = true; p.Stock = 0; p.Discount = 60 })
	f.put(t, 4, func(p *domain.Product) { p.IsFeatured = true; p.IsActive = false; p.Discount = 70 })

	featured, err := f.products.Featured(ctx, 0)
	require.NoError(t, err)
	require.Len(t, featured, 2)
	assert.Equal(t, top.ID, featured[0].ID)
	assert.Equal(t, second.ID, featured[1].ID)

	deals, err := f.products.Deals(ctx, 1)
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, second.ID, deals[0].ID)
}

func TestProductUC_Get(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	active := f.put(t, 1, nil)
	hidden := f.put(t, 2, func(p *domain.Product) { p.IsActive = false })

	got, err := f.products.Get(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.Name, got.Name)

	_, err = f.products.Get(ctx, hidden.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.products.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func validInput() usecase.ProductInput {
	return usecase.ProductInput{
		Name:        "Pixel 9",
		Description: "Flagship phone with a great camera",
		Price:       799,
		Category:    "phones",
		Brand:       "Google",
		SKU:         "PX-9",
		Stock:       4,
	}
}

func TestProductUC_CreateUpdateDeactivate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	p, err := f.products.Create(ctx, validInput())
	require.NoError(t, err)
	assert.True(t, p.IsActive)
	assert.Equal(t, 10, p.LowStockThreshold)
	assert.Equal(t, f.category.ID, p.CategoryID)

	_, err = f.products.Create(ctx, validInput())
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, domain.ReasonSKUTaken, domain.ConflictReason(err))

	_, err = f.reviews.Add(ctx, p.ID, "u1", usecase.ReviewInput{Rating: 3, Comment: "ok"})
	require.NoError(t, err)

	price := 699.0
	updated, err := f.products.Update(ctx, p.ID, usecase.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 699.0, updated.Price)
	assert.Equal(t, "Pixel 9", updated.Name)

	got, err := f.products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Reviews, 1, "update keeps reviews")
	assert.Equal(t, 3.0, got.AverageRating)

	require.NoError(t, f.products.Deactivate(ctx, p.ID))
	_, err = f.products.Get(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, f.products.Deactivate(ctx, uuid.New()), domain.ErrNotFound)
}

// racingProducts runs between once, right after the first FindByID has taken its copy.
type racingProducts struct {
	domain.ProductRepo
	between func()
}

func (r *racingProducts) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, err := r.ProductRepo.FindByID(ctx, id)
	if fn := r.between; fn != nil {
		r.between = nil
		fn()
	}
	return p, err
}

func TestProductUC_UpdateKeepsConcurrentReviewAndSale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.put(t, 1, func(p *domain.Product) { p.Stock = 10 })

	repo := &racingProducts{ProductRepo: f.store.Products()}
	products := &usecase.ProductUC{Products: repo, Categories: f.store.Categories()}
	repo.between = func() {
		_, err := f.reviews.Add(ctx, p.ID, "u1", usecase.ReviewInput{Rating: 5, Comment: "great"})
		require.NoError(t, err)
		_, err = f.products.RecordSale(ctx, p.ID, 3)
		require.NoError(t, err)
	}

	price := 42.0
	updated, err := products.Update(ctx, p.ID, usecase.ProductPatch{Price: &price})
	require.NoError(t, err)
	assert.Nil(t, repo.between)

	got, err := f.products.Get(ctx, p.ID)
	require.NoError(t, err)
	for _, x := range []*domain.Product{updated, got} {
		assert.Equal(t, 42.0, x.Price)
		assert.Len(t, x.Reviews, 1)
		assert.Equal(t, 1, x.TotalReviews)
		assert.Equal(t, 5.0, x.AverageRating)
		assert.Equal(t, 7, x.Stock)
		assert.Equal(t, 3, x.TotalSales)
	}
}

func TestProductUC_UpdateEmptyPatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.put(t, 1, func(p *domain.Product) { p.Name = "Unchanged" })

	got, err := f.products.Update(ctx, p.ID, usecase.ProductPatch{})
	require.NoError(t, err)
	assert.Equal(t, "Unchanged", got.Name)
	require.NotNil(t, got.Category)
	assert.Equal(t, "phones", got.Category.Slug)
}

func TestProductUC_CreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	in := validInput()
	in.Name = "x"
	in.Description = "short"
	in.Discount = 120
	in.Price = -1
	_, err := f.products.Create(ctx, in)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.ElementsMatch(t, []string{
		"name must be at least 2 characters",
		"description must be at least 10 characters",
		"price must be at least 0",
		"discount must be at most 100",
	}, domain.FieldErrors(err))

	in = validInput()
	in.Category = "tablets"
	_, err = f.products.Create(ctx, in)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, []string{"category does not exist"}, domain.FieldErrors(err))
}

func TestProductUC_StockAndSales(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p := f.put(t, 1, func(p *domain.Product) { p.Stock = 3 })

	got, err := f.products.AdjustStock(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	_, err = f.products.AdjustStock(ctx, p.ID, -8)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.products.AdjustStock(ctx, p.ID, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err = f.products.RecordSale(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
	assert.Equal(t, 2, got.TotalSales)

	_, err = f.products.RecordSale(ctx, p.ID, 6)
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.products.RecordSale(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductUC_BrandsAndCategories(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.put(t, 1, func(p *domain.Product) { p.Brand = "Zen" })
	f.put(t, 2, func(p *domain.Product) { p.Brand = "Acme" })
	f.put(t, 3, func(p *domain.Product) { p.Brand = "Zen" })
	f.put(t, 4, func(p *domain.Product) { p.Brand = "Hidden"; p.IsActive = false })

	brands, err := f.products.Brands(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Zen"}, brands)

	_, err = f.products.CreateCategory(ctx, usecase.CategoryInput{Name: "PHONES!"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	c, err := f.products.CreateCategory(ctx, usecase.CategoryInput{Name: "Graphics Cards"})
	require.NoError(t, err)
	assert.Equal(t, "graphics-cards", c.Slug)

	cats, err := f.products.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Graphics Cards", cats[0].Name)
}

func TestProductUC_Export(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	w := &stubWriter{}
	f.products.Exporter = w
	for i := 0; i < 205; i++ {
		f.put(t, i, nil)
	}
	f.put(t, 0, func(p *domain.Product) { p.IsActive = false })

	var buf bytes.Buffer
	require.NoError(t, f.products.Export(ctx, &buf))
	assert.Len(t, w.got, 205)
	assert.Equal(t, "205 products", buf.String())
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "graphics-cards", usecase.Slugify("  Graphics   Cards "))
	assert.Equal(t, "power-supply-2", usecase.Slugify("Power-Supply #2!"))
	assert.Equal(t, "", usecase.Slugify("!!!"))
}
