package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/phenrril/techcart/internal/domain"
)

type ProductRepo struct{ s *Store }

// Save upserts the product row. Stored reviews and counters are kept, whatever p holds.
func (r *ProductRepo) Save(_ context.Context, p *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for id, other := range r.s.products {
		if id != p.ID && other.SKU == p.SKU {
			return fmt.Errorf("product sku %s: %w", p.SKU, domain.NewConflict(domain.ReasonSKUTaken))
		}
	}
	now := r.s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	cp := cloneProduct(p)
	cp.Reviews = nil
	if old, ok := r.s.products[p.ID]; ok {
		cp.Reviews = old.Reviews
		cp.CreatedAt = old.CreatedAt
		cp.AverageRating, cp.TotalReviews, cp.TotalSales = old.AverageRating, old.TotalReviews, old.TotalSales
	}
	r.s.products[p.ID] = cp
	return nil
}

func (r *ProductRepo) UpdateFields(_ context.Context, p *domain.Product, fields ...string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.products[p.ID]
	if !ok {
		return fmt.Errorf("product %s: %w", p.ID, domain.ErrNotFound)
	}
	src := cloneProduct(p)
	cp := cloneProduct(old)
	for _, f := range fields {
		if err := setField(cp, src, f); err != nil {
			return err
		}
	}
	for id, other := range r.s.products {
		if id != cp.ID && other.SKU == cp.SKU {
			return fmt.Errorf("product sku %s: %w", cp.SKU, domain.NewConflict(domain.ReasonSKUTaken))
		}
	}
	cp.UpdatedAt = r.s.now()
	r.s.products[p.ID] = cp
	return nil
}

func setField(dst, src *domain.Product, f string) error {
	switch f {
	case "name":
		dst.Name = src.Name
	case "description":
		dst.Description = src.Description
	case "short_description":
		dst.ShortDescription = src.ShortDescription
	case "price":
		dst.Price = src.Price
	case "original_price":
		dst.OriginalPrice = src.OriginalPrice
	case "discount":
		dst.Discount = src.Discount
	case "category_id":
		dst.CategoryID = src.CategoryID
	case "brand":
		dst.Brand = src.Brand
	case "model":
		dst.Model = src.Model
	case "sku":
		dst.SKU = src.SKU
	case "images":
		dst.Images = src.Images
	case "specifications":
		dst.Specifications = src.Specifications
	case "stock":
		dst.Stock = src.Stock
	case "low_stock_threshold":
		dst.LowStockThreshold = src.LowStockThreshold
	case "is_active":
		dst.IsActive = src.IsActive
	case "is_featured":
		dst.IsFeatured = src.IsFeatured
	case "free_shipping":
		dst.FreeShipping = src.FreeShipping
	case "tags":
		dst.Tags = src.Tags
	default:
		return fmt.Errorf("product field %q is not editable", f)
	}
	return nil
}

func (r *ProductRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p := r.s.product(id, true)
	if p == nil {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (r *ProductRepo) List(_ context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	list := []domain.Product{}
	if f.MatchNone {
		return list, 0, nil
	}
	terms := tokens(f.Search)

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	type hit struct {
		p     *domain.Product
		score int
	}
	var hits []hit
	for _, p := range r.s.products {
		if !matches(p, f) {
			continue
		}
		score := 0
		if len(terms) > 0 {
			if score = searchScore(p, terms); score == 0 {
				continue
			}
		}
		hits = append(hits, hit{p: p, score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		a, b := hits[i].p, hits[j].p
		switch f.Sort {
		case domain.SortPriceAsc:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case domain.SortPriceDesc:
			if a.Price != b.Price {
				return a.Price > b.Price
			}
		case domain.SortRating:
			if a.AverageRating != b.AverageRating {
				return a.AverageRating > b.AverageRating
			}
		case domain.SortPopular:
			if a.TotalSales != b.TotalSales {
				return a.TotalSales > b.TotalSales
			}
		case domain.SortRelevance:
			if len(terms) > 0 {
				if hits[i].score != hits[j].score {
					return hits[i].score > hits[j].score
				}
				break
			}
			fallthrough
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return idLess(a.ID, b.ID)
	})

	total := int64(len(hits))
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 12
	}
	start := f.Offset()
	if start >= len(hits) {
		return list, total, nil
	}
	end := min(start+f.PageSize, len(hits))
	for _, h := range hits[start:end] {
		list = append(list, *r.s.product(h.p.ID, false))
	}
	return list, total, nil
}

func matches(p *domain.Product, f domain.ProductFilter) bool {
	if !p.IsActive {
		return false
	}
	if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
		return false
	}
	if len(f.Brands) > 0 {
		found := false
		for _, b := range f.Brands {
			if p.Brand == b {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.MinRating != nil && p.AverageRating < *f.MinRating {
		return false
	}
	if f.InStock && p.Stock <= 0 {
		return false
	}
	return true
}

func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// searchScore is 0 unless every term occurs in the product document; otherwise it
// counts term occurrences.
func searchScore(p *domain.Product, terms []string) int {
	doc := tokens(strings.Join(append([]string{p.Name, p.Description, p.Brand}, p.Tags...), " "))
	counts := make(map[string]int, len(doc))
	for _, w := range doc {
		counts[w]++
	}
	score := 0
	for _, t := range terms {
		if counts[t] == 0 {
			return 0
		}
		score += counts[t]
	}
	return score
}

func (r *ProductRepo) Featured(_ context.Context, limit int) ([]domain.Product, error) {
	return r.showcase(limit, func(p *domain.Product) bool { return p.IsFeatured }, func(a, b *domain.Product) int {
		return cmpDesc(float64(a.TotalSales), float64(b.TotalSales), a.AverageRating, b.AverageRating)
	}), nil
}

func (r *ProductRepo) Deals(_ context.Context, limit int) ([]domain.Product, error) {
	return r.showcase(limit, func(p *domain.Product) bool { return p.Discount > 0 }, func(a, b *domain.Product) int {
		return cmpDesc(a.Discount, b.Discount, float64(a.TotalSales), float64(b.TotalSales))
	}), nil
}

// showcase selects active in-stock products passing keep, ordered by cmp then id.
func (r *ProductRepo) showcase(limit int, keep func(*domain.Product) bool, cmp func(a, b *domain.Product) int) []domain.Product {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var sel []*domain.Product
	for _, p := range r.s.products {
		if p.IsActive && p.Stock > 0 && keep(p) {
			sel = append(sel, p)
		}
	}
	sort.Slice(sel, func(i, j int) bool {
		if c := cmp(sel[i], sel[j]); c != 0 {
			return c < 0
		}
		return idLess(sel[i].ID, sel[j].ID)
	})
	list := []domain.Product{}
	for i, p := range sel {
		if i == limit {
			break
		}
		list = append(list, *r.s.product(p.ID, false))
	}
	return list
}

// cmpDesc compares pairs of keys, larger first.
func cmpDesc(a1, b1, a2, b2 float64) int {
	switch {
	case a1 > b1:
		return -1
	case a1 < b1:
		return 1
	case a2 > b2:
		return -1
	case a2 < b2:
		return 1
	}
	return 0
}

func (r *ProductRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	p.IsActive = active
	p.UpdatedAt = r.s.now()
	return nil
}

func (r *ProductRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if p.Stock+delta < 0 {
		return domain.NewValidationError("stock cannot go below 0")
	}
	p.Stock += delta
	p.UpdatedAt = r.s.now()
	return nil
}

func (r *ProductRepo) RecordSale(_ context.Context, id uuid.UUID, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if p.Stock < qty {
		return domain.NewValidationError("insufficient stock")
	}
	p.Stock -= qty
	p.TotalSales += qty
	p.UpdatedAt = r.s.now()
	return nil
}

func (r *ProductRepo) UpdateReviews(_ context.Context, id uuid.UUID, fn func(p *domain.Product) error) (*domain.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := r.s.product(id, true)
	if cp == nil {
		return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	if err := fn(cp); err != nil {
		return nil, err
	}
	stored := r.s.products[id]
	stored.Reviews = append([]domain.Review(nil), cp.Reviews...)
	stored.AverageRating = cp.AverageRating
	stored.TotalReviews = cp.TotalReviews
	return r.s.product(id, true), nil
}

func (r *ProductRepo) DistinctBrands(_ context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	seen := map[string]struct{}{}
	brands := []string{}
	for _, p := range r.s.products {
		if !p.IsActive || p.Brand == "" {
			continue
		}
		if _, ok := seen[p.Brand]; ok {
			continue
		}
		seen[p.Brand] = struct{}{}
		brands = append(brands, p.Brand)
	}
	sort.Strings(brands)
	return brands, nil
}

var _ domain.ProductRepo = (*ProductRepo)(nil)
