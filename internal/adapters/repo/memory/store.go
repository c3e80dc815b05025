// Package memory keeps the whole storefront in process memory. It backs local runs
// with STORE=memory and the usecase tests.
package memory

import (
	"bytes"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/techcart/internal/domain"
)

// Store is shared by the repos so carts and wishlists can resolve live products.
// A single mutex serializes every mutation.
type Store struct {
	mu         sync.RWMutex
	products   map[uuid.UUID]*domain.Product
	categories map[uuid.UUID]*domain.Category
	carts      map[string]*domain.Cart
	wishlists  map[string]*domain.Wishlist
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		products:   map[uuid.UUID]*domain.Product{},
		categories: map[uuid.UUID]*domain.Category{},
		carts:      map[string]*domain.Cart{},
		wishlists:  map[string]*domain.Wishlist{},
		now:        time.Now,
	}
}

func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s: s} }
func (s *Store) Carts() *CartRepo { return &CartRepo{s: s} }
func (s *Store) Wishlists() *WishlistRepo { return &WishlistRepo{s: s} }

// product returns a detached copy with its category attached. Callers hold the lock.
func (s *Store) product(id uuid.UUID, withReviews bool) *domain.Product {
	p, ok := s.products[id]
	if !ok {
		return nil
	}
	cp := cloneProduct(p)
	if !withReviews {
		cp.Reviews = nil
	}
	if c, ok := s.categories[cp.CategoryID]; ok {
		cc := *c
		cp.Category = &cc
	}
	return cp
}

func cloneProduct(p *domain.Product) *domain.Product {
	cp := *p
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		cp.OriginalPrice = &v
	}
	cp.Images = append([]domain.Image(nil), p.Images...)
	cp.Specifications = append([]domain.Specification(nil), p.Specifications...)
	cp.Tags = append([]string(nil), p.Tags...)
	cp.Reviews = append([]domain.Review(nil), p.Reviews...)
	cp.Category = nil
	return &cp
}

func idLess(a, b uuid.UUID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
