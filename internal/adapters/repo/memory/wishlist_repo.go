package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/phenrril/techcart/internal/domain"
)

type WishlistRepo struct{ s *Store }

func (r *WishlistRepo) GetOrCreate(_ context.Context, userID string) (*domain.Wishlist, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.wishlists[userID]
	if !ok {
		now := r.s.now()
		w = &domain.Wishlist{ID: uuid.New(), UserID: userID, CreatedAt: now, UpdatedAt: now}
		r.s.wishlists[userID] = w
	}
	cp := *w
	cp.Items = make([]domain.WishlistItem, 0, len(w.Items))
	for _, it := range w.Items {
		it.Product = r.s.product(it.ProductID, false)
		cp.Items = append(cp.Items, it)
	}
	return &cp, nil
}

func (r *WishlistRepo) byID(id uuid.UUID) (*domain.Wishlist, error) {
	for _, w := range r.s.wishlists {
		if w.ID == id {
			return w, nil
		}
	}
	return nil, fmt.Errorf("wishlist %s: %w", id, domain.ErrNotFound)
}

func (r *WishlistRepo) AddItem(_ context.Context, wishlistID, productID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, err := r.byID(wishlistID)
	if err != nil {
		return err
	}
	if w.Contains(productID) {
		return domain.NewConflict(domain.ReasonInWishlist)
	}
	now := r.s.now()
	w.Items = append(w.Items, domain.WishlistItem{ID: uuid.New(), WishlistID: wishlistID, ProductID: productID, AddedAt: now})
	w.UpdatedAt = now
	return nil
}

func (r *WishlistRepo) RemoveItems(_ context.Context, wishlistID uuid.UUID, productIDs ...uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, err := r.byID(wishlistID)
	if err != nil {
		return err
	}
	drop := make(map[uuid.UUID]struct{}, len(productIDs))
	for _, id := range productIDs {
		drop[id] = struct{}{}
	}
	kept := w.Items[:0]
	for _, it := range w.Items {
		if _, ok := drop[it.ProductID]; !ok {
			kept = append(kept, it)
		}
	}
	w.Items = kept
	w.UpdatedAt = r.s.now()
	return nil
}

var _ domain.WishlistRepo = (*WishlistRepo)(nil)
