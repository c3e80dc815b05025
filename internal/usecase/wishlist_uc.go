package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/techcart/internal/domain"
)

type WishlistUC struct {
	Wishlists domain.WishlistRepo
	Products  domain.ProductRepo
}

// LoadOrCreate returns the user's wishlist. Entries whose product is missing or
// inactive are removed and the pruned list is persisted before returning.
func (uc *WishlistUC) LoadOrCreate(ctx context.Context, userID string) (*domain.Wishlist, error) {
	const op = "WishlistUC.LoadOrCreate"

	if err := requireUser(userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	w, err := uc.Wishlists.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if stale := w.Stale(); len(stale) > 0 {
		if err := uc.Wishlists.RemoveItems(ctx, w.ID, stale...); err != nil {
			return nil, fmt.Errorf("%s: prune: %w", op, err)
		}
		log.Debug().Str("user", userID).Int("pruned", len(stale)).Msg("wishlist pruned")
		w.Prune()
	}
	return w, nil
}

// Add appends the product. Already present is a conflict.
func (uc *WishlistUC) Add(ctx context.Context, userID string, productID uuid.UUID) (*domain.Wishlist, error) {
	const op = "WishlistUC.Add"

	p, err := uc.Products.FindByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !p.Sellable() {
		return nil, fmt.Errorf("%s: product %s: %w", op, productID, domain.ErrNotFound)
	}
	w, err := uc.LoadOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if w.Contains(productID) {
		return nil, fmt.Errorf("%s: %w", op, domain.NewConflict(domain.ReasonInWishlist))
	}
	if err := uc.Wishlists.AddItem(ctx, w.ID, productID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return uc.LoadOrCreate(ctx, userID)
}

// Remove drops the product if present; absent is not an error.
func (uc *WishlistUC) Remove(ctx context.Context, userID string, productID uuid.UUID) (*domain.Wishlist, error) {
	const op = "WishlistUC.Remove"

	w, err := uc.LoadOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !w.Contains(productID) {
		return w, nil
	}
	if err := uc.Wishlists.RemoveItems(ctx, w.ID, productID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return uc.LoadOrCreate(ctx, userID)
}
