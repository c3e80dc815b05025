package domain

import (
	"context"

	"github.com/google/uuid"
)

type ProductRepo interface {
	List(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	// FindByID loads the full record, reviews and category included, regardless of IsActive.
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Featured(ctx context.Context, limit int) ([]Product, error)
	Deals(ctx context.Context, limit int) ([]Product, error)
	// Save upserts the product row only. Reviews, category and the rating and sales
	// counters of a stored product are never written through it.
	Save(ctx context.Context, p *Product) error
	// UpdateFields writes the named EditableFields of p and nothing else.
	UpdateFields(ctx context.Context, p *Product, fields ...string) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) error
	RecordSale(ctx context.Context, id uuid.UUID, qty int) error
	// UpdateReviews runs fn over the locked product and persists new reviews together
	// with the derived rating fields. Nothing is written when fn fails.
	UpdateReviews(ctx context.Context, id uuid.UUID, fn func(p *Product) error) (*Product, error)
	DistinctBrands(ctx context.Context) ([]string, error)
}

type CategoryRepo interface {
	FindBySlug(ctx context.Context, slug string) (*Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Save(ctx context.Context, c *Category) error
}

type CartRepo interface {
	// GetOrCreate returns the user's cart with lines and products loaded.
	GetOrCreate(ctx context.Context, userID string) (*Cart, error)
	// AddItem creates the line or atomically increments its quantity.
	AddItem(ctx context.Context, cartID, productID uuid.UUID, qty int) error
	// SetItemQuantity returns ErrNotFound when the product is not a line.
	SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, qty int) error
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
}

type WishlistRepo interface {
	GetOrCreate(ctx context.Context, userID string) (*Wishlist, error)
	// AddItem returns ErrConflict when the product is already present.
	AddItem(ctx context.Context, wishlistID, productID uuid.UUID) error
	RemoveItems(ctx context.Context, wishlistID uuid.UUID, productIDs ...uuid.UUID) error
}
