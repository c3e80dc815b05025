package domain

import (
	"time"

	"github.com/google/uuid"
)

type Wishlist struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string         `gorm:"size:64;uniqueIndex;not null" json:"user"`
	Items     []WishlistItem `gorm:"foreignKey:WishlistID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type WishlistItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	WishlistID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_items_wishlist_product" json:"-"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_items_wishlist_product" json:"productId"`
	Product    *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	AddedAt    time.Time `gorm:"index" json:"addedAt"`
}

func (w *Wishlist) Contains(productID uuid.UUID) bool {
	for _, it := range w.Items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

// Stale returns the product ids whose product is missing or inactive.
func (w *Wishlist) Stale() []uuid.UUID {
	var ids []uuid.UUID
	for _, it := range w.Items {
		if !it.Product.Sellable() {
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}

// Prune drops stale items in place, keeping insertion order.
func (w *Wishlist) Prune() {
	kept := w.Items[:0]
	for _, it := range w.Items {
		if it.Product.Sellable() {
			kept = append(kept, it)
		}
	}
	w.Items = kept
}
