package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/techcart/internal/domain"
)

type WishlistRepo struct{ db *gorm.DB }

func NewWishlistRepo(db *gorm.DB) *WishlistRepo { return &WishlistRepo{db: db} }

func (r *WishlistRepo) GetOrCreate(ctx context.Context, userID string) (*domain.Wishlist, error) {
	w, err := r.get(ctx, userID)
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	fresh := domain.Wishlist{ID: uuid.New(), UserID: userID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&fresh).Error; err != nil {
		return nil, err
	}
	return r.get(ctx, userID)
}

func (r *WishlistRepo) get(ctx context.Context, userID string) (*domain.Wishlist, error) {
	var w domain.Wishlist
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("added_at asc, id asc") }).
		Preload("Items.Product").
		Preload("Items.Product.Category").
		First(&w, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	if w.Items == nil {
		w.Items = []domain.WishlistItem{}
	}
	return &w, nil
}

func (r *WishlistRepo) AddItem(ctx context.Context, wishlistID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item := domain.WishlistItem{ID: uuid.New(), WishlistID: wishlistID, ProductID: productID, AddedAt: time.Now()}
		if err := tx.Omit(clause.Associations).Create(&item).Error; err != nil {
			return translate(err, "wishlist item "+productID.String(), domain.ReasonInWishlist)
		}
		return touch(tx, &domain.Wishlist{}, wishlistID)
	})
}

func (r *WishlistRepo) RemoveItems(ctx context.Context, wishlistID uuid.UUID, productIDs ...uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("wishlist_id = ? AND product_id IN ?", wishlistID, productIDs).
			Delete(&domain.WishlistItem{}).Error; err != nil {
			return err
		}
		return touch(tx, &domain.Wishlist{}, wishlistID)
	})
}

var _ domain.WishlistRepo = (*WishlistRepo)(nil)
