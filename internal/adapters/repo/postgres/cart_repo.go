package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/techcart/internal/domain"
)

type CartRepo struct{ db *gorm.DB }

func NewCartRepo(db *gorm.DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) GetOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	c, err := r.get(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	// Two first requests can race here; the unique user index keeps one row.
	fresh := domain.Cart{ID: uuid.New(), UserID: userID}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&fresh).Error; err != nil {
		return nil, err
	}
	return r.get(ctx, userID)
}

func (r *CartRepo) get(ctx context.Context, userID string) (*domain.Cart, error) {
	var c domain.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("added_at asc, id asc") }).
		Preload("Items.Product").
		Preload("Items.Product.Category").
		First(&c, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	return &c, nil
}

func (r *CartRepo) AddItem(ctx context.Context, cartID, productID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item := domain.CartItem{ID: uuid.New(), CartID: cartID, ProductID: productID, Quantity: qty, AddedAt: time.Now()}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
			DoUpdates: clause.Set{{Column: clause.Column{Name: "quantity"}, Value: gorm.Expr("cart_items.quantity + excluded.quantity")}},
		}).Omit(clause.Associations).Create(&item).Error
		if err != nil {
			return err
		}
		return touch(tx, &domain.Cart{}, cartID)
	})
}

func (r *CartRepo) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.CartItem{}).
			Where("cart_id = ? AND product_id = ?", cartID, productID).
			Update("quantity", qty)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("product %s not in cart: %w", productID, domain.ErrNotFound)
		}
		return touch(tx, &domain.Cart{}, cartID)
	})
}

func (r *CartRepo) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		return touch(tx, &domain.Cart{}, cartID)
	})
}

func (r *CartRepo) Clear(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&domain.CartItem{}).Error; err != nil {
			return err
		}
		return touch(tx, &domain.Cart{}, cartID)
	})
}

// touch bumps updated_at on the owning cart or wishlist row.
func touch(tx *gorm.DB, model any, id uuid.UUID) error {
	return tx.Model(model).Where("id = ?", id).UpdateColumn("updated_at", time.Now()).Error
}

var _ domain.CartRepo = (*CartRepo)(nil)
