package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/phenrril/techcart/internal/domain"
)

type CartRepo struct{ s *Store }

func (r *CartRepo) GetOrCreate(_ context.Context, userID string) (*domain.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.carts[userID]
	if !ok {
		now := r.s.now()
		c = &domain.Cart{ID: uuid.New(), UserID: userID, CreatedAt: now, UpdatedAt: now}
		r.s.carts[userID] = c
	}
	return r.view(c), nil
}

// view copies the cart and attaches the current product of every line.
func (r *CartRepo) view(c *domain.Cart) *domain.Cart {
	cp := *c
	cp.Items = make([]domain.CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		it.Product = r.s.product(it.ProductID, false)
		cp.Items = append(cp.Items, it)
	}
	return &cp
}

func (r *CartRepo) byID(id uuid.UUID) (*domain.Cart, error) {
	for _, c := range r.s.carts {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("cart %s: %w", id, domain.ErrNotFound)
}

func (r *CartRepo) AddItem(_ context.Context, cartID, productID uuid.UUID, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, err := r.byID(cartID)
	if err != nil {
		return err
	}
	now := r.s.now()
	c.UpdatedAt = now
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += qty
			return nil
		}
	}
	c.Items = append(c.Items, domain.CartItem{ID: uuid.New(), CartID: cartID, ProductID: productID, Quantity: qty, AddedAt: now})
	return nil
}

func (r *CartRepo) SetItemQuantity(_ context.Context, cartID, productID uuid.UUID, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, err := r.byID(cartID)
	if err != nil {
		return err
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = qty
			c.UpdatedAt = r.s.now()
			return nil
		}
	}
	return fmt.Errorf("product %s not in cart: %w", productID, domain.ErrNotFound)
}

func (r *CartRepo) RemoveItem(_ context.Context, cartID, productID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, err := r.byID(cartID)
	if err != nil {
		return err
	}
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	c.UpdatedAt = r.s.now()
	return nil
}

func (r *CartRepo) Clear(_ context.Context, cartID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, err := r.byID(cartID)
	if err != nil {
		return err
	}
	c.Items = nil
	c.UpdatedAt = r.s.now()
	return nil
}

var _ domain.CartRepo = (*CartRepo)(nil)
