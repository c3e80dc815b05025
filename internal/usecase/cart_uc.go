package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/techcart/internal/domain"
)

// MaxLineQuantity bounds a single cart line.
const MaxLineQuantity = 10000

// CartUC owns per-user cart transitions. Every operation returns the cart as it is
// after the mutation.
type CartUC struct {
	Carts    domain.CartRepo
	Products domain.ProductRepo
}

// LoadOrCreate returns the user's cart, creating an empty one on first access.
// Session collaborators call it on login.
func (uc *CartUC) LoadOrCreate(ctx context.Context, userID string) (*domain.Cart, error) {
	const op = "CartUC.LoadOrCreate"

	if err := requireUser(userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c, err := uc.Carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.MarkAvailability()
	return c, nil
}

// AddItem adds qty units of the product, accumulating onto an existing line.
// Stock is not reserved here.
func (uc *CartUC) AddItem(ctx context.Context, userID string, productID uuid.UUID, qty int) (*domain.Cart, error) {
	const op = "CartUC.AddItem"

	if qty < 1 {
		return nil, fmt.Errorf("%s: %w", op, domain.NewValidationError("quantity must be at least 1"))
	}
	if qty > MaxLineQuantity {
		return nil, fmt.Errorf("%s: %w", op, tooMany())
	}
	if err := uc.requireSellable(ctx, productID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c, err := uc.LoadOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if line, ok := c.Line(productID); ok && line.Quantity+qty > MaxLineQuantity {
		return nil, fmt.Errorf("%s: %w", op, tooMany())
	}
	if err := uc.Carts.AddItem(ctx, c.ID, productID, qty); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return uc.LoadOrCreate(ctx, userID)
}

// SetQuantity overwrites a line's quantity; 0 removes the line.
func (uc *CartUC) SetQuantity(ctx context.Context, userID string, productID uuid.UUID, qty int) (*domain.Cart, error) {
	const op = "CartUC.SetQuantity"

	if qty < 0 {
		return nil, fmt.Errorf("%s: %w", op, domain.NewValidationError("quantity must be at least 0"))
	}
	if qty > MaxLineQuantity {
		return nil, fmt.Errorf("%s: %w", op, tooMany())
	}
	c, err := uc.LoadOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if qty == 0 {
		if _, ok := c.Line(productID); !ok {
			return nil, fmt.Errorf("%s: product %s not in cart: %w", op, productID, domain.ErrNotFound)
		}
		err = uc.Carts.RemoveItem(ctx, c.ID, productID)
	} else {
		err = uc.Carts.SetItemQuantity(ctx, c.ID, productID, qty)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return uc.LoadOrCreate(ctx, userID)
}

// RemoveItem deletes the line if present. Removing an absent product is not an error.
func (uc *CartUC) RemoveItem(ctx context.Context, userID string, productID uuid.UUID) (*domain.Cart, error) {
	const op = "CartUC.RemoveItem"

	c, err := uc.LoadOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, ok := c.Line(productID); !ok {
		return c, nil
	}
	if err := uc.Carts.RemoveItem(ctx, c.ID, productID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return uc.LoadOrCreate(ctx, userID)
}

// Clear empties the cart but keeps it. Session collaborators call it on logout.
func (uc *CartUC) Clear(ctx context.Context, userID string) (*domain.Cart, error) {
	const op = "CartUC.Clear"

	c, err := uc.LoadOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(c.Items) == 0 {
		return c, nil
	}
	if err := uc.Carts.Clear(ctx, c.ID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return uc.LoadOrCreate(ctx, userID)
}

func (uc *CartUC) requireSellable(ctx context.Context, productID uuid.UUID) error {
	p, err := uc.Products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	if !p.Sellable() {
		return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}
	return nil
}

func tooMany() error {
	return domain.NewValidationError(fmt.Sprintf("quantity must be at most %d", MaxLineQuantity))
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return domain.NewValidationError("user is required")
	}
	return nil
}
