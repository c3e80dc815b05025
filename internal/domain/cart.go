package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart belongs to exactly one user. Product references are unique per cart.
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string     `gorm:"size:64;uniqueIndex;not null" json:"user"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	CartID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product" json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product" json:"productId"`
	Product   *Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int       `gorm:"type:int;not null" json:"quantity"`
	Available bool      `gorm:"-" json:"available"`
	AddedAt   time.Time `gorm:"index" json:"addedAt"`
}

// Line returns the item for productID, if present.
func (c *Cart) Line(productID uuid.UUID) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}

// MarkAvailability flags lines whose product is missing or inactive.
func (c *Cart) MarkAvailability() {
	for i := range c.Items {
		c.Items[i].Available = c.Items[i].Product.Sellable()
	}
}

// TotalItems counts units across available lines.
func (c *Cart) TotalItems() int {
	n := 0
	for _, it := range c.Items {
		if it.Product.Sellable() {
			n += it.Quantity
		}
	}
	return n
}

// Subtotal sums price*quantity over available lines, rounded to cents.
func (c *Cart) Subtotal() float64 {
	total := decimal.Zero
	for _, it := range c.Items {
		if !it.Product.Sellable() {
			continue
		}
		line := decimal.NewFromFloat(it.Product.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(line)
	}
	f, _ := total.Round(2).Float64()
	return f
}
