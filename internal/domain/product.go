package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string          `gorm:"size:200;not null" json:"name"`
	Description       string          `gorm:"type:text" json:"description"`
	ShortDescription  string          `gorm:"size:500" json:"shortDescription,omitempty"`
	Price             float64         `gorm:"type:decimal(12,2);not null;index" json:"price"`
	OriginalPrice     *float64        `gorm:"type:decimal(12,2)" json:"originalPrice,omitempty"`
	Discount          float64         `gorm:"type:decimal(5,2);default:0;index" json:"discount"`
	CategoryID        uuid.UUID       `gorm:"type:uuid;index" json:"-"`
	Category          *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Brand             string          `gorm:"size:100;index" json:"brand"`
	Model             string          `gorm:"size:140" json:"model,omitempty"`
	SKU               string          `gorm:"size:120;uniqueIndex" json:"sku"`
	Images            []Image         `gorm:"type:jsonb;serializer:json" json:"images"`
	Specifications    []Specification `gorm:"type:jsonb;serializer:json" json:"specifications"`
	Stock             int             `gorm:"type:int;not null;default:0" json:"stock"`
	LowStockThreshold int             `gorm:"type:int;default:10" json:"lowStockThreshold"`
	IsActive          bool            `gorm:"default:true;index" json:"isActive"`
	IsFeatured        bool            `gorm:"default:false;index" json:"isFeatured"`
	FreeShipping      bool            `gorm:"default:false" json:"freeShipping"`
	Tags              []string        `gorm:"type:jsonb;serializer:json" json:"tags"`
	Reviews           []Review        `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"reviews,omitempty"`
	AverageRating     float64         `gorm:"type:decimal(2,1);default:0;index" json:"averageRating"`
	TotalReviews      int             `gorm:"default:0" json:"totalReviews"`
	TotalSales        int             `gorm:"default:0;index" json:"totalSales"`
	CreatedAt         time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// EditableFields are the product columns an update may write. Rating and sales
// counters are absent; they change together with reviews and recorded sales.
var EditableFields = []string{
	"name", "description", "short_description", "price", "original_price", "discount",
	"category_id", "brand", "model", "sku", "images", "specifications", "stock",
	"low_stock_threshold", "is_active", "is_featured", "free_shipping", "tags",
}

func IsEditableField(f string) bool {
	return slices.Contains(EditableFields, f)
}

type Image struct {
	URL       string `json:"url"`
	Alt       string `json:"alt"`
	IsPrimary bool   `json:"isPrimary"`
}

type Specification struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Review is owned by its product. At most one review per (user, product).
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	UserID    string    `gorm:"size:64;index;not null" json:"user"`
	Rating    int       `gorm:"type:smallint;not null" json:"rating"`
	Comment   string    `gorm:"size:500;not null" json:"comment"`
	Helpful   int       `gorm:"default:0" json:"helpful"`
	CreatedAt time.Time `json:"createdAt"`
}

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Slug        string    `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Icon        string    `gorm:"size:120" json:"icon,omitempty"`
	CreatedAt   time.Time `json:"-"`
}

// Sellable reports whether the product can be put in a cart or wishlist.
func (p *Product) Sellable() bool {
	return p != nil && p.IsActive
}

func (p *Product) LowStock() bool {
	return p.Stock > 0 && p.Stock <= p.LowStockThreshold
}

// HasReviewFrom reports whether userID already reviewed the product.
func (p *Product) HasReviewFrom(userID string) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// Listing returns a copy stripped of the review collection.
func (p Product) Listing() Product {
	p.Reviews = nil
	return p
}

type SortKey string

const (
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
	SortPopular   SortKey = "popular"
	SortRelevance SortKey = "relevance"
)

// ProductFilter is the resolved query plan for catalog listings.
// Only active products are ever eligible.
type ProductFilter struct {
	Search       string
	CategorySlug string
	CategoryID   *uuid.UUID
	// MatchNone is set when a filter cannot match anything (unknown category).
	MatchNone bool
	Brands    []string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
	InStock   bool
	Sort      SortKey
	Page      int
	PageSize  int
}

func (f ProductFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
