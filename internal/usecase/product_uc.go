package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/phenrril/techcart/internal/domain"
)

const (
	defaultShowcaseLimit = 8
	exportPageSize       = 200
)

// CatalogWriter renders a product listing into an export document.
type CatalogWriter interface {
	WriteCatalog(w io.Writer, products []domain.Product) error
}

type ProductUC struct {
	Products   domain.ProductRepo
	Categories domain.CategoryRepo
	Exporter   CatalogWriter
}

type Page struct {
	Products   []domain.Product
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

type ProductInput struct {
	Name              string                 `json:"name" validate:"required,min=2,max=200"`
	Description       string                 `json:"description" validate:"required,min=10,max=2000"`
	ShortDescription  string                 `json:"shortDescription" validate:"max=500"`
	Price             float64                `json:"price" validate:"gte=0"`
	OriginalPrice     *float64               `json:"originalPrice" validate:"omitempty,gte=0"`
	Discount          float64                `json:"discount" validate:"gte=0,lte=100"`
	Category          string                 `json:"category" validate:"required"`
	Brand             string                 `json:"brand" validate:"required"`
	Model             string                 `json:"model" validate:"max=140"`
	SKU               string                 `json:"sku" validate:"required,max=120"`
	Images            []domain.Image         `json:"images"`
	Specifications    []domain.Specification `json:"specifications"`
	Stock             int                    `json:"stock" validate:"gte=0"`
	LowStockThreshold *int                   `json:"lowStockThreshold" validate:"omitempty,gte=0"`
	IsFeatured        bool                   `json:"isFeatured"`
	FreeShipping      bool                   `json:"freeShipping"`
	Tags              []string               `json:"tags"`
}

// ProductPatch holds a partial update; nil fields are left untouched.
type ProductPatch struct {
	Name              *string                 `json:"name"`
	Description       *string                 `json:"description"`
	ShortDescription  *string                 `json:"shortDescription"`
	Price             *float64                `json:"price"`
	OriginalPrice     *float64                `json:"originalPrice"`
	Discount          *float64                `json:"discount"`
	Category          *string                 `json:"category"`
	Brand             *string                 `json:"brand"`
	Model             *string                 `json:"model"`
	SKU               *string                 `json:"sku"`
	Images            *[]domain.Image         `json:"images"`
	Specifications    *[]domain.Specification `json:"specifications"`
	Stock             *int                    `json:"stock"`
	LowStockThreshold *int                    `json:"lowStockThreshold"`
	IsActive          *bool                   `json:"isActive"`
	IsFeatured        *bool                   `json:"isFeatured"`
	FreeShipping      *bool                   `json:"freeShipping"`
	Tags              *[]string               `json:"tags"`
}

// List executes a catalog listing. Products come without their review collection.
func (uc *ProductUC) List(ctx context.Context, params QueryParams) (Page, error) {
	const op = "ProductUC.List"

	f := BuildQuery(params)
	if f.CategorySlug != "" {
		c, err := uc.Categories.FindBySlug(ctx, f.CategorySlug)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			f.MatchNone = true
		case err != nil:
			return Page{}, fmt.Errorf("%s: %w", op, err)
		default:
			f.CategoryID = &c.ID
		}
	}

	page := Page{Products: []domain.Product{}, Page: f.Page, PageSize: f.PageSize}
	if f.MatchNone {
		return page, nil
	}

	list, total, err := uc.Products.List(ctx, f)
	if err != nil {
		return Page{}, fmt.Errorf("%s: %w", op, err)
	}
	for _, p := range list {
		page.Products = append(page.Products, p.Listing())
	}
	page.Total = total
	page.TotalPages = int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
	return page, nil
}

func (uc *ProductUC) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	list, err := uc.Products.Featured(ctx, showcaseLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("ProductUC.Featured: %w", err)
	}
	return listings(list), nil
}

func (uc *ProductUC) Deals(ctx context.Context, limit int) ([]domain.Product, error) {
	list, err := uc.Products.Deals(ctx, showcaseLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("ProductUC.Deals: %w", err)
	}
	return listings(list), nil
}

// Get returns the full product, reviews included. Inactive products are not found.
func (uc *ProductUC) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	p, err := uc.Products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ProductUC.Get: %w", err)
	}
	if !p.IsActive {
		return nil, fmt.Errorf("ProductUC.Get: product %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (uc *ProductUC) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	const op = "ProductUC.Create"

	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cat, err := uc.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := &domain.Product{ID: uuid.New(), IsActive: true, LowStockThreshold: 10}
	in.applyTo(p)
	p.CategoryID = cat.ID
	if err := uc.Products.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p.Category = cat
	return p, nil
}

// Update applies a partial edit. Only the columns present in patch are written, so
// concurrent reviews, sales and stock moves on other columns are kept.
func (uc *ProductUC) Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*domain.Product, error) {
	const op = "ProductUC.Update"

	p, err := uc.Products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	in := inputFrom(p)
	patch.applyTo(&in)
	in.normalize()
	if err := validateStruct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	cat, err := uc.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	in.applyTo(p)
	p.CategoryID = cat.ID
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	if fields := patch.fields(); len(fields) > 0 {
		if err := uc.Products.UpdateFields(ctx, p, fields...); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	p, err = uc.Products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Deactivate hides a product from the catalog without deleting it.
func (uc *ProductUC) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := uc.Products.SetActive(ctx, id, false); err != nil {
		return fmt.Errorf("ProductUC.Deactivate: %w", err)
	}
	return nil
}

func (uc *ProductUC) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*domain.Product, error) {
	const op = "ProductUC.AdjustStock"

	if delta == 0 {
		return nil, fmt.Errorf("%s: %w", op, domain.NewValidationError("delta must not be 0"))
	}
	if err := uc.Products.AdjustStock(ctx, id, delta); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p, err := uc.Products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// RecordSale moves qty units from stock to the sales counter.
func (uc *ProductUC) RecordSale(ctx context.Context, id uuid.UUID, qty int) (*domain.Product, error) {
	const op = "ProductUC.RecordSale"

	if qty < 1 {
		return nil, fmt.Errorf("%s: %w", op, domain.NewValidationError("quantity must be at least 1"))
	}
	if err := uc.Products.RecordSale(ctx, id, qty); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	p, err := uc.Products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (uc *ProductUC) Brands(ctx context.Context) ([]string, error) {
	brands, err := uc.Products.DistinctBrands(ctx)
	if err != nil {
		return nil, fmt.Errorf("ProductUC.Brands: %w", err)
	}
	return brands, nil
}

func (uc *ProductUC) ListCategories(ctx context.Context) ([]domain.Category, error) {
	cats, err := uc.Categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ProductUC.ListCategories: %w", err)
	}
	return cats, nil
}

type CategoryInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Slug        string `json:"slug" validate:"max=120"`
	Description string `json:"description"`
	Icon        string `json:"icon" validate:"max=120"`
}

func (uc *ProductUC) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	const op = "ProductUC.CreateCategory"

	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(in.Name)
	}
	c := &domain.Category{ID: uuid.New(), Name: in.Name, Slug: slug, Description: in.Description, Icon: in.Icon}
	if err := uc.Categories.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// Export writes every active product to w, walking the catalog page by page.
func (uc *ProductUC) Export(ctx context.Context, w io.Writer) error {
	const op = "ProductUC.Export"

	var all []domain.Product
	f := domain.ProductFilter{Sort: domain.SortNewest, Page: 1, PageSize: exportPageSize}
	for {
		list, total, err := uc.Products.List(ctx, f)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		all = append(all, listings(list)...)
		if len(list) == 0 || f.Page*f.PageSize >= int(total) {
			break
		}
		f.Page++
	}
	if err := uc.Exporter.WriteCatalog(w, all); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (uc *ProductUC) resolveCategory(ctx context.Context, ref string) (*domain.Category, error) {
	ref = strings.TrimSpace(ref)
	var (
		c   *domain.Category
		err error
	)
	if id, perr := uuid.Parse(ref); perr == nil {
		c, err = uc.Categories.FindByID(ctx, id)
	} else {
		c, err = uc.Categories.FindBySlug(ctx, strings.ToLower(ref))
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.NewValidationError("category does not exist")
	}
	return c, err
}

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func showcaseLimit(limit int) int {
	if limit < 1 {
		return defaultShowcaseLimit
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

func listings(list []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(list))
	for _, p := range list {
		out = append(out, p.Listing())
	}
	return out
}

func (in *ProductInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Brand = strings.TrimSpace(in.Brand)
	in.SKU = strings.TrimSpace(in.SKU)
	in.Model = strings.TrimSpace(in.Model)
}

func (in ProductInput) applyTo(p *domain.Product) {
	p.Name = in.Name
	p.Description = in.Description
	p.ShortDescription = in.ShortDescription
	p.Price = in.Price
	p.OriginalPrice = in.OriginalPrice
	p.Discount = in.Discount
	p.Brand = in.Brand
	p.Model = in.Model
	p.SKU = in.SKU
	p.Images = in.Images
	p.Specifications = in.Specifications
	p.Stock = in.Stock
	if in.LowStockThreshold != nil {
		p.LowStockThreshold = *in.LowStockThreshold
	}
	p.IsFeatured = in.IsFeatured
	p.FreeShipping = in.FreeShipping
	p.Tags = in.Tags
}

func inputFrom(p *domain.Product) ProductInput {
	threshold := p.LowStockThreshold
	return ProductInput{
		Name:              p.Name,
		Description:       p.Description,
		ShortDescription:  p.ShortDescription,
		Price:             p.Price,
		OriginalPrice:     p.OriginalPrice,
		Discount:          p.Discount,
		Category:          p.CategoryID.String(),
		Brand:             p.Brand,
		Model:             p.Model,
		SKU:               p.SKU,
		Images:            p.Images,
		Specifications:    p.Specifications,
		Stock:             p.Stock,
		LowStockThreshold: &threshold,
		IsFeatured:        p.IsFeatured,
		FreeShipping:      p.FreeShipping,
		Tags:              p.Tags,
	}
}

// fields names the product columns the patch touches.
func (pt ProductPatch) fields() []string {
	var out []string
	add := func(set bool, col string) {
		if set {
			out = append(out, col)
		}
	}
	add(pt.Name != nil, "name")
	add(pt.Description != nil, "description")
	add(pt.ShortDescription != nil, "short_description")
	add(pt.Price != nil, "price")
	add(pt.OriginalPrice != nil, "original_price")
	add(pt.Discount != nil, "discount")
	add(pt.Category != nil, "category_id")
	add(pt.Brand != nil, "brand")
	add(pt.Model != nil, "model")
	add(pt.SKU != nil, "sku")
	add(pt.Images != nil, "images")
	add(pt.Specifications != nil, "specifications")
	add(pt.Stock != nil, "stock")
	add(pt.LowStockThreshold != nil, "low_stock_threshold")
	add(pt.IsActive != nil, "is_active")
	add(pt.IsFeatured != nil, "is_featured")
	add(pt.FreeShipping != nil, "free_shipping")
	add(pt.Tags != nil, "tags")
	return out
}

func (pt ProductPatch) applyTo(in *ProductInput) {
	if pt.Name != nil {
		in.Name = *pt.Name
	}
	if pt.Description != nil {
		in.Description = *pt.Description
	}
	if pt.ShortDescription != nil {
		in.ShortDescription = *pt.ShortDescription
	}
	if pt.Price != nil {
		in.Price = *pt.Price
	}
	if pt.OriginalPrice != nil {
		in.OriginalPrice = pt.OriginalPrice
	}
	if pt.Discount != nil {
		in.Discount = *pt.Discount
	}
	if pt.Category != nil {
		in.Category = *pt.Category
	}
	if pt.Brand != nil {
		in.Brand = *pt.Brand
	}
	if pt.Model != nil {
		in.Model = *pt.Model
	}
	if pt.SKU != nil {
		in.SKU = *pt.SKU
	}
	if pt.Images != nil {
		in.Images = *pt.Images
	}
	if pt.Specifications != nil {
		in.Specifications = *pt.Specifications
	}
	if pt.Stock != nil {
		in.Stock = *pt.Stock
	}
	if pt.LowStockThreshold != nil {
		in.LowStockThreshold = pt.LowStockThreshold
	}
	if pt.IsFeatured != nil {
		in.IsFeatured = *pt.IsFeatured
	}
	if pt.FreeShipping != nil {
		in.FreeShipping = *pt.FreeShipping
	}
	if pt.Tags != nil {
		in.Tags = *pt.Tags
	}
}
