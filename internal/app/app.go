package app

import (
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/phenrril/techcart/internal/adapters/export"
	"github.com/phenrril/techcart/internal/adapters/httpserver"
	"github.com/phenrril/techcart/internal/adapters/repo/memory"
	"github.com/phenrril/techcart/internal/adapters/repo/postgres"
	"github.com/phenrril/techcart/internal/config"
	"github.com/phenrril/techcart/internal/domain"
	"github.com/phenrril/techcart/internal/usecase"
)

type App struct {
	Config     config.Config
	DB         *gorm.DB
	ProductUC  *usecase.ProductUC
	ReviewUC   *usecase.ReviewUC
	CartUC     *usecase.CartUC
	WishlistUC *usecase.WishlistUC
}

// NewApp wires the usecases over postgres when db is set, and over the in-memory
// store otherwise.
func NewApp(cfg config.Config, db *gorm.DB) (*App, error) {
	var (
		products   domain.ProductRepo
		categories domain.CategoryRepo
		carts      domain.CartRepo
		wishlists  domain.WishlistRepo
	)
	switch {
	case db != nil:
		products = postgres.NewProductRepo(db)
		categories = postgres.NewCategoryRepo(db)
		carts = postgres.NewCartRepo(db)
		wishlists = postgres.NewWishlistRepo(db)
	case cfg.Store == config.StoreMemory:
		s := memory.NewStore()
		products, categories, carts, wishlists = s.Products(), s.Categories(), s.Carts(), s.Wishlists()
	default:
		return nil, fmt.Errorf("app: store %q needs a database", cfg.Store)
	}

	return &App{
		Config:     cfg,
		DB:         db,
		ProductUC:  &usecase.ProductUC{Products: products, Categories: categories, Exporter: export.XLSX{}},
		ReviewUC:   &usecase.ReviewUC{Products: products},
		CartUC:     &usecase.CartUC{Carts: carts, Products: products},
		WishlistUC: &usecase.WishlistUC{Wishlists: wishlists, Products: products},
	}, nil
}

func (a *App) HTTPHandler() http.Handler {
	opts := httpserver.Options{
		JWTSecret:   a.Config.Secret(),
		CORSOrigins: a.Config.CORSOrigins,
	}
	return httpserver.New(opts, a.ProductUC, a.ReviewUC, a.CartUC, a.WishlistUC)
}

// Migrate creates or updates the schema. It is a no-op for the in-memory store.
func (a *App) Migrate() error {
	if a.DB == nil {
		return nil
	}
	if err := a.DB.AutoMigrate(
		&domain.Category{}, &domain.Product{}, &domain.Review{},
		&domain.Cart{}, &domain.CartItem{}, &domain.Wishlist{}, &domain.WishlistItem{},
	); err != nil {
		return fmt.Errorf("app: automigrate: %w", err)
	}

	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_search ON products USING gin (" + postgres.SearchVector + ")",
		"CREATE INDEX IF NOT EXISTS idx_products_featured ON products (total_sales DESC, average_rating DESC) WHERE is_active AND is_featured AND stock > 0",
		"CREATE INDEX IF NOT EXISTS idx_products_deals ON products (discount DESC, total_sales DESC) WHERE is_active AND discount > 0 AND stock > 0",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_product_user ON reviews (product_id, user_id)",
	}
	for _, s := range stmts {
		if err := a.DB.Exec(s).Error; err != nil {
			return fmt.Errorf("app: index: %w", err)
		}
	}
	return nil
}
