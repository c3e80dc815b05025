package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/techcart/internal/domain"
	"github.com/phenrril/techcart/internal/usecase"
)

var seedCategories = []usecase.CategoryInput{
	{Name: "Processors", Description: "CPU processors from AMD and Intel"},
	{Name: "Graphics Cards", Description: "High-performance graphics cards for gaming and professional work"},
	{Name: "Storage", Description: "SSDs, HDDs and storage solutions"},
	{Name: "Laptops", Description: "Laptops for work, gaming and everyday use"},
	{Name: "Accessories", Description: "Computer accessories and peripherals"},
}

func ptr[T any](v T) *T { return &v }

var seedProducts = []usecase.ProductInput{
	{
		Name: "AMD Ryzen 9 5900X", Category: "processors", Brand: "AMD", Model: "5900X", SKU: "AMD-5900X-001",
		Description:      "High-performance 12-core, 24-thread processor for gaming and content creation",
		ShortDescription: "12-core, 24-thread processor with 3.7GHz base clock",
		Price:            38999, OriginalPrice: ptr(45990.0), Discount: 15, Stock: 25,
		IsFeatured: true, FreeShipping: true,
		Specifications: []domain.Specification{{Key: "Cores", Value: "12"}, {Key: "Socket", Value: "AM4"}},
		Tags:           []string{"processor", "amd", "ryzen", "gaming"},
	},
	{
		Name: "NVIDIA GeForce RTX 3080", Category: "graphics-cards", Brand: "NVIDIA", Model: "RTX 3080", SKU: "NV-RTX3080-001",
		Description:      "Powerful graphics card for 4K gaming and ray tracing",
		ShortDescription: "High-end graphics card with 10GB GDDR6X memory",
		Price:            71999, OriginalPrice: ptr(79990.0), Discount: 10, Stock: 15,
		IsFeatured: true, FreeShipping: true,
		Specifications: []domain.Specification{{Key: "Memory", Value: "10GB GDDR6X"}},
		Tags:           []string{"graphics-card", "nvidia", "rtx", "gaming", "4k"},
	},
	{
		Name: "Samsung 980 Pro 1TB SSD", Category: "storage", Brand: "Samsung", Model: "980 Pro", SKU: "SAM-980PRO-1TB",
		Description: "PCIe 4.0 NVMe SSD with read speeds up to 7000 MB/s",
		Price:       9999, OriginalPrice: ptr(12999.0), Discount: 23, Stock: 40,
		Tags: []string{"ssd", "nvme", "storage"},
	},
	{
		Name: "Intel Core i9-12900K", Category: "processors", Brand: "Intel", Model: "12900K", SKU: "INT-12900K-001",
		Description: "16-core desktop processor with hybrid performance architecture",
		Price:       44999, Stock: 8, IsFeatured: true,
		Tags: []string{"processor", "intel", "gaming"},
	},
}

// Seed loads a demo catalog when no category exists yet.
func (a *App) Seed(ctx context.Context) error {
	existing, err := a.ProductUC.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("app: seed: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, c := range seedCategories {
		if _, err := a.ProductUC.CreateCategory(ctx, c); err != nil && !errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("app: seed category %s: %w", c.Name, err)
		}
	}
	for _, p := range seedProducts {
		if _, err := a.ProductUC.Create(ctx, p); err != nil && !errors.Is(err, domain.ErrConflict) {
			return fmt.Errorf("app: seed product %s: %w", p.SKU, err)
		}
	}
	log.Info().Int("categories", len(seedCategories)).Int("products", len(seedProducts)).Msg("catalog seeded")
	return nil
}
