package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/phenrril/techcart/internal/domain"
)

const (
	SheetName   = "Products"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []any{
	"ID", "SKU", "Name", "Brand", "Model", "Category", "Price", "OriginalPrice", "Discount",
	"Stock", "LowStock", "Featured", "FreeShipping", "AverageRating", "TotalReviews", "TotalSales",
	"Tags", "CreatedAt",
}

// XLSX writes the catalog as a single-sheet workbook, one product per row.
type XLSX struct{}

func (XLSX) WriteCatalog(w io.Writer, products []domain.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("export: sheet: %w", err)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("export: header: %w", err)
	}
	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := productRow(p)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("export: row %d: %w", i+2, err)
		}
	}
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("export: panes: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write: %w", err)
	}
	return nil
}

func productRow(p domain.Product) []any {
	category := ""
	if p.Category != nil {
		category = p.Category.Slug
	}
	original := ""
	if p.OriginalPrice != nil {
		original = fmt.Sprintf("%.2f", *p.OriginalPrice)
	}
	return []any{
		p.ID.String(), p.SKU, p.Name, p.Brand, p.Model, category, p.Price, original, p.Discount,
		p.Stock, p.LowStock(), p.IsFeatured, p.FreeShipping, p.AverageRating, p.TotalReviews, p.TotalSales,
		strings.Join(p.Tags, ","), p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
