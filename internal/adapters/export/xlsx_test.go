package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/phenrril/techcart/internal/domain"
)

func TestXLSX_WriteCatalog(t *testing.T) {
	orig := 150.0
	products := []domain.Product{
		{
			ID: uuid.New(), SKU: "PH-1", Name: "Phone", Brand: "Acme", Price: 100, OriginalPrice: &orig,
			Discount: 33, Stock: 3, LowStockThreshold: 10, Tags: []string{"mobile", "5g"},
			Category: &domain.Category{Slug: "phones"}, CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		},
		{ID: uuid.New(), SKU: "LP-1", Name: "Laptop", Brand: "Zen", Price: 999.5, Stock: 20},
	}

	var buf bytes.Buffer
	require.NoError(t, XLSX{}.WriteCatalog(&buf, products))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "SKU", rows[0][1])
	assert.Equal(t, "PH-1", rows[1][1])
	assert.Equal(t, "phones", rows[1][5])
	assert.Equal(t, "150.00", rows[1][7])
	assert.Equal(t, "TRUE", rows[1][10])
	assert.Equal(t, "mobile,5g", rows[1][16])
	assert.Equal(t, "2024-01-02 03:04:05", rows[1][17])
	assert.Equal(t, "Laptop", rows[2][2])
	assert.Equal(t, "", rows[2][5])
}

func TestXLSX_WriteCatalogEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XLSX{}.WriteCatalog(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
}
