package usecase

import (
	"math"
	"strconv"
	"strings"

	"github.com/phenrril/techcart/internal/domain"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// QueryParams is the raw listing parameter bag.
type QueryParams struct {
	Search    string
	Category  string
	Brand     string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
	InStock   bool
	Sort      string
	Page      int
	PageSize  int
}

// ParseQueryParams reads listing parameters through get (typically a query-string lookup).
// Paging values never fail: garbage becomes the default. Malformed numeric filters do.
func ParseQueryParams(get func(key string) string) (QueryParams, error) {
	p := QueryParams{
		Search:   get("search"),
		Category: get("category"),
		Brand:    get("brand"),
		InStock:  strings.EqualFold(strings.TrimSpace(get("inStock")), "true"),
		Sort:     get("sort"),
	}
	p.Page, _ = strconv.Atoi(strings.TrimSpace(get("page")))
	p.PageSize, _ = strconv.Atoi(strings.TrimSpace(get("limit")))

	var fields []string
	for _, nf := range []struct {
		key string
		dst **float64
	}{
		{"minPrice", &p.MinPrice},
		{"maxPrice", &p.MaxPrice},
		{"minRating", &p.MinRating},
	} {
		raw := strings.TrimSpace(get(nf.key))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			fields = append(fields, nf.key+" must be a number")
			continue
		}
		*nf.dst = &v
	}
	if len(fields) > 0 {
		return QueryParams{}, domain.NewValidationError(fields...)
	}
	return p, nil
}

// BuildQuery turns raw parameters into a canonical plan. It performs no I/O and never
// fails: out-of-range values are clamped, the category slug is resolved later.
func BuildQuery(p QueryParams) domain.ProductFilter {
	f := domain.ProductFilter{
		Search:       strings.TrimSpace(p.Search),
		CategorySlug: strings.ToLower(strings.TrimSpace(p.Category)),
		Brands:       splitBrands(p.Brand),
		InStock:      p.InStock,
		Page:         p.Page,
		PageSize:     p.PageSize,
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}

	if p.MinPrice != nil {
		v := math.Max(*p.MinPrice, 0)
		f.MinPrice = &v
	}
	if p.MaxPrice != nil {
		v := math.Max(*p.MaxPrice, 0)
		f.MaxPrice = &v
	}
	if p.MinRating != nil {
		v := math.Min(math.Max(*p.MinRating, 0), 5)
		f.MinRating = &v
	}

	f.Sort = sortKey(p.Sort, f.Search != "")
	return f
}

func sortKey(raw string, searching bool) domain.SortKey {
	switch k := domain.SortKey(strings.ToLower(strings.TrimSpace(raw))); k {
	case domain.SortPriceAsc, domain.SortPriceDesc, domain.SortRating, domain.SortNewest, domain.SortPopular:
		return k
	case domain.SortRelevance:
		if searching {
			return k
		}
	}
	return domain.SortNewest
}

func splitBrands(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	seen := map[string]struct{}{}
	var out []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	return out
}
