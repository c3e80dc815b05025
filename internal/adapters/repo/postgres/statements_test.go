package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phenrril/techcart/internal/domain"
)

// The repos run against a dry-run session: gorm builds every statement with the
// postgres dialector and hands it to the recorder without touching a server.

var errDryRun = errors.New("dry run")

type dryPool struct{}

func (*dryPool) PrepareContext(context.Context, string) (*sql.Stmt, error) { return nil, errDryRun }
func (*dryPool) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, errDryRun
}
func (*dryPool) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errDryRun
}
func (*dryPool) QueryRowContext(context.Context, string, ...any) *sql.Row { return nil }
func (*dryPool) BeginTx(context.Context, *sql.TxOptions) (gorm.ConnPool, error) {
	return &dryTx{}, nil
}

type dryTx struct{ dryPool }

func (*dryTx) Commit() error   { return nil }
func (*dryTx) Rollback() error { return nil }

type recorder struct{ stmts []string }

func (r *recorder) LogMode(logger.LogLevel) logger.Interface      { return r }
func (r *recorder) Info(context.Context, string, ...interface{})  {}
func (r *recorder) Warn(context.Context, string, ...interface{})  {}
func (r *recorder) Error(context.Context, string, ...interface{}) {}
func (r *recorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	stmt, _ := fc()
	r.stmts = append(r.stmts, stmt)
}

// find returns the first statement containing prefix.
func (r *recorder) find(t *testing.T, prefix string) string {
	t.Helper()
	for _, s := range r.stmts {
		if strings.HasPrefix(s, prefix) {
			return s
		}
	}
	require.Failf(t, "statement not built", "no statement starting with %q in %q", prefix, r.stmts)
	return ""
}

func dryDB(t *testing.T) (*gorm.DB, *recorder) {
	t.Helper()
	rec := &recorder{}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: &dryPool{}}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 rec,
	})
	require.NoError(t, err)
	return db, rec
}

func ptr[T any](v T) *T { return &v }

func TestProductRepo_ListStatements(t *testing.T) {
	db, rec := dryDB(t)
	cat := uuid.New()

	_, _, err := NewProductRepo(db).List(context.Background(), domain.ProductFilter{
		CategoryID: &cat,
		Brands:     []string{"Acme", "Zed"},
		MinPrice:   ptr(10.0),
		MaxPrice:   ptr(20.0),
		MinRating:  ptr(4.0),
		InStock:    true,
		Sort:       domain.SortPriceAsc,
		Page:       2,
		PageSize:   5,
	})
	require.NoError(t, err)

	count := rec.find(t, "SELECT count(*)")
	page := rec.find(t, "SELECT * FROM \"products\"")
	for _, stmt := range []string{count, page} {
		assert.Contains(t, stmt, "is_active = true")
		assert.Contains(t, stmt, "category_id = '"+cat.String()+"'")
		assert.Contains(t, stmt, "brand IN ('Acme','Zed')")
		assert.Contains(t, stmt, "price >= 10")
		assert.Contains(t, stmt, "price <= 20")
		assert.Contains(t, stmt, "average_rating >= 4")
		assert.Contains(t, stmt, "stock > 0")
	}
	assert.NotContains(t, count, "ORDER BY")
	assert.Contains(t, page, "ORDER BY price asc, id asc")
	assert.Contains(t, page, "LIMIT 5 OFFSET 5")
}

func TestProductRepo_ListOrdering(t *testing.T) {
	tests := []struct {
		sort   domain.SortKey
		search string
		want   string
	}{
		{domain.SortPriceDesc, "", "ORDER BY price desc, id asc"},
		{domain.SortRating, "", "ORDER BY average_rating desc, id asc"},
		{domain.SortPopular, "", "ORDER BY total_sales desc, id asc"},
		{domain.SortNewest, "", "ORDER BY created_at desc, id asc"},
		{domain.SortRelevance, "", "ORDER BY created_at desc, id asc"},
		{domain.SortRelevance, "gaming mouse", "plainto_tsquery('simple', 'gaming mouse')) DESC, id ASC"},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort)+"/"+tt.search, func(t *testing.T) {
			db, rec := dryDB(t)
			_, _, err := NewProductRepo(db).List(context.Background(), domain.ProductFilter{
				Search: tt.search, Sort: tt.sort, Page: 1, PageSize: 12,
			})
			require.NoError(t, err)
			assert.Contains(t, rec.find(t, "SELECT * FROM \"products\""), tt.want)
		})
	}
}

func TestProductRepo_SearchUsesIndexedVector(t *testing.T) {
	db, rec := dryDB(t)
	_, _, err := NewProductRepo(db).List(context.Background(), domain.ProductFilter{
		Search: "ryzen", Sort: domain.SortRelevance, Page: 1, PageSize: 12,
	})
	require.NoError(t, err)

	page := rec.find(t, "SELECT * FROM \"products\"")
	assert.Contains(t, page, SearchVector+" @@ plainto_tsquery('simple', 'ryzen')")
	assert.Contains(t, page, "ORDER BY ts_rank("+SearchVector)
}

func TestProductRepo_MatchNoneSkipsQuery(t *testing.T) {
	db, rec := dryDB(t)
	list, total, err := NewProductRepo(db).List(context.Background(), domain.ProductFilter{MatchNone: true})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, total)
	assert.Empty(t, rec.stmts)
}

func TestProductRepo_ShowcaseStatements(t *testing.T) {
	db, rec := dryDB(t)
	r := NewProductRepo(db)

	_, err := r.Featured(context.Background(), 8)
	require.NoError(t, err)
	_, err = r.Deals(context.Background(), 3)
	require.NoError(t, err)

	require.Len(t, rec.stmts, 2)
	assert.Contains(t, rec.stmts[0], "is_featured = true AND stock > 0")
	assert.Contains(t, rec.stmts[0], "ORDER BY total_sales desc, average_rating desc, id asc LIMIT 8")
	assert.Contains(t, rec.stmts[1], "discount > 0 AND stock > 0")
	assert.Contains(t, rec.stmts[1], "ORDER BY discount desc, total_sales desc, id asc LIMIT 3")
}

func TestProductRepo_UpdateReviewsLocksRow(t *testing.T) {
	db, rec := dryDB(t)
	id := uuid.New()

	_, err := NewProductRepo(db).UpdateReviews(context.Background(), id, func(p *domain.Product) error {
		p.Reviews = append(p.Reviews, domain.Review{ID: uuid.New(), UserID: "u1", Rating: 5, Comment: "great"})
		p.ApplyRating()
		return nil
	})
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(rec.stmts), 4)
	assert.True(t, strings.HasPrefix(rec.stmts[0], "SELECT * FROM \"products\""), rec.stmts[0])
	assert.Contains(t, rec.stmts[0], "id = '"+id.String()+"'")
	assert.True(t, strings.HasSuffix(rec.stmts[0], "FOR UPDATE"), rec.stmts[0])
	assert.True(t, strings.HasPrefix(rec.stmts[1], "SELECT * FROM \"reviews\""), rec.stmts[1])
	assert.True(t, strings.HasPrefix(rec.stmts[2], "INSERT INTO \"reviews\""), rec.stmts[2])
	assert.Contains(t, rec.stmts[2], "'u1'")

	update := rec.find(t, "UPDATE \"products\"")
	assert.Contains(t, update, "\"average_rating\"=5")
	assert.Contains(t, update, "\"total_reviews\"=1")
}

func TestProductRepo_UpdateReviewsFailureWritesNothing(t *testing.T) {
	db, rec := dryDB(t)
	_, err := NewProductRepo(db).UpdateReviews(context.Background(), uuid.New(), func(*domain.Product) error {
		return domain.NewConflict(domain.ReasonReviewed)
	})
	require.ErrorIs(t, err, domain.ErrConflict)
	for _, s := range rec.stmts {
		assert.True(t, strings.HasPrefix(s, "SELECT"), s)
	}
}

func TestProductRepo_SaveLeavesCounters(t *testing.T) {
	db, rec := dryDB(t)
	p := &domain.Product{ID: uuid.New(), Name: "Phone", SKU: "P-1", Stock: 3, AverageRating: 1, TotalReviews: 9, TotalSales: 9}

	require.NoError(t, NewProductRepo(db).Save(context.Background(), p))

	stmt := rec.find(t, "UPDATE \"products\"")
	assert.Contains(t, stmt, "\"name\"='Phone'")
	assert.Contains(t, stmt, "\"stock\"=3")
	for _, col := range counters {
		assert.NotContains(t, stmt, col)
	}
}

func TestProductRepo_UpdateFieldsWritesOnlyNamedColumns(t *testing.T) {
	db, rec := dryDB(t)
	p := &domain.Product{ID: uuid.New(), Name: "stale", Price: 42, Stock: 1, TotalSales: 7, AverageRating: 2}
	r := NewProductRepo(db)

	// dry runs affect no rows, so the missing-row error is expected here
	assert.ErrorIs(t, r.UpdateFields(context.Background(), p, "price"), domain.ErrNotFound)

	stmt := rec.find(t, "UPDATE \"products\"")
	assert.Contains(t, stmt, "\"price\"=42")
	assert.Contains(t, stmt, "\"updated_at\"=")
	assert.Contains(t, stmt, "\"id\" = '"+p.ID.String()+"'")
	for _, col := range []string{"\"name\"", "\"stock\"", "\"total_sales\"", "\"average_rating\""} {
		assert.NotContains(t, stmt, col)
	}

	assert.Error(t, r.UpdateFields(context.Background(), p, "average_rating"))
}

func TestProductRepo_StockGuards(t *testing.T) {
	db, rec := dryDB(t)
	r := NewProductRepo(db)
	id := uuid.New()

	_ = r.AdjustStock(context.Background(), id, -3)
	_ = r.RecordSale(context.Background(), id, 2)

	adjust := rec.find(t, "UPDATE \"products\" SET \"stock\"=stock + -3")
	assert.Contains(t, adjust, "stock + -3 >= 0")

	var sale string
	for _, s := range rec.stmts {
		if strings.Contains(s, "total_sales + 2") {
			sale = s
		}
	}
	require.NotEmpty(t, sale, rec.stmts)
	assert.Contains(t, sale, "\"stock\"=stock - 2")
	assert.Contains(t, sale, "stock >= 2")
}

func TestCartRepo_AddItemIncrementsAtomically(t *testing.T) {
	db, rec := dryDB(t)
	cartID, productID := uuid.New(), uuid.New()

	require.NoError(t, NewCartRepo(db).AddItem(context.Background(), cartID, productID, 3))

	insert := rec.find(t, "INSERT INTO \"cart_items\"")
	assert.Contains(t, insert, "ON CONFLICT (\"cart_id\",\"product_id\")")
	assert.Contains(t, insert, "DO UPDATE SET \"quantity\"=cart_items.quantity + excluded.quantity")

	touch := rec.find(t, "UPDATE \"carts\"")
	assert.Contains(t, touch, "id = '"+cartID.String()+"'")
}

func TestWishlistRepo_RemoveItemsStatement(t *testing.T) {
	db, rec := dryDB(t)
	wishlistID, a, b := uuid.New(), uuid.New(), uuid.New()
	r := NewWishlistRepo(db)

	require.NoError(t, r.RemoveItems(context.Background(), wishlistID))
	assert.Empty(t, rec.stmts)

	require.NoError(t, r.RemoveItems(context.Background(), wishlistID, a, b))
	del := rec.find(t, "DELETE FROM \"wishlist_items\"")
	assert.Contains(t, del, "product_id IN ('"+a.String()+"','"+b.String()+"')")
}
