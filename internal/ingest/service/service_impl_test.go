package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rajesh196rsh/e-commerce/internal/cache"
	catalogdomain "github.com/rajesh196rsh/e-commerce/internal/catalog/domain"
	"github.com/rajesh196rsh/e-commerce/internal/catalog/repository"
	"github.com/rajesh196rsh/e-commerce/internal/clock"
	"github.com/rajesh196rsh/e-commerce/internal/config"
	"github.com/rajesh196rsh/e-commerce/internal/events"
	"github.com/rajesh196rsh/e-commerce/internal/ingest/domain"
	"github.com/rajesh196rsh/e-commerce/pkg/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc    *Service
	db     *gorm.DB
	store  *repository.Store
	cache  *cache.MemoryReportCache
	outbox *events.Outbox
}

func setup(t *testing.T) fixture {
	t.Helper()
	conn, err := db.Open(config.DriverSQLite, "file:"+strings.ReplaceAll(t.Name(), "/", "_")+"?mode=memory&cache=shared")
	require.NoError(t, err)
	models := append(catalogdomain.Models(), &domain.ImportRun{}, &events.Record{})
	require.NoError(t, conn.AutoMigrate(models...))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Import.BatchSize = 2

	store := repository.NewStore(conn)
	reportCache := cache.NewMemoryReportCache(time.Minute, nil)
	outbox := events.NewOutbox(conn, node)
	svc := NewService(ServiceParam{
		DB:     conn,
		Store:  store,
		Log:    zap.NewNop(),
		GenID:  node,
		Clock:  clock.FixedClock{At: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		Config: cfg,
		Events: outbox,
		Cache:  reportCache,
	}).(*Service)
	return fixture{svc: svc, db: conn, store: store, cache: reportCache, outbox: outbox}
}

func product(t *testing.T, f fixture, id string) catalogdomain.Product {
	t.Helper()
	p, err := f.store.FindProduct(context.Background(), nil, id)
	require.NoError(t, err)
	require.NotNil(t, p, id)
	return *p
}

func TestImportProductsFillsMissingValues(t *testing.T) {
	f := setup(t)
	csv := "product_id,product_name,category,price,quantity_sold,rating,review_count\n" +
		"P1,Mug,Kitchen,10,4,4.0,3\n" +
		"P2,Pan,Kitchen,,6,,\n" +
		"P3,Book,Books,30,,5,abc\n" +
		"P4,Pen,Books,20,2,x,1\n"

	run, err := f.svc.Import(context.Background(), domain.KindProducts, "products.csv", strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, domain.ImportStatusCompleted, run.Status)
	require.Equal(t, 4, run.Total)
	require.Equal(t, 4, run.Inserted)
	require.Zero(t, run.Failed)

	p2 := product(t, f, "P2")
	require.True(t, p2.Price.Equal(decimal.NewFromInt(20)), p2.Price.String())
	require.InDelta(t, 4.0, p2.Rating, 1e-9)
	require.Equal(t, int64(0), p2.ReviewCount)

	p3 := product(t, f, "P3")
	require.Equal(t, int64(4), p3.QuantitySold)
	require.Equal(t, int64(0), p3.ReviewCount)

	p4 := product(t, f, "P4")
	require.InDelta(t, 5.0, p4.Rating, 1e-9)
}

func TestImportProductsMergesDuplicates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Import(ctx, domain.KindProducts, "a.csv", strings.NewReader(
		"product_id,product_name,category,price,quantity_sold,rating,review_count\n"+
			"P1,Mug,Kitchen,10,4,4.0,3\n"))
	require.NoError(t, err)

	run, err := f.svc.Import(ctx, domain.KindProducts, "b.csv", strings.NewReader(
		"product_id,product_name,category,price,quantity_sold,rating,review_count\n"+
			"P1,MUG,kitchen,20,4,2.0,1\n"+
			"P1,Bowl,Kitchen,5,1,1,1\n"+
			"P9,Plate,Kitchen,3,1,3,0\n"))
	require.NoError(t, err)
	require.Equal(t, 1, run.Merged)
	require.Equal(t, 1, run.Inserted)
	require.Equal(t, 1, run.Failed)

	p1 := product(t, f, "P1")
	require.Equal(t, "Mug", p1.ProductName)
	require.Equal(t, int64(8), p1.QuantitySold)
	require.Equal(t, int64(4), p1.ReviewCount)
	require.True(t, p1.Price.Equal(decimal.NewFromInt(15)), p1.Price.String())
	require.InDelta(t, 3.0, p1.Rating, 1e-9)

	var stored domain.ImportRun
	require.NoError(t, f.db.First(&stored, "id = ?", run.ID).Error)
	require.Equal(t, 1, stored.Failed)
	require.Len(t, stored.Stats["errors"], 1)
}

func TestImportProductsWithoutIDMatchesByNameAndCategory(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Import(ctx, domain.KindProducts, "a.csv", strings.NewReader(
		"product_id,product_name,category,price,quantity_sold,rating,review_count\n"+
			"P1,Mug,Kitchen,10,2,4,1\n"))
	require.NoError(t, err)

	run, err := f.svc.Import(ctx, domain.KindProducts, "b.csv", strings.NewReader(
		"product_id,product_name,category,price,quantity_sold,rating,review_count\n"+
			",mug,KITCHEN,10,2,4,1\n"+
			",Spoon,Kitchen,1,1,4,1\n"))
	require.NoError(t, err)
	require.Equal(t, 1, run.Merged)
	require.Equal(t, 1, run.Inserted)
	require.Equal(t, int64(4), product(t, f, "P1").QuantitySold)

	spoon, err := f.store.FindProductByNameCategory(ctx, nil, "spoon", "kitchen")
	require.NoError(t, err)
	require.NotNil(t, spoon)
	require.True(t, strings.HasPrefix(spoon.ProductID, "P"))
}

func TestImportProductsWithoutIDMergesRepeatsInSameFile(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	run, err := f.svc.Import(ctx, domain.KindProducts, "c.csv", strings.NewReader(
		"product_id,product_name,category,price,quantity_sold,rating,review_count\n"+
			",Mug,Kitchen,10,1,4,2\n"+
			",mug,kitchen,20,3,2,1\n"))
	require.NoError(t, err)
	require.Equal(t, 1, run.Inserted)
	require.Equal(t, 1, run.Merged)
	require.Zero(t, run.Failed)

	products, err := f.store.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, int64(4), products[0].QuantitySold)
	require.Equal(t, int64(3), products[0].ReviewCount)
	require.True(t, products[0].Price.Equal(decimal.RequireFromString("17.5")), products[0].Price.String())
}

func TestImportRejectsMissingColumn(t *testing.T) {
	f := setup(t)
	run, err := f.svc.Import(context.Background(), domain.KindOrders, "orders.csv",
		strings.NewReader("order_id,customer_id\nO1,C1\n"))
	require.ErrorIs(t, err, domain.ErrMissingColumn)
	require.Equal(t, domain.ImportStatusFailed, run.Status)
	require.NotEmpty(t, run.Error)
}

func TestImportRejectsUnknownKind(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Import(context.Background(), domain.Kind("invoices"), "x.csv", strings.NewReader("a\n1\n"))
	require.ErrorIs(t, err, domain.ErrUnknownKind)
}

func TestImportOrderDataEndToEnd(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, gen, _, err := f.cache.Get(ctx, "stale")
	require.NoError(t, err)
	require.NoError(t, f.cache.Set(ctx, gen, "stale", []byte("[]")))

	_, err = f.svc.Import(ctx, domain.KindCustomers, "customers.csv", strings.NewReader(
		"\uFEFFCustomer ID,Customer Name,Email\n"+
			"C1,Ada,ADA@example.com\n"+
			"C2,Bob,bob@example.com\n"+
			"C1,Ada Again,ada@example.com\n"))
	require.NoError(t, err)

	run, err := f.svc.Import(ctx, domain.KindOrders, "orders.csv", strings.NewReader(
		"order_id,customer_id,order_date\n"+
			"O1,C1,2024-05-01\n"+
			"O2,C2,2024-05-02 10:30:00\n"+
			"O3,C2,yesterday\n"))
	require.NoError(t, err)
	require.Equal(t, 2, run.Inserted)
	require.Equal(t, 1, run.Failed)

	run, err = f.svc.Import(ctx, domain.KindLineItems, "items.csv", strings.NewReader(
		"order_id,product_id,quantity,price_per_unit\n"+
			"O1,P1,2,9.99\n"+
			"O1,P2,-1,5\n"+
			"\n"+
			"O2,P1,1,abc\n"))
	require.NoError(t, err)
	require.Equal(t, 3, run.Total)
	require.Equal(t, 1, run.Inserted)
	require.Equal(t, 2, run.Failed)

	customers, err := f.store.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	require.Equal(t, "ada@example.com", customers[0].Email)

	items, err := f.store.ListLineItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotZero(t, items[0].ID)
	require.True(t, items[0].PricePerUnit.Equal(decimal.RequireFromString("9.99")))

	_, _, ok, err := f.cache.Get(ctx, "stale")
	require.NoError(t, err)
	require.False(t, ok)

	pending, err := f.outbox.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	require.Equal(t, events.EventImportCompleted, pending[0].EventType)
}
