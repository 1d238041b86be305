package products

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/techzonevn/storefront-backend/internal/pricing"
	"github.com/techzonevn/storefront-backend/internal/testsupport"
	"github.com/techzonevn/storefront-backend/pkg/db"
	"github.com/techzonevn/storefront-backend/pkg/db/models"
	"github.com/techzonevn/storefront-backend/pkg/enums"
	pkgerrors "github.com/techzonevn/storefront-backend/pkg/errors"
	"github.com/techzonevn/storefront-backend/pkg/outbox"
	"github.com/techzonevn/storefront-backend/pkg/pagination"
)

type fakeSource struct {
	promos []pricing.Promotion
	err    error
	calls  int
}

func (f *fakeSource) ActivePromotions(context.Context, time.Time) ([]pricing.Promotion, error) {
	f.calls++
	return f.promos, f.err
}

func newTestService(t *testing.T, source *fakeSource) (Service, *Repository, *gorm.DB) {
	t.Helper()
	conn := testsupport.OpenSQLite(t)
	repo := NewRepository(conn)
	loader, err := pricing.NewLoader(source)
	require.NoError(t, err)
	svc, err := NewService(db.FromGorm(conn), repo, loader, outbox.NewService(outbox.NewRepository(conn), nil))
	require.NoError(t, err)
	return svc, repo, conn
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Điện thoại Samsung Galaxy S24": "dien-thoai-samsung-galaxy-s24",
		"iPhone 15 Pro Max 256GB":       "iphone-15-pro-max-256gb",
		"  Tai nghe   (Bluetooth)  ":    "tai-nghe-bluetooth",
		"Sạc nhanh 65W - Chính hãng":    "sac-nhanh-65w-chinh-hang",
		"!!!":                           "",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCreateAndDetailPricesSelectedVariant(t *testing.T) {
	source := &fakeSource{}
	svc, _, _ := newTestService(t, source)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductRequest{
		Name:       "Điện thoại Galaxy S24",
		Brand:      "Samsung",
		Category:   "phone",
		Price:      1_000_000,
		Stock:      10,
		Colors:     []string{"Black"},
		Capacities: []string{"256GB"},
		Variants: []VariantInput{
			{Capacity: "256GB", Price: 1_000_000, Stock: 5},
			{Color: "Black", Capacity: "256GB", Price: 1_100_000, Stock: 5},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "dien-thoai-galaxy-s24", created.Slug)
	assert.Nil(t, created.Pricing.AppliedPromotion)
	require.Len(t, created.Variants, 2)

	source.promos = []pricing.Promotion{{
		ID:              uuid.New(),
		Name:            "Sale 10%",
		Scope:           enums.PromotionScopeGlobal,
		DiscountPercent: 10,
		IsActive:        true,
	}}

	detail, err := svc.Detail(ctx, nil, created.ID, pricing.Selection{Color: " black ", Capacity: "256gb"})
	require.NoError(t, err)
	require.NotNil(t, detail.SelectedVariant)
	assert.Equal(t, "Black", detail.SelectedVariant.Color)
	assert.Equal(t, int64(1_100_000), detail.Pricing.BasePrice)
	assert.Equal(t, int64(990_000), detail.Pricing.FinalPrice)
	assert.Equal(t, 10, detail.Pricing.EffectiveDiscountPercent)
	require.NotNil(t, detail.Pricing.AppliedPromotion)

	require.Len(t, detail.VariantPrices, 2)
	assert.Equal(t, int64(900_000), detail.VariantPrices[0].Pricing.FinalPrice)
	assert.Equal(t, int64(990_000), detail.VariantPrices[1].Pricing.FinalPrice)
	assert.Equal(t, 1, source.calls)
}

func TestListAppliesTierPromotionOnlyForMatchingTier(t *testing.T) {
	gold := enums.CustomerTierGold
	silver := enums.CustomerTierSilver
	source := &fakeSource{promos: []pricing.Promotion{{
		ID:              uuid.New(),
		Name:            "Gold members",
		Scope:           enums.PromotionScopeCustomerTier,
		DiscountPercent: 20,
		CustomerTiers:   []enums.CustomerTier{enums.CustomerTierGold},
		IsActive:        true,
	}}}
	svc, _, _ := newTestService(t, source)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateProductRequest{
		Name: "Laptop ASUS Zenbook", Brand: "ASUS", Category: "laptop",
		Price: 2_000_000, DiscountPercent: 10, Stock: 3,
	})
	require.NoError(t, err)

	page, err := svc.List(ctx, &gold, ListFilters{}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1_800_000), page.Items[0].Pricing.BasePrice)
	assert.Equal(t, int64(1_440_000), page.Items[0].Pricing.FinalPrice)

	page, err = svc.List(ctx, &silver, ListFilters{}, pagination.Params{})
	require.NoError(t, err)
	assert.Equal(t, int64(1_800_000), page.Items[0].Pricing.FinalPrice)
	assert.Nil(t, page.Items[0].Pricing.AppliedPromotion)

	page, err = svc.List(ctx, nil, ListFilters{}, pagination.Params{})
	require.NoError(t, err)
	assert.Nil(t, page.Items[0].Pricing.AppliedPromotion)
}

func TestListFiltersAndPaginates(t *testing.T) {
	svc, repo, _ := newTestService(t, &fakeSource{})
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	rows := []models.Product{
		{Name: "iPhone 15", Slug: "iphone-15", Brand: "Apple", Category: "phone", Price: 20_000_000, FinalPrice: 20_000_000, IsActive: true, CreatedAt: base},
		{Name: "iPhone 15 Plus", Slug: "iphone-15-plus", Brand: "Apple", Category: "phone", Price: 25_000_000, FinalPrice: 23_000_000, IsActive: true, CreatedAt: base.Add(time.Hour)},
		{Name: "Galaxy S24", Slug: "galaxy-s24", Brand: "Samsung", Category: "phone", Price: 18_000_000, FinalPrice: 18_000_000, IsActive: true, CreatedAt: base.Add(2 * time.Hour)},
		{Name: "iPad Air", Slug: "ipad-air", Brand: "Apple", Category: "tablet", Price: 15_000_000, FinalPrice: 15_000_000, IsActive: true, CreatedAt: base.Add(3 * time.Hour)},
		{Name: "iPhone 12", Slug: "iphone-12", Brand: "Apple", Category: "phone", Price: 9_000_000, FinalPrice: 9_000_000, IsActive: false, CreatedAt: base.Add(4 * time.Hour)},
	}
	for i := range rows {
		rows[i].Colors, rows[i].Capacities, rows[i].Images = pq.StringArray{}, pq.StringArray{}, pq.StringArray{}
		require.NoError(t, repo.Create(ctx, &rows[i]))
	}

	page, err := svc.List(ctx, nil, ListFilters{Brand: "apple", Category: "PHONE"}, pagination.Params{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "iPhone 15 Plus", page.Items[0].Name)
	require.NotEmpty(t, page.NextCursor)

	page, err = svc.List(ctx, nil, ListFilters{Brand: "apple", Category: "PHONE"}, pagination.Params{Limit: 1, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "iPhone 15", page.Items[0].Name)
	assert.Empty(t, page.NextCursor)

	minPrice, maxPrice := int64(16_000_000), int64(22_000_000)
	page, err = svc.List(ctx, nil, ListFilters{MinPrice: &minPrice, MaxPrice: &maxPrice}, pagination.Params{})
	require.NoError(t, err)
	names := []string{}
	for _, item := range page.Items {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"Galaxy S24", "iPhone 15"}, names)

	page, err = svc.List(ctx, nil, ListFilters{Query: "ipad"}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "iPad Air", page.Items[0].Name)

	_, err = svc.List(ctx, nil, ListFilters{MinPrice: &maxPrice, MaxPrice: &minPrice}, pagination.Params{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.List(ctx, nil, ListFilters{}, pagination.Params{Cursor: "not-a-cursor"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListPriceBoundsMatchPromotedPrice(t *testing.T) {
	source := &fakeSource{promos: []pricing.Promotion{{
		ID: uuid.New(), Name: "Sale 20%", Scope: enums.PromotionScopeGlobal, DiscountPercent: 20, IsActive: true,
	}}}
	svc, repo, _ := newTestService(t, source)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	rows := []models.Product{
		{Name: "iPhone 15", Slug: "iphone-15", Brand: "Apple", Category: "phone", Price: 20_000_000, FinalPrice: 20_000_000, IsActive: true, CreatedAt: base},
		{Name: "Galaxy S24", Slug: "galaxy-s24", Brand: "Samsung", Category: "phone", Price: 25_000_000, FinalPrice: 25_000_000, IsActive: true, CreatedAt: base.Add(time.Hour)},
		{Name: "Xiaomi 14", Slug: "xiaomi-14", Brand: "Xiaomi", Category: "phone", Price: 21_000_000, FinalPrice: 21_000_000, IsActive: true, CreatedAt: base.Add(2 * time.Hour)},
		{Name: "Pixel 8", Slug: "pixel-8", Brand: "Google", Category: "phone", Price: 19_000_000, FinalPrice: 19_000_000, IsActive: true, CreatedAt: base.Add(3 * time.Hour)},
	}
	for i := range rows {
		rows[i].Colors, rows[i].Capacities, rows[i].Images = pq.StringArray{}, pq.StringArray{}, pq.StringArray{}
		require.NoError(t, repo.Create(ctx, &rows[i]))
	}

	// Promoted prices: Pixel 15.2M, Xiaomi 16.8M, Galaxy 20M, iPhone 16M.
	maxPrice := int64(17_000_000)
	filters := ListFilters{MaxPrice: &maxPrice}

	page, err := svc.List(ctx, nil, filters, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Pixel 8", page.Items[0].Name)
	assert.Equal(t, "Xiaomi 14", page.Items[1].Name)
	require.NotEmpty(t, page.NextCursor)

	// The next page skips the out-of-range Galaxy and still finds the iPhone.
	page, err = svc.List(ctx, nil, filters, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "iPhone 15", page.Items[0].Name)
	assert.Equal(t, int64(16_000_000), page.Items[0].Pricing.FinalPrice)
	assert.Empty(t, page.NextCursor)

	minPrice := int64(18_000_000)
	page, err = svc.List(ctx, nil, ListFilters{MinPrice: &minPrice}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Galaxy S24", page.Items[0].Name)
}

func TestListFailsWhenPromotionsUnavailable(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeSource{err: errors.New("connection refused")})
	_, err := svc.List(context.Background(), nil, ListFilters{}, pagination.Params{})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestUpdateRecomputesFinalPriceAndReplacesVariants(t *testing.T) {
	svc, repo, _ := newTestService(t, &fakeSource{})
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateProductRequest{Name: "Tai nghe AirPods", Brand: "Apple", Category: "audio", Price: 4_000_000})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateProductRequest{Name: "Tai nghe Buds", Brand: "Samsung", Category: "audio", Price: 2_000_000})
	require.NoError(t, err)

	discount := 25.0
	variants := []VariantInput{{Color: "White", Price: 4_200_000, Stock: 2}}
	updated, err := svc.Update(ctx, first.ID, UpdateProductRequest{DiscountPercent: &discount, Variants: &variants})
	require.NoError(t, err)
	require.Len(t, updated.Variants, 1)
	assert.Equal(t, "White", updated.Variants[0].Color)

	stored, err := repo.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3_000_000), stored.FinalPrice)

	taken := "tai-nghe-buds"
	_, err = svc.Update(ctx, first.ID, UpdateProductRequest{Slug: &taken})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	dup := []VariantInput{{Color: "White"}, {Color: "white"}}
	_, err = svc.Update(ctx, first.ID, UpdateProductRequest{Variants: &dup})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Update(ctx, uuid.New(), UpdateProductRequest{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteHidesProduct(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeSource{})
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductRequest{Name: "Chuột Logitech", Brand: "Logitech", Category: "accessory", Price: 500_000})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Detail(ctx, nil, created.ID, pricing.Selection{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, uuid.New()), pkgerrors.CodeNotFound))
}

func TestSetStockEmitsDepletedEvent(t *testing.T) {
	svc, _, conn := newTestService(t, &fakeSource{})
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductRequest{
		Name: "Bàn phím cơ", Brand: "Keychron", Category: "accessory", Price: 2_500_000, Stock: 4,
		Variants: []VariantInput{{Color: "Gray", Price: 2_500_000, Stock: 4}},
	})
	require.NoError(t, err)

	color := "Gray"
	updated, err := svc.SetStock(ctx, created.ID, SetStockRequest{Stock: 9, Color: &color})
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Variants[0].Stock)

	missing := "Pink"
	_, err = svc.SetStock(ctx, created.ID, SetStockRequest{Stock: 1, Color: &missing})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	updated, err = svc.SetStock(ctx, created.ID, SetStockRequest{Stock: 0})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)

	var events []models.OutboxEvent
	require.NoError(t, conn.Where("event_type = ?", enums.EventStockDepleted).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, created.ID, events[0].AggregateID)
}

func TestStockDecrementIsConditional(t *testing.T) {
	svc, repo, _ := newTestService(t, &fakeSource{})
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateProductRequest{
		Name: "Sạc dự phòng", Brand: "Anker", Category: "accessory", Price: 800_000, Stock: 3,
		Variants: []VariantInput{{Capacity: "20000mAh", Price: 800_000, Stock: 1}},
	})
	require.NoError(t, err)

	ok, err := repo.DecrementStock(ctx, created.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementStock(ctx, created.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DecrementVariantStock(ctx, created.ID, "", "20000mAh", 2)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Restock(ctx, created.ID, 2))
	stored, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Stock)
	assert.Equal(t, 0, stored.Sold)
}
