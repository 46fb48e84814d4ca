package promotion

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockPromoRepo struct {
	byID            map[string]*Promotion
	lastCreated     *Promotion
	lastUpdated     *Promotion
	lastReplaced    bool
	lastStatus      Status
	lastStatusID    string
	deletedID       string
	createErr       error
	updateErr       error
	updateStatusErr error
}

func (m *mockPromoRepo) CreateWithItems(_ context.Context, p *Promotion) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.lastCreated = p
	return nil
}

func (m *mockPromoRepo) Update(_ context.Context, p *Promotion, replaceItems bool) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.lastUpdated = p
	m.lastReplaced = replaceItems
	return nil
}

func (m *mockPromoRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	m.deletedID = id
	return nil
}

func (m *mockPromoRepo) UpdateStatus(_ context.Context, id string, status Status, _ time.Time) error {
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	m.lastStatusID = id
	m.lastStatus = status
	return nil
}

func (m *mockPromoRepo) List(_ context.Context) ([]Promotion, error) {
	out := make([]Promotion, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPromoRepo) GetByID(_ context.Context, id string) (*Promotion, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// --- Helpers ---

var (
	testStart = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
)

func newTestService(repo *mockPromoRepo) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC) }
	return svc
}

func validCreateRequest() CreateRequest {
	return CreateRequest{
		Name:    "Flash sale hè 2025",
		StartAt: testStart,
		EndAt:   testEnd,
		Items: []ItemInput{
			{
				ProductID:     "keo-lac",
				SKU:           "KL-300",
				OriginalPrice: decimal.NewFromInt(100000),
				DiscountType:  DiscountPercentage,
				DiscountValue: decimal.NewFromInt(20),
				StockSale:     50,
			},
		},
	}
}

// --- Tests ---

func TestSalePrice(t *testing.T) {
	cases := []struct {
		name     string
		original string
		typ      DiscountType
		value    string
		want     string
	}{
		{"percentage", "100000", DiscountPercentage, "20", "80000"},
		{"percentage rounding", "99999", DiscountPercentage, "33", "66999.33"},
		{"fixed", "100000", DiscountFixed, "30000", "70000"},
		{"fixed floored at zero", "100000", DiscountFixed, "150000", "0"},
		{"full percentage", "100000", DiscountPercentage, "100", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SalePrice(
				decimal.RequireFromString(tc.original),
				tc.typ,
				decimal.RequireFromString(tc.value),
			)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "sale price = %s", got)
		})
	}
}

func TestCreate_ComputesSalePrice(t *testing.T) {
	repo := &mockPromoRepo{}
	svc := newTestService(repo)

	p, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, StatusDraft, p.Status)
	require.Len(t, p.Items, 1)
	assert.True(t, p.Items[0].SalePrice.Equal(decimal.NewFromInt(80000)), "sale price = %s", p.Items[0].SalePrice)
	assert.Equal(t, p.ID, p.Items[0].PromotionID)
	assert.Same(t, repo.lastCreated, p)
}

func TestCreate_NameRequired(t *testing.T) {
	svc := newTestService(&mockPromoRepo{})

	req := validCreateRequest()
	req.Name = ""

	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrNameRequired)
}

func TestCreate_InvalidDateRange(t *testing.T) {
	svc := newTestService(&mockPromoRepo{})

	req := validCreateRequest()
	req.StartAt, req.EndAt = req.EndAt, req.StartAt

	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidDateRange)

	req = validCreateRequest()
	req.EndAt = req.StartAt

	_, err = svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestCreate_EmptyItems(t *testing.T) {
	svc := newTestService(&mockPromoRepo{})

	req := validCreateRequest()
	req.Items = nil

	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, ErrEmptyItems)
}

func TestCreate_ItemValidation(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*ItemInput)
	}{
		{"missing product id", func(it *ItemInput) { it.ProductID = "" }},
		{"missing sku", func(it *ItemInput) { it.SKU = "" }},
		{"negative original price", func(it *ItemInput) { it.OriginalPrice = decimal.NewFromInt(-1) }},
		{"zero stock sale", func(it *ItemInput) { it.StockSale = 0 }},
		{"percentage over 100", func(it *ItemInput) { it.DiscountValue = decimal.NewFromInt(101) }},
		{"zero percentage", func(it *ItemInput) { it.DiscountValue = decimal.Zero }},
		{"fixed over original price", func(it *ItemInput) {
			it.DiscountType = DiscountFixed
			it.DiscountValue = it.OriginalPrice.Add(decimal.NewFromInt(1))
		}},
		{"unknown discount type", func(it *ItemInput) { it.DiscountType = "BOGO" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(&mockPromoRepo{})
			req := validCreateRequest()
			tc.mut(&req.Items[0])

			_, err := svc.Create(context.Background(), req)
			var itemErr *ItemError
			require.ErrorAs(t, err, &itemErr)
			assert.Equal(t, 0, itemErr.Index)
		})
	}
}

func TestApplyUpdate_PartialDatesValidatedAgainstStored(t *testing.T) {
	stored := &Promotion{
		ID:      "promo-1",
		Name:    "Flash sale",
		Status:  StatusDraft,
		StartAt: testStart,
		EndAt:   testEnd,
	}
	repo := &mockPromoRepo{byID: map[string]*Promotion{"promo-1": stored}}
	svc := newTestService(repo)

	// New end before the stored start must be rejected.
	badEnd := testStart.Add(-time.Hour)
	_, err := svc.ApplyUpdate(context.Background(), "promo-1", Update{EndAt: &badEnd})
	require.ErrorIs(t, err, ErrInvalidDateRange)
	assert.Nil(t, repo.lastUpdated)

	// New start still before the stored end is fine.
	newStart := testStart.Add(24 * time.Hour)
	p, err := svc.ApplyUpdate(context.Background(), "promo-1", Update{StartAt: &newStart})
	require.NoError(t, err)
	assert.True(t, p.StartAt.Equal(newStart))
	assert.True(t, p.EndAt.Equal(testEnd))
	assert.False(t, repo.lastReplaced)
}

func TestApplyUpdate_NilItemsKeepsExistingSet(t *testing.T) {
	stored := &Promotion{ID: "promo-1", Name: "Flash sale", StartAt: testStart, EndAt: testEnd}
	repo := &mockPromoRepo{byID: map[string]*Promotion{"promo-1": stored}}
	svc := newTestService(repo)

	name := "Flash sale tháng 6"
	_, err := svc.ApplyUpdate(context.Background(), "promo-1", Update{Name: &name})
	require.NoError(t, err)
	assert.False(t, repo.lastReplaced)
	assert.Equal(t, name, repo.lastUpdated.Name)
}

func TestApplyUpdate_EmptyItemsRejected(t *testing.T) {
	stored := &Promotion{ID: "promo-1", Name: "Flash sale", StartAt: testStart, EndAt: testEnd}
	repo := &mockPromoRepo{byID: map[string]*Promotion{"promo-1": stored}}
	svc := newTestService(repo)

	_, err := svc.ApplyUpdate(context.Background(), "promo-1", Update{Items: []ItemInput{}})
	require.ErrorIs(t, err, ErrEmptyItems)
	assert.Nil(t, repo.lastUpdated)
}

func TestApplyUpdate_ReplacesItems(t *testing.T) {
	stored := &Promotion{ID: "promo-1", Name: "Flash sale", StartAt: testStart, EndAt: testEnd}
	repo := &mockPromoRepo{byID: map[string]*Promotion{"promo-1": stored}}
	svc := newTestService(repo)

	p, err := svc.ApplyUpdate(context.Background(), "promo-1", Update{
		Items: []ItemInput{{
			ProductID:     "banh-cay",
			SKU:           "BC-500",
			OriginalPrice: decimal.NewFromInt(90000),
			DiscountType:  DiscountFixed,
			DiscountValue: decimal.NewFromInt(10000),
			StockSale:     30,
		}},
	})
	require.NoError(t, err)
	assert.True(t, repo.lastReplaced)
	require.Len(t, p.Items, 1)
	assert.True(t, p.Items[0].SalePrice.Equal(decimal.NewFromInt(80000)))
}

func TestApplyUpdate_NotFound(t *testing.T) {
	svc := newTestService(&mockPromoRepo{byID: map[string]*Promotion{}})

	_, err := svc.ApplyUpdate(context.Background(), "missing", Update{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestChangeStatus(t *testing.T) {
	repo := &mockPromoRepo{}
	svc := newTestService(repo)

	require.NoError(t, svc.ChangeStatus(context.Background(), "promo-1", StatusActive))
	assert.Equal(t, "promo-1", repo.lastStatusID)
	assert.Equal(t, StatusActive, repo.lastStatus)

	err := svc.ChangeStatus(context.Background(), "promo-1", "ARCHIVED")
	require.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, StatusActive, repo.lastStatus)
}

func TestDelete(t *testing.T) {
	repo := &mockPromoRepo{byID: map[string]*Promotion{"promo-1": {ID: "promo-1"}}}
	svc := newTestService(repo)

	require.NoError(t, svc.Delete(context.Background(), "promo-1"))
	assert.Equal(t, "promo-1", repo.deletedID)

	err := svc.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
