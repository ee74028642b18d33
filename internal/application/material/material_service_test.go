package material

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/ledger/internal/domain/material"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/infrastructure/persistence/persistencetest"
)

func newTestService(t *testing.T) (*MaterialService, *persistence.GormRepositories) {
	t.Helper()
	db := persistencetest.NewSQLiteDB(t)
	repos := persistence.NewRepositories(db)
	return NewMaterialService(repos.Materials(), repos.Movements(), persistence.NewGormTransactionScope(db)), repos
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func mustCreate(t *testing.T, svc *MaterialService, req CreateMaterialRequest) *MaterialResponse {
	t.Helper()
	if req.Unit == "" {
		req.Unit = "pcs"
	}
	m, err := svc.CreateMaterial(context.Background(), req)
	require.NoError(t, err)
	return m
}

func TestMaterialService_CreateMaterial(t *testing.T) {
	ctx := context.Background()
	svc, repos := newTestService(t)

	t.Run("generates codes and skips taken ones", func(t *testing.T) {
		first := mustCreate(t, svc, CreateMaterialRequest{Name: "Hex Bolt M8"})
		assert.Equal(t, "HBM8", first.Code)

		preview, err := svc.GenerateCode(ctx, "hex bolt m8")
		require.NoError(t, err)
		assert.Equal(t, "HBM81", preview)

		second := mustCreate(t, svc, CreateMaterialRequest{Name: "Hex Bolt M8"})
		assert.Equal(t, "HBM81", second.Code)
	})

	t.Run("explicit code is normalized and must be unique", func(t *testing.T) {
		m := mustCreate(t, svc, CreateMaterialRequest{Code: " wsh-10 ", Name: "Washer"})
		assert.Equal(t, "WSH-10", m.Code)

		_, err := svc.CreateMaterial(ctx, CreateMaterialRequest{Code: "wsh-10", Name: "Another", Unit: "pcs"})
		assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
	})

	t.Run("opening stock is booked as a movement", func(t *testing.T) {
		m := mustCreate(t, svc, CreateMaterialRequest{
			Name:         "Copper Wire",
			OpeningStock: dp("12"),
			OpeningCost:  dp("3.5"),
		})
		assert.True(t, m.Stock.Equal(d("12")))
		assert.True(t, m.AverageCost.Equal(d("3.5")))

		mvs, err := svc.ListMovements(ctx, m.ID)
		require.NoError(t, err)
		require.Len(t, mvs, 1)
		assert.Equal(t, string(material.RefOpening), mvs[0].RefKind)
		assert.Equal(t, string(material.MovementIn), mvs[0].Kind)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := svc.CreateMaterial(ctx, CreateMaterialRequest{Name: " ", Unit: "pcs"})
		assert.True(t, errors.Is(err, shared.ErrValidation))

		_, err = svc.CreateMaterial(ctx, CreateMaterialRequest{Name: "Nut", Unit: "pcs", OpeningStock: dp("-1")})
		assert.True(t, errors.Is(err, shared.ErrValidation))

		exists, err := repos.Materials().ExistsByCode(ctx, "NMLZ")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestMaterialService_AddStockWithCost(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	m := mustCreate(t, svc, CreateMaterialRequest{Name: "Steel Plate", OpeningStock: dp("10"), OpeningCost: dp("2")})

	mv, err := svc.AddStockWithCost(ctx, AddStockRequest{MaterialID: m.ID, Quantity: d("10"), UnitPrice: d("4")})
	require.NoError(t, err)
	assert.True(t, mv.ResultingStock.Equal(d("20")))
	assert.True(t, mv.ResultingAvgCost.Equal(d("3")))
	assert.Equal(t, string(material.RefStockIn), mv.RefKind)

	got, err := svc.GetMaterial(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.AverageCost.Equal(d("3")))
	assert.True(t, got.CurrentBuyPrice.Equal(d("4")))

	_, err = svc.AddStockWithCost(ctx, AddStockRequest{MaterialID: m.ID, Quantity: d("0"), UnitPrice: d("4")})
	assert.True(t, errors.Is(err, shared.ErrValidation))

	_, err = svc.AddStockWithCost(ctx, AddStockRequest{MaterialID: m.ID, Quantity: d("1"), UnitPrice: d("-1")})
	assert.True(t, errors.Is(err, shared.ErrValidation))
}

func TestMaterialService_ReduceStock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	m := mustCreate(t, svc, CreateMaterialRequest{Code: "PIPE", Name: "Pipe", OpeningStock: dp("1"), OpeningCost: dp("10")})

	t.Run("shortage leaves stock untouched", func(t *testing.T) {
		_, err := svc.ReduceStock(ctx, ReduceStockRequest{Code: "pipe", Quantity: d("5")})
		require.True(t, errors.Is(err, shared.ErrInsufficientStock))

		var stockErr *shared.InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		require.Len(t, stockErr.Shortages, 1)
		assert.True(t, stockErr.Shortages[0].Available.Equal(d("1")))

		got, err := svc.GetMaterial(ctx, m.ID)
		require.NoError(t, err)
		assert.True(t, got.Stock.Equal(d("1")))
	})

	t.Run("tolerance lets stock go slightly negative", func(t *testing.T) {
		mv, err := svc.ReduceStock(ctx, ReduceStockRequest{Code: "PIPE", Quantity: d("1.005")})
		require.NoError(t, err)
		assert.True(t, mv.ResultingStock.Equal(d("-0.005")))
		assert.Equal(t, string(material.RefManual), mv.RefKind)
	})

	t.Run("negative stock accepts any deduction", func(t *testing.T) {
		mv, err := svc.ReduceStock(ctx, ReduceStockRequest{Code: "PIPE", Quantity: d("50")})
		require.NoError(t, err)
		assert.True(t, mv.ResultingStock.Equal(d("-50.005")))
	})

	t.Run("receipt into negative stock resets the average", func(t *testing.T) {
		mv, err := svc.AddStockWithCost(ctx, AddStockRequest{MaterialID: m.ID, Quantity: d("100"), UnitPrice: d("7")})
		require.NoError(t, err)
		assert.True(t, mv.ResultingAvgCost.Equal(d("7")))
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.ReduceStock(ctx, ReduceStockRequest{Code: "ZZZ", Quantity: d("1")})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("ledger replays to the stored stock", func(t *testing.T) {
		rec, err := svc.ReconcileStock(ctx, m.ID)
		require.NoError(t, err)
		assert.True(t, rec.Balanced)
	})
}

func TestMaterialService_LegacyCodeFallback(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	m := mustCreate(t, svc, CreateMaterialRequest{Code: "ABC1", Name: "Legacy", OpeningStock: dp("5")})

	for _, code := range []string{"ABC", "abc7"} {
		mv, err := svc.ReduceStock(ctx, ReduceStockRequest{Code: code, Quantity: d("1")})
		require.NoError(t, err, code)
		assert.Equal(t, m.ID, mv.MaterialID)
	}

	_, err := svc.ReduceStock(ctx, ReduceStockRequest{Code: "ABX", Quantity: d("1")})
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestMaterialService_ListMaterials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	for _, name := range []string{"Hex Bolt M8", "Hex Bolt M10", "Washer"} {
		mustCreate(t, svc, CreateMaterialRequest{Name: name})
	}

	page, err := svc.ListMaterials(ctx, ListMaterialsFilter{Search: "bolt", PageSize: 1, OrderBy: "code", OrderDir: "asc"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "HBM10", page.Items[0].Code)
}

func TestMaterialService_WeightedAverageScenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	m := mustCreate(t, svc, CreateMaterialRequest{Code: "PAINT", Name: "Paint", OpeningStock: dp("10"), OpeningCost: dp("5")})

	_, err := svc.AddStockWithCost(ctx, AddStockRequest{MaterialID: m.ID, Quantity: d("10"), UnitPrice: d("7")})
	require.NoError(t, err)
	out, err := svc.ReduceStock(ctx, ReduceStockRequest{Code: "PAINT", Quantity: d("5")})
	require.NoError(t, err)

	got, err := svc.GetMaterial(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, got.Stock.Equal(d("15")))
	assert.True(t, got.AverageCost.Equal(d("6")))
	assert.Equal(t, string(material.MovementOut), out.Kind)
	assert.True(t, out.UnitPrice.Equal(d("6")))
	assert.True(t, out.ResultingAvgCost.Equal(d("6")))

	mvs, err := svc.ListMovements(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, mvs, 3)
}

func TestMaterialService_AverageIsWeightedMeanOfReceipts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	m := mustCreate(t, svc, CreateMaterialRequest{Code: "GLUE", Name: "Glue"})

	receipts := []struct{ qty, price string }{{"2", "10"}, {"3", "20"}, {"5", "4"}}
	for _, r := range receipts {
		_, err := svc.AddStockWithCost(ctx, AddStockRequest{MaterialID: m.ID, Quantity: d(r.qty), UnitPrice: d(r.price)})
		require.NoError(t, err)
	}

	got, err := svc.GetMaterial(ctx, m.ID)
	require.NoError(t, err)
	// (2*10 + 3*20 + 5*4) / 10
	assert.True(t, got.AverageCost.Equal(d("10")), got.AverageCost.String())
	assert.True(t, got.Stock.Equal(d("10")))
}
