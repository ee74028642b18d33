package collection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/ledger/internal/domain/account"
	"github.com/erp/ledger/internal/domain/shared"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/infrastructure/persistence/persistencetest"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setup(t *testing.T) (*CollectionService, *persistence.GormRepositories, *account.Account) {
	t.Helper()
	repos := persistence.NewRepositories(persistencetest.NewSQLiteDB(t))
	hasher, err := account.NewBlake2bHasher("test-pepper")
	require.NoError(t, err)

	acc, err := account.NewAccount(account.NewAccountInput{
		LegalName: "Acme Ltd",
		TaxID:     "1234567890",
		Phone:     "+90 555 000 0000",
		Email:     "billing@example.com",
		Address:   "Main St 1",
	}, hasher.Hash("1234567890"))
	require.NoError(t, err)
	require.NoError(t, repos.Accounts().Create(context.Background(), acc))

	return NewCollectionService(repos.Collections(), repos.Accounts()), repos, acc
}

func TestCollectionService_CreateCollection(t *testing.T) {
	ctx := context.Background()
	svc, repos, acc := setup(t)

	c, err := svc.CreateCollection(ctx, CreateCollectionRequest{
		AccountID:  acc.ID,
		Date:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Amount:     d("250"),
		OldBalance: d("1000"),
		NewBalance: d("123"),
	}, "u-1", "Ada")
	require.NoError(t, err)

	assert.Equal(t, "Acme Ltd", c.AccountName)
	assert.Equal(t, "CASH", c.PaymentMethod)
	assert.Equal(t, "u-1", c.CreatedBy)
	assert.Equal(t, "Ada", c.CreatedByName)
	// balances are stored as supplied, not recomputed
	assert.True(t, c.OldBalance.Equal(d("1000")))
	assert.True(t, c.NewBalance.Equal(d("123")))

	stored, err := svc.GetCollection(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, stored.NewBalance.Equal(d("123")))

	after, err := repos.Accounts().FindByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, after.AggregateCredit.IsZero())
	assert.True(t, after.AggregateDebit.IsZero())
}

func TestCollectionService_CreateCollection_Invalid(t *testing.T) {
	ctx := context.Background()
	svc, _, acc := setup(t)
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		req     CreateCollectionRequest
		wantErr error
	}{
		{"zero amount", CreateCollectionRequest{AccountID: acc.ID, Date: date}, shared.ErrValidation},
		{"missing date", CreateCollectionRequest{AccountID: acc.ID, Amount: d("1")}, shared.ErrValidation},
		{"missing account", CreateCollectionRequest{Date: date, Amount: d("1")}, shared.ErrValidation},
		{"unknown method", CreateCollectionRequest{AccountID: acc.ID, Date: date, Amount: d("1"), PaymentMethod: "barter"}, shared.ErrValidation},
		{"unknown account", CreateCollectionRequest{AccountID: uuid.New(), Date: date, Amount: d("1")}, shared.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCollection(ctx, tt.req, "u-1", "Ada")
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestCollectionService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, _, acc := setup(t)

	var ids []uuid.UUID
	for _, day := range []int{20, 5, 12} {
		c, err := svc.CreateCollection(ctx, CreateCollectionRequest{
			AccountID: acc.ID,
			Date:      time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
			Amount:    d("10"),
		}, "u-1", "Ada")
		require.NoError(t, err)
		ids = append(ids, c.ID)
	}

	items, err := svc.ListByAccount(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, 20, items[0].Date.Day())
	assert.Equal(t, 5, items[2].Date.Day())

	require.NoError(t, svc.DeleteCollection(ctx, ids[0]))
	assert.True(t, errors.Is(svc.DeleteCollection(ctx, ids[0]), shared.ErrNotFound))

	_, err = svc.GetCollection(ctx, ids[0])
	assert.True(t, errors.Is(err, shared.ErrNotFound))

	items, err = svc.ListByAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}
