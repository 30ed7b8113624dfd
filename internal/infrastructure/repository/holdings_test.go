package repository

import (
	"context"
	"testing"

	"folio-backend/internal/domain"
	"folio-backend/internal/pkg/testdb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedHoldings(t *testing.T, store *HoldingStore, hs ...domain.Holding) []domain.Holding {
	t.Helper()
	out := make([]domain.Holding, 0, len(hs))
	for _, h := range hs {
		h := h
		require.NoError(t, store.SaveHolding(context.Background(), &h))
		out = append(out, h)
	}
	return out
}

func TestHoldingStore_ListRefsSkipsBalances(t *testing.T) {
	store := &HoldingStore{DB: testdb.New(t)}
	seedHoldings(t, store,
		domain.Holding{UserID: 1, AssetClass: domain.DomesticEquity, Symbol: "7203", Quantity: 100},
		domain.Holding{UserID: 1, AssetClass: domain.Cash, Symbol: "JPY", Quantity: 100000},
		domain.Holding{UserID: 1, AssetClass: domain.Insurance, Symbol: "life", LastPrice: 5},
		domain.Holding{UserID: 1, AssetClass: domain.Crypto, Symbol: "BTC", Quantity: 1},
		domain.Holding{UserID: 2, AssetClass: domain.Gold, Symbol: "GOLD", Quantity: 10},
	)

	refs, err := store.ListRefs(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, domain.DomesticEquity, refs[0].AssetClass)
	assert.Equal(t, "BTC", refs[1].Symbol)
}

func TestHoldingStore_UpdatePrices(t *testing.T) {
	ctx := context.Background()
	store := &HoldingStore{DB: testdb.New(t)}
	hs := seedHoldings(t, store,
		domain.Holding{UserID: 1, AssetClass: domain.DomesticEquity, Symbol: "7203", DisplayName: "old", Quantity: 100, LastPrice: 1},
		domain.Holding{UserID: 1, AssetClass: domain.ForeignEquity, Symbol: "AAPL", DisplayName: "Apple", Quantity: 10, LastPrice: 1},
		domain.Holding{UserID: 1, AssetClass: domain.Gold, Symbol: "GOLD", Quantity: 5, LastPrice: 1},
		domain.Holding{UserID: 2, AssetClass: domain.ForeignEquity, Symbol: "MSFT", Quantity: 10, LastPrice: 1},
	)

	n, err := store.UpdatePrices(ctx, 1, []domain.PriceUpdate{
		{ID: hs[0].ID, Price: 2500, Name: "トヨタ自動車"},
		{ID: hs[1].ID, Price: 190.5},
		{ID: hs[3].ID, Price: 999, Name: "intruder"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := store.ListHoldings(ctx, 1)
	require.NoError(t, err)
	byID := map[uint]domain.Holding{}
	for _, h := range got {
		byID[h.ID] = h
	}
	assert.Equal(t, 2500.0, byID[hs[0].ID].LastPrice)
	assert.Equal(t, "トヨタ自動車", byID[hs[0].ID].DisplayName)
	assert.Equal(t, 190.5, byID[hs[1].ID].LastPrice)
	assert.Equal(t, "Apple", byID[hs[1].ID].DisplayName)
	assert.Equal(t, 1.0, byID[hs[2].ID].LastPrice)

	other, err := store.GetHolding(ctx, 2, hs[3].ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, other.LastPrice)
}

func TestHoldingStore_UpdatePricesEmpty(t *testing.T) {
	store := &HoldingStore{DB: testdb.New(t)}
	n, err := store.UpdatePrices(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHoldingStore_FindGetDelete(t *testing.T) {
	ctx := context.Background()
	store := &HoldingStore{DB: testdb.New(t)}
	hs := seedHoldings(t, store, domain.Holding{UserID: 1, AssetClass: domain.Crypto, Symbol: "ETH", Quantity: 2})

	found, err := store.FindBySymbol(ctx, 1, domain.Crypto, "ETH")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, hs[0].ID, found.ID)

	missing, err := store.FindBySymbol(ctx, 1, domain.Crypto, "XRP")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = store.GetHolding(ctx, 2, hs[0].ID)
	assert.ErrorIs(t, err, domain.ErrHoldingNotFound)

	assert.ErrorIs(t, store.DeleteHolding(ctx, 2, hs[0].ID), domain.ErrHoldingNotFound)
	require.NoError(t, store.DeleteHolding(ctx, 1, hs[0].ID))
	_, err = store.GetHolding(ctx, 1, hs[0].ID)
	assert.ErrorIs(t, err, domain.ErrHoldingNotFound)
}

func TestHoldingStore_UniquePerClassAndSymbol(t *testing.T) {
	store := &HoldingStore{DB: testdb.New(t)}
	seedHoldings(t, store, domain.Holding{UserID: 1, AssetClass: domain.Crypto, Symbol: "BTC"})

	dup := domain.Holding{UserID: 1, AssetClass: domain.Crypto, Symbol: "BTC"}
	assert.Error(t, store.SaveHolding(context.Background(), &dup))
}
