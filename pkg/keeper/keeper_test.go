package keeper

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/vperp/vperp/pkg/bn"
	"github.com/vperp/vperp/pkg/oracle"
	"github.com/vperp/vperp/pkg/storage"
	"github.com/vperp/vperp/pkg/types"
	"github.com/vperp/vperp/pkg/util"
)

func base(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000))
}

func price(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000))
}

// quietMarket is a balanced curve at $100 with prepeg disabled.
func quietMarket(index uint16, symbol string) *types.PerpMarket {
	reserve := base(1_000_000)
	return &types.PerpMarket{
		MarketIndex: index,
		Symbol:      symbol,
		Amm: &types.AMM{
			BaseAssetReserve:           bn.Clone(reserve),
			QuoteAssetReserve:          bn.Clone(reserve),
			SqrtK:                      bn.Clone(reserve),
			PegMultiplier:              bn.New(100_000_000),
			TerminalQuoteAssetReserve:  bn.Clone(reserve),
			BaseAssetAmountWithAmm:     bn.New(0),
			MinBaseAssetReserve:        base(500_000),
			MaxBaseAssetReserve:        base(2_000_000),
			OrderStepSize:              bn.New(100_000_000),
			OrderTickSize:              bn.New(1000),
			MinOrderSize:               bn.New(100_000_000),
			MaxFillReserveFraction:     100,
			BaseSpread:                 0,
			MaxSpread:                  20_000,
			CurveUpdateIntensity:       0,
			TotalFeeMinusDistributions: bn.New(0),
			TotalExchangeFee:           bn.New(0),
		},
	}
}

func marketOrder(id uint32, direction types.PositionDirection, amount *big.Int) *types.Order {
	o := types.NewOrder()
	o.Status = types.Open
	o.OrderType = types.Market
	o.OrderID = id
	o.Direction = direction
	o.BaseAssetAmount = amount
	return o
}

func newTestKeeper(t *testing.T) (*Keeper, *storage.SnapshotStore, *oracle.Cache) {
	t.Helper()
	store, err := storage.NewSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	cache := oracle.NewCache()
	clock := util.FrozenClock{T: time.Unix(1_700_000_000, 0)}
	return New(store, cache, clock, zap.NewNop().Sugar()), store, cache
}

func TestScanFindsFillableOrders(t *testing.T) {
	k, store, cache := newTestKeeper(t)
	alice := common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob := common.HexToAddress("0x2222222222222222222222222222222222222222")

	if err := store.PutMarket(quietMarket(0, "SOL-PERP")); err != nil {
		t.Fatal(err)
	}
	cache.Set(0, &types.OraclePriceData{
		Price: price(100), Slot: 500, Confidence: bn.New(0),
		HasSufficientNumberOfDataPoints: true,
	})

	// Fillable: market order past any auction.
	buy := marketOrder(1, types.Long, base(5))
	if err := store.PutOrder(alice, buy); err != nil {
		t.Fatal(err)
	}
	// Not fillable: below the curve's minimum order size.
	dust := marketOrder(2, types.Short, bn.New(1))
	if err := store.PutOrder(bob, dust); err != nil {
		t.Fatal(err)
	}
	// Skipped entirely: already filled.
	done := marketOrder(3, types.Long, base(2))
	done.Status = types.Filled
	if err := store.PutOrder(bob, done); err != nil {
		t.Fatal(err)
	}

	candidates, err := k.Scan(500, 1_700_000_000)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(candidates))
	}

	c := candidates[0]
	if c.Authority != alice || c.OrderID != 1 {
		t.Errorf("wrong order: authority %s id %d", c.Authority, c.OrderID)
	}
	if c.BaseAssetAmount.Cmp(base(5)) != 0 {
		t.Errorf("fillable amount: got %s, want %s", c.BaseAssetAmount, base(5))
	}
	if c.LimitPrice != nil {
		t.Errorf("market order without auction: limit price should be nil, got %s", c.LimitPrice)
	}
	if c.Expired {
		t.Error("live order flagged expired")
	}
}

func TestScanLimitPriceGatesFill(t *testing.T) {
	k, store, cache := newTestKeeper(t)
	alice := common.HexToAddress("0x1111111111111111111111111111111111111111")

	if err := store.PutMarket(quietMarket(0, "SOL-PERP")); err != nil {
		t.Fatal(err)
	}
	cache.Set(0, &types.OraclePriceData{
		Price: price(100), Slot: 500, Confidence: bn.New(0),
		HasSufficientNumberOfDataPoints: true,
	})

	// A resting bid at $95 is below the curve price: nothing to fill.
	bid := marketOrder(1, types.Long, base(5))
	bid.OrderType = types.Limit
	bid.Price = price(95)
	bid.PostOnly = true
	if err := store.PutOrder(alice, bid); err != nil {
		t.Fatal(err)
	}

	candidates, err := k.Scan(500, 1_700_000_000)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 0 {
		t.Fatalf("bid below curve price: got %d candidates, want 0", len(candidates))
	}

	// At $105 the curve can sell into it.
	bid.Price = price(105)
	if err := store.PutOrder(alice, bid); err != nil {
		t.Fatal(err)
	}
	candidates, err = k.Scan(500, 1_700_000_000)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 1 {
		t.Fatalf("bid above curve price: got %d candidates, want 1", len(candidates))
	}
	if candidates[0].LimitPrice == nil || candidates[0].LimitPrice.Cmp(price(105)) != 0 {
		t.Errorf("limit price: got %s, want %s", candidates[0].LimitPrice, price(105))
	}
}

func TestScanSkipsMarketWithoutOracle(t *testing.T) {
	k, store, cache := newTestKeeper(t)
	alice := common.HexToAddress("0x1111111111111111111111111111111111111111")

	if err := store.PutMarket(quietMarket(0, "SOL-PERP")); err != nil {
		t.Fatal(err)
	}
	if err := store.PutMarket(quietMarket(1, "ETH-PERP")); err != nil {
		t.Fatal(err)
	}
	// Only ETH has a price.
	cache.Set(1, &types.OraclePriceData{
		Price: price(100), Slot: 500, Confidence: bn.New(0),
		HasSufficientNumberOfDataPoints: true,
	})
	eth := marketOrder(1, types.Short, base(3))
	eth.MarketIndex = 1
	if err := store.PutOrder(alice, eth); err != nil {
		t.Fatal(err)
	}

	candidates, err := k.Scan(500, 1_700_000_000)
	if err != nil {
		t.Fatal(err)
	}
	if len(candidates) != 1 || candidates[0].MarketIndex != 1 {
		t.Fatalf("expected only the ETH candidate, got %v", candidates)
	}
}
