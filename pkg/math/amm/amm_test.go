package amm

import (
	"math/big"
	"testing"

	"github.com/vperp/vperp/pkg/bn"
	"github.com/vperp/vperp/pkg/types"
)

func base(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000))
}

func price(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000))
}

// quietAMM is a balanced curve at $100 with prepeg and spread disabled.
func quietAMM() *types.AMM {
	reserve := base(1_000_000)
	return &types.AMM{
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
		MaxSpread:                  20_000,
		TotalFeeMinusDistributions: bn.New(0),
		TotalExchangeFee:           bn.New(0),
	}
}

func oracleAt(p int64) *types.OraclePriceData {
	return &types.OraclePriceData{Price: price(p), Confidence: bn.New(0)}
}

func TestCalculatePrice(t *testing.T) {
	a := quietAMM()
	got := CalculatePrice(a.BaseAssetReserve, a.QuoteAssetReserve, a.PegMultiplier)
	if got.Cmp(price(100)) != 0 {
		t.Fatalf("price = %s, want %s", got, price(100))
	}

	if got := CalculatePrice(bn.New(0), a.QuoteAssetReserve, a.PegMultiplier); got.Sign() != 0 {
		t.Fatalf("empty base reserve: price = %s, want 0", got)
	}
}

func TestSwapOutputPreservesInvariant(t *testing.T) {
	a := quietAMM()
	invariant := bn.Mul(a.SqrtK, a.SqrtK)

	newBase, newQuote := CalculateSwapOutput(a.BaseAssetReserve, base(1000), types.SwapAdd, invariant)

	wantBase := bn.Add(a.BaseAssetReserve, base(1000))
	if newBase.Cmp(wantBase) != 0 {
		t.Fatalf("input reserve = %s, want %s", newBase, wantBase)
	}
	wantQuote := bn.Div(invariant, wantBase)
	if newQuote.Cmp(wantQuote) != 0 {
		t.Fatalf("output reserve = %s, want %s", newQuote, wantQuote)
	}
}

func TestGetSwapDirection(t *testing.T) {
	if GetSwapDirection(types.AssetBase, types.Long) != types.SwapRemove {
		t.Error("long takes base out of the curve")
	}
	if GetSwapDirection(types.AssetBase, types.Short) != types.SwapAdd {
		t.Error("short puts base into the curve")
	}
	if GetSwapDirection(types.AssetQuote, types.Short) != types.SwapRemove {
		t.Error("short takes quote out of the curve")
	}
}

func TestMaxBaseAssetAmountToTradeDirections(t *testing.T) {
	a := quietAMM()

	// Reaching a price above the curve means the curve sells base: Long.
	amount, dir := CalculateMaxBaseAssetAmountToTrade(a, price(105), types.Long, oracleAt(100))
	if dir != types.Long {
		t.Fatalf("limit above market: direction %s, want Long", dir)
	}
	if amount.Sign() <= 0 {
		t.Fatal("limit above market: want positive tradable amount")
	}

	// Reaching a price below the curve trades the other way.
	_, dir = CalculateMaxBaseAssetAmountToTrade(a, price(95), types.Long, oracleAt(100))
	if dir != types.Short {
		t.Fatalf("limit below market: direction %s, want Short", dir)
	}

	// At the exact curve price there is nothing to trade.
	amount, _ = CalculateMaxBaseAssetAmountToTrade(a, price(100), types.Long, oracleAt(100))
	if amount.Sign() != 0 {
		t.Fatalf("limit at market: amount %s, want 0", amount)
	}
}

func TestMaxBaseAssetAmountFillable(t *testing.T) {
	a := quietAMM()

	// Long side: min(reserve/100, reserve - minReserve) = min(1e13, 5e14).
	got := CalculateMaxBaseAssetAmountFillable(a, types.Long)
	want := base(10_000)
	if got.Cmp(want) != 0 {
		t.Fatalf("long: got %s, want %s", got, want)
	}

	// Result is standardized to the step size.
	a.MaxFillReserveFraction = 7
	got = CalculateMaxBaseAssetAmountFillable(a, types.Short)
	if rem := new(big.Int).Rem(got, a.OrderStepSize); rem.Sign() != 0 {
		t.Fatalf("short: %s not a multiple of step size", got)
	}
}

func TestMarketOpenBidAsk(t *testing.T) {
	a := quietAMM()
	openBids, openAsks := CalculateMarketOpenBidAsk(a.BaseAssetReserve, a.MinBaseAssetReserve, a.MaxBaseAssetReserve, a.OrderStepSize)

	if openBids.Cmp(base(1_000_000)) != 0 {
		t.Errorf("open bids = %s, want %s", openBids, base(1_000_000))
	}
	if openAsks.Cmp(bn.Neg(base(500_000))) != 0 {
		t.Errorf("open asks = %s, want %s", openAsks, bn.Neg(base(500_000)))
	}
}

func TestUpdatedAMMDisabled(t *testing.T) {
	a := quietAMM() // CurveUpdateIntensity 0
	updated := CalculateUpdatedAMM(a, oracleAt(120))

	if updated == a {
		t.Fatal("update must return a copy")
	}
	if updated.PegMultiplier.Cmp(a.PegMultiplier) != 0 {
		t.Fatal("disabled prepeg must not move the peg")
	}
}

func TestUpdatedAMMRepegsTowardOracle(t *testing.T) {
	a := quietAMM()
	a.CurveUpdateIntensity = 100
	// Plenty of budget: fee pool far above half the exchange fee.
	a.TotalFeeMinusDistributions = price(1_000_000)
	a.TotalExchangeFee = bn.New(0)

	updated := CalculateUpdatedAMM(a, oracleAt(102))

	newPrice := CalculatePrice(updated.BaseAssetReserve, updated.QuoteAssetReserve, updated.PegMultiplier)
	if newPrice.Cmp(price(102)) != 0 {
		t.Fatalf("repegged price = %s, want %s", newPrice, price(102))
	}
	// Input snapshot untouched.
	if a.PegMultiplier.Cmp(bn.New(100_000_000)) != 0 {
		t.Fatal("input AMM mutated by update")
	}
}

func TestSpreadReservesWidenWithSpread(t *testing.T) {
	a := quietAMM()
	a.CurveUpdateIntensity = 100
	a.BaseSpread = 1000 // 10 bps

	bid, ask := CalculateSpreadReserves(a, oracleAt(100))

	bidPrice := CalculatePrice(bid.Base, bid.Quote, a.PegMultiplier)
	askPrice := CalculatePrice(ask.Base, ask.Quote, a.PegMultiplier)
	mid := CalculatePrice(a.BaseAssetReserve, a.QuoteAssetReserve, a.PegMultiplier)

	if bidPrice.Cmp(mid) >= 0 {
		t.Fatalf("bid %s not below mid %s", bidPrice, mid)
	}
	if askPrice.Cmp(mid) <= 0 {
		t.Fatalf("ask %s not above mid %s", askPrice, mid)
	}
}

func TestSpreadCapAndInventorySkew(t *testing.T) {
	a := quietAMM()
	a.CurveUpdateIntensity = 100
	a.BaseSpread = 10_000
	a.MaxSpread = 15_000
	a.BaseAssetAmountWithAmm = base(400_000) // heavy long inventory

	long, short := CalculateSpread(a, oracleAt(100))
	if long+short > int64(a.MaxSpread) {
		t.Fatalf("total spread %d exceeds max %d", long+short, a.MaxSpread)
	}
	if long <= short {
		t.Fatalf("long inventory should widen the long side: long=%d short=%d", long, short)
	}
}

func TestRepegCostSign(t *testing.T) {
	a := quietAMM()
	// Users are net long: quote reserve above terminal. Raising the peg
	// costs the pool, lowering it earns.
	a.QuoteAssetReserve = base(1_100_000)
	a.TerminalQuoteAssetReserve = base(1_000_000)

	up := CalculateRepegCost(a, bn.New(110_000_000))
	down := CalculateRepegCost(a, bn.New(90_000_000))
	if up.Sign() <= 0 {
		t.Fatalf("raising peg: cost %s, want positive", up)
	}
	if down.Sign() >= 0 {
		t.Fatalf("lowering peg: cost %s, want negative", down)
	}
}
