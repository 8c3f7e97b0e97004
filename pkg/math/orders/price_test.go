package orders

import (
	"testing"

	"github.com/vperp/vperp/pkg/bn"
	"github.com/vperp/vperp/pkg/types"
)

func oracleAt(p int64) *types.OraclePriceData {
	return &types.OraclePriceData{
		Price:                           price(p),
		Confidence:                      bn.New(0),
		HasSufficientNumberOfDataPoints: true,
	}
}

func TestGetLimitPriceAuctionWins(t *testing.T) {
	// Both an oracle offset and an active auction: the auction price governs.
	o := openOrder(types.Long, base(1))
	o.OraclePriceOffset = 5_000_000
	o.Slot = 100
	o.AuctionDuration = 10
	o.AuctionStartPrice = price(100)
	o.AuctionEndPrice = price(110)

	// Slot 105: halfway up the ramp, 100 + (110-100)*5/10 = 105.
	got := GetLimitPrice(o, oracleAt(100), 105, nil)
	if got == nil || got.Cmp(price(105)) != 0 {
		t.Fatalf("GetLimitPrice = %v, want %v", got, price(105))
	}
}

func TestGetLimitPriceOracleOffset(t *testing.T) {
	o := openOrder(types.Long, base(1))
	o.OraclePriceOffset = 2_500_000 // +$2.50

	got := GetLimitPrice(o, oracleAt(100), 200, nil)
	want := bn.New(102_500_000)
	if got == nil || got.Cmp(want) != 0 {
		t.Fatalf("GetLimitPrice = %v, want %v", got, want)
	}

	// Negative offsets price below the oracle.
	o.OraclePriceOffset = -2_500_000
	got = GetLimitPrice(o, oracleAt(100), 200, nil)
	want = bn.New(97_500_000)
	if got == nil || got.Cmp(want) != 0 {
		t.Fatalf("GetLimitPrice = %v, want %v", got, want)
	}
}

func TestGetLimitPriceStaticAndFallback(t *testing.T) {
	o := openOrder(types.Long, base(1))
	o.Price = price(99)

	got := GetLimitPrice(o, oracleAt(100), 200, nil)
	if got == nil || got.Cmp(price(99)) != 0 {
		t.Fatalf("static price: got %v, want %v", got, price(99))
	}

	// No static price, no offset, no auction: fallback governs.
	o.Price = bn.New(0)
	got = GetLimitPrice(o, oracleAt(100), 200, price(101))
	if got == nil || got.Cmp(price(101)) != 0 {
		t.Fatalf("fallback price: got %v, want %v", got, price(101))
	}

	// No fallback either: unconstrained.
	if got := GetLimitPrice(o, oracleAt(100), 200, nil); got != nil {
		t.Fatalf("want nil limit price, got %v", got)
	}
}

func TestHasLimitPrice(t *testing.T) {
	o := openOrder(types.Long, base(1))
	if HasLimitPrice(o, 200) {
		t.Error("bare market order has no limit price")
	}

	o.Price = price(99)
	if !HasLimitPrice(o, 200) {
		t.Error("static price constrains the order")
	}

	o.Price = bn.New(0)
	o.OraclePriceOffset = 1
	if !HasLimitPrice(o, 200) {
		t.Error("oracle offset constrains the order")
	}

	o.OraclePriceOffset = 0
	o.Slot = 199
	o.AuctionDuration = 10
	if !HasLimitPrice(o, 200) {
		t.Error("incomplete auction constrains the order")
	}
}

func TestHasAuctionPrice(t *testing.T) {
	o := openOrder(types.Long, base(1))
	o.Slot = 100
	o.AuctionDuration = 10
	o.AuctionStartPrice = price(100)
	o.AuctionEndPrice = price(110)

	if !HasAuctionPrice(o, 105) {
		t.Error("active auction with bounds has an auction price")
	}
	if HasAuctionPrice(o, 120) {
		t.Error("completed auction has no auction price")
	}

	// Duration set but both bounds zero: nothing to ramp.
	o.AuctionStartPrice = bn.New(0)
	o.AuctionEndPrice = bn.New(0)
	if HasAuctionPrice(o, 105) {
		t.Error("zero bounds mean no auction price")
	}
}
