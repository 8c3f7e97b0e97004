package storage

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vperp/vperp/pkg/types"
)

var testAuthority = common.HexToAddress("0x1111111111111111111111111111111111111111")

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	s, err := NewSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testMarket(index uint16) *types.PerpMarket {
	reserve := new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1_000_000_000))
	return &types.PerpMarket{
		MarketIndex: index,
		Symbol:      "SOL-PERP",
		Amm: &types.AMM{
			BaseAssetReserve:          reserve,
			QuoteAssetReserve:         reserve,
			SqrtK:                     reserve,
			PegMultiplier:             big.NewInt(100_000_000),
			TerminalQuoteAssetReserve: reserve,
			BaseAssetAmountWithAmm:    big.NewInt(0),
			MinBaseAssetReserve:       big.NewInt(0),
			MaxBaseAssetReserve:       new(big.Int).Lsh(reserve, 1),
			OrderStepSize:             big.NewInt(100_000_000),
			OrderTickSize:             big.NewInt(1000),
			MinOrderSize:              big.NewInt(100_000_000),
			MaxFillReserveFraction:    100,
			TotalFeeMinusDistributions: big.NewInt(0),
			TotalExchangeFee:           big.NewInt(0),
		},
	}
}

func TestMarketRoundTrip(t *testing.T) {
	s := newTestStore(t)
	m := testMarket(3)

	if err := s.PutMarket(m); err != nil {
		t.Fatalf("put market: %v", err)
	}

	got, ok, err := s.GetMarket(3)
	if err != nil || !ok {
		t.Fatalf("get market: ok=%v err=%v", ok, err)
	}
	if got.Symbol != "SOL-PERP" || got.MarketIndex != 3 {
		t.Errorf("market identity lost: %+v", got)
	}
	if got.Amm.PegMultiplier.Cmp(m.Amm.PegMultiplier) != 0 {
		t.Errorf("peg = %s, want %s", got.Amm.PegMultiplier, m.Amm.PegMultiplier)
	}

	if _, ok, _ := s.GetMarket(9); ok {
		t.Error("unknown market must not be found")
	}
}

func TestOrdersArePartitionedByMarket(t *testing.T) {
	s := newTestStore(t)

	for i, marketIndex := range []uint16{0, 0, 1} {
		o := types.NewOrder()
		o.Status = types.Open
		o.MarketIndex = marketIndex
		o.OrderID = uint32(i + 1)
		o.BaseAssetAmount = big.NewInt(1_000_000_000)
		if err := s.PutOrder(testAuthority, o); err != nil {
			t.Fatalf("put order: %v", err)
		}
	}

	orders, err := s.ListOrders(0)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("market 0: got %d orders, want 2", len(orders))
	}
	for _, so := range orders {
		if so.Authority != testAuthority {
			t.Errorf("authority = %s, want %s", so.Authority.Hex(), testAuthority.Hex())
		}
	}

	if err := s.DeleteOrder(0, testAuthority, orders[0].Order.OrderID); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	orders, _ = s.ListOrders(0)
	if len(orders) != 1 {
		t.Fatalf("after delete: got %d orders, want 1", len(orders))
	}
}

func TestOraclePriceRoundTrip(t *testing.T) {
	s := newTestStore(t)

	data := &types.OraclePriceData{
		Price:                           big.NewInt(100_000_000),
		Slot:                            42,
		Confidence:                      big.NewInt(50_000),
		HasSufficientNumberOfDataPoints: true,
	}
	if err := s.PutOraclePrice(7, data); err != nil {
		t.Fatalf("put oracle: %v", err)
	}

	got, ok, err := s.GetOraclePrice(7)
	if err != nil || !ok {
		t.Fatalf("get oracle: ok=%v err=%v", ok, err)
	}
	if got.Price.Cmp(data.Price) != 0 || got.Slot != 42 {
		t.Errorf("oracle round trip lost data: %+v", got)
	}
}
