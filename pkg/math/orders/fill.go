package orders

import (
	"math/big"

	"github.com/vperp/vperp/pkg/bn"
	"github.com/vperp/vperp/pkg/math/amm"
	"github.com/vperp/vperp/pkg/math/auction"
	"github.com/vperp/vperp/pkg/types"
)

// IsFillableByVAMM reports whether a keeper can route the order to the
// virtual curve right now: the auction is over and the curve can absorb at
// least the market's minimum order size, or the order has expired (expired
// orders are fillable so keepers can settle them away).
func IsFillableByVAMM(order *types.Order, market *types.PerpMarket, oracle *types.OraclePriceData, slot uint64, now int64) bool {
	if auction.IsAuctionComplete(order, slot) {
		amount := CalculateBaseAssetAmountForAmmToFulfill(order, market, oracle, slot)
		if amount.Cmp(market.Amm.MinOrderSize) >= 0 {
			return true
		}
	}
	return IsOrderExpired(order, now)
}

// CalculateBaseAssetAmountForAmmToFulfill returns how much of the order's
// remainder the curve is eligible to fill at slot. Untriggered stop orders
// get zero regardless of curve state. The result is capped unconditionally
// by the curve's own per-side fill limit.
func CalculateBaseAssetAmountForAmmToFulfill(order *types.Order, market *types.PerpMarket, oracle *types.OraclePriceData, slot uint64) *big.Int {
	if MustBeTriggered(order) && !IsTriggered(order) {
		return bn.New(0)
	}

	limitPrice := GetLimitPrice(order, oracle, slot, nil)
	updatedAMM := amm.CalculateUpdatedAMM(market.Amm, oracle)

	var baseAssetAmount *big.Int
	if limitPrice != nil {
		baseAssetAmount = calculateBaseAssetAmountToFillUpToLimitPrice(order, updatedAMM, limitPrice, oracle)
	} else {
		baseAssetAmount = order.UnfilledBaseAssetAmount()
	}

	maxBaseAssetAmount := amm.CalculateMaxBaseAssetAmountFillable(updatedAMM, order.Direction)
	return bn.Min(maxBaseAssetAmount, baseAssetAmount)
}

// calculateBaseAssetAmountToFillUpToLimitPrice asks the curve how much it
// can trade before crossing the order's limit, leaving one tick of room so
// the taker fills strictly inside the limit. Sizes round down to the step
// size; if reaching the limit requires the curve to trade against the
// order's own direction, nothing is fillable.
func calculateBaseAssetAmountToFillUpToLimitPrice(order *types.Order, updatedAMM *types.AMM, limitPrice *big.Int, oracle *types.OraclePriceData) *big.Int {
	var adjustedLimitPrice *big.Int
	if order.Direction == types.Long {
		adjustedLimitPrice = bn.Sub(limitPrice, updatedAMM.OrderTickSize)
	} else {
		adjustedLimitPrice = bn.Add(limitPrice, updatedAMM.OrderTickSize)
	}

	maxAmountToTrade, direction := amm.CalculateMaxBaseAssetAmountToTrade(
		updatedAMM, adjustedLimitPrice, order.Direction, oracle)

	baseAssetAmount := bn.Standardize(maxAmountToTrade, updatedAMM.OrderStepSize)

	// Check the direction of the trade given the limit price and the
	// direction the user is going.
	if direction != order.Direction {
		return bn.New(0)
	}

	return bn.Min(order.UnfilledBaseAssetAmount(), baseAssetAmount)
}
