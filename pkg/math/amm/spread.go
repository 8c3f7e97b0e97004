package amm

import (
	"math/big"

	"github.com/vperp/vperp/pkg/bn"
	"github.com/vperp/vperp/pkg/constants"
	"github.com/vperp/vperp/pkg/types"
)

// maxBidAskInventorySkewFactor bounds how far inventory can widen one side
// (10x in BidAskSpreadPrecision units).
var maxBidAskInventorySkewFactor = bn.Mul(constants.BidAskSpreadPrecision, bn.New(10))

// CalculateInventoryLiquidityRatio returns how much of the thinner side's
// remaining liquidity the curve's net inventory consumes, in
// constants.PercentagePrecision units, capped at 100%.
func CalculateInventoryLiquidityRatio(baseAssetAmountWithAmm, baseAssetReserve, minBaseAssetReserve, maxBaseAssetReserve *big.Int) *big.Int {
	openBids, openAsks := CalculateMarketOpenBidAsk(baseAssetReserve, minBaseAssetReserve, maxBaseAssetReserve, nil)

	minSideLiquidity := bn.Min(bn.Abs(openBids), bn.Abs(openAsks))

	return bn.Min(
		bn.Abs(bn.Div(
			bn.Mul(baseAssetAmountWithAmm, constants.PercentagePrecision),
			bn.Max(minSideLiquidity, constants.One),
		)),
		constants.PercentagePrecision,
	)
}

// CalculateInventoryScale returns the integer multiplier applied to the
// spread on the side holding inventory. At zero inventory the scale is 1;
// it grows with the liquidity ratio up to whatever multiple still fits under
// maxSpread for the given directional spread.
func CalculateInventoryScale(baseAssetAmountWithAmm, baseAssetReserve, minBaseAssetReserve, maxBaseAssetReserve *big.Int, directionalSpread, maxSpread int64) int64 {
	if baseAssetAmountWithAmm.Sign() == 0 {
		return 1
	}
	if directionalSpread < 1 {
		directionalSpread = 1
	}

	ratio := CalculateInventoryLiquidityRatio(baseAssetAmountWithAmm, baseAssetReserve, minBaseAssetReserve, maxBaseAssetReserve)

	scaleMax := bn.Max(
		maxBidAskInventorySkewFactor,
		bn.Div(bn.Mul(bn.New(maxSpread), constants.BidAskSpreadPrecision), bn.New(directionalSpread)),
	)

	capped := bn.Min(
		scaleMax,
		bn.Add(constants.BidAskSpreadPrecision, bn.Div(bn.Mul(scaleMax, ratio), constants.PercentagePrecision)),
	)

	return bn.Div(capped, constants.BidAskSpreadPrecision).Int64()
}

// CalculateSpread returns the (long, short) half-spreads of the curve in
// constants.BidAskSpreadPrecision units. The side the curve would retreat
// from widens: inventory scales the held side, and a reserve price displaced
// from the oracle widens the side that would worsen the gap. The combined
// spread never exceeds MaxSpread.
func CalculateSpread(amm *types.AMM, oracle *types.OraclePriceData) (int64, int64) {
	half := int64(amm.BaseSpread / 2)
	if amm.BaseSpread == 0 || amm.CurveUpdateIntensity == 0 {
		return half, half
	}

	reservePrice := bn.Max(constants.One, CalculatePrice(amm.BaseAssetReserve, amm.QuoteAssetReserve, amm.PegMultiplier))
	targetPrice := reservePrice
	if oracle != nil && oracle.Price.Sign() != 0 {
		targetPrice = oracle.Price
	}

	// Signed gap between reserve price and oracle, as a fraction of reserve price.
	gapPct := bn.Div(
		bn.Mul(bn.Sub(reservePrice, targetPrice), constants.BidAskSpreadPrecision),
		reservePrice,
	)

	longSpread, shortSpread := half, half
	switch {
	case gapPct.Sign() > 0:
		// Reserve price above oracle: widen asks so longs pay the gap.
		if g := gapPct.Int64(); g > shortSpread {
			shortSpread = g
		}
	case gapPct.Sign() < 0:
		if g := bn.Abs(gapPct).Int64(); g > longSpread {
			longSpread = g
		}
	}

	maxTargetSpread := int64(amm.MaxSpread)

	directional := shortSpread
	if amm.BaseAssetAmountWithAmm.Sign() > 0 {
		directional = longSpread
	}
	scale := CalculateInventoryScale(
		amm.BaseAssetAmountWithAmm,
		amm.BaseAssetReserve,
		amm.MinBaseAssetReserve,
		amm.MaxBaseAssetReserve,
		directional,
		maxTargetSpread,
	)
	if amm.BaseAssetAmountWithAmm.Sign() > 0 {
		longSpread *= scale
	} else if amm.BaseAssetAmountWithAmm.Sign() < 0 {
		shortSpread *= scale
	}

	if total := longSpread + shortSpread; total > maxTargetSpread {
		if longSpread > shortSpread {
			longSpread = longSpread * maxTargetSpread / total
			shortSpread = maxTargetSpread - longSpread
		} else {
			shortSpread = shortSpread * maxTargetSpread / total
			longSpread = maxTargetSpread - shortSpread
		}
	}

	return longSpread, shortSpread
}

// CalculateSpreadReserves returns the (bid, ask) reserve pairs after the
// spread is applied around the peg: ask reserves quote above the reserve
// price, bid reserves below. The invariant k is preserved on both sides.
func CalculateSpreadReserves(amm *types.AMM, oracle *types.OraclePriceData) (*AssetReserve, *AssetReserve) {
	longSpread, shortSpread := CalculateSpread(amm, oracle)

	askReserves := spreadReserve(amm, longSpread)
	bidReserves := spreadReserve(amm, -shortSpread)
	return bidReserves, askReserves
}

// spreadReserve shifts the quote reserve by half the signed spread and
// rebalances the base reserve against the invariant.
func spreadReserve(amm *types.AMM, spread int64) *AssetReserve {
	if spread == 0 {
		return &AssetReserve{
			Base:  bn.Clone(amm.BaseAssetReserve),
			Quote: bn.Clone(amm.QuoteAssetReserve),
		}
	}

	half := spread / 2
	if half == 0 {
		if spread > 0 {
			half = 1
		} else {
			half = -1
		}
	}

	quoteDelta := bn.Div(
		bn.Mul(amm.QuoteAssetReserve, bn.New(half)),
		constants.BidAskSpreadPrecision,
	)
	quote := bn.Add(amm.QuoteAssetReserve, quoteDelta)
	base := bn.Div(bn.Mul(amm.SqrtK, amm.SqrtK), quote)
	return &AssetReserve{Base: base, Quote: quote}
}
