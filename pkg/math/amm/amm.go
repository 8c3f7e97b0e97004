// Package amm implements the constant-product virtual curve the order
// evaluator trades against: reserve math, spread-adjusted quoting, and the
// oracle-driven prepeg update. Everything is fixed-point big.Int arithmetic
// with truncating division; no reserve snapshot is ever mutated in place.
package amm

import (
	"math/big"

	"github.com/vperp/vperp/pkg/bn"
	"github.com/vperp/vperp/pkg/constants"
	"github.com/vperp/vperp/pkg/types"
)

// AssetReserve is one side's (base, quote) reserve pair after spread
// adjustment.
type AssetReserve struct {
	Base  *big.Int
	Quote *big.Int
}

// CalculatePrice returns the curve price implied by the reserves and peg,
// scaled by constants.PricePrecision. Returns 0 for an empty base reserve.
func CalculatePrice(baseAssetReserve, quoteAssetReserve, pegMultiplier *big.Int) *big.Int {
	if baseAssetReserve.Sign() == 0 {
		return bn.New(0)
	}
	return bn.Div(
		bn.Mul(quoteAssetReserve, constants.PricePrecision, pegMultiplier),
		constants.PegPrecision, baseAssetReserve,
	)
}

// CalculateBidAskPrice returns the curve's current (bid, ask), optionally
// after applying the prepeg update for the oracle price.
func CalculateBidAskPrice(amm *types.AMM, oracle *types.OraclePriceData, withUpdate bool) (*big.Int, *big.Int) {
	cur := amm
	if withUpdate {
		cur = CalculateUpdatedAMM(amm, oracle)
	}
	bidReserves, askReserves := CalculateSpreadReserves(cur, oracle)

	bid := bn.Max(constants.One, CalculatePrice(bidReserves.Base, bidReserves.Quote, cur.PegMultiplier))
	ask := bn.Max(constants.One, CalculatePrice(askReserves.Base, askReserves.Quote, cur.PegMultiplier))
	return bid, ask
}

// CalculateSwapOutput applies a constant-product swap to one reserve side.
// Agnostic to whether the input asset is base or quote. Returns the new
// (input, output) reserves.
func CalculateSwapOutput(inputAssetReserve, swapAmount *big.Int, swapDirection types.SwapDirection, invariant *big.Int) (*big.Int, *big.Int) {
	var newInput *big.Int
	if swapDirection == types.SwapAdd {
		newInput = bn.Add(inputAssetReserve, swapAmount)
	} else {
		newInput = bn.Sub(inputAssetReserve, swapAmount)
	}
	newOutput := bn.Div(invariant, newInput)
	return newInput, newOutput
}

// CalculateAmmReservesAfterSwap returns (quote, base) reserves after swapping
// swapAmount of the given asset type through the curve. swapAmount must be
// non-negative; quote amounts are converted into reserve units via the peg.
func CalculateAmmReservesAfterSwap(amm *types.AMM, inputAssetType types.AssetType, swapAmount *big.Int, swapDirection types.SwapDirection) (*big.Int, *big.Int) {
	if swapAmount.Sign() < 0 {
		panic("amm: swap amount must be non-negative")
	}
	invariant := bn.Mul(amm.SqrtK, amm.SqrtK)

	if inputAssetType == types.AssetQuote {
		scaled := bn.Div(
			bn.Mul(swapAmount, constants.AmmTimesPegToQuotePrecisionRatio),
			amm.PegMultiplier,
		)
		newQuote, newBase := CalculateSwapOutput(amm.QuoteAssetReserve, scaled, swapDirection, invariant)
		return newQuote, newBase
	}

	newBase, newQuote := CalculateSwapOutput(amm.BaseAssetReserve, swapAmount, swapDirection, invariant)
	return newQuote, newBase
}

// GetSwapDirection maps a position direction onto the reserve swap for the
// given input asset: going long removes base from the curve, going short
// removes quote.
func GetSwapDirection(inputAssetType types.AssetType, direction types.PositionDirection) types.SwapDirection {
	if direction == types.Long && inputAssetType == types.AssetBase {
		return types.SwapRemove
	}
	if direction == types.Short && inputAssetType == types.AssetQuote {
		return types.SwapRemove
	}
	return types.SwapAdd
}

// CalculateMarketOpenBidAsk returns how much base the curve can still quote
// on each side before hitting its reserve bounds: (openBids, openAsks), asks
// negative. Sides shallower than two step sizes are treated as closed.
func CalculateMarketOpenBidAsk(baseAssetReserve, minBaseAssetReserve, maxBaseAssetReserve, stepSize *big.Int) (*big.Int, *big.Int) {
	openAsks := bn.New(0)
	if minBaseAssetReserve.Cmp(baseAssetReserve) < 0 {
		openAsks = bn.Neg(bn.Sub(baseAssetReserve, minBaseAssetReserve))
		if stepSize != nil && bn.Div(bn.Abs(openAsks), bn.New(2)).Cmp(stepSize) < 0 {
			openAsks = bn.New(0)
		}
	}

	openBids := bn.New(0)
	if maxBaseAssetReserve.Cmp(baseAssetReserve) > 0 {
		openBids = bn.Sub(maxBaseAssetReserve, baseAssetReserve)
		if stepSize != nil && bn.Div(openBids, bn.New(2)).Cmp(stepSize) < 0 {
			openBids = bn.New(0)
		}
	}

	return openBids, openAsks
}

// CalculateMaxBaseAssetAmountToTrade returns the most base the curve can
// trade before its price crosses limitPrice, and the direction the curve
// moves to get there. A result direction opposite the caller's intent means
// the curve is already past the limit.
func CalculateMaxBaseAssetAmountToTrade(amm *types.AMM, limitPrice *big.Int, direction types.PositionDirection, oracle *types.OraclePriceData) (*big.Int, types.PositionDirection) {
	if limitPrice.Sign() == 0 {
		panic("amm: limit price must be non-zero")
	}
	invariant := bn.Mul(amm.SqrtK, amm.SqrtK)

	// Solve x^2 = k * peg_price_ratio / limitPrice for the base reserve at
	// which the curve's price equals the limit.
	newBaseReserveSquared := bn.Div(
		bn.Mul(invariant, constants.PricePrecision, amm.PegMultiplier),
		limitPrice, constants.PegPrecision,
	)
	newBaseAssetReserve := bn.Sqrt(newBaseReserveSquared)

	bidReserves, askReserves := CalculateSpreadReserves(amm, oracle)
	baseAssetReserveBefore := bidReserves.Base
	if direction == types.Long {
		baseAssetReserveBefore = askReserves.Base
	}

	switch newBaseAssetReserve.Cmp(baseAssetReserveBefore) {
	case 1:
		// Base reserve grows as the curve sells to shorts.
		return bn.Sub(newBaseAssetReserve, baseAssetReserveBefore), types.Short
	case -1:
		return bn.Sub(baseAssetReserveBefore, newBaseAssetReserve), types.Long
	default:
		return bn.New(0), direction
	}
}

// CalculateMaxBaseAssetAmountFillable caps a single curve fill by both the
// per-fill reserve fraction and the remaining depth on the order's side,
// rounded down to the order step size.
func CalculateMaxBaseAssetAmountFillable(amm *types.AMM, orderDirection types.PositionDirection) *big.Int {
	maxFillSize := bn.Div(amm.BaseAssetReserve, bn.New(int64(amm.MaxFillReserveFraction)))

	var maxOnSide *big.Int
	if orderDirection == types.Long {
		maxOnSide = bn.Max(bn.New(0), bn.Sub(amm.BaseAssetReserve, amm.MinBaseAssetReserve))
	} else {
		maxOnSide = bn.Max(bn.New(0), bn.Sub(amm.MaxBaseAssetReserve, amm.BaseAssetReserve))
	}

	return bn.Standardize(bn.Min(maxFillSize, maxOnSide), amm.OrderStepSize)
}
