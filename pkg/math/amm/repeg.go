package amm

import (
	"math/big"

	"github.com/vperp/vperp/pkg/bn"
	"github.com/vperp/vperp/pkg/constants"
	"github.com/vperp/vperp/pkg/types"
)

// CalculatePegFromTargetPrice returns the peg multiplier that would move the
// curve's reserve price to targetPrice, rounded to the nearest peg unit and
// floored at 1.
func CalculatePegFromTargetPrice(targetPrice, baseAssetReserve, quoteAssetReserve *big.Int) *big.Int {
	peg := bn.Div(
		bn.Add(
			bn.Div(bn.Mul(targetPrice, baseAssetReserve), quoteAssetReserve),
			bn.Div(constants.PriceDivPeg, bn.New(2)),
		),
		constants.PriceDivPeg,
	)
	return bn.Max(peg, constants.One)
}

// CalculateRepegCost returns the quote-denominated cost of moving the peg to
// newPeg. Positive means the fee pool pays; negative means the move earns.
func CalculateRepegCost(amm *types.AMM, newPeg *big.Int) *big.Int {
	return bn.Div(
		bn.Mul(
			bn.Sub(amm.QuoteAssetReserve, amm.TerminalQuoteAssetReserve),
			bn.Sub(newPeg, amm.PegMultiplier),
		),
		constants.AmmToQuotePrecisionRatio, constants.PegPrecision,
	)
}

// CalculateAdjustKCost returns the quote-denominated cost of scaling the
// curve's k by numerator/denominator. Shrinking k around a net user position
// realizes value for the curve, so the result is negative in the only case
// the updater uses it (999/1000).
func CalculateAdjustKCost(amm *types.AMM, numerator, denominator *big.Int) *big.Int {
	x := amm.BaseAssetReserve
	y := amm.QuoteAssetReserve
	d := amm.BaseAssetAmountWithAmm
	q := amm.PegMultiplier

	quoteScale := bn.Div(bn.Mul(y, d, q), constants.AmmReservePrecision)
	p := bn.Div(bn.Mul(numerator, constants.PricePrecision), denominator)

	left := bn.Div(
		bn.Mul(quoteScale, constants.PercentagePrecision, constants.PercentagePrecision),
		bn.Add(x, d),
	)
	right := bn.Div(
		bn.Mul(quoteScale, p, constants.PercentagePrecision, constants.PercentagePrecision),
		constants.PricePrecision,
		bn.Add(bn.Div(bn.Mul(x, p), constants.PricePrecision), d),
	)

	cost := bn.Div(
		bn.Sub(left, right),
		constants.PercentagePrecision, constants.PercentagePrecision,
		constants.AmmToQuotePrecisionRatio, constants.PegPrecision,
	)
	return bn.Neg(cost)
}

// CalculateBudgetedPeg moves the peg as close to targetPrice as budget
// allows. If the full move costs no more than the budget the target peg is
// returned outright.
func CalculateBudgetedPeg(amm *types.AMM, budget, targetPrice *big.Int) *big.Int {
	targetPeg := CalculatePegFromTargetPrice(targetPrice, amm.BaseAssetReserve, amm.QuoteAssetReserve)

	costToTarget := CalculateRepegCost(amm, targetPeg)
	if costToTarget.Cmp(budget) <= 0 {
		return targetPeg
	}

	dqar := bn.Sub(amm.QuoteAssetReserve, amm.TerminalQuoteAssetReserve)
	if dqar.Sign() == 0 {
		return targetPeg
	}

	// Largest peg move the budget pays for, from the repeg cost identity.
	maxDelta := bn.Abs(bn.Div(
		bn.Mul(budget, constants.AmmToQuotePrecisionRatio, constants.PegPrecision),
		dqar,
	))

	var newPeg *big.Int
	if targetPeg.Cmp(amm.PegMultiplier) > 0 {
		newPeg = bn.Add(amm.PegMultiplier, maxDelta)
	} else {
		newPeg = bn.Sub(amm.PegMultiplier, maxDelta)
	}
	return bn.Max(newPeg, constants.One)
}

// CalculateOptimalPegAndBudget returns the repeg target price, the peg that
// reaches it, and the fee budget available. When the budget cannot cover the
// full move and the oracle gap exceeds half the max spread, the target is
// pulled back to the edge of the allowed gap.
func CalculateOptimalPegAndBudget(amm *types.AMM, oracle *types.OraclePriceData) (*big.Int, *big.Int, *big.Int, bool) {
	reservePriceBefore := bn.Max(
		constants.One,
		CalculatePrice(amm.BaseAssetReserve, amm.QuoteAssetReserve, amm.PegMultiplier),
	)
	targetPrice := oracle.Price
	newPeg := CalculatePegFromTargetPrice(targetPrice, amm.BaseAssetReserve, amm.QuoteAssetReserve)
	prePegCost := CalculateRepegCost(amm, newPeg)

	totalFeeLowerBound := bn.Div(amm.TotalExchangeFee, bn.New(2))
	budget := bn.Max(bn.New(0), bn.Sub(amm.TotalFeeMinusDistributions, totalFeeLowerBound))

	checkLowerBound := true
	if budget.Cmp(prePegCost) < 0 {
		halfMaxPriceSpread := bn.Div(
			bn.Mul(bn.Div(bn.New(int64(amm.MaxSpread)), bn.New(2)), targetPrice),
			constants.BidAskSpreadPrecision,
		)

		targetPriceGap := bn.Sub(reservePriceBefore, targetPrice)
		if bn.Abs(targetPriceGap).Cmp(halfMaxPriceSpread) > 0 {
			markAdj := bn.Sub(bn.Abs(targetPriceGap), halfMaxPriceSpread)

			var newTargetPrice *big.Int
			if targetPriceGap.Sign() < 0 {
				newTargetPrice = bn.Add(reservePriceBefore, markAdj)
			} else {
				newTargetPrice = bn.Sub(reservePriceBefore, markAdj)
			}

			newOptimalPeg := CalculatePegFromTargetPrice(newTargetPrice, amm.BaseAssetReserve, amm.QuoteAssetReserve)
			newBudget := CalculateRepegCost(amm, newOptimalPeg)
			return newTargetPrice, newOptimalPeg, newBudget, false
		}
		if amm.TotalFeeMinusDistributions.Cmp(totalFeeLowerBound) < 0 {
			checkLowerBound = false
		}
	}

	return targetPrice, newPeg, budget, checkLowerBound
}

// calculateNewAmm resolves the prepeg adjustment: the cost to apply, the k
// scaling factor (numerator, denominator), and the new peg.
func calculateNewAmm(amm *types.AMM, oracle *types.OraclePriceData) (*big.Int, *big.Int, *big.Int, *big.Int) {
	pkNumer := bn.New(1)
	pkDenom := bn.New(1)

	targetPrice, candidatePeg, budget, _ := CalculateOptimalPegAndBudget(amm, oracle)
	prePegCost := CalculateRepegCost(amm, candidatePeg)
	newPeg := candidatePeg

	if prePegCost.Cmp(budget) >= 0 && prePegCost.Sign() > 0 {
		// Budget cannot cover the move: shrink k slightly to make up the
		// deficit, then spend what that frees on a budgeted repeg.
		pkNumer = bn.New(999)
		pkDenom = bn.New(1000)
		deficitMadeup := CalculateAdjustKCost(amm, pkNumer, pkDenom)
		prePegCost = bn.Add(budget, bn.Abs(deficitMadeup))

		scaled := amm.Clone()
		scaled.BaseAssetReserve = bn.Div(bn.Mul(scaled.BaseAssetReserve, pkNumer), pkDenom)
		scaled.SqrtK = bn.Div(bn.Mul(scaled.SqrtK, pkNumer), pkDenom)
		invariant := bn.Mul(scaled.SqrtK, scaled.SqrtK)
		scaled.QuoteAssetReserve = bn.Div(invariant, scaled.BaseAssetReserve)

		directionToClose := types.Long
		if amm.BaseAssetAmountWithAmm.Sign() > 0 {
			directionToClose = types.Short
		}
		newQuoteReserve, _ := CalculateAmmReservesAfterSwap(
			scaled,
			types.AssetBase,
			bn.Abs(amm.BaseAssetAmountWithAmm),
			GetSwapDirection(types.AssetBase, directionToClose),
		)
		scaled.TerminalQuoteAssetReserve = newQuoteReserve

		newPeg = CalculateBudgetedPeg(scaled, prePegCost, targetPrice)
		prePegCost = CalculateRepegCost(scaled, newPeg)
	}

	return prePegCost, pkNumer, pkDenom, newPeg
}

// CalculateUpdatedAMM returns the curve as settlement would reprice it for
// the oracle before filling: peg pulled toward the oracle price within the
// fee budget, k scaled if the budget fell short, and the terminal quote
// reserve recomputed for the adjusted curve. The input snapshot is never
// modified. A nil oracle or zero CurveUpdateIntensity returns a plain copy.
func CalculateUpdatedAMM(amm *types.AMM, oracle *types.OraclePriceData) *types.AMM {
	if amm.CurveUpdateIntensity == 0 || oracle == nil {
		return amm.Clone()
	}

	prepegCost, pkNumer, pkDenom, newPeg := calculateNewAmm(amm, oracle)

	updated := amm.Clone()
	updated.BaseAssetReserve = bn.Div(bn.Mul(updated.BaseAssetReserve, pkNumer), pkDenom)
	updated.SqrtK = bn.Div(bn.Mul(updated.SqrtK, pkNumer), pkDenom)
	invariant := bn.Mul(updated.SqrtK, updated.SqrtK)
	updated.QuoteAssetReserve = bn.Div(invariant, updated.BaseAssetReserve)
	updated.PegMultiplier = newPeg

	directionToClose := types.Long
	if amm.BaseAssetAmountWithAmm.Sign() > 0 {
		directionToClose = types.Short
	}
	newQuoteReserve, _ := CalculateAmmReservesAfterSwap(
		updated,
		types.AssetBase,
		bn.Abs(amm.BaseAssetAmountWithAmm),
		GetSwapDirection(types.AssetBase, directionToClose),
	)
	updated.TerminalQuoteAssetReserve = newQuoteReserve
	updated.TotalFeeMinusDistributions = bn.Sub(updated.TotalFeeMinusDistributions, prepegCost)

	return updated
}
