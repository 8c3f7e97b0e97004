// Package constants defines the fixed-point precisions shared by the
// evaluation engine and the settlement program it must agree with.
//
// All prices and amounts in this SDK are integers scaled by one of these
// precisions. Division always truncates toward zero; any change here breaks
// bit-exact agreement with on-chain settlement.
package constants

import "math/big"

var (
	// PricePrecision scales oracle and limit prices (1e6 = $1).
	PricePrecision = big.NewInt(1_000_000)

	// PegPrecision scales the AMM peg multiplier.
	PegPrecision = big.NewInt(1_000_000)

	// AmmReservePrecision scales AMM base/quote reserves and base asset amounts (1e9).
	AmmReservePrecision = big.NewInt(1_000_000_000)

	// QuotePrecision scales quote asset (collateral) amounts (1e6).
	QuotePrecision = big.NewInt(1_000_000)

	// PercentagePrecision scales ratios and fractions (1e6 = 100%).
	PercentagePrecision = big.NewInt(1_000_000)

	// BidAskSpreadPrecision scales AMM spread terms (1e6 = 100%).
	BidAskSpreadPrecision = big.NewInt(1_000_000)

	// MarginPrecision scales margin ratios (1e4).
	MarginPrecision = big.NewInt(10_000)

	// PriceDivPeg = PricePrecision / PegPrecision.
	PriceDivPeg = new(big.Int).Quo(PricePrecision, PegPrecision)

	// AmmToQuotePrecisionRatio = AmmReservePrecision / QuotePrecision.
	AmmToQuotePrecisionRatio = new(big.Int).Quo(AmmReservePrecision, QuotePrecision)

	// AmmTimesPegToQuotePrecisionRatio = AmmReservePrecision * PegPrecision / QuotePrecision.
	AmmTimesPegToQuotePrecisionRatio = new(big.Int).Quo(
		new(big.Int).Mul(AmmReservePrecision, PegPrecision), QuotePrecision)

	Zero = big.NewInt(0)
	One  = big.NewInt(1)
)
