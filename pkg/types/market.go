package types

import "math/big"

// AMM is the virtual liquidity curve state of one perp market. Reserves are
// scaled by constants.AmmReservePrecision, the peg by constants.PegPrecision.
// The evaluation engine treats this as a read-only snapshot; "updating" the
// AMM always produces a copy.
type AMM struct {
	BaseAssetReserve          *big.Int
	QuoteAssetReserve         *big.Int
	SqrtK                     *big.Int
	PegMultiplier             *big.Int
	TerminalQuoteAssetReserve *big.Int

	// BaseAssetAmountWithAmm is the net base position held against the curve
	// (positive = users net long).
	BaseAssetAmountWithAmm *big.Int

	// Reserve bounds limiting how far one side of the curve can be consumed.
	MinBaseAssetReserve *big.Int
	MaxBaseAssetReserve *big.Int

	// Order sizing and pricing increments.
	OrderStepSize *big.Int // min base amount increment
	OrderTickSize *big.Int // min price increment
	MinOrderSize  *big.Int // smallest base amount the curve will fill

	// MaxFillReserveFraction caps a single fill at baseAssetReserve/fraction.
	MaxFillReserveFraction uint16

	// Spread parameters (constants.BidAskSpreadPrecision units).
	BaseSpread uint32
	MaxSpread  uint32

	// CurveUpdateIntensity == 0 disables prepeg repricing entirely.
	CurveUpdateIntensity uint8

	// Fee pools funding the repeg budget (constants.QuotePrecision units).
	TotalFeeMinusDistributions *big.Int
	TotalExchangeFee           *big.Int
}

// Clone returns a deep copy of the AMM snapshot.
func (a *AMM) Clone() *AMM {
	out := *a
	out.BaseAssetReserve = new(big.Int).Set(a.BaseAssetReserve)
	out.QuoteAssetReserve = new(big.Int).Set(a.QuoteAssetReserve)
	out.SqrtK = new(big.Int).Set(a.SqrtK)
	out.PegMultiplier = new(big.Int).Set(a.PegMultiplier)
	out.TerminalQuoteAssetReserve = new(big.Int).Set(a.TerminalQuoteAssetReserve)
	out.BaseAssetAmountWithAmm = new(big.Int).Set(a.BaseAssetAmountWithAmm)
	out.MinBaseAssetReserve = new(big.Int).Set(a.MinBaseAssetReserve)
	out.MaxBaseAssetReserve = new(big.Int).Set(a.MaxBaseAssetReserve)
	out.OrderStepSize = new(big.Int).Set(a.OrderStepSize)
	out.OrderTickSize = new(big.Int).Set(a.OrderTickSize)
	out.MinOrderSize = new(big.Int).Set(a.MinOrderSize)
	out.TotalFeeMinusDistributions = new(big.Int).Set(a.TotalFeeMinusDistributions)
	out.TotalExchangeFee = new(big.Int).Set(a.TotalExchangeFee)
	return &out
}

// PerpMarket is the per-market snapshot the evaluator reads.
type PerpMarket struct {
	MarketIndex uint16
	Symbol      string // "SOL-PERP"
	Amm         *AMM
}

// PerpPosition is one trader's signed exposure in one market.
// BaseAssetAmount > 0 is long, < 0 is short, 0 is flat.
type PerpPosition struct {
	MarketIndex     uint16
	BaseAssetAmount *big.Int
}

// NewPerpPosition returns a flat position for the market.
func NewPerpPosition(marketIndex uint16) *PerpPosition {
	return &PerpPosition{MarketIndex: marketIndex, BaseAssetAmount: new(big.Int)}
}

// OraclePriceData is one oracle observation, scaled by constants.PricePrecision.
type OraclePriceData struct {
	Price                           *big.Int
	Slot                            uint64
	Confidence                      *big.Int
	HasSufficientNumberOfDataPoints bool
}
