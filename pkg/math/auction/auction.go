// Package auction computes the slot-driven price ramp new orders pass
// through before resting. The ramp is pure integer interpolation so every
// off-chain caller lands on the same price as settlement for a given slot.
package auction

import (
	"math/big"

	"github.com/vperp/vperp/pkg/bn"
	"github.com/vperp/vperp/pkg/types"
)

// IsAuctionComplete reports whether the order's auction phase has elapsed at
// slot. Orders without an auction phase (duration 0) are always complete.
func IsAuctionComplete(order *types.Order, slot uint64) bool {
	if order.AuctionDuration == 0 {
		return true
	}
	return slot-order.Slot > uint64(order.AuctionDuration)
}

// GetAuctionPrice returns the price of the order's auction ramp at slot.
// Oracle orders ramp an offset against the oracle price; all other order
// types ramp between absolute start/end prices.
func GetAuctionPrice(order *types.Order, slot uint64, oraclePrice *big.Int) *big.Int {
	if order.OrderType == types.Oracle {
		return getAuctionPriceForOracleOffsetAuction(order, slot, oraclePrice)
	}
	return getAuctionPriceForFixedAuction(order, slot)
}

// getAuctionPriceForFixedAuction interpolates start -> end over the auction
// duration, clamping elapsed slots at the duration. Long auctions ramp up
// (start below end), short auctions ramp down.
func getAuctionPriceForFixedAuction(order *types.Order, slot uint64) *big.Int {
	if order.AuctionDuration == 0 {
		return bn.Clone(order.AuctionEndPrice)
	}
	slotsElapsed := int64(slot - order.Slot)
	num := bn.Min(bn.New(slotsElapsed), bn.New(int64(order.AuctionDuration)))
	den := bn.New(int64(order.AuctionDuration))

	if order.Direction == types.Long {
		delta := bn.Div(bn.Mul(bn.Sub(order.AuctionEndPrice, order.AuctionStartPrice), num), den)
		return bn.Add(order.AuctionStartPrice, delta)
	}
	delta := bn.Div(bn.Mul(bn.Sub(order.AuctionStartPrice, order.AuctionEndPrice), num), den)
	return bn.Sub(order.AuctionStartPrice, delta)
}

// getAuctionPriceForOracleOffsetAuction interpolates the auction bounds as
// signed offsets and applies the result to the oracle price.
func getAuctionPriceForOracleOffsetAuction(order *types.Order, slot uint64, oraclePrice *big.Int) *big.Int {
	if order.AuctionDuration == 0 {
		return bn.Add(oraclePrice, order.AuctionEndPrice)
	}
	slotsElapsed := int64(slot - order.Slot)
	num := bn.Min(bn.New(slotsElapsed), bn.New(int64(order.AuctionDuration)))
	den := bn.New(int64(order.AuctionDuration))

	var offset *big.Int
	if order.Direction == types.Long {
		delta := bn.Div(bn.Mul(bn.Sub(order.AuctionEndPrice, order.AuctionStartPrice), num), den)
		offset = bn.Add(order.AuctionStartPrice, delta)
	} else {
		delta := bn.Div(bn.Mul(bn.Sub(order.AuctionStartPrice, order.AuctionEndPrice), num), den)
		offset = bn.Sub(order.AuctionStartPrice, delta)
	}
	return bn.Add(oraclePrice, offset)
}
