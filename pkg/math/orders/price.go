package orders

import (
	"math/big"

	"github.com/vperp/vperp/pkg/bn"
	"github.com/vperp/vperp/pkg/math/auction"
	"github.com/vperp/vperp/pkg/types"
)

// HasAuctionPrice reports whether the order is still pricing off its auction
// ramp: the auction has not completed and at least one bound is set.
func HasAuctionPrice(order *types.Order, slot uint64) bool {
	if auction.IsAuctionComplete(order, slot) {
		return false
	}
	return order.AuctionStartPrice.Sign() != 0 || order.AuctionEndPrice.Sign() != 0
}

// HasLimitPrice reports whether anything constrains the order's fill price
// at slot. Only a true market order past its auction has no constraint.
func HasLimitPrice(order *types.Order, slot uint64) bool {
	return order.Price.Sign() > 0 ||
		order.OraclePriceOffset != 0 ||
		!auction.IsAuctionComplete(order, slot)
}

// GetLimitPrice resolves the limit price governing the order at slot.
// Precedence: active auction ramp, then oracle offset, then the static
// price, with fallback (nil allowed) covering the unset static price.
// Returns nil when no price constrains the order.
func GetLimitPrice(order *types.Order, oracle *types.OraclePriceData, slot uint64, fallback *big.Int) *big.Int {
	switch {
	case HasAuctionPrice(order, slot):
		return auction.GetAuctionPrice(order, slot, oracle.Price)
	case order.OraclePriceOffset != 0:
		return bn.Add(oracle.Price, bn.New(order.OraclePriceOffset))
	case order.Price.Sign() == 0:
		if fallback == nil {
			return nil
		}
		return bn.Clone(fallback)
	default:
		return bn.Clone(order.Price)
	}
}
