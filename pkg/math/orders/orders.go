// Package orders is the order-evaluation core: given an order, the trader's
// position, a market snapshot, and an oracle price, it classifies the
// order's risk effect, resolves its governing limit price, and computes how
// much of it the virtual curve can fill right now.
//
// Every function is pure and total over well-formed snapshots. Callers must
// pass a mutually consistent (slot, timestamp, oracle, AMM) set; the engine
// has no way to detect skew between them. The results here must agree
// bit-for-bit with the settlement program, so all arithmetic is fixed-point
// integer with truncating division.
package orders

import (
	"github.com/vperp/vperp/pkg/bn"
	"github.com/vperp/vperp/pkg/math/auction"
	"github.com/vperp/vperp/pkg/types"
)

// IsMarketOrderType reports whether the order takes liquidity by type:
// market, trigger-market, or oracle.
func IsMarketOrderType(order *types.Order) bool {
	switch order.OrderType {
	case types.Market, types.TriggerMarket, types.Oracle:
		return true
	default:
		return false
	}
}

// IsLimitOrderType reports whether the order is a limit or trigger-limit.
func IsLimitOrderType(order *types.Order) bool {
	return order.OrderType == types.Limit || order.OrderType == types.TriggerLimit
}

// MustBeTriggered reports whether the order is gated behind a trigger
// condition by type.
func MustBeTriggered(order *types.Order) bool {
	return order.OrderType == types.TriggerMarket || order.OrderType == types.TriggerLimit
}

// IsTriggered reports whether the order's trigger condition has fired.
func IsTriggered(order *types.Order) bool {
	return order.TriggerCondition == types.TriggeredAbove ||
		order.TriggerCondition == types.TriggeredBelow
}

// IsOrderExpired reports whether the order has passed its expiry timestamp.
// Trigger-gated orders and orders without a MaxTs never expire.
func IsOrderExpired(order *types.Order, now int64) bool {
	if MustBeTriggered(order) || order.Status != types.Open || order.MaxTs == 0 {
		return false
	}
	return now > order.MaxTs
}

// IsRestingLimitOrder reports whether the order currently behaves like a
// static book order: a limit order that is post-only or whose auction has
// completed.
func IsRestingLimitOrder(order *types.Order, slot uint64) bool {
	if !IsLimitOrderType(order) {
		return false
	}
	if order.PostOnly {
		return true
	}
	return auction.IsAuctionComplete(order, slot)
}

// IsTakingOrder reports whether the order still takes liquidity at slot:
// any market-type order, or a limit order still in its auction phase.
func IsTakingOrder(order *types.Order, slot uint64) bool {
	return IsMarketOrderType(order) || !IsRestingLimitOrder(order, slot)
}

// IsOrderRiskIncreasing reports whether filling the order's remainder would
// grow the trader's directional exposure. A flat position is always risk
// increasing: any fill builds new exposure. An opposite-direction order is
// risk increasing only when its remainder would flip the position past flat
// into a larger exposure than the original (remainder > 2x|position|).
func IsOrderRiskIncreasing(position *types.PerpPosition, order *types.Order) bool {
	if order.Status == types.Uninitialized {
		return false
	}

	switch position.BaseAssetAmount.Sign() {
	case 0:
		return true
	case 1:
		if order.Direction == types.Long {
			return true
		}
	case -1:
		if order.Direction == types.Short {
			return true
		}
	}

	remaining := order.UnfilledBaseAssetAmount()
	doubled := bn.Mul(bn.Abs(position.BaseAssetAmount), bn.New(2))
	return remaining.Cmp(doubled) > 0
}

// IsOrderRiskIncreasingInSameDirection flags only unambiguous increases:
// a flat position or an order on the same side as the position. Direction
// flips, however large, return false.
func IsOrderRiskIncreasingInSameDirection(position *types.PerpPosition, order *types.Order) bool {
	if order.Status == types.Uninitialized {
		return false
	}

	switch position.BaseAssetAmount.Sign() {
	case 0:
		return true
	case 1:
		return order.Direction == types.Long
	default:
		return order.Direction == types.Short
	}
}

// IsOrderReduceOnly reports whether the order can only shrink (or flip
// without exceeding) the existing position. Unlike the risk checks, a flat
// position is compatible with either direction here: there is nothing to
// reduce, so the order is not reduce-only.
func IsOrderReduceOnly(position *types.PerpPosition, order *types.Order) bool {
	if order.Status == types.Uninitialized {
		return false
	}
	if position.BaseAssetAmount.Sign() >= 0 && order.Direction == types.Long {
		return false
	}
	if position.BaseAssetAmount.Sign() <= 0 && order.Direction == types.Short {
		return false
	}
	return true
}
