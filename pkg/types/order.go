package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Order is the immutable snapshot of a resting or incoming order, as
// deserialized from the trader's on-chain account. All prices are scaled by
// constants.PricePrecision, all base amounts by constants.AmmReservePrecision.
//
// Zero is a meaningful sentinel in three places, preserved from the on-chain
// layout: Price == 0 means no static limit, MaxTs == 0 means never expires,
// and both auction bounds == 0 means no auction.
type Order struct {
	Status      OrderStatus
	OrderType   OrderType
	Direction   PositionDirection
	MarketIndex uint16
	OrderID     uint32

	// Slot the order was placed in; auction progress is measured from here.
	Slot uint64

	// BaseAssetAmount is the total size requested (unsigned magnitude);
	// BaseAssetAmountFilled is the cumulative fill, 0 <= filled <= total.
	BaseAssetAmount       *big.Int
	BaseAssetAmountFilled *big.Int

	// Price is the static limit price; 0 means unset.
	Price *big.Int

	// OraclePriceOffset prices the order relative to the oracle when non-zero.
	OraclePriceOffset int64

	// Auction ramp bounds. For Oracle orders these are offsets against the
	// oracle price and may be negative; otherwise absolute prices.
	AuctionStartPrice *big.Int
	AuctionEndPrice   *big.Int
	AuctionDuration   uint8 // slots; 0 means no auction phase

	// TriggerPrice and TriggerCondition gate TriggerMarket/TriggerLimit orders.
	TriggerPrice     *big.Int
	TriggerCondition OrderTriggerCondition

	// MaxTs is the unix expiration timestamp; 0 means never expires.
	MaxTs int64

	ReduceOnly        bool
	PostOnly          bool
	ImmediateOrCancel bool
}

// NewOrder returns an uninitialized order with all fixed-point fields zeroed,
// so every evaluation function is total over it.
func NewOrder() *Order {
	return &Order{
		BaseAssetAmount:       new(big.Int),
		BaseAssetAmountFilled: new(big.Int),
		Price:                 new(big.Int),
		AuctionStartPrice:     new(big.Int),
		AuctionEndPrice:       new(big.Int),
		TriggerPrice:          new(big.Int),
	}
}

// UnfilledBaseAssetAmount returns the remaining size of the order.
func (o *Order) UnfilledBaseAssetAmount() *big.Int {
	return new(big.Int).Sub(o.BaseAssetAmount, o.BaseAssetAmountFilled)
}

// UserOrders is one trader's open-order snapshot as the keeper caches it.
type UserOrders struct {
	Authority common.Address
	Orders    []*Order
}
