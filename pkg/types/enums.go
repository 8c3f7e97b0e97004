package types

// OrderStatus is the lifecycle state of an order on the venue.
type OrderStatus uint8

const (
	Uninitialized OrderStatus = iota // slot in the account is unused
	Open                             // resting or auctioning
	Filled
	Canceled
)

func (s OrderStatus) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Open:
		return "Open"
	case Filled:
		return "Filled"
	case Canceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// OrderType distinguishes how an order prices itself and whether it is
// gated behind a trigger condition.
type OrderType uint8

const (
	Market OrderType = iota
	Limit
	TriggerMarket // stop market
	TriggerLimit  // stop limit
	Oracle        // market order priced relative to the oracle
)

func (t OrderType) String() string {
	switch t {
	case Market:
		return "Market"
	case Limit:
		return "Limit"
	case TriggerMarket:
		return "TriggerMarket"
	case TriggerLimit:
		return "TriggerLimit"
	case Oracle:
		return "Oracle"
	default:
		return "Unknown"
	}
}

// PositionDirection is the side of an order or position.
type PositionDirection uint8

const (
	Long PositionDirection = iota
	Short
)

func (d PositionDirection) String() string {
	if d == Long {
		return "Long"
	}
	return "Short"
}

// Opposite returns the other side.
func (d PositionDirection) Opposite() PositionDirection {
	if d == Long {
		return Short
	}
	return Long
}

// OrderTriggerCondition tracks the trigger sub-state of stop-style orders.
// Above/Below are armed but untriggered; the Triggered variants record that
// the oracle crossed the trigger price and on which side.
type OrderTriggerCondition uint8

const (
	Above OrderTriggerCondition = iota
	Below
	TriggeredAbove
	TriggeredBelow
)

func (c OrderTriggerCondition) String() string {
	switch c {
	case Above:
		return "Above"
	case Below:
		return "Below"
	case TriggeredAbove:
		return "TriggeredAbove"
	case TriggeredBelow:
		return "TriggeredBelow"
	default:
		return "Unknown"
	}
}

// SwapDirection is the direction of a reserve swap on the curve.
type SwapDirection uint8

const (
	SwapAdd SwapDirection = iota
	SwapRemove
)

// AssetType selects which side of the curve a swap amount is denominated in.
type AssetType uint8

const (
	AssetBase AssetType = iota
	AssetQuote
)
