package api

// Request and response types for REST endpoints and WebSocket messages.
// Fixed-point amounts travel as decimal strings so precision survives JSON.

// MarketInfo is a market's curve snapshot plus its derived prices.
type MarketInfo struct {
	MarketIndex       uint16 `json:"marketIndex"`
	Symbol            string `json:"symbol"`
	ReservePrice      string `json:"reservePrice"` // price precision (1e6)
	BidPrice          string `json:"bidPrice"`
	AskPrice          string `json:"askPrice"`
	BaseAssetReserve  string `json:"baseAssetReserve"`
	QuoteAssetReserve string `json:"quoteAssetReserve"`
	PegMultiplier     string `json:"pegMultiplier"`
	OrderStepSize     string `json:"orderStepSize"`
	OrderTickSize     string `json:"orderTickSize"`
	MinOrderSize      string `json:"minOrderSize"`
}

// OracleInfo is the latest oracle observation for a market.
type OracleInfo struct {
	MarketIndex uint16 `json:"marketIndex"`
	Price       string `json:"price"`
	Confidence  string `json:"confidence"`
	Slot        uint64 `json:"slot"`
}

// OrderPayload mirrors types.Order with enums as their String() names.
type OrderPayload struct {
	Status                string `json:"status"`
	OrderType             string `json:"orderType"`
	Direction             string `json:"direction"`
	MarketIndex           uint16 `json:"marketIndex"`
	OrderID               uint32 `json:"orderId"`
	Slot                  uint64 `json:"slot"`
	BaseAssetAmount       string `json:"baseAssetAmount"`
	BaseAssetAmountFilled string `json:"baseAssetAmountFilled"`
	Price                 string `json:"price"`
	AuctionStartPrice     string `json:"auctionStartPrice"`
	AuctionEndPrice       string `json:"auctionEndPrice"`
	TriggerPrice          string `json:"triggerPrice"`
	OraclePriceOffset     int64  `json:"oraclePriceOffset"`
	AuctionDuration       uint8  `json:"auctionDuration"`
	TriggerCondition      string `json:"triggerCondition"`
	MaxTs                 int64  `json:"maxTs"`
	ReduceOnly            bool   `json:"reduceOnly"`
	PostOnly              bool   `json:"postOnly"`
	ImmediateOrCancel     bool   `json:"immediateOrCancel"`
}

// PositionPayload is the caller's existing position in the order's market.
type PositionPayload struct {
	MarketIndex     uint16 `json:"marketIndex"`
	BaseAssetAmount string `json:"baseAssetAmount"` // signed, +long / -short
}

// EvaluateRequest runs the evaluation core against one order.
// Slot 0 means "use the freshest oracle slot"; Now 0 means server time.
type EvaluateRequest struct {
	Order    OrderPayload     `json:"order"`
	Position *PositionPayload `json:"position,omitempty"`
	Slot     uint64           `json:"slot,omitempty"`
	Now      int64            `json:"now,omitempty"`
}

// EvaluateResponse reports every classification the core derives for the
// order at the evaluated (slot, now) point.
type EvaluateResponse struct {
	Slot                    uint64  `json:"slot"`
	RiskIncreasing          bool    `json:"riskIncreasing"`
	ReduceOnly              bool    `json:"reduceOnly"`
	RestingLimit            bool    `json:"restingLimit"`
	Taking                  bool    `json:"taking"`
	Expired                 bool    `json:"expired"`
	AuctionComplete         bool    `json:"auctionComplete"`
	LimitPrice              *string `json:"limitPrice"` // null = unconstrained
	FillableBaseAssetAmount string  `json:"fillableBaseAssetAmount"`
	FillableByVAMM          bool    `json:"fillableByVamm"`
}

// FillCandidateUpdate is broadcast on the "fills:<symbol>" channel after
// each keeper scan.
type FillCandidateUpdate struct {
	Type            string  `json:"type"` // "fill_candidate"
	MarketIndex     uint16  `json:"marketIndex"`
	Symbol          string  `json:"symbol"`
	Authority       string  `json:"authority"`
	OrderID         uint32  `json:"orderId"`
	Direction       string  `json:"direction"`
	BaseAssetAmount string  `json:"baseAssetAmount"`
	LimitPrice      *string `json:"limitPrice"`
	Expired         bool    `json:"expired"`
	Slot            uint64  `json:"slot"`
}

// WSSubscribeRequest is sent by a client to manage channel subscriptions.
type WSSubscribeRequest struct {
	Op       string   `json:"op"`       // "subscribe" or "unsubscribe"
	Channels []string `json:"channels"` // e.g. ["fills:SOL-PERP"]
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
