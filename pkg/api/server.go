// Package api exposes the evaluation core over HTTP: market and oracle
// snapshots, an order-evaluation endpoint, Prometheus metrics, and a
// WebSocket stream of fill candidates.
package api

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/vperp/vperp/pkg/keeper"
	"github.com/vperp/vperp/pkg/math/amm"
	"github.com/vperp/vperp/pkg/math/auction"
	"github.com/vperp/vperp/pkg/math/orders"
	"github.com/vperp/vperp/pkg/metrics"
	"github.com/vperp/vperp/pkg/oracle"
	"github.com/vperp/vperp/pkg/storage"
	"github.com/vperp/vperp/pkg/types"
	"github.com/vperp/vperp/pkg/util"
)

type Server struct {
	store  *storage.SnapshotStore
	cache  *oracle.Cache
	clock  util.Clock
	router *mux.Router
	hub    *Hub
	log    *zap.SugaredLogger
}

func NewServer(store *storage.SnapshotStore, cache *oracle.Cache, clock util.Clock, log *zap.SugaredLogger) *Server {
	s := &Server{
		store:  store,
		cache:  cache,
		clock:  clock,
		router: mux.NewRouter(),
		hub:    NewHub(log),
		log:    log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/markets", s.handleGetMarkets).Methods("GET")
	api.HandleFunc("/markets/{index}", s.handleGetMarket).Methods("GET")
	api.HandleFunc("/markets/{index}/oracle", s.handleGetOracle).Methods("GET")
	api.HandleFunc("/evaluate", s.handleEvaluate).Methods("POST")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.Handle("/metrics", metrics.Handler()).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the fully wrapped HTTP handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(metrics.Middleware(s.router))
}

// Start runs the hub and blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	go s.hub.Run()
	s.log.Infow("api_listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) oracleFor(index uint16) (*types.OraclePriceData, bool) {
	if data, ok := s.cache.Get(index); ok {
		return data, true
	}
	data, ok, err := s.store.GetOraclePrice(index)
	if err != nil || !ok {
		return nil, false
	}
	return data, true
}

func (s *Server) marketInfo(m *types.PerpMarket) MarketInfo {
	oracleData, _ := s.oracleFor(m.MarketIndex)
	bid, ask := amm.CalculateBidAskPrice(m.Amm, oracleData, oracleData != nil)
	reserve := amm.CalculatePrice(m.Amm.BaseAssetReserve, m.Amm.QuoteAssetReserve, m.Amm.PegMultiplier)
	return MarketInfo{
		MarketIndex:       m.MarketIndex,
		Symbol:            m.Symbol,
		ReservePrice:      reserve.String(),
		BidPrice:          bid.String(),
		AskPrice:          ask.String(),
		BaseAssetReserve:  m.Amm.BaseAssetReserve.String(),
		QuoteAssetReserve: m.Amm.QuoteAssetReserve.String(),
		PegMultiplier:     m.Amm.PegMultiplier.String(),
		OrderStepSize:     m.Amm.OrderStepSize.String(),
		OrderTickSize:     m.Amm.OrderTickSize.String(),
		MinOrderSize:      m.Amm.MinOrderSize.String(),
	}
}

func (s *Server) handleGetMarkets(w http.ResponseWriter, r *http.Request) {
	markets, err := s.store.ListMarkets()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "list markets failed", err.Error())
		return
	}
	response := make([]MarketInfo, len(markets))
	for i, m := range markets {
		response[i] = s.marketInfo(m)
	}
	respondJSON(w, response)
}

func marketIndexVar(r *http.Request) (uint16, error) {
	raw := mux.Vars(r)["index"]
	index, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid market index %q", raw)
	}
	return uint16(index), nil
}

func (s *Server) handleGetMarket(w http.ResponseWriter, r *http.Request) {
	index, err := marketIndexVar(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	market, ok, err := s.store.GetMarket(index)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "get market failed", err.Error())
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "market not found", "")
		return
	}
	respondJSON(w, s.marketInfo(market))
}

func (s *Server) handleGetOracle(w http.ResponseWriter, r *http.Request) {
	index, err := marketIndexVar(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	data, ok := s.oracleFor(index)
	if !ok {
		respondError(w, http.StatusNotFound, "no oracle price", "")
		return
	}
	respondJSON(w, OracleInfo{
		MarketIndex: index,
		Price:       data.Price.String(),
		Confidence:  data.Confidence.String(),
		Slot:        data.Slot,
	})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	order, err := orderFromPayload(&req.Order)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid order", err.Error())
		return
	}

	market, ok, err := s.store.GetMarket(order.MarketIndex)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "get market failed", err.Error())
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "market not found", "")
		return
	}
	oracleData, ok := s.oracleFor(order.MarketIndex)
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "no oracle price", "")
		return
	}

	slot := req.Slot
	if slot == 0 {
		slot = oracleData.Slot
	}
	now := req.Now
	if now == 0 {
		now = s.clock.Now().Unix()
	}

	var position *types.PerpPosition
	if req.Position != nil {
		baseAmount, err := parseBig(req.Position.BaseAssetAmount)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid position", err.Error())
			return
		}
		position = &types.PerpPosition{
			MarketIndex:     req.Position.MarketIndex,
			BaseAssetAmount: baseAmount,
		}
	} else {
		position = types.NewPerpPosition(order.MarketIndex)
	}

	fillable := orders.CalculateBaseAssetAmountForAmmToFulfill(order, market, oracleData, slot)
	limitPrice := orders.GetLimitPrice(order, oracleData, slot, nil)

	resp := EvaluateResponse{
		Slot:                    slot,
		RiskIncreasing:          orders.IsOrderRiskIncreasing(position, order),
		ReduceOnly:              orders.IsOrderReduceOnly(position, order),
		RestingLimit:            orders.IsRestingLimitOrder(order, slot),
		Taking:                  orders.IsTakingOrder(order, slot),
		Expired:                 orders.IsOrderExpired(order, now),
		AuctionComplete:         auction.IsAuctionComplete(order, slot),
		FillableBaseAssetAmount: fillable.String(),
		FillableByVAMM:          orders.IsFillableByVAMM(order, market, oracleData, slot, now),
	}
	if limitPrice != nil {
		p := limitPrice.String()
		resp.LimitPrice = &p
	}
	respondJSON(w, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"})
}

// BroadcastFillCandidates pushes a scan's results to subscribed clients.
func (s *Server) BroadcastFillCandidates(candidates []keeper.FillCandidate, slot uint64) {
	for _, c := range candidates {
		update := FillCandidateUpdate{
			Type:            "fill_candidate",
			MarketIndex:     c.MarketIndex,
			Symbol:          c.Symbol,
			Authority:       c.Authority.Hex(),
			OrderID:         c.OrderID,
			Direction:       c.Direction.String(),
			BaseAssetAmount: c.BaseAssetAmount.String(),
			Expired:         c.Expired,
			Slot:            slot,
		}
		if c.LimitPrice != nil {
			p := c.LimitPrice.String()
			update.LimitPrice = &p
		}
		s.hub.BroadcastToChannel("fills:"+c.Symbol, update)
	}
}

// parseBig parses a decimal string; empty means zero.
func parseBig(raw string) (*big.Int, error) {
	if raw == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", raw)
	}
	return v, nil
}

func parseOrderStatus(raw string) (types.OrderStatus, error) {
	switch raw {
	case "", "Uninitialized":
		return types.Uninitialized, nil
	case "Open":
		return types.Open, nil
	case "Filled":
		return types.Filled, nil
	case "Canceled":
		return types.Canceled, nil
	}
	return 0, fmt.Errorf("unknown order status %q", raw)
}

func parseOrderType(raw string) (types.OrderType, error) {
	switch raw {
	case "", "Market":
		return types.Market, nil
	case "Limit":
		return types.Limit, nil
	case "TriggerMarket":
		return types.TriggerMarket, nil
	case "TriggerLimit":
		return types.TriggerLimit, nil
	case "Oracle":
		return types.Oracle, nil
	}
	return 0, fmt.Errorf("unknown order type %q", raw)
}

func parseDirection(raw string) (types.PositionDirection, error) {
	switch raw {
	case "", "Long":
		return types.Long, nil
	case "Short":
		return types.Short, nil
	}
	return 0, fmt.Errorf("unknown direction %q", raw)
}

func parseTriggerCondition(raw string) (types.OrderTriggerCondition, error) {
	switch raw {
	case "", "Above":
		return types.Above, nil
	case "Below":
		return types.Below, nil
	case "TriggeredAbove":
		return types.TriggeredAbove, nil
	case "TriggeredBelow":
		return types.TriggeredBelow, nil
	}
	return 0, fmt.Errorf("unknown trigger condition %q", raw)
}

func orderFromPayload(p *OrderPayload) (*types.Order, error) {
	o := types.NewOrder()
	var err error
	if o.Status, err = parseOrderStatus(p.Status); err != nil {
		return nil, err
	}
	if o.OrderType, err = parseOrderType(p.OrderType); err != nil {
		return nil, err
	}
	if o.Direction, err = parseDirection(p.Direction); err != nil {
		return nil, err
	}
	if o.TriggerCondition, err = parseTriggerCondition(p.TriggerCondition); err != nil {
		return nil, err
	}
	if o.BaseAssetAmount, err = parseBig(p.BaseAssetAmount); err != nil {
		return nil, err
	}
	if o.BaseAssetAmountFilled, err = parseBig(p.BaseAssetAmountFilled); err != nil {
		return nil, err
	}
	if o.Price, err = parseBig(p.Price); err != nil {
		return nil, err
	}
	if o.AuctionStartPrice, err = parseBig(p.AuctionStartPrice); err != nil {
		return nil, err
	}
	if o.AuctionEndPrice, err = parseBig(p.AuctionEndPrice); err != nil {
		return nil, err
	}
	if o.TriggerPrice, err = parseBig(p.TriggerPrice); err != nil {
		return nil, err
	}
	o.MarketIndex = p.MarketIndex
	o.OrderID = p.OrderID
	o.Slot = p.Slot
	o.OraclePriceOffset = p.OraclePriceOffset
	o.AuctionDuration = p.AuctionDuration
	o.MaxTs = p.MaxTs
	o.ReduceOnly = p.ReduceOnly
	o.PostOnly = p.PostOnly
	o.ImmediateOrCancel = p.ImmediateOrCancel
	return o, nil
}

func respondJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, errMsg, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{Error: errMsg, Message: detail})
}
