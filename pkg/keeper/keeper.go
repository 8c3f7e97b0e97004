// Package keeper scans cached order snapshots and reports which orders the
// virtual curve can fill right now. The scan is read-only: it evaluates the
// same pure functions settlement runs and emits candidates for a filler to
// act on. Nothing here mutates market or order state.
package keeper

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/vperp/vperp/pkg/math/orders"
	"github.com/vperp/vperp/pkg/metrics"
	"github.com/vperp/vperp/pkg/oracle"
	"github.com/vperp/vperp/pkg/storage"
	"github.com/vperp/vperp/pkg/types"
	"github.com/vperp/vperp/pkg/util"
)

// FillCandidate is one order the vAMM is currently eligible to fill.
type FillCandidate struct {
	MarketIndex     uint16
	Symbol          string
	Authority       common.Address
	OrderID         uint32
	Direction       types.PositionDirection
	BaseAssetAmount *big.Int // amount the curve can absorb now
	LimitPrice      *big.Int // nil for unconstrained market orders
	Expired         bool     // fillable only because the order expired
}

type Keeper struct {
	store *storage.SnapshotStore
	cache *oracle.Cache
	clock util.Clock
	log   *zap.SugaredLogger
}

func New(store *storage.SnapshotStore, cache *oracle.Cache, clock util.Clock, log *zap.SugaredLogger) *Keeper {
	return &Keeper{store: store, cache: cache, clock: clock, log: log}
}

// oracleFor prefers the live cache and falls back to the persisted snapshot.
func (k *Keeper) oracleFor(marketIndex uint16) (*types.OraclePriceData, bool) {
	if data, ok := k.cache.Get(marketIndex); ok {
		return data, true
	}
	data, ok, err := k.store.GetOraclePrice(marketIndex)
	if err != nil || !ok {
		return nil, false
	}
	return data, true
}

// ScanMarket evaluates every cached order in one market at (slot, now).
func (k *Keeper) ScanMarket(market *types.PerpMarket, slot uint64, now int64) ([]FillCandidate, error) {
	oracleData, ok := k.oracleFor(market.MarketIndex)
	if !ok {
		return nil, fmt.Errorf("market %d: no oracle price", market.MarketIndex)
	}

	stored, err := k.store.ListOrders(market.MarketIndex)
	if err != nil {
		return nil, fmt.Errorf("market %d: %w", market.MarketIndex, err)
	}

	label := market.Symbol
	var candidates []FillCandidate
	for _, so := range stored {
		order := so.Order
		if order.Status != types.Open {
			continue
		}
		metrics.OrdersScanned.WithLabelValues(label).Inc()

		if !orders.IsFillableByVAMM(order, market, oracleData, slot, now) {
			continue
		}

		amount := orders.CalculateBaseAssetAmountForAmmToFulfill(order, market, oracleData, slot)
		expired := orders.IsOrderExpired(order, now)
		if amount.Sign() == 0 && !expired {
			continue
		}

		metrics.FillCandidatesTotal.WithLabelValues(label).Inc()
		candidates = append(candidates, FillCandidate{
			MarketIndex:     market.MarketIndex,
			Symbol:          market.Symbol,
			Authority:       so.Authority,
			OrderID:         order.OrderID,
			Direction:       order.Direction,
			BaseAssetAmount: amount,
			LimitPrice:      orders.GetLimitPrice(order, oracleData, slot, nil),
			Expired:         expired,
		})
	}
	return candidates, nil
}

// Scan evaluates all stored markets at (slot, now).
func (k *Keeper) Scan(slot uint64, now int64) ([]FillCandidate, error) {
	metrics.ScansTotal.Inc()

	markets, err := k.store.ListMarkets()
	if err != nil {
		return nil, fmt.Errorf("list markets: %w", err)
	}

	var all []FillCandidate
	for _, market := range markets {
		candidates, err := k.ScanMarket(market, slot, now)
		if err != nil {
			// One market without an oracle shouldn't stall the rest.
			k.log.Warnw("scan_market_skipped", "market", market.Symbol, "err", err)
			continue
		}
		all = append(all, candidates...)
	}
	return all, nil
}

// Run scans on a fixed interval until ctx is canceled, passing each batch of
// candidates to emit. The evaluation slot comes from the freshest oracle
// observation so slot and price always describe the same moment.
func (k *Keeper) Run(ctx context.Context, interval time.Duration, emit func([]FillCandidate)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-k.clock.After(interval):
		}

		slot := k.cache.Slot()
		if slot == 0 {
			k.log.Debugw("scan_waiting_for_oracle")
			continue
		}

		candidates, err := k.Scan(slot, k.clock.Now().Unix())
		if err != nil {
			k.log.Errorw("scan_failed", "err", err)
			continue
		}
		if len(candidates) > 0 {
			k.log.Infow("fill_candidates", "count", len(candidates), "slot", slot)
			if emit != nil {
				emit(candidates)
			}
		}
	}
}
