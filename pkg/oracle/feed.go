package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vperp/vperp/pkg/metrics"
	"github.com/vperp/vperp/pkg/storage"
	"github.com/vperp/vperp/pkg/types"
)

// priceUpdate is one message on the oracle price stream. Prices arrive as
// decimal strings in price-precision units to avoid float drift in transit.
type priceUpdate struct {
	MarketIndex uint16 `json:"market_index"`
	Price       string `json:"price"`
	Confidence  string `json:"confidence"`
	Slot        uint64 `json:"slot"`
}

// Feed subscribes to a websocket oracle stream and publishes every update
// into the cache and the snapshot store.
type Feed struct {
	url   string
	cache *Cache
	store *storage.SnapshotStore
	log   *zap.SugaredLogger

	// ReconnectDelay between dial attempts; defaults to 2s.
	ReconnectDelay time.Duration
}

func NewFeed(url string, cache *Cache, store *storage.SnapshotStore, log *zap.SugaredLogger) *Feed {
	return &Feed{
		url:            url,
		cache:          cache,
		store:          store,
		log:            log,
		ReconnectDelay: 2 * time.Second,
	}
}

// Run dials the stream and pumps updates until ctx is canceled, redialing
// on any read or connect error.
func (f *Feed) Run(ctx context.Context) {
	for {
		if err := f.connectAndPump(ctx); err != nil {
			f.log.Warnw("oracle_feed_disconnected", "url", f.url, "err", err)
		}
		metrics.OracleFeedReconnects.Inc()

		select {
		case <-ctx.Done():
			return
		case <-time.After(f.ReconnectDelay):
		}
	}
}

func (f *Feed) connectAndPump(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return fmt.Errorf("dial oracle feed: %w", err)
	}
	defer conn.Close()
	f.log.Infow("oracle_feed_connected", "url", f.url)

	// Close the socket when ctx ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read oracle feed: %w", err)
		}

		var update priceUpdate
		if err := json.Unmarshal(msg, &update); err != nil {
			f.log.Warnw("oracle_feed_bad_message", "err", err)
			continue
		}
		if err := f.apply(&update); err != nil {
			f.log.Warnw("oracle_feed_apply_failed", "market_index", update.MarketIndex, "err", err)
		}
	}
}

func (f *Feed) apply(update *priceUpdate) error {
	price, ok := new(big.Int).SetString(update.Price, 10)
	if !ok {
		return fmt.Errorf("bad price %q", update.Price)
	}
	confidence, ok := new(big.Int).SetString(update.Confidence, 10)
	if !ok {
		confidence = new(big.Int)
	}

	data := &types.OraclePriceData{
		Price:                           price,
		Slot:                            update.Slot,
		Confidence:                      confidence,
		HasSufficientNumberOfDataPoints: true,
	}

	f.cache.Set(update.MarketIndex, data)
	if f.store != nil {
		if err := f.store.PutOraclePrice(update.MarketIndex, data); err != nil {
			return err
		}
	}

	p, _ := new(big.Float).SetInt(price).Float64()
	metrics.OraclePrice.WithLabelValues(fmt.Sprintf("%d", update.MarketIndex)).Set(p)
	return nil
}
