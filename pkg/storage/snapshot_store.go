// Package storage persists the keeper's view of on-chain state between
// scans: market snapshots, open orders per market, and the latest oracle
// observation. Pebble-backed, JSON-encoded. The store is a cache, not a
// source of truth; the chain is.
package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vperp/vperp/pkg/types"
)

// StoredOrder pairs an order with the account that owns it.
type StoredOrder struct {
	Authority common.Address `json:"authority"`
	Order     *types.Order   `json:"order"`
}

type SnapshotStore struct {
	db *pebble.DB
}

func NewSnapshotStore(path string) (*SnapshotStore, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &SnapshotStore{db: db}, nil
}

func (s *SnapshotStore) Close() error { return s.db.Close() }

// keys: mkt:<u16>, orc:<u16>, ord:<u16>:<20-byte addr>:<u32 order id>
func marketKey(index uint16) []byte {
	k := []byte("mkt:")
	return binary.BigEndian.AppendUint16(k, index)
}

func oracleKey(index uint16) []byte {
	k := []byte("orc:")
	return binary.BigEndian.AppendUint16(k, index)
}

func orderPrefix(index uint16) []byte {
	k := []byte("ord:")
	return binary.BigEndian.AppendUint16(k, index)
}

func orderKey(index uint16, authority common.Address, orderID uint32) []byte {
	k := orderPrefix(index)
	k = append(k, authority.Bytes()...)
	return binary.BigEndian.AppendUint32(k, orderID)
}

func keyUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

func (s *SnapshotStore) put(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.db.Set(key, data, pebble.NoSync); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *SnapshotStore) get(key []byte, v any) (bool, error) {
	data, closer, err := s.db.Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return false, nil
		}
		return false, fmt.Errorf("read snapshot: %w", err)
	}
	defer closer.Close()
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode snapshot: %w", err)
	}
	return true, nil
}

// PutMarket stores the latest snapshot of a perp market.
func (s *SnapshotStore) PutMarket(m *types.PerpMarket) error {
	return s.put(marketKey(m.MarketIndex), m)
}

func (s *SnapshotStore) GetMarket(index uint16) (*types.PerpMarket, bool, error) {
	var m types.PerpMarket
	ok, err := s.get(marketKey(index), &m)
	if !ok || err != nil {
		return nil, false, err
	}
	return &m, true, nil
}

// ListMarkets returns all stored market snapshots ordered by market index.
func (s *SnapshotStore) ListMarkets() ([]*types.PerpMarket, error) {
	prefix := []byte("mkt:")
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("iterate markets: %w", err)
	}
	defer iter.Close()

	var out []*types.PerpMarket
	for iter.First(); iter.Valid(); iter.Next() {
		var m types.PerpMarket
		if err := json.Unmarshal(iter.Value(), &m); err != nil {
			return nil, fmt.Errorf("decode market: %w", err)
		}
		out = append(out, &m)
	}
	return out, nil
}

// PutOraclePrice stores the latest oracle observation for a market.
func (s *SnapshotStore) PutOraclePrice(index uint16, data *types.OraclePriceData) error {
	return s.put(oracleKey(index), data)
}

func (s *SnapshotStore) GetOraclePrice(index uint16) (*types.OraclePriceData, bool, error) {
	var d types.OraclePriceData
	ok, err := s.get(oracleKey(index), &d)
	if !ok || err != nil {
		return nil, false, err
	}
	return &d, true, nil
}

// PutOrder upserts one user order under its market.
func (s *SnapshotStore) PutOrder(authority common.Address, order *types.Order) error {
	return s.put(orderKey(order.MarketIndex, authority, order.OrderID), StoredOrder{
		Authority: authority,
		Order:     order,
	})
}

// DeleteOrder drops an order from the cache (filled, canceled, or expired).
func (s *SnapshotStore) DeleteOrder(index uint16, authority common.Address, orderID uint32) error {
	if err := s.db.Delete(orderKey(index, authority, orderID), pebble.NoSync); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return nil
}

// ListOrders returns all cached orders for a market, ordered by authority
// then order id.
func (s *SnapshotStore) ListOrders(index uint16) ([]StoredOrder, error) {
	prefix := orderPrefix(index)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: keyUpperBound(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	defer iter.Close()

	var out []StoredOrder
	for iter.First(); iter.Valid(); iter.Next() {
		var so StoredOrder
		if err := json.Unmarshal(iter.Value(), &so); err != nil {
			return nil, fmt.Errorf("decode order: %w", err)
		}
		out = append(out, so)
	}
	return out, nil
}
