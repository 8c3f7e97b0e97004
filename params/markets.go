package params

import (
	"fmt"
	"math/big"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vperp/vperp/pkg/types"
)

// MarketConfig is one entry in the yaml market registry. Fixed-point values
// are decimal strings so the registry survives precisions beyond int64.
type MarketConfig struct {
	Symbol      string `yaml:"symbol"`
	MarketIndex uint16 `yaml:"market_index"`

	SqrtK         string `yaml:"sqrt_k"`
	PegMultiplier string `yaml:"peg_multiplier"`

	MinBaseAssetReserve string `yaml:"min_base_asset_reserve"`
	MaxBaseAssetReserve string `yaml:"max_base_asset_reserve"`

	OrderStepSize string `yaml:"order_step_size"`
	OrderTickSize string `yaml:"order_tick_size"`
	MinOrderSize  string `yaml:"min_order_size"`

	MaxFillReserveFraction uint16 `yaml:"max_fill_reserve_fraction"`
	BaseSpread             uint32 `yaml:"base_spread"`
	MaxSpread              uint32 `yaml:"max_spread"`
	CurveUpdateIntensity   uint8  `yaml:"curve_update_intensity"`
}

type marketsFile struct {
	Markets []MarketConfig `yaml:"markets"`
}

func parseAmount(field, raw string) (*big.Int, error) {
	if raw == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, fmt.Errorf("%s: invalid integer %q", field, raw)
	}
	return v, nil
}

// ToMarket materializes the curve at its resting point: balanced reserves
// equal to sqrt(k), no net inventory, no accumulated fees.
func (c *MarketConfig) ToMarket() (*types.PerpMarket, error) {
	sqrtK, err := parseAmount("sqrt_k", c.SqrtK)
	if err != nil {
		return nil, err
	}
	if sqrtK.Sign() <= 0 {
		return nil, fmt.Errorf("market %s: sqrt_k must be positive", c.Symbol)
	}
	peg, err := parseAmount("peg_multiplier", c.PegMultiplier)
	if err != nil {
		return nil, err
	}
	minBar, err := parseAmount("min_base_asset_reserve", c.MinBaseAssetReserve)
	if err != nil {
		return nil, err
	}
	maxBar, err := parseAmount("max_base_asset_reserve", c.MaxBaseAssetReserve)
	if err != nil {
		return nil, err
	}
	stepSize, err := parseAmount("order_step_size", c.OrderStepSize)
	if err != nil {
		return nil, err
	}
	tickSize, err := parseAmount("order_tick_size", c.OrderTickSize)
	if err != nil {
		return nil, err
	}
	minOrder, err := parseAmount("min_order_size", c.MinOrderSize)
	if err != nil {
		return nil, err
	}

	return &types.PerpMarket{
		MarketIndex: c.MarketIndex,
		Symbol:      c.Symbol,
		Amm: &types.AMM{
			BaseAssetReserve:           new(big.Int).Set(sqrtK),
			QuoteAssetReserve:          new(big.Int).Set(sqrtK),
			SqrtK:                      sqrtK,
			PegMultiplier:              peg,
			TerminalQuoteAssetReserve:  new(big.Int).Set(sqrtK),
			BaseAssetAmountWithAmm:     new(big.Int),
			MinBaseAssetReserve:        minBar,
			MaxBaseAssetReserve:        maxBar,
			OrderStepSize:              stepSize,
			OrderTickSize:              tickSize,
			MinOrderSize:               minOrder,
			MaxFillReserveFraction:     c.MaxFillReserveFraction,
			BaseSpread:                 c.BaseSpread,
			MaxSpread:                  c.MaxSpread,
			CurveUpdateIntensity:       c.CurveUpdateIntensity,
			TotalFeeMinusDistributions: new(big.Int),
			TotalExchangeFee:           new(big.Int),
		},
	}, nil
}

// LoadMarkets reads and materializes the yaml market registry.
func LoadMarkets(path string) ([]*types.PerpMarket, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markets file: %w", err)
	}

	var file marketsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse markets file: %w", err)
	}
	if len(file.Markets) == 0 {
		return nil, fmt.Errorf("markets file %s: no markets defined", path)
	}

	seen := make(map[uint16]string, len(file.Markets))
	markets := make([]*types.PerpMarket, 0, len(file.Markets))
	for i := range file.Markets {
		c := &file.Markets[i]
		if prev, dup := seen[c.MarketIndex]; dup {
			return nil, fmt.Errorf("market index %d used by both %s and %s", c.MarketIndex, prev, c.Symbol)
		}
		seen[c.MarketIndex] = c.Symbol

		m, err := c.ToMarket()
		if err != nil {
			return nil, err
		}
		markets = append(markets, m)
	}
	return markets, nil
}
