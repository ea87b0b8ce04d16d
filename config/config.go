package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StrategyConfig holds all tunable parameters shared by the strategies.
// Not every field is used by every strategy; Validate checks only what is
// meaningful for any of them and fails fast before trading starts.
type StrategyConfig struct {
	Symbol string `yaml:"symbol"`

	// Risk parameters
	CashAtRisk       float64 `yaml:"cash_at_risk"`         // fraction of cash committed per position
	TakeProfitPct    float64 `yaml:"take_profit"`          // e.g. 0.3 = 30 % above entry
	StopLossPct      float64 `yaml:"stop_loss"`            // e.g. 0.1 = 10 % below entry
	VolatilityPeriod int     `yaml:"volatility_period"`    // trailing closes for the estimator; 0 disables
	VolatilityThresh float64 `yaml:"volatility_threshold"` // risk gate; 0 disables
	VolatilityFactor float64 `yaml:"volatility_factor"`    // widens bracket distances with volatility

	// Sentiment strategy
	SentimentThreshold float64 `yaml:"sentiment_threshold"`
	DaysPriorForNews   int     `yaml:"days_prior"`
	NewsLimit          int     `yaml:"news_limit"`
	CacheDir           string  `yaml:"cache_dir"`

	// Momentum / price-action strategies
	MovingAveragePeriod int `yaml:"ma_period"`
	MAShortPeriod       int `yaml:"ma_short"`
	MALongPeriod        int `yaml:"ma_long"`

	// Fourier strategy
	FourierWindow     int `yaml:"fourier_window"`
	FourierComponents int `yaml:"fourier_components"`

	// Market maker
	SpreadPct     float64 `yaml:"spread"`
	OrderSizePct  float64 `yaml:"order_size"`
	ATRMultiplier float64 `yaml:"atr_multiplier"`

	// Scheduling
	SleepTime time.Duration `yaml:"sleeptime"`
}

// Default returns the parameter set the CLI starts from; individual flags
// override fields before Validate runs.
func Default() StrategyConfig {
	return StrategyConfig{
		CashAtRisk:          0.5,
		TakeProfitPct:       0.3,
		StopLossPct:         0.1,
		VolatilityPeriod:    7,
		VolatilityThresh:    0.01,
		VolatilityFactor:    0.1,
		SentimentThreshold:  0.9,
		DaysPriorForNews:    3,
		NewsLimit:           10,
		CacheDir:            "cache/news",
		MovingAveragePeriod: 20,
		MAShortPeriod:       20,
		MALongPeriod:        50,
		FourierWindow:       100,
		FourierComponents:   5,
		SpreadPct:           0.002,
		OrderSizePct:        0.05,
		ATRMultiplier:       1.5,
		SleepTime:           24 * time.Hour,
	}
}

// LoadFile overlays values from a YAML file onto cfg. A missing file is not
// an error; a malformed one is.
func LoadFile(path string, cfg *StrategyConfig) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks that all numeric fields are within sensible bounds.
// It returns the first encountered error, allowing the caller to surface a
// clear configuration problem before any trading starts.
func (c *StrategyConfig) Validate() error {
	if c.Symbol == "" {
		return errors.New("symbol must not be empty")
	}
	if c.CashAtRisk <= 0 || c.CashAtRisk > 1 {
		return fmt.Errorf("cash_at_risk (%f) must be >0 and <=1", c.CashAtRisk)
	}
	if c.TakeProfitPct < 0 || c.TakeProfitPct > 5 {
		return fmt.Errorf("take_profit (%f) out of realistic range", c.TakeProfitPct)
	}
	if c.StopLossPct < 0 || c.StopLossPct >= 1 {
		return fmt.Errorf("stop_loss (%f) must be >=0 and <1", c.StopLossPct)
	}
	if c.SentimentThreshold <= 0 || c.SentimentThreshold >= 1 {
		return fmt.Errorf("sentiment_threshold (%f) must be in (0,1)", c.SentimentThreshold)
	}
	if c.DaysPriorForNews <= 0 {
		return errors.New("days_prior must be positive")
	}
	if c.NewsLimit <= 0 {
		return errors.New("news_limit must be positive")
	}
	if c.VolatilityPeriod < 0 {
		return errors.New("volatility_period cannot be negative")
	}
	if c.VolatilityThresh < 0 {
		return errors.New("volatility_threshold cannot be negative")
	}
	if c.VolatilityFactor < 0 {
		return errors.New("volatility_factor cannot be negative")
	}
	if c.MovingAveragePeriod <= 1 {
		return errors.New("ma_period must be at least 2")
	}
	if c.MAShortPeriod <= 0 || c.MALongPeriod <= 0 {
		return errors.New("moving average periods must be positive")
	}
	if c.MAShortPeriod >= c.MALongPeriod {
		return fmt.Errorf("ma_short (%d) must be shorter than ma_long (%d)", c.MAShortPeriod, c.MALongPeriod)
	}
	if c.FourierWindow < 8 {
		return errors.New("fourier_window must be at least 8")
	}
	if c.FourierComponents <= 0 || c.FourierComponents >= c.FourierWindow/2 {
		return fmt.Errorf("fourier_components (%d) must be in (0, fourier_window/2)", c.FourierComponents)
	}
	if c.SpreadPct <= 0 || c.SpreadPct >= 1 {
		return fmt.Errorf("spread (%f) must be in (0,1)", c.SpreadPct)
	}
	if c.OrderSizePct <= 0 || c.OrderSizePct > 1 {
		return fmt.Errorf("order_size (%f) must be in (0,1]", c.OrderSizePct)
	}
	if c.SleepTime <= 0 {
		return errors.New("sleeptime must be positive")
	}
	return nil
}

// Bracket multipliers derived from the take-profit / stop-loss thresholds.
// A buy bracket exits above entry on profit and below on loss; a sell
// bracket mirrors both.
func (c *StrategyConfig) BuyTakeProfitMult() float64  { return 1 + c.TakeProfitPct }
func (c *StrategyConfig) BuyStopLossMult() float64    { return 1 - c.StopLossPct }
func (c *StrategyConfig) SellTakeProfitMult() float64 { return 1 - c.TakeProfitPct }
func (c *StrategyConfig) SellStopLossMult() float64   { return 1 + c.StopLossPct }
