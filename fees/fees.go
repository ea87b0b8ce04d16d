// Package fees maps broker fee-model names to buy/sell fee rules. The
// tables are consumed only by the backtest fill path.
package fees

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/nmoreau/tradecore/types"
)

// ErrUnknownModel is returned for a fee-model name with no table entry.
// Raised at construction time, fatal at startup.
var ErrUnknownModel = errors.New("fees: unknown fee model")

// Fee is one rule: a flat amount per order plus a fraction of notional.
type Fee struct {
	Flat    decimal.Decimal
	Percent decimal.Decimal
}

// Model bundles the rules applied on each side of a trade.
type Model struct {
	Name string
	Buy  []Fee
	Sell []Fee
}

// Charge computes the total fee for a fill of qty units at price.
func (m Model) Charge(side types.Side, qty, price float64) float64 {
	rules := m.Buy
	if side == types.Sell {
		rules = m.Sell
	}
	notional := decimal.NewFromFloat(price).Mul(decimal.NewFromFloat(qty))
	total := decimal.Zero
	for _, f := range rules {
		total = total.Add(f.Flat).Add(notional.Mul(f.Percent))
	}
	out, _ := total.Float64()
	return out
}

func pct(v string) Fee {
	return Fee{Flat: decimal.Zero, Percent: decimal.RequireFromString(v)}
}

func flat(v string) Fee {
	return Fee{Flat: decimal.RequireFromString(v), Percent: decimal.Zero}
}

// models holds the per-broker tables. Percentages are fractions of notional.
var models = map[string]Model{
	"interactive-brokers": {
		Name: "interactive-brokers",
		Buy:  []Fee{flat("0"), pct("0.0005")},
		Sell: []Fee{flat("0"), pct("0.0005")},
	},
	"alpaca": {
		Name: "alpaca",
		Buy:  []Fee{flat("0"), pct("0")},
		Sell: []Fee{flat("0"), pct("0")},
	},
	"binance": {
		Name: "binance",
		Buy:  []Fee{flat("0"), pct("0.001")},
		Sell: []Fee{flat("0"), pct("0.001")},
	},
	"td-ameritrade": {
		Name: "td-ameritrade",
		Buy:  []Fee{flat("0"), pct("0")},
		Sell: []Fee{flat("0"), pct("0")},
	},
	"kraken": {
		Name: "kraken",
		Buy:  []Fee{flat("0"), pct("0.0016")},
		Sell: []Fee{flat("0"), pct("0.0026")},
	},
}

// Lookup resolves a named fee model.
func Lookup(name string) (Model, error) {
	m, ok := models[name]
	if !ok {
		return Model{}, fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	return m, nil
}

// Free is the zero-fee model used when no --fees flag is given.
func Free() Model {
	return Model{Name: "free"}
}

// Names lists the available model names; useful for CLI help.
func Names() []string {
	out := make([]string, 0, len(models))
	for name := range models {
		out = append(out, name)
	}
	return out
}
