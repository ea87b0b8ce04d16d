package risk

import "github.com/nmoreau/tradecore/types"

// BuildBracket assembles a bracket order around a reference price.
//
// For a buy the take-profit leg sits at ref*(tpMult + vol*volFactor) and the
// stop-loss at ref*(slMult - vol*volFactor); a sell mirrors both, so rising
// volatility always widens the bracket in the direction of the trade.
//
// A zero tpMult or slMult disables that leg. Multipliers are taken as given:
// nothing here checks that the take-profit is more favorable than the stop,
// so a misconfigured pair produces an inverted bracket.
func BuildBracket(symbol string, side types.Side, qty, refPrice, tpMult, slMult, volatility, volFactor float64) types.Order {
	o := types.Order{
		Symbol: symbol,
		Side:   side,
		Qty:    qty,
		Type:   types.Bracket,
	}
	adj := volatility * volFactor
	if side == types.Buy {
		if tpMult != 0 {
			o.TakeProfit = refPrice * (tpMult + adj)
		}
		if slMult != 0 {
			o.StopLoss = refPrice * (slMult - adj)
		}
	} else {
		if tpMult != 0 {
			o.TakeProfit = refPrice * (tpMult - adj)
		}
		if slMult != 0 {
			o.StopLoss = refPrice * (slMult + adj)
		}
	}
	return o
}
