package testutils

import (
	"sync"
	"time"

	"github.com/nmoreau/tradecore/types"
)

// MockBroker implements the Broker interface with scripted market data and
// records every call for assertions.
type MockBroker struct {
	mu sync.Mutex

	CashBalance float64
	Price       float64
	Bars        []types.Bar

	// Optional error injection, one per data dependency.
	CashErr  error
	PriceErr error
	BarsErr  error

	orders       []types.Order
	sellAllCalls int
	cancelCalls  []int // order count at the time of each cancel
}

// NewMockBroker scripts the three data dependencies of one iteration.
func NewMockBroker(cash, price float64, bars []types.Bar) *MockBroker {
	return &MockBroker{CashBalance: cash, Price: price, Bars: bars}
}

func (m *MockBroker) Cash() (float64, error) {
	if m.CashErr != nil {
		return 0, m.CashErr
	}
	return m.CashBalance, nil
}

func (m *MockBroker) LastPrice(symbol string) (float64, error) {
	if m.PriceErr != nil {
		return 0, m.PriceErr
	}
	return m.Price, nil
}

func (m *MockBroker) HistoricalPrices(symbol string, length int, granularity string) ([]types.Bar, error) {
	if m.BarsErr != nil {
		return nil, m.BarsErr
	}
	bars := m.Bars
	if length > 0 && len(bars) > length {
		bars = bars[len(bars)-length:]
	}
	out := make([]types.Bar, len(bars))
	copy(out, bars)
	return out, nil
}

func (m *MockBroker) SubmitOrder(o types.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, o)
	return nil
}

func (m *MockBroker) SellAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sellAllCalls++
	return nil
}

func (m *MockBroker) CancelOpenOrders() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelCalls = append(m.cancelCalls, len(m.orders))
	return nil
}

// Orders returns a copy of all submitted orders.
func (m *MockBroker) Orders() []types.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.Order, len(m.orders))
	copy(out, m.orders)
	return out
}

// SellAllCalls reports how many times SellAll was invoked.
func (m *MockBroker) SellAllCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sellAllCalls
}

// CancelCalls reports how many times CancelOpenOrders was invoked.
func (m *MockBroker) CancelCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.cancelCalls)
}

// FixedClock returns the same instant on every call.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// ConstantBars builds a bar series with every close equal to price.
func ConstantBars(n int, price float64) []types.Bar {
	bars := make([]types.Bar, n)
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = types.Bar{
			Time:   t.AddDate(0, 0, i),
			Open:   price,
			High:   price,
			Low:    price,
			Close:  price,
			Volume: 1000,
		}
	}
	return bars
}

// RampBars builds a bar series whose closes rise by step per bar.
func RampBars(n int, start, step float64) []types.Bar {
	bars := make([]types.Bar, n)
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		price := start + float64(i)*step
		bars[i] = types.Bar{
			Time:   t.AddDate(0, 0, i),
			Open:   price,
			High:   price + 0.5,
			Low:    price - 0.5,
			Close:  price,
			Volume: 1000,
		}
	}
	return bars
}
