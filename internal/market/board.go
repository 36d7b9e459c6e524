package market

import (
	"context"
	"sync"
)

// BoardState is the market view's data. Each table carries its own error so
// one failing endpoint does not hide the other.
type BoardState struct {
	Gold     []GoldPrice
	Rates    []ExchangeRate
	GoldErr  string
	RatesErr string
	Loading  bool
	Loaded   bool
}

// Board loads both market tables and keeps failures as state.
type Board struct {
	client *Client

	mu    sync.RWMutex
	state BoardState
	gen   uint64
}

func NewBoard(client *Client) *Board {
	return &Board{client: client}
}

func (b *Board) State() BoardState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Load refreshes both tables. Only the newest concurrent Load publishes.
func (b *Board) Load(ctx context.Context) {
	b.mu.Lock()
	b.gen++
	g := b.gen
	b.state.Loading = true
	b.state.GoldErr = ""
	b.state.RatesErr = ""
	b.mu.Unlock()

	var next BoardState
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		gold, err := b.client.GoldPrices(ctx)
		next.Gold = gold
		if err != nil {
			next.GoldErr = err.Error()
		}
	}()
	go func() {
		defer wg.Done()
		rates, err := b.client.ExchangeRates(ctx)
		next.Rates = rates
		if err != nil {
			next.RatesErr = err.Error()
		}
	}()
	wg.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	if g != b.gen {
		return
	}
	next.Loaded = true
	b.state = next
}
