package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/pders01/bulletin/internal/config"
	"github.com/pders01/bulletin/internal/debuglog"
	"github.com/pders01/bulletin/internal/feed"
)

// Client reads the gold price and exchange rate endpoints.
type Client struct {
	fetcher  *feed.Fetcher
	goldURL  string
	ratesURL string
}

func NewClient(cfg *config.Config, fetcher *feed.Fetcher) *Client {
	return &Client{
		fetcher:  fetcher,
		goldURL:  cfg.API.Endpoint(cfg.API.GoldPrices),
		ratesURL: cfg.API.Endpoint(cfg.API.ExchangeRates),
	}
}

func (c *Client) GoldPrices(ctx context.Context) ([]GoldPrice, error) {
	var rows []rawGold
	if err := c.getList(ctx, c.goldURL, &rows); err != nil {
		return nil, fmt.Errorf("loading gold prices: %w", err)
	}
	prices := make([]GoldPrice, len(rows))
	for i, row := range rows {
		prices[i] = row.toGoldPrice(i)
	}
	return prices, nil
}

func (c *Client) ExchangeRates(ctx context.Context) ([]ExchangeRate, error) {
	var rows []rawRate
	if err := c.getList(ctx, c.ratesURL, &rows); err != nil {
		return nil, fmt.Errorf("loading exchange rates: %w", err)
	}
	rates := make([]ExchangeRate, 0, len(rows))
	for _, row := range rows {
		rates = append(rates, row.toExchangeRate())
	}
	return rates, nil
}

// getList decodes a bare array or an object wrapping one in data.
func (c *Client) getList(ctx context.Context, url string, out any) error {
	resp, err := c.fetcher.Get(ctx, url)
	if err != nil {
		return err
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) > 0 && body[0] == '{' {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(body, &envelope); err != nil {
			return fmt.Errorf("%w: %w", feed.ErrMalformedPayload, err)
		}
		body = bytes.TrimSpace(envelope.Data)
	}
	if len(body) == 0 || body[0] != '[' {
		return fmt.Errorf("%w: expected an array or {data: [...]}", feed.ErrMalformedPayload)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %w", feed.ErrMalformedPayload, err)
	}

	debuglog.WithFields(map[string]interface{}{"url": url}).Debugf("fetched market data")
	return nil
}
