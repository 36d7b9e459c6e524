package market

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pders01/bulletin/internal/config"
	"github.com/pders01/bulletin/internal/feed"
)

func newTestClient(t *testing.T, gold, rates string, goldStatus int) *Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/gold-prices/current-gold-prices":
			w.WriteHeader(goldStatus)
			_, _ = w.Write([]byte(gold))
		case "/api/exchange-rate/current-exchange-rate":
			_, _ = w.Write([]byte(rates))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	cfg := config.TestConfig()
	cfg.API.BaseURL = server.URL + "/api"
	return NewClient(cfg, feed.NewFetcher(cfg))
}

func TestClient_GoldPrices(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bare array", `[{"goldName":"Vàng miếng SJC","purchasePrice":118500,"sellPrice":"120.500","region":"Hà Nội"},{"type":"Nhẫn 9999","purchasePrice":null}]`},
		{"data envelope", `{"data":[{"goldName":"Vàng miếng SJC","purchasePrice":"118500","sellPrice":120500,"branch":"Hà Nội"},{"type":"Nhẫn 9999"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.body, `[]`, http.StatusOK)

			prices, err := client.GoldPrices(context.Background())
			require.NoError(t, err)
			require.Len(t, prices, 2)

			assert.Equal(t, "Vàng miếng SJC", prices[0].Name)
			require.NotNil(t, prices[0].Purchase)
			assert.Equal(t, 118500.0, *prices[0].Purchase)
			require.NotNil(t, prices[0].Sell)
			assert.Equal(t, 120500.0, *prices[0].Sell)
			assert.Equal(t, "Hà Nội", prices[0].Region)

			assert.Equal(t, "Nhẫn 9999", prices[1].Name)
			assert.Nil(t, prices[1].Purchase)
			assert.Equal(t, DefaultRegion, prices[1].Region)
		})
	}
}

func TestClient_GoldPricesUnnamedRow(t *testing.T) {
	client := newTestClient(t, `[{"purchasePrice":1},{"purchasePrice":2}]`, `[]`, http.StatusOK)
	prices, err := client.GoldPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Loại 2", prices[1].Name)
}

func TestClient_ExchangeRates(t *testing.T) {
	client := newTestClient(t, `[]`, `[{"currencyCode":"usd","buyRate":25950.5,"sellRate":26310},{"currencyCode":"XYZ"}]`, http.StatusOK)

	rates, err := client.ExchangeRates(context.Background())
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, "USD", rates[0].CurrencyCode)
	assert.Equal(t, 25950.5, *rates[0].Buy)
	assert.Nil(t, rates[1].Sell)
}

func TestClient_MalformedPayload(t *testing.T) {
	for _, body := range []string{`{"items":[]}`, `"nope"`, `{"data":{"a":1}}`, `<html></html>`} {
		client := newTestClient(t, body, `[]`, http.StatusOK)
		_, err := client.GoldPrices(context.Background())
		assert.True(t, errors.Is(err, feed.ErrMalformedPayload), "body %s: %v", body, err)
	}
}

func TestClient_HTTPError(t *testing.T) {
	client := newTestClient(t, `{"message":"down"}`, `[]`, http.StatusBadGateway)
	_, err := client.GoldPrices(context.Background())
	assert.True(t, errors.Is(err, feed.ErrFetchFailure))
}

func TestBoard_Load(t *testing.T) {
	client := newTestClient(t, `{"message":"down"}`, `[{"currencyCode":"EUR","buyRate":1,"sellRate":2}]`, http.StatusInternalServerError)
	board := NewBoard(client)

	assert.False(t, board.State().Loaded)
	board.Load(context.Background())

	state := board.State()
	assert.True(t, state.Loaded)
	assert.False(t, state.Loading)
	assert.NotEmpty(t, state.GoldErr)
	assert.Empty(t, state.Gold)
	assert.Empty(t, state.RatesErr)
	assert.Len(t, state.Rates, 1)
}

func TestFormatAmount(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	tests := []struct {
		in   *float64
		want string
	}{
		{nil, "N/A"},
		{f(0), "0"},
		{f(999), "999"},
		{f(1000), "1.000"},
		{f(120500), "120.500"},
		{f(1234567), "1.234.567"},
		{f(25950.5), "25.950,5"},
		{f(25950.25), "25.950,25"},
		{f(-4200), "-4.200"},
		{f(9.999), "10"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.in))
	}
}

func TestCurrencyName(t *testing.T) {
	assert.Equal(t, "Đô la Mỹ", CurrencyName("usd"))
	assert.Equal(t, "XYZ", CurrencyName("XYZ"))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "ring", Kind("Nhẫn tròn 9999"))
	assert.Equal(t, "bar", Kind("Vàng miếng"))
	assert.Equal(t, "sjc", Kind("SJC 1L"))
	assert.Equal(t, "jewelry", Kind("Nữ trang 18K"))
	assert.Equal(t, "other", Kind("Bạc"))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"118500", 118500, true},
		{"78.5", 78.5, true},
		{"7.850.000", 7850000, true},
		{"25.450,5", 25450.5, true},
		{"  ", 0, false},
		{"liên hệ", 0, false},
	}

	for _, tt := range tests {
		got := parseAmount(tt.in)
		if !tt.ok {
			assert.Nil(t, got, tt.in)
			continue
		}
		require.NotNil(t, got, tt.in)
		assert.Equal(t, tt.want, *got, tt.in)
	}
}
