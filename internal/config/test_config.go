package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	d := defaultConfig()
	return &Config{
		API: APIConfig{
			BaseURL:       "http://127.0.0.1:0/api",
			Articles:      "/scrape/history",
			ArticleDetail: "/scrape/history",
			Suggestions:   "/scrape/suggestions",
			Search:        "/scrape/search",
			GoldPrices:    "/gold-prices/current-gold-prices",
			ExchangeRates: "/exchange-rate/current-exchange-rate",
			Login:         "/users/login",
			Register:      "/users/register",
		},
		Feed: FeedConfig{
			HTTPTimeout:       5 * time.Second,
			UserAgent:         "bulletin-test/1.0",
			PageSize:          10,
			LoadMoreSettle:    0,
			RequestsPerSecond: 0, // unlimited
			Burst:             1,
		},
		Search: SearchConfig{
			Debounce:           300 * time.Millisecond,
			MinPrefix:          2,
			MaxSuggestions:     5,
			SuggestionCacheTTL: time.Minute,
		},
		Database: DatabaseConfig{
			Path:    ":memory:",
			Timeout: 1 * time.Second,
		},
		UI:     d.UI,
		Keys:   d.Keys,
		Topics: d.Topics,
		Log:    LogConfig{Level: "off"},
	}
}
