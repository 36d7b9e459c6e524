package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Search   SearchConfig   `mapstructure:"search"`
	Database DatabaseConfig `mapstructure:"database"`
	UI       UIConfig       `mapstructure:"ui"`
	Keys     KeyConfig      `mapstructure:"keys"`
	Topics   []TopicConfig  `mapstructure:"topics"`
	Log      LogConfig      `mapstructure:"log"`
}

// APIConfig describes the remote endpoints. Endpoint values are either absolute
// URLs or paths joined onto BaseURL.
type APIConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	Articles      string `mapstructure:"articles"`
	ArticleDetail string `mapstructure:"article_detail"`
	Suggestions   string `mapstructure:"suggestions"`
	Search        string `mapstructure:"search"`
	GoldPrices    string `mapstructure:"gold_prices"`
	ExchangeRates string `mapstructure:"exchange_rates"`
	Login         string `mapstructure:"login"`
	Register      string `mapstructure:"register"`
}

type FeedConfig struct {
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	PageSize          int           `mapstructure:"page_size"`
	LoadMoreSettle    time.Duration `mapstructure:"load_more_settle"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

type SearchConfig struct {
	Debounce           time.Duration `mapstructure:"debounce"`
	MinPrefix          int           `mapstructure:"min_prefix"`
	MaxSuggestions     int           `mapstructure:"max_suggestions"`
	RemoteSuggestions  bool          `mapstructure:"remote_suggestions"`
	RemoteSearch       bool          `mapstructure:"remote_search"`
	SuggestionCacheTTL time.Duration `mapstructure:"suggestion_cache_ttl"`
}

type DatabaseConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type UIConfig struct {
	Colors  UIColors      `mapstructure:"colors"`
	Article ArticleConfig `mapstructure:"article"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Background string `mapstructure:"background"`
	Surface    string `mapstructure:"surface"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
}

type ArticleConfig struct {
	MaxDescriptionLength int `mapstructure:"max_description_length"`
	WordWrapMaxWidth     int `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth     int `mapstructure:"word_wrap_min_width"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit      string `mapstructure:"quit"`
	Search    string `mapstructure:"search"`
	Home      string `mapstructure:"home"`
	Refresh   string `mapstructure:"refresh"`
	LoadMore  string `mapstructure:"load_more"`
	Bookmark  string `mapstructure:"bookmark"`
	Bookmarks string `mapstructure:"bookmarks"`
	Topics    string `mapstructure:"topics"`
	Videos    string `mapstructure:"videos"`
	Market    string `mapstructure:"market"`
	Login     string `mapstructure:"login"`
	Register  string `mapstructure:"register"`
	OpenMedia string `mapstructure:"open_media"`
	Back      string `mapstructure:"back"`
}

// TopicConfig groups articles whose title or content contains Query.
type TopicConfig struct {
	Name  string `mapstructure:"name"`
	Query string `mapstructure:"query"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	dbPath := filepath.Join(homeDir, ".bulletin", "bulletin.db")
	logPath := filepath.Join(homeDir, ".bulletin", "bulletin.log")

	return &Config{
		API: APIConfig{
			BaseURL:       "http://localhost:8383/api",
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
			HTTPTimeout:       30 * time.Second,
			UserAgent:         "bulletin/1.0 (https://github.com/pders01/bulletin)",
			PageSize:          10,
			LoadMoreSettle:    300 * time.Millisecond,
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Search: SearchConfig{
			Debounce:           300 * time.Millisecond,
			MinPrefix:          2,
			MaxSuggestions:     5,
			RemoteSuggestions:  false,
			RemoteSearch:       false,
			SuggestionCacheTTL: 2 * time.Minute,
		},
		Database: DatabaseConfig{
			Path:    dbPath,
			Timeout: 1 * time.Second,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#FF6B6B",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Background: "#1A1A2E",
				Surface:    "#16213E",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
			},
			Article: ArticleConfig{
				MaxDescriptionLength: 150,
				WordWrapMaxWidth:     120,
				WordWrapMinWidth:     40,
			},
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:      "q",
				Search:    "s",
				Home:      "h",
				Refresh:   "r",
				LoadMore:  "l",
				Bookmark:  "b",
				Bookmarks: "k",
				Topics:    "t",
				Videos:    "v",
				Market:    "g",
				Login:     "u",
				Register:  "n",
				OpenMedia: "o",
				Back:      "esc",
			},
		},
		Topics: []TopicConfig{
			{Name: "Business", Query: "kinh doanh"},
			{Name: "Sports", Query: "thể thao"},
			{Name: "Football", Query: "bóng đá"},
			{Name: "Entertainment", Query: "giải trí"},
			{Name: "Health", Query: "sức khỏe"},
			{Name: "Technology", Query: "công nghệ"},
		},
		Log: LogConfig{
			Level: "off",
			File:  logPath,
		},
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "bulletin")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BULLETIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)
	applyFloors(&config)

	return &config, nil
}

// setDefaults registers every leaf key so partial tables in the file and
// BULLETIN_* env vars merge over the defaults key by key.
func setDefaults(v *viper.Viper, cfg *Config) {
	for key, val := range toSettings(cfg) {
		switch m := val.(type) {
		case map[string]interface{}:
			setNested(v, key, m)
		default:
			v.SetDefault(key, val)
		}
	}
}

func setNested(v *viper.Viper, prefix string, m map[string]interface{}) {
	for k, val := range m {
		key := prefix + "." + k
		if sub, ok := val.(map[string]interface{}); ok {
			setNested(v, key, sub)
			continue
		}
		v.SetDefault(key, val)
	}
}

// Endpoint resolves an endpoint value against the configured base URL.
func (c *APIConfig) Endpoint(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(c.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Log.File = expandPath(cfg.Log.File)
}

// applyFloors replaces non-positive tuning values with the defaults. A page
// size of zero would make the feed window empty forever, and a zero debounce
// would query on every keystroke.
func applyFloors(cfg *Config) {
	d := defaultConfig()
	if cfg.Feed.PageSize <= 0 {
		cfg.Feed.PageSize = d.Feed.PageSize
	}
	if cfg.Search.MinPrefix <= 0 {
		cfg.Search.MinPrefix = d.Search.MinPrefix
	}
	if cfg.Search.MaxSuggestions <= 0 {
		cfg.Search.MaxSuggestions = d.Search.MaxSuggestions
	}
	if cfg.Search.Debounce <= 0 {
		cfg.Search.Debounce = d.Search.Debounce
	}
	if cfg.Feed.Burst <= 0 {
		cfg.Feed.Burst = d.Feed.Burst
	}
}

func Save(config *Config, path string) error {
	v := viper.New()
	for key, val := range toSettings(config) {
		v.Set(key, val)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

// toSettings flattens cfg into snake_case maps keyed like the mapstructure
// tags. Structs would be written with Go field names, which mapstructure
// cannot match on the way back in.
func toSettings(cfg *Config) map[string]interface{} {
	// Durations as strings for TOML readability
	feedCfg := map[string]interface{}{
		"http_timeout":        cfg.Feed.HTTPTimeout.String(),
		"user_agent":          cfg.Feed.UserAgent,
		"page_size":           cfg.Feed.PageSize,
		"load_more_settle":    cfg.Feed.LoadMoreSettle.String(),
		"requests_per_second": cfg.Feed.RequestsPerSecond,
		"burst":               cfg.Feed.Burst,
	}

	searchCfg := map[string]interface{}{
		"debounce":             cfg.Search.Debounce.String(),
		"min_prefix":           cfg.Search.MinPrefix,
		"max_suggestions":      cfg.Search.MaxSuggestions,
		"remote_suggestions":   cfg.Search.RemoteSuggestions,
		"remote_search":        cfg.Search.RemoteSearch,
		"suggestion_cache_ttl": cfg.Search.SuggestionCacheTTL.String(),
	}

	dbCfg := map[string]interface{}{
		"path":    cfg.Database.Path,
		"timeout": cfg.Database.Timeout.String(),
	}

	topics := make([]map[string]interface{}, 0, len(cfg.Topics))
	for _, t := range cfg.Topics {
		topics = append(topics, map[string]interface{}{"name": t.Name, "query": t.Query})
	}

	apiCfg := map[string]interface{}{
		"base_url":       cfg.API.BaseURL,
		"articles":       cfg.API.Articles,
		"article_detail": cfg.API.ArticleDetail,
		"suggestions":    cfg.API.Suggestions,
		"search":         cfg.API.Search,
		"gold_prices":    cfg.API.GoldPrices,
		"exchange_rates": cfg.API.ExchangeRates,
		"login":          cfg.API.Login,
		"register":       cfg.API.Register,
	}

	c := cfg.UI.Colors
	uiCfg := map[string]interface{}{
		"colors": map[string]interface{}{
			"primary":    c.Primary,
			"secondary":  c.Secondary,
			"accent":     c.Accent,
			"background": c.Background,
			"surface":    c.Surface,
			"text":       c.Text,
			"muted":      c.Muted,
			"error":      c.Error,
			"success":    c.Success,
		},
		"article": map[string]interface{}{
			"max_description_length": cfg.UI.Article.MaxDescriptionLength,
			"word_wrap_max_width":    cfg.UI.Article.WordWrapMaxWidth,
			"word_wrap_min_width":    cfg.UI.Article.WordWrapMinWidth,
		},
	}

	b := cfg.Keys.Bindings
	keysCfg := map[string]interface{}{
		"modifier": cfg.Keys.Modifier,
		"bindings": map[string]interface{}{
			"quit":       b.Quit,
			"search":     b.Search,
			"home":       b.Home,
			"refresh":    b.Refresh,
			"load_more":  b.LoadMore,
			"bookmark":   b.Bookmark,
			"bookmarks":  b.Bookmarks,
			"topics":     b.Topics,
			"videos":     b.Videos,
			"market":     b.Market,
			"login":      b.Login,
			"register":   b.Register,
			"open_media": b.OpenMedia,
			"back":       b.Back,
		},
	}

	logCfg := map[string]interface{}{
		"level": cfg.Log.Level,
		"file":  cfg.Log.File,
	}

	return map[string]interface{}{
		"api":      apiCfg,
		"feed":     feedCfg,
		"search":   searchCfg,
		"database": dbCfg,
		"ui":       uiCfg,
		"keys":     keysCfg,
		"topics":   topics,
		"log":      logCfg,
	}
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
