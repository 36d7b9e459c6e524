package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pders01/bulletin/internal/auth"
	"github.com/pders01/bulletin/internal/config"
	"github.com/pders01/bulletin/internal/debuglog"
	"github.com/pders01/bulletin/internal/feed"
	"github.com/pders01/bulletin/internal/market"
	"github.com/pders01/bulletin/internal/media"
	"github.com/pders01/bulletin/internal/newsfeed"
	"github.com/pders01/bulletin/internal/storage"
	"github.com/pders01/bulletin/internal/tui"
	"github.com/pders01/bulletin/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var (
	configPath string
	dbPath     string
	logLevel   string
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "bulletin",
	Short: "Vietnamese news in your terminal",
	Long: `bulletin reads the news service's article history, searches it as you
type, and shows gold prices and exchange rates.

Run without a subcommand to open the reader.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if !quiet {
			tui.ShowBanner(Version)
		}

		source := feed.NewHTTPSource(env.cfg, env.fetcher, feed.NewParser())
		app := tui.NewApp(tui.Deps{
			Config:    env.cfg,
			Provider:  newsfeed.NewFromConfig(env.cfg, source),
			Bookmarks: env.store,
			Session:   env.session,
			Board:     market.NewBoard(market.NewClient(env.cfg, env.fetcher)),
			Opener:    media.NewLauncher(),
			Details:   source,
		})

		return tui.Run(app)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to database file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error, off (overrides config)")
	rootCmd.Flags().BoolVar(&quiet, "quiet", false, "Skip startup banner")

	rootCmd.AddCommand(versionCmd, configGenCmd, articlesCmd, marketCmd, loginCmd, registerCmd, logoutCmd, whoamiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env holds what every command needs: configuration, the HTTP client, the
// local database, and the restored login.
type env struct {
	cfg     *config.Config
	fetcher *feed.Fetcher
	store   *storage.Store
	session *auth.Session
}

func (e *env) Close() {
	if e.store != nil {
		e.store.Close()
	}
	debuglog.Close()
}

// loadConfig reads the config file and applies the command-line overrides.
func loadConfig() (*config.Config, error) {
	paths := validation.NewPermissivePathHandler()

	if configPath != "" {
		p, err := paths.GetSecureConfigPath(configPath)
		if err != nil {
			return nil, fmt.Errorf("config path: %w", err)
		}
		configPath = p
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := validation.ValidateAPI(cfg); err != nil {
		return nil, fmt.Errorf("invalid api configuration: %w", err)
	}
	return cfg, nil
}

func openEnv() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	paths := validation.NewPermissivePathHandler()

	// The log location only comes from the config file, so it stays inside
	// the app's own directories.
	logPath, err := validation.NewSecurePathHandler().GetSecureLogPath(cfg.Log.File)
	if err != nil {
		return nil, fmt.Errorf("log path: %w", err)
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), logPath); err != nil {
		return nil, err
	}

	path, err := paths.GetSecureDBPath(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}
	if _, err := paths.EnsureSecureDirectory(filepath.Dir(path)); err != nil {
		return nil, fmt.Errorf("database directory: %w", err)
	}
	store, err := storage.NewStore(path, cfg.Database.Timeout)
	if err != nil {
		return nil, err
	}

	fetcher := feed.NewFetcher(cfg)
	session, err := auth.NewSession(store, auth.NewClient(cfg, fetcher))
	if err != nil {
		store.Close()
		return nil, err
	}
	fetcher.SetTokenSource(session.Token)

	debuglog.WithFields(map[string]interface{}{
		"base_url":  cfg.API.BaseURL,
		"db":        path,
		"signed_in": session.LoggedIn(),
	}).Infof("starting bulletin %s", Version)

	return &env{cfg: cfg, fetcher: fetcher, store: store, session: session}, nil
}
