package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/bulletin/internal/auth"
	"github.com/pders01/bulletin/internal/config"
	"github.com/pders01/bulletin/internal/feed"
	"github.com/pders01/bulletin/internal/market"
	"github.com/pders01/bulletin/internal/newsfeed"
	"github.com/pders01/bulletin/internal/storage"
	"github.com/pders01/bulletin/internal/validation"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bulletin %s\n", Version)
		fmt.Println("Vietnamese news reader")
		fmt.Println("github.com/pders01/bulletin")
	},
}

var configGenCmd = &cobra.Command{
	Use:   "generate-config",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := validation.NewPermissivePathHandler().GetSecureConfigPath(configPath)
		if err != nil {
			return fmt.Errorf("config path: %w", err)
		}
		if err := config.GenerateDefaultConfig(path); err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}
		fmt.Printf("Generated default configuration at: %s\n", path)
		return nil
	},
}

var (
	articlePages  int
	articleSearch string
)

var articlesCmd = &cobra.Command{
	Use:   "articles",
	Short: "Print the latest articles",
	Example: `  bulletin articles
  bulletin articles --page 3
  bulletin articles --search "giá vàng"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if articlePages < 1 {
			return fmt.Errorf("--page must be at least 1")
		}
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		source := feed.NewHTTPSource(env.cfg, env.fetcher, feed.NewParser())
		provider := newsfeed.NewFromConfig(env.cfg, source)
		defer provider.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		list, err := collectArticles(ctx, provider, articlePages, articleSearch)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			if strings.TrimSpace(articleSearch) != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "No results for %q\n", articleSearch)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "No articles yet")
			}
			return nil
		}
		return renderTable(cmd.OutOrStdout(), []string{"#", "Title", "Category", "Published"}, articleRows(list), -1)
	},
}

// collectArticles loads the feed and returns the first pages of it, or the
// matches for term when term is set.
func collectArticles(ctx context.Context, provider *newsfeed.Provider, pages int, term string) ([]*storage.Article, error) {
	provider.Load(ctx)
	state := provider.FeedState()
	if state.Err != "" {
		return nil, errors.New(state.Err)
	}

	if term = strings.TrimSpace(term); term != "" {
		provider.ExecuteSearch(ctx, term)
		if s := provider.SearchState(); s.Err != "" {
			return nil, errors.New(s.Err)
		}
		return provider.Visible(), nil
	}

	for page := 1; page < pages; page++ {
		if !provider.LoadMore() {
			break
		}
	}
	return provider.Visible(), nil
}

func articleRows(list []*storage.Article) [][]string {
	rows := make([][]string, len(list))
	for i, a := range list {
		published := "unknown"
		if a.DateTime != nil {
			published = a.DateTime.Local().Format("2006-01-02 15:04")
		}
		title := a.Title
		if a.IsVideo() {
			title = "▶ " + title
		}
		rows[i] = []string{strconv.Itoa(i + 1), title, a.Category, published}
	}
	return rows
}

var marketCmd = &cobra.Command{
	Use:       "market [gold|rates]",
	Short:     "Print gold prices and exchange rates",
	ValidArgs: []string{"gold", "rates"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		board := market.NewBoard(market.NewClient(env.cfg, env.fetcher))
		board.Load(ctx)

		which := ""
		if len(args) == 1 {
			which = args[0]
		}
		return printMarket(cmd, board.State(), which)
	},
}

func printMarket(cmd *cobra.Command, state market.BoardState, which string) error {
	out := cmd.OutOrStdout()
	var errs []error

	if which == "" || which == "gold" {
		if state.GoldErr != "" {
			errs = append(errs, fmt.Errorf("gold prices: %s", state.GoldErr))
		} else {
			fmt.Fprintln(out, "Gold prices (thousand VND per tael)")
			if err := renderTable(out, []string{"Type", "Region", "Buy", "Sell"}, goldRows(state.Gold), 2); err != nil {
				return err
			}
		}
	}

	if which == "" || which == "rates" {
		if which == "" {
			fmt.Fprintln(out)
		}
		if state.RatesErr != "" {
			errs = append(errs, fmt.Errorf("exchange rates: %s", state.RatesErr))
		} else {
			fmt.Fprintln(out, "Exchange rates (VND)")
			if err := renderTable(out, []string{"Code", "Currency", "Buy", "Sell"}, rateRows(state.Rates), 2); err != nil {
				return err
			}
		}
	}

	return errors.Join(errs...)
}

func goldRows(prices []market.GoldPrice) [][]string {
	rows := make([][]string, len(prices))
	for i, g := range prices {
		rows[i] = []string{g.Name, g.Region, market.FormatAmount(g.Purchase), market.FormatAmount(g.Sell)}
	}
	return rows
}

func rateRows(rates []market.ExchangeRate) [][]string {
	rows := make([][]string, len(rates))
	for i, r := range rates {
		rows[i] = []string{r.CurrencyCode, market.CurrencyName(r.CurrencyCode), market.FormatAmount(r.Buy), market.FormatAmount(r.Sell)}
	}
	return rows
}

var (
	authName     string
	authEmail    string
	authPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	Long: `Sign in with email and password. The password may also be given in the
BULLETIN_PASSWORD environment variable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, false)
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		return authenticate(cmd, true)
	},
}

func authenticate(cmd *cobra.Command, register bool) error {
	env, err := openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	password := authPassword
	if password == "" {
		password = os.Getenv("BULLETIN_PASSWORD")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var s *storage.Session
	if register {
		s, err = env.session.Register(ctx, authName, authEmail, password)
		if err != nil {
			return signInError(err, "registration failed")
		}
	} else {
		s, err = env.session.Login(ctx, authEmail, password)
		if err != nil {
			return signInError(err, "sign in failed")
		}
	}

	name := s.Name
	if name == "" {
		name = s.Subject
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", name)
	return nil
}

// signInError keeps local validation errors and swaps rejected requests for
// the server's explanation.
func signInError(err error, fallback string) error {
	if errors.Is(err, feed.ErrFetchFailure) {
		return errors.New(auth.Message(err, fallback))
	}
	return err
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		if !env.session.LoggedIn() {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
			return nil
		}
		if err := env.session.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		printSession(cmd, env.session.Current())
		return nil
	},
}

func printSession(cmd *cobra.Command, s *storage.Session) {
	out := cmd.OutOrStdout()
	if s == nil {
		fmt.Fprintln(out, "Not signed in")
		return
	}
	name := s.Name
	if name == "" {
		name = s.Subject
	}
	fmt.Fprintf(out, "Signed in as %s\n", name)
	if s.Role != "" {
		fmt.Fprintf(out, "Role: %s\n", s.Role)
	}
	if s.UserID != "" {
		fmt.Fprintf(out, "User: %s\n", s.UserID)
	}
}

func init() {
	articlesCmd.Flags().IntVar(&articlePages, "page", 1, "Show the feed through this page")
	articlesCmd.Flags().StringVar(&articleSearch, "search", "", "Show articles matching this text instead")

	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email")
		c.Flags().StringVar(&authPassword, "password", "", "Account password")
	}
	registerCmd.Flags().StringVar(&authName, "name", "", "Full name")
}
