// portal — консольный клиент портала: те же ресурсные API и протокол обновления
// токенов, что у шлюза, с парой токенов в ~/.portal/credentials.json.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/pharma-portal/internal/api"
	"github.com/pribylovaa/pharma-portal/internal/apiclient"
	"github.com/pribylovaa/pharma-portal/internal/config"
	"github.com/pribylovaa/pharma-portal/internal/credentials"
	"github.com/pribylovaa/pharma-portal/internal/service"
)

var (
	configPath string
	baseURL    string
	credsPath  string
	verbose    bool
)

// app — зависимости команд, собираются в PersistentPreRunE.
type app struct {
	out        io.Writer
	store      credentials.Store
	api        *api.API
	session    *service.Session
	storefront *service.Storefront
}

var cli = &app{out: os.Stdout}

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Command-line client for the pharma portal backend",
	Long: `Command-line client for the pharma portal backend.

Tokens are kept in a local file and refreshed transparently on 401.
When the refresh fails the file is cleared and "portal login" is required again.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return cli.setup()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "backend base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&credsPath, "credentials", "", "credentials file (default ~/.portal/credentials.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, refreshCmd)
	rootCmd.AddCommand(productsCmd, cartCmd, checkoutCmd, bookmarksCmd)
	rootCmd.AddCommand(ordersCmd, programsCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if apiclient.IsReauthRequired(err) {
			fmt.Fprintln(os.Stderr, "session expired: run \"portal login\"")
		}
		os.Exit(1)
	}
}

func (a *app) setup() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	opts, err := cfg.API.Options()
	if err != nil {
		return err
	}
	// Файл хранит пару сам: только bearer-header, отказ — ошибкой.
	opts.CredentialTransport = apiclient.TransportBearer
	opts.OnUnauthorized = apiclient.PolicyThrow
	opts.Logger = log

	path := credsPath
	if path == "" {
		if path, err = credentials.DefaultFilePath(); err != nil {
			return err
		}
	}
	a.store = credentials.NewFileStore(path, cfg.Session.TTL)

	c, err := apiclient.New(opts, a.store)
	if err != nil {
		return err
	}
	if a.api, err = api.New(c); err != nil {
		return err
	}

	a.session = service.NewSession(a.api.Auth, a.store)
	a.storefront = service.NewStorefront(a.api.Products)

	return nil
}

// print выводит v как JSON с отступами.
func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
