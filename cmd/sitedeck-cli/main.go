// Command sitedeck-cli manages a hosted site from the terminal, talking to
// the same API as the dashboard.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fruitsalade/sitedeck/internal/config"
	"github.com/fruitsalade/sitedeck/internal/logging"
	"github.com/fruitsalade/sitedeck/pkg/client"
)

var (
	apiBase  string
	apiKey   string
	username string
	password string
	timeout  time.Duration
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:           "sitedeck-cli",
	Short:         "Manage a hosted static site",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		return logging.Init(logging.Config{Level: level, Format: "console", OutputPath: "stderr"})
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&apiBase, "api-base", envOr("SITEDECK_API_BASE", config.DefaultAPIBase), "site API origin")
	pf.StringVar(&apiKey, "api-key", os.Getenv("SITEDECK_API_KEY"), "API key (or SITEDECK_API_KEY)")
	pf.StringVarP(&username, "user", "u", os.Getenv("SITEDECK_USER"), "username")
	pf.StringVarP(&password, "password", "p", os.Getenv("SITEDECK_PASSWORD"), "password")
	pf.DurationVar(&timeout, "timeout", 30*time.Second, "API request timeout")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log API calls to stderr")

	rootCmd.AddCommand(statusCmd, infoCmd, lsCmd, catCmd, putCmd, createCmd, rmCmd, hashPasswordCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	logging.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", describe(err))
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient() *client.Client {
	return client.New(client.Config{
		BaseURL: apiBase,
		Timeout: timeout,
		Logger:  logging.Named("client"),
	})
}

// session returns a client logged in with the flag credentials. The API
// keeps its session in cookies, so every invocation logs in again.
func session(ctx context.Context) (*client.Client, error) {
	c := newClient()
	creds := client.Credentials{APIKey: apiKey}
	if apiKey == "" {
		creds = client.Credentials{Username: username, Password: password}
	}
	if err := c.Authenticate(ctx, creds); err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	logging.Debug("authenticated", zap.Bool("api_key", creds.IsAPIKey()))
	return c, nil
}

// describe prefers the server's own explanation of a failure.
func describe(err error) string {
	if msg := client.ServerMessage(err); msg != "" {
		return msg
	}
	return err.Error()
}
