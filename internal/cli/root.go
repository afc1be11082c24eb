package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/stokai/internal/api"
	"github.com/example/stokai/internal/auth"
	"github.com/example/stokai/internal/cart"
	"github.com/example/stokai/internal/config"
	"github.com/example/stokai/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "storectl",
	Short: "Storefront client for the Stokai commerce backend",
	Long: `storectl drives the storefront client from the terminal: phone-number
login with one-time passcodes, profile management, and a shopping cart
mirrored from the backend. Session and cart state persist between runs.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// env bundles the wired-up client stores for a command invocation.
type env struct {
	cfg     *config.Config
	session *auth.Store
	cart    *cart.Store
}

// newEnv wires the transport, stores, and persisted state the way the
// application startup does, including the forced-logout hook on 401.
func newEnv() (*env, error) {
	cfg := config.Load()

	st, err := storage.New(cfg.StateDir)
	if err != nil {
		return nil, err
	}

	client, err := api.New(cfg.APIBaseURL, cfg.HTTPTimeout, st)
	if err != nil {
		return nil, err
	}

	session := auth.NewStore(auth.NewService(client), st)
	client.SetUnauthorizedHook(session.ForceLogout)

	cartStore := cart.NewStore(cart.NewService(client), st)

	session.Initialize()
	cartStore.Initialize()

	return &env{cfg: cfg, session: session, cart: cartStore}, nil
}
