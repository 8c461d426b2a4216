package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"shopfront/internal/api"
	"shopfront/internal/cart"
	"shopfront/internal/config"
	"shopfront/internal/credstore"
	"shopfront/internal/session"
	"shopfront/internal/util"
)

// Env holds the wired application services for one command invocation.
// Stores are constructed explicitly here and passed to commands; nothing is
// ambient global state.
type Env struct {
	Config  config.FileConfig
	Logger  *slog.Logger
	Client  *api.Client
	Session *session.Store
	Cart    *cart.Store
}

// NewEnv loads config and wires client, identity store, and cart store.
func NewEnv(opts *RootOptions) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	logger := util.InitLogger(level)

	var creds credstore.Store
	if cfg.RedisAddr != "" {
		creds = credstore.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, "")
	} else {
		creds, err = credstore.NewFileStore(cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
	}

	client := api.NewClient(cfg.APIBaseURL, api.WithTimeout(cfg.Timeout()))
	sess := session.NewStore(client, creds, logger)
	return &Env{
		Config:  cfg,
		Logger:  logger,
		Client:  client,
		Session: sess,
		Cart:    cart.NewStore(client, logger),
	}, nil
}

func (e *Env) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatPrice(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
