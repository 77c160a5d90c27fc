package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Levii22/planning-poker/internal/api"
	"github.com/Levii22/planning-poker/internal/factory"
	"github.com/Levii22/planning-poker/internal/services/room"
	"github.com/Levii22/planning-poker/internal/services/session"
)

const releaseVersion = "0.1.0"

// Config collects everything the server can be told from flags or
// POKER_* environment variables
type Config struct {
	host           string
	port           int
	maxRooms       int
	maxPlayers     int
	sessionTTL     time.Duration
	allowedOrigins []string
	logLevel       string
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.maxRooms < 1 {
		return fmt.Errorf("invalid max-rooms (must be positive): %d", c.maxRooms)
	}
	if c.maxPlayers < 2 {
		return fmt.Errorf("invalid max-players (a room needs at least 2 seats): %d", c.maxPlayers)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("POKER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "poker-server",
		Short:         "Real-time planning poker room server",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	roomDefaults := room.DefaultConfig()
	sessionDefaults := session.DefaultConfig()

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.host, "host", "b", "", "address to bind to, empty for all interfaces (env: POKER_HOST)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: POKER_PORT)")
	fs.IntVar(&cfg.maxRooms, "max-rooms", roomDefaults.MaxRooms, "cap on concurrently live rooms (env: POKER_MAX_ROOMS)")
	fs.IntVar(&cfg.maxPlayers, "max-players", roomDefaults.MaxPlayersPerRoom, "cap on players in a single room (env: POKER_MAX_PLAYERS)")
	fs.DurationVar(&cfg.sessionTTL, "session-ttl", sessionDefaults.TTL, "session token lifetime (env: POKER_SESSION_TTL)")
	fs.StringSliceVar(&cfg.allowedOrigins, "allowed-origins", nil, "origins accepted for WebSocket upgrades, empty accepts any (env: POKER_ALLOWED_ORIGINS)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "log level: debug, info, warn or error (env: POKER_LOG_LEVEL)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("poker-server v{{.Version}}\n")

	return cmd
}

func run(ctx context.Context, cfg *Config) error {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.logLevel),
	}))
	slog.SetDefault(logger)

	// Create application factory
	app, err := factory.New(factory.Config{
		RoomConfig: room.Config{
			MaxRooms:          cfg.maxRooms,
			MaxPlayersPerRoom: cfg.maxPlayers,
		},
		SessionConfig:  session.Config{TTL: cfg.sessionTTL},
		AllowedOrigins: cfg.allowedOrigins,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	// Create router
	router := api.NewRouter(api.RouterConfig{
		Logger:     logger,
		Rooms:      app.RoomController,
		Sessions:   app.SessionService,
		Hub:        app.Hub,
		Dispatcher: app.Dispatcher,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.host
	serverConfig.Port = cfg.port
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Sweep expired session tokens in the background
	go app.SessionService.Run(ctx)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}
