package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/freedayhq/freeday-chat/internal/api"
	"github.com/freedayhq/freeday-chat/internal/assistant"
	"github.com/freedayhq/freeday-chat/internal/config"
	"github.com/freedayhq/freeday-chat/internal/constants"
	"github.com/freedayhq/freeday-chat/internal/core"
	"github.com/freedayhq/freeday-chat/internal/push"
	"github.com/freedayhq/freeday-chat/internal/store"
	"github.com/freedayhq/freeday-chat/internal/tui"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	var (
		showVersion  = flag.Bool("version", false, "Show version and exit")
		configPath   = flag.String("config", "config.toml", "Path to config file")
		debug        = flag.Bool("debug", false, "Enable debug logging")
		conversation = flag.String("conversation", "", "Open this conversation id on startup")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("FreeDay Chat %s\n", Version)
		os.Exit(0)
	}

	// Initialize logging
	if err := initLogging(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	log.Info().Str("version", Version).Msg("Starting FreeDay Chat")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	s, err := store.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	self, token, err := resolveIdentity(ctx, cfg, s)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Could not sign in:", err)
		fmt.Fprintln(os.Stderr, "Set FREECHAT_TOKEN or the server.auth_token config key.")
		os.Exit(1)
	}
	log.Info().Str("user", self.ID).Str("name", self.DisplayName).Msg("Signed in")

	client := api.NewClient(cfg.Server.APIBaseURL, token)
	channel := push.New(cfg.Server.SocketURL, token)
	defer channel.Close()

	ai, err := assistant.New(cfg.Assistant, client)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize assistant")
	}

	bus := core.NewEventBus(constants.EventBusBufferSize)
	defer bus.Close()

	session := core.NewSession(self, client, channel, ai, bus)
	session.SetReadMarker(s)

	// Subscribe before Start so the TUI sees the initial load events
	eventCh := bus.Subscribe()

	if err := session.Start(ctx, *conversation); err != nil {
		log.Fatal().Err(err).Msg("Failed to load conversations")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	model := tui.New(session, s, eventCh, siteBase(cfg))
	program := tea.NewProgram(model, tea.WithAltScreen())

	go func() {
		<-sigCh
		log.Info().Msg("Received shutdown signal")
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		log.Fatal().Err(err).Msg("TUI error")
	}

	log.Info().Msg("FreeDay Chat shutdown complete")
}

// resolveIdentity signs in with the configured token, falling back to the
// last saved session when the backend is unreachable. A fresh sign-in
// replaces the saved session for the next launch.
func resolveIdentity(ctx context.Context, cfg *config.Config, s *store.Store) (core.Identity, string, error) {
	token := cfg.Server.AuthToken
	saved, err := s.LoadSession()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load saved session")
	}
	if token == "" && saved != nil {
		token = saved.Token
	}
	if token == "" {
		return core.Identity{}, "", fmt.Errorf("no auth token configured")
	}

	client := api.NewClient(cfg.Server.APIBaseURL, token)
	meCtx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	self, err := client.Me(meCtx)
	if err != nil {
		if saved != nil && saved.Token == token {
			log.Warn().Err(err).Msg("Sign-in check failed, reusing saved session")
			return core.Identity{
				ID:          saved.UserID,
				DisplayName: saved.DisplayName,
				AvatarURL:   saved.AvatarURL,
			}, token, nil
		}
		return core.Identity{}, "", err
	}

	if err := s.SaveSession(store.SavedSession{
		UserID:      self.ID,
		DisplayName: self.DisplayName,
		AvatarURL:   self.AvatarURL,
		Token:       token,
		SavedAt:     time.Now(),
	}); err != nil {
		log.Warn().Err(err).Msg("Failed to save session")
	}

	return self, token, nil
}

// siteBase derives the public web URL used for event links in the
// transcript. The API host serves the SPA on the bare domain.
func siteBase(cfg *config.Config) string {
	base := cfg.Server.APIBaseURL
	for _, suffix := range []string{"/api/v1", "/api"} {
		if len(base) > len(suffix) && base[len(base)-len(suffix):] == suffix {
			return base[:len(base)-len(suffix)]
		}
	}
	return base
}

func initLogging(debug bool) error {
	dataDir, err := config.EnsureDataDir()
	if err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	logPath := filepath.Join(dataDir, "freechat.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Log to file only (TUI owns stdout/stderr)
	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()

	return nil
}
