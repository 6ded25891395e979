package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"bullet-relay/server/config"
	"bullet-relay/server/internal/api"
	"bullet-relay/server/internal/app"
	"bullet-relay/server/internal/data"
	"bullet-relay/server/internal/relay"
	"bullet-relay/server/internal/simpeer"
	"bullet-relay/server/internal/translate"
	"bullet-relay/server/internal/transport/ws"
	"bullet-relay/server/pkg/llm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string
	root := &cobra.Command{
		Use:          "relay",
		Short:        "Relay move commands to a physics simulator",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	root.AddCommand(newServeCmd(&configFile), newPeerCmd(&configFile))
	return root
}

func newServeCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP and stream command endpoints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile, cmd.Flags())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	f := cmd.Flags()
	f.String("server.addr", ":8080", "HTTP listen address")
	f.String("simulator.url", "ws://localhost:8765/ws", "simulator websocket url")
	f.String("translator.mode", "auto", "translator: auto, llm or phrase")
	f.String("data.db_path", "relay.db", "sqlite db path for waypoints")
	return cmd
}

func newPeerCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peer",
		Short: "Run a stand-in simulator for local development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile, cmd.Flags())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mux := http.NewServeMux()
			mux.Handle("/ws", simpeer.New())
			log.Printf("[PEER] Stand-in simulator listening on %s", cfg.Peer.Addr)
			return run(ctx, &http.Server{Addr: cfg.Peer.Addr, Handler: mux})
		},
	}
	cmd.Flags().String("peer.addr", ":8765", "stand-in simulator listen address")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	// 1. Repository
	log.Printf("Initializing SQLite repository at %s...", cfg.Data.DBPath)
	repo, err := data.NewSQLiteRepo(cfg.Data.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	// 2. Simulator connection
	log.Printf("Relaying to simulator at %s", cfg.Simulator.URL)
	manager := relay.NewManager(relay.Options{
		URL:          cfg.Simulator.URL,
		Dialer:       &websocket.Dialer{HandshakeTimeout: cfg.Simulator.DialTimeout},
		ReplyTimeout: cfg.Simulator.ReplyTimeout,
	})
	defer manager.Close()

	// 3. Translation
	var fallback translate.Translator
	if cfg.Translator.APIKey != "" {
		log.Printf("Initializing LLM client (%s, %s)...", cfg.Translator.BaseURL, cfg.Translator.Model)
		client := llm.NewClient(cfg.Translator.BaseURL, cfg.Translator.APIKey, cfg.Translator.Model, cfg.Translator.Timeout)
		fallback = translate.NewLLM(client, cfg.Translator.Temperature)
	}
	translator, err := translate.New(cfg.Translator.Mode, translate.NewPhrase(repo), fallback)
	if err != nil {
		return err
	}

	// 4. Application Service
	svc := app.NewService(translator, app.NewDispatcher(manager))

	// 5. HTTP + stream
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	api.NewHandler(svc, repo, manager, ws.NewServer(svc), cfg).SetupRoutes(r)

	log.Printf("Server starting on %s (translator: %s)", cfg.Server.Addr, cfg.Translator.Mode)
	return run(ctx, &http.Server{Addr: cfg.Server.Addr, Handler: r})
}

// run serves until ctx is done, then shuts down gracefully.
func run(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
