package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"memory-scramble-server/api"
	"memory-scramble-server/boardfile"
	"memory-scramble-server/config"
	"memory-scramble-server/loghandler"
	"memory-scramble-server/session"
	"memory-scramble-server/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err2 := godotenv.Load("server/.env"); err2 != nil {
			log.Print("No .env file found; using environment variables. For local dev, run from server/ or set AUTH_BASE_URL and WS_PORT.")
		}
	}

	logger := slog.New(loghandler.NewCompactHandler(os.Stdout, slog.LevelInfo))
	slog.SetDefault(logger)

	cfg := config.Load()

	if cfg.AuthBaseURL == "" {
		logger.Warn("auth base URL not set; websocket auth will reject clients until a name is set without a token")
	} else {
		logger.Info("auth configured", "base_url", cfg.AuthBaseURL)
	}
	logger.Info("configuration loaded",
		"default_board_rows", cfg.DefaultBoardRows,
		"default_board_cols", cfg.DefaultBoardCols,
		"ws_port", cfg.WSPort,
		"flip_wait_timeout_ms", cfg.FlipWaitTimeoutMS,
		"flip_rate_per_second", cfg.FlipRateLimit.PerSecond,
		"flip_rate_burst", cfg.FlipRateLimit.Burst,
	)

	sessions := session.NewManager(cfg.DefaultBoardRows, cfg.DefaultBoardCols)
	loadConfiguredBoards(logger, sessions, cfg.BoardFiles)

	hub := ws.NewHub(cfg, sessions)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/api/sessions/", api.NewLookHandler(sessions))

	addr := fmt.Sprintf(":%d", cfg.WSPort)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		logger.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("memory scramble server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// loadConfiguredBoards parses and installs each session named in
// boardFiles before the listener starts accepting connections, so that
// joining one of them never races against the file still being read.
func loadConfiguredBoards(logger *slog.Logger, sessions *session.Manager, boardFiles map[string]string) {
	for name, path := range boardFiles {
		f, err := os.Open(path)
		if err != nil {
			logger.Error("could not open configured board file", "session", name, "path", path, "error", err)
			continue
		}
		b, err := boardfile.Parse(f)
		f.Close()
		if err != nil {
			logger.Error("could not parse configured board file", "session", name, "path", path, "error", err)
			continue
		}
		sessions.Put(name, b)
		logger.Info("loaded session from board file", "session", name, "path", path)
	}
}
