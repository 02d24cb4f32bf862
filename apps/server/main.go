package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sweeper-lite/apps/server/internal/gateway"
	"sweeper-lite/apps/server/internal/ledger"
	"sweeper-lite/apps/server/internal/names"
	"sweeper-lite/apps/server/internal/room"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("[Server] %v", err)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	nameGen, err := names.Load(cfg.NounsPath, cfg.AdjectivesPath)
	if err != nil {
		log.Printf("[Server] Word lists unavailable, using bundled lists: %v", err)
		nameGen = names.Default()
	}

	ledgerService, ledgerMode, err := ledger.NewService(ledger.Config{
		Mode:       cfg.LedgerMode,
		SQLitePath: cfg.LedgerSQLitePath,
		DSN:        cfg.LedgerDSN,
		Retain:     cfg.LedgerRetain,
	})
	if err != nil {
		return fmt.Errorf("init ledger service: %w", err)
	}
	defer ledgerService.Close()

	rm, err := room.New(room.Options{Board: cfg.Board(), Names: nameGen})
	if err != nil {
		return fmt.Errorf("init room: %w", err)
	}
	defer rm.Stop()
	rm.AddGameEndHook(ledger.NewGameEndHook(ledgerService))

	gw := gateway.New(rm, gateway.Options{
		TrustProxyHeaders: cfg.TrustProxyHeaders,
		OutboundBuffer:    cfg.OutboundBuffer,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/status", statusHandler(rm, gw))
	ledger.NewHTTPHandler(ledgerService).RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		log.Printf("[Server] Ledger mode: %s", ledgerMode)
		log.Printf("[Server] Starting WebSocket server on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("[Server] Shutting down")
	case err := <-errChan:
		return fmt.Errorf("serve: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func statusHandler(rm *room.Room, gw *gateway.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		st, err := rm.Status(ctx)
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"room":    st,
			"sockets": gw.Count(),
		})
	}
}
