package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/tordrt/erdschema/internal/cache"
	"github.com/tordrt/erdschema/internal/server"
	"github.com/tordrt/erdschema/internal/store"
)

var (
	port      int
	storePath string
	redisAddr string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the diagram and document API over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (default: $PORT or 8080)")
	serveCmd.Flags().StringVar(&storePath, "store", "", "SQLite document store path")
	serveCmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for the shared diagram cache (default: in-memory cache)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			out.Warn("failed to close document store: %v", err)
		}
	}()

	var c cache.Cache = cache.NewMemory(cfg.Server.CacheSize)
	addr := redisAddr
	if addr == "" {
		addr = cfg.Server.RedisAddr
	}
	if addr != "" {
		rc, err := cache.DialRedis(ctx, addr, cache.DefaultTTL)
		if err != nil {
			return err
		}
		defer func() { _ = rc.Close() }()
		c = rc
		log.Printf("Using Redis diagram cache at %s", addr)
	}

	listen := cfg.Server.Port
	if port != 0 {
		listen = port
	}

	srv := server.New(server.Config{
		Store:        st,
		Cache:        c,
		Diagram:      cfg.DiagramOptions(),
		AllowOrigins: cfg.Server.AllowOrigins,
	}).HTTPServer(listen)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server gracefully ...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("Server exiting")
	return nil
}

// openStore opens the SQLite document store named by --store or the config
func openStore(ctx context.Context) (*store.SQLiteStore, error) {
	path := storePath
	if path == "" {
		path = cfg.Store
	}
	return store.OpenSQLite(ctx, path)
}
