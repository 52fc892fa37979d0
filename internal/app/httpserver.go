package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kits-erp/marks-registry/internal/db"
	"github.com/kits-erp/marks-registry/internal/metrics"
)

type HTTPServer struct {
	srv  *http.Server
	addr net.Addr
}

func NewMux(database *sql.DB) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 800*time.Millisecond)
		defer cancel()
		if err := db.Ping(ctx, database); err != nil {
			http.Error(w, "db not ok: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})

	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// StartHTTP binds addr and serves health and metrics endpoints in the
// background. The caller stops it with Shutdown.
func StartHTTP(addr string, database *sql.DB, log *zap.Logger) (*HTTPServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           NewMux(database),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped", zap.Error(err))
		}
	}()

	log.Info("http server listening", zap.String("addr", ln.Addr().String()))
	return &HTTPServer{srv: srv, addr: ln.Addr()}, nil
}

// Addr is the bound listener address, useful when addr had port 0.
func (s *HTTPServer) Addr() net.Addr { return s.addr }

// Shutdown stops accepting connections and waits for in-flight requests
// up to the deadline of ctx.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
