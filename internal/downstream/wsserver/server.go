package wsserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	subscribe, unsubscribe = "SUB", "UNSUB"
)

type WSServer struct {
	*http.Server
	*RequestProcessor
}

// NewWSServer serves the websocket endpoint, read-only book routes and the
// metrics gathered by gatherer.
func NewWSServer(addr string, proc *RequestProcessor, gatherer prometheus.Gatherer) *WSServer {
	s := &WSServer{
		RequestProcessor: proc,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.websocketHandler)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/books", proc.listBooks)
	r.Get("/book", proc.getBook)
	r.Get("/book/summary", proc.getSummary)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s.Server = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *WSServer) StartServer() error {
	slog.Info("Websocket Server started", "addr", s.Addr)

	err := s.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Error on websocket Server: ", "Error", err)

		return err
	}

	return nil
}

func (s *WSServer) ShutDown(ctx context.Context) error {
	return s.Shutdown(ctx)
}

func (s *WSServer) websocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Error Upgrading Websocket: ", "Error", err)

		return
	}

	go s.handleConnection(conn)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}
