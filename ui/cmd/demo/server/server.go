// Package server serves the showcase app over HTTP.
//
// Every websocket connection runs its own session. The client sends
// one input line per message (see ui.ParseInput) and receives the
// body's HTML after each batch of inputs.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/elizafairlady/go-lensui/ui"
	"github.com/elizafairlady/go-lensui/ui/cmd/demo/app"
	"github.com/elizafairlady/go-lensui/ui/lazy"
	"github.com/elizafairlady/go-lensui/ui/metrics"
)

// Buffer size of a session's input channel.
const inputChSize = 64

// Default input rate of one connection.
const (
	DefaultEventRate  = 60
	DefaultEventBurst = 30
)

const writeWait = 10 * time.Second

// Config configures a Server.
type Config struct {
	Initial map[string]any
	// Items is the list shared by all sessions; it loads once.
	Items         *lazy.Value[[]string]
	Width, Height int
	// EventRate and EventBurst limit the inputs accepted per
	// connection. Inputs over the limit are dropped.
	EventRate        rate.Limit
	EventBurst       int
	MaxMeasurePasses int
}

// Server serves the app.
type Server struct {
	cfg      Config
	log      *zap.Logger
	metrics  *metrics.Collector
	upgrader websocket.Upgrader
}

// New creates a server. A nil logger discards logs; a nil collector
// disables metrics.
func New(cfg Config, log *zap.Logger, m *metrics.Collector) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Initial == nil {
		cfg.Initial = app.DefaultState()
	}
	if cfg.Items == nil {
		cfg.Items = lazy.Of[[]string](nil)
	}
	if cfg.EventRate == 0 {
		cfg.EventRate = DefaultEventRate
	}
	if cfg.EventBurst <= 0 {
		cfg.EventBurst = DefaultEventBurst
	}
	return &Server{
		cfg:     cfg,
		log:     log,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// Handler returns the HTTP routes:
//
//	GET /          the client page
//	GET /snapshot  the initial render as HTML, or as the rendered
//	               tree in text form with ?format=tree
//	GET /ws        a live session
//	GET /metrics   prometheus metrics
//	GET /healthz   liveness
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.serveIndex)
	r.Get("/snapshot", s.serveSnapshot)
	r.Get("/ws", s.serveWS)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok\n"))
	})
	if s.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) start(ctx context.Context) (*ui.Session, error) {
	return ui.Start(ctx, s.cfg.Initial, app.Root(s.cfg.Items), ui.Options{
		Width:            s.cfg.Width,
		Height:           s.cfg.Height,
		Logger:           s.log,
		Metrics:          s.metrics,
		MaxMeasurePasses: s.cfg.MaxMeasurePasses,
	})
}

func (s *Server) serveIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

func (s *Server) serveSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, err := s.start(r.Context())
	if err != nil {
		s.log.Error("snapshot", zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if r.URL.Query().Get("format") == "tree" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(sess.Tree()))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(sess.HTML()))
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has replied to the client.
		s.log.Debug("upgrade", zap.Error(err))
		return
	}
	defer conn.Close()

	log := s.log.With(zap.String("remote", r.RemoteAddr))
	s.metrics.RecordSession(1)
	defer s.metrics.RecordSession(-1)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess, err := s.start(ctx)
	if err != nil {
		// The session keeps its empty tree and can still recover
		// on a later input.
		log.Warn("start session", zap.Error(err))
	}

	inputs := make(chan ui.Input, inputChSize)
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		s.read(ctx, log, conn, inputs)
	}()

	err = ui.Run(ctx, sess, inputs, func(html string) error {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.TextMessage, []byte(html))
	})
	if err != nil && ctx.Err() == nil {
		log.Debug("session ended", zap.Error(err))
	}
	cancel()
	conn.Close()
	<-readerDone
}

// read forwards input lines from conn until it fails or ctx is done,
// then closes inputs.
func (s *Server) read(ctx context.Context, log *zap.Logger, conn *websocket.Conn, inputs chan<- ui.Input) {
	defer close(inputs)
	limiter := rate.NewLimiter(s.cfg.EventRate, s.cfg.EventBurst)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("read", zap.Error(err))
			}
			return
		}
		in, err := ui.ParseInput(string(msg))
		if err != nil {
			log.Warn("bad input", zap.Error(err))
			continue
		}
		if !limiter.Allow() {
			s.metrics.RecordInputDropped()
			log.Debug("input dropped", zap.String("input", in.Name))
			continue
		}
		select {
		case inputs <- in:
		case <-ctx.Done():
			return
		}
	}
}
