package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alveera224/ReelEdit/internal/adapter/http/middleware"
	"github.com/alveera224/ReelEdit/internal/service"
)

type Server struct {
	mux        *http.ServeMux
	handlers   *Handlers
	sseHandler *SSEHandler
	wrapped    http.Handler
}

func NewServer(videoSvc VideoService, processSvc ProcessService, eventBus *service.EventBus, maxSizeMB int, corsOrigins []string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:        mux,
		handlers:   NewHandlers(videoSvc, processSvc, maxSizeMB),
		sseHandler: NewSSEHandler(eventBus, videoSvc),
	}

	s.registerRoutes()
	s.wrapped = middleware.CORS(corsOrigins, middleware.Metrics(mux))

	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /api/videos/upload", s.handlers.Upload())
	s.mux.HandleFunc("POST /api/videos/{id}/process", s.handlers.Process())
	s.mux.HandleFunc("GET /api/videos", s.handlers.List())
	s.mux.HandleFunc("GET /api/videos/{id}", s.handlers.Metadata())
	s.mux.HandleFunc("GET /api/videos/{id}/segments", s.handlers.Segments())
	s.mux.HandleFunc("DELETE /api/videos/{id}", s.handlers.Delete())
	s.mux.HandleFunc("GET /api/videos/{id}/events", s.sseHandler.Events())

	s.mux.HandleFunc("GET /stream/video/{id}", s.handlers.StreamVideo())
	s.mux.HandleFunc("GET /stream/segment/{id}", s.handlers.StreamSegment())
	s.mux.HandleFunc("GET /download/segment/{id}", s.handlers.DownloadSegment())

	s.mux.HandleFunc("GET /health", s.handlers.Health())
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.wrapped.ServeHTTP(w, r)
}
