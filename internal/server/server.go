// Package server exposes the gateway's HTTP surface: it dispatches each
// request to the signing, listing, or multipart operation it maps to and
// translates outcomes into redirects, JSON bodies, or error statuses.
package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/media-io/s3-signer/internal/config"
	"github.com/media-io/s3-signer/internal/objects"
	"github.com/media-io/s3-signer/internal/signer"
	"github.com/media-io/s3-signer/internal/upload"
)

// APIRootPath prefixes every signing, listing, and upload route.
const APIRootPath = "/api"

// Server wires the store configuration into the request handlers. It holds
// no mutable state; all fields are read-only after New.
type Server struct {
	signer  *signer.Signer
	lister  *objects.Lister
	uploads *upload.Orchestrator
	version string
}

// New builds a Server over the given store configuration. version appears
// in the root banner.
func New(cfg config.Store, version string) *Server {
	sg := signer.New(cfg)
	return &Server{
		signer:  sg,
		lister:  objects.NewLister(cfg),
		uploads: upload.NewOrchestrator(cfg, sg),
		version: version,
	}
}

// Handler returns the fully-routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(cors)
	r.Use(accessLog)
	r.Use(instrument)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleRoot)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route(APIRootPath, func(r chi.Router) {
		r.Get("/object", s.handleGetObjectURL)
		r.Get("/objects", s.handleListObjects)
		r.Post("/objects", s.handleCreateObjectURL)

		r.Route("/multipart-upload", func(r chi.Router) {
			r.Post("/", s.handleCreateUpload)
			r.Get("/{uploadID}/part/{partNumber}", s.handlePartUploadURL)
			r.Post("/{uploadID}", s.handleAbortOrCompleteUpload)
		})
	})

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "S3 Signer (version %s)\n", s.version)
}
