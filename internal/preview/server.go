package preview

import (
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tordrt/schemadoc/internal/diagram"
	"github.com/tordrt/schemadoc/internal/generator"
	"github.com/tordrt/schemadoc/internal/stats"
)

// Server serves the watched schema over HTTP.
type Server struct {
	holder *Holder
	format generator.Config
	logger zerolog.Logger
}

// NewServer wires the holder into a preview server.
func NewServer(holder *Holder, format generator.Config, logger zerolog.Logger) *Server {
	return &Server{holder: holder, format: format, logger: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/schema.txt", s.handleText)
	r.Get("/schema.md", s.handleMarkdown)
	r.Get("/diagram.svg", s.handleDiagram)
	r.Get("/stats", s.handleStats)
	r.Get("/healthz", s.handleHealth)
	return r
}

// ListenAndServe starts the server on addr and blocks.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.logger.Info().Str("addr", addr).Msg("preview server listening")
	return srv.ListenAndServe()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	state := s.holder.Get()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>schema preview</title>")
	fmt.Fprintf(w, "<meta http-equiv=\"refresh\" content=\"2\">")
	fmt.Fprintf(w, "<style>body{font-family:monospace;margin:2em}pre{background:#f8f8f8;padding:1em}.err{color:#b00}.warn{color:#a60}</style>")
	fmt.Fprintf(w, "</head><body>")
	fmt.Fprintf(w, "<p>loaded %s</p>", state.LoadedAt.Format(time.RFC3339))

	if state.Err != nil {
		fmt.Fprintf(w, "<pre class=\"err\">%s</pre></body></html>", html.EscapeString(state.Err.Error()))
		return
	}

	if state.Result != nil {
		for _, e := range state.Result.Errors {
			fmt.Fprintf(w, "<p class=\"err\">error: %s</p>", html.EscapeString(e.String()))
		}
		for _, warn := range state.Result.Warnings {
			fmt.Fprintf(w, "<p class=\"warn\">warning: %s</p>", html.EscapeString(warn))
		}
	}

	fmt.Fprintf(w, "<p><a href=\"/diagram.svg\">diagram</a> | <a href=\"/stats\">stats</a> | <a href=\"/schema.txt\">raw</a> | <a href=\"/schema.md\">markdown</a></p>")
	fmt.Fprintf(w, "<pre>%s</pre>", html.EscapeString(generator.Format(state.Doc, s.format)))
	fmt.Fprintf(w, "</body></html>")
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	state := s.holder.Get()
	if state.Doc == nil {
		s.writeUnavailable(w, state)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, generator.Format(state.Doc, s.format))
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	state := s.holder.Get()
	if state.Doc == nil {
		s.writeUnavailable(w, state)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	fmt.Fprint(w, generator.FormatMarkdown(state.Doc, s.format))
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	state := s.holder.Get()
	if state.Doc == nil {
		s.writeUnavailable(w, state)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	diagram.Render(w, state.Doc)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	state := s.holder.Get()
	if state.Doc == nil {
		s.writeUnavailable(w, state)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	stats.Collect(state.Doc).WriteText(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) writeUnavailable(w http.ResponseWriter, state State) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	if state.Err != nil {
		fmt.Fprintln(w, state.Err.Error())
		return
	}
	fmt.Fprintln(w, "no document loaded")
}
