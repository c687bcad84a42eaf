// Package server exposes the analyzer over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phobologic/lexscope/internal/analyzer"
	"github.com/phobologic/lexscope/internal/model"
)

// RootMessage is the greeting served on GET /.
const RootMessage = "Advanced Source Code Analyzer API"

// Options configures a Server.
type Options struct {
	// MaxUploadBytes bounds request bodies. Zero means 5 MiB.
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Server routes HTTP requests to an analyzer.Engine.
type Server struct {
	engine    analyzer.Engine
	maxUpload int64
	logger    *slog.Logger
}

// New returns a Server backed by engine.
func New(engine analyzer.Engine, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 5 << 20
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Server{engine: engine, maxUpload: opts.MaxUploadBytes, logger: opts.Logger}
}

// codeInput is the body of /analyze-code and /analyze-advanced. Both fields
// are required.
type codeInput struct {
	Code     *string `json:"code"`
	Language *string `json:"language"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /analyze", s.handleAnalyzeFile)
	mux.HandleFunc("POST /analyze-code", s.handleAnalyzeCode)
	mux.HandleFunc("POST /analyze-advanced", s.handleAnalyzeAdvanced)
	return withCORS(mux)
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	logger.Info("http server listening", "addr", addr)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"message": RootMessage})
}

// handleAnalyzeFile analyzes a multipart upload in the "file" field.
func (s *Server) handleAnalyzeFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.writeBodyError(w, fmt.Errorf("reading upload: %w", err))
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "field required: file")
		return
	}
	defer f.Close()

	var language model.Language
	switch {
	case strings.HasSuffix(hdr.Filename, ".cpp"):
		language = model.Cpp
	case strings.HasSuffix(hdr.Filename, ".java"):
		language = model.Java
	default:
		s.writeError(w, http.StatusBadRequest, "Only .cpp and .java files are supported")
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing file: %v", err))
		return
	}
	unit, err := model.NewSourceUnit(data, language)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error processing file: %v", err))
		return
	}

	s.logger.Debug("analyzing upload", "file", hdr.Filename, "bytes", hdr.Size)
	s.writeJSON(w, http.StatusOK, s.engine.Analyze(unit))
}

func (s *Server) handleAnalyzeCode(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeInput(w, r)
	if !ok {
		return
	}
	// Tags match exactly here, unlike model.ParseLanguage.
	language := model.Language(*in.Language)
	if language != model.Cpp && language != model.Java {
		s.writeError(w, http.StatusBadRequest, "Only C++ and Java are supported")
		return
	}
	s.writeJSON(w, http.StatusOK, s.engine.Analyze(model.SourceUnit{Text: *in.Code, Language: language}))
}

// handleAnalyzeAdvanced accepts any language tag. The tag only selects the
// tree-sitter grammar, and an unknown tag just skips that probe.
func (s *Server) handleAnalyzeAdvanced(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeInput(w, r)
	if !ok {
		return
	}
	language := model.Language(strings.ToLower(strings.TrimSpace(*in.Language)))
	res := s.engine.AnalyzeAdvanced(r.Context(), model.SourceUnit{Text: *in.Code, Language: language})
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) decodeInput(w http.ResponseWriter, r *http.Request) (codeInput, bool) {
	var in codeInput
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeBodyError(w, fmt.Errorf("decoding request: %w", err))
		return in, false
	}
	var missing []string
	if in.Code == nil {
		missing = append(missing, "code")
	}
	if in.Language == nil {
		missing = append(missing, "language")
	}
	if len(missing) > 0 {
		s.writeError(w, http.StatusUnprocessableEntity, "field required: "+strings.Join(missing, ", "))
		return in, false
	}
	return in, true
}

func (s *Server) writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		s.writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return
	}
	s.writeError(w, http.StatusUnprocessableEntity, err.Error())
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.logger.Debug("request failed", "status", status, "detail", detail)
	s.writeJSON(w, status, errorResponse{Detail: detail})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := model.WriteJSON(w, v, false); err != nil {
		s.logger.Warn("writing response", "error", err)
	}
}
