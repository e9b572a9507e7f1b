// Package api exposes the read-only HTTP interface for the quote store.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mquintana/quotesync/internal/metrics"
	"github.com/mquintana/quotesync/internal/store"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves the dashboard endpoints. Every route reads; nothing here can
// mutate the store.
type Server struct {
	router chi.Router
	reader store.QuoteReader
	pinger Pinger
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(reader store.QuoteReader, pinger Pinger, logger *zap.Logger) *Server {
	s := &Server{
		reader: reader,
		pinger: pinger,
		logger: logger,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(timeoutMiddleware(30 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/quotes", s.listQuotes)
		r.Get("/authors", s.listAuthors)
		r.Get("/authors/{author_id}", s.getAuthor)
		r.Get("/tags", s.listTags)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "store unreachable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// listQuotes returns all quotes, or a filtered view when exactly one of the
// author_id, author, or tag query parameters is present. The tag filter
// matches the label exactly unless exact=false asks for a substring match.
func (s *Server) listQuotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := 0
	for _, key := range []string{"author_id", "author", "tag"} {
		if q.Get(key) != "" {
			filters++
		}
	}
	if filters > 1 {
		s.writeError(w, http.StatusBadRequest, "at most one of author_id, author, tag may be set")
		return
	}

	var (
		quotes []store.QuoteView
		err    error
	)
	switch {
	case q.Get("author_id") != "":
		var authorID int64
		authorID, err = strconv.ParseInt(q.Get("author_id"), 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "author_id must be an integer")
			return
		}
		quotes, err = s.reader.QuotesByAuthorID(r.Context(), authorID)
	case q.Get("author") != "":
		quotes, err = s.reader.QuotesByAuthorName(r.Context(), q.Get("author"))
	case q.Get("tag") != "":
		exact := true
		if raw := q.Get("exact"); raw != "" {
			exact, err = strconv.ParseBool(raw)
			if err != nil {
				s.writeError(w, http.StatusBadRequest, "exact must be a boolean")
				return
			}
		}
		quotes, err = s.reader.QuotesByTag(r.Context(), q.Get("tag"), exact)
	default:
		quotes, err = s.reader.ListQuotes(r.Context())
	}
	if err != nil {
		s.logger.Error("quote query failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "quote query failed")
		return
	}

	payload := make([]quotePayload, 0, len(quotes))
	for _, quote := range quotes {
		payload = append(payload, toQuotePayload(quote))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"quotes": payload})
}

func (s *Server) listAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := s.reader.ListAuthors(r.Context())
	if err != nil {
		s.logger.Error("author query failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "author query failed")
		return
	}
	payload := make([]authorPayload, 0, len(authors))
	for _, author := range authors {
		payload = append(payload, toAuthorPayload(author))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"authors": payload})
}

func (s *Server) getAuthor(w http.ResponseWriter, r *http.Request) {
	authorID, err := strconv.ParseInt(chi.URLParam(r, "author_id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "author_id must be an integer")
		return
	}
	author, err := s.reader.GetAuthor(r.Context(), authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "author not found")
			return
		}
		s.logger.Error("author query failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "author query failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"author": toAuthorPayload(author)})
}

func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.reader.ListTags(r.Context())
	if err != nil {
		s.logger.Error("tag query failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "tag query failed")
		return
	}
	payload := make([]tagPayload, 0, len(tags))
	for _, tag := range tags {
		payload = append(payload, tagPayload{ID: tag.ID, Label: tag.Label})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"tags": payload})
}

type quotePayload struct {
	ID        int64    `json:"id"`
	Text      string   `json:"text"`
	AuthorID  int64    `json:"author_id"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	AuthorURL string   `json:"author_url"`
	Tags      []string `json:"tags"`
}

type authorPayload struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	URL          string `json:"url"`
	BornDate     string `json:"born_date"`
	BornLocation string `json:"born_location"`
	Description  string `json:"description"`
}

type tagPayload struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}

func toQuotePayload(q store.QuoteView) quotePayload {
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	return quotePayload{
		ID:        q.ID,
		Text:      q.Text,
		AuthorID:  q.AuthorID,
		FirstName: q.FirstName,
		LastName:  q.LastName,
		AuthorURL: q.AuthorURL,
		Tags:      tags,
	}
}

func toAuthorPayload(a store.Author) authorPayload {
	return authorPayload{
		ID:           a.ID,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		URL:          a.URL,
		BornDate:     a.BornDate,
		BornLocation: a.BornLocation,
		Description:  a.Description,
	}
}

type requestIDKey struct{}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.status),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", zap.Any("error", rec))
				s.writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
