// Package httpapi exposes the devotional service over HTTP.
package httpapi

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mesh-intelligence/devotional/internal/devotional"
	"github.com/mesh-intelligence/devotional/internal/verse"
	"github.com/mesh-intelligence/devotional/pkg/types"
)

// Devotionals serves get-or-generate requests.
type Devotionals interface {
	Devotional(ctx context.Context, req devotional.Request) (*devotional.Result, error)
}

// StatsSource reports cache statistics.
type StatsSource interface {
	Stats(ctx context.Context) (types.CacheStats, error)
}

// TodayResolver finds today's verse.
type TodayResolver interface {
	ResolveToday(ctx context.Context, churchID string) (*types.VerseSchedule, error)
}

// ScheduleImporter loads verse schedules.
type ScheduleImporter interface {
	ImportURL(ctx context.Context, url string) (verse.ImportReport, error)
	ImportFallback(ctx context.Context) (verse.ImportReport, error)
	ImportVerses(ctx context.Context, verses []types.VerseSchedule) (verse.ImportReport, error)
}

// ScheduleSummarizer reports what the schedule holds.
type ScheduleSummarizer interface {
	SummarizeVerses(ctx context.Context) (types.ScheduleSummary, error)
}

// Deps are the collaborators behind the API.
type Deps struct {
	Devotionals Devotionals
	Stats       StatsSource
	Verses      TodayResolver
	Importer    ScheduleImporter
	Schedule    ScheduleSummarizer
	Logger      *slog.Logger

	// ImportSecret guards POST /api/import-verses. Imports are refused while
	// it is empty.
	ImportSecret string
	// ScheduleURL is the CSV source used when an import names none.
	ScheduleURL string
	// FallbackCount is reported by GET /api/import-verses.
	FallbackCount int
}

// Server routes API requests.
type Server struct {
	deps Deps
	mux  *http.ServeMux
}

// New returns a Server with its routes registered.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Server{deps: deps, mux: http.NewServeMux()}
	s.mux.HandleFunc("POST /api/devotional", s.handleDevotional)
	s.mux.HandleFunc("GET /api/cache-stats", s.handleCacheStats)
	s.mux.HandleFunc("GET /api/verse/today", s.handleVerseToday)
	s.mux.HandleFunc("POST /api/import-verses", s.handleImport)
	s.mux.HandleFunc("GET /api/import-verses", s.handleImportStatus)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return s
}

// Handler returns the routes wrapped in the standard middleware.
func (s *Server) Handler() http.Handler {
	return Chain(s.mux,
		RequestID(),
		TraceContext(),
		AccessLog(s.deps.Logger),
		RecoverPanic(s.deps.Logger),
	)
}

// NewHTTPServer returns an http.Server for addr with conservative timeouts.
// Generation can take tens of seconds, so the write timeout is generous.
func NewHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
}

type verseJSON struct {
	Reference string `json:"reference"`
	Text      string `json:"text"`
	Version   string `json:"version"`
}

type devotionalJSON struct {
	Verse       verseJSON         `json:"verse"`
	Reflection  string            `json:"reflection"`
	Application types.Application `json:"application"`
	Prayer      string            `json:"prayer"`
	ImageURL    *string           `json:"image_url"`
	AudioURL    *string           `json:"audio_url"`
}

type devotionalResponse struct {
	CacheHit        bool               `json:"cache_hit"`
	Degraded        bool               `json:"degraded"`
	PremiumEligible bool               `json:"premium_eligible"`
	Session         devotional.Session `json:"session"`
	Devotional      devotionalJSON     `json:"devotional"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Server) handleDevotional(w http.ResponseWriter, r *http.Request) {
	var req devotional.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.deps.Devotionals.Devotional(r.Context(), req)
	switch {
	case err == nil:
	case devotional.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, types.ErrNoVerseScheduled):
		writeError(w, http.StatusNotFound, "No verse available for today")
		return
	case errors.Is(err, types.ErrGenerationFailed):
		writeError(w, http.StatusBadGateway, "Failed to generate devotional content")
		return
	default:
		s.deps.Logger.ErrorContext(r.Context(), "devotional request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	cacheHeader := "MISS"
	if res.CacheHit {
		cacheHeader = "HIT"
	}
	w.Header().Set("X-Cache", cacheHeader)
	w.Header().Set("X-Devotional-Key", fmt.Sprintf("%016x", res.Key.Fingerprint()))

	verseText := res.Content.VerseText
	if verseText == "" {
		verseText = res.Verse.VerseText
	}
	writeJSON(w, http.StatusOK, devotionalResponse{
		CacheHit:        res.CacheHit,
		Degraded:        res.Degraded,
		PremiumEligible: res.PremiumEligible,
		Session:         res.Session,
		Devotional: devotionalJSON{
			Verse:       verseJSON{Reference: res.Key.VerseReference, Text: verseText, Version: "NIV"},
			Reflection:  res.Content.Reflection,
			Application: res.Content.Application,
			Prayer:      res.Content.Prayer,
			ImageURL:    optional(res.Content.ImageURL),
			AudioURL:    optional(res.Content.AudioURL),
		},
	})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Stats.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get cache stats")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"stats": map[string]int64{
			"total_cached_devotionals":      stats.TotalEntries,
			"total_times_served_from_cache": stats.TotalAccesses,
			"unique_verses_cached":          stats.UniqueVerses,
			"estimated_api_calls_saved":     stats.EstimatedCallsSaved(),
		},
	})
}

func (s *Server) handleVerseToday(w http.ResponseWriter, r *http.Request) {
	churchID := strings.TrimSpace(r.URL.Query().Get("church_id"))
	if err := types.ValidateChurchID(churchID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := s.deps.Verses.ResolveToday(r.Context(), churchID)
	if errors.Is(err, types.ErrNoVerseScheduled) {
		writeError(w, http.StatusNotFound, "No verse available for today")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve verse")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type importRequest struct {
	Secret string                `json:"secret"`
	Source string                `json:"source"`
	URL    string                `json:"url"`
	Verses []types.VerseSchedule `json:"verses"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if s.deps.ImportSecret == "" ||
		subtle.ConstantTimeCompare([]byte(req.Secret), []byte(s.deps.ImportSecret)) != 1 {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var (
		report verse.ImportReport
		err    error
	)
	switch strings.ToLower(req.Source) {
	case "url", "csv", "airtable":
		url := req.URL
		if url == "" {
			url = s.deps.ScheduleURL
		}
		if url == "" {
			writeError(w, http.StatusBadRequest, "no schedule url configured")
			return
		}
		report, err = s.deps.Importer.ImportURL(r.Context(), url)
	case "inline":
		report, err = s.deps.Importer.ImportVerses(r.Context(), req.Verses)
	case "", "fallback":
		report, err = s.deps.Importer.ImportFallback(r.Context())
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown source %q", req.Source))
		return
	}
	if errors.Is(err, types.ErrInvalidSchedule) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.deps.Logger.ErrorContext(r.Context(), "verse import failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Import failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  fmt.Sprintf("Imported %d verses", report.Imported),
		"source":   report.Source,
		"imported": report.Imported,
		"sample":   report.Sample,
	})
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Schedule.SummarizeVerses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read verse schedule")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"verses_in_database":        summary.Count,
		"fallback_verses_available": s.deps.FallbackCount,
		"date_range": map[string]string{
			"start": summary.FirstDate,
			"end":   summary.LastDate,
		},
	})
}
