// Package httpserver contains HTTP handlers and middleware.
//
// It exposes the aggregated candidate report, an export surface for
// downstream tooling, and health/readiness probes. HTTP concerns stay
// here; aggregation lives in the usecase layer.
package httpserver

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fairyhunter13/ai-interview-reporter/internal/config"
	"github.com/fairyhunter13/ai-interview-reporter/internal/domain"
)

// ReportProvider serves the latest aggregated report.
type ReportProvider interface {
	GetLatestReport(ctx context.Context, forceRefresh bool) domain.CachedReport
}

// Server aggregates handler dependencies.
type Server struct {
	Cfg     config.Config
	Reports ReportProvider

	DBCheck    func(ctx context.Context) error
	MongoCheck func(ctx context.Context) error
	RedisCheck func(ctx context.Context) error
}

var validate = validator.New()

// ReportHandler serves the latest aggregated candidate report.
// `?refresh=true` bypasses the cache.
func (s *Server) ReportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		force := false
		if raw := r.URL.Query().Get("refresh"); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				writeError(w, r, fmt.Errorf("%w: refresh must be a boolean", domain.ErrInvalidArgument), nil)
				return
			}
			force = parsed
		}
		rep := s.Reports.GetLatestReport(r.Context(), force)
		writeJSON(w, http.StatusOK, rep)
	}
}

type exportRequest struct {
	Format string `validate:"omitempty,oneof=csv json"`
}

// ExportHandler renders the candidate list for downstream tooling.
// JSON is the default; `?format=csv` streams a spreadsheet-friendly
// flat file with stable column names.
func (s *Server) ExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := exportRequest{Format: r.URL.Query().Get("format")}
		if err := validate.Struct(req); err != nil {
			writeError(w, r, fmt.Errorf("%w: format must be csv or json", domain.ErrInvalidArgument), err.Error())
			return
		}
		rep := s.Reports.GetLatestReport(r.Context(), false)

		if req.Format == "csv" {
			writeCSV(w, rep.Candidates)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"candidates":  rep.Candidates,
			"generatedAt": rep.GeneratedAt,
			"revision":    rep.Revision,
		})
	}
}

var csvHeader = []string{
	"session_key", "candidate_id", "name", "email", "role", "status",
	"overall", "technical", "communication", "behavioral",
	"plagiarism", "authenticity", "duration", "timestamp", "source",
}

func writeCSV(w http.ResponseWriter, candidates []domain.CandidateSummary) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="candidates.csv"`)
	cw := csv.NewWriter(w)
	_ = cw.Write(csvHeader)
	for _, c := range candidates {
		_ = cw.Write([]string{
			c.SessionKey, c.CandidateID, c.Name, c.Email, c.Role, string(c.Status),
			formatScore(c.Overall), formatScore(c.Technical),
			formatScore(c.Communication), formatScore(c.Behavioral),
			formatScore(c.Plagiarism), formatScore(c.Authenticity),
			c.Duration, c.Timestamp.UTC().Format(time.RFC3339), string(c.Source),
		})
	}
	cw.Flush()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// ReadyzHandler returns a readiness handler probing the two session
// stores and the report cache.
func (s *Server) ReadyzHandler() http.HandlerFunc {
	type check struct {
		Name    string `json:"name"`
		OK      bool   `json:"ok"`
		Details string `json:"details,omitempty"`
	}
	probe := func(ctx context.Context, name string, fn func(context.Context) error) check {
		if err := fn(ctx); err != nil {
			return check{Name: name, OK: false, Details: err.Error()}
		}
		return check{Name: name, OK: true}
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		checks := make([]check, 0, 3)
		if s.DBCheck != nil {
			checks = append(checks, probe(ctx, "db", s.DBCheck))
		}
		if s.MongoCheck != nil {
			checks = append(checks, probe(ctx, "mongo", s.MongoCheck))
		}
		if s.RedisCheck != nil {
			checks = append(checks, probe(ctx, "redis", s.RedisCheck))
		}
		ok := true
		for _, c := range checks {
			if !c.OK {
				ok = false
				break
			}
		}
		st := http.StatusOK
		if !ok {
			st = http.StatusServiceUnavailable
		}
		writeJSON(w, st, map[string]any{"checks": checks})
	}
}
