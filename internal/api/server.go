// Package api exposes the stimulus service over HTTP: building and listing
// looming models, assembling annotated playback sequences, extracting ALT
// reports, and inspecting trigger events and configuration.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/strobe-lab/loomstim/internal/alt"
	"github.com/strobe-lab/loomstim/internal/config"
	"github.com/strobe-lab/loomstim/internal/db"
	"github.com/strobe-lab/loomstim/internal/httputil"
	"github.com/strobe-lab/loomstim/internal/plots"
	"github.com/strobe-lab/loomstim/internal/sequence"
	"github.com/strobe-lab/loomstim/internal/stimulus"
	"github.com/strobe-lab/loomstim/internal/trigger"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

type Server struct {
	db      *db.DB
	trigger trigger.TriggerMuxInterface
	cfg     *config.ExperimentConfig
}

// NewServer creates an API server. The trigger mux may be nil when the
// service runs without a trigger box attached.
func NewServer(database *db.DB, mux trigger.TriggerMuxInterface, cfg *config.ExperimentConfig) *Server {
	if cfg == nil {
		cfg = config.EmptyConfig()
	}
	return &Server{
		db:      database,
		trigger: mux,
		cfg:     cfg,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400 && statusCode < 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 500:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/models", s.handleModels)
	mux.HandleFunc("/api/models/", s.handleModelRoutes)
	mux.HandleFunc("/api/reports", s.listReports)
	mux.HandleFunc("/api/triggers", s.listTriggerEvents)
	mux.HandleFunc("/api/command", s.sendCommandHandler)
	mux.HandleFunc("/api/config", s.showConfig)
	return mux
}

// createModelRequest is the POST /api/models body. Params is decoded
// according to Kind.
type createModelRequest struct {
	Kind   string          `json:"kind"`
	Params json.RawMessage `json:"params"`
}

// buildModel decodes params for the named kind and runs the builder.
func buildModel(kind string, params json.RawMessage) (stimulus.Model, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: params is required", stimulus.ErrMissingParameter)
	}
	switch stimulus.Kind(kind) {
	case stimulus.KindConstantSpeed:
		var p stimulus.ConstantSpeedParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", stimulus.ErrInvalidInput, err)
		}
		return stimulus.NewConstantSpeedModel(p)
	case stimulus.KindVariableSpeed:
		var p stimulus.VariableSpeedParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", stimulus.ErrInvalidInput, err)
		}
		return stimulus.NewVariableSpeedModel(p)
	case stimulus.KindDiameter:
		var p stimulus.DiameterParams
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", stimulus.ErrInvalidInput, err)
		}
		return stimulus.NewDiameterModel(p)
	default:
		return nil, fmt.Errorf("%w: unknown model kind %q (valid: %q, %q, %q)",
			stimulus.ErrInvalidInput, kind,
			stimulus.KindConstantSpeed, stimulus.KindVariableSpeed, stimulus.KindDiameter)
	}
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records, err := s.db.ListModels(queryLimit(r))
		if err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to list models: %v", err))
			return
		}
		if records == nil {
			records = []db.ModelRecord{}
		}
		httputil.WriteJSONOK(w, records)

	case http.MethodPost:
		var req createModelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		m, err := buildModel(req.Kind, req.Params)
		if err != nil {
			httputil.WriteDomainError(w, err)
			return
		}

		id, err := s.db.SaveModel(m)
		if err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to save model: %v", err))
			return
		}

		httputil.WriteJSON(w, http.StatusCreated, map[string]interface{}{
			"id":          id,
			"kind":        m.Kind(),
			"frame_rate":  m.FrameRate(),
			"frame_count": m.FrameCount(),
		})

	default:
		httputil.MethodNotAllowed(w)
	}
}

// handleModelRoutes dispatches /api/models/{id} and its subresources.
func (s *Server) handleModelRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/models/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		httputil.NotFound(w, "model id required")
		return
	}

	m, err := s.db.GetModel(id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			httputil.NotFound(w, err.Error())
			return
		}
		httputil.WriteDomainError(w, err)
		return
	}

	switch sub {
	case "":
		s.showModel(w, r, id, m)
	case "sequence":
		s.assembleSequence(w, r, m)
	case "alt":
		s.extractALT(w, r, id, m)
	case "chart":
		s.renderChart(w, r, id, m)
	case "profile.png":
		s.renderProfilePNG(w, r, id, m)
	default:
		httputil.NotFound(w, fmt.Sprintf("unknown model resource %q", sub))
	}
}

func (s *Server) showModel(w http.ResponseWriter, r *http.Request, id string, m stimulus.Model) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"id":          id,
		"kind":        m.Kind(),
		"frame_rate":  m.FrameRate(),
		"frame_count": m.FrameCount(),
		"frames":      SeriesToAPI(m.Series()),
	})
}

// sequenceRequest is the POST /api/models/{id}/sequence body. Omitted fields
// fall back to the experiment configuration.
type sequenceRequest struct {
	CorrectionFactor *float64 `json:"correction_factor"`
	PadSeconds       float64  `json:"pad_seconds"`
	PadBlank         bool     `json:"pad_blank"`
	DotsInterval     *int     `json:"dots_interval"`
	Width            *int     `json:"width"`
	Height           *int     `json:"height"`
}

func (s *Server) assembleSequence(w http.ResponseWriter, r *http.Request, m stimulus.Model) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req sequenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	opts := sequence.Options{
		CorrectionFactor: s.cfg.GetCorrectionFactor(),
		PadSeconds:       req.PadSeconds,
		PadBlank:         req.PadBlank,
		DotsInterval:     s.cfg.GetDotsInterval(),
		Width:            s.cfg.GetScreenWidth(),
		Height:           s.cfg.GetScreenHeight(),
	}
	if req.CorrectionFactor != nil {
		opts.CorrectionFactor = *req.CorrectionFactor
	}
	if req.DotsInterval != nil {
		opts.DotsInterval = *req.DotsInterval
	}
	if req.Width != nil {
		opts.Width = *req.Width
	}
	if req.Height != nil {
		opts.Height = *req.Height
	}

	annotated, err := sequence.Assemble(m.Series(), m.FrameRate(), opts)
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}

	httputil.WriteJSONOK(w, AnnotatedToAPI(annotated))
}

// altRequest is the POST /api/models/{id}/alt body.
type altRequest struct {
	ResponseFrame int      `json:"response_frame"`
	NewDistance   *float64 `json:"new_distance"`
	Latency       float64  `json:"latency"`
}

func (s *Server) extractALT(w http.ResponseWriter, r *http.Request, id string, m stimulus.Model) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req altRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	report, err := alt.Extract(m, alt.Params{
		ResponseFrame: req.ResponseFrame,
		NewDistance:   req.NewDistance,
		Latency:       req.Latency,
	})
	if err != nil {
		httputil.WriteDomainError(w, err)
		return
	}

	reportID, err := s.db.SaveReport(id, report)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to save report: %v", err))
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"id":       reportID,
		"model_id": id,
		"report":   ReportToAPI(report, s.cfg.GetAngularUnits(), s.cfg.GetSpeedUnits()),
	})
}

func (s *Server) renderChart(w http.ResponseWriter, r *http.Request, id string, m stimulus.Model) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := plots.RenderProfileChart(m, fmt.Sprintf("Looming Profile %s", id), w); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
}

func (s *Server) renderProfilePNG(w http.ResponseWriter, r *http.Request, id string, m stimulus.Model) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := plots.WriteProfilePNG(m, fmt.Sprintf("Looming Profile %s", id), w); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render png: %v", err))
		return
	}
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	records, err := s.db.ListReports(r.URL.Query().Get("model_id"), queryLimit(r))
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list reports: %v", err))
		return
	}
	if records == nil {
		records = []db.ReportRecord{}
	}
	httputil.WriteJSONOK(w, records)
}

func (s *Server) listTriggerEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	events, err := s.db.ListTriggerEvents(queryLimit(r))
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list trigger events: %v", err))
		return
	}
	if events == nil {
		events = []db.TriggerEvent{}
	}
	httputil.WriteJSONOK(w, events)
}

func (s *Server) sendCommandHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.trigger == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no trigger box attached")
		return
	}

	command := strings.TrimSpace(r.FormValue("command"))
	if command == "" {
		httputil.BadRequest(w, "missing command")
		return
	}
	if !trigger.IsAllowedCommand(command) {
		httputil.BadRequest(w, fmt.Sprintf("command %q is not allowed", command))
		return
	}

	if err := s.trigger.SendCommand(command); err != nil {
		httputil.InternalServerError(w, "failed to send command")
		return
	}
	io.WriteString(w, "Command sent successfully")
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	httputil.WriteJSONOK(w, map[string]interface{}{
		"frame_rate":        s.cfg.GetFrameRate(),
		"screen_distance":   s.cfg.GetScreenDistance(),
		"correction_factor": s.cfg.GetCorrectionFactor(),
		"screen_width":      s.cfg.GetScreenWidth(),
		"screen_height":     s.cfg.GetScreenHeight(),
		"dots_interval":     s.cfg.GetDotsInterval(),
		"angular_units":     s.cfg.GetAngularUnits(),
		"speed_units":       s.cfg.GetSpeedUnits(),
	})
}

// queryLimit parses an optional positive "limit" query parameter.
func queryLimit(r *http.Request) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			return parsed
		}
	}
	return 0
}
