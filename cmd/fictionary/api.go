package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/CTAG07/Fictionary/pkg/charkov"
	"github.com/CTAG07/Fictionary/pkg/library"
	"github.com/google/uuid"
)

const (
	// maxWordsPerRequest bounds the count parameter of the words endpoint.
	maxWordsPerRequest = 1000
	// maxWordlistBytes bounds uploaded wordlists.
	maxWordlistBytes = 64 << 20
)

// FictionaryAPI holds the dependencies for the /api/fictionaries handlers.
type FictionaryAPI struct {
	lib    *library.Library
	config *Config
	logger *slog.Logger
}

// NewFictionaryAPI creates a new instance of the FictionaryAPI.
func NewFictionaryAPI(lib *library.Library, config *Config, logger *slog.Logger) *FictionaryAPI {
	return &FictionaryAPI{
		lib:    lib,
		config: config,
		logger: logger,
	}
}

// RegisterRoutes sets up the routing for all /api/fictionaries endpoints.
func (f *FictionaryAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/fictionaries", f.handleListAndCreate)
	mux.HandleFunc("/api/fictionaries/", f.handleByName)
	mux.HandleFunc("/api/stats", f.handleStats)
}

// CreateFictionaryRequest compiles a fictionary from an inline word list.
type CreateFictionaryRequest struct {
	Name  string   `json:"name"`
	Words []string `json:"words"`
}

// WordsResponse is returned by the words endpoint.
type WordsResponse struct {
	Fictionary string   `json:"fictionary"`
	Words      []string `json:"words"`
}

// FictionaryResponse describes a single stored fictionary.
type FictionaryResponse struct {
	Info  library.Info       `json:"info"`
	Stats charkov.ChainStats `json:"stats"`
}

// handleListAndCreate handles GET for listing and POST for creating fictionaries.
func (f *FictionaryAPI) handleListAndCreate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		infos, err := f.lib.Infos(r.Context())
		if err != nil {
			f.logger.Error("Failed to list fictionaries", "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve fictionaries: %v", err))
			return
		}
		respondWithJSON(w, http.StatusOK, infos)

	case http.MethodPost:
		var req CreateFictionaryRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWordlistBytes)).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
			return
		}
		if err := library.ValidateName(req.Name); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.compileAndSave(w, r, req.Name, strings.NewReader(strings.Join(req.Words, "\n")))

	default:
		w.Header().Set("Allow", "GET, POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleByName routes actions for a specific fictionary: info, delete,
// compile, words and export.
func (f *FictionaryAPI) handleByName(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/fictionaries/")
	parts := strings.Split(path, "/")
	name := parts[0]

	if name == "" {
		respondWithError(w, http.StatusBadRequest, "Fictionary name not specified")
		return
	}
	if len(parts) > 2 {
		respondWithError(w, http.StatusNotFound, "Action not found")
		return
	}

	if len(parts) == 1 { // Path is just /api/fictionaries/{name}
		switch r.Method {
		case http.MethodGet:
			f.handleInfo(w, r, name)
		case http.MethodDelete:
			if err := f.lib.Remove(r.Context(), name); err != nil {
				f.respondWithLibraryError(w, name, "remove", err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			w.Header().Set("Allow", "GET, DELETE")
			respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	switch action := parts[1]; action {
	case "compile":
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", "POST")
			respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if err := library.ValidateName(name); err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		f.compileAndSave(w, r, name, http.MaxBytesReader(w, r.Body, maxWordlistBytes))

	case "words":
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		f.handleWords(w, r, name)

	case "export":
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", "GET")
			respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		f.handleExport(w, r, name)

	default:
		respondWithError(w, http.StatusNotFound, "Action not found")
	}
}

func (f *FictionaryAPI) handleInfo(w http.ResponseWriter, r *http.Request, name string) {
	info, err := f.lib.Info(r.Context(), name)
	if err != nil {
		f.respondWithLibraryError(w, name, "get", err)
		return
	}
	ch, err := f.lib.Load(r.Context(), name)
	if err != nil {
		f.respondWithLibraryError(w, name, "load", err)
		return
	}
	respondWithJSON(w, http.StatusOK, FictionaryResponse{Info: info, Stats: ch.Stats()})
}

// compileAndSave trains a new chain on the wordlist in body and stores it
// under name, replacing any previous fictionary of that name.
func (f *FictionaryAPI) compileAndSave(w http.ResponseWriter, r *http.Request, name string, body io.Reader) {
	counter := charkov.NewCounter()
	counter.SetLogger(f.logger)
	wl := charkov.NewWordlist(charkov.WithMinLength(f.config.WordlistMinLength))

	fed, err := counter.Train(r.Context(), body, wl)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Wordlist too large")
			return
		}
		f.logger.Error("Failed to train fictionary", "name", name, "error", err)
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Training failed: %v", err))
		return
	}
	if fed == 0 {
		respondWithError(w, http.StatusBadRequest, "Wordlist contains no usable words")
		return
	}

	ch, err := charkov.Compile(counter)
	if err != nil {
		f.logger.Error("Failed to compile fictionary", "name", name, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Compile failed: %v", err))
		return
	}
	if err = f.lib.Save(r.Context(), name, ch); err != nil {
		f.respondWithLibraryError(w, name, "save", err)
		return
	}
	info, err := f.lib.Info(r.Context(), name)
	if err != nil {
		f.respondWithLibraryError(w, name, "get", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, info)
}

// handleWords generates words. Query parameters count, min and max default
// to the configured values; seed makes the output reproducible.
func (f *FictionaryAPI) handleWords(w http.ResponseWriter, r *http.Request, name string) {
	q := r.URL.Query()
	count, err := intParam(q.Get("count"), f.config.Count)
	if err != nil || count < 1 || count > maxWordsPerRequest {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("count must be between 1 and %d", maxWordsPerRequest))
		return
	}
	minLength, err := intParam(q.Get("min"), f.config.MinLength)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid min parameter")
		return
	}
	maxLength, err := intParam(q.Get("max"), f.config.MaxLength)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid max parameter")
		return
	}
	if err = charkov.ValidateLengths(minLength, maxLength); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	var seed uint64
	if s := q.Get("seed"); s != "" {
		if seed, err = strconv.ParseUint(s, 10, 64); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid seed parameter")
			return
		}
	}

	ch, err := f.lib.Load(r.Context(), name)
	if err != nil {
		f.respondWithLibraryError(w, name, "load", err)
		return
	}

	rng := newRand(seed)
	words := make([]string, 0, count)
	for i := 0; i < count; i++ {
		word, err := ch.Word(rng, minLength, maxLength, charkov.WithMaxAttempts(f.config.MaxAttempts))
		if err != nil {
			if errors.Is(err, charkov.ErrIterationsExceeded) {
				respondWithError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			f.logger.Error("Failed to generate word", "name", name, "error", err)
			respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Generation failed: %v", err))
			return
		}
		words = append(words, word)
	}
	respondWithJSON(w, http.StatusOK, WordsResponse{Fictionary: name, Words: words})
}

// handleExport streams the binary fictionary, or its JSON dump with
// ?format=json.
func (f *FictionaryAPI) handleExport(w http.ResponseWriter, r *http.Request, name string) {
	ch, err := f.lib.Load(r.Context(), name)
	if err != nil {
		f.respondWithLibraryError(w, name, "load", err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "binary":
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s%s\"", name, library.FileExtension))
		if _, err = ch.WriteTo(w); err != nil {
			f.logger.Error("Failed to export fictionary", "name", name, "error", err)
		}
	case "json":
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.json\"", name))
		if err = ch.ExportJSON(w); err != nil {
			f.logger.Error("Failed to export fictionary", "name", name, "error", err)
		}
	default:
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Unknown export format %q", format))
	}
}

// handleStats returns statistics for the whole library.
func (f *FictionaryAPI) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	stats, err := f.lib.GetStats(r.Context())
	if err != nil {
		f.logger.Error("Failed to get library stats", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve stats: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

func (f *FictionaryAPI) respondWithLibraryError(w http.ResponseWriter, name, op string, err error) {
	switch {
	case errors.Is(err, library.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Fictionary not found")
	case errors.Is(err, library.ErrInvalidName):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		f.logger.Error("Library operation failed", "op", op, "name", name, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to %s fictionary: %v", op, err))
	}
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

// ServerAPI serves health and build information.
type ServerAPI struct {
	started time.Time
}

// VersionInfo defines the structure for build/version information.
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

// NewServerAPI creates a new instance of the ServerAPI.
func NewServerAPI() *ServerAPI {
	return &ServerAPI{started: time.Now()}
}

// RegisterRoutes sets up the routing for the server endpoints.
func (a *ServerAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", a.handleHealth)
	mux.HandleFunc("/api/version", a.handleVersion)
}

func (a *ServerAPI) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(a.started).Round(time.Second).String(),
	})
}

// handleVersion returns the application's build information.
func (a *ServerAPI) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	respondWithJSON(w, http.StatusOK, VersionInfo{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
	})
}

// logRequests tags every request with an ID and logs it once it is served.
func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		logger.Debug("Request served",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		err := json.NewEncoder(w).Encode(payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to encode JSON response: %v\n", err)
		}
	}
}
