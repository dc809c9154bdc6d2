package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/d-dboss/Worksite-Appendix-Creator/internal/config"
	"github.com/d-dboss/Worksite-Appendix-Creator/internal/document"
	"github.com/d-dboss/Worksite-Appendix-Creator/internal/pipeline"
	"github.com/d-dboss/Worksite-Appendix-Creator/internal/render"
	"github.com/d-dboss/Worksite-Appendix-Creator/internal/scanner"
)

// ValidationError represents a field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type APIErrorResponse struct {
	Message string `json:"message"`
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(APIErrorResponse{Message: message})
}

func writeValidationError(w http.ResponseWriter, field, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(ValidationError{
		Field:   field,
		Message: message,
	})
}

type BrowseResponse struct {
	Path    string     `json:"path"`
	Entries []DirEntry `json:"entries"`
	Error   string     `json:"error,omitempty"`
}

type DirEntry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		homeDir, _ := os.UserHomeDir()
		path = homeDir
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeAPIError(w, http.StatusNotFound, err.Error())
			return
		}
		if errors.Is(err, os.ErrPermission) {
			writeAPIError(w, http.StatusForbidden, err.Error())
			return
		}
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var dirEntries []DirEntry
	for _, entry := range entries {
		if entry.Name()[0] == '.' {
			continue
		}
		dirEntries = append(dirEntries, DirEntry{
			Name:  entry.Name(),
			Path:  filepath.Join(path, entry.Name()),
			IsDir: entry.IsDir(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(BrowseResponse{
		Path:    path,
		Entries: dirEntries,
	})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	m, err := config.NewSettingsManager()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts, err := m.LoadLastOptions()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(opts)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var opts config.LastOptions
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := config.NewSettingsManager()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := m.SaveLastOptions(&opts); err != nil {
		var validationErr *config.ValidationError
		if errors.As(err, &validationErr) {
			writeValidationError(w, validationErr.Field, validationErr.Message)
			return
		}

		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

var runMutex sync.Mutex

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if !runMutex.TryLock() {
		writeAPIError(w, http.StatusConflict, "a run is already in progress")
		return
	}

	var cfg config.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		runMutex.Unlock()
		writeAPIError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := cfg.Validate(); err != nil {
		runMutex.Unlock()
		var validationErr *config.ValidationError
		if errors.As(err, &validationErr) {
			writeValidationError(w, validationErr.Field, validationErr.Message)
			return
		}

		writeAPIError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "started"})

	go func() {
		defer runMutex.Unlock()
		defer func() {
			if r := recover(); r != nil {
				s.broadcastProgress(pipeline.ProgressUpdate{Type: "error", Error: fmt.Sprintf("internal error: %v", r)})
			}
		}()

		s.runGenerate(&cfg)
	}()
}

// runGenerate executes one full run: scan, build records, render
// companion images, assemble the document, clean up temp files.
func (s *Server) runGenerate(cfg *config.Config) {
	ctx := context.Background()
	start := time.Now()

	s.broadcastProgress(pipeline.ProgressUpdate{Type: "stage", Message: "scanning " + cfg.Source})

	paths, err := scanner.New(nil).Scan(cfg.Source)
	if err != nil {
		s.broadcastProgress(pipeline.ProgressUpdate{Type: "error", Error: err.Error()})
		return
	}
	if len(paths) == 0 {
		s.broadcastProgress(pipeline.ProgressUpdate{Type: "error", Error: "no photos found in " + cfg.Source})
		return
	}

	p := pipeline.New(pipeline.Options{
		Jobs:            cfg.Jobs,
		TempDir:         cfg.TempDir,
		ExifToolTimeout: time.Duration(cfg.ExifToolTimeoutSec) * time.Second,
	})
	defer p.Close()

	p.SetProgressCallback(func(update pipeline.ProgressUpdate) {
		s.broadcastProgress(update)
	})

	records := p.Process(ctx, paths)
	defer p.Cleanup(records)

	entries := make([]document.Entry, len(records))
	var rendered []string
	if cfg.IncludeMaps {
		s.broadcastProgress(pipeline.ProgressUpdate{Type: "stage", Message: "rendering maps"})
		maps := render.NewMapRenderer(cfg.TempDir, cfg.MapZoom, cfg.MapSizePx)
		compass := render.NewCompassRenderer(cfg.TempDir, cfg.MapSizePx/3)
		for i, rec := range records {
			entries[i].Record = rec
			if rec.HasLocation() {
				if path, err := maps.Render(ctx, *rec.Latitude, *rec.Longitude); err == nil {
					entries[i].MapPath = path
					rendered = append(rendered, path)
				}
			}
			if rec.Heading != nil {
				if path, err := compass.Render(*rec.Heading); err == nil {
					entries[i].CompassPath = path
					rendered = append(rendered, path)
				}
			}
		}
	} else {
		for i, rec := range records {
			entries[i].Record = rec
		}
	}
	defer render.CleanupFiles(rendered)

	s.broadcastProgress(pipeline.ProgressUpdate{Type: "stage", Message: "writing " + cfg.Output})
	if err := document.Create(entries, cfg.Output, cfg.ImagesPerPage); err != nil {
		s.broadcastProgress(pipeline.ProgressUpdate{Type: "error", Error: err.Error()})
		return
	}

	s.broadcastProgress(pipeline.ProgressUpdate{
		Type:    "done",
		Summary: pipeline.Summarize(records, start),
	})
}

func (s *Server) broadcastJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.hub.broadcast <- data
}

func (s *Server) broadcastProgress(update pipeline.ProgressUpdate) {
	s.broadcastJSON(update)
}

// Version handler

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"version": s.version})
}
