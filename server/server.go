// Package server exposes the spectrogram pipeline as an HTTP service:
// asynchronous upload-and-render tasks with progress polling, synchronous
// previews, file downloads, stale-file cleanup, and a websocket stream of
// matrix frames as they are built.
package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sonogrid/sonogrid/logging"
	"github.com/sonogrid/sonogrid/render"
	"github.com/sonogrid/sonogrid/spectrogram"
	"github.com/sonogrid/sonogrid/spectrogram/config"
	"github.com/sonogrid/sonogrid/transcode"
)

// Server wires the analysis pipeline behind the HTTP surface
type Server struct {
	cfg    *Config
	store  *TaskStore
	hub    *LiveHub
	mux    *http.ServeMux
	logger logging.Logger
}

// New creates a server and its upload/output directories
func New(cfg *Config) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	for _, dir := range []string{cfg.UploadDir, cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	s := &Server{
		cfg:   cfg,
		store: NewTaskStore(),
		hub:   NewLiveHub(),
		logger: logging.WithFields(logging.Fields{
			"component": "server",
		}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/upload", s.handleUpload)
	mux.HandleFunc("GET /api/task/{id}", s.handleTask)
	mux.HandleFunc("POST /api/preview", s.handlePreview)
	mux.HandleFunc("GET /api/download/{filename}", s.handleDownload)
	mux.HandleFunc("DELETE /api/cleanup", s.handleCleanup)
	mux.HandleFunc("GET /api/live/{id}", s.handleLive)
	s.mux = mux

	return s, nil
}

// Handler returns the HTTP handler for the service
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe runs the service on the configured address
func (s *Server) ListenAndServe() error {
	s.logger.Info("listening", logging.Fields{
		"addr": s.cfg.Addr,
	})
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// renderParams are the per-request pipeline knobs
type renderParams struct {
	Palette config.PaletteType
	Scale   config.ScaleType
	FFTSize int
	Mode    config.Mode
}

// parseRenderParams reads colormap/scale/fft_size/mode form values,
// filling defaults for missing ones
func parseRenderParams(r *http.Request) (renderParams, error) {
	p := renderParams{
		Palette: config.PaletteInferno,
		Scale:   config.ScaleLog,
		FFTSize: 2048,
		Mode:    config.ModeClassic,
	}

	var err error
	if v := r.FormValue("colormap"); v != "" {
		if p.Palette, err = config.ParsePaletteType(v); err != nil {
			return p, err
		}
	}
	if v := r.FormValue("scale"); v != "" {
		if p.Scale, err = config.ParseScaleType(v); err != nil {
			return p, err
		}
	}
	if v := r.FormValue("mode"); v != "" {
		if p.Mode, err = config.ParseMode(v); err != nil {
			return p, err
		}
	}
	if v := r.FormValue("fft_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("invalid fft_size: %w", err)
		}
		p.FFTSize = n
	}

	cfg := config.DefaultAnalysisConfig()
	cfg.FFTSize = p.FFTSize
	if err := cfg.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func (p renderParams) buildConfig() *config.BuildConfig {
	cfg := config.DefaultBuildConfig()
	cfg.Analysis.FFTSize = p.FFTSize
	cfg.Mode = p.Mode
	return cfg
}

// hash returns a short digest of the parameter set, used for preview
// filenames so identical settings reuse one file name per upload
func (p renderParams) hash() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%s", p.Palette, p.Scale, p.FFTSize, p.Mode)))
	return hex.EncodeToString(sum[:4])
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "online",
		"supported_formats": transcode.Formats(),
		"max_file_size_mb":  s.cfg.MaxUploadMB,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, params, err := s.acceptUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	task := s.store.Create()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	uploadPath := filepath.Join(s.cfg.UploadDir, task.ID+ext)
	if err := saveUpload(file, uploadPath); err != nil {
		s.store.Fail(task.ID, err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	stem := strings.TrimSuffix(filepath.Base(header.Filename), ext)
	if stem == "" {
		stem = "audio"
	}

	go s.process(task.ID, uploadPath, stem, params)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"task_id": task.ID,
		"message": "upload accepted, processing started",
	})
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	file, header, params, err := s.acceptUpload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	defer file.Close()

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	data, err := transcode.Decode(file, ext)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	matrix, err := s.buildMatrix(data, params, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	height := s.cfg.PreviewWidth * 9 / 16
	filename := fmt.Sprintf("%s_%s_preview.png", newTaskID(), params.hash())
	outPath := filepath.Join(s.cfg.OutputDir, filename)
	if err := s.renderToFile(matrix, params, s.cfg.PreviewWidth, height, outPath); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"preview_url":    "/api/download/" + filename,
		"filename":       filename,
		"duration":       matrix.Duration(),
		"sample_rate":    matrix.SampleRate,
		"frequency_bins": matrix.BinCount,
		"time_frames":    matrix.FrameCount,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	// Base strips any traversal components from the requested name.
	filename := filepath.Base(r.PathValue("filename"))
	path := filepath.Join(s.cfg.OutputDir, filename)

	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("file not found: %s", filename))
		return
	}
	http.ServeFile(w, r, path)
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	maxAge := s.cfg.MaxAgeHours
	if v := r.URL.Query().Get("max_age_hours"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid max_age_hours: %q", v))
			return
		}
		maxAge = n
	}

	cutoff := time.Now().Add(-time.Duration(maxAge) * time.Hour)
	removed := 0
	for _, dir := range []string{s.cfg.OutputDir, s.cfg.UploadDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil || entry.IsDir() {
				continue
			}
			if info.ModTime().Before(cutoff) {
				if os.Remove(filepath.Join(dir, entry.Name())) == nil {
					removed++
				}
			}
		}
	}

	s.logger.Info("cleanup finished", logging.Fields{
		"removed":       removed,
		"max_age_hours": maxAge,
	})
	writeJSON(w, http.StatusOK, map[string]any{"removed_files": removed})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.store.Get(id); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	s.hub.Subscribe(w, r, id)
}

// acceptUpload parses the multipart form, validates the file and the
// pipeline parameters, and returns the opened part
func (s *Server) acceptUpload(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, renderParams, error) {
	var params renderParams

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes())
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes()); err != nil {
		return nil, nil, params, fmt.Errorf("%w: %v", ErrFileTooLarge, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, params, fmt.Errorf("missing file field: %w", err)
	}

	ext := strings.TrimPrefix(filepath.Ext(header.Filename), ".")
	if !transcode.Supported(ext) {
		file.Close()
		return nil, nil, params, fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFormat, ext, strings.Join(transcode.Formats(), ", "))
	}

	params, err = parseRenderParams(r)
	if err != nil {
		file.Close()
		return nil, nil, params, err
	}

	return file, header, params, nil
}

// process runs the full pipeline for an uploaded file: decode, build
// (streaming frames to live subscribers), pack, and render. The upload
// is removed afterwards in every outcome.
func (s *Server) process(taskID, uploadPath, stem string, params renderParams) {
	defer os.Remove(uploadPath)

	s.store.SetProgress(taskID, 5, "decoding audio")

	data, err := transcode.DecodeFile(uploadPath)
	if err != nil {
		s.finishWithError(taskID, err)
		return
	}

	s.store.SetProgress(taskID, 10, "analyzing audio")

	matrix, err := s.buildMatrix(data, params, func(index, total int, frame []uint8) {
		// Analysis covers progress 10..80.
		s.store.SetProgress(taskID, 10+(index+1)*70/total, "analyzing audio")
		s.hub.Broadcast(FrameMessage{
			TaskID: taskID,
			Index:  index,
			Total:  total,
			Frame:  frame,
		})
	})
	if err != nil {
		s.finishWithError(taskID, err)
		return
	}

	s.store.SetProgress(taskID, 85, "rendering spectrogram")

	filename := fmt.Sprintf("%s_%s_2d.png", taskID, stem)
	outPath := filepath.Join(s.cfg.OutputDir, filename)
	if err := s.renderToFile(matrix, params, s.cfg.RenderWidth, s.cfg.RenderHeight, outPath); err != nil {
		s.finishWithError(taskID, err)
		return
	}

	s.store.Complete(taskID, &TaskResult{
		URL:           "/api/download/" + filename,
		Filename:      filename,
		Duration:      matrix.Duration(),
		SampleRate:    matrix.SampleRate,
		FrequencyBins: matrix.BinCount,
		TimeFrames:    matrix.FrameCount,
	})
	s.hub.CloseTask(taskID, TaskCompleted)

	s.logger.Info("task completed", logging.Fields{
		"task_id": taskID,
		"file":    filename,
		"frames":  matrix.FrameCount,
	})
}

func (s *Server) finishWithError(taskID string, err error) {
	s.store.Fail(taskID, err)
	s.hub.CloseTask(taskID, TaskError)
	s.logger.Error(err, "task failed", logging.Fields{
		"task_id": taskID,
	})
}

// buildMatrix runs the offline builder with the request parameters
func (s *Server) buildMatrix(data *transcode.AudioData, params renderParams, onFrame func(int, int, []uint8)) (*spectrogram.Matrix, error) {
	builder, err := spectrogram.NewBuilder(params.buildConfig())
	if err != nil {
		return nil, err
	}
	builder.OnFrame = onFrame
	return builder.Build(data.PCM, data.SampleRate)
}

// renderToFile packs the matrix onto a width x height grid and writes
// the colored heat-map
func (s *Server) renderToFile(m *spectrogram.Matrix, params renderParams, width, height int, path string) error {
	display := config.DefaultDisplayConfig()
	display.Width = width
	display.Height = height
	display.Scale = params.Scale
	display.Palette = params.Palette

	packer, err := spectrogram.NewPacker(display)
	if err != nil {
		return err
	}
	grid, err := packer.Pack(m)
	if err != nil {
		return err
	}

	renderer, err := render.NewImageRenderer(params.Palette)
	if err != nil {
		return err
	}
	return renderer.Save(path, grid, render.DefaultImageOptions())
}

func saveUpload(src multipart.File, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("saving upload: %w", err)
	}
	defer dst.Close()

	if _, err := dst.ReadFrom(src); err != nil {
		return fmt.Errorf("saving upload: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error(err, "encoding response", logging.Fields{
			"component": "server",
		})
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}
