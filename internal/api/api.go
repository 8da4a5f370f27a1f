package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gur-shatz/filehash/internal/watcher"
)

// Source is what the API reports on; *watcher.Watcher satisfies it.
type Source interface {
	Snapshot() watcher.Snapshot
	Trigger()
}

// Server exposes the watched digest over HTTP.
type Server struct {
	source Source
}

// New creates a Server for source.
func New(source Source) *Server {
	return &Server{source: source}
}

// DigestStatus is the body of GET /digest.
type DigestStatus struct {
	Algorithm string    `json:"algorithm"`
	Digest    string    `json:"digest"`
	Files     int       `json:"files"`
	Failed    []string  `json:"failed,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileEntry is one element of GET /files.
type FileEntry struct {
	Path   string `json:"path"`
	Digest string `json:"digest"`
}

// Routes returns a chi.Router with all API routes mounted.
// Caller mounts it at any prefix: mainRouter.Mount("/api", srv.Routes())
func (this *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", this.handleHealth)
	r.Get("/digest", this.handleDigest)
	r.Get("/files", this.handleFiles)
	r.Post("/rehash", this.handleRehash)

	return r
}

func (this *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (this *Server) handleDigest(w http.ResponseWriter, r *http.Request) {
	snap := this.source.Snapshot()
	if snap.Digest == "" {
		writeError(w, http.StatusNotFound, "no files hashed yet")
		return
	}
	writeJSON(w, http.StatusOK, DigestStatus{
		Algorithm: snap.Algorithm,
		Digest:    snap.Digest,
		Files:     snap.Files(),
		Failed:    snap.Failed,
		UpdatedAt: snap.UpdatedAt,
	})
}

func (this *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	snap := this.source.Snapshot()

	files := make([]FileEntry, 0, len(snap.Entries))
	for path, digest := range snap.Entries {
		files = append(files, FileEntry{Path: path, Digest: digest})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	writeJSON(w, http.StatusOK, files)
}

func (this *Server) handleRehash(w http.ResponseWriter, r *http.Request) {
	this.source.Trigger()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "rehashing"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
