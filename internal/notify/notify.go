package notify

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/gur-shatz/filehash/internal/sumfile"
	"github.com/gur-shatz/filehash/pkg/filehash"
)

// Event types emitted as stdout protocol lines.
const (
	EventProgress = "progress"
	EventFailed   = "failed"
	EventDigest   = "digest"
	EventChanged  = "changed"
	EventDrift    = "drift"
	EventStopping = "stopping"
)

// Event is the JSON payload for a protocol line.
type Event struct {
	Type      string   `json:"type"`
	Done      uint64   `json:"done,omitempty"`
	Total     int      `json:"total,omitempty"`
	Path      string   `json:"path,omitempty"`
	Error     string   `json:"error,omitempty"`
	Algorithm string   `json:"algorithm,omitempty"`
	Digest    string   `json:"digest,omitempty"`
	Files     int      `json:"files,omitempty"`
	Failed    int      `json:"failed,omitempty"`
	ElapsedMs int64    `json:"elapsed_ms,omitempty"`
	Added     []string `json:"added,omitempty"`
	Modified  []string `json:"modified,omitempty"`
	Removed   []string `json:"removed,omitempty"`
}

// Notifier emits structured protocol lines to a writer.
type Notifier struct {
	mu sync.Mutex
	w  io.Writer
}

// New creates a Notifier that writes to stdout.
func New() *Notifier {
	return &Notifier{w: os.Stdout}
}

// NewWithWriter creates a Notifier that writes to the given writer (for testing).
func NewWithWriter(w io.Writer) *Notifier {
	return &Notifier{w: w}
}

// Progress emits one progress or failed line for a hashed file.
func (this *Notifier) Progress(p filehash.Progress, total int) {
	if p.Kind == filehash.Failed {
		this.emit(Event{Type: EventFailed, Path: p.Path, Error: p.Err.Error(), Total: total})
		return
	}
	this.emit(Event{Type: EventProgress, Done: p.Done, Total: total, Path: p.Path})
}

// Digest emits the final aggregate of a run.
func (this *Notifier) Digest(algorithm, digest string, files, failed int, elapsed time.Duration) {
	this.emit(Event{
		Type:      EventDigest,
		Algorithm: algorithm,
		Digest:    digest,
		Files:     files,
		Failed:    failed,
		ElapsedMs: elapsed.Milliseconds(),
	})
}

// Changed emits a changed event with the new aggregate after a rescan.
func (this *Notifier) Changed(changes sumfile.ChangeSet, digest string) {
	this.emit(Event{
		Type:     EventChanged,
		Digest:   digest,
		Added:    changes.Added,
		Modified: changes.Modified,
		Removed:  changes.Removed,
	})
}

// Drift emits the differences found by a check against a sum file.
func (this *Notifier) Drift(changes sumfile.ChangeSet) {
	this.emit(Event{
		Type:     EventDrift,
		Added:    changes.Added,
		Modified: changes.Modified,
		Removed:  changes.Removed,
	})
}

// Stopping emits a stopping event on shutdown.
func (this *Notifier) Stopping() {
	this.emit(Event{Type: EventStopping})
}

func (this *Notifier) emit(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	this.mu.Lock()
	defer this.mu.Unlock()
	fmt.Fprintf(this.w, "[filehash:%s] %s\n", event.Type, data)
}
