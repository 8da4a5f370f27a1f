package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/gur-shatz/filehash/internal/log"
	"github.com/gur-shatz/filehash/internal/scan"
	"github.com/gur-shatz/filehash/internal/sumfile"
	"github.com/gur-shatz/filehash/pkg/filehash"
)

// Defaults applied by New for non-positive durations.
const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultDebounce     = 200 * time.Millisecond
)

// Snapshot is the state of the watched tree after a scan.
type Snapshot struct {
	Algorithm string            `json:"algorithm"`
	Digest    string            `json:"digest"`
	Entries   map[string]string `json:"-"`
	Failed    []string          `json:"failed,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Files is the number of files folded into Digest.
func (this Snapshot) Files() int {
	return len(this.Entries)
}

// OnChangeFunc is called, after debouncing, when a rescan finds changes.
type OnChangeFunc func(snap Snapshot, changes sumfile.ChangeSet)

// Watcher re-hashes the scanned roots when fsnotify reports activity, or on
// every poll tick when fsnotify is unavailable.
type Watcher struct {
	opts         scan.Options
	pollInterval time.Duration
	debounce     time.Duration
	onChange     OnChangeFunc
	log          *log.Logger

	trigger     chan struct{}
	mu          sync.RWMutex
	current     Snapshot
	fsw         *fsnotify.Watcher
	trackedDirs map[string]bool
}

// New creates a new Watcher.
func New(opts scan.Options, pollInterval, debounce time.Duration, onChange OnChangeFunc, logger *log.Logger) *Watcher {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if debounce < 0 {
		debounce = 0
	}
	return &Watcher{
		opts:         opts,
		pollInterval: pollInterval,
		debounce:     debounce,
		onChange:     onChange,
		log:          logger,
		trigger:      make(chan struct{}, 1),
	}
}

// Init performs the initial scan. An empty tree is not an error; the
// snapshot simply has no digest until files appear.
func (this *Watcher) Init() error {
	snap, err := this.scan()
	if err != nil {
		return err
	}
	this.mu.Lock()
	this.current = snap
	this.mu.Unlock()
	return nil
}

// Snapshot returns the latest scan state.
func (this *Watcher) Snapshot() Snapshot {
	this.mu.RLock()
	defer this.mu.RUnlock()
	return this.current
}

// Trigger requests a rescan on the next poll tick.
func (this *Watcher) Trigger() {
	select {
	case this.trigger <- struct{}{}:
	default:
	}
}

// Run starts the watch loop. Blocks until the context is cancelled.
func (this *Watcher) Run(ctx context.Context) {
	var events <-chan fsnotify.Event
	var fsErrors <-chan error

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		this.log.Error("fsnotify init failed: %v, falling back to polling", err)
	} else {
		this.fsw = fsw
		defer this.fsw.Close()
		this.syncDirs()
		events, fsErrors = fsw.Events, fsw.Errors
		this.log.Verbose("Watching %d directories via fsnotify", len(this.trackedDirs))
	}

	pollTicker := time.NewTicker(this.pollInterval)
	defer pollTicker.Stop()

	var debounceTimer *time.Timer
	var debounceC <-chan time.Time
	var pending *sumfile.ChangeSet
	dirty := false

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			dirty = true
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					this.syncDirs()
				}
			}

		case _, ok := <-fsErrors:
			if !ok {
				fsErrors = nil
				continue
			}
			// On any fsnotify error (including overflow), force a scan
			dirty = true

		case <-this.trigger:
			dirty = true

		case <-pollTicker.C:
			if !dirty && this.fsw != nil {
				continue
			}
			dirty = false

			changes, err := this.rescan()
			if err != nil {
				// The tree moved under the scan; try again next tick.
				this.log.Verbose("rescan failed: %v", err)
				dirty = true
				continue
			}
			if changes.IsEmpty() {
				continue
			}
			if this.fsw != nil {
				this.syncDirs()
			}

			if pending == nil {
				pending = &changes
			} else {
				pending = mergeChanges(pending, &changes)
			}

			if debounceTimer == nil {
				debounceTimer = time.NewTimer(this.debounce)
			} else {
				debounceTimer.Stop()
				debounceTimer.Reset(this.debounce)
			}
			debounceC = debounceTimer.C

		case <-debounceC:
			debounceC = nil
			if pending != nil && !pending.IsEmpty() && this.onChange != nil {
				this.onChange(this.Snapshot(), *pending)
			}
			pending = nil
		}
	}
}

// rescan replaces the current snapshot if anything changed.
func (this *Watcher) rescan() (sumfile.ChangeSet, error) {
	snap, err := this.scan()
	if err != nil {
		return sumfile.ChangeSet{}, err
	}

	this.mu.Lock()
	defer this.mu.Unlock()

	changes := sumfile.Diff(this.current.Entries, snap.Entries)
	if !changes.IsEmpty() {
		this.current = snap
	}
	return changes, nil
}

func (this *Watcher) scan() (Snapshot, error) {
	snap := Snapshot{Algorithm: this.opts.Algorithm, UpdatedAt: time.Now()}

	result, err := scan.Scan(this.opts)
	if errors.Is(err, filehash.ErrNoFiles) {
		return snap, nil
	}
	if err != nil {
		return snap, err
	}

	snap.Algorithm = result.Algorithm
	snap.Entries = result.Entries()
	for _, f := range result.Failed {
		snap.Failed = append(snap.Failed, f.Path)
	}
	if len(result.Files) > 0 {
		if snap.Digest, err = result.Aggregate(this.opts.ChunkSize); err != nil {
			return snap, err
		}
	}
	return snap, nil
}

// syncDirs watches every directory below the roots and drops watches on
// directories that are gone.
func (this *Watcher) syncDirs() {
	dirs := make(map[string]bool)
	for _, root := range this.opts.Roots {
		filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				dirs[path] = true
			}
			return nil
		})
	}

	for dir := range this.trackedDirs {
		if !dirs[dir] {
			this.fsw.Remove(dir)
		}
	}
	for dir := range dirs {
		if this.trackedDirs[dir] {
			continue
		}
		if err := this.fsw.Add(dir); err != nil {
			this.log.Warn("watch %s: %v", dir, err)
			delete(dirs, dir)
			continue
		}
		this.log.Verbose("Watching directory: %s", dir)
	}
	this.trackedDirs = dirs
}

// mergeChanges combines two changesets.
func mergeChanges(a, b *sumfile.ChangeSet) *sumfile.ChangeSet {
	seen := make(map[string]bool)
	result := &sumfile.ChangeSet{}

	for _, f := range append(a.Added, b.Added...) {
		if !seen[f] {
			result.Added = append(result.Added, f)
			seen[f] = true
		}
	}
	for _, f := range append(a.Modified, b.Modified...) {
		if !seen[f] {
			result.Modified = append(result.Modified, f)
			seen[f] = true
		}
	}
	for _, f := range append(a.Removed, b.Removed...) {
		if !seen[f] {
			result.Removed = append(result.Removed, f)
			seen[f] = true
		}
	}
	return result
}
