package scan

import (
	"errors"
	"fmt"
	"hash"
	"io"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gur-shatz/filehash/pkg/algo"
	"github.com/gur-shatz/filehash/pkg/filehash"
)

// Options controls a manifest scan.
type Options struct {
	Roots      []string
	Matcher    filehash.Matcher // nil keeps every regular file
	Algorithm  string
	Workers    int // <= 0 means runtime.NumCPU()
	ChunkSize  int
	OnProgress filehash.ProgressFunc
}

// File is one successfully hashed file.
type File struct {
	Path   string // path as collected, usable with os.Open
	Key    string // manifest key: slash path relative to the root
	Digest string
}

// Result holds the scanned files in collection order.
type Result struct {
	Algorithm string
	Files     []File
	Failed    []filehash.Progress
}

// Entries returns the manifest map of key -> digest.
func (this *Result) Entries() map[string]string {
	entries := make(map[string]string, len(this.Files))
	for _, f := range this.Files {
		entries[f.Key] = f.Digest
	}
	return entries
}

// Paths returns the hashed file paths in collection order.
func (this *Result) Paths() []string {
	paths := make([]string, len(this.Files))
	for i, f := range this.Files {
		paths[i] = f.Path
	}
	return paths
}

// ErrChanged is returned by Aggregate when a file no longer matches the
// digest recorded by Scan.
var ErrChanged = errors.New("file changed during scan")

// Aggregate folds every successfully scanned file into one fresh hash with a
// single worker, giving the reproducible form of the cumulative digest.
//
// The files are read a second time. Each one is checked against the digest
// Scan recorded while it streams, so a file that changed or became
// unreadable in between yields ErrChanged instead of a digest that
// disagrees with Entries.
func (this *Result) Aggregate(chunkSize int) (string, error) {
	shared, err := algo.New(this.Algorithm)
	if err != nil {
		return "", err
	}

	for _, f := range this.Files {
		fresh, err := algo.New(this.Algorithm)
		if err != nil {
			return "", err
		}

		running, err := filehash.HashFile(f.Path, teeHash{Hash: shared, also: fresh}, filehash.WithChunkSize(chunkSize))
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrChanged, f.Key, err)
		}
		if filehash.LowerHex(fresh) != f.Digest {
			return "", fmt.Errorf("%w: %s", ErrChanged, f.Key)
		}
		shared.Write([]byte(running))
	}

	return filehash.LowerHex(shared), nil
}

// teeHash sends every write to also as well as the embedded hash. Sums come
// from the embedded hash only.
type teeHash struct {
	hash.Hash
	also io.Writer
}

func (this teeHash) Write(p []byte) (int, error) {
	this.also.Write(p)
	return this.Hash.Write(p)
}

type collected struct {
	path string
	key  string
}

// Scan collects the files under opts.Roots and hashes each one with its own
// fresh hash. Unreadable files land in Result.Failed and are reported through
// OnProgress, mirroring filehash.HashFiles. No files at all is ErrNoFiles.
func Scan(opts Options) (*Result, error) {
	if opts.Algorithm == "" {
		opts.Algorithm = algo.Default
	}
	if !algo.IsSupported(opts.Algorithm) {
		return nil, fmt.Errorf("scan: %w: %s", algo.ErrUnsupported, opts.Algorithm)
	}

	files := collect(opts.Roots, opts.Matcher)
	if len(files) == 0 {
		return nil, filehash.ErrNoFiles
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	type outcome struct {
		digest string
		err    error
	}
	outcomes := make([]chan outcome, len(files))
	for i := range outcomes {
		outcomes[i] = make(chan outcome, 1)
	}

	var pool errgroup.Group
	pool.SetLimit(workers)

	go func() {
		for i, f := range files {
			out := outcomes[i]
			pool.Go(func() error {
				digest, err := hashOne(f.path, opts.Algorithm, opts.ChunkSize)
				out <- outcome{digest: digest, err: err}
				return nil
			})
		}
	}()

	result := &Result{Algorithm: opts.Algorithm, Files: make([]File, 0, len(files))}
	var done uint64
	for i, out := range outcomes {
		o := <-out
		if o.err != nil {
			p := filehash.Progress{
				Kind: filehash.Failed,
				Path: files[i].path,
				Err:  &filehash.FileError{Path: files[i].path, Err: o.err},
			}
			result.Failed = append(result.Failed, p)
			report(opts.OnProgress, p)
			continue
		}
		done++
		result.Files = append(result.Files, File{Path: files[i].path, Key: files[i].key, Digest: o.digest})
		report(opts.OnProgress, filehash.Progress{Kind: filehash.Yielded, Done: done, Path: files[i].path})
	}
	pool.Wait()

	return result, nil
}

func hashOne(path, algorithm string, chunkSize int) (string, error) {
	h, err := algo.New(algorithm)
	if err != nil {
		return "", err
	}
	return filehash.HashFile(path, h, filehash.WithChunkSize(chunkSize))
}

// collect keys files relative to their root. With several roots the root
// itself is kept in the key so entries cannot collide.
func collect(roots []string, matcher filehash.Matcher) []collected {
	var opts []filehash.Option
	if matcher != nil {
		opts = append(opts, filehash.WithMatcher(matcher))
	}

	var files []collected
	for _, root := range roots {
		for _, path := range filehash.CollectFiles([]string{root}, opts...) {
			files = append(files, collected{path: path, key: keyFor(root, path, len(roots) > 1)})
		}
	}
	return files
}

func keyFor(root, path string, keepRoot bool) string {
	if keepRoot {
		return filepath.ToSlash(filepath.Clean(path))
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

func report(fn filehash.ProgressFunc, p filehash.Progress) {
	if fn != nil {
		fn(p)
	}
}

// FormatDuration formats a duration as seconds with one decimal place.
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
