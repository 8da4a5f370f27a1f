package filehash

import (
	"hash"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// HashFiles hashes paths on a pool of workers and folds everything into h.
//
// Each worker streams its file into the shared h and then writes the
// resulting hex digest into h as well. Writes from different workers
// interleave in scheduling order, so with more than one worker the final
// digest is not reproducible across runs. With workers == 1 it is.
//
// Results are collected in submission order: the n-th successful file yields
// Done == n. A file that fails is reported as Failed and does not fail the
// call. Its hex digest is never folded in. A file that cannot be opened
// contributes nothing, but one whose read fails partway has already streamed
// the chunks read before the error into h, and those stay. workers <= 0
// means runtime.NumCPU().
//
// An empty paths slice returns ErrNoFiles without touching h.
func HashFiles(paths []string, h hash.Hash, workers int, onProgress ProgressFunc, opts ...Option) (string, error) {
	if len(paths) == 0 {
		return "", ErrNoFiles
	}

	o := newOptions(opts)
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	shared := &guardedHash{h: h}

	results := make([]chan error, len(paths))
	for i := range results {
		results[i] = make(chan error, 1)
	}

	var pool errgroup.Group
	pool.SetLimit(workers)

	go func() {
		for i, path := range paths {
			result := results[i]
			pool.Go(func() error {
				result <- foldFile(path, shared, o.chunkSize)
				return nil
			})
		}
	}()

	var done uint64
	for i, result := range results {
		if err := <-result; err != nil {
			onProgress.report(Progress{
				Kind: Failed,
				Path: paths[i],
				Err:  &FileError{Path: paths[i], Err: err},
			})
			continue
		}
		done++
		onProgress.report(Progress{Kind: Yielded, Done: done, Path: paths[i]})
	}
	pool.Wait()

	return LowerHex(shared), nil
}

func foldFile(path string, shared *guardedHash, chunkSize int) error {
	if err := hashFile(path, shared, chunkSize); err != nil {
		return err
	}
	shared.Write([]byte(LowerHex(shared)))
	return nil
}
