// Package filehash computes a single cumulative digest over a file, a list
// of files, or whole directory trees.
//
// Every function takes a caller-owned hash.Hash. Per-file digests are folded
// back into that same hash, so the returned hex string represents the whole
// set. The hash is never reset; pass a fresh one per operation unless a
// compounded digest is wanted.
//
//	h, _ := blake2s.New256(nil)
//	digest, err := filehash.HashFolder("./models", h, 8, func(p filehash.Progress) {
//		if p.Kind == filehash.Failed {
//			log.Printf("skip %s: %v", p.Path, p.Err)
//		}
//	})
package filehash

import (
	"errors"
	"fmt"
	"io/fs"
)

// PageSize is the default read chunk size.
const PageSize = 4096

// ErrNoFiles is returned when there is nothing to hash. It matches
// fs.ErrInvalid.
var ErrNoFiles = fmt.Errorf("no files to hash: %w", fs.ErrInvalid)

// FileError is the error carried by a Failed progress event.
type FileError struct {
	Path string
	Err  error
}

func (this *FileError) Error() string {
	var pathErr *fs.PathError
	if errors.As(this.Err, &pathErr) && pathErr.Path == this.Path {
		return this.Err.Error()
	}
	return fmt.Sprintf("%s: %v", this.Path, this.Err)
}

func (this *FileError) Unwrap() error {
	return this.Err
}
