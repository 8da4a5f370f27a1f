package filehash

import (
	"hash"
	"io"
	"os"
)

// HashFile streams the file at path through h and returns the hex digest of
// h afterwards. h is not reset, so bytes already written to it count too.
//
// Open and read errors are returned as the *fs.PathError produced by the os
// package. Chunks read before a read error have already been written to h.
func HashFile(path string, h hash.Hash, opts ...Option) (string, error) {
	o := newOptions(opts)
	if err := hashFile(path, h, o.chunkSize); err != nil {
		return "", err
	}
	return LowerHex(h), nil
}

func hashFile(path string, h hash.Hash, chunkSize int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return feed(f, h, make([]byte, chunkSize))
}

// feed copies r into h one buffer at a time. io.Copy is avoided because
// *os.File's WriterTo ignores the caller's buffer size.
func feed(r io.Reader, h hash.Hash, buf []byte) error {
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
