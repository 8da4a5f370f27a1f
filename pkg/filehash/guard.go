package filehash

import (
	"hash"
	"sync"
)

// guardedHash serializes access to a hash shared by pool workers.
type guardedHash struct {
	mu sync.Mutex
	h  hash.Hash
}

func (this *guardedHash) Write(p []byte) (int, error) {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.h.Write(p)
}

func (this *guardedHash) Sum(b []byte) []byte {
	this.mu.Lock()
	defer this.mu.Unlock()
	return this.h.Sum(b)
}

func (this *guardedHash) Reset() {
	this.mu.Lock()
	defer this.mu.Unlock()
	this.h.Reset()
}

func (this *guardedHash) Size() int      { return this.h.Size() }
func (this *guardedHash) BlockSize() int { return this.h.BlockSize() }
