// Package algo maps algorithm names to hash.Hash constructors.
package algo

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"hash"
	"sort"
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
	"lukechampine.com/blake3"
)

// Default is the algorithm used when none is configured.
const Default = "blake2s256"

// ErrUnsupported is returned by New for an unregistered name.
var ErrUnsupported = errors.New("unsupported hash algorithm")

// Factory builds a fresh hash.
type Factory func() (hash.Hash, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{
		"md5":        plain(md5.New),
		"sha1":       plain(sha1.New),
		"sha256":     plain(sha256.New),
		"sha512":     plain(sha512.New),
		"sha3-256":   plain(sha3.New256),
		"sha3-512":   plain(sha3.New512),
		"blake2s256": func() (hash.Hash, error) { return blake2s.New256(nil) },
		"blake2b256": func() (hash.Hash, error) { return blake2b.New256(nil) },
		"blake2b512": func() (hash.Hash, error) { return blake2b.New512(nil) },
		"blake3":     func() (hash.Hash, error) { return blake3.New(32, nil), nil },
	}
)

func plain(fn func() hash.Hash) Factory {
	return func() (hash.Hash, error) {
		return fn(), nil
	}
}

// Register adds a named factory. Names are case-sensitive and may not be
// registered twice.
func Register(name string, factory Factory) error {
	if name == "" {
		return fmt.Errorf("algorithm name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("register %q: factory cannot be nil", name)
	}

	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[name]; exists {
		return fmt.Errorf("hash algorithm %q already registered", name)
	}
	registry[name] = factory
	return nil
}

// MustRegister is Register for package init; it panics on error.
func MustRegister(name string, factory Factory) {
	if err := Register(name, factory); err != nil {
		panic(err)
	}
}

// New builds a fresh hash for name.
func New(name string) (hash.Hash, error) {
	mu.RLock()
	factory, exists := registry[name]
	mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s (supported: %v)", ErrUnsupported, name, Supported())
	}

	h, err := factory()
	if err != nil {
		return nil, fmt.Errorf("create %s hash: %w", name, err)
	}
	return h, nil
}

// Supported returns the registered names, sorted.
func Supported() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsSupported reports whether name is registered.
func IsSupported(name string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, exists := registry[name]
	return exists
}
