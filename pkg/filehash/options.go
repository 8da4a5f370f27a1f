package filehash

// Option tunes hashing and collection.
type Option func(*options)

// Matcher decides whether a file, given by its slash-separated path relative
// to the walked root, is collected.
type Matcher interface {
	Match(rel string) bool
}

// WalkErrorFunc handles an error met while walking a root. Returning nil
// skips the entry; returning an error stops walking that root. Either way the
// error never reaches the caller of CollectFiles.
type WalkErrorFunc func(path string, err error) error

type options struct {
	chunkSize   int
	matcher     Matcher
	onWalkError WalkErrorFunc
}

func newOptions(opts []Option) *options {
	o := &options{
		chunkSize:   PageSize,
		onWalkError: SkipWalkErrors,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithChunkSize sets the read buffer size. n <= 0 keeps PageSize.
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithMatcher keeps only collected files accepted by m.
func WithMatcher(m Matcher) Option {
	return func(o *options) {
		o.matcher = m
	}
}

// WithWalkErrorHandler replaces the default SkipWalkErrors policy.
func WithWalkErrorHandler(fn WalkErrorFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.onWalkError = fn
		}
	}
}

// SkipWalkErrors drops unreadable directories, broken links and entries that
// vanished mid-walk.
func SkipWalkErrors(string, error) error {
	return nil
}
