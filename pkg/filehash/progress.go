package filehash

// ProgressKind tells a completed unit of work apart from a failed one.
type ProgressKind int

const (
	Yielded ProgressKind = iota // one more file folded into the digest
	Failed                      // the file could not be hashed; the batch continues
)

func (this ProgressKind) String() string {
	switch this {
	case Yielded:
		return "yielded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Progress is reported once per file, in submission order.
type Progress struct {
	Kind ProgressKind

	// Done is the running count of files hashed successfully. Only set for
	// Yielded events.
	Done uint64

	Path string

	// Err is a *FileError. Only set for Failed events.
	Err error
}

// ProgressFunc observes progress. It runs on the goroutine that called
// HashFiles and must not block for long: result collection waits on it.
type ProgressFunc func(Progress)

func (this ProgressFunc) report(p Progress) {
	if this != nil {
		this(p)
	}
}
