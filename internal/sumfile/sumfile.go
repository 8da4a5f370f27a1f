package sumfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

const headerPrefix = "# filehash "

// Manifest is the content of a sum file: one digest per file plus the
// aggregate digest of the whole set.
type Manifest struct {
	Algorithm string
	Digest    string
	Entries   map[string]string // slash-separated relative path -> hex digest
}

// ChangeSet describes the differences between two manifests.
type ChangeSet struct {
	Added    []string
	Modified []string
	Removed  []string
}

// IsEmpty returns true if there are no changes.
func (this *ChangeSet) IsEmpty() bool {
	return len(this.Added) == 0 && len(this.Modified) == 0 && len(this.Removed) == 0
}

// Len is the total number of changed paths.
func (this *ChangeSet) Len() int {
	return len(this.Added) + len(this.Modified) + len(this.Removed)
}

// Read parses a sum file. A missing file yields a nil manifest and no error.
func Read(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open sum file: %w", err)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read sum file %s: %w", path, err)
	}
	return m, nil
}

// Parse reads the sum file format:
//
//	# filehash <algorithm> <aggregate digest>
//	<digest>  <path>
//
// Blank lines are ignored. Paths may contain spaces.
func Parse(r io.Reader) (*Manifest, error) {
	m := &Manifest{Entries: make(map[string]string)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if header, ok := strings.CutPrefix(line, headerPrefix); ok {
			fields := strings.Fields(header)
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: malformed header", lineNo)
			}
			m.Algorithm, m.Digest = fields[0], fields[1]
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		digest, path, ok := strings.Cut(line, "  ")
		if !ok || digest == "" || path == "" {
			return nil, fmt.Errorf("line %d: expected \"<digest>  <path>\"", lineNo)
		}
		m.Entries[path] = digest
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// Write writes a manifest to path, entries sorted alphabetically.
func Write(path string, m *Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create sum file: %w", err)
	}
	defer f.Close()

	if err := Format(f, m); err != nil {
		return fmt.Errorf("write sum file %s: %w", path, err)
	}
	return f.Close()
}

// Format writes m in sum file format.
func Format(w io.Writer, m *Manifest) error {
	bw := bufio.NewWriter(w)
	if m.Algorithm != "" && m.Digest != "" {
		fmt.Fprintf(bw, "%s%s %s\n", headerPrefix, m.Algorithm, m.Digest)
	}
	for _, p := range sortedKeys(m.Entries) {
		fmt.Fprintf(bw, "%s  %s\n", m.Entries[p], p)
	}
	return bw.Flush()
}

// Diff compares old and new entry maps and returns a ChangeSet.
// A nil old map reports every new path as added.
func Diff(old, new map[string]string) ChangeSet {
	var cs ChangeSet

	for _, path := range sortedKeys(new) {
		oldHash, exists := old[path]
		switch {
		case !exists:
			cs.Added = append(cs.Added, path)
		case oldHash != new[path]:
			cs.Modified = append(cs.Modified, path)
		}
	}
	for _, path := range sortedKeys(old) {
		if _, exists := new[path]; !exists {
			cs.Removed = append(cs.Removed, path)
		}
	}

	return cs
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
