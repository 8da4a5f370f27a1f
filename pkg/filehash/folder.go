package filehash

import (
	"hash"
	"io/fs"
	"os"
	"path/filepath"
)

// HashFolder collects every regular file under dir and hashes them with
// HashFiles. An empty tree returns ErrNoFiles.
func HashFolder(dir string, h hash.Hash, workers int, onProgress ProgressFunc, opts ...Option) (string, error) {
	return HashFolders([]string{dir}, h, workers, onProgress, opts...)
}

// HashFolders is HashFolder over several roots, hashed as one batch in root
// order.
func HashFolders(dirs []string, h hash.Hash, workers int, onProgress ProgressFunc, opts ...Option) (string, error) {
	return HashFiles(CollectFiles(dirs, opts...), h, workers, onProgress, opts...)
}

// CollectFiles walks each root and returns its regular files, roots
// concatenated in order without deduplication. A root that is a symlink is
// followed; symlinks below a root are not. Directories and special files
// are left out. Walk errors go to the WalkErrorFunc, which by default skips
// them.
func CollectFiles(roots []string, opts ...Option) []string {
	o := newOptions(opts)

	var files []string
	for _, root := range roots {
		files = append(files, collectRoot(root, o)...)
	}
	return files
}

// collectRoot walks root. When root is a symlink the walk runs over its
// target and every result is rebased onto root.
func collectRoot(root string, o *options) []string {
	target := root
	if info, err := os.Lstat(root); err == nil && info.Mode()&fs.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(root)
		if err != nil {
			o.onWalkError(root, err)
			return nil
		}
		target = resolved
	}

	var files []string

	filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		path = rebase(root, target, path)
		if err != nil {
			return o.onWalkError(path, err)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if o.matcher != nil && !o.matcher.Match(relPath(root, path)) {
			return nil
		}
		files = append(files, path)
		return nil
	})

	return files
}

// rebase maps a path found under target to the same path under root.
func rebase(root, target, path string) string {
	if target == root {
		return path
	}
	rel, err := filepath.Rel(target, path)
	if err != nil || rel == "." {
		return root
	}
	return filepath.Join(root, rel)
}

// relPath is the slash-separated path of path below root. A root that is
// itself a file matches on its base name.
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}
