package session

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Info describes one discovered session transcript.
type Info struct {
	Path    string
	Rel     string // path relative to the sessions root, for display
	Size    int64
	ModTime time.Time
}

// Scan walks the sessions root and returns every .jsonl transcript, newest
// first. Unreadable entries are skipped. A missing root yields no files
// rather than an error.
func Scan(root string) ([]Info, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []Info
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		if d.IsDir() || filepath.Ext(path) != ".jsonl" {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}

		files = append(files, Info{
			Path:    path,
			Rel:     filepath.ToSlash(rel),
			Size:    fi.Size(),
			ModTime: fi.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})
	return files, nil
}

// Resolve maps a user-supplied session argument to a transcript path.
// The argument may be a 1-based recency index into the scan order, a path
// that exists on disk, or a bare filename searched for under the root.
// Ambiguous basenames and misses are errors the user must disambiguate.
func Resolve(arg, root string) (string, error) {
	trimmed := strings.TrimSpace(arg)

	if index, err := strconv.Atoi(trimmed); err == nil && trimmed != "" {
		files, scanErr := Scan(root)
		if scanErr != nil {
			return "", scanErr
		}
		if len(files) == 0 {
			return "", fmt.Errorf("no session files found under %s", root)
		}
		if index < 1 || index > len(files) {
			return "", fmt.Errorf("session index %d out of range (1..%d)", index, len(files))
		}
		return files[index-1].Path, nil
	}

	candidate := expandHome(arg)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}

	files, err := Scan(root)
	if err != nil {
		return "", err
	}
	var matches []string
	for _, f := range files {
		if filepath.Base(f.Path) == arg {
			matches = append(matches, f.Path)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("session not found: %s (provide a full path or a filename that exists under %s)", arg, root)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous filename %q matched %d files; provide a full path", arg, len(matches))
	}
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
