package scanner

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"promptd/internal/domain"
)

// MatchFunc selects file names to include in a scan.
type MatchFunc func(name string) bool

// Extensions matches file names by case-insensitive extension.
func Extensions(exts ...string) MatchFunc {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return func(name string) bool {
		_, ok := set[strings.ToLower(filepath.Ext(name))]
		return ok
	}
}

// Scan lists the regular files directly inside dir that satisfy match, in the order the
// filesystem reports them. A missing directory yields an empty slice and ErrDirectoryMissing.
func Scan(dir string, match MatchFunc) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	f, err := os.Open(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, domain.E(domain.CodeFailedPrecond, "scanner.scan", abs, domain.ErrDirectoryMissing)
		}
		return nil, fmt.Errorf("open %s: %w", abs, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return []string{}, domain.E(domain.CodeFailedPrecond, "scanner.scan", abs+" is not a directory", domain.ErrDirectoryMissing)
	}

	// File.ReadDir keeps directory order; os.ReadDir would sort by name.
	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if match != nil && !match(entry.Name()) {
			continue
		}
		path := filepath.Join(abs, entry.Name())
		if !isRegular(entry, path) {
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// isRegular follows symlinks so linked prompt files are picked up.
func isRegular(entry fs.DirEntry, path string) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
