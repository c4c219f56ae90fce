package utils

import (
	"io/fs"
	"os"
)

// HybridFS combines an embedded FS with a local directory; embedded files win.
type HybridFS struct {
	embedFS, dir fs.FS
}

func NewHybridFS(embedded fs.FS, subDir string, localDir string) (*HybridFS, error) {
	subFS, err := fs.Sub(embedded, subDir)
	if err != nil {
		return nil, err
	}

	return &HybridFS{
		embedFS: subFS,
		dir:     os.DirFS(localDir),
	}, nil
}

func (hfs *HybridFS) Open(name string) (fs.File, error) {
	if file, err := hfs.embedFS.Open(name); err == nil {
		return file, nil
	}

	return hfs.dir.Open(name)
}

// ReadFile ..
func (hfs *HybridFS) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(hfs, name)
}

// Glob lists matches from both layers without duplicates.
func (hfs *HybridFS) Glob(pattern string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, fsys := range []fs.FS{hfs.embedFS, hfs.dir} {
		matches, err := fs.Glob(fsys, pattern)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}
