package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10
	maxFuzzInput = 16 << 10
)

func addCorpusSeeds(f *testing.F) {
	addTestdataSeeds(f)
	f.Add([]byte{})
	f.Add([]byte("[config]\nby_value = [\"A\"]\n[[decl]]\nkind = \"alias\"\nname = \"A\"\ntarget = \"B\"\n[[decl]]\nkind = \"alias\"\nname = \"B\"\ntarget = \"A\"\n"))
	f.Add([]byte("[config]\nblocklist = [\"S\"]\nby_value = [\"S\"]\n[[decl]]\nkind = \"struct\"\nname = \"S\"\nfields = [{ name = \"vtable_\", type = \"usize\" }]\n"))
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata", "catalogs")
	if _, err := os.Stat(root); err != nil {
		return
	}
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() || filepath.Ext(path) != ".toml" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clamp(src, maxSeedBytes))
		return nil
	})
}

func clamp(src []byte, limit int) []byte {
	if len(src) <= limit {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:limit]...)
}
